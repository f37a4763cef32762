package config

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type ConfigType int

const (
	String ConfigType = iota
	Int
	Int64
	Uint8
	Bool
	Duration
)

// Def in this package are those common ones used by almost every where.
type Def struct {
	Type     ConfigType // default to string
	Key      string
	KeyShort string // only valid in command line arguments, leave empty if not used
	Default  any
	Desc     string
}

var (
	CLogLevel = Def{
		Type:    Uint8,
		Key:     "log.level",
		Default: uint8(zerolog.InfoLevel),
		Desc:    "zerolog level, 0 (debug) to 5 (panic)",
	}
	CLogFile = Def{
		Key:     "log.file",
		Default: "stderr",
		Desc:    "log outputs separated by ';', stdout, stderr or file paths",
	}
	CLogLocation = Def{
		Type:    Bool,
		Key:     "log.location",
		Default: false,
		Desc:    "log caller location",
	}
)

var (
	CMongoURL = Def{
		Key:     "mongo.url",
		Default: "mongodb://localhost:27017",
	}
	CMongoDatabase = Def{
		Key:     "mongo.database",
		Default: "erebus",
	}
	CMongoCollection = Def{
		Key:     "mongo.collection",
		Default: "findings",
	}
)

var (
	CConcurrency = Def{
		Type:    Int,
		Key:     "concurrency",
		Default: 1,
		Desc:    "number of IR exports analyzed in parallel",
	}
	COracleCache = Def{
		Type:    Bool,
		Key:     "oracle.cache",
		Default: true,
		Desc:    "memoize dependency oracle answers",
	}
	COracleCacheTTL = Def{
		Type:    Duration,
		Key:     "oracle.cache-ttl",
		Default: 10 * time.Minute,
		Desc:    "lifetime of memoized dependency oracle answers",
	}
)

var GlobalFlagDefs = []Def{
	CLogLevel,
	CLogFile,
	CLogLocation,

	CMongoURL,
	CMongoDatabase,
	CMongoCollection,

	CConcurrency,
	COracleCache,
	COracleCacheTTL,
}

// DefGroup holds the definitions of one sub command.
// Their viper keys are prefixed with the group name, while their flags are not.
type DefGroup struct {
	Name string
	Defs map[string]Def

	flagSet *pflag.FlagSet
}

func NewDefGroup(name string, defs ...Def) *DefGroup {
	defGroup := DefGroup{Name: name, Defs: make(map[string]Def)}
	defGroup.Add(defs...)
	return &defGroup
}

func (g *DefGroup) Add(defs ...Def) {
	for _, def := range defs {
		g.Defs[def.Key] = def
	}
}

func (g *DefGroup) KeyOf(def Def) string {
	if g.Defs[def.Key] == def {
		return fmt.Sprintf("%s.%s", g.Name, def.Key)
	}
	panic(fmt.Sprintf("%s not found in group %s", def.Key, g.Name))
}

func (g *DefGroup) FlagSet() *pflag.FlagSet {
	if g.flagSet == nil {
		slice := make([]Def, 0, len(g.Defs))
		for _, def := range g.Defs {
			slice = append(slice, def)
		}
		g.flagSet = BuildFlagSet(g.Name, slice...)
	}
	return g.flagSet
}

func (g *DefGroup) BindToViper() {
	set := g.FlagSet()
	for k, def := range g.Defs {
		err := viper.BindPFlag(g.KeyOf(def), set.Lookup(k))
		if err != nil {
			panic(fmt.Errorf("failed to bind flag %s to viper: %w", k, err))
		}
	}
}

func loadFlags() {
	setupConfigs(GlobalFlagDefs...)
}

var GlobalFlagSet *pflag.FlagSet = BuildFlagSet(
	"sandwich",
	GlobalFlagDefs...,
)

// BuildFlagSet panics if the Default of a def does not match its Type.
func BuildFlagSet(name string, defs ...Def) *pflag.FlagSet {
	flagSet := pflag.NewFlagSet(name, pflag.ContinueOnError)
	for _, def := range defs {
		switch def.Type {
		case String:
			flagSet.StringP(def.Key, def.KeyShort, def.Default.(string), def.Desc)
		case Int:
			flagSet.IntP(def.Key, def.KeyShort, def.Default.(int), def.Desc)
		case Int64:
			flagSet.Int64P(def.Key, def.KeyShort, def.Default.(int64), def.Desc)
		case Uint8:
			flagSet.Uint8P(def.Key, def.KeyShort, def.Default.(uint8), def.Desc)
		case Bool:
			flagSet.BoolP(def.Key, def.KeyShort, def.Default.(bool), def.Desc)
		case Duration:
			flagSet.DurationP(def.Key, def.KeyShort, def.Default.(time.Duration), def.Desc)
		default:
			panic(fmt.Sprintf("unsupported config type %d of %s", def.Type, def.Key))
		}
	}
	return flagSet
}

func setupConfigs(configDefs ...Def) {
	flagSet := BuildFlagSet("sandwich", configDefs...)
	for _, def := range configDefs {
		viper.SetDefault(def.Key, def.Default)
	}
	flagSet.ParseErrorsWhitelist.UnknownFlags = true
	flagSet.Usage = func() {}
	_ = flagSet.Parse(os.Args[1:])
	err := viper.BindPFlags(flagSet)
	if err != nil {
		panic(fmt.Errorf("failed to bind flags to viper: %w", err))
	}
}
