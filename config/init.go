package config

import (
	"os"
	"strings"

	"github.com/spf13/viper"
)

func init() {
	loadConfigFile()
	loadEnv()
	loadFlags()
}

// loadConfigFile loads the config file as SANDWICH_CONFIG env variable specifies (default: config.yaml).
func loadConfigFile() {
	if configFile, exist := os.LookupEnv("SANDWICH_CONFIG"); exist {
		viper.SetConfigFile(configFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
	}
	// flags and env variables are enough without a config file
	_ = viper.ReadInConfig()
}

func loadEnv() {
	viper.SetEnvPrefix("EREBUS")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()
}
