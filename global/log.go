package global

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"

	"github.com/Troublor/erebus-sandwich/config"
)

// setupLog replaces the global zerolog logger according to the log.* configs.
func setupLog() {
	zerolog.SetGlobalLevel(zerolog.Level(viper.GetUint(config.CLogLevel.Key)))

	writers := make([]io.Writer, 0)
	for _, target := range strings.Split(viper.GetString(config.CLogFile.Key), ";") {
		target = strings.TrimSpace(target)
		if target == "" {
			continue
		}
		w, err := logWriter(target)
		if err != nil {
			log.Fatal().Err(err).Str("file", target).Msg("Failed to open log file")
		}
		writers = append(writers, w)
	}

	builder := zerolog.New(zerolog.MultiLevelWriter(writers...)).With().Timestamp()
	if viper.GetBool(config.CLogLocation.Key) {
		builder = builder.Caller()
	}
	log.Logger = builder.Logger()
}

func logWriter(target string) (io.Writer, error) {
	switch target {
	case "stdout":
		return zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen}, nil
	case "stderr":
		return zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}, nil
	default:
		f, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err != nil {
			return nil, err
		}
		RegisterCleanupTask(func() { _ = f.Close() })
		return zerolog.SyncWriter(f), nil
	}
}
