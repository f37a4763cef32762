package global

import (
	"context"

	"github.com/panjf2000/ants/v2"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"

	"github.com/Troublor/erebus-sandwich/config"
)

var (
	ctx       context.Context
	ctxCancel context.CancelFunc
	pool      *ants.Pool
)

// Ctx is the root context of the process, cancelled on interrupt.
func Ctx() context.Context {
	if ctx != nil {
		return ctx
	}

	ctx, ctxCancel = context.WithCancel(context.Background())
	RegisterCleanupTask(ctxCancel)
	return ctx
}

// GoroutinePool is sized by the concurrency config.
func GoroutinePool() *ants.Pool {
	if pool != nil {
		return pool
	}

	size := viper.GetInt(config.CConcurrency.Key)
	if size < 1 {
		size = 1
	}
	var err error
	pool, err = ants.NewPool(size, ants.WithPanicHandler(func(p interface{}) {
		log.Error().Interface("panic", p).Msg("Task panicked in goroutine pool")
	}))
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create goroutine pool")
	}
	RegisterCleanupTask(pool.Release)

	return pool
}
