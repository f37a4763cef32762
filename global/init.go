package global

import (
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/rs/zerolog/log"
)

func init() {
	setupLog()

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-c
		log.Info().Str("signal", sig.String()).Msg("Interrupted, cleaning up")
		Cleanup()
		os.Exit(1)
	}()
}

var (
	cleanupMu    sync.Mutex
	cleanupTasks []func()
)

func RegisterCleanupTask(task func()) {
	cleanupMu.Lock()
	defer cleanupMu.Unlock()
	cleanupTasks = append(cleanupTasks, task)
}

// Cleanup runs the registered tasks in reverse order of registration, each at most once.
func Cleanup() {
	cleanupMu.Lock()
	tasks := cleanupTasks
	cleanupTasks = nil
	cleanupMu.Unlock()

	for i := len(tasks) - 1; i >= 0; i-- {
		tasks[i]()
	}
}
