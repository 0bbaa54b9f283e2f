// Package config loads the closed configuration surface spec.md §6
// recognizes, generalizing internal/env's static lookup table into a
// process-environment-driven one with defaults.
package config

import (
	"os"
	"runtime"
	"strconv"
)

// Config is the full recognized configuration surface. No other option is
// read or honored (spec.md §6: "No other configuration is recognized").
type Config struct {
	// Port is the TCP listen port. Env KVSRV_PORT, default 6379.
	Port int
	// AcceptThreads is the number of acceptor goroutines. Env
	// KVSRV_ACCEPT_THREADS, default 1.
	AcceptThreads int
	// WorkerThreads sizes the fixed worker pool connections run on. Env
	// KVSRV_WORKER_THREADS, default runtime.NumCPU().
	WorkerThreads int
}

// Load reads Config from the process environment, applying defaults for any
// unset or malformed value.
func Load() Config {
	return Config{
		Port:          intEnv("KVSRV_PORT", 6379),
		AcceptThreads: intEnv("KVSRV_ACCEPT_THREADS", 1),
		WorkerThreads: intEnv("KVSRV_WORKER_THREADS", runtime.NumCPU()),
	}
}

func intEnv(key string, fallback int) int {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}
