// Command lingshardd runs a thread-per-core, hash-slot-partitioned,
// RESP-compatible key/value server.
package main

import (
	"flag"
	"fmt"
	"net"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/code-100-precent/lingshard/config"
	"github.com/code-100-precent/lingshard/executor"
	"github.com/code-100-precent/lingshard/internal/logging"
	"github.com/code-100-precent/lingshard/mesh"
	"github.com/code-100-precent/lingshard/store"
	"github.com/code-100-precent/lingshard/supervisor"
	"github.com/google/uuid"
)

func main() {
	envFile := flag.String("env-file", ".env", "path to an optional KEY=VALUE config file")
	addr := flag.String("addr", "", "override bind address, e.g. :6379")
	executors := flag.Int("executors", 0, "override number of executors (0 = number of CPUs)")
	flag.Parse()

	if err := config.LoadEnvFile(*envFile); err != nil {
		fmt.Fprintf(os.Stderr, "lingshardd: loading %s: %v\n", *envFile, err)
		os.Exit(1)
	}
	cfg := config.Load()
	if *addr != "" {
		cfg.BindAddr = *addr
	}
	if *executors != 0 {
		cfg.Executors = *executors
	}
	n := cfg.Executors
	if n <= 0 {
		n = runtime.NumCPU()
	}

	logging.Configure(cfg.LogLevel)
	log := logging.Tag("main")

	nodeID := uuid.NewString()
	log.Info("starting lingshard node %s with %d executor(s) on %s", nodeID, n, cfg.BindAddr)

	storage := store.New(n)
	m := mesh.New(n)
	dialer := mesh.NewDialer(storage, m)
	sup := supervisor.New()

	listeners, shared := bindListeners(cfg.BindAddr, n, log)

	executors_ := make([]*executor.Executor, n)
	for i := 0; i < n; i++ {
		executors_[i] = executor.New(i, storage, dialer, sup, nodeID)
	}
	for i := 0; i < n; i++ {
		i := i
		go executors_[i].Run(listeners[i])
	}
	if shared {
		log.Info("SO_REUSEPORT unavailable; executors share one listener")
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	log.Info("received %s, shutting down", sig)
	logging.Sync()
}

// bindListeners tries to give every executor its own SO_REUSEPORT
// listener; if the platform rejects that, every executor falls back to
// sharing a single listener (net.Listener.Accept is safe to call
// concurrently from multiple goroutines).
func bindListeners(addr string, n int, log logging.Tagged) ([]net.Listener, bool) {
	listeners := make([]net.Listener, n)
	l0, err := executor.Listen(addr)
	if err != nil {
		log.Error("binding %s: %v", addr, err)
		os.Exit(1)
	}
	listeners[0] = l0

	reuseWorks := true
	for i := 1; i < n; i++ {
		li, err := executor.Listen(addr)
		if err != nil {
			reuseWorks = false
			break
		}
		listeners[i] = li
	}
	if reuseWorks {
		return listeners, false
	}
	for i := 1; i < n; i++ {
		if listeners[i] != nil {
			listeners[i].Close()
		}
		listeners[i] = l0
	}
	return listeners, true
}
