// Command gatewaysim runs the in-memory content gateway for local
// development. It serves the same wire contract the client core consumes.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"streamvault/config"
	"streamvault/handlers"
	"streamvault/internal/logging"
	"streamvault/models"
)

func main() {
	addr := flag.String("addr", ":8085", "listen address")
	logLevel := flag.String("log-level", "INFO", "log level (DEBUG, INFO, WARN, ERROR)")
	seedAccount := flag.Bool("seed-account", true, "create a demo account (demo@example.com / demo1234)")
	flag.Parse()

	cfg := config.DefaultConfig()
	cfg.Logging.Level = *logLevel

	log, err := logging.Setup(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to set up logging: %v\n", err)
		log = slog.Default()
	}

	sim := handlers.NewSimulator()
	if *seedAccount {
		if err := sim.Register("demo@example.com", "demo1234", "Demo", models.PlanStandard); err != nil {
			log.Error("failed to seed demo account", "error", err)
		}
	}

	srv := &http.Server{
		Addr:         *addr,
		Handler:      handlers.NewRouter(sim),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	log.Info("gateway simulator listening", "addr", *addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}
