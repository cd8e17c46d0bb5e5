package main

import (
	"context"
	"flag"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/banshee-data/lineprofile/internal/models"
	"github.com/banshee-data/lineprofile/internal/rpc"
	"github.com/banshee-data/lineprofile/internal/store"
)

func runServe(args []string) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	configPath := fs.String("config", "", "JSON or YAML config file")
	listen := fs.String("listen", "", "gRPC listen address (default from config, :50051)")
	record := fs.Bool("record", false, "Record every evaluation in the database")
	dbPath := fs.String("db", "", "Database path (default from config)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	if *listen != "" {
		cfg.ListenAddr = listen
	}
	if *dbPath != "" {
		cfg.DatabasePath = dbPath
	}

	var runs *store.SpectrumStore
	if *record {
		db, err := store.Open(cfg.GetDatabasePath())
		if err != nil {
			return err
		}
		defer db.Close()
		runs = store.NewSpectrumStore(db.DB)
		logf("recording evaluations in %s", cfg.GetDatabasePath())
	}

	lis, err := net.Listen("tcp", cfg.GetListenAddr())
	if err != nil {
		return fmt.Errorf("listen %s: %w", cfg.GetListenAddr(), err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return rpc.Serve(ctx, lis, rpc.NewServer(models.Default(), runs))
}
