// Copyright 2025 The WordServe Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package main implements the tag suggestion server.

tagserve answers the completion queries of comma separated tag fields. Tags
live in a sqlite database and are served from an in-memory Patricia trie, so
each keystroke in a field costs one prefix walk.

# Usage

Serve HTTP on the configured address:

	tagserve

Seed the database from a tag list and enable debug logging:

	tagserve -seed tags.txt -d

Serve msgpack on stdin/stdout for a tagfield process that spawned us:

	tagserve -ipc

Query the index interactively:

	tagserve -c

A seed file holds one tag per line, optionally followed by a tab and a use
count. Lines starting with # are ignored.

# Configuration

The [server] and [store] sections of config.toml apply:

	[server]
	addr = "127.0.0.1:8411"
	limit = 15
	max_term = 60
	cache_size = 256
	order = "name"

	[store]
	path = "tags.db"
	seed = ""

A relative store path is resolved against the config directory.

# Command Line Flags

	-config string
	    Path to config.toml
	-d  Enable debug mode with detailed logging
	-ipc
	    Serve msgpack on stdin/stdout instead of HTTP
	-c  Run the interactive query prompt
	-addr string
	    HTTP listen address (overrides server.addr)
	-db string
	    Tag database path (overrides store.path)
	-seed string
	    Tag list loaded into the store at startup
	-version
	    Show current version
*/
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bastiangx/tagcomplete/internal/cli"
	"github.com/bastiangx/tagcomplete/internal/logger"
	"github.com/bastiangx/tagcomplete/pkg/config"
	"github.com/bastiangx/tagcomplete/pkg/dictionary"
	"github.com/bastiangx/tagcomplete/pkg/index"
	"github.com/bastiangx/tagcomplete/pkg/server"
	"github.com/bastiangx/tagcomplete/pkg/store"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"
)

const (
	Version = "0.3.0"
	AppName = "tagserve"
	gh      = "https://github.com/bastiangx/tagcomplete"
)

func main() {
	configPath := flag.String("config", "", "Path to config.toml")
	debugMode := flag.Bool("d", false, "Toggle debug mode")
	ipcMode := flag.Bool("ipc", false, "Serve msgpack on stdin/stdout instead of HTTP")
	cliMode := flag.Bool("c", false, "Run the interactive query prompt")
	addr := flag.String("addr", "", "HTTP listen address (overrides server.addr)")
	dbPath := flag.String("db", "", "Tag database path (overrides store.path)")
	seed := flag.String("seed", "", "Tag list loaded into the store at startup")
	showVersion := flag.Bool("version", false, "Show current version")
	flag.Parse()

	if *showVersion {
		printVersion()
		return
	}

	logger.Setup(*debugMode, nil)

	cfg, usedPath, err := config.LoadConfigWithPriority(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	log.Debugf("Using config: %s", config.GetActiveConfigPath(usedPath))

	if *addr != "" {
		cfg.Server.Addr = *addr
	}
	if *seed != "" {
		cfg.Store.Seed = *seed
	}
	path := cfg.StorePath(usedPath)
	if *dbPath != "" {
		path = *dbPath
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc, st, err := buildService(ctx, cfg, path)
	if err != nil {
		log.Fatalf("Failed to init tag service: %v", err)
	}
	defer st.Close()

	switch {
	case *cliMode:
		log.SetReportTimestamp(false)
		h := cli.NewInputHandler(svc, cfg.Server.Limit, os.Stdout)
		if err := h.Start(os.Stdin); err != nil {
			log.Fatalf("CLI error: %v", err)
		}
	case *ipcMode:
		log.Debug("spawning IPC")
		if err := server.NewIPCServer(svc, os.Stdin, os.Stdout).Start(); err != nil {
			log.Fatalf("IPC server error: %v", err)
		}
	default:
		showStartupInfo(cfg.Server.Addr, path, svc)
		if err := serveHTTP(ctx, cfg.Server.Addr, svc); err != nil {
			log.Fatalf("HTTP server error: %v", err)
		}
	}
}

// buildService opens the store, applies the seed file and loads every stored
// tag into a fresh index.
func buildService(ctx context.Context, cfg *config.Config, dbPath string) (*server.Service, *store.Store, error) {
	st, err := store.Open(dbPath)
	if err != nil {
		return nil, nil, err
	}

	if cfg.Store.Seed != "" {
		tags, err := dictionary.Load(cfg.Store.Seed)
		if err != nil {
			st.Close()
			return nil, nil, fmt.Errorf("loading seed: %w", err)
		}
		if err := st.Seed(ctx, tags); err != nil {
			st.Close()
			return nil, nil, err
		}
		log.Debugf("Seeded %d tags from %s", len(tags), cfg.Store.Seed)
	}

	ix := index.New(index.ParseOrder(cfg.Server.Order), cfg.Server.CacheSize)
	svc := server.NewService(ix, st, server.Options{
		Limit:   cfg.Server.Limit,
		MaxTerm: cfg.Server.MaxTerm,
	})
	if err := svc.Warm(ctx); err != nil {
		st.Close()
		return nil, nil, err
	}
	log.Debugf("Index warmed with %d tags", ix.Len())
	return svc, st, nil
}

// serveHTTP runs the router until ctx is cancelled, then shuts down.
func serveHTTP(ctx context.Context, addr string, svc *server.Service) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           server.NewRouter(svc),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Debug("Shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func printVersion() {
	l := logger.NewWithConfig(os.Stderr, "", log.InfoLevel, false, log.TextFormatter)
	styles := log.DefaultStyles()
	styles.Values["version"] = lipgloss.NewStyle().Bold(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"})
	styles.Values["gh"] = lipgloss.NewStyle().Italic(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"})
	l.SetStyles(styles)

	l.Print("")
	l.Print("[ tagserve ] tag suggestions for comma separated fields")
	l.Print("", "version", Version)
	l.Print("")
	l.Print("use -h or --help to see available options")
	l.Print("Github Repo", "gh", gh)
}

func showStartupInfo(addr, dbPath string, svc *server.Service) {
	currentLevel := log.GetLevel()
	log.SetLevel(log.InfoLevel)
	defer log.SetLevel(currentLevel)

	stats := svc.Stats()
	log.Infof("%s %s", AppName, Version)
	log.Infof("Process ID: [ %d ]", os.Getpid())
	log.Infof("store: ( %s )", dbPath)
	log.Infof("tags: %d", stats["tags"])
	log.Infof("listening on http://%s", addr)
	log.Info("Press Ctrl+C to exit")
}
