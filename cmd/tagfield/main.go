// Copyright 2025 The WordServe Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Command tagfield is a terminal tag field with suggestions from tagserve.
//
//	tagfield -endpoint http://127.0.0.1:8411/_complete/tags
//	tagfield -ipc ./tagserve -value "go, "
//
// On save, the tags are printed one per line and, when -record is set,
// posted back to the server. When stdin is not a terminal, the value is read
// from stdin instead and no field is shown:
//
//	echo "go, rust, " | tagfield -record
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/bastiangx/tagcomplete/internal/cli"
	"github.com/bastiangx/tagcomplete/internal/logger"
	"github.com/bastiangx/tagcomplete/pkg/config"
	"github.com/bastiangx/tagcomplete/pkg/field"
	"github.com/bastiangx/tagcomplete/pkg/server"
	"github.com/bastiangx/tagcomplete/pkg/suggest"
	"github.com/bastiangx/tagcomplete/pkg/terms"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	isatty "github.com/mattn/go-isatty"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"
)

func main() {
	configPath := flag.String("config", "", "Path to config.toml")
	debugMode := flag.Bool("d", false, "Toggle debug mode (logs to tagfield.log in the config dir)")
	endpoint := flag.String("endpoint", "", "Suggestion endpoint (overrides field.endpoint)")
	ipcPath := flag.String("ipc", "", "Spawn this tagserve binary and talk msgpack to it")
	minLength := flag.Int("min", -1, "Minimum fragment length before querying (overrides field.min_length)")
	value := flag.String("value", "", "Initial field value")
	record := flag.Bool("record", false, "Post saved tags back to the server (http only)")
	flag.Parse()

	if *debugMode {
		logFile := &lumberjack.Logger{
			Filename:   debugLogPath(),
			MaxSize:    5, // megabytes
			MaxBackups: 2,
			MaxAge:     14, // days
		}
		defer logFile.Close()
		logger.Setup(true, logFile)
	} else {
		logger.Setup(false, nil)
	}

	cfg, usedPath, err := config.LoadConfigWithPriority(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	log.Debugf("Using config: %s", config.GetActiveConfigPath(usedPath))

	if *endpoint != "" {
		cfg.Field.Endpoint = *endpoint
		cfg.Field.Transport = "http"
	}
	if *ipcPath != "" {
		cfg.Field.ServerPath = *ipcPath
		cfg.Field.Transport = "ipc"
	}
	if *minLength >= 0 {
		cfg.Field.MinLength = *minLength
	}

	var tags []string
	if isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd()) {
		tags = runField(cfg, *value)
	} else {
		// No terminal to complete in: read the value from stdin.
		line, err := io.ReadAll(io.LimitReader(os.Stdin, 1<<20))
		if err != nil {
			log.Fatalf("Reading stdin: %v", err)
		}
		tags = terms.Complete(*value + strings.TrimSpace(string(line)))
	}
	printTags(tags)

	if *record && cfg.Field.Transport == "http" && len(tags) > 0 {
		if err := recordTags(cfg, tags); err != nil {
			log.Fatalf("Recording tags: %v", err)
		}
	}
}

// runField runs the TUI and returns the saved tags. It exits with status 1
// when the field is cancelled.
func runField(cfg *config.Config, value string) []string {
	source, closeSource, err := newSource(cfg)
	if err != nil {
		log.Fatalf("Failed to create suggestion source: %v", err)
	}
	defer closeSource()

	model := cli.NewFieldModel(source, cli.FieldOptions{
		Field: field.Options{
			MinLength: cfg.Field.MinLength,
			AutoFocus: cfg.Field.AutoFocus,
		},
		Value:       value,
		Placeholder: "go, postgres, ...",
	})
	if _, err := tea.NewProgram(model).Run(); err != nil {
		log.Fatalf("Field error: %v", err)
	}

	tags, ok := model.Submitted()
	if !ok {
		closeSource()
		os.Exit(1)
	}
	return tags
}

func printTags(tags []string) {
	for _, t := range tags {
		fmt.Println(t)
	}
}

// debugLogPath places the log next to the config, or in the working
// directory when no config directory is writable.
func debugLogPath() string {
	dir, err := config.GetConfigDir()
	if err != nil {
		return "tagfield.log"
	}
	return filepath.Join(dir, "tagfield.log")
}

// newSource builds the configured transport.
func newSource(cfg *config.Config) (suggest.Source, func(), error) {
	switch cfg.Field.Transport {
	case "ipc":
		src, err := suggest.SpawnIPC(cfg.Field.ServerPath, 0)
		if err != nil {
			return nil, nil, err
		}
		return src, func() {
			if err := src.Close(); err != nil {
				log.Debugf("Closing IPC server: %v", err)
			}
		}, nil
	default:
		client := &http.Client{Timeout: cfg.Field.Timeout()}
		src, err := suggest.NewHTTPSource(cfg.Field.Endpoint, client)
		if err != nil {
			return nil, nil, err
		}
		return src, func() {}, nil
	}
}

// recordTags posts the saved tags to the /api/tags route next to the
// completion endpoint.
func recordTags(cfg *config.Config, tags []string) error {
	u, err := url.Parse(cfg.Field.Endpoint)
	if err != nil {
		return err
	}
	u = u.ResolveReference(&url.URL{Path: "/api/tags"})

	body, err := json.Marshal(server.AddTagsRequest{Tags: terms.Join(tags)})
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Field.Timeout())
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("server answered %s", resp.Status)
	}
	return nil
}
