package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"taskdeck/internal/config"
	"taskdeck/internal/debug"
	"taskdeck/internal/store"
	"taskdeck/internal/ui"
)

const openTimeout = 10 * time.Second

func main() {
	if err := config.Initialize(); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing config: %v\n", err)
		os.Exit(1)
	}

	versionFlag := flag.Bool("version", false, "Print version information and exit")
	dbPathFlag := flag.String("db-path", config.GetString(config.KeyDatabasePath), "Path to the task database file")
	outputFormatFlag := flag.String("output-format", config.GetString(config.KeyOutputFormat), "Detail panel markdown style (rich, light, plain)")
	autoReloadFlag := flag.Bool("auto-reload", config.GetBool(config.KeyAutoReload), "Reload automatically when the database changes on disk")
	debugFlag := flag.Bool("debug", false, "Write a debug log to ~/.taskdeck/debug.log")
	flag.Parse()

	if *versionFlag {
		printVersion()
		os.Exit(0)
	}

	visited := map[string]struct{}{}
	flag.CommandLine.Visit(func(f *flag.Flag) {
		visited[f.Name] = struct{}{}
	})
	if _, ok := visited["output-format"]; ok {
		mustOverride(config.KeyOutputFormat, strings.TrimSpace(*outputFormatFlag))
	}
	if _, ok := visited["auto-reload"]; ok {
		mustOverride(config.KeyAutoReload, *autoReloadFlag)
	}

	if err := debug.Init(*debugFlag || os.Getenv("TD_DEBUG") == "true"); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: debug log unavailable: %v\n", err)
	}
	defer debug.Close()

	dbPath, err := resolveDBPath(strings.TrimSpace(*dbPathFlag))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), openTimeout)
	st, err := store.Open(ctx, dbPath)
	cancel()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening database %s: %v\n", dbPath, err)
		os.Exit(1)
	}
	defer st.Close()

	opts := []ui.Option{ui.WithStatePersistence(st)}
	watcher, err := ui.NewWatcher(dbPath)
	if err != nil {
		debug.Logf("main: file watcher unavailable: %v", err)
	} else {
		defer watcher.Close()
		opts = append(opts, ui.WithWatcher(watcher))
	}

	app := ui.NewApp(st, opts...)
	prog := tea.NewProgram(app, tea.WithAltScreen(), tea.WithMouseAllMotion())
	if _, err := prog.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := app.FatalErr(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// resolveDBPath falls back to ~/.taskdeck/tasks.db and creates the parent
// directory so first launch works on a clean machine.
func resolveDBPath(path string) (string, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		path = filepath.Join(home, ".taskdeck", "tasks.db")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("create database directory: %w", err)
	}
	return path, nil
}

func mustOverride(key string, value any) {
	if err := config.ApplyOverrides(map[string]any{key: value}); err != nil {
		fmt.Fprintf(os.Stderr, "Error applying %s: %v\n", key, err)
		os.Exit(1)
	}
}
