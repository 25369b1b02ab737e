package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"tavern/internal/client"
	"tavern/internal/config"
	"tavern/internal/ui"
)

func main() {
	var (
		configPath = flag.String("config", "", "config file (default ~/.tavern/config.yaml)")
		envFile    = flag.String("env", ".env", "dotenv file to load before the config")
		themePath  = flag.String("theme", "", "theme file, overrides the config")
		headless   = flag.Bool("headless", false, "run without the terminal UI and log events")
		export     = flag.String("export", "", "write the stored history of a room to stdout and exit")
		since      = flag.Duration("since", 0, "with -export, only messages newer than this")
		limit      = flag.Int("limit", 1000, "with -export, the maximum number of messages")
	)
	flag.Parse()

	cfg, err := loadConfig(*configPath, *envFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(2)
	}
	if *themePath != "" {
		cfg.Theme = *themePath
	}

	switch {
	case *export != "":
		os.Exit(runExport(cfg, *export, *since, *limit))
	case *headless:
		os.Exit(runHeadless(cfg))
	default:
		os.Exit(runUI(cfg, *configPath))
	}
}

func loadConfig(path, envFile string) (*config.Config, error) {
	if err := config.LoadEnv(envFile); err != nil {
		return nil, err
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(os.Getenv); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runExport(cfg *config.Config, room string, since time.Duration, limit int) int {
	app, err := newApp(cfg, os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init: %v\n", err)
		return 1
	}
	defer app.close()

	var from time.Time
	if since > 0 {
		from = time.Now().Add(-since)
	}
	n, err := app.exportRoom(context.Background(), room, from, limit, os.Stdout)
	if err != nil {
		app.log.Error("export failed", "room", room, "err", err)
		return 1
	}
	app.log.Info("export done", "room", room, "bytes", n)
	return 0
}

func runUI(cfg *config.Config, configPath string) int {
	app, err := newApp(cfg, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init: %v\n", err)
		return 1
	}

	theme := ui.DefaultTheme()
	if cfg.Theme != "" {
		t, err := ui.LoadTheme(cfg.Theme)
		if err != nil {
			app.log.Warn("theme not loaded, using default", "path", cfg.Theme, "err", err)
		} else {
			theme = t
		}
	}

	view := ui.New(ui.Config{
		Theme:       theme,
		Client:      app.Client,
		Actions:     app.Client.Action,
		History:     app.DB.Store,
		Bus:         app.Client.Bus,
		Credentials: cfg.Credentials(),
		OnLogin: func(creds client.Credentials) {
			cfg.JID, cfg.Nick, cfg.Service = creds.JID, creds.Nick, creds.Service
			cfg.Password = creds.Password
			if err := cfg.Save(configPath); err != nil {
				app.log.Warn("config not saved", "err", err)
			}
		},
		Log: app.log,
	})

	runErr := view.Run(context.Background())

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := app.Shutdown(ctx); err != nil {
		app.log.Warn("shutdown", "err", err)
	}
	if runErr != nil {
		fmt.Fprintf(os.Stderr, "ui: %v\n", runErr)
		return 1
	}
	return 0
}
