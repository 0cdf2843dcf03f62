package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/sadopc/bqlab/internal/api"
	"github.com/sadopc/bqlab/internal/app"
	"github.com/sadopc/bqlab/internal/audit"
	"github.com/sadopc/bqlab/internal/catalog"
	"github.com/sadopc/bqlab/internal/config"
	"github.com/sadopc/bqlab/internal/logging"
	"github.com/sadopc/bqlab/internal/store"
	"github.com/sadopc/bqlab/internal/ui/leftbar"

	// Register catalog backends
	_ "github.com/sadopc/bqlab/internal/catalog/duckdb"
	_ "github.com/sadopc/bqlab/internal/catalog/mysql"
	_ "github.com/sadopc/bqlab/internal/catalog/postgres"
	_ "github.com/sadopc/bqlab/internal/catalog/sqlite"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		configFlag   string
		endpointFlag string
		userFlag     string
		locationFlag string
		resetFlag    bool
	)

	rootCmd := &cobra.Command{
		Use:   "bqlab",
		Short: "A terminal SQL lab for BigQuery tables",
		Long: `bqlab is a terminal SQL lab. The left bar picks a table from the
catalog server and binds it to the active query editor.

Examples:
  bqlab                                  # Connect to http://localhost:8088
  bqlab --endpoint http://catalog:8088   # Use another catalog server
  bqlab --reset                          # Show the reset state button
  bqlab serve --driver postgres --dsn postgres://user@host/db`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig(cmd, configFlag)
			if endpointFlag != "" {
				cfg.Endpoint = endpointFlag
			}
			if userFlag != "" {
				cfg.User = userFlag
			}
			location := locationFlag
			if resetFlag {
				location = leftbar.ResetLocation
			}
			return runTUI(cmd, cfg, location)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Config file path")
	rootCmd.Flags().StringVarP(&endpointFlag, "endpoint", "e", "", "Catalog server base URL")
	rootCmd.Flags().StringVarP(&userFlag, "user", "u", "", "User name sent to the catalog server")
	rootCmd.Flags().StringVar(&locationFlag, "location", "", "Location query string, e.g. ?reset=1")
	rootCmd.Flags().BoolVar(&resetFlag, "reset", false, "Shorthand for --location "+leftbar.ResetLocation)

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "bqlab %s (commit: %s, built: %s)\n", version, commit, date)
			fmt.Fprintln(out, "\nCatalog drivers:")
			for _, name := range catalog.Drivers() {
				note := ""
				if d := catalog.Registry[name]; d.Unavailable != nil {
					note = " (not compiled in)"
				}
				fmt.Fprintf(out, "  - %s%s\n", name, note)
			}
		},
	}

	rootCmd.AddCommand(versionCmd, newServeCmd(&configFlag), newTablesCmd(&configFlag))
	return rootCmd
}

// loadConfig reads the config file, falling back to defaults with a warning.
func loadConfig(cmd *cobra.Command, path string) *config.Config {
	var cfg *config.Config
	var err error
	if path != "" {
		cfg, err = config.Load(path)
	} else {
		cfg, err = config.LoadDefault()
	}
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: could not load config: %v\n", err)
		cfg = config.DefaultConfig()
	}
	return cfg
}

func runTUI(cmd *cobra.Command, cfg *config.Config, location string) error {
	stderr := cmd.ErrOrStderr()

	// The terminal belongs to Bubble Tea, so logs go to a file.
	logger := logging.Discard()
	if logPath, err := config.ResolvePath(cfg.Log.Path, "bqlab.log"); err == nil {
		l, f, err := logging.OpenFile(logPath, cfg.Log.Level)
		if err != nil {
			fmt.Fprintf(stderr, "Warning: could not open log file: %v\n", err)
		} else {
			defer f.Close()
			logger = l
		}
	}

	var auditLog *audit.Logger
	if cfg.Audit.Enabled {
		auditPath, err := config.ResolvePath(cfg.Audit.Path, "audit.jsonl")
		if err == nil {
			auditLog, err = audit.New(auditPath, cfg.Audit.MaxSizeMB)
		}
		if err != nil {
			fmt.Fprintf(stderr, "Warning: could not open audit log: %v\n", err)
		}
	}

	var persister *store.Persister
	if statePath, err := config.ResolvePath(cfg.StatePath, "state.db"); err == nil {
		persister, err = store.OpenPersister(statePath)
		if err != nil {
			fmt.Fprintf(stderr, "Warning: could not open state, editors will not be saved: %v\n", err)
		}
	}

	st, err := store.New(store.Options{
		Persister: persister,
		Audit:     auditLog,
		Logger:    logger,
	})
	if err != nil {
		return fmt.Errorf("load state: %w", err)
	}
	defer func() {
		if err := st.Close(); err != nil {
			logger.Warn("close state", "error", err)
		}
	}()

	client := api.NewClient(cfg.Endpoint, cfg.User, cfg.Timeout())
	if cfg.Server.UserHeader != "" {
		client.UserHeader = cfg.Server.UserHeader
	}
	logger.Info("starting", "version", version, "endpoint", cfg.Endpoint, "location", location)

	model := app.New(app.Options{
		Config:   cfg,
		Store:    st,
		Fetcher:  client,
		Location: location,
		Logger:   logger,
	})

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running application: %w", err)
	}
	return nil
}
