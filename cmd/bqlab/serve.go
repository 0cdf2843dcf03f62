package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sadopc/bqlab/internal/audit"
	"github.com/sadopc/bqlab/internal/catalog"
	"github.com/sadopc/bqlab/internal/config"
	"github.com/sadopc/bqlab/internal/logging"
	"github.com/sadopc/bqlab/internal/server"
)

type catalogFlags struct {
	driver string
	dsn    string
}

func (f *catalogFlags) register(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVar(&f.driver, "driver", "", "Catalog driver (sqlite, postgres, mysql, duckdb)")
	cmd.PersistentFlags().StringVar(&f.dsn, "dsn", "", "Catalog data source name")
}

// apply overrides the server settings of cfg. A DSN given without a driver
// picks the driver from its shape.
func (f *catalogFlags) apply(cfg *config.Config) {
	if f.dsn != "" {
		cfg.Server.DSN = f.dsn
		if f.driver == "" {
			if d := detectDriver(f.dsn); d != "" {
				cfg.Server.Driver = d
			}
		}
	}
	if f.driver != "" {
		cfg.Server.Driver = f.driver
	}
}

// openCatalog opens the catalog configured in cfg.
func openCatalog(ctx context.Context, cfg *config.Config) (*catalog.Store, string, error) {
	dsn, err := cfg.CatalogDSN()
	if err != nil {
		return nil, "", err
	}
	st, err := catalog.Open(ctx, cfg.Server.Driver, dsn)
	if err != nil {
		return nil, "", err
	}
	return st, dsn, nil
}

func newServeCmd(configFlag *string) *cobra.Command {
	var (
		addrFlag string
		flags    catalogFlags
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the catalog server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig(cmd, *configFlag)
			flags.apply(cfg)
			if addrFlag != "" {
				cfg.Server.Addr = addrFlag
			}

			logger := logging.New(os.Stderr, cfg.Log.Level)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			st, dsn, err := openCatalog(ctx, cfg)
			if err != nil {
				return err
			}
			defer st.Close()
			logger.Info("catalog opened", "driver", st.Dialect(), "dsn", audit.SanitizeDSN(dsn))

			srv := server.New(server.Config{
				Addr:       cfg.Server.Addr,
				Catalog:    st,
				UserHeader: cfg.Server.UserHeader,
				Access:     cfg.Server.Access,
				Logger:     logger,
			})
			if err := srv.Serve(ctx); err != nil {
				return fmt.Errorf("serve: %w", err)
			}
			logger.Info("server stopped")
			return nil
		},
	}
	cmd.Flags().StringVar(&addrFlag, "addr", "", "Listen address (default from config, :8088)")
	flags.register(cmd)
	return cmd
}

func detectDriver(dsn string) string {
	lower := strings.ToLower(dsn)
	switch {
	case strings.HasPrefix(lower, "postgres://") || strings.HasPrefix(lower, "postgresql://"):
		return "postgres"
	case strings.HasPrefix(lower, "mysql://"):
		return "mysql"
	case strings.HasPrefix(lower, "sqlite://") || strings.HasPrefix(lower, "file:"):
		return "sqlite"
	case strings.HasPrefix(lower, "duckdb://"):
		return "duckdb"
	case strings.HasSuffix(lower, ".db") || strings.HasSuffix(lower, ".sqlite") || strings.HasSuffix(lower, ".sqlite3"):
		return "sqlite"
	case strings.HasSuffix(lower, ".duckdb"):
		return "duckdb"
	case strings.Contains(lower, "@tcp("):
		return "mysql"
	}
	return ""
}
