package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/sadopc/bqlab/internal/catalog"
)

func newTablesCmd(configFlag *string) *cobra.Command {
	var flags catalogFlags

	cmd := &cobra.Command{
		Use:   "tables",
		Short: "Manage the table catalog directly",
	}
	flags.register(cmd)

	// withCatalog opens the configured catalog for the duration of fn.
	withCatalog := func(cmd *cobra.Command, fn func(ctx context.Context, st *catalog.Store) error) error {
		cfg := loadConfig(cmd, *configFlag)
		flags.apply(cfg)
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		st, _, err := openCatalog(ctx, cfg)
		if err != nil {
			return err
		}
		defer st.Close()
		return fn(ctx, st)
	}

	var (
		searchFlag string
		orderFlag  string
		descFlag   bool
	)
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List registered tables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCatalog(cmd, func(ctx context.Context, st *catalog.Store) error {
				tables, total, err := st.List(ctx, catalog.ListOptions{
					Order:    orderFlag,
					Desc:     descFlag,
					Search:   searchFlag,
					PageSize: catalog.DefaultPageSize,
				})
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTables(tables))
				fmt.Fprintf(cmd.OutOrStdout(), "%d of %d tables\n", len(tables), total)
				return nil
			})
		},
	}
	listCmd.Flags().StringVarP(&searchFlag, "search", "s", "", "Filter by project, dataset or table name")
	listCmd.Flags().StringVar(&orderFlag, "order", "table_name", "Order by table_name, changed_on or offset")
	listCmd.Flags().BoolVar(&descFlag, "desc", false, "Reverse the order")

	var (
		descriptionFlag string
		featuredFlag    bool
		offsetFlag      int
		cacheFlag       int
	)
	addCmd := &cobra.Command{
		Use:   "add project:dataset.table",
		Short: "Register a table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := catalog.ParseFullName(args[0])
			if err != nil {
				return err
			}
			t.Description = descriptionFlag
			t.IsFeatured = featuredFlag
			t.Offset = offsetFlag
			t.CacheTimeout = cacheFlag
			return withCatalog(cmd, func(ctx context.Context, st *catalog.Store) error {
				created, err := st.Create(ctx, t)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "added %s (id %d)\n", created.FullName(), created.ID)
				return nil
			})
		},
	}
	addCmd.Flags().StringVarP(&descriptionFlag, "description", "d", "", "Table description")
	addCmd.Flags().BoolVar(&featuredFlag, "featured", false, "Mark the table as featured")
	addCmd.Flags().IntVar(&offsetFlag, "offset", 0, "Timezone offset in hours")
	addCmd.Flags().IntVar(&cacheFlag, "cache-timeout", 0, "Cache timeout in seconds")

	rmCmd := &cobra.Command{
		Use:     "rm id|project:dataset.table",
		Aliases: []string{"remove"},
		Short:   "Remove a table",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCatalog(cmd, func(ctx context.Context, st *catalog.Store) error {
				id, err := resolveTableID(ctx, st, args[0])
				if err != nil {
					return err
				}
				if err := st.Delete(ctx, id); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "removed %s\n", args[0])
				return nil
			})
		},
	}

	cmd.AddCommand(listCmd, addCmd, rmCmd)
	return cmd
}

// resolveTableID accepts a numeric id or a full table name.
func resolveTableID(ctx context.Context, st *catalog.Store, arg string) (int64, error) {
	if id, err := strconv.ParseInt(arg, 10, 64); err == nil {
		return id, nil
	}
	want, err := catalog.ParseFullName(arg)
	if err != nil {
		return 0, err
	}
	tables, _, err := st.List(ctx, catalog.ListOptions{Search: want.TableName, PageSize: catalog.DefaultPageSize})
	if err != nil {
		return 0, err
	}
	for _, t := range tables {
		if t.FullName() == want.FullName() {
			return t.ID, nil
		}
	}
	return 0, fmt.Errorf("%s: %w", arg, catalog.ErrNotFound)
}

func renderTables(tables []catalog.Table) string {
	if len(tables) == 0 {
		return "no tables registered"
	}
	rows := make([][]string, 0, len(tables))
	for _, t := range tables {
		featured := ""
		if t.IsFeatured {
			featured = "yes"
		}
		rows = append(rows, []string{
			catalog.FormatID(t.ID),
			t.FullName(),
			featured,
			strconv.Itoa(t.Offset),
			t.ChangedOn.Format("2006-01-02 15:04"),
			t.Description,
		})
	}
	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "TABLE", "FEATURED", "OFFSET", "CHANGED", "DESCRIPTION").
		Rows(rows...).
		String()
}
