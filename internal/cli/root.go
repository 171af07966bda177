// Package cli is the storefront-admin command line: schema migration,
// admin grants and catalog export, run directly against the database.
package cli

import (
	"database/sql"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/01moynul/storefront-golang/internal/config"
	"github.com/01moynul/storefront-golang/internal/database"
)

// RootOptions holds global flags and the database opener.
type RootOptions struct {
	DSN string

	// Open connects to the database. Tests swap it for sqlmock.
	Open func(dsn string) (*sql.DB, error)
}

// NewRootCommand creates the root command for storefront-admin.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{Open: database.OpenDB})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "storefront-admin",
		Short: "Operator tools for the storefront database",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if opts.DSN != "" {
				opts.DSN = config.NormalizeDSN(opts.DSN)
				return nil
			}
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			opts.DSN = cfg.DSN
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.DSN, "dsn", "", "MySQL DSN (default: DB_DSN_PRIMARY from the environment)")

	cmd.AddCommand(NewMigrateCommand(opts))
	cmd.AddCommand(NewGrantAdminCommand(opts))
	cmd.AddCommand(NewExportProductsCommand(opts))

	return cmd
}

func (o *RootOptions) open() (*sql.DB, error) {
	db, err := o.Open(o.DSN)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	return db, nil
}
