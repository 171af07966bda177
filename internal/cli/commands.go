package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/01moynul/storefront-golang/internal/catalog"
	"github.com/01moynul/storefront-golang/internal/database"
	"github.com/01moynul/storefront-golang/internal/repository"
)

// NewMigrateCommand creates the migrate command.
func NewMigrateCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:          "migrate",
		Short:        "Create the users, products and cart_items tables",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := opts.open()
			if err != nil {
				return err
			}
			defer db.Close()

			if err := database.Migrate(cmd.Context(), db); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "schema is up to date")
			return nil
		},
	}
}

// NewGrantAdminCommand creates the grant-admin command.
func NewGrantAdminCommand(opts *RootOptions) *cobra.Command {
	var revoke bool

	cmd := &cobra.Command{
		Use:          "grant-admin <email>",
		Short:        "Give (or with --revoke, take away) admin rights",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := opts.open()
			if err != nil {
				return err
			}
			defer db.Close()

			users := &repository.Users{DB: db}
			if err := users.SetAdmin(cmd.Context(), args[0], !revoke); err != nil {
				return err
			}
			verb := "granted"
			if revoke {
				verb = "revoked"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "admin %s for %s\n", verb, args[0])
			return nil
		},
	}

	cmd.Flags().BoolVar(&revoke, "revoke", false, "remove the admin flag instead")
	return cmd
}

// NewExportProductsCommand creates the export-products command.
func NewExportProductsCommand(opts *RootOptions) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:          "export-products",
		Short:        "Write the product catalog to an Excel workbook",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := opts.open()
			if err != nil {
				return err
			}
			defer db.Close()

			products, err := (&repository.Products{DB: db}).List(cmd.Context())
			if err != nil {
				return err
			}

			f, err := os.Create(out)
			if err != nil {
				return fmt.Errorf("create %s: %w", out, err)
			}
			if err := catalog.WriteXLSX(f, products); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "exported %d product(s) to %s\n", len(products), out)
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "products.xlsx", "output file")
	return cmd
}
