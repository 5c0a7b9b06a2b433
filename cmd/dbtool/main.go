package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"text/tabwriter"
	"trace-emissions-service/internal/adapters/repositories"
	"trace-emissions-service/internal/config"
	"trace-emissions-service/internal/domain"
	"trace-emissions-service/internal/platform/db"
	"trace-emissions-service/internal/platform/obs"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

type app struct {
	cfg    config.Config
	logger *zap.Logger
	db     *sql.DB
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:          "dbtool",
		Short:        "Manage the facility directory database",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.open(cmd.Context())
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			return a.close()
		},
	}

	root.AddCommand(newMigrateCmd(a), newSeedCmd(a), newFacilitiesCmd(a))
	return root
}

func (a *app) open(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.RequireDatabase(); err != nil {
		return err
	}

	logger, err := obs.NewLogger(cfg.Env, cfg.LogLevel)
	if err != nil {
		return err
	}

	conn, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}

	a.cfg, a.logger, a.db = cfg, logger, conn
	return nil
}

func (a *app) close() error {
	if a.logger != nil {
		_ = a.logger.Sync()
	}
	if a.db != nil {
		return a.db.Close()
	}
	return nil
}

func newMigrateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := repositories.Migrate(cmd.Context(), a.db); err != nil {
				return err
			}
			a.logger.Info("schema ready")
			return nil
		},
	}
}

func newSeedCmd(a *app) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load facilities from a JSON seed file",
		Example: `  dbtool seed
  dbtool seed --file data/seeds/facilities.json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if file == "" {
				file = a.cfg.SeedPath
			}
			if err := repositories.Migrate(cmd.Context(), a.db); err != nil {
				return err
			}
			n, err := repositories.SeedFromJSON(cmd.Context(), a.db, file)
			if err != nil {
				return err
			}
			a.logger.Info("seeding complete", zap.String("file", file), zap.Int("facilities", n))
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "seed file (defaults to SEED_PATH)")
	return cmd
}

func newFacilitiesCmd(a *app) *cobra.Command {
	var category string
	cmd := &cobra.Command{
		Use:   "facilities",
		Short: "List facilities in the directory",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var filter domain.Category
			if category != "" {
				c, err := domain.ParseCategory(category)
				if err != nil {
					return err
				}
				filter = c
			}

			list, err := repositories.NewPostgresFacilityRepository(a.db).ListFacilities(cmd.Context())
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tCATEGORY\tNAME\tADDRESS\tCOORDINATES")
			for _, f := range list {
				if filter != "" && f.Category != filter {
					continue
				}
				coords := "-"
				if f.Coordinates != nil {
					coords = fmt.Sprintf("%.5f,%.5f", f.Coordinates.Lat, f.Coordinates.Lng)
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", f.ID, f.Category, f.Name, f.Address, coords)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVarP(&category, "category", "c", "", "only list sales, production or manufacturing facilities")
	return cmd
}
