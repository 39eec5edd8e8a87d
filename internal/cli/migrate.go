package cli

import (
	"database/sql"
	"fmt"

	"github.com/ikkim/cartcore-backend/internal/db"
	_ "github.com/lib/pq"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"
)

func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or inspect SQL schema migrations",
	}
	for _, sub := range []struct {
		use   string
		short string
	}{
		{"up", "Apply all pending migrations"},
		{"down", "Roll back the most recent migration"},
		{"status", "Print applied and pending migrations"},
		{"version", "Print the current schema version"},
	} {
		command := sub.use
		cmd.AddCommand(&cobra.Command{
			Use:   command,
			Short: sub.short,
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return runMigrate(cmd, command)
			},
		})
	}
	return cmd
}

func runMigrate(cmd *cobra.Command, command string) (err error) {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	conn, err := sql.Open("postgres", cfg.Database.URL())
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer func() {
		err = multierr.Append(err, conn.Close())
	}()

	if err := db.RunMigrations(cmd.Context(), conn, command); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "migrate %s: ok\n", command)
	return nil
}
