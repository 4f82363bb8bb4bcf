package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/turtacn/oralrisk/internal/domain/models"
	"github.com/turtacn/oralrisk/internal/infrastructure/persistence"
)

var logListLimit int

// logCmd groups prediction log maintenance commands.
var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Maintain the prediction log",
}

// logMigrateCmd rewrites an older prediction log to the current schema.
// logMigrateCmd 将旧版本的预测日志迁移到当前版本。
var logMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Upgrade the prediction log to the current schema version",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := loadConfig()
		if err != nil {
			return err
		}
		ctx := cmd.Context()

		stores, err := persistence.NewStores(ctx, cfg, log)
		if err != nil {
			return err
		}
		defer stores.Close()

		if stores.Migrator == nil {
			fmt.Fprintf(cmd.OutOrStdout(), "Storage backend %q has no versioned layout, nothing to migrate\n", cfg.Storage.Backend)
			return nil
		}
		from, err := stores.Migrator.Migrate(ctx)
		if err != nil {
			return err
		}
		if from == models.CurrentSchema.Version {
			fmt.Fprintf(cmd.OutOrStdout(), "Prediction log already at schema v%d\n", from)
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Prediction log migrated from v%d to v%d\n", from, models.CurrentSchema.Version)
		return nil
	},
}

// logListCmd prints the newest prediction records.
var logListCmd = &cobra.Command{
	Use:   "list",
	Short: "Print the newest prediction records",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := loadConfig()
		if err != nil {
			return err
		}
		ctx := cmd.Context()

		stores, err := persistence.NewStores(ctx, cfg, log)
		if err != nil {
			return err
		}
		defer stores.Close()

		records, err := stores.Predictions.List(ctx)
		if err != nil {
			return err
		}
		if logListLimit > 0 && len(records) > logListLimit {
			records = records[:logListLimit]
		}

		columns := []string{models.FieldTimestamp, models.FieldUsername, models.FieldName, models.FieldPredictedLabel, models.FieldPredictedProb}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, strings.ToUpper(strings.Join(columns, "\t")))
		for _, r := range records {
			values := make([]string, len(columns))
			for i, c := range columns {
				values[i] = r.Get(c)
			}
			fmt.Fprintln(w, strings.Join(values, "\t"))
		}
		return w.Flush()
	},
}

func init() {
	logListCmd.Flags().IntVar(&logListLimit, "limit", 20, "maximum records to print, 0 for all")
	logCmd.AddCommand(logMigrateCmd, logListCmd)
	rootCmd.AddCommand(logCmd)
}
