package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/turtacn/oralrisk/internal/infrastructure/ml"
	"github.com/turtacn/oralrisk/pkg/logger"
)

var (
	trainRows     int
	trainSeed     int64
	trainDataset  string
	trainArtifact string
	trainFromFile bool
)

// trainCmd synthesizes the sample dataset, fits the pipeline and writes the artifact.
// trainCmd 生成样本数据集、训练模型并写出模型文件。
var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Train the risk classifier and write the model artifact",
	Long: `train generates a seeded synthetic dataset (or reads an existing one with --from-file),
fits the feature pipeline and logistic regression, prints the held-out evaluation and
saves the artifact to a local path or an s3://bucket/key URI.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := loadConfig()
		if err != nil {
			return err
		}
		ctx := cmd.Context()

		dataset := firstNonEmpty(trainDataset, cfg.Model.DatasetPath)
		artifact := firstNonEmpty(trainArtifact, cfg.Model.ArtifactPath)

		var samples []ml.Sample
		if trainFromFile {
			f, err := os.Open(dataset)
			if err != nil {
				return fmt.Errorf("open dataset: %w", err)
			}
			samples, err = ml.ReadDatasetCSV(f)
			_ = f.Close()
			if err != nil {
				return err
			}
		} else {
			samples = ml.GenerateDataset(trainRows, trainSeed)
			if err := writeDataset(dataset, samples); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Sample data written to %s (%d rows)\n", dataset, len(samples))
		}

		opts := ml.DefaultTrainOptions()
		opts.Seed = trainSeed
		pipeline, eval, err := ml.Fit(ctx, samples, opts)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), eval.Report())

		if err := ml.NewArtifactStore(&cfg.AWS, log).SaveArtifact(ctx, artifact, pipeline); err != nil {
			return err
		}
		log.Info(ctx, "Model artifact saved", logger.Fields{"artifact": artifact, "accuracy": eval.Accuracy})
		fmt.Fprintf(cmd.OutOrStdout(), "Model saved to %s\n", artifact)
		return nil
	},
}

func init() {
	trainCmd.Flags().IntVar(&trainRows, "rows", 1000, "number of synthetic rows")
	trainCmd.Flags().Int64Var(&trainSeed, "seed", 42, "seed for data generation and the train/test split")
	trainCmd.Flags().StringVar(&trainDataset, "dataset", "", "dataset CSV path (default model.dataset_path)")
	trainCmd.Flags().StringVar(&trainArtifact, "artifact", "", "artifact path or s3:// URI (default model.artifact_path)")
	trainCmd.Flags().BoolVar(&trainFromFile, "from-file", false, "train on the existing dataset instead of generating one")
	rootCmd.AddCommand(trainCmd)
}

func writeDataset(path string, samples []ml.Sample) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create dataset dir: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create dataset: %w", err)
	}
	if err := ml.WriteDatasetCSV(f, samples); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
