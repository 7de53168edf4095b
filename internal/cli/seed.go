package cli

import (
	"context"
	"fmt"

	"debug-challenge/internal/config"
	"debug-challenge/internal/infra/memory"
	"debug-challenge/internal/infra/postgres"
	"debug-challenge/internal/logging"
	"debug-challenge/internal/seed"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// NewSeedCmd loads the question bank into Postgres.
func NewSeedCmd(configPath *string) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Migrate and upsert questions from a YAML file into Postgres",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			if file != "" {
				cfg.Questions.SeedFile = file
			}
			logger := logging.New(cfg.Log.Level, cfg.Log.Format)
			return seedDatabase(cmd.Context(), cfg, logger, seed.NewFileLoader(cfg.Questions.SeedFile))
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "questions YAML (defaults to questions.seed_file, then the built-in set)")
	return cmd
}

// seedDatabase brings the schema up to date and upserts the question bank.
func seedDatabase(ctx context.Context, cfg config.Config, logger zerolog.Logger, loader memory.QuestionLoader) error {
	if cfg.Postgres.URL == "" {
		return fmt.Errorf("postgres url not configured")
	}
	questions, err := loader.LoadQuestions(ctx)
	if err != nil {
		return fmt.Errorf("load questions: %w", err)
	}

	db := postgres.OpenBun(cfg.Postgres.URL)
	defer db.Close()

	applied, err := postgres.Migrate(ctx, db)
	if err != nil {
		return err
	}
	if len(applied) > 0 {
		logger.Info().Strs("applied", applied).Msg("migrations applied")
	}

	n, err := postgres.SeedQuestions(ctx, db, questions)
	if err != nil {
		return err
	}
	logger.Info().Int64("questions", n).Msg("questions seeded")
	return nil
}
