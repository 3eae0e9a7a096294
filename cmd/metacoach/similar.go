package main

import (
	"fmt"

	"github.com/IsaiahDupree/MetaCoach/internal/infra/postgres"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
)

var similarLimit int

var similarCmd = &cobra.Command{
	Use:   "similar <text>",
	Short: "Find past analyses whose transcript is closest to the given text",
	Args:  cobra.ExactArgs(1),
	RunE:  runSimilar,
}

func init() {
	similarCmd.Flags().IntVarP(&similarLimit, "limit", "l", 5, "Maximum number of matches")
}

func runSimilar(cmd *cobra.Command, args []string) error {
	cfg, pipeline, err := loadPipeline()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	vec, err := pipeline.Model.Embed(ctx, args[0])
	if err != nil {
		return err
	}

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connect to postgres: %w", err)
	}
	defer pool.Close()

	matches, err := postgres.NewJobRepository(pool).SearchSimilar(ctx, vec, similarLimit)
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), matches)
}
