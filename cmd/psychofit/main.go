package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"psychofit/adapters/bms"
	"psychofit/adapters/dataset"
	"psychofit/adapters/postgres"
	"psychofit/api"
	"psychofit/app"
	internal "psychofit/internal"
	"psychofit/internal/config"
	"psychofit/internal/fit"
	"psychofit/internal/report"
	"psychofit/ports"
)

func main() {
	// .env is optional; environment variables win.
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "psychofit",
		Short: "Psychometric model fitting and model comparison",
	}

	rootCmd.AddCommand(
		newFitCmd(),
		newSimulateCmd(),
		newServeCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// buildStudy wires the study service from config and flags.
func buildStudy(cfg *config.Config, logger *internal.Logger) (*app.StudyService, error) {
	var store ports.FitStore
	if cfg.Database.URL != "" {
		db, err := postgres.Connect(cfg.Database.URL)
		if err != nil {
			return nil, err
		}
		if err := postgres.Migrate(context.Background(), db); err != nil {
			return nil, err
		}
		store = postgres.NewFitRepository(db)
	}

	return app.NewStudyService(
		dataset.NewReader(),
		fit.NewDefaultFitter(logger),
		store,
		ports.SeededFactory{Base: cfg.Fit.Seed},
		logger,
	), nil
}

func newFitCmd() *cobra.Command {
	var restarts int
	var seed int64
	var markdown bool

	cmd := &cobra.Command{
		Use:   "fit [data-file]",
		Short: "Fit and compare both psychometric models on a two-column dataset",
		Long: `Fit the stationary and non-stationary psychometric models to a
two-column dataset (stimulus in degrees, response in {1,2}) by multi-start
maximum likelihood, then compare them by AIC/BIC.

Example: psychofit fit data.csv --restarts 20 --seed 1`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if seed != 0 {
				cfg.Fit.Seed = seed
			}
			if restarts != 0 {
				cfg.Fit.Restarts = restarts
			}

			logger := internal.NewDefaultLogger()
			study, err := buildStudy(cfg, logger)
			if err != nil {
				return err
			}

			result, err := study.RunComparison(cmd.Context(), args[0], cfg.Fit.Restarts)
			if err != nil {
				return err
			}

			if markdown {
				fmt.Println(report.StudyMarkdown(result))
				return nil
			}
			return printJSON(result)
		},
	}

	cmd.Flags().IntVar(&restarts, "restarts", 0, "random restarts per model (default from RESTARTS)")
	cmd.Flags().Int64Var(&seed, "seed", 0, "base random seed (default from SEED)")
	cmd.Flags().BoolVar(&markdown, "markdown", false, "print a markdown report instead of JSON")
	return cmd
}

func newSimulateCmd() *cobra.Command {
	var subjects, trials, restarts int
	var seed int64
	var useBIC, markdown bool

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run a synthetic model recovery study with group Bayesian model selection",
		Long: `Simulate a mixed population (half stationary, half non-stationary
subjects), fit both models to every subject, and run group-level Bayesian
model selection over the rescaled criteria.

Example: psychofit simulate --subjects 15 --trials 500 --seed 42`,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := internal.NewDefaultLogger()
			recovery := app.NewRecoveryService(
				fit.NewDefaultFitter(logger),
				bms.NewVariational(seed),
				logger,
			)

			result, err := recovery.Run(cmd.Context(), app.RecoveryConfig{
				SubjectsPerModel: subjects,
				TrialsPerSubject: trials,
				Restarts:         restarts,
				Seed:             seed,
				UseBIC:           useBIC,
			})
			if err != nil {
				return err
			}

			if markdown {
				fmt.Println(report.RecoveryMarkdown(result))
				return nil
			}
			return printJSON(result)
		},
	}

	cmd.Flags().IntVar(&subjects, "subjects", 10, "subjects per generating model")
	cmd.Flags().IntVar(&trials, "trials", 500, "trials per subject")
	cmd.Flags().IntVar(&restarts, "restarts", 5, "random restarts per fit")
	cmd.Flags().Int64Var(&seed, "seed", 42, "base random seed")
	cmd.Flags().BoolVar(&useBIC, "bic", false, "use rescaled BIC as the evidence proxy")
	cmd.Flags().BoolVar(&markdown, "markdown", false, "print a markdown report instead of JSON")
	return cmd
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the fitting and simulation pipelines over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			logger := internal.NewDefaultLogger()
			study, err := buildStudy(cfg, logger)
			if err != nil {
				return err
			}
			recovery := app.NewRecoveryService(
				fit.NewDefaultFitter(logger),
				bms.NewVariational(cfg.Fit.Seed),
				logger,
			)

			server := api.NewServer(api.Config{Port: cfg.Server.Port}, study, recovery, logger)
			return server.Start()
		},
	}
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
