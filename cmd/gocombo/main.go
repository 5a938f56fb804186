package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"gocombo/adapters/dataset"
	"gocombo/adapters/excel"
	"gocombo/adapters/llm"
	"gocombo/adapters/postgres"
	"gocombo/adapters/scryfall"
	"gocombo/app"
	"gocombo/domain/combo"
	"gocombo/internal/api"
	"gocombo/internal/config"
	"gocombo/ports"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "gocombo",
		Short: "Pauper combo discovery pipeline",
		Long: `gocombo builds a Pauper card dataset with combo-relevant features,
synthesizes reasoning examples for fine-tuning, and searches for new
combos with the resulting model.`,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(
		newCollectCmd(),
		newDiscoverCmd(),
		newExploreCmd(),
		newExportCmd(),
		newServeCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// signalContext cancels on SIGINT/SIGTERM so long runs shut down cleanly.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func openDatasetStore(cfg *config.Config) (*dataset.Store, error) {
	store, err := dataset.NewStore(cfg.Data.Dir)
	if err != nil {
		return nil, fmt.Errorf("open dataset store: %w", err)
	}
	return store, nil
}

// openDiscoveryStore prefers postgres when DATABASE_URL is set so concurrent
// or long-lived discovery state survives the data dir; otherwise discovery
// state lives next to the JSON datasets.
func openDiscoveryStore(cfg *config.Config, fallback *dataset.Store) (ports.DiscoveryStore, error) {
	if cfg.Database.URL == "" {
		return fallback, nil
	}
	store, err := postgres.NewDiscoveryStore(cfg.Database.URL)
	if err != nil {
		return nil, fmt.Errorf("open postgres discovery store: %w", err)
	}
	log.Printf("[Main] using postgres discovery store")
	return store, nil
}

func newLLMClient(cfg *config.Config) (ports.LLMClient, error) {
	if err := cfg.RequireLLM(); err != nil {
		return nil, err
	}
	return llm.NewClient(llm.Config{
		APIKey:      cfg.AI.APIKey,
		BaseURL:     cfg.AI.BaseURL,
		Timeout:     cfg.AI.Timeout,
		Temperature: cfg.AI.Temperature,
	})
}

func newCollectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "collect",
		Short: "Fetch Pauper cards, extract features, and build the training dataset",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			store, err := openDatasetStore(cfg)
			if err != nil {
				return err
			}

			ctx, cancel := signalContext()
			defer cancel()

			svc := &app.CollectService{
				Source: scryfall.NewClient(scryfall.Config{
					BaseURL:   cfg.Scryfall.BaseURL,
					Query:     cfg.Scryfall.Query,
					PageDelay: cfg.Scryfall.PageDelay,
					Timeout:   cfg.Scryfall.Timeout,
				}),
				Store:               store,
				Synth:               combo.NewSynthesizer(cfg.Synth.NegativeRate, cfg.Synth.Seed),
				AnalysisSampleLimit: cfg.Synth.AnalysisSampleLimit,
			}
			report, err := svc.Run(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("Collected %d cards, %d training examples (%d positives, %d negatives)\n",
				report.Cards, report.TotalExamples, report.PairExamples, report.NegativeExamples)
			fmt.Printf("Dataset written to %s\n", cfg.Data.Dir)
			return nil
		},
	}
}

func newDiscoverCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "discover",
		Short: "Search card combinations for new combos with the fine-tuned model",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			store, err := openDatasetStore(cfg)
			if err != nil {
				return err
			}
			discoveryStore, err := openDiscoveryStore(cfg, store)
			if err != nil {
				return err
			}
			client, err := newLLMClient(cfg)
			if err != nil {
				return err
			}

			records, features, err := store.ReadCards()
			if err != nil {
				return fmt.Errorf("read card dataset (run collect first): %w", err)
			}
			known, err := store.ReadKnownCombos()
			if err != nil {
				log.Printf("[Main] known combos unavailable, using built-ins: %v", err)
				known = combo.KnownCombos
			}

			ctx, cancel := signalContext()
			defer cancel()

			log.Printf("[Main] discovery with model %s (adapter dir %s)", cfg.AI.Model, cfg.AI.AdapterDir)
			svc := &app.DiscoveryService{
				LLM:            client,
				Model:          cfg.AI.Model,
				Store:          discoveryStore,
				MaxTokens:      cfg.AI.MaxTokens,
				MinTagCount:    cfg.Search.MinTagCount,
				CandidateLimit: cfg.Search.CandidateLimit,
				TripleLimit:    cfg.Search.TripleLimit,
			}
			report, err := svc.Run(ctx, records, features, known)
			if err != nil {
				return err
			}
			fmt.Printf("Tried %d combinations (%d skipped as seen), found %d potential combos\n",
				report.Tried, report.SkippedSeen, report.Found)
			return nil
		},
	}
}

func newExploreCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "explore",
		Short: "Interactively query the model about specific combos",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			store, err := openDatasetStore(cfg)
			if err != nil {
				return err
			}
			client, err := newLLMClient(cfg)
			if err != nil {
				return err
			}
			records, _, err := store.ReadCards()
			if err != nil {
				return fmt.Errorf("read card dataset (run collect first): %w", err)
			}

			ctx, cancel := signalContext()
			defer cancel()

			svc := app.NewExplorerService(client, cfg.AI.Model, cfg.AI.MaxTokens, records)
			return svc.RunInteractive(ctx, os.Stdin, os.Stdout)
		},
	}
}

func newExportCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the card feature matrix to an Excel workbook",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			store, err := openDatasetStore(cfg)
			if err != nil {
				return err
			}
			records, features, err := store.ReadCards()
			if err != nil {
				return fmt.Errorf("read card dataset (run collect first): %w", err)
			}

			if out == "" {
				out = filepath.Join(cfg.Data.Dir, "feature_matrix.xlsx")
			}
			if err := excel.ExportFeatureMatrix(out, records, features); err != nil {
				return err
			}
			fmt.Printf("Exported %d cards to %s\n", len(records), out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output path (default: <data dir>/feature_matrix.xlsx)")
	return cmd
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the datasets and discoveries over a read-only JSON API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			store, err := openDatasetStore(cfg)
			if err != nil {
				return err
			}
			discoveryStore, err := openDiscoveryStore(cfg, store)
			if err != nil {
				return err
			}

			server, err := api.NewServer(cfg.Server.Port, store, discoveryStore)
			if err != nil {
				return err
			}

			ctx, cancel := signalContext()
			defer cancel()
			return server.Run(ctx)
		},
	}
}
