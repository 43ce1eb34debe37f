package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Nireeksha2317/bharath-scheme-bot-multilingual-ai-guide/internal/config"
	"github.com/Nireeksha2317/bharath-scheme-bot-multilingual-ai-guide/internal/repo"
	"github.com/Nireeksha2317/bharath-scheme-bot-multilingual-ai-guide/internal/seed"
	"github.com/Nireeksha2317/bharath-scheme-bot-multilingual-ai-guide/internal/services"
	"github.com/Nireeksha2317/bharath-scheme-bot-multilingual-ai-guide/internal/sysutil"
)

var (
	seedFile   string
	seedDryRun bool
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load the scheme catalogue into an empty store",
	Long: `Loads a YAML catalogue (the embedded one unless --file or SEED_PATH is
given) into the configured database. A store that already holds schemes is
left untouched.`,
	Args: cobra.NoArgs,
	RunE: runSeed,
}

func init() {
	seedCmd.Flags().StringVarP(&seedFile, "file", "f", "", "catalogue YAML file (default: embedded catalogue)")
	seedCmd.Flags().BoolVar(&seedDryRun, "dry-run", false, "validate the catalogue without writing")
	rootCmd.AddCommand(seedCmd)
}

func runSeed(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	sysutil.SetupLogger(cmd.ErrOrStderr(), cfg.LogLevel, cfg.LogPretty)

	list, err := seed.Resolve(sysutil.FirstNonEmpty(seedFile, cfg.Seed.Path))
	if err != nil {
		return fmt.Errorf("load catalogue: %w", err)
	}
	if seedDryRun {
		cmd.Printf("catalogue OK: %d schemes\n", len(list))
		return nil
	}

	db, err := repo.Open(cfg.DB.Driver, cfg.DB.DSN, false)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}
	if err := repo.AutoMigrate(db); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	n, err := services.NewSchemeService(db, services.Store{}).Seed(cmd.Context(), list)
	if err != nil {
		return fmt.Errorf("seed: %w", err)
	}
	if n == 0 {
		cmd.Println("store already has schemes; nothing seeded")
		return nil
	}
	cmd.Printf("seeded %d schemes\n", n)
	return nil
}
