// Package cli implements the schemebot command line: the API server, the
// catalogue seeder and an offline intent classifier.
package cli

import (
	"errors"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// version is stamped at build time with -ldflags "-X ...cli.version=...".
var version = "dev"

var envFile string

var rootCmd = &cobra.Command{
	Use:   "schemebot",
	Short: "Government welfare scheme directory and chat assistant",
	Long: `schemebot serves a catalogue of government welfare schemes over HTTP
and answers chat messages with matching schemes.

Configuration is read from the environment, optionally preloaded from a
.env file.`,
	SilenceUsage: true,
	PersistentPreRunE: func(*cobra.Command, []string) error {
		return loadEnvFile(envFile)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file to preload; missing files are ignored")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// loadEnvFile preloads path into the environment. Variables already set win.
func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
