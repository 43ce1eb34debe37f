package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Nireeksha2317/bharath-scheme-bot-multilingual-ai-guide/internal/intent"
	"github.com/Nireeksha2317/bharath-scheme-bot-multilingual-ai-guide/internal/services"
)

var classifyCmd = &cobra.Command{
	Use:   "classify [message...]",
	Short: "Classify a chat message without touching the store",
	Long: `Runs the intent classifier on the given words and prints the result as
JSON. Useful for checking keyword rules before deploying them.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runClassify,
}

func init() {
	rootCmd.AddCommand(classifyCmd)
}

type classification struct {
	intent.Result
	Descriptor string `json:"descriptor,omitempty"`
}

func runClassify(cmd *cobra.Command, args []string) error {
	res := intent.Classify(strings.Join(args, " "))
	out := classification{Result: res}
	if res.Intent == intent.SchemeQuery {
		out.Descriptor = services.Descriptor(res)
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal classification: %w", err)
	}
	cmd.Println(string(data))
	return nil
}
