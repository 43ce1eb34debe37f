// Command schemebot runs the Bharath scheme directory API and its tools.
//
//	@title						Bharath Scheme Bot API
//	@version					1.0
//	@description				Government welfare scheme directory with a rule-based chat assistant.
//	@BasePath					/api
//	@schemes					http https
//	@accept						json
//	@produce					json
package main

import (
	"os"

	"github.com/Nireeksha2317/bharath-scheme-bot-multilingual-ai-guide/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
