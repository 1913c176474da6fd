package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"clues/internal/config"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var outputFormat string

var rootCmd = &cobra.Command{
	Use:   "clues",
	Short: "Search-grounded property field extraction with Gemini",
	Long: `Clues extracts property facts for Florida valuations by running three
specialist Gemini prompts with Google Search grounding:

  - Public records (county appraiser, tax and permit portals)
  - Neighborhood (WalkScore, ZIP market data, landmarks)
  - Portals (Zillow, Redfin, Realtor.com, Homes.com estimates)

Every answer is validated against a typed schema before it is used.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(
		&outputFormat, "output", "o", "json", "output format: json or yaml",
	)
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		_ = config.Load()
	}

	rootCmd.AddCommand(schemaCmd, fieldsCmd, countiesCmd, validateCmd, extractCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

// printOutput writes v in the selected output format.
func printOutput(w io.Writer, v any) error {
	switch outputFormat {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		// Round-trip through JSON so yaml sees the json tag names.
		b, err := json.Marshal(v)
		if err != nil {
			return err
		}
		var doc any
		if err := json.Unmarshal(b, &doc); err != nil {
			return err
		}
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(doc)
	default:
		return fmt.Errorf("unknown output format %q", outputFormat)
	}
}
