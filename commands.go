package main

import (
	"fmt"
	"io"
	"os"

	"clues/internal/config"
	"clues/internal/extract"
	"clues/internal/logging"
	"clues/internal/portals"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var schemaFormat string

var schemaCmd = &cobra.Command{
	Use:   "schema [batch]",
	Short: "Print batch schemas in Gemini or JSON-schema form",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		render := func(b extract.Batch) (any, error) {
			switch schemaFormat {
			case "gemini":
				return b.Schema.Gemini(), nil
			case "json":
				return b.Schema.JSONSchema(), nil
			}
			return nil, fmt.Errorf("--format must be gemini or json")
		}

		if len(args) == 1 {
			b, ok := extract.LookupBatch(args[0])
			if !ok {
				return fmt.Errorf("unknown batch %q", args[0])
			}
			out, err := render(b)
			if err != nil {
				return err
			}
			return printOutput(cmd.OutOrStdout(), out)
		}

		all := make(map[string]any)
		for _, b := range extract.Batches() {
			out, err := render(b)
			if err != nil {
				return err
			}
			all[string(b.ID)] = out
		}
		return printOutput(cmd.OutOrStdout(), all)
	},
}

var fieldsCmd = &cobra.Command{
	Use:   "fields",
	Short: "List the extractable fields",
	RunE: func(cmd *cobra.Command, args []string) error {
		return printOutput(cmd.OutOrStdout(), extract.Fields())
	},
}

var countiesCmd = &cobra.Command{
	Use:   "counties",
	Short: "List counties with known government portals",
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := portals.Load(config.CountyPortalsFile())
		if err != nil {
			return err
		}
		return printOutput(cmd.OutOrStdout(), reg.Counties())
	},
}

var validateCmd = &cobra.Command{
	Use:   "validate <batch> <file|->",
	Short: "Validate a model answer against a batch schema",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		b, ok := extract.LookupBatch(args[0])
		if !ok {
			return fmt.Errorf("unknown batch %q", args[0])
		}
		raw, err := readInput(cmd, args[1])
		if err != nil {
			return err
		}

		res := b.Schema.SafeParseJSON(raw)
		if err := printOutput(cmd.OutOrStdout(), res); err != nil {
			return err
		}
		if !res.Success {
			return fmt.Errorf("%d validation issue(s)", len(res.Issues))
		}
		return nil
	},
}

var (
	extractAddress string
	extractCounty  string
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Run all extraction batches for one property",
	RunE: func(cmd *cobra.Command, args []string) error {
		logger, err := logging.New(config.Debug())
		if err != nil {
			return err
		}
		defer func() { _ = logger.Sync() }()

		reg, err := portals.Load(config.CountyPortalsFile())
		if err != nil {
			return err
		}
		ex, err := extract.FromConfig(cmd.Context(), reg, logger)
		if err != nil {
			return err
		}
		if !reg.Supported(extractCounty) {
			logger.Warn("no portal entry for county; using generic instructions", zap.String("county", extractCounty))
		}

		report, err := ex.Run(cmd.Context(), extractAddress, extractCounty)
		if report != nil {
			if perr := printOutput(cmd.OutOrStdout(), report); perr != nil {
				return perr
			}
		}
		return err
	},
}

func init() {
	schemaCmd.Flags().StringVar(&schemaFormat, "format", "gemini", "schema format: gemini or json")

	extractCmd.Flags().StringVar(&extractAddress, "address", "", "street address, e.g. \"123 Main Street, Tampa, FL 33602\"")
	extractCmd.Flags().StringVar(&extractCounty, "county", "", "county name, e.g. Hillsborough")
	_ = extractCmd.MarkFlagRequired("address")
	_ = extractCmd.MarkFlagRequired("county")
}

func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	return os.ReadFile(path)
}
