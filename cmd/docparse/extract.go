package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/docparse/constants"
	"github.com/joseph-ayodele/docparse/internal/core"
)

var (
	flagClass    string
	flagTemplate string
)

func parseClass(s string) (constants.DocClass, error) {
	c, ok := constants.Canonicalize(s)
	if !ok {
		return "", fmt.Errorf("unknown class %q (want one of %v or auto)", s, constants.AsStringSlice())
	}
	return c, nil
}

var extractCmd = &cobra.Command{
	Use:   "extract <file>",
	Short: "Extract a structured record from a document",
	Long: `Extract classifies the document and runs the matching rule set, or the
generic rule set of the class when the template is unforeseen. --template
skips classification and forces a rule set.

Examples:
  docparse extract scans/inv_001.pdf
  docparse extract scans/form.pdf --class consent
  docparse extract scans/form.pdf --template consent_hipaa`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		class, err := parseClass(flagClass)
		if err != nil {
			return err
		}
		p, err := newPipeline(ctx, flagTemplate == "")
		if err != nil {
			return err
		}

		if flagTemplate == "" {
			out, err := p.Processor.Process(ctx, args[0], class)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), out.Record)
		}

		if _, ok := p.Registry.Get(flagTemplate); !ok {
			return fmt.Errorf("unknown template %q (known: %v)", flagTemplate, p.Registry.Names())
		}
		doc, err := p.Provider.Load(ctx, args[0])
		if err != nil {
			return err
		}
		if doc.ID == "" {
			doc.ID = core.DocIDFromPath(args[0])
		}
		return writeJSON(cmd.OutOrStdout(), p.Processor.Extract(ctx, doc, flagTemplate, class))
	},
}

func init() {
	extractCmd.Flags().StringVar(&flagClass, "class", "auto", "invoice, consent, intake or auto")
	extractCmd.Flags().StringVar(&flagTemplate, "template", "", "force a rule set instead of classifying")
	rootCmd.AddCommand(extractCmd)
}
