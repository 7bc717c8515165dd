package main

import (
	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/docparse/internal/classify"
	"github.com/joseph-ayodele/docparse/internal/core"
)

var flagRank bool

var classifyCmd = &cobra.Command{
	Use:   "classify <file>",
	Short: "Match a document against the template profiles",
	Long: `Classify fingerprints a PDF (or a pre-extracted .json layout) and reports
the best matching template, its similarity score and whether the document
is unforeseen. --rank also lists every scored profile.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		p, err := newPipeline(ctx, true)
		if err != nil {
			return err
		}
		doc, err := p.Provider.Load(ctx, args[0])
		if err != nil {
			return err
		}
		if doc.ID == "" {
			doc.ID = core.DocIDFromPath(args[0])
		}

		det := p.Processor.Detect(ctx, doc)
		if !flagRank {
			return writeJSON(cmd.OutOrStdout(), det)
		}
		ranked := p.Processor.Rank(doc)
		if ranked == nil {
			ranked = []classify.Candidate{}
		}
		return writeJSON(cmd.OutOrStdout(), struct {
			core.Detection
			Candidates []classify.Candidate `json:"candidates"`
		}{det, ranked})
	},
}

func init() {
	classifyCmd.Flags().BoolVar(&flagRank, "rank", false, "list every profile score, best first")
	rootCmd.AddCommand(classifyCmd)
}
