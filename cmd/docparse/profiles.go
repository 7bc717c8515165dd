package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/docparse/internal/app"
	"github.com/joseph-ayodele/docparse/internal/profiles"
)

var (
	flagExemplarRoot string
	flagProfilesOut  string
)

var profilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "Build and inspect template profiles",
}

var profilesBuildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build profiles from a known_templates/<template_id>/ exemplar tree",
	Long: `Build fingerprints every exemplar under the root, averages them per
template and writes the profile store as JSON. With --db the store also
replaces the profiles in the configured database.

Examples:
  docparse profiles build --root known_templates --out template_profiles.json
  docparse profiles build --root known_templates --db`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		fpx, err := app.NewExtractor(cfg)
		if err != nil {
			return err
		}
		root := flagExemplarRoot
		if root == "" {
			root = cfg.Pipeline.ExemplarRoot
		}
		out := flagProfilesOut
		if out == "" {
			out = cfg.Pipeline.ProfilesPath
		}

		repo, closeDB, err := openProfileRepo(ctx)
		if err != nil {
			return err
		}
		defer closeDB()

		builder := profiles.NewBuilder(app.NewProvider(logger), fpx, logger)
		svc := profiles.NewService(builder, repo, logger)
		store, err := svc.Rebuild(ctx, root)
		if err != nil {
			return err
		}
		if err := store.SaveFile(out); err != nil {
			return fmt.Errorf("write %s: %w", out, err)
		}
		if repo != nil {
			if err := svc.Publish(ctx, store); err != nil {
				return err
			}
		}
		fmt.Fprintf(cmd.OutOrStdout(), "built %d profiles into %s\n", store.Len(), out)
		return nil
	},
}

var profilesShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the profile store",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		fpx, err := app.NewExtractor(cfg)
		if err != nil {
			return err
		}
		store, err := loadStore(cmd.Context(), fpx.Schema())
		if err != nil {
			return err
		}
		return store.WriteJSON(cmd.OutOrStdout())
	},
}

var profilesSchemaCmd = &cobra.Command{
	Use:   "slots",
	Short: "List the fingerprint slots in vector order",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		fpx, err := app.NewExtractor(cfg)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(fpx.Schema().Slots)
	},
}

func init() {
	profilesBuildCmd.Flags().StringVar(&flagExemplarRoot, "root", "", "exemplar root (default from EXEMPLAR_ROOT)")
	profilesBuildCmd.Flags().StringVar(&flagProfilesOut, "out", "", "output JSON (default from PROFILES_PATH)")

	profilesCmd.AddCommand(profilesBuildCmd, profilesShowCmd, profilesSchemaCmd)
	rootCmd.AddCommand(profilesCmd)
}
