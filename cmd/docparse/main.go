// Command docparse builds template profiles, classifies documents and
// extracts structured records from them.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/docparse/internal/app"
	"github.com/joseph-ayodele/docparse/internal/common"
	"github.com/joseph-ayodele/docparse/internal/fingerprint"
	"github.com/joseph-ayodele/docparse/internal/profiles"
	"github.com/joseph-ayodele/docparse/internal/repository"
)

var (
	flagLogLevel string
	flagProfiles string
	flagUseDB    bool

	cfg    *common.Config
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "docparse",
	Short: "Classify medical documents by template and extract records",
	Long: `docparse fingerprints document layouts, matches them against template
profiles built from labeled exemplars, and extracts schema-conformant
records for invoices, consent forms and intake forms.

Configuration comes from the YAML file named by DOCPARSE_CONFIG and from
environment variables; flags override both.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		var err error
		cfg, err = common.LoadConfig()
		if err != nil {
			return err
		}
		if flagLogLevel != "" {
			cfg.Log.Level = flagLogLevel
		}
		if cmd.Flags().Changed("profiles") {
			cfg.Pipeline.ProfilesPath = flagProfiles
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		// logs go to stderr so command output stays machine readable
		logger = app.NewLogger(cfg, os.Stderr)
		slog.SetDefault(logger)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "debug, info, warn or error (default from LOG_LEVEL)")
	rootCmd.PersistentFlags().StringVar(&flagProfiles, "profiles", "", "template profile JSON (default from PROFILES_PATH)")
	rootCmd.PersistentFlags().BoolVar(&flagUseDB, "db", false, "read and write profiles in the configured database")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// openProfileRepo opens the database when --db is set. The returned close
// func is never nil.
func openProfileRepo(ctx context.Context) (repository.ProfileRepository, func(), error) {
	if !flagUseDB {
		return nil, func() {}, nil
	}
	db, err := app.OpenDB(ctx, cfg, logger)
	if err != nil {
		return nil, func() {}, err
	}
	if err := repository.Migrate(ctx, db); err != nil {
		db.Close(logger)
		return nil, func() {}, err
	}
	return repository.NewProfileRepository(db, logger), func() { db.Close(logger) }, nil
}

// loadStore reads the profile store for classification.
func loadStore(ctx context.Context, s fingerprint.Schema) (*profiles.Store, error) {
	repo, closeDB, err := openProfileRepo(ctx)
	if err != nil {
		return nil, err
	}
	defer closeDB()
	if repo == nil {
		return app.LoadProfiles(ctx, nil, cfg.Pipeline.ProfilesPath, s)
	}
	return app.LoadProfiles(ctx, repo, "", s)
}

// newPipeline wires the processor. Without profiles every document
// classifies as unforeseen.
func newPipeline(ctx context.Context, withProfiles bool) (*app.Pipeline, error) {
	fpx, err := app.NewExtractor(cfg)
	if err != nil {
		return nil, err
	}
	var store *profiles.Store
	if withProfiles {
		if store, err = loadStore(ctx, fpx.Schema()); err != nil {
			return nil, err
		}
		logger.Debug("profiles.load.ok", "count", store.Len())
	}
	return app.NewPipeline(cfg, store, fpx, app.NewProvider(logger), nil, logger)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
