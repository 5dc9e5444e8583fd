package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"cloud.google.com/go/firestore"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/weiwei-tsao/covid-state-compare/internal/business/covid"
	"github.com/weiwei-tsao/covid-state-compare/internal/platform/arcgis"
	"github.com/weiwei-tsao/covid-state-compare/internal/platform/config"
	firestoreclient "github.com/weiwei-tsao/covid-state-compare/internal/platform/firestore"
	"github.com/weiwei-tsao/covid-state-compare/internal/platform/logging"
	"github.com/weiwei-tsao/covid-state-compare/internal/platform/socrata"
	"github.com/weiwei-tsao/covid-state-compare/internal/repository"
	"github.com/weiwei-tsao/covid-state-compare/pkg/model"
)

// Version is set at build time via ldflags.
var Version = "dev"

// RunLister reads refresh run history.
type RunLister interface {
	ListRuns(ctx context.Context, limit int) ([]model.RefreshRun, error)
}

// Deps are the collaborators every subcommand uses. Runs is nil without Firestore.
type Deps struct {
	Service *covid.Service
	Runs    RunLister
	close   func()
}

// NewRootCmd builds the command tree. With nil deps the pipeline is assembled from
// configuration before any subcommand runs.
func NewRootCmd(deps *Deps) *cobra.Command {
	var verbose bool
	preset := deps != nil
	if deps == nil {
		deps = &Deps{}
	}

	root := &cobra.Command{
		Use:           "covidctl",
		Short:         "Compare COVID-19 deaths by age group across US states",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if preset {
				return nil
			}
			return deps.load(cmd.Context(), verbose)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if deps.close != nil {
				deps.close()
			}
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(
		newCompareCmd(deps),
		newStatesCmd(deps),
		newNationalCmd(deps),
		newRunsCmd(deps),
	)
	return root
}

// Execute runs the CLI with configuration from the environment.
func Execute() error {
	return NewRootCmd(nil).ExecuteContext(context.Background())
}

func (d *Deps) load(ctx context.Context, verbose bool) error {
	_ = godotenv.Load(".env.local", ".env")

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config load: %w", err)
	}
	level := cfg.LogLevel
	if verbose {
		level = "debug"
	}
	logging.Init(level, cfg.LogFile)

	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	var recorder covid.RunRecorder = covid.NopRecorder{}
	var client *firestore.Client
	if cfg.FirestoreEnabled() {
		client, err = firestoreclient.Connect(ctx, cfg)
		if err != nil {
			return fmt.Errorf("firestore init: %w", err)
		}
		repo := repository.NewRunRepository(client)
		recorder = repo
		d.Runs = repo
		d.close = func() { client.Close() }
	}

	fetcher := covid.NewFetcher(
		arcgis.New(nil, arcgis.Config{URL: cfg.ArcGISURL, Timeout: cfg.HTTPTimeout}),
		socrata.New(nil, socrata.Config{
			Domain:   cfg.SocrataDomain,
			Dataset:  cfg.SocrataDataset,
			Limit:    cfg.SocrataLimit,
			AppToken: cfg.SocrataAppToken,
			Timeout:  cfg.HTTPTimeout,
		}),
	)
	d.Service = covid.NewService(covid.NewCache(fetcher, covid.CacheOptions{
		Location: loc,
		Recorder: recorder,
	}))
	log.Debug().Str("timezone", loc.String()).Bool("runHistory", d.Runs != nil).Msg("pipeline ready")
	return nil
}

func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
