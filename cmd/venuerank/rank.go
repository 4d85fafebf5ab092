package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/sawpanic/venuerank/internal/application/selector"
	"github.com/sawpanic/venuerank/internal/config"
	"github.com/sawpanic/venuerank/internal/domain/gates"
	"github.com/sawpanic/venuerank/internal/domain/market"
	"github.com/sawpanic/venuerank/internal/interfaces/output"
)

func rankCmd() *cobra.Command {
	var (
		configPath  string
		symbol      string
		fixturesDir string
		timeout     time.Duration
		outJSON     string
		outCSV      string
	)

	cmd := &cobra.Command{
		Use:   "rank",
		Short: "Rank venues for a symbol from recorded snapshots",
		Long: `Runs one evaluation cycle over snapshot fixtures: one JSON file per
venue (<dir>/<venue-id>.json) holding trades, OHLCV and an order book.
Useful for replaying market states and tuning venue weight profiles
without live connectivity.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			profiles, errs := cfg.BuildProfiles()
			for _, perr := range errs {
				log.Warn().Err(perr).Msg("venue registration failed")
			}
			if len(profiles) == 0 {
				return fmt.Errorf("no valid venue profiles in %s", configPath)
			}

			sel := selector.NewSelector(
				&fixtureSource{dir: fixturesDir},
				gates.NewSafetyGate(cfg.Global),
				selector.WithAvailability(config.NewStaticAvailability(cfg.EnabledVenueIDs())),
				selector.WithCycleTimeout(timeout),
			)
			for _, prof := range profiles {
				sel.RegisterVenue(prof)
			}

			res, err := sel.Evaluate(cmd.Context(), symbol, nil)
			if err != nil {
				return err
			}
			output.RenderResult(os.Stdout, res)

			emitter := output.NewEmitter()
			if outJSON != "" {
				if err := emitter.EmitResultJSON(outJSON, res); err != nil {
					return err
				}
			}
			if outCSV != "" {
				if err := emitter.EmitCandidatesCSV(outCSV, res); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "config/venues.yaml", "engine config file")
	cmd.Flags().StringVar(&symbol, "symbol", "BTC/USDT", "symbol to evaluate")
	cmd.Flags().StringVar(&fixturesDir, "fixtures", "testdata/snapshots", "snapshot fixture directory")
	cmd.Flags().DurationVar(&timeout, "timeout", 10*time.Second, "cycle deadline")
	cmd.Flags().StringVar(&outJSON, "out-json", "", "write the full result to a JSON file")
	cmd.Flags().StringVar(&outCSV, "out-csv", "", "write ranked candidates to a CSV file")
	return cmd
}

// fixtureSource serves snapshots from per-venue JSON files, standing in
// for live gateways during offline replay.
type fixtureSource struct {
	dir string
}

func (f *fixtureSource) Snapshot(_ context.Context, venueID, symbol string) (*market.Snapshot, error) {
	path := filepath.Join(f.dir, venueID+".json")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture %s: %w", path, err)
	}

	var snap market.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("parse fixture %s: %w", path, err)
	}
	snap.VenueID = venueID
	if snap.Symbol == "" {
		snap.Symbol = symbol
	}
	return &snap, nil
}
