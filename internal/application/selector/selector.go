package selector

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/sawpanic/venuerank/internal/data/facade"
	"github.com/sawpanic/venuerank/internal/domain/analysis"
	"github.com/sawpanic/venuerank/internal/domain/gates"
	"github.com/sawpanic/venuerank/internal/domain/scoring"
	"github.com/sawpanic/venuerank/internal/domain/venue"
	"github.com/sawpanic/venuerank/internal/metrics"
)

// Exclusion reason classes, used for logs and metrics labels.
const (
	reasonFetchFailure     = "fetch_failure"
	reasonInsufficientData = "insufficient_data"
	reasonInvalidBook      = "invalid_book"
	reasonSafetyGate       = "safety_gate"
)

// defaultCycleTimeout bounds a cycle when the caller's context carries no
// deadline. Total cycle latency is bounded by the deadline, never by the
// slowest venue.
const defaultCycleTimeout = 10 * time.Second

// AvailabilitySource supplies the currently enabled venue ids. The engine
// treats it as a plain set of strings; credential handling lives elsewhere.
type AvailabilitySource interface {
	EnabledVenues(ctx context.Context) ([]string, error)
}

// Selector runs the evaluation cycle: concurrent per-venue fetch+score,
// safety gating, ranking, and rolling performance tracking. One cycle
// moves through fetching, scoring, gating and ranking before terminating
// in one of the three outcomes.
type Selector struct {
	profiles     map[string]*venue.Profile
	source       facade.SnapshotSource
	gate         *gates.SafetyGate
	estimator    *scoring.Estimator
	tracker      *PerformanceTracker
	availability AvailabilitySource
	registry     *metrics.Registry
	timeout      time.Duration
}

// SelectorOption customizes a Selector.
type SelectorOption func(*Selector)

// WithAvailability installs the enabled-venue source used when a caller
// passes no explicit candidate list.
func WithAvailability(src AvailabilitySource) SelectorOption {
	return func(s *Selector) { s.availability = src }
}

// WithMetrics installs a metrics registry.
func WithMetrics(reg *metrics.Registry) SelectorOption {
	return func(s *Selector) { s.registry = reg }
}

// WithCycleTimeout overrides the default deadline applied when the
// caller's context has none.
func WithCycleTimeout(d time.Duration) SelectorOption {
	return func(s *Selector) { s.timeout = d }
}

// NewSelector builds a selector over the given snapshot source and safety
// gate. Venues join via RegisterVenue.
func NewSelector(source facade.SnapshotSource, gate *gates.SafetyGate, opts ...SelectorOption) *Selector {
	s := &Selector{
		profiles:  make(map[string]*venue.Profile),
		source:    source,
		gate:      gate,
		estimator: scoring.NewEstimator(),
		tracker:   NewPerformanceTracker(),
		timeout:   defaultCycleTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RegisterVenue adds a validated venue profile. Registering the same id
// again replaces the earlier profile.
func (s *Selector) RegisterVenue(prof *venue.Profile) {
	s.profiles[prof.ID] = prof
}

// History exposes the rolling score history for one venue, oldest-first.
func (s *Selector) History(venueID string) []float64 {
	return s.tracker.History(venueID)
}

// venueEval is one venue's terminal state within a cycle: either a scored
// candidate or an exclusion with a classified reason.
type venueEval struct {
	venueID     string
	candidate   *Candidate
	quoteVolume float64
	reasonClass string
	reason      string
}

// Evaluate runs one cycle for the symbol. When venueIDs is empty the
// availability source (or the full registered set) supplies candidates.
// Per-venue failures never abort the cycle; only configuration misuse
// returns an error.
func (s *Selector) Evaluate(ctx context.Context, symbol string, venueIDs []string) (*Result, error) {
	if symbol == "" {
		return nil, fmt.Errorf("symbol must not be empty")
	}

	start := time.Now()
	result := &Result{
		CycleID:    uuid.NewString(),
		Symbol:     symbol,
		Timestamp:  start,
		Exclusions: make(map[string]string),
	}

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	candidates, err := s.candidateProfiles(ctx, venueIDs)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		result.Outcome = OutcomeAllFailed
		result.Reason = "no candidate venues to analyze"
		s.finish(result, 0, start)
		return result, nil
	}

	log.Debug().Str("cycle", result.CycleID).Str("symbol", symbol).
		Int("venues", len(candidates)).Msg("evaluation cycle started")

	// Fetching + scoring fan out per venue; ranking waits for every task
	// to reach a terminal state, since the best score is unknown until all
	// safe candidates are known.
	evals := s.evaluateAll(ctx, symbol, candidates)

	// Gating.
	var survivors []Candidate
	eligible := 0
	for _, ev := range evals {
		if ev.candidate == nil {
			result.Exclusions[ev.venueID] = ev.reason
			s.countExclusion(ev.venueID, ev.reasonClass)
			continue
		}

		prof := s.profiles[ev.venueID]
		gateRes := s.gate.Check(prof, ev.candidate.Risk, ev.candidate.Liquidity, ev.quoteVolume)
		ev.candidate.Gate = gateRes
		ev.candidate.PassesSafetyGate = gateRes.Passed
		if !gateRes.Passed {
			result.Exclusions[ev.venueID] = gateRes.OverallReason
			s.countExclusion(ev.venueID, reasonSafetyGate)
			log.Debug().Str("venue", ev.venueID).Str("symbol", symbol).
				Str("reason", gateRes.OverallReason).Msg("venue blocked by safety gate")
			continue
		}

		eligible++
		survivors = append(survivors, *ev.candidate)
	}

	// Ranking: score descending, ties broken by tighter spread, then by
	// venue id for determinism.
	sort.Slice(survivors, func(i, j int) bool {
		a, b := survivors[i], survivors[j]
		if a.Score.Composite != b.Score.Composite {
			return a.Score.Composite > b.Score.Composite
		}
		if a.Liquidity.SpreadPct != b.Liquidity.SpreadPct {
			return a.Liquidity.SpreadPct < b.Liquidity.SpreadPct
		}
		return a.VenueID < b.VenueID
	})
	result.Candidates = survivors

	switch {
	case len(survivors) > 0:
		best := survivors[0]
		result.Outcome = OutcomeSelected
		result.ChosenVenueID = best.VenueID
		result.ConfidencePct = best.Score.ProfitPotentialPct
		result.RiskLevel = riskLevelFor(best.Risk.RiskScore)
		s.tracker.Record(best.VenueID, best.Score.Composite)
		if s.registry != nil {
			s.registry.VenueSelected.WithLabelValues(best.VenueID).Inc()
		}
		log.Info().Str("cycle", result.CycleID).Str("symbol", symbol).
			Str("venue", best.VenueID).Float64("score", best.Score.Composite).
			Str("risk", string(result.RiskLevel)).Msg("venue selected")
	case eligibleNone(evals):
		result.Outcome = OutcomeAllFailed
		result.Reason = "all venues failed to fetch or score"
	default:
		result.Outcome = OutcomeNoneEligible
		result.Reason = "no venue meets zero-loss criteria"
		log.Info().Str("cycle", result.CycleID).Str("symbol", symbol).
			Int("excluded", len(result.Exclusions)).Msg("no venue eligible")
	}

	s.finish(result, eligible, start)
	return result, nil
}

// eligibleNone reports whether not a single venue produced a scored
// candidate, i.e. every exclusion happened before gating.
func eligibleNone(evals []venueEval) bool {
	for _, ev := range evals {
		if ev.candidate != nil {
			return false
		}
	}
	return true
}

// candidateProfiles resolves the venue set for this cycle.
func (s *Selector) candidateProfiles(ctx context.Context, venueIDs []string) ([]*venue.Profile, error) {
	ids := venueIDs
	if len(ids) == 0 && s.availability != nil {
		enabled, err := s.availability.EnabledVenues(ctx)
		if err != nil {
			return nil, fmt.Errorf("resolve enabled venues: %w", err)
		}
		ids = enabled
	}
	if len(ids) == 0 {
		for id := range s.profiles {
			ids = append(ids, id)
		}
	}

	profiles := make([]*venue.Profile, 0, len(ids))
	for _, id := range ids {
		prof, ok := s.profiles[id]
		if !ok {
			log.Warn().Str("venue", id).Msg("skipping unregistered venue")
			continue
		}
		profiles = append(profiles, prof)
	}
	return profiles, nil
}

// evaluateAll fans out one fetch+score task per venue and waits until all
// reach a terminal state or the cycle deadline expires. Venues still
// pending at the deadline are treated as fetch failures.
func (s *Selector) evaluateAll(ctx context.Context, symbol string, profiles []*venue.Profile) []venueEval {
	results := make(chan venueEval, len(profiles))
	for _, prof := range profiles {
		go func(prof *venue.Profile) {
			results <- s.evaluateOne(ctx, symbol, prof)
		}(prof)
	}

	received := make(map[string]venueEval, len(profiles))
	for range profiles {
		select {
		case ev := <-results:
			received[ev.venueID] = ev
		case <-ctx.Done():
		}
		if ctx.Err() != nil {
			// Drain whatever already completed without blocking.
			for {
				select {
				case ev := <-results:
					received[ev.venueID] = ev
					continue
				default:
				}
				break
			}
			break
		}
	}

	evals := make([]venueEval, 0, len(profiles))
	for _, prof := range profiles {
		ev, ok := received[prof.ID]
		if !ok {
			ev = venueEval{
				venueID:     prof.ID,
				reasonClass: reasonFetchFailure,
				reason:      "fetch failure: cycle deadline exceeded",
			}
			log.Warn().Str("venue", prof.ID).Str("symbol", symbol).
				Msg("venue missed cycle deadline")
		}
		evals = append(evals, ev)
	}
	return evals
}

// evaluateOne runs the fetch+analyze+score pipeline for a single venue and
// classifies any failure as a per-venue exclusion.
func (s *Selector) evaluateOne(ctx context.Context, symbol string, prof *venue.Profile) venueEval {
	ev := venueEval{venueID: prof.ID}

	snap, err := s.source.Snapshot(ctx, prof.ID, symbol)
	if err != nil {
		ev.reasonClass = reasonFetchFailure
		ev.reason = fmt.Sprintf("fetch failure: %v", err)
		log.Debug().Err(err).Str("venue", prof.ID).Str("symbol", symbol).
			Msg("snapshot fetch failed")
		return ev
	}

	analyzer := analysis.NewAnalyzer(prof.Thresholds.SpreadCeilingPct, prof.Thresholds.MinLiquidityQuote)

	risk, err := analyzer.Risk(snap)
	if err != nil {
		ev.reasonClass = reasonInsufficientData
		ev.reason = fmt.Sprintf("analyzer exclusion: %v", err)
		return ev
	}
	liq, err := analyzer.Liquidity(snap)
	if err != nil {
		ev.reasonClass = reasonInvalidBook
		ev.reason = fmt.Sprintf("analyzer exclusion: %v", err)
		return ev
	}

	score := s.estimator.Estimate(prof, snap, risk, liq)
	ev.quoteVolume = snap.QuoteVolume()
	ev.candidate = &Candidate{
		VenueID:   prof.ID,
		Risk:      risk,
		Liquidity: liq,
		Score:     score,
	}
	return ev
}

func (s *Selector) countExclusion(venueID, class string) {
	if s.registry != nil {
		s.registry.VenueExcluded.WithLabelValues(venueID, class).Inc()
	}
}

func (s *Selector) finish(result *Result, eligible int, start time.Time) {
	result.Elapsed = time.Since(start)
	if s.registry != nil {
		s.registry.ObserveCycle(string(result.Outcome), eligible, result.Elapsed)
	}
}
