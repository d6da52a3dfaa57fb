// Package lull orchestrates the scheduling engine: gap finding, intensity
// classification, candidate generation, validation and the per-day cache.
package lull

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/lulldev/lull/pkg/gaps"
	"github.com/lulldev/lull/pkg/gemini"
	"github.com/lulldev/lull/pkg/intensity"
	"github.com/lulldev/lull/pkg/placement"
	"github.com/lulldev/lull/pkg/plan"
	"github.com/lulldev/lull/pkg/plancache"
	"github.com/lulldev/lull/pkg/rules"
)

// Recommender proposes candidate activities for a day. Implementations may
// call out over any transport; the planner bounds each call with a timeout
// and treats every failure as a signal to fall back to the rule-based
// generator. Proposals pass through the same validator as rule-based
// candidates, so correctness never depends on which generator ran.
type Recommender interface {
	Propose(ctx context.Context, sc plan.Context, dayGaps []plan.Gap, in plan.Intensity) ([]plan.Candidate, error)
}

// Plan is one day's scheduling result. Gaps and intensity are derived
// values recomputed on every call, including cache hits.
type Plan struct {
	Activities  []plan.Activity `json:"activities"`
	Intensity   plan.Intensity  `json:"intensity"`
	Gaps        []plan.Gap      `json:"gaps"`
	GeneratedAt time.Time       `json:"generated_at"`
	Cached      bool            `json:"cached"`
}

// Planner is the engine's entry point. It owns no long-lived state except
// the per-(user, date) generation cache.
type Planner struct {
	logger           *slog.Logger
	recommender      Recommender
	cache            *plancache.Cache
	validator        *placement.Validator
	recommendTimeout time.Duration
	maxActivities    int
	minGapMinutes    int
	defaultBuffer    plan.BufferPolicy
}

// New creates a Planner with the default logger.
func New(opts ...Option) *Planner {
	return NewWithLogger(slog.Default(), opts...)
}

// NewWithLogger creates a Planner.
func NewWithLogger(logger *slog.Logger, opts ...Option) *Planner {
	optHolder := &OptionHolder{}
	for _, opt := range opts {
		opt(optHolder)
	}

	recommender := optHolder.recommender
	if recommender == nil && optHolder.geminiAPIKey != "" {
		recommender = gemini.New(optHolder.geminiAPIKey, optHolder.geminiModel, logger)
	}

	recommendTimeout := optHolder.recommendTimeout
	if recommendTimeout <= 0 {
		recommendTimeout = 10 * time.Second
	}

	return &Planner{
		logger:           logger,
		recommender:      recommender,
		cache:            plancache.New(optHolder.cacheTTL, logger),
		validator:        placement.NewWithLogger(logger),
		recommendTimeout: recommendTimeout,
		maxActivities:    optHolder.maxActivities,
		minGapMinutes:    optHolder.minGapMinutes,
		defaultBuffer:    optHolder.defaultBuffer,
	}
}

// ComputeIntensity classifies how packed the waking window is.
func (*Planner) ComputeIntensity(blocks []plan.BusyBlock, waking plan.Interval) plan.Intensity {
	return intensity.Classify(blocks, waking)
}

// FindGaps returns the usable free intervals of the waking window.
func (p *Planner) FindGaps(blocks []plan.BusyBlock, waking plan.Interval, energy []plan.Interval) []plan.Gap {
	return gaps.Find(blocks, waking, energy, p.minGapMinutes)
}

// GetOrGenerateActivities produces (or returns the cached) activity set
// for the context's user and date. The only error this call surfaces is an
// invalid context; recommender failures degrade to the rule-based
// generator and constraint rejections shrink the result.
func (p *Planner) GetOrGenerateActivities(ctx context.Context, sc plan.Context, forceRegenerate bool) (*Plan, error) {
	if err := sc.Validate(); err != nil {
		return nil, fmt.Errorf("invalid scheduling context: %w", err)
	}

	waking := sc.WakingWindow()
	dayGaps := gaps.Find(sc.Events, waking, sc.EnergyIntervals(), p.minGapMinutes)
	dayIntensity := intensity.Classify(sc.Events, waking)
	p.logger.Debug("day analyzed", "user", sc.UserID, "date", sc.DateKey(),
		"gaps", len(dayGaps), "intensity", dayIntensity.Level, "busy_ratio", dayIntensity.Ratio)

	key := plancache.Key(sc.UserID, sc.DateKey())
	entry, cached, err := p.cache.GetOrGenerate(ctx, key, forceRegenerate, func(ctx context.Context) (plancache.Entry, error) {
		activities, genErr := p.generate(ctx, sc, dayGaps, dayIntensity)
		if genErr != nil {
			return plancache.Entry{}, genErr
		}
		return plancache.Entry{
			Activities:  activities,
			Intensity:   dayIntensity,
			GeneratedAt: time.Now().UTC(),
		}, nil
	})
	if err != nil {
		return nil, err
	}

	p.logger.Info("day plan ready", "user", sc.UserID, "date", sc.DateKey(),
		"activities", len(entry.Activities), "intensity", entry.Intensity.Level, "cached", cached)
	return &Plan{
		Activities:  entry.Activities,
		Intensity:   entry.Intensity,
		Gaps:        dayGaps,
		GeneratedAt: entry.GeneratedAt,
		Cached:      cached,
	}, nil
}

// ClearActivities drops the cached plan for a user and date ("2006-01-02").
// Durable storage, if any, belongs to the caller.
func (p *Planner) ClearActivities(userID, date string) {
	p.cache.Clear(plancache.Key(userID, date))
}

// generate produces the validated activity set: recommender candidates
// when a recommender is configured and succeeds, rule-based otherwise.
func (p *Planner) generate(ctx context.Context, sc plan.Context, dayGaps []plan.Gap, in plan.Intensity) ([]plan.Activity, error) {
	policy := sc.Buffer
	if policy == (plan.BufferPolicy{}) {
		policy = p.defaultBuffer
	}
	// The generator anchors candidates against the same policy the
	// validator enforces; sc is a copy, so this stays call-local.
	sc.Buffer = policy
	loc := sc.Location()

	if candidates := p.tryRecommender(ctx, sc, dayGaps, in); candidates != nil {
		accepted, err := p.validator.Validate(candidates, dayGaps, sc.Events, policy, loc, p.maxActivities)
		if err == nil {
			return accepted, nil
		}
		// Malformed recommender output is a collaborator failure, not ours.
		p.logger.Warn("recommender candidates malformed, falling back to rules", "error", err)
	}

	candidates := rules.Generate(sc, dayGaps, in)
	p.logger.Debug("rule-based candidates generated", "count", len(candidates), "intensity", in.Level)
	return p.validator.Validate(candidates, dayGaps, sc.Events, policy, loc, p.maxActivities)
}

// tryRecommender runs the recommender under its timeout, returning nil on
// any failure so the caller falls back. A panicking recommender is treated
// the same as an erroring one.
func (p *Planner) tryRecommender(ctx context.Context, sc plan.Context, dayGaps []plan.Gap, in plan.Intensity) (candidates []plan.Candidate) {
	if p.recommender == nil {
		return nil
	}
	defer func() {
		if r := recover(); r != nil {
			p.logger.Warn("recommender panicked, falling back to rules", "panic", r)
			candidates = nil
		}
	}()

	callCtx, cancel := context.WithTimeout(ctx, p.recommendTimeout)
	defer cancel()

	proposed, err := p.recommender.Propose(callCtx, sc, dayGaps, in)
	if err != nil {
		p.logger.Warn("recommender failed, falling back to rules", "error", err)
		return nil
	}
	if len(proposed) == 0 {
		p.logger.Warn("recommender returned no candidates, falling back to rules")
		return nil
	}
	p.logger.Debug("recommender candidates received", "count", len(proposed))
	return proposed
}
