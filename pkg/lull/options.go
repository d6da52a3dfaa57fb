package lull

import (
	"time"

	"github.com/lulldev/lull/pkg/plan"
)

// Option configures a Planner.
type Option func(*OptionHolder)

// WithRecommender sets the candidate recommender. When unset, the planner
// builds a Gemini recommender if an API key is configured, and otherwise
// runs rule-based only.
func WithRecommender(r Recommender) Option {
	return func(o *OptionHolder) {
		o.recommender = r
	}
}

// WithGeminiAPIKey sets the Gemini API key for the built-in recommender.
func WithGeminiAPIKey(key string) Option {
	return func(o *OptionHolder) {
		o.geminiAPIKey = key
	}
}

// WithGeminiModel sets the Gemini model for the built-in recommender.
func WithGeminiModel(model string) Option {
	return func(o *OptionHolder) {
		o.geminiModel = model
	}
}

// WithRecommendTimeout bounds each recommender call.
func WithRecommendTimeout(d time.Duration) Option {
	return func(o *OptionHolder) {
		o.recommendTimeout = d
	}
}

// WithMaxActivities caps how many activities are accepted per day.
func WithMaxActivities(n int) Option {
	return func(o *OptionHolder) {
		o.maxActivities = n
	}
}

// WithMinGapMinutes sets the smallest free interval reported as a gap.
func WithMinGapMinutes(n int) Option {
	return func(o *OptionHolder) {
		o.minGapMinutes = n
	}
}

// WithCacheTTL sets how long generated day plans stay cached.
func WithCacheTTL(d time.Duration) Option {
	return func(o *OptionHolder) {
		o.cacheTTL = d
	}
}

// WithBufferPolicy sets the buffer applied when a context declares none.
func WithBufferPolicy(p plan.BufferPolicy) Option {
	return func(o *OptionHolder) {
		o.defaultBuffer = p
	}
}

// OptionHolder holds configuration options.
type OptionHolder struct {
	recommender      Recommender
	geminiAPIKey     string
	geminiModel      string
	recommendTimeout time.Duration
	maxActivities    int
	minGapMinutes    int
	cacheTTL         time.Duration
	defaultBuffer    plan.BufferPolicy
}
