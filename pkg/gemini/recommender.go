// Package gemini implements the activity recommender backed by Google's
// Gemini API. Its proposals are best-effort: the planner validates them
// through the same placement rules as rule-based candidates and falls back
// to the deterministic generator on any failure here.
package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/codeGROOVE-dev/retry"
	"google.golang.org/genai"

	"github.com/lulldev/lull/pkg/plan"
	"github.com/lulldev/lull/pkg/rules"
)

const defaultModel = "gemini-2.5-flash-lite"

// Recommender proposes candidate activities via the Gemini API.
type Recommender struct {
	apiKey string
	model  string
	logger *slog.Logger
}

// New creates a Recommender. An empty model selects the default.
func New(apiKey, model string, logger *slog.Logger) *Recommender {
	if model == "" {
		model = defaultModel
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Recommender{apiKey: apiKey, model: model, logger: logger}
}

// proposal is the schema-constrained shape Gemini returns, one per activity.
type proposal struct {
	ActivityType    string   `json:"activity_type"`
	Title           string   `json:"title"`
	StartLocal      string   `json:"start_local"`
	DurationMinutes int      `json:"duration_minutes"`
	MicroSteps      []string `json:"micro_steps"`
	Priority        string   `json:"priority"`
}

// Propose asks Gemini for candidate activities for the day. The call is
// bounded by the caller's context deadline; only transient API errors are
// retried. Empty or unparseable output is an error so the planner can fall
// back.
func (r *Recommender) Propose(ctx context.Context, sc plan.Context, dayGaps []plan.Gap, in plan.Intensity) ([]plan.Candidate, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		Backend: genai.BackendGeminiAPI,
		APIKey:  r.apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("creating genai client: %w", err)
	}

	prompt := buildPrompt(sc, dayGaps, in)
	r.logger.Debug("recommender prompt built", "length", len(prompt), "gaps", len(dayGaps), "intensity", in.Level)

	modelName := strings.TrimPrefix(r.model, "models/")
	contents := []*genai.Content{
		{Role: "user", Parts: []*genai.Part{{Text: prompt}}},
	}
	temperature := float32(0.2)
	genConfig := &genai.GenerateContentConfig{
		Temperature:      &temperature,
		MaxOutputTokens:  2000,
		ResponseMIMEType: "application/json",
		ResponseSchema:   responseSchema(),
	}

	var resp *genai.GenerateContentResponse
	err = retry.Do(
		func() error {
			var callErr error
			resp, callErr = client.Models.GenerateContent(ctx, modelName, contents, genConfig)
			return callErr
		},
		retry.Context(ctx),
		retry.Attempts(3),
		retry.Delay(200*time.Millisecond),
		retry.MaxDelay(2*time.Second),
		retry.DelayType(retry.BackOffDelay),
		retry.OnRetry(func(n uint, err error) {
			r.logger.Debug("retrying Gemini call", "attempt", n+1, "error", err)
		}),
		retry.RetryIf(isTransientError),
	)
	if err != nil {
		return nil, fmt.Errorf("gemini call failed: %w", err)
	}

	proposals, err := parseProposals(resp)
	if err != nil {
		return nil, err
	}
	return r.toCandidates(proposals, sc)
}

// responseSchema constrains Gemini to a strict JSON array of proposals.
func responseSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeArray,
		Items: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"activity_type": {
					Type:        genai.TypeString,
					Enum:        []string{"breathing", "movement", "meal", "workout"},
					Description: "Kind of micro-activity",
				},
				"title": {
					Type:        genai.TypeString,
					Description: "Short user-facing title, e.g. '10-minute walk outside'",
				},
				"start_local": {
					Type:        genai.TypeString,
					Description: "Start time in the user's local clock, HH:MM 24-hour",
				},
				"duration_minutes": {
					Type:        genai.TypeInteger,
					Description: "Duration in minutes",
				},
				"micro_steps": {
					Type:        genai.TypeArray,
					Items:       &genai.Schema{Type: genai.TypeString},
					Description: "3-5 concrete steps to do the activity",
				},
				"priority": {
					Type:        genai.TypeString,
					Enum:        []string{"high", "medium", "low"},
					Description: "Placement priority when the day fills up",
				},
			},
			PropertyOrdering: []string{"activity_type", "title", "start_local", "duration_minutes", "micro_steps", "priority"},
			Required:         []string{"activity_type", "title", "start_local", "duration_minutes", "micro_steps", "priority"},
		},
	}
}

// parseProposals extracts the proposal array from a Gemini response,
// falling back to fenced-block extraction when the model wraps the JSON in
// prose.
func parseProposals(resp *genai.GenerateContentResponse) ([]proposal, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return nil, fmt.Errorf("empty response from Gemini")
	}
	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return nil, fmt.Errorf("no content in Gemini response")
	}
	text := candidate.Content.Parts[0].Text
	if text == "" {
		return nil, fmt.Errorf("empty text in Gemini response")
	}

	var proposals []proposal
	if err := json.Unmarshal([]byte(text), &proposals); err != nil {
		jsonText, extractErr := extractJSONArray(text)
		if extractErr != nil {
			return nil, fmt.Errorf("parsing Gemini response: %w", err)
		}
		if err := json.Unmarshal([]byte(jsonText), &proposals); err != nil {
			return nil, fmt.Errorf("parsing extracted Gemini JSON: %w", err)
		}
	}
	if len(proposals) == 0 {
		return nil, fmt.Errorf("gemini returned no proposals")
	}
	return proposals, nil
}

// extractJSONArray pulls a JSON array out of text that may wrap it in
// markdown fences or explanation.
func extractJSONArray(text string) (string, error) {
	if isValidJSONArray(text) {
		return text, nil
	}

	// ```json fenced block
	if start := strings.Index(text, "```json"); start != -1 {
		start += len("```json")
		if end := strings.Index(text[start:], "```"); end != -1 {
			jsonText := strings.TrimSpace(text[start : start+end])
			if isValidJSONArray(jsonText) {
				return jsonText, nil
			}
		}
	}

	// Bare fenced block
	if start := strings.Index(text, "```"); start != -1 {
		start += len("```")
		if end := strings.Index(text[start:], "```"); end != -1 {
			jsonText := strings.TrimSpace(text[start : start+end])
			if isValidJSONArray(jsonText) {
				return jsonText, nil
			}
		}
	}

	// First [ to last ]
	if start := strings.Index(text, "["); start != -1 {
		if end := strings.LastIndex(text, "]"); end > start {
			jsonText := strings.TrimSpace(text[start : end+1])
			if isValidJSONArray(jsonText) {
				return jsonText, nil
			}
		}
	}

	return "", fmt.Errorf("no valid JSON array found in response")
}

func isValidJSONArray(s string) bool {
	var arr []json.RawMessage
	return json.Unmarshal([]byte(s), &arr) == nil
}

// toCandidates converts parsed proposals into plan candidates, resolving
// local clock times against the context's date and location. Individually
// broken proposals are skipped; if nothing survives, that is an error so
// the planner falls back.
func (r *Recommender) toCandidates(proposals []proposal, sc plan.Context) ([]plan.Candidate, error) {
	loc := sc.Location()
	y, m, d := sc.Date.Date()

	out := make([]plan.Candidate, 0, len(proposals))
	for _, p := range proposals {
		activityType, ok := parseActivityType(p.ActivityType)
		if !ok {
			r.logger.Debug("skipping proposal with unknown type", "type", p.ActivityType, "title", p.Title)
			continue
		}
		if p.Title == "" || p.DurationMinutes <= 0 {
			r.logger.Debug("skipping incomplete proposal", "title", p.Title, "duration", p.DurationMinutes)
			continue
		}
		startLocal, err := plan.ParseTimeOfDay(p.StartLocal)
		if err != nil {
			r.logger.Debug("skipping proposal with bad start time", "start", p.StartLocal, "title", p.Title)
			continue
		}
		start := time.Date(y, m, d, startLocal.Hour, startLocal.Minute, 0, 0, loc).UTC()

		steps := p.MicroSteps
		if len(steps) < 3 {
			// The schema asks for 3-5 steps but the model sometimes skimps.
			steps = rules.Steps(activityType, p.DurationMinutes)
		}

		out = append(out, plan.Candidate{
			Type:       activityType,
			Title:      p.Title,
			Start:      start,
			End:        start.Add(time.Duration(p.DurationMinutes) * time.Minute),
			MicroSteps: steps,
			Priority:   parsePriority(p.Priority),
			Source:     plan.SourceRecommender,
		})
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no usable proposals in Gemini response")
	}
	return out, nil
}

func parseActivityType(s string) (plan.ActivityType, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "breathing":
		return plan.ActivityBreathing, true
	case "movement":
		return plan.ActivityMovement, true
	case "meal":
		return plan.ActivityMeal, true
	case "workout":
		return plan.ActivityWorkout, true
	default:
		return "", false
	}
}

func parsePriority(s string) plan.Priority {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "high":
		return plan.PriorityHigh
	case "low":
		return plan.PriorityLow
	default:
		return plan.PriorityMedium
	}
}

// isTransientError reports whether a Gemini API error is worth retrying.
func isTransientError(err error) bool {
	if err == nil {
		return false
	}
	errStr := strings.ToLower(err.Error())
	transientIndicators := []string{
		"rate limit", "quota", "timeout", "deadline", "unavailable",
		"internal server error", "502", "503", "504",
	}
	for _, indicator := range transientIndicators {
		if strings.Contains(errStr, indicator) {
			return true
		}
	}
	return false
}
