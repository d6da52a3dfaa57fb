// Package main implements the lull CLI: plan one day's micro-activities
// from a YAML day file.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/lulldev/lull/pkg/lull"
	"github.com/lulldev/lull/pkg/plan"
	"github.com/lulldev/lull/pkg/timeline"
)

var (
	userID       = flag.String("user", "", "User ID to plan for (or set LULL_USER)")
	geminiAPIKey = flag.String("gemini-key", "", "Gemini API key (or set GEMINI_API_KEY)")
	geminiModel  = flag.String("gemini-model", "", "Gemini model to use (or set GEMINI_MODEL)")
	timeout      = flag.Duration("timeout", 10*time.Second, "Recommender call timeout")
	force        = flag.Bool("force", false, "Force regeneration, ignoring the cached plan")
	jsonOutput   = flag.Bool("json", false, "Print the plan as JSON instead of a timeline")
	noAI         = flag.Bool("no-ai", false, "Skip the AI recommender and use rule-based generation only")
	verbose      = flag.Bool("verbose", false, "Enable verbose logging")
	version      = flag.Bool("version", false, "Show version")
)

// dayFile is the YAML shape of a planning request. Times of day are HH:MM;
// event times are RFC3339.
type dayFile struct {
	Date          string `yaml:"date"`
	Timezone      string `yaml:"timezone"`
	Wake          string `yaml:"wake"`
	Bed           string `yaml:"bed"`
	EnergyWindows []struct {
		Start string `yaml:"start"`
		End   string `yaml:"end"`
	} `yaml:"energy_windows"`
	Buffer struct {
		Before int `yaml:"before"`
		After  int `yaml:"after"`
	} `yaml:"buffer"`
	MoodScore   int `yaml:"mood_score"`
	EnergyLevel int `yaml:"energy_level"`
	StressLevel int `yaml:"stress_level"`
	Events      []struct {
		Title string `yaml:"title"`
		Notes string `yaml:"notes"`
		Start string `yaml:"start"`
		End   string `yaml:"end"`
	} `yaml:"events"`
}

func main() {
	_ = godotenv.Load()
	flag.Parse()

	if *version {
		fmt.Println("lull CLI v1.0.0")
		return
	}

	args := flag.Args()
	if len(args) != 1 {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags] <day.yaml>\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(1)
	}

	level := slog.LevelError
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	if *userID == "" {
		*userID = os.Getenv("LULL_USER")
	}
	if *geminiAPIKey == "" {
		*geminiAPIKey = os.Getenv("GEMINI_API_KEY")
	}
	if *geminiModel == "" {
		*geminiModel = os.Getenv("GEMINI_MODEL")
	}
	if *userID == "" {
		logger.Error("user ID is required: pass -user or set LULL_USER")
		os.Exit(1)
	}

	sc, err := loadDayFile(args[0], *userID)
	if err != nil {
		logger.Error("failed to load day file", "path", args[0], "error", err)
		os.Exit(1)
	}

	opts := []lull.Option{
		lull.WithRecommendTimeout(*timeout),
	}
	if !*noAI && *geminiAPIKey != "" {
		opts = append(opts,
			lull.WithGeminiAPIKey(*geminiAPIKey),
			lull.WithGeminiModel(*geminiModel),
		)
	}
	planner := lull.NewWithLogger(logger, opts...)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout+30*time.Second)
	defer cancel()

	result, err := planner.GetOrGenerateActivities(ctx, sc, *force)
	if err != nil {
		logger.Error("planning failed", "error", err)
		os.Exit(1)
	}

	if *jsonOutput {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(result); err != nil {
			logger.Error("failed to encode plan", "error", err)
			os.Exit(1)
		}
		return
	}
	fmt.Print(timeline.Render(sc, result.Gaps, result.Intensity, result.Activities))
}

// loadDayFile parses a YAML day file into a scheduling context.
func loadDayFile(path string, userID string) (plan.Context, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return plan.Context{}, err
	}
	var df dayFile
	if err := yaml.Unmarshal(data, &df); err != nil {
		return plan.Context{}, fmt.Errorf("parsing YAML: %w", err)
	}

	date, err := time.Parse("2006-01-02", df.Date)
	if err != nil {
		return plan.Context{}, fmt.Errorf("parsing date %q: %w", df.Date, err)
	}
	wake, err := plan.ParseTimeOfDay(df.Wake)
	if err != nil {
		return plan.Context{}, fmt.Errorf("parsing wake time: %w", err)
	}
	bed, err := plan.ParseTimeOfDay(df.Bed)
	if err != nil {
		return plan.Context{}, fmt.Errorf("parsing bed time: %w", err)
	}

	sc := plan.Context{
		UserID:      userID,
		Date:        date,
		Timezone:    df.Timezone,
		Sleep:       plan.SleepSchedule{Wake: wake, Bed: bed},
		Buffer:      plan.BufferPolicy{Before: df.Buffer.Before, After: df.Buffer.After},
		MoodScore:   df.MoodScore,
		EnergyLevel: df.EnergyLevel,
		StressLevel: df.StressLevel,
	}

	for i, ew := range df.EnergyWindows {
		start, err := plan.ParseTimeOfDay(ew.Start)
		if err != nil {
			return plan.Context{}, fmt.Errorf("energy window %d start: %w", i, err)
		}
		end, err := plan.ParseTimeOfDay(ew.End)
		if err != nil {
			return plan.Context{}, fmt.Errorf("energy window %d end: %w", i, err)
		}
		sc.EnergyWindows = append(sc.EnergyWindows, plan.EnergyWindow{Start: start, End: end})
	}

	for i, ev := range df.Events {
		start, err := time.Parse(time.RFC3339, ev.Start)
		if err != nil {
			return plan.Context{}, fmt.Errorf("event %d start: %w", i, err)
		}
		end, err := time.Parse(time.RFC3339, ev.End)
		if err != nil {
			return plan.Context{}, fmt.Errorf("event %d end: %w", i, err)
		}
		sc.Events = append(sc.Events, plan.BusyBlock{
			Interval: plan.Interval{Start: start.UTC(), End: end.UTC()},
			Title:    ev.Title,
			Notes:    ev.Notes,
		})
	}

	if err := sc.Validate(); err != nil {
		return plan.Context{}, err
	}
	return sc, nil
}
