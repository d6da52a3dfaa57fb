// Package main implements the lull HTTP server, exposing the planner over
// a small JSON API.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/lulldev/lull/pkg/lull"
	"github.com/lulldev/lull/pkg/plan"
)

var (
	port         = flag.String("port", "8080", "Port for the web server (or set PORT)")
	geminiAPIKey = flag.String("gemini-key", "", "Gemini API key (or set GEMINI_API_KEY)")
	geminiModel  = flag.String("gemini-model", "", "Gemini model to use (or set GEMINI_MODEL)")
	cacheTTL     = flag.Duration("cache-ttl", 24*time.Hour, "How long generated plans stay cached")
	verbose      = flag.Bool("verbose", false, "Enable verbose logging")
	version      = flag.Bool("version", false, "Show version")
)

// maxRequestsPerMinute caps each client address. A plan request on a cache
// miss runs a Gemini call, so the cap stays low.
const maxRequestsPerMinute = 30

// ipThrottle counts requests per address in fixed one-minute windows.
type ipThrottle struct {
	windows map[string]*requestWindow
	mu      sync.Mutex
}

type requestWindow struct {
	start time.Time
	count int
}

func newIPThrottle() *ipThrottle {
	return &ipThrottle{windows: make(map[string]*requestWindow)}
}

func (t *ipThrottle) permit(ip string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := time.Now()
	w := t.windows[ip]
	if w == nil || now.Sub(w.start) >= time.Minute {
		t.windows[ip] = &requestWindow{start: now, count: 1}
		return true
	}
	if w.count >= maxRequestsPerMinute {
		return false
	}
	w.count++
	return true
}

func main() {
	_ = godotenv.Load()
	flag.Parse()

	if *version {
		fmt.Println("lull server v1.0.0")
		return
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	if os.Getenv("PORT") != "" {
		*port = os.Getenv("PORT")
	}
	if *geminiAPIKey == "" {
		*geminiAPIKey = os.Getenv("GEMINI_API_KEY")
	}
	if *geminiModel == "" {
		*geminiModel = os.Getenv("GEMINI_MODEL")
	}

	logger.Info("server configuration",
		"port", *port,
		"verbose", *verbose,
		"cache_ttl", *cacheTTL,
		"has_gemini_key", *geminiAPIKey != "")

	planner := lull.NewWithLogger(logger,
		lull.WithGeminiAPIKey(*geminiAPIKey),
		lull.WithGeminiModel(*geminiModel),
		lull.WithCacheTTL(*cacheTTL),
	)

	srv := &server{
		planner:  planner,
		throttle: newIPThrottle(),
		logger:   logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/plan", srv.handlePlan)
	mux.HandleFunc("POST /api/v1/clear", srv.handleClear)
	mux.HandleFunc("GET /healthz", srv.handleHealthz)

	httpSrv := &http.Server{
		Addr:              ":" + *port,
		Handler:           srv.wrap(mux),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		logger.Info("server starting", "port", *port)
		if err := httpSrv.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(ctx); err != nil {
		logger.Error("shutdown failed", "error", err)
	}
	logger.Info("server stopped")
}

type server struct {
	planner  *lull.Planner
	throttle *ipThrottle
	logger   *slog.Logger
}

// wrap adds a request ID, security headers, panic recovery and per-IP rate
// limiting around every handler.
func (s *server) wrap(handler http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := fmt.Sprintf("%d-%d", time.Now().Unix(), time.Now().Nanosecond())
		w.Header().Set("X-Request-ID", requestID)

		defer func() {
			if err := recover(); err != nil {
				const size = 64 << 10
				buf := make([]byte, size)
				buf = buf[:runtime.Stack(buf, false)]
				s.logger.Error("request handler crashed",
					"error", err,
					"path", r.URL.Path,
					"method", r.Method,
					"request_id", requestID,
					"stack", string(buf))
				http.Error(w, "Internal server error", http.StatusInternalServerError)
			}
		}()

		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		w.Header().Set("Cache-Control", "no-store, no-cache, must-revalidate, private")

		if !s.throttle.permit(clientIP(r)) {
			s.logger.Warn("rate limit exceeded", "ip", clientIP(r), "path", r.URL.Path)
			http.Error(w, "Too many requests", http.StatusTooManyRequests)
			return
		}

		handler.ServeHTTP(w, r)
	})
}

func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

// planRequest is the POST /api/v1/plan body: a scheduling context plus the
// regeneration flag.
type planRequest struct {
	plan.Context
	ForceRegenerate bool `json:"force_regenerate,omitempty"`
}

func (s *server) handlePlan(w http.ResponseWriter, r *http.Request) {
	var req planRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON body: "+err.Error(), http.StatusBadRequest)
		return
	}

	result, err := s.planner.GetOrGenerateActivities(r.Context(), req.Context, req.ForceRegenerate)
	if err != nil {
		s.logger.Warn("plan request rejected", "user", req.UserID, "error", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(result); err != nil {
		s.logger.Error("failed to encode plan response", "error", err)
	}
}

type clearRequest struct {
	UserID string `json:"user_id"`
	Date   string `json:"date"`
}

func (s *server) handleClear(w http.ResponseWriter, r *http.Request) {
	var req clearRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16)).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.UserID == "" || req.Date == "" {
		http.Error(w, "user_id and date are required", http.StatusBadRequest)
		return
	}
	if _, err := time.Parse("2006-01-02", req.Date); err != nil {
		http.Error(w, "date must be YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	s.planner.ClearActivities(req.UserID, req.Date)
	s.logger.Info("cleared cached plan", "user", req.UserID, "date", req.Date)

	w.Header().Set("Content-Type", "application/json")
	fmt.Fprintln(w, `{"cleared":true}`)
}

func (s *server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	fmt.Fprintln(w, "ok")
}
