// Command animeharvest fetches the paginated anime listing, normalizes it,
// and writes the aggregated result set as CSV and JSON (and optionally to
// SQLite).
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"animeharvest/pkg/client"
	"animeharvest/pkg/export"
	"animeharvest/pkg/extract"
	"animeharvest/pkg/fetcher"
	"animeharvest/pkg/logging"
	"animeharvest/pkg/store"
)

const defaultUserAgent = "animeharvest/1.0 (https://github.com/animeharvest)"

type config struct {
	startPage  int
	endPage    int
	delay      time.Duration
	maxRetries int
	baseURL    string
	userAgent  string
	outputDir  string
	dbPath     string
	redisURL   string
	cacheTTL   time.Duration
	listenAddr string
	logLevel   string
	logPretty  bool
}

func parseConfig() config {
	// .env is optional; real env vars win over flag defaults below.
	_ = godotenv.Load()

	var cfg config
	flag.IntVar(&cfg.startPage, "start", getEnvInt("START_PAGE", 1), "first page to fetch")
	flag.IntVar(&cfg.endPage, "end", getEnvInt("END_PAGE", 200), "last page to fetch (inclusive)")
	flag.DurationVar(&cfg.delay, "delay", getEnvDuration("REQUEST_DELAY", 500*time.Millisecond), "delay between page requests")
	flag.IntVar(&cfg.maxRetries, "retries", getEnvInt("MAX_RETRIES", 3), "total attempts per page")
	flag.StringVar(&cfg.baseURL, "base-url", getEnv("BASE_URL", client.DefaultBaseURL), "listing API base URL")
	flag.StringVar(&cfg.userAgent, "user-agent", getEnv("USER_AGENT", defaultUserAgent), "User-Agent header")
	flag.StringVar(&cfg.outputDir, "out", getEnv("OUTPUT_DIR", "output"), "output directory for CSV/JSON files")
	flag.StringVar(&cfg.dbPath, "db", getEnv("DB_PATH", ""), "optional SQLite sink path")
	flag.StringVar(&cfg.redisURL, "redis", getEnv("REDIS_URL", ""), "optional Redis address for the page cache")
	flag.DurationVar(&cfg.cacheTTL, "cache-ttl", getEnvDuration("CACHE_TTL", 5*time.Minute), "page cache TTL")
	flag.StringVar(&cfg.listenAddr, "listen", getEnv("LISTEN_ADDR", ""), "optional address for /metrics and /health")
	flag.StringVar(&cfg.logLevel, "log-level", getEnv("LOG_LEVEL", "info"), "log level (debug, info, warn, error)")
	flag.BoolVar(&cfg.logPretty, "log-pretty", getEnv("LOG_PRETTY", "") == "true", "human-readable console logs")
	flag.Parse()

	return cfg
}

func main() {
	cfg := parseConfig()

	logger := logging.Setup(logging.Config{
		Level:  logging.LogLevel(cfg.logLevel),
		Pretty: cfg.logPretty,
		Output: os.Stderr,
	})

	if cfg.endPage < cfg.startPage {
		logger.Fatal().
			Int("start", cfg.startPage).
			Int("end", cfg.endPage).
			Msg("End page must not precede start page")
	}

	if cfg.listenAddr != "" {
		go serveMetrics(cfg.listenAddr, logger)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var redisClient *redis.Client
	if cfg.redisURL != "" {
		redisClient = redis.NewClient(&redis.Options{Addr: cfg.redisURL})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Warn().Err(err).Msg("Redis unreachable, page cache disabled")
			redisClient.Close()
			redisClient = nil
		} else {
			defer redisClient.Close()
			logger.Info().Str("addr", cfg.redisURL).Msg("Page cache enabled")
		}
	}

	clientCfg := client.Config{
		BaseURL:   cfg.baseURL,
		UserAgent: cfg.userAgent,
		Timeout:   client.DefaultTimeout,
		Redis:     redisClient,
		CacheTTL:  cfg.cacheTTL,
	}
	apiClient, err := client.New(clientCfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create API client")
	}
	defer apiClient.Close()

	f := fetcher.New(apiClient, fetcher.Config{
		MaxRetries:  cfg.maxRetries,
		Delay:       cfg.delay,
		BackoffUnit: 1 * time.Second,
		PageSize:    extract.PageSize,
	})

	logger.Info().
		Int("start_page", cfg.startPage).
		Int("end_page", cfg.endPage).
		Str("base_url", cfg.baseURL).
		Msg("Starting harvest")

	start := time.Now()
	records := f.FetchRange(ctx, cfg.startPage, cfg.endPage)
	elapsed := time.Since(start)

	if len(records) == 0 {
		// Nothing succeeded: skip export rather than write empty files.
		logger.Error().
			Dur("elapsed", elapsed).
			Msg("No records collected, skipping export")
		os.Exit(1)
	}

	logger.Info().
		Int("records", len(records)).
		Dur("elapsed", elapsed).
		Msg("Harvest complete")

	now := time.Now()
	csvPath := export.TimestampedPath(cfg.outputDir, "csv", now)
	jsonPath := export.TimestampedPath(cfg.outputDir, "json", now)

	if err := export.SaveCSV(csvPath, records); err != nil {
		logger.Fatal().Err(err).Str("path", csvPath).Msg("CSV export failed")
	}
	logger.Info().Str("path", csvPath).Msg("CSV saved")

	if err := export.SaveJSON(jsonPath, records); err != nil {
		logger.Fatal().Err(err).Str("path", jsonPath).Msg("JSON export failed")
	}
	logger.Info().Str("path", jsonPath).Msg("JSON saved")

	if cfg.dbPath != "" {
		if err := persistRecords(ctx, cfg.dbPath, records); err != nil {
			logger.Fatal().Err(err).Str("path", cfg.dbPath).Msg("SQLite sink failed")
		}
		logger.Info().Str("path", cfg.dbPath).Msg("Records stored")
	}

	logSample(logger, records, 3)
}

func persistRecords(ctx context.Context, path string, records []extract.Record) error {
	db, err := store.Open(path)
	if err != nil {
		return err
	}
	defer db.Close()

	return db.SaveRecords(ctx, records)
}

// logSample logs the first few records so a run's output is spot-checkable
// from the log alone.
func logSample(logger zerolog.Logger, records []extract.Record, n int) {
	if n > len(records) {
		n = len(records)
	}
	for i := 0; i < n; i++ {
		rec := records[i]
		event := logger.Info().Int("id", rec.ID).Str("genres", rec.Genres)
		if rec.Title != nil {
			event = event.Str("title", *rec.Title)
		}
		if rec.Score != nil {
			event = event.Float64("score", *rec.Score)
		}
		event.Msg("Sample record")
	}
}

func serveMetrics(addr string, logger zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", healthHandler)

	logger.Info().Str("addr", addr).Msg("Serving metrics")
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Error().Err(err).Msg("Metrics server failed")
	}
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, "OK")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
