package main

import (
	"context"
	"log"
	"log/slog"

	"mealsnap/internal/config"
	"mealsnap/internal/logging"
	"mealsnap/internal/nutrition"
	"mealsnap/internal/nutrition/gemini"
	"mealsnap/internal/web"
	"mealsnap/internal/web/static"
	"mealsnap/internal/web/templates"
)

func main() {
	cfg := config.Load()

	logger, cleanup, err := logging.New(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer cleanup()

	analyzer, closeAnalyzer := newAnalyzer(cfg, logger)
	defer closeAnalyzer()

	server := web.NewServer(analyzer, templates.FS, static.FS, logger)

	if err := server.ListenAndServe(cfg.ListenAddr); err != nil {
		logger.Error("server error", "error", err)
	}
}

// newAnalyzer constructs the model client once at startup. A missing or
// unusable API key does not stop the server; requests fail individually
// with a configuration error instead.
func newAnalyzer(cfg *config.Config, logger *slog.Logger) (nutrition.Analyzer, func()) {
	if cfg.GeminiAPIKey == "" {
		logger.Warn("GEMINI_API_KEY is not set; identify requests will fail until it is configured")
		return nutrition.Unconfigured{}, func() {}
	}

	analyzer, err := gemini.New(context.Background(), cfg.GeminiAPIKey, cfg.GeminiModel)
	if err != nil {
		logger.Error("failed to initialize gemini client", "error", err)
		return nutrition.Unconfigured{}, func() {}
	}

	logger.Info("using gemini model", "model", cfg.GeminiModel)
	return analyzer, func() {
		if err := analyzer.Close(); err != nil {
			logger.Error("failed to close gemini client", "error", err)
		}
	}
}
