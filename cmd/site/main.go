package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"portfolio/internal/chat"
	"portfolio/internal/config"
	"portfolio/internal/content"
	"portfolio/internal/llm"
	"portfolio/internal/metrics"
	"portfolio/internal/scheduler"
	"portfolio/internal/server"
	"portfolio/internal/storage"
	"portfolio/internal/tools"
)

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Warning: .env file not found: %v", err)
	}

	cfg := config.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := content.LoadConfigured(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to load content: %v", err)
	}

	if sel, err := llm.Select(cfg, llm.Hint{}); err != nil {
		log.Printf("⚠️ No chat provider available: %v", err)
	} else {
		log.Printf("🤖 Chat provider: %s/%s (fallback=%t)", sel.Kind, sel.Model, sel.Fallback)
	}

	var rec storage.Recorder
	if cfg.LogFilePath != "" {
		fr, err := storage.NewFileRecorder(cfg.LogFilePath)
		if err != nil {
			log.Printf("failed to init file recorder: %v", err)
		} else {
			rec = fr
		}
	}

	m := metrics.New()
	orchestrator := chat.New(cfg, llm.NewFactory(cfg), tools.NewRegistry(store), chat.Options{
		SystemPrompt:  chat.LoadSystemPrompt(cfg.SystemPromptPath),
		MaxIterations: cfg.MaxIterations,
		Recorder:      rec,
		Metrics:       m,
	})

	var sched *scheduler.Scheduler
	if rec != nil {
		sched = scheduler.New(cfg.ReportCron)
		retention := time.Duration(cfg.LogRetentionDays) * 24 * time.Hour
		sched.SetReportFunction(scheduler.DailyReport(rec, retention, nil))
		if err := sched.Start(); err != nil {
			log.Fatalf("failed to start scheduler: %v", err)
		}
	}

	ws := server.NewWebServer(cfg.HTTPPort, store, orchestrator, m)
	errc := make(chan error, 1)
	go func() { errc <- ws.Start() }()

	select {
	case err := <-errc:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("web server failed: %v", err)
		}
	case <-ctx.Done():
		log.Println("🛑 Shutting down")
		if err := ws.Stop(); err != nil {
			log.Printf("web server shutdown: %v", err)
		}
	}
	if sched != nil {
		sched.Stop()
	}
}
