package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/vortitron/wxicons"
	"github.com/vortitron/wxicons/preview"
)

func main() {
	cfg, err := preview.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	b := wxicons.NewBuilder(cfg.IconRoot)
	b.Frames = cfg.Frames
	b.Workers = cfg.Workers
	if cfg.Static {
		b.Frames = 1
	}
	switch cfg.Rasterizer {
	case "svg":
	case "inkscape":
		er := &wxicons.ExecRasterizer{}
		if err := er.Check(); err != nil {
			log.Fatalf("failed to set up the rasterizer: %v", err)
		}
		b.Rasterizer = er
	default:
		log.Fatalf("unsupported rasterizer: %s", cfg.Rasterizer)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store := preview.NewStore()
	sched := preview.NewScheduler(b, store, wxicons.ManifestOptions{
		BaseURL: cfg.BaseURL,
		Static:  cfg.Static,
	}, cfg.RebuildInterval)

	if err := sched.Rebuild(ctx); err != nil {
		log.Fatalf("failed to build the icon table: %v", err)
	}
	if err := sched.Start(); err != nil {
		log.Fatalf("failed to start scheduler: %v", err)
	}
	defer sched.Stop()

	app := preview.NewApp(store, b.Packer)

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Printf("fiber server stopped: %v", err)
		}
	}()
	log.Printf("serving weather icon previews on :%s", cfg.Port)

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("error during shutdown: %v", err)
	}
}
