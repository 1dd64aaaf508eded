package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"murmur/internal/asr"
	"murmur/internal/handlers"
	"murmur/internal/ingestion"
	"murmur/internal/models"
	"murmur/internal/storage"
	"murmur/internal/version"
	"murmur/internal/worker"
	"murmur/internal/youtube"
)

func main() {
	// Load .env if present
	_ = godotenv.Load()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	dataDir := os.Getenv("DATA_DIR")
	if dataDir == "" {
		dataDir = "data"
	}
	modelDir := os.Getenv("MODEL_DIR")
	if modelDir == "" {
		modelDir = "models/sherpa-onnx-paraformer-zh-2023-09-14"
	}

	asrConfig, err := asr.NewConfig(modelDir)
	if err != nil {
		log.Fatalf("Failed to load model config from %s: %v", modelDir, err)
	}

	db, err := storage.Open(dataDir + "/murmur.db")
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	jobRepo := storage.NewJobRepository(db)
	transcriptRepo := storage.NewTranscriptRepository(db)
	ingester := ingestion.NewAudioIngester(jobRepo, transcriptRepo, asrConfig, dataDir)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	w := worker.NewWorker(jobRepo)
	w.RegisterHandler(models.JobTypeTranscribe, ingester.TranscribeHandler())
	w.RegisterHandler(models.JobTypeYouTube, ingester.YouTubeHandler(youtube.NewClient()))
	w.Start(ctx)
	defer w.Stop()

	e := echo.New()
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	jobHandler := handlers.NewJobHandler(jobRepo, transcriptRepo)
	audioHandler := handlers.NewAudioHandler(ingester)

	e.POST("/api/audio", audioHandler.Upload)
	e.POST("/api/youtube", audioHandler.SubmitYouTube)
	e.GET("/api/jobs", jobHandler.List)
	e.GET("/api/jobs/stats", jobHandler.Stats)
	e.GET("/api/jobs/:id", jobHandler.Get)
	e.GET("/api/jobs/:id/transcripts", jobHandler.Transcripts)
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]string{
			"status":  "ok",
			"version": version.Version,
		})
	})

	// Shut the worker down cleanly on SIGINT/SIGTERM.
	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig
		cancel()
		e.Close()
	}()

	log.Printf("Starting murmur v%s on port %s (model: %s)", version.Version, port, modelDir)
	if err := e.Start(fmt.Sprintf(":%s", port)); err != nil {
		log.Print(err)
	}
}
