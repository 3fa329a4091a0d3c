package main

import (
	"context"
	"log"
	"net/http"

	"github.com/joho/godotenv"
	openai "github.com/sashabaranov/go-openai"

	"videodub/api"
	"videodub/common"
	"videodub/config"
	"videodub/events"
	"videodub/media"
	"videodub/pipeline"
	"videodub/publish"
	"videodub/synthesis"
	"videodub/transcription"
	"videodub/translation"
)

func main() {
	// Load environment variables from .env if present (non-fatal if missing)
	_ = godotenv.Load()

	cfg := config.Load()
	if cfg.OpenAIKey == "" {
		log.Fatal("OPENAI_API_KEY is required")
	}

	openaiClient := openai.NewClient(cfg.OpenAIKey)
	executor := media.NewExecutor()

	transcriber := transcription.New(openaiClient)
	provider := translation.NewProvider(cfg.CohereKey, openaiClient)
	log.Printf("Translation provider: %s", provider.Name())
	translator := translation.New(provider, cfg.TranslatePartialFallback)
	synthesizer := synthesis.New(openaiClient, executor)

	store := buildSessionStore(cfg)

	var publisher *events.Publisher
	if len(cfg.KafkaBrokers) > 0 {
		var err error
		publisher, err = events.NewPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		if err != nil {
			log.Printf("Warning: Kafka unavailable: %v (stage events disabled)", err)
		} else {
			defer publisher.Close()
		}
	}

	s3Client := buildS3(cfg)

	var uploader *publish.Uploader
	if cfg.YouTubeCredentials != "" {
		u, err := publish.NewUploader(context.Background(), cfg.YouTubeCredentials)
		if err != nil {
			log.Printf("Warning: YouTube unavailable: %v (publishing disabled)", err)
		} else {
			uploader = u
		}
	}

	orchestrator := pipeline.New(pipeline.Deps{
		Media:       executor,
		Transcriber: transcriber,
		Translator:  translator,
		Synthesizer: synthesizer,
		Store:       store,
		Events:      publisher,
		S3:          s3Client,
		S3Bucket:    cfg.S3Bucket,
		S3Prefix:    cfg.S3Prefix,
		YouTube:     uploader,
		TempDir:     cfg.TempDir,
		OutputDir:   cfg.OutputDir,
	})

	r := api.NewRouter(&cfg, orchestrator)
	log.Printf("Starting API server on %s", cfg.Addr)
	log.Println("API endpoints available:")
	log.Println("  GET  /health")
	log.Println("  POST /api/sessions")
	log.Println("  GET  /api/sessions/:id")
	log.Println("  POST /api/transcribe")
	log.Println("  POST /api/detect-language")
	log.Println("  POST /api/translate")
	log.Println("  POST /api/synthesize")
	log.Println("  POST /api/dub")
	log.Println("  POST /api/subtitle")

	if err := http.ListenAndServe(cfg.Addr, r); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

// buildSessionStore prefers Redis when configured and falls back to the
// in-process store otherwise.
func buildSessionStore(cfg config.Config) pipeline.SessionStore {
	if cfg.RedisAddr == "" {
		log.Println("Redis not configured; using in-memory session store")
		return pipeline.NewMemoryStore()
	}

	store, err := pipeline.NewRedisStore(context.Background(), cfg.RedisAddr, cfg.RedisPassword, cfg.SessionTTL)
	if err != nil {
		log.Printf("Warning: Redis unavailable: %v (using in-memory session store)", err)
		return pipeline.NewMemoryStore()
	}
	log.Printf("Session store: redis at %s", cfg.RedisAddr)
	return store
}

// buildS3 returns an S3 client when replication is configured, nil
// otherwise.
func buildS3(cfg config.Config) *common.S3 {
	if cfg.S3Bucket == "" {
		return nil
	}

	client, err := common.NewS3(context.Background(), common.S3Config{
		Region:       cfg.S3Region,
		Profile:      cfg.S3Profile,
		UsePathStyle: cfg.S3UsePathStyle,
	})
	if err != nil {
		log.Printf("Warning: failed to init S3 client: %v (replication disabled)", err)
		return nil
	}
	log.Printf("Replicating artifacts to s3://%s/%s", cfg.S3Bucket, cfg.S3Prefix)
	return client
}
