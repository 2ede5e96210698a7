package setup

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/GasparGW/chinfield-rag-demo/internal/agent"
	"github.com/GasparGW/chinfield-rag-demo/internal/cache"
	"github.com/GasparGW/chinfield-rag-demo/internal/config"
	"github.com/GasparGW/chinfield-rag-demo/internal/embedding"
	"github.com/GasparGW/chinfield-rag-demo/internal/generate"
	"github.com/GasparGW/chinfield-rag-demo/internal/llm"
	"github.com/GasparGW/chinfield-rag-demo/internal/llm/gpt"
	"github.com/GasparGW/chinfield-rag-demo/internal/llm/ollama"
	"github.com/GasparGW/chinfield-rag-demo/internal/prompt"
	"github.com/GasparGW/chinfield-rag-demo/internal/retrieval"
	"github.com/GasparGW/chinfield-rag-demo/internal/store"
)

const (
	pingTimeout     = 5 * time.Second
	defaultCacheTTL = 30 * time.Minute
)

// Pipeline is the explicitly owned handle for the heavy collaborators
// (database pool, AWS config, generation client). It is constructed
// cheaply at startup and initialized exactly once, on first use, under
// a sync.Once so concurrent first callers cannot double-initialize.
type Pipeline struct {
	cfg    config.Config
	logger *zerolog.Logger

	once        sync.Once
	service     *agent.Service
	db          *store.DB
	err         error
	initialized atomic.Bool
}

func NewPipeline(cfg config.Config, logger *zerolog.Logger) *Pipeline {
	return &Pipeline{
		cfg:    cfg,
		logger: logger,
	}
}

// Service returns the orchestrator, initializing the pipeline on the
// first call. Initialization deliberately ignores the caller's
// deadline: a cancelled first request must not poison the pipeline for
// every later caller.
func (p *Pipeline) Service(ctx context.Context) (agent.QueryService, error) {
	p.once.Do(func() {
		p.service, p.db, p.err = wire(context.Background(), p.cfg, p.logger)
		if p.err == nil {
			p.initialized.Store(true)
		}
	})

	if p.err != nil {
		return nil, fmt.Errorf("pipeline initialization failed: %w", p.err)
	}

	return p.service, nil
}

// Ready reports whether the pipeline is initialized and the vector
// index is reachable. It never forces initialization.
func (p *Pipeline) Ready(ctx context.Context) bool {
	if !p.initialized.Load() {
		return false
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	return p.db.Ping(pingCtx) == nil
}

// Close releases the pipeline's resources, if it was ever initialized.
func (p *Pipeline) Close() {
	if p.initialized.Load() {
		p.db.Close()
	}
}

func wire(ctx context.Context, cfg config.Config, logger *zerolog.Logger) (*agent.Service, *store.DB, error) {
	db, err := store.New(ctx, cfg.DatabaseURL, cfg.Collection)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open vector index: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := db.Ping(pingCtx); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("vector index unreachable: %w", err)
	}

	if count, err := db.CountDocuments(pingCtx); err != nil {
		logger.Warn().Err(err).Msg("Unable to count indexed documents")
	} else {
		logger.Info().Int64("documents", count).Str("collection", cfg.Collection).Msg("Vector index ready")
		if count == 0 {
			logger.Warn().Msg("Vector index is empty, every query will escalate to a human")
		}
	}

	embedder, err := embedding.NewBedrockEmbedder(ctx, cfg.AWSRegion, cfg.EmbeddingModel)
	if err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("failed to create embedder: %w", err)
	}

	var searchCache retrieval.Cache
	if cfg.RedisAddr != "" {
		redisClient, err := cache.ConnectRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, 5)
		if err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
		}

		ttl := defaultCacheTTL
		if cfg.RedisTTL != "" {
			if parsed, err := time.ParseDuration(cfg.RedisTTL); err == nil {
				ttl = parsed
			} else {
				logger.Warn().Str("redis_ttl", cfg.RedisTTL).Msg("Invalid cache TTL, using default")
			}
		}
		searchCache = cache.NewRedisSearchCache(redisClient, "search_cache:", ttl)
	}

	retriever := retrieval.NewRetriever(embedder, db, searchCache, logger)

	strategy, err := prompt.NewFactory().Get(cfg.PromptStrategy)
	if err != nil {
		db.Close()
		return nil, nil, err
	}

	llmClient, modelID, err := createLLMClient(cfg)
	if err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("failed to create LLM client: %w", err)
	}

	logger.Info().
		Str("provider", cfg.Provider).
		Str("model", modelID).
		Str("prompt_strategy", strategy.Name()).
		Msg("Generation backend initialized")

	generator := generate.NewGenerator(llmClient, modelID, generate.Options{
		MaxTokens:   cfg.MaxTokens,
		Temperature: cfg.Temperature,
	}, logger)

	service := agent.NewService(retriever, strategy, generator, cfg.DefaultK, logger)

	return service, db, nil
}

// createLLMClient selects the generation variant once; there is no
// runtime failover between providers.
func createLLMClient(cfg config.Config) (llm.Client, string, error) {
	switch cfg.Provider {
	case "ollama":
		client, err := ollama.NewClient(cfg.OllamaBaseURL, cfg.OllamaModel)
		return client, cfg.OllamaModel, err
	default:
		client, err := gpt.NewClient(cfg.OpenAIAPIKey, cfg.OpenAIModel)
		return client, cfg.OpenAIModel, err
	}
}
