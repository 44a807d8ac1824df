package bootstrap

import (
	"context"
	"fmt"
	"log"
	"time"

	"jotha-be/internal/config"
	"jotha-be/internal/controller"
	"jotha-be/internal/pkg/logger"
	"jotha-be/internal/pkg/mailer"
	"jotha-be/internal/repository/cache"
	"jotha-be/internal/repository/contract"
	"jotha-be/internal/repository/memory"
	"jotha-be/internal/repository/unitofwork"
	"jotha-be/internal/service"
	"jotha-be/internal/websocket"
	"jotha-be/pkg/embedding"
	"jotha-be/pkg/embedding/jina"
	"jotha-be/pkg/events"
	"jotha-be/pkg/llm/factory"
	pktNats "jotha-be/pkg/nats"
	"jotha-be/pkg/rag/course"
	"jotha-be/pkg/rag/faq"
	"jotha-be/pkg/rag/history"
	"jotha-be/pkg/rag/index"
	"jotha-be/pkg/rag/pipeline"
	"jotha-be/pkg/rag/recorder"
	"jotha-be/pkg/rag/response"
	"jotha-be/pkg/rag/retrieval"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Services
	ChatService service.IChatService

	// Controllers
	ChatController  controller.IChatController
	AdminController controller.IAdminController

	// WebSockets
	ChatSocketHandler *websocket.ChatHandler
	WebSocketHub      *websocket.Hub

	// Background Services (Exposed for main.go to run)
	OperatorAlertService service.IOperatorAlertService

	Registry *index.Registry
	Logger   logger.ILogger

	closers []func()
}

// NewEmbeddingProvider builds the configured embedding backend behind an
// in-process cache.
func NewEmbeddingProvider(cfg *config.Config) (embedding.EmbeddingProvider, error) {
	var p embedding.EmbeddingProvider
	if cfg.Ai.EmbeddingProvider == "jina" {
		p = jina.NewJinaProvider(cfg.Keys.Jina, cfg.Ai.EmbeddingBaseURL, cfg.Ai.EmbeddingModel)
	} else {
		var err error
		p, err = embedding.NewProvider(embedding.Config{
			Provider: cfg.Ai.EmbeddingProvider,
			BaseURL:  cfg.Ai.EmbeddingBaseURL,
			Model:    cfg.Ai.EmbeddingModel,
			ApiKey:   cfg.Keys.GoogleGemini,
		})
		if err != nil {
			return nil, err
		}
	}
	return embedding.NewCachedProvider(p, 6*time.Hour), nil
}

// NewRedisClient parses REDIS_URL, falling back to a bare address.
func NewRedisClient(url string) *redis.Client {
	opt, err := redis.ParseURL(url)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{Addr: url}
	}
	return redis.NewClient(opt)
}

func NewContainer(ctx context.Context, db *gorm.DB, cfg *config.Config) (*Container, error) {
	c := &Container{}

	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.IsProduction())
	c.Logger = sysLogger
	c.closers = append(c.closers, func() { _ = sysLogger.Sync() })

	// 2. Infrastructure
	var rdb *redis.Client
	if cfg.App.SessionStore == "redis" {
		rdb = NewRedisClient(cfg.App.RedisURL)
		if _, err := rdb.Ping(ctx).Result(); err != nil {
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
		c.closers = append(c.closers, func() { _ = rdb.Close() })
	}

	var emailService mailer.IEmailService
	if cfg.SMTP.Host != "" && cfg.SMTP.AlertTo != "" {
		emailService = mailer.NewEmailService(
			cfg.SMTP.Host,
			cfg.SMTP.Port,
			cfg.SMTP.Email,
			cfg.SMTP.Password,
			cfg.SMTP.Email,
			cfg.SMTP.SenderName,
			cfg.SMTP.AlertTo,
		)
	}

	// NATS is optional; without it storage alerts are mailed directly.
	var eventPublisher events.Publisher
	if cfg.App.NatsURL != "" {
		natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
		if err != nil {
			sysLogger.Warn("BOOT", "NATS publisher unavailable", map[string]interface{}{"error": err.Error()})
		} else {
			eventPublisher = natsPub
			c.closers = append(c.closers, natsPub.Close)
		}

		if emailService != nil {
			natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
			if err != nil {
				sysLogger.Warn("BOOT", "NATS subscriber unavailable", map[string]interface{}{"error": err.Error()})
			} else {
				c.OperatorAlertService = service.NewOperatorAlertService(natsSub, emailService, sysLogger)
				c.closers = append(c.closers, natsSub.Close)
			}
		}
	}

	// 3. Model Providers
	embeddingProvider, err := NewEmbeddingProvider(cfg)
	if err != nil {
		return nil, err
	}
	sysLogger.Info("BOOT", "Embedding provider ready", map[string]interface{}{
		"provider": cfg.Ai.EmbeddingProvider,
		"model":    cfg.Ai.EmbeddingModel,
	})

	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		cfg.Ai.LLMBaseURL,
		cfg.Keys.LLM,
		cfg.Ai.MaxRetries,
	)
	if err != nil {
		return nil, err
	}
	sysLogger.Info("BOOT", "LLM provider ready", map[string]interface{}{
		"provider": cfg.Ai.LLMProvider,
		"model":    cfg.Ai.LLMModel,
	})

	// 4. Indexes (loaded once; a missing corpus only degrades retrieval)
	passageRepo := uowFactory.NewUnitOfWork(ctx).PassageRepository()
	registry := index.LoadRegistry(ctx, index.PgvectorLoader(passageRepo, embeddingProvider, cfg.Ai.EmbeddingDimension), sysLogger)
	if registry.Empty() {
		sysLogger.Error("BOOT", "No index loaded, every answer will ask the operator to run the indexer", nil)
	}
	c.Registry = registry

	// 5. RAG Pipeline
	faqConfig := faq.DefaultConfig()
	faqConfig.TopK = cfg.Rag.FAQTopK
	faqConfig.AcceptThreshold = cfg.Rag.FAQThreshold

	mergerConfig := retrieval.DefaultConfig()
	mergerConfig.PerSourceK = cfg.Rag.PerSourceK
	mergerConfig.MaxChars = cfg.Rag.ContextBudget

	answerPipeline := pipeline.New(pipeline.Deps{
		Registry: registry,
		Resolver: faq.NewResolver(registry.FAQ(), faqConfig, sysLogger),
		Merger:   retrieval.NewMerger(registry, mergerConfig, sysLogger),
		Window:   history.NewWindow(cfg.Rag.HistoryLimit),
		Synthesizer: response.NewSynthesizer(llmProvider, response.Config{
			Temperature: cfg.Ai.Temperature,
			MaxTokens:   cfg.Ai.MaxTokens,
		}, sysLogger),
		Logger: sysLogger,
	})

	// 6. Unanswered Questions
	var recorderStore recorder.Store
	switch cfg.Rag.RecorderBackend {
	case "postgres":
		recorderStore = recorder.NewGormStore(uowFactory)
	default:
		recorderStore = recorder.NewCSVStore(cfg.Rag.UnansweredCSVPath)
	}
	notifier := service.NewOperatorNotifier(eventPublisher, emailService, sysLogger)
	unansweredRecorder := recorder.NewRecorder(recorderStore, notifier, sysLogger)

	// 7. Sessions
	var sessionRepo contract.SessionRepository
	if rdb != nil {
		sessionRepo = cache.NewSessionRepository(rdb, cfg.App.SessionTTL)
	} else {
		sessionRepo = memory.NewSessionRepository(cfg.App.SessionTTL)
	}

	catalog, err := course.LoadCatalog(cfg.Rag.CourseCatalogPath)
	if err != nil {
		sysLogger.Warn("BOOT", "Course catalog unavailable, inference disabled", map[string]interface{}{"error": err.Error()})
	} else if cfg.Rag.CourseCutoff > 0 {
		catalog.Cutoff = cfg.Rag.CourseCutoff
	}

	// 8. Services
	chatService := service.NewChatService(
		sessionRepo,
		answerPipeline,
		unansweredRecorder,
		catalog,
		cfg.Ai.RequestTimeout,
		sysLogger,
	)
	adminService := service.NewAdminService(service.AdminAuthConfig{
		Secret:     cfg.App.AdminSecret,
		SecretHash: cfg.App.AdminSecretHash,
		JWTSecret:  cfg.App.JWTSecret,
		TokenTTL:   cfg.App.JWTTTL,
	}, unansweredRecorder, sysLogger)

	c.ChatService = chatService

	// 9. WebSocket Hub (Redis fan-out only when sessions are shared)
	c.WebSocketHub = websocket.NewHub(rdb, sysLogger)
	c.ChatSocketHandler = websocket.NewChatHandler(chatService, c.WebSocketHub, sysLogger)

	// 10. Controllers
	c.ChatController = controller.NewChatController(chatService)
	c.AdminController = controller.NewAdminController(adminService, cfg.App.JWTSecret)

	return c, nil
}

// Close releases connections in reverse order of creation.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
}
