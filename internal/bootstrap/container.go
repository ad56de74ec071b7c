package bootstrap

import (
	"context"
	"log"

	"ai-research-be/internal/config"
	"ai-research-be/internal/constant"
	"ai-research-be/internal/controller"
	"ai-research-be/internal/pkg/logger"
	"ai-research-be/internal/repository/unitofwork"
	"ai-research-be/internal/service"
	"ai-research-be/pkg/embedding"
	"ai-research-be/pkg/imaging"
	"ai-research-be/pkg/llm/factory"
	"ai-research-be/pkg/retrieval"
	"ai-research-be/pkg/search/meili"
	"ai-research-be/pkg/workflow"

	pkgNats "ai-research-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	PaperController    controller.IPaperController
	ResearchController controller.IResearchController
	UserController     controller.IUserController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. Infrastructure
	// NATS
	natsPub, err := pkgNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}

	// Redis
	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v", err)
	}

	// Keyword index
	searchClient := meili.NewClient(cfg.Meili.Host, cfg.Meili.APIKey, cfg.Meili.PaperIndex)

	// Embedding provider
	embeddingProvider, err := embedding.NewProvider(
		cfg.Ai.EmbeddingProvider,
		cfg.Ai.GeminiAPIKey,
		cfg.Ai.OllamaBaseURL,
		cfg.Ai.OllamaModel,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize Embedding Provider: %v", err)
	}
	log.Printf("[INFO] Using Embedding Provider: %s", cfg.Ai.EmbeddingProvider)

	// Default LLM provider is validated at startup even though runs may
	// override it with per-user credentials.
	if _, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		cfg.Ai.LLMBaseURL,
		cfg.Ai.LLMAPIKey,
	); err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	// 4. Retrieval
	retrievalEngine := retrieval.NewEngine(
		service.NewKeywordSearcher(searchClient),
		service.NewVectorSearcher(embeddingProvider, uowFactory, cfg.Ai.SimilarityThreshold),
		service.NewPaperDocStore(uowFactory),
		sysLogger,
	)

	// 5. Image generation
	imageStore, err := imaging.NewStore(imaging.StoreConfig{
		Endpoint:      cfg.Storage.Endpoint,
		AccessKey:     cfg.Storage.AccessKey,
		SecretKey:     cfg.Storage.SecretKey,
		Bucket:        cfg.Storage.Bucket,
		UseSSL:        cfg.Storage.UseSSL,
		PublicBaseURL: cfg.Storage.PublicBaseURL,
	})
	if err != nil {
		log.Printf("[WARN] Image store unavailable: %v", err)
	}
	imageGenerator := imaging.NewGenerator(cfg.Draw.BaseURL, cfg.Draw.APIKey, cfg.Draw.Model, imageStore)

	// 6. Workflow engine
	researchEngine := workflow.NewEngine(workflow.EngineConfig{
		Retriever: retrievalEngine,
		Papers:    service.NewPaperFetcher(uowFactory, rdb),
		Examples:  service.NewSolutionFetcher(uowFactory),
		Images:    imageGenerator,
		Persister: service.NewSolutionPersister(uowFactory, natsPub),
		Prompts: workflow.Prompts{
			DomainExpert:      constant.DomainExpertSystemPrompt,
			Interdisciplinary: constant.InterdisciplinaryExpertSystemPrompt,
			Evaluation:        constant.EvaluationExpertSystemPrompt,
		},
		RetrievalLimit: cfg.Ai.RetrievalLimit,
	})

	// 7. Services
	publisherService := service.NewPublisherService(pubSub, cfg.Ai.IngestTopic)
	consumerService := service.NewConsumerService(
		pubSub,
		cfg.Ai.IngestTopic,
		uowFactory,
		embeddingProvider,
		searchClient,
	)

	paperService := service.NewPaperService(uowFactory, publisherService, searchClient)
	userService := service.NewUserService(uowFactory)
	researchService := service.NewResearchService(researchEngine, uowFactory, cfg.Ai, sysLogger)

	// 8. Controllers
	return &Container{
		PaperController:    controller.NewPaperController(paperService),
		ResearchController: controller.NewResearchController(researchService, userService),
		UserController:     controller.NewUserController(userService),

		ConsumerService: consumerService,
	}
}
