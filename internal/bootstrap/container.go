package bootstrap

import (
	"context"
	"log"

	"ai-docchat-be/internal/config"
	"ai-docchat-be/internal/constant"
	"ai-docchat-be/internal/controller"
	"ai-docchat-be/internal/pkg/crypto"
	"ai-docchat-be/internal/pkg/logger"
	"ai-docchat-be/internal/repository/memory"
	"ai-docchat-be/internal/repository/unitofwork"
	"ai-docchat-be/internal/service"
	"ai-docchat-be/pkg/genai"
	pktNats "ai-docchat-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	ChatController controller.IChatController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	// Infrastructure handles main.go shuts down on exit
	NatsPublisher *pktNats.Publisher
	Logger        logger.ILogger
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	cipher, err := crypto.NewCipher(cfg.Security.EncryptionSecret)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize credential cipher: %v", err)
	}

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 2.5 Infrastructure
	// NATS
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
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
		rdb = nil // rate limiting degrades to pass-through
	}

	// 3. Services
	genClient := genai.NewClient(cfg.Ai.ServiceURL)
	credCache := memory.NewCredentialCache()
	summaryCache := memory.NewSummaryCache()

	publisherService := service.NewPublisherService(pubSub, constant.ChatTurnCompletedTopic)
	consumerService := service.NewConsumerService(
		pubSub,
		constant.ChatTurnCompletedTopic,
		uowFactory,
	)

	chatService := service.NewChatService(
		uowFactory,
		genClient,
		service.NewModeSelector(sysLogger),
		service.NewCredentialResolver(cipher, credCache, sysLogger),
		service.NewUsageGuard(cfg.Ai.DailyLimit, sysLogger),
		publisherService,
		cipher,
		credCache,
		cfg.Ai.DefaultProvider,
		sysLogger,
	)

	historyService := service.NewHistoryService(
		uowFactory,
		summaryCache,
		natsPub,
		sysLogger,
	)

	// 4. Controllers
	return &Container{
		ChatController: controller.NewChatController(
			chatService,
			historyService,
			rdb,
			cfg.Ai.RateLimitPerMin,
		),

		ConsumerService: consumerService,
		NatsPublisher:   natsPub,
		Logger:          sysLogger,
	}
}
