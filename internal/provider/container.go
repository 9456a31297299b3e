package provider

import (
	"github.com/loomtrack/internal/authz"
	"github.com/loomtrack/internal/cache"
	"github.com/loomtrack/internal/config"
	"github.com/loomtrack/internal/logger"
	"github.com/loomtrack/internal/models"
	"github.com/loomtrack/internal/queue"
	"github.com/loomtrack/internal/repository"
	"github.com/loomtrack/internal/service"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client

	// Repositories
	OrderRepo        repository.OrderRepository
	StatusRepo       repository.StatusRepository
	EventRepo        repository.TrackingEventRepository
	StepRepo         repository.ProductionStepRepository
	StageRepo        repository.StageProcessRepository
	TransferRepo     repository.TransferRepository
	DelayRepo        repository.DelayRepository
	CardRepo         repository.CardRepository
	RoutingRepo      repository.RoutingRepository
	DirectoryRepo    repository.DirectoryRepository
	OperatorRepo     repository.OperatorRepository
	CodeSeqRepo      repository.CodeSequenceRepository
	NotificationRepo repository.NotificationRepository

	// Services
	AuthzService        *authz.Service
	AuthService         *service.AuthService
	StatusCatalog       *service.StatusCatalogService
	TrackingService     *service.TrackingService
	StepService         *service.ProductionStepService
	TransferService     *service.TransferService
	DelayService        *service.DelayService
	CardService         *service.CardService
	NotificationService *service.NotificationService
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config) *Container {
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	var queueClient *queue.Client
	qc, err := queue.NewClient(&cfg.Queue)
	if err != nil {
		logger.Errorw("provider_init_queue_client_failed", "error", err)
	} else {
		queueClient = qc
	}

	c := &Container{
		Config:      cfg,
		QueueClient: queueClient,
	}

	c.initRepositories()
	c.initServices()

	return c
}

func (c *Container) initRepositories() {
	db := models.DB
	c.OrderRepo = repository.NewOrderRepository(db)
	c.StatusRepo = repository.NewStatusRepository(db)
	c.EventRepo = repository.NewTrackingEventRepository(db)
	c.StepRepo = repository.NewProductionStepRepository(db)
	c.StageRepo = repository.NewStageProcessRepository(db)
	c.TransferRepo = repository.NewTransferRepository(db)
	c.DelayRepo = repository.NewDelayRepository(db)
	c.CardRepo = repository.NewCardRepository(db)
	c.RoutingRepo = repository.NewRoutingRepository(db)
	c.DirectoryRepo = repository.NewDirectoryRepository(db)
	c.OperatorRepo = repository.NewOperatorRepository(db)
	c.CodeSeqRepo = repository.NewCodeSequenceRepository(db)
	c.NotificationRepo = repository.NewNotificationRepository(db)
}

func (c *Container) initServices() {
	db := models.DB

	authzService, err := authz.NewService(db)
	if err != nil {
		logger.Errorw("provider_init_authz_failed", "error", err)
	}
	c.AuthzService = authzService

	c.AuthService = service.NewAuthService(c.OperatorRepo, c.Config.JWT.SecretKey, c.Config.JWT.ExpireHours)
	c.StatusCatalog = service.NewStatusCatalogService(c.StatusRepo, c.AuthzService)
	c.TrackingService = service.NewTrackingService(c.OrderRepo, c.EventRepo, c.StatusRepo, c.StepRepo, c.TransferRepo, c.DelayRepo, c.OperatorRepo)
	c.StepService = service.NewProductionStepService(c.OrderRepo, c.StepRepo)
	c.TransferService = service.NewTransferService(db, c.TransferRepo, c.StageRepo, c.CodeSeqRepo, c.DirectoryRepo)
	c.DelayService = service.NewDelayService(db, c.DelayRepo, c.OrderRepo, c.EventRepo, c.StatusRepo, c.StatusCatalog, c.QueueClient)
	c.CardService = service.NewCardService(db, c.CardRepo, c.RoutingRepo, c.OrderRepo, c.DirectoryRepo, c.QueueClient)
	c.NotificationService = service.NewNotificationService(c.NotificationRepo, c.OperatorRepo, c.DirectoryRepo, c.OrderRepo)
}
