package cmd

import (
	"context"
	"errors"

	"deliverytracker/api"
	httpadapter "deliverytracker/internal/adapters/in/http"
	"deliverytracker/internal/adapters/out/blobstore"
	"deliverytracker/internal/adapters/out/locks"
	"deliverytracker/internal/adapters/out/postgres"
	"deliverytracker/internal/core/application/usecases/commands"
	"deliverytracker/internal/core/application/usecases/queries"
	"deliverytracker/internal/core/ports"
	"deliverytracker/internal/pkg/auth"
	"deliverytracker/internal/pkg/logger"
	"deliverytracker/internal/pkg/metrics"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type CompositionRoot struct {
	cfg              Config
	gormDB           *gorm.DB
	uowFactory       *postgres.GormUnitOfWorkFactory
	locker           ports.DeliveryLocker
	redisClient      *redis.Client
	blobs            *blobstore.DiskStorage
	log              *logger.Logger
	registry         *prometheus.Registry
	lifecycleMetrics *metrics.LifecycleMetrics
}

// NewCompositionRoot wires the server. Deliveries are locked through Redis when
// REDIS_URL is set, in process otherwise.
func NewCompositionRoot(ctx context.Context, cfg Config, gormDB *gorm.DB, log *logger.Logger) (*CompositionRoot, error) {
	blobs, err := blobstore.NewDiskStorage(cfg.ProofDir, cfg.MaxImageBytes)
	if err != nil {
		return nil, err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	root := &CompositionRoot{
		cfg:              cfg,
		gormDB:           gormDB,
		uowFactory:       postgres.NewGormUnitOfWorkFactory(gormDB).WithLogger(log),
		blobs:            blobs,
		log:              log,
		registry:         registry,
		lifecycleMetrics: metrics.NewLifecycleMetrics(registry),
	}

	if cfg.RedisURL == "" {
		root.locker = locks.NewMemoryLocker()
		return root, nil
	}

	client, err := locks.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		return nil, err
	}
	locker, err := locks.NewRedisLocker(client, cfg.LockTTL, log)
	if err != nil {
		_ = client.Close()
		return nil, err
	}
	root.redisClient = client
	root.locker = locker
	return root, nil
}

func (c *CompositionRoot) uow() commands.UoWFactory {
	return FuncUoWFactory(func() commands.UoW {
		return c.uowFactory.Create()
	})
}

func (c *CompositionRoot) CreateRegisterInvoiceCommandHandler() commands.RegisterInvoiceCommandHandler {
	return commands.NewRegisterInvoiceCommandHandler(c.uow(), c.locker, c.lifecycleMetrics)
}

func (c *CompositionRoot) CreateAssignCourierCommandHandler() commands.AssignCourierCommandHandler {
	return commands.NewAssignCourierCommandHandler(c.uow(), c.locker, c.lifecycleMetrics)
}

func (c *CompositionRoot) CreateDistributeDeliveriesCommandHandler() commands.DistributeDeliveriesCommandHandler {
	return commands.NewDistributeDeliveriesCommandHandler(c.uow(), c.locker, c.lifecycleMetrics)
}

func (c *CompositionRoot) CreateCompleteDeliveryCommandHandler() commands.CompleteDeliveryCommandHandler {
	return commands.NewCompleteDeliveryCommandHandler(c.uow(), c.locker, ports.SystemClock, c.lifecycleMetrics)
}

func (c *CompositionRoot) CreateRevertProofCommandHandler() commands.RevertProofCommandHandler {
	return commands.NewRevertProofCommandHandler(c.uow(), c.locker, c.blobs, c.log, c.lifecycleMetrics)
}

func (c *CompositionRoot) CreateCancelDeliveryCommandHandler() commands.CancelDeliveryCommandHandler {
	return commands.NewCancelDeliveryCommandHandler(c.uow(), c.locker, c.lifecycleMetrics)
}

func (c *CompositionRoot) CreateListDeliveriesQueryHandler() queries.ListDeliveriesQueryHandler {
	return queries.NewListDeliveriesQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateGetDeliveryQueryHandler() queries.GetDeliveryQueryHandler {
	return queries.NewGetDeliveryQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateListCourierDeliveriesQueryHandler() queries.ListCourierDeliveriesQueryHandler {
	return queries.NewListCourierDeliveriesQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateListCouriersQueryHandler() queries.ListCouriersQueryHandler {
	return queries.NewListCouriersQueryHandler(c.gormDB)
}

// CreateRouter builds the echo instance serving the delivery API.
func (c *CompositionRoot) CreateRouter() (*echo.Echo, error) {
	doc, err := api.Load()
	if err != nil {
		return nil, err
	}

	server := httpadapter.NewServer(httpadapter.Handlers{
		RegisterInvoice:       c.CreateRegisterInvoiceCommandHandler(),
		AssignCourier:         c.CreateAssignCourierCommandHandler(),
		DistributeDeliveries:  c.CreateDistributeDeliveriesCommandHandler(),
		CompleteDelivery:      c.CreateCompleteDeliveryCommandHandler(),
		RevertProof:           c.CreateRevertProofCommandHandler(),
		CancelDelivery:        c.CreateCancelDeliveryCommandHandler(),
		ListDeliveries:        c.CreateListDeliveriesQueryHandler(),
		GetDelivery:           c.CreateGetDeliveryQueryHandler(),
		ListCourierDeliveries: c.CreateListCourierDeliveriesQueryHandler(),
		ListCouriers:          c.CreateListCouriersQueryHandler(),
	}, c.blobs, ports.SystemClock, c.log, c.cfg.MaxImageBytes)

	return httpadapter.NewRouter(server, httpadapter.RouterOptions{
		Auth:     auth.Config{Secret: c.cfg.JWTSecret, Issuer: c.cfg.JWTIssuer},
		Log:      c.log,
		Doc:      doc,
		SpecYAML: api.Spec,
		Gatherer: c.registry,
		Health:   c.health,
	})
}

func (c *CompositionRoot) health(ctx context.Context) error {
	sqlDB, err := c.gormDB.DB()
	if err != nil {
		return err
	}
	if err = sqlDB.PingContext(ctx); err != nil {
		return err
	}
	if c.redisClient != nil {
		return c.redisClient.Ping(ctx).Err()
	}
	return nil
}

// Close releases the connections owned by the root.
func (c *CompositionRoot) Close() error {
	var errs []error
	if c.redisClient != nil {
		errs = append(errs, c.redisClient.Close())
	}
	if sqlDB, err := c.gormDB.DB(); err == nil {
		errs = append(errs, sqlDB.Close())
	}
	return errors.Join(errs...)
}

type FuncUoWFactory func() commands.UoW

func (f FuncUoWFactory) Create() commands.UoW {
	return f()
}
