package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
	"go.uber.org/zap"

	"github.com/omunroe-com/shiftspace/client"
	"github.com/omunroe-com/shiftspace/internal/config"
	"github.com/omunroe-com/shiftspace/internal/infra/database"
	"github.com/omunroe-com/shiftspace/internal/infra/gateway"
	"github.com/omunroe-com/shiftspace/internal/infra/repository"
	"github.com/omunroe-com/shiftspace/internal/interface/rest"
	"github.com/omunroe-com/shiftspace/internal/service"
	"github.com/omunroe-com/shiftspace/internal/usecase"
)

const serviceName = "shiftspace"

func main() {
	conf, err := config.Load(config.Path())
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := newLogger(conf.Log)
	if err != nil {
		panic("failed to build logger: " + err.Error())
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if conf.Server.EnableTrace {
		shutdown, err := setupTraceProvider(ctx, conf.Server.TraceEndpoint, serviceName)
		if err != nil {
			logger.Fatal("failed to setup tracing", zap.Error(err))
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = shutdown(shutdownCtx)
		}()
	}

	db, err := database.NewPostgres(conf.Server.PostgresDsn)
	if err != nil {
		logger.Fatal("failed to connect database", zap.Error(err))
	}
	if err := database.MigratePostgres(db); err != nil {
		logger.Fatal("failed to migrate database", zap.Error(err))
	}

	rdb := database.NewRedis(conf.Server.RedisAddr, "", conf.Server.RedisDB)
	if err := database.PingRedis(ctx, rdb); err != nil {
		logger.Fatal("failed to connect redis", zap.Error(err))
	}
	mc := database.NewMemcached(conf.Server.MemcachedAddr)

	shiftRepo := repository.NewShiftRepository(db)
	edgeRepo := repository.NewEdgeRepository(db)
	favoriteRepo := repository.NewFavoriteRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	actorRepo := repository.NewActorRepository(db, mc)

	replicationGateway := gateway.NewReplicationGateway(rdb, edgeRepo, logger, conf.Replication.QueueKey)
	searchGateway := gateway.NewSearchGateway(client.New(conf.Server.SearchEndpoint))
	signalService := service.NewSignalService(rdb)

	replicationOpts := usecase.DefaultReplicationOptions()
	replicationOpts.MaxRetries = conf.Replication.MaxRetries
	engine := usecase.NewReplicationEngine(shiftRepo, replicationGateway, replicationOpts)
	groupService := service.NewGroupService(engine, actorRepo)
	join := usecase.NewJoinAggregator(favoriteRepo, commentRepo, actorRepo)
	publisher := usecase.NewPublisher(engine, groupService, actorRepo, join, logger, conf.Replication.FanoutLimit)
	shiftUsecase := usecase.NewShiftUsecase(
		shiftRepo,
		engine,
		publisher,
		join,
		groupService,
		commentRepo,
		searchGateway,
		signalService,
		logger,
		conf.Replication.FanoutLimit,
	)

	worker := service.NewReplicationWorker(replicationGateway, shiftRepo, edgeRepo, logger, service.DefaultWorkerOptions())
	workerDone := make(chan error, 1)
	go func() { workerDone <- worker.Run(ctx) }()

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	if conf.Server.EnableTrace {
		e.Use(otelecho.Middleware(serviceName))
	}

	rest.NewHandler(shiftUsecase).RegisterRoutes(e)

	go func() {
		if err := e.Start(conf.Server.Listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server stopped", zap.Error(err))
			stop()
		}
	}()
	logger.Info("shiftspace started", zap.String("listen", conf.Server.Listen))

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("failed to shutdown server", zap.Error(err))
	}
	if err := <-workerDone; err != nil {
		logger.Error("replication worker stopped with error", zap.Error(err))
	}
	logger.Info("shiftspace stopped")
}

func newLogger(conf config.Log) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	if conf.Debug {
		zc.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	return zc.Build()
}
