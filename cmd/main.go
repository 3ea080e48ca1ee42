package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/brmonteiro/saipos-bridge/internal/app"
	"github.com/brmonteiro/saipos-bridge/internal/config"
	"github.com/brmonteiro/saipos-bridge/internal/handler"
	"github.com/brmonteiro/saipos-bridge/internal/mapper"
	"github.com/brmonteiro/saipos-bridge/internal/postgres"
	"github.com/brmonteiro/saipos-bridge/internal/repo"
	"github.com/brmonteiro/saipos-bridge/internal/saipos"
	"github.com/brmonteiro/saipos-bridge/internal/service"
	"github.com/brmonteiro/saipos-bridge/internal/shipping"
	"github.com/brmonteiro/saipos-bridge/pkg/cache"
	"github.com/brmonteiro/saipos-bridge/pkg/trm"

	"github.com/joho/godotenv"
)

func main() {
	conf := config.New()
	logger := newLogger(conf.Env)
	panicIfErr("invalid config", conf.Validate())

	db, err := postgres.New(conf.Postgres)
	panicIfErr("failed to connect to db", err)
	defer db.Close()
	logger.Info("postgres connected")

	submissionRepo := repo.NewPostgresRepo(db)
	txManager := trm.NewManager(db)
	dedupeCache := cache.NewLRUCache(conf.Cache.Capacity, conf.Cache.TTL)

	posClient := saipos.New(conf.Saipos)
	orderMapper := mapper.New(conf.Saipos.StoreCode)
	resolver := shipping.NewPrefixResolver(shipping.DefaultZones())

	submissionService := service.NewSubmissionService(logger, txManager, submissionRepo, dedupeCache, posClient, orderMapper)

	handler.RegisterMetrics()
	kafkaHandler := handler.NewKafkaHandler(logger, conf.Kafka, submissionService)
	httpHandler := handler.NewHTTPHandler(logger, submissionService, resolver)

	app := app.New(logger, conf)

	app.SetHTTPHandlers(httpHandler)
	app.SetConsumers(kafkaHandler)
	app.SetStarters(dedupeCache, cacheWarmUpAdapter{svc: submissionService, count: conf.Cache.Capacity})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	panicIfErr("failed to start app", app.Start(ctx))
	<-ctx.Done()
	panicIfErr("failed to stop app", app.Stop())
}

func init() {
	godotenv.Load()
}

func newLogger(env string) *slog.Logger {
	switch env {
	case "production":
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	default:
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
}

func panicIfErr(prefix string, err error) {
	if err != nil {
		panic(prefix + ": " + err.Error())
	}
}

type warmUpper interface {
	WarmUpCache(ctx context.Context, count int) error
}

type cacheWarmUpAdapter struct {
	svc   warmUpper
	count int
}

func (a cacheWarmUpAdapter) Start(ctx context.Context) error {
	return a.svc.WarmUpCache(ctx, a.count)
}
