package app

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"LearnScope/internal/app/server"
	"LearnScope/internal/config"
	"LearnScope/internal/delivery/http"
	"LearnScope/internal/service"
	"LearnScope/internal/service/auth"
	"LearnScope/internal/service/enrollment"
	"LearnScope/internal/service/outline"
	"LearnScope/internal/service/outline/processors"
	"LearnScope/internal/service/permissions"
	"LearnScope/internal/storage/cache"
	"LearnScope/internal/storage/elastic"
	"LearnScope/internal/storage/minio_storage"
	"LearnScope/internal/storage/postgres"
	"LearnScope/pkg/logger"
)

func Run(cfg *config.Config) {

	log := logger.New(cfg.Env)
	log.Info("Starting with Env: " + cfg.Env)

	ctx := context.Background()

	pg, err := postgres.NewPostgresPool(ctx, cfg.Postgres.User, cfg.Postgres.Password, cfg.Postgres.Host, cfg.Postgres.Port, cfg.Postgres.DBName)
	if err != nil {
		log.FatalErr("error connecting to database", err)
	}
	defer pg.Close()

	minioClient, err := minio_storage.NewMinioStorage(cfg.Minio.Endpoint, cfg.Minio.AccessKey, cfg.Minio.SecretKey, cfg.Minio.UseSSL)
	if err != nil {
		log.FatalErr("error connecting to minio", err)
	}
	archive, err := minio_storage.NewOutlineArchive(minioClient, cfg.Minio.ArchiveBucket)
	if err != nil {
		log.FatalErr("error preparing outline archive bucket", err)
	}

	esClient, err := elastic.NewElasticClient(cfg.ES.Password, cfg.ES.Hosts)
	if err != nil {
		log.FatalErr("error connecting to elasticsearch", err)
	}
	searchRepo := elastic.NewOutlineSearchRepository(esClient, cfg.ES.Index)
	if err := searchRepo.CreateIndexIfNotExist(ctx); err != nil {
		log.FatalErr("error creating search index", err)
	}

	outlineRepo := postgres.NewOutlinePostgres(pg.Pool)
	scheduleRepo := postgres.NewSchedulePostgres(pg.Pool)
	examRepo := postgres.NewExamAttemptsPostgres(pg.Pool)
	enrollmentRepo := postgres.NewEnrollmentPostgres(pg.Pool)

	outlineCache := cache.NewOutlineCache(cache.NewMemory(cfg.Cache.OutlineTTL), cfg.Cache.OutlineTTL)
	registry := processors.DefaultRegistry(scheduleRepo, examRepo, enrollmentRepo)

	outlineService := outline.NewOutlineService(
		log.Component("outline"),
		outlineRepo,
		outlineCache,
		permissions.New(),
		archive,
		searchRepo,
		registry,
	)
	enrollmentService := enrollment.NewEnrollmentService(log.Component("enrollment"), enrollmentRepo)
	u := service.Collection{
		OutlineService:    outlineService,
		EnrollmentService: enrollmentService,
	}

	jwtManager := auth.NewJWTManager(cfg.JWT.SecretKey, cfg.JWT.Issuer, cfg.JWT.AccessTTL)
	r := http.InitRoutes(log.Component("http"), u, jwtManager)

	srv := server.New(cfg.HTTPServer.Address, cfg.HTTPServer.Timeout, cfg.HTTPServer.IdleTimeout, r)
	srv.Start()
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)

	select {
	case s := <-interrupt:
		log.Info("app signal: " + s.String())
	case err := <-srv.Notify():
		log.ErrorErr("server error", err)
	}
	if err := srv.Shutdown(); err != nil {
		log.ErrorErr("shutdown error", err)
	}
}
