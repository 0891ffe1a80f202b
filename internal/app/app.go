package app

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"LearnForge/internal/app/server"
	"LearnForge/internal/config"
	"LearnForge/internal/delivery/http"
	"LearnForge/internal/delivery/http/controllers"
	"LearnForge/internal/metrics"
	"LearnForge/internal/service"
	"LearnForge/internal/service/auth"
	"LearnForge/internal/service/catalog"
	"LearnForge/internal/service/course"
	"LearnForge/internal/service/enrollment"
	"LearnForge/internal/storage/elastic"
	"LearnForge/internal/storage/minio_storage"
	"LearnForge/internal/storage/redis_cache"
	"LearnForge/internal/worker/reindex"
	"LearnForge/pkg/logger"

	"github.com/juju/clock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func Run(cfg *config.Config) {
	log := logger.New(cfg.Env)
	defer log.Sync()
	log.Info("starting", "env", cfg.Env)

	ctx := context.Background()

	if cfg.Tracing.Enabled {
		shutdown, err := initTracing(ctx, cfg.Tracing.ServiceName, cfg.Env)
		if err != nil {
			log.FatalErr("error initializing tracing", err)
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdown(ctx); err != nil {
				log.ErrorErr("error flushing traces", err)
			}
		}()
	}

	st, err := openStores(ctx, log, cfg)
	if err != nil {
		log.FatalErr("error opening storage", err)
	}
	defer st.close()

	checks := map[string]controllers.Check{}
	if st.check != nil {
		checks["postgres"] = st.check
	}

	collector := metrics.NewCollector()
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collector,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	clk := clock.WallClock
	courseOpts := []course.Option{
		course.WithClock(clk),
		course.WithMaxUploadBytes(cfg.Minio.MaxUploadBytes),
	}

	var search *elastic.CourseSearchRepo
	if len(cfg.ES.Hosts) > 0 {
		esClient, err := elastic.NewElasticClient(cfg.ES.Password, cfg.ES.Hosts)
		if err != nil {
			log.FatalErr("error connecting to elasticsearch", err)
		}
		search = elastic.NewCourseSearchRepository(esClient, cfg.ES.Index)
		if err := search.CreateIndexIfNotExist(ctx); err != nil {
			log.FatalErr("error creating search index", err)
		}
		courseOpts = append(courseOpts, course.WithSearchIndex(search))
		checks["elasticsearch"] = func(ctx context.Context) error { return elastic.Ping(ctx, esClient) }
	}

	if cfg.Minio.Endpoint != "" {
		mc, err := minio_storage.NewMinioStorage(ctx, cfg.Minio.Endpoint, cfg.Minio.AccessKey, cfg.Minio.SecretKey, cfg.Minio.UseSSL, cfg.Minio.Bucket)
		if err != nil {
			log.FatalErr("error connecting to minio", err)
		}
		assets := minio_storage.NewAssetStorage(mc, cfg.Minio.Bucket, cfg.Minio.PublicBaseURL)
		courseOpts = append(courseOpts, course.WithAssetStore(assets))
		checks["minio"] = assets.Ping
	} else {
		log.Warn("minio endpoint not set, uploads are disabled")
	}

	if cfg.Redis.Addr != "" {
		rdb, err := redis_cache.NewRedisClient(ctx, cfg.Redis.Addr)
		if err != nil {
			log.FatalErr("error connecting to redis", err)
		}
		defer rdb.Close()
		courseOpts = append(courseOpts, course.WithCache(redis_cache.NewCourseCache(log, rdb, cfg.Redis.TTL)))
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	}

	courseService := course.NewCourseService(log, st.courses, st.contents, courseOpts...)
	var catalogService *catalog.CatalogService
	if search != nil {
		catalogService = catalog.NewCatalogService(log, st.courses, search, catalog.WithPendingIndex(courseService))
	} else {
		catalogService = catalog.NewCatalogService(log, st.courses, nil)
	}

	u := service.Collection{
		Auth:        auth.NewJWTManager(cfg.JWT.SecretKey, cfg.JWT.Issuer),
		Courses:     courseService,
		Catalog:     catalogService,
		Enrollments: enrollment.NewEnrollmentService(log, clk, st.enrollments, courseService, collector),
	}

	if search != nil {
		worker := reindex.New(log, clk, st.courses, search, collector)
		worker.OnRebuilt(courseService.IndexRebuilt)
		if err := worker.Start(cfg.ES.ReindexSchedule); err != nil {
			log.FatalErr("error starting reindex worker", err)
		}
		defer worker.Stop()
	}

	opts := http.Options{
		AllowOrigins:   cfg.CORS.AllowOrigins,
		RequestTimeout: cfg.HTTPServer.RequestTimeout,
		Metrics:        collector,
		MetricsHandler: promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		Checks:         checks,
	}
	if cfg.Tracing.Enabled {
		opts.TraceService = cfg.Tracing.ServiceName
	}
	r := http.InitRoutes(log, u, opts)

	srv := server.New(cfg.HTTPServer.Address, cfg.HTTPServer.Timeout, cfg.HTTPServer.IdleTimeout, r)
	srv.Start()
	log.Info("http server started", "address", cfg.HTTPServer.Address)

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)

	select {
	case s := <-interrupt:
		log.Info("app signal", "signal", s.String())
	case err := <-srv.Notify():
		log.ErrorErr("http server stopped", err)
	}
	if err := srv.Shutdown(); err != nil {
		log.ErrorErr("error shutting down http server", err)
	}
}
