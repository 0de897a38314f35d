package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	grpcctx "github.com/CDevmina/Tapiro-sub000/internal/api/grpc/context"
	"github.com/CDevmina/Tapiro-sub000/internal/api/grpc/router"
	grpcServer "github.com/CDevmina/Tapiro-sub000/internal/api/grpc/server"
	"github.com/CDevmina/Tapiro-sub000/internal/authz"
	"github.com/CDevmina/Tapiro-sub000/internal/cache"
	"github.com/CDevmina/Tapiro-sub000/internal/client"
	"github.com/CDevmina/Tapiro-sub000/internal/config"
	"github.com/CDevmina/Tapiro-sub000/internal/logger"
	"github.com/CDevmina/Tapiro-sub000/internal/model"
	"github.com/CDevmina/Tapiro-sub000/internal/ops"
	"github.com/CDevmina/Tapiro-sub000/internal/repository/postgres"
	"github.com/CDevmina/Tapiro-sub000/internal/server"
	"github.com/CDevmina/Tapiro-sub000/internal/service"
	storage "github.com/CDevmina/Tapiro-sub000/internal/storage/minio"
	"github.com/CDevmina/Tapiro-sub000/internal/supervisor"
	"github.com/CDevmina/Tapiro-sub000/internal/taxonomy"
	"github.com/CDevmina/Tapiro-sub000/internal/token"
	"github.com/CDevmina/Tapiro-sub000/internal/usage"
)

var (
	buildVersion = "N/A" // set by ldflags
	buildDate    = "N/A" // set by ldflags
	buildCommit  = "N/A" // set by ldflags
)

const shutdownTimeout = 10 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT, os.Interrupt)
	defer stop()

	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}
	logger := logger.New(cfg.LogLevel, cfg.LogFormat)

	db, err := postgres.NewConection(ctx, cfg.Database.DSN)
	if err != nil {
		logger.Fatal("failed to initialize database", "error", err)
	}
	defer db.Close()

	kv, err := cache.Open(cfg.Cache.Path)
	if err != nil {
		logger.Fatal("failed to open cache", "error", err)
	}
	defer kv.Close()

	userRepo := postgres.NewUserRepository(db)
	storeRepo := postgres.NewStoreRepository(db)
	apiKeyRepo := postgres.NewAPIKeyRepository(db)
	usageRepo := postgres.NewUsageRepository(db)
	userDataRepo := postgres.NewUserDataRepository(db)
	adRepo := postgres.NewAdvertisementRepository(db)

	readiness := []ops.Check{ops.DatabaseCheck(db), ops.CacheCheck(kv)}

	var oracle model.TaxonomyOracle = taxonomy.NewEmbedded()
	if cfg.Taxonomy.URL != "" {
		taxonomyClient := client.NewTaxonomyClient(client.TaxonomyConfig{
			URL:           cfg.Taxonomy.URL,
			APIKey:        cfg.Taxonomy.APIKey,
			Timeout:       cfg.Taxonomy.Timeout,
			HealthTimeout: cfg.Taxonomy.HealthTimeout,
		}, kv, logger)
		oracle = taxonomyClient
		readiness = append(readiness, ops.ServiceCheck("taxonomy", taxonomyClient))
	} else {
		logger.Info("taxonomy service not configured, using embedded tables")
	}

	processor := client.NewAIClient(client.AIConfig{
		URL:     cfg.AI.URL,
		APIKey:  cfg.AI.APIKey,
		Timeout: cfg.AI.Timeout,
	}, logger)
	if cfg.AI.URL != "" {
		readiness = append(readiness, ops.ServiceCheck("ai", processor))
	} else {
		logger.Warn("AI processor not configured, submissions will be marked failed")
	}

	minioClient, err := minio.New(cfg.Storage.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.Storage.AccessKey, cfg.Storage.SecretKey, ""),
		Secure: cfg.Storage.UseSSL,
	})
	if err != nil {
		logger.Fatal("failed to create minio client", "error", err)
	}
	mediaStore, err := storage.NewClient(ctx, minioClient, cfg.Storage.Bucket)
	if err != nil {
		logger.Fatal("failed to initialize media storage", "error", err)
	}

	authorizer, err := authz.New()
	if err != nil {
		logger.Fatal("failed to initialize authorizer", "error", err)
	}
	verifier := token.NewVerifier(token.Config{
		Secret:     cfg.Identity.Secret,
		Issuer:     cfg.Identity.Issuer,
		Audience:   cfg.Identity.Audience,
		RolesClaim: cfg.Identity.RolesClaim,
	})

	tracker := usage.NewTracker(usageRepo, apiKeyRepo, cfg.Tracker.QueueSize, logger)

	tree := supervisor.NewTree(logger.Logger, supervisor.TreeConfig{ShutdownTimeout: shutdownTimeout})
	tree.AddBackground(tracker)
	if cfg.Cache.Path != "" {
		tree.AddBackground(cache.NewGC(kv, cfg.Cache.GCInterval, logger))
	}
	treeDone := tree.ServeBackground(ctx)

	consentService := service.NewConsent(userRepo, storeRepo, oracle, kv, cfg.Consent.AutoOptIn, logger)
	services := router.Services{
		Identity:  service.NewIdentity(verifier, authorizer, kv, logger),
		Users:     service.NewUsers(userRepo, oracle, kv, logger),
		Consent:   consentService,
		Stores:    service.NewStores(storeRepo, apiKeyRepo, adRepo, userRepo, mediaStore, kv, logger),
		APIKeys:   service.NewAPIKeys(storeRepo, apiKeyRepo, usageRepo, tracker, kv, logger),
		Ads:       service.NewAds(storeRepo, userRepo, adRepo, userDataRepo, consentService, mediaStore, kv, logger),
		Ingestion: service.NewIngestion(userRepo, userDataRepo, consentService, oracle, processor, kv, logger),
	}

	servers := []model.Server{
		registerGRPCServer(logger, services, cfg, fmt.Sprintf(":%s", cfg.GRPC.Port)),
	}
	if cfg.Ops.Enabled {
		servers = append(servers, ops.New(fmt.Sprintf(":%s", cfg.Ops.Port), readiness, logger))
	}

	sl := server.NewSecurityLayer(cfg.GRPC)

	var wg sync.WaitGroup
	for _, s := range servers {
		wg.Add(1)
		go func(s model.Server) {
			defer wg.Done()
			logger.Info("Starting server on", "address", s.Address())
			if err := s.Start(listenerFor(s, sl)); err != nil {
				logger.Error("failed to start server", "error", err, "address", s.Address())
				stop()
			}
		}(s)
	}

	logAppVersion()

	<-ctx.Done()
	logger.Info("received interruption signal, shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	for _, s := range servers {
		if err := s.Stop(shutdownCtx); err != nil {
			logger.Error("error during server shutdown", "error", err, "address", s.Address())
		}
	}
	wg.Wait()

	select {
	case <-treeDone:
	case <-shutdownCtx.Done():
		logger.Warn("background workers did not stop in time")
	}

	logger.Info("shutdown complete")
}

// listenerFor serves the ops endpoints in plain text; only the public API uses TLS.
func listenerFor(s model.Server, public model.SecurityLayer) model.SecurityLayer {
	if _, ok := s.(*ops.Server); ok {
		return server.NewPlainListener()
	}
	return public
}

func logAppVersion() {
	tmpl := `
Build version: %s
Build date: %s
Build commit: %s
`

	fmt.Printf(tmpl, buildVersion, buildDate, buildCommit)
}

func registerGRPCServer(
	logger *logger.Logger,
	services router.Services,
	cfg *config.Config,
	addr string,
) *grpcServer.GRPCServer {
	r := router.New(services, grpcctx.NewManager(), logger, router.Config{
		DevMode:      cfg.DevMode,
		RateLimitRPS: cfg.RateLimit.RPS,
		RateBurst:    cfg.RateLimit.Burst,
		Version:      buildVersion,
	})

	return grpcServer.NewGRPCServer(r.Register(), addr)
}
