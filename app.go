package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/consensuslabs/pavilion-mint/internal/auth"
	"github.com/consensuslabs/pavilion-mint/internal/cache"
	"github.com/consensuslabs/pavilion-mint/internal/chain"
	"github.com/consensuslabs/pavilion-mint/internal/config"
	"github.com/consensuslabs/pavilion-mint/internal/database"
	"github.com/consensuslabs/pavilion-mint/internal/database/scylladb"
	apphttp "github.com/consensuslabs/pavilion-mint/internal/http"
	"github.com/consensuslabs/pavilion-mint/internal/intake"
	"github.com/consensuslabs/pavilion-mint/internal/intake/tempfile"
	"github.com/consensuslabs/pavilion-mint/internal/livepeer"
	"github.com/consensuslabs/pavilion-mint/internal/logger"
	"github.com/consensuslabs/pavilion-mint/internal/mint"
	"github.com/consensuslabs/pavilion-mint/internal/notification"
	"github.com/consensuslabs/pavilion-mint/internal/storage"
	"github.com/consensuslabs/pavilion-mint/internal/storage/ipfs"
	"github.com/consensuslabs/pavilion-mint/internal/storage/s3"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// App holds all application dependencies
type App struct {
	config          *config.Config
	logger          logger.Logger
	db              *gorm.DB
	dbService       *database.DatabaseService
	cache           cache.Service
	scylla          *scylladb.Client
	timeline        *scylladb.TimelineRepository
	failures        failureLister
	producer        *notification.MintProducer
	ipfs            *ipfs.Service
	s3              *s3.Service
	writer          *chain.EthWriter
	auth            *auth.Service
	mint            *mint.Service
	responseHandler apphttp.ResponseHandler
	router          *gin.Engine
	server          *http.Server
}

// NewApp creates a new application instance with all dependencies
func NewApp(ctx context.Context, cfg *config.Config, log logger.Logger) (*App, error) {
	app := &App{
		config: cfg,
		logger: log,
	}

	if err := app.initStores(ctx); err != nil {
		app.closeResources()
		return nil, err
	}
	if err := app.initMint(ctx); err != nil {
		app.closeResources()
		return nil, err
	}

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	app.responseHandler = apphttp.NewResponseHandler(log)
	app.router = gin.New()
	app.setupRoutes()

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           app.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return app, nil
}

// initStores connects postgres, the cache and, when enabled, ScyllaDB
func (a *App) initStores(ctx context.Context) error {
	a.dbService = database.NewDatabaseService(&a.config.Database, a.logger)
	db, err := a.dbService.Connect()
	if err != nil {
		return fmt.Errorf("failed to setup database: %w", err)
	}
	a.db = db
	if err := a.dbService.Migrate(mint.Models()...); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	if a.config.Redis.Enabled {
		redisService, err := cache.NewRedisService(ctx, &cache.Config{
			Addr:     a.config.Redis.Addr,
			Password: a.config.Redis.Password,
			DB:       a.config.Redis.DB,
			LatchTTL: a.config.Redis.LatchTTL,
		})
		if err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		a.cache = redisService
	} else {
		a.logger.LogWarn("Redis disabled, latches and challenges are local to this process", nil)
		a.cache = cache.NewMemoryService()
	}

	if a.config.ScyllaDB.Enabled {
		adapter := scylladb.NewLoggerAdapter(a.logger)
		a.scylla = scylladb.NewClient(scylladb.NewConfig(a.config.ScyllaDB), adapter)
		if err := a.scylla.Connect(); err != nil {
			a.scylla = nil
			return fmt.Errorf("failed to connect to scylladb: %w", err)
		}
		a.timeline = scylladb.NewTimelineRepository(a.scylla.Session(), adapter)
		a.failures = a.timeline
	}
	return nil
}

// initMint builds the collaborators of the mint workflow and the service itself
func (a *App) initMint(ctx context.Context) error {
	cfg := a.config

	manager, err := tempfile.NewManager(&tempfile.Config{BaseDir: cfg.Storage.TempDir}, a.logger)
	if err != nil {
		return fmt.Errorf("failed to initialize temp storage: %w", err)
	}
	intakeService := intake.NewService(&intake.Config{
		MaxSize:        cfg.Video.MaxSize,
		AllowedFormats: cfg.Video.AllowedFormats,
		MinNameLength:  cfg.Video.MinTitleLength,
		MaxNameLength:  cfg.Video.MaxTitleLength,
		MaxDescLength:  cfg.Video.MaxDescLength,
	}, manager, a.logger)

	authConfig := auth.NewConfigFromAuthConfig(&cfg.Auth)
	a.auth = auth.NewService(auth.NewJWTService(authConfig), a.cache, authConfig, a.logger)

	pipeline := livepeer.NewClient(&livepeer.Config{
		APIURL:  cfg.Livepeer.APIURL,
		APIKey:  cfg.Livepeer.APIKey,
		Timeout: cfg.Livepeer.Timeout,
	}, a.logger)

	preparer, err := chain.NewPreparer(cfg.Chain.ContractAddress, cfg.Chain.FunctionName)
	if err != nil {
		return fmt.Errorf("failed to load contract abi: %w", err)
	}

	var writer mint.ContractWriter = unconfiguredWriter{}
	if cfg.Chain.MinterKey != "" {
		a.writer, err = chain.NewEthWriter(ctx, &chain.Config{
			RPCURL:    cfg.Chain.RPCURL,
			ChainID:   cfg.Chain.ChainID,
			MinterKey: cfg.Chain.MinterKey,
		}, preparer, a.logger)
		if err != nil {
			return fmt.Errorf("failed to initialize contract writer: %w", err)
		}
		writer = a.writer
	} else {
		a.logger.LogWarn("No minter key configured, contract writes will fail", nil)
	}

	deps := mint.Dependencies{
		Store:     mint.NewGormStore(a.db),
		Latch:     mint.NewCacheLatch(a.cache, cfg.Redis.LatchTTL, instanceName()),
		Pipeline:  pipeline,
		Preparer:  preparer,
		Writer:    writer,
		Intake:    intakeService,
		Logger:    a.logger,
		Publisher: mint.NoopPublisher{},
		Timeline:  mint.NewMemoryTimeline(),
	}
	if a.timeline != nil {
		deps.Timeline = a.timeline
	}

	if cfg.Notification.Enabled {
		notificationConfig := notification.NewServiceConfigFromConfig(cfg)
		client, err := notification.NewPulsarClient(notificationConfig)
		if err != nil {
			return fmt.Errorf("failed to connect to pulsar: %w", err)
		}
		a.producer, err = notification.NewMintProducer(client, notificationConfig, a.logger)
		if err != nil {
			client.Close()
			return fmt.Errorf("failed to create mint event producer: %w", err)
		}
		deps.Publisher = a.producer
	}

	if cfg.Storage.IPFS.MirrorPin {
		a.ipfs = ipfs.NewService(&storage.IPFSConfig{
			APIAddress: cfg.Storage.IPFS.APIAddress,
		}, a.logger)
		deps.Mirror = a.ipfs
	}

	if cfg.Storage.S3.Enabled {
		a.s3, err = s3.NewService(&storage.S3Config{
			Endpoint:        cfg.Storage.S3.Endpoint,
			AccessKeyID:     cfg.Storage.S3.AccessKeyID,
			SecretAccessKey: cfg.Storage.S3.SecretAccessKey,
			UseSSL:          cfg.Storage.S3.UseSSL,
			Region:          cfg.Storage.S3.Region,
			Bucket:          cfg.Storage.S3.Bucket,
			Prefix:          cfg.Storage.S3.Prefix,
		}, a.logger)
		if err != nil {
			return fmt.Errorf("failed to initialize S3 service: %w", err)
		}
		deps.Archiver = a.s3
	}

	a.mint = mint.NewService(mint.Config{
		PollInterval: cfg.Mint.PollInterval,
		ExplorerURL:  cfg.Chain.ExplorerURL,
		ShareURL:     cfg.Mint.ShareURL,
	}, deps)
	return nil
}

// Run serves HTTP until ctx is canceled or the listener fails
func (a *App) Run(ctx context.Context) error {
	if a.config.Mint.ResumeOnBoot {
		resumed, err := a.mint.Resume(ctx)
		if err != nil {
			a.logger.LogError(err, "Failed to resume sessions")
		} else {
			a.logger.LogInfo("Resumed sessions", map[string]interface{}{"count": resumed})
		}
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.LogInfo("Starting server", map[string]interface{}{"addr": a.server.Addr})
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		a.logger.LogInfo("Received shutdown signal", nil)
		return nil
	case err, ok := <-errCh:
		if !ok {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	}
}

// Shutdown stops accepting requests, stops the workflow and closes every connection
func (a *App) Shutdown(ctx context.Context) error {
	var errs []error
	if a.server != nil {
		if err := a.server.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("server shutdown: %w", err))
		}
	}
	if a.mint != nil {
		if err := a.mint.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("mint shutdown: %w", err))
		}
	}
	errs = append(errs, a.closeResources()...)

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	a.logger.LogInfo("Shutdown complete", nil)
	return nil
}

func (a *App) closeResources() []error {
	var errs []error
	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			errs = append(errs, fmt.Errorf("producer: %w", err))
		}
	}
	if a.writer != nil {
		a.writer.Close()
	}
	if a.ipfs != nil {
		if err := a.ipfs.Close(); err != nil {
			errs = append(errs, fmt.Errorf("ipfs: %w", err))
		}
	}
	if a.s3 != nil {
		if err := a.s3.Close(); err != nil {
			errs = append(errs, fmt.Errorf("s3: %w", err))
		}
	}
	if a.scylla != nil {
		if err := a.scylla.Close(); err != nil {
			errs = append(errs, fmt.Errorf("scylladb: %w", err))
		}
	}
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			errs = append(errs, fmt.Errorf("cache: %w", err))
		}
	}
	if a.dbService != nil {
		if err := a.dbService.Close(); err != nil {
			errs = append(errs, fmt.Errorf("database: %w", err))
		}
	}
	return errs
}

// instanceName identifies this process as a latch owner
func instanceName() string {
	host, err := os.Hostname()
	if err != nil {
		host = "unknown"
	}
	return fmt.Sprintf("%s-%d", host, os.Getpid())
}

// unconfiguredWriter fails every write so sessions end in failed at the
// write stage rather than hanging in writing
type unconfiguredWriter struct{}

func (unconfiguredWriter) Write(context.Context, *chain.PreparedCall) (string, error) {
	return "", errors.New("no minter key configured")
}
