// Package container builds the application's dependency graph in one
// place. Initialization is layered: config, infrastructure,
// repositories, workflow savers, services, handlers. Every component
// is a singleton owned by the container.
package container

import (
	"context"
	"fmt"
	"time"

	"memorial-backend/internal/config"
	grouphandler "memorial-backend/internal/domains/group/handler"
	grouprepo "memorial-backend/internal/domains/group/repository"
	groupservice "memorial-backend/internal/domains/group/service"
	mediarepo "memorial-backend/internal/domains/media/repository"
	memorialhandler "memorial-backend/internal/domains/memorial/handler"
	memorialrepo "memorial-backend/internal/domains/memorial/repository"
	memorialservice "memorial-backend/internal/domains/memorial/service"
	orghandler "memorial-backend/internal/domains/organization/handler"
	orgrepo "memorial-backend/internal/domains/organization/repository"
	profilehandler "memorial-backend/internal/domains/profile/handler"
	profilerepo "memorial-backend/internal/domains/profile/repository"
	profileservice "memorial-backend/internal/domains/profile/service"
	"memorial-backend/internal/identity"
	infracache "memorial-backend/internal/infrastructure/cache"
	"memorial-backend/internal/infrastructure/database"
	"memorial-backend/internal/infrastructure/recordstore"
	"memorial-backend/internal/infrastructure/storage"
	"memorial-backend/internal/workflow"
	"memorial-backend/pkg/cache"
	"memorial-backend/pkg/jwt"
	"memorial-backend/pkg/logger"
)

type Container struct {
	Config     *config.Config
	DB         *database.PostgresDB
	Redis      *infracache.RedisClient
	Cache      cache.Cache
	JWTManager *jwt.Manager

	// One media store per bucket: profile and group media live in
	// "media", memorial media in "memorial-media".
	MediaStorage    *storage.MinIOStorage
	MemorialStorage *storage.MinIOStorage

	Records  *recordstore.Store
	Identity identity.Provider

	// Savers run the entity save workflow against the bucket their
	// entity kind stores media in.
	MediaSaver    *workflow.Saver
	MemorialSaver *workflow.Saver

	MediaRepo    mediarepo.Repository
	MemorialRepo memorialrepo.Repository
	GroupRepo    grouprepo.Repository
	ProfileRepo  profilerepo.Repository
	OrgRepo      orgrepo.Repository

	MemorialService *memorialservice.Service
	GroupService    *groupservice.Service
	ProfileService  *profileservice.Service

	MemorialHandler *memorialhandler.MemorialHandler
	GroupHandler    *grouphandler.GroupHandler
	ProfileHandler  *profilehandler.ProfileHandler
	OrgHandler      *orghandler.OrganizationHandler
}

// NewContainer initializes the full graph. Order matters: each layer
// depends on the ones before it.
func NewContainer() (*Container, error) {
	c := &Container{}

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	c.Config = cfg
	logger.Info("configuration loaded", map[string]interface{}{
		"environment": cfg.App.Environment,
	})

	dbConfig, err := config.LoadDatabaseConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load database config: %w", err)
	}

	db := database.NewPostgresDB(dbConfig)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := db.Connect(ctx); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.Ping(context.Background()); err != nil {
		return nil, fmt.Errorf("database health check failed: %w", err)
	}
	c.DB = db
	logger.Info("database connected", nil)

	// A redis outage degrades to uncached reads, so connection failure
	// is not fatal here.
	redisClient := infracache.NewRedisClient(cfg.Redis.Host, cfg.Redis.Password, cfg.Redis.DB)
	if err := redisClient.Connect(context.Background()); err != nil {
		logger.Warn("redis connection failed, caching degraded", err)
	} else {
		logger.Info("redis connected", nil)
	}
	c.Redis = redisClient
	c.Cache = infracache.NewRedisCache(redisClient)

	c.JWTManager = jwt.NewManager(cfg.JWT.Secret)

	mediaStorage, err := storage.NewMinIOStorage(cfg.MinIO, cfg.MinIO.MediaBucket)
	if err != nil {
		return nil, fmt.Errorf("failed to init media storage: %w", err)
	}
	memorialStorage, err := storage.NewMinIOStorage(cfg.MinIO, cfg.MinIO.MemorialBucket)
	if err != nil {
		return nil, fmt.Errorf("failed to init memorial storage: %w", err)
	}
	c.MediaStorage = mediaStorage
	c.MemorialStorage = memorialStorage
	logger.Info("object storage ready", map[string]interface{}{
		"buckets": []string{cfg.MinIO.MediaBucket, cfg.MinIO.MemorialBucket},
	})

	c.Records = recordstore.NewStore(db.Pool)
	c.Identity = identity.NewPostgresProvider(db.Pool)

	c.MediaSaver = workflow.NewSaver(mediaStorage, c.Records)
	c.MemorialSaver = workflow.NewSaver(memorialStorage, c.Records)

	c.initRepositories()
	c.initServices()
	c.initHandlers()

	logger.Info("container initialized", nil)
	return c, nil
}

func (c *Container) initRepositories() {
	pool := c.DB.Pool

	c.MediaRepo = mediarepo.NewPostgresRepository(pool)
	c.MemorialRepo = memorialrepo.NewPostgresRepository(pool, c.Cache)
	c.GroupRepo = grouprepo.NewPostgresRepository(pool, c.Cache)
	c.ProfileRepo = profilerepo.NewPostgresRepository(pool)
	c.OrgRepo = orgrepo.NewPostgresRepository(pool)
}

func (c *Container) initServices() {
	c.MemorialService = memorialservice.NewService(
		c.MemorialSaver,
		c.Records,
		c.MemorialRepo,
		c.MediaRepo,
		c.MemorialStorage,
	)
	c.GroupService = groupservice.NewService(
		c.MediaSaver,
		c.Records,
		c.GroupRepo,
		c.MediaRepo,
	)
	c.ProfileService = profileservice.NewService(
		c.MediaSaver,
		c.Records,
		c.ProfileRepo,
		c.MediaRepo,
		c.MediaStorage,
		c.Identity,
	)
}

func (c *Container) initHandlers() {
	c.MemorialHandler = memorialhandler.NewMemorialHandler(c.MemorialService)
	c.GroupHandler = grouphandler.NewGroupHandler(c.GroupService)
	c.ProfileHandler = profilehandler.NewProfileHandler(c.ProfileService)
	c.OrgHandler = orghandler.NewOrganizationHandler(c.OrgRepo)
}

// Cleanup releases infrastructure connections. Safe to call once
// during shutdown.
func (c *Container) Cleanup() {
	if c.DB != nil {
		if err := c.DB.Close(); err != nil {
			logger.Warn("failed to close database", err)
		}
	}
	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			logger.Warn("failed to close redis", err)
		}
	}
	logger.Info("container cleanup completed", nil)
}
