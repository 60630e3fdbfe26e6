// Package formfillsvc provides the form-fill service server implementation.
package formfillsvc

import (
	"context"
	"fmt"
	"time"

	"github.com/kart-io/formfill/internal/formfill/biz"
	"github.com/kart-io/formfill/internal/formfill/handler"
	"github.com/kart-io/formfill/internal/formfill/router"
	"github.com/kart-io/formfill/internal/formfill/store"
	"github.com/kart-io/formfill/pkg/component/milvus"
	"github.com/kart-io/formfill/pkg/infra/app"
	configwatch "github.com/kart-io/formfill/pkg/infra/config"
	infralogger "github.com/kart-io/formfill/pkg/infra/logger"
	inframw "github.com/kart-io/formfill/pkg/infra/middleware"
	"github.com/kart-io/formfill/pkg/infra/server"
	"github.com/kart-io/formfill/pkg/infra/tracing"
	"github.com/kart-io/formfill/pkg/llm"
	// 导入 LLM 供应商以自动注册
	_ "github.com/kart-io/formfill/pkg/llm/ollama"
	_ "github.com/kart-io/formfill/pkg/llm/openai"
	"github.com/kart-io/formfill/pkg/llm/resilience"
	cacheopts "github.com/kart-io/formfill/pkg/options/cache"
	formfillopts "github.com/kart-io/formfill/pkg/options/formfill"
	llmopts "github.com/kart-io/formfill/pkg/options/llm"
	logopts "github.com/kart-io/formfill/pkg/options/logger"
	middlewareopts "github.com/kart-io/formfill/pkg/options/middleware"
	milvusopts "github.com/kart-io/formfill/pkg/options/milvus"
	registryopts "github.com/kart-io/formfill/pkg/options/registry"
	httpopts "github.com/kart-io/formfill/pkg/options/server/http"
	tracingopts "github.com/kart-io/formfill/pkg/options/tracing"
	"github.com/kart-io/logger"
	goredis "github.com/redis/go-redis/v9"
	"github.com/spf13/viper"
)

// Name is the name of the application.
const Name = "formfill"

// Config contains application-related configurations.
type Config struct {
	HTTPOptions      *httpopts.Options
	LogOptions       *logopts.Options
	MilvusOptions    *milvusopts.Options
	EmbeddingOptions *llmopts.ProviderOptions
	ChatOptions      *llmopts.ProviderOptions
	FormFillOptions  *formfillopts.Options
	RegistryOptions  *registryopts.Options
	CacheOptions     *cacheopts.Options
	TracingOptions   *tracingopts.Options
	RecoveryOptions  *middlewareopts.RecoveryOptions
	RequestIDOptions *middlewareopts.RequestIDOptions
	LoggerOptions    *middlewareopts.LoggerOptions
	CORSOptions      *middlewareopts.CORSOptions
	TimeoutOptions   *middlewareopts.TimeoutOptions
	MetricsOptions   *middlewareopts.MetricsOptions
	PprofOptions     *middlewareopts.PprofOptions
	ShutdownTimeout  time.Duration
}

// Server represents the form-fill server.
type Server struct {
	srv           *server.Manager
	pipeline      *biz.Pipeline
	watcher       *configwatch.Watcher
	milvusClose   func()
	redisClose    func()
	registryClose func()
	tracingClose  func()
}

// NewServer initializes and returns a new Server instance.
func (cfg *Config) NewServer(_ context.Context) (*Server, error) {
	printBanner(cfg)

	// 1. 初始化日志
	cfg.LogOptions.AddInitialField("service.name", Name)
	cfg.LogOptions.AddInitialField("service.version", app.GetVersion())
	if err := cfg.LogOptions.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	logger.Info("Starting form-fill service...")

	// 2. 初始化链路追踪（tracing.enabled=false 时返回空操作 Provider）
	cfg.TracingOptions.ServiceName = Name
	cfg.TracingOptions.ServiceVersion = app.GetVersion()
	tracingProvider, err := tracing.NewProvider(cfg.TracingOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}
	logger.Infow("Tracing initialized",
		"enabled", cfg.TracingOptions.Enabled,
		"exporter", string(cfg.TracingOptions.ExporterType),
	)

	// 3. 初始化 Milvus 客户端与块存储
	milvusClient, err := milvus.New(cfg.MilvusOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize milvus: %w", err)
	}
	logger.Info("Milvus client initialized")

	chunkStore := store.NewMilvusChunkStore(milvusClient, &store.CollectionConfig{
		Name:        cfg.FormFillOptions.Collection,
		Description: "Per-tenant CV chunks for form filling",
		Dimension:   cfg.FormFillOptions.EmbeddingDim,
	})
	logger.Infow("Chunk store initialized", "collection", cfg.FormFillOptions.Collection)

	// 4. 初始化文档登记库
	registry, err := store.NewDocumentRegistry(cfg.RegistryOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize document registry: %w", err)
	}
	logger.Infow("Document registry initialized", "driver", cfg.RegistryOptions.Driver)

	// 5. 初始化 Redis 客户端（解析缓存与嵌入缓存）
	var redisClient *goredis.Client
	var resolutionCache *biz.ResolutionCache
	var redisClose func()
	if cfg.CacheOptions.Enabled {
		redisOpts := cfg.CacheOptions.Redis
		if redisOpts == nil {
			logger.Warn("Cache is enabled but no Redis configuration provided in CacheOptions")
		} else {
			redisClient = goredis.NewClient(&goredis.Options{
				Addr:         fmt.Sprintf("%s:%d", redisOpts.Host, redisOpts.Port),
				Password:     redisOpts.Password,
				DB:           redisOpts.Database,
				MaxRetries:   redisOpts.MaxRetries,
				PoolSize:     redisOpts.PoolSize,
				MinIdleConns: redisOpts.MinIdleConns,
			})

			// 测试 Redis 连接
			if err := redisClient.Ping(context.Background()).Err(); err != nil {
				logger.Warnw("failed to connect to redis, cache will be disabled", "error", err.Error())
				_ = redisClient.Close()
				redisClient = nil
			} else {
				resolutionCache = biz.NewResolutionCache(redisClient, &biz.ResolutionCacheConfig{
					Enabled:   true,
					TTL:       cfg.CacheOptions.TTL,
					KeyPrefix: cfg.CacheOptions.KeyPrefix,
				})
				redisClose = func() { _ = redisClient.Close() }
				logger.Infow("Redis cache initialized",
					"host", redisOpts.Host,
					"port", redisOpts.Port,
					"ttl", cfg.CacheOptions.TTL,
				)
			}
		}
	} else {
		logger.Info("Cache is disabled")
	}

	// 6. 初始化 LLM 供应商（带重试与熔断包装）
	embedProvider, err := llm.NewEmbeddingProvider(cfg.EmbeddingOptions.Provider, cfg.EmbeddingOptions.ToConfigMap())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize embedding provider: %w", err)
	}
	var embedding llm.EmbeddingProvider = resilience.NewResilientEmbeddingProvider(embedProvider, nil, nil)
	if redisClient != nil {
		embedding = llm.NewCachedEmbeddingProvider(embedding, redisClient, nil)
	}
	logger.Infow("Embedding provider initialized",
		"provider", cfg.EmbeddingOptions.Provider,
		"model", cfg.EmbeddingOptions.Model,
		"cached", redisClient != nil,
	)

	chatProvider, err := llm.NewChatProvider(cfg.ChatOptions.Provider, cfg.ChatOptions.ToConfigMap())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize chat provider: %w", err)
	}
	var chat llm.ChatProvider = resilience.NewResilientChatProvider(chatProvider, nil, nil)
	logger.Infow("Chat provider initialized",
		"provider", cfg.ChatOptions.Provider,
		"model", cfg.ChatOptions.Model,
	)

	// 7. 初始化 Biz 层
	indexer := biz.NewIndexer(chunkStore, registry, embedding, &biz.IndexerConfig{
		ChunkSize:    cfg.FormFillOptions.ChunkSize,
		ChunkOverlap: cfg.FormFillOptions.ChunkOverlap,
	})
	if resolutionCache != nil {
		indexer.SetResolutionCache(resolutionCache)
	}
	retriever := biz.NewRetriever(chunkStore, embedding, &biz.RetrieverConfig{
		TopK: cfg.FormFillOptions.TopK,
	})
	resolver := biz.NewResolver(retriever, chat, resolutionCache, &biz.ResolverConfig{
		Prompt:  cfg.FormFillOptions.ResolvePrompt,
		TopK:    cfg.FormFillOptions.TopK,
		Timeout: time.Duration(cfg.FormFillOptions.ResolveTimeoutSeconds) * time.Second,
	})
	pipeline, err := biz.NewPipeline(resolver, &biz.PipelineConfig{
		Workers: cfg.FormFillOptions.Workers,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize fill pipeline: %w", err)
	}
	logger.Infow("Fill pipeline initialized",
		"workers", cfg.FormFillOptions.Workers,
		"top_k", cfg.FormFillOptions.TopK,
		"chunk_size", cfg.FormFillOptions.ChunkSize,
		"cache.enabled", resolutionCache != nil,
	)

	// 8. 初始化 Handler 层
	fillHandler := handler.NewFormFillHandler(indexer, pipeline, registry, chunkStore, resolutionCache)
	healthHandler := handler.NewHealthHandler(chunkStore, redisClient)
	if pinger, ok := chatProvider.(handler.ProviderPinger); ok {
		healthHandler.SetProviderPinger(pinger)
	}
	logger.Info("Handler layer initialized")

	// 9. 初始化服务器
	mwOpts := cfg.GetMiddlewareOptions()
	serverManager := server.NewManager(
		server.WithMode(server.ModeHTTPOnly),
		server.WithHTTPOptions(cfg.HTTPOptions),
		server.WithMiddleware(mwOpts),
		server.WithShutdownTimeout(cfg.ShutdownTimeout),
	)

	// 10. 注册路由
	if err := router.Register(serverManager, fillHandler, healthHandler); err != nil {
		return nil, fmt.Errorf("failed to register routes: %w", err)
	}

	// 11. 配置热更新：日志与中间件订阅配置文件变更
	watcher := configwatch.NewWatcher(viper.GetViper())
	infralogger.NewReloadableLogger(cfg.LogOptions).RegisterWithWatcher(watcher, "logger", "log")
	inframw.NewReloadableMiddleware(mwOpts).RegisterWithWatcher(watcher, "middleware", "middleware")
	watcher.Start()
	logger.Infow("Config watcher started", "handlers", watcher.HandlerCount())

	logger.Info("Form-fill service is ready")
	return &Server{
		srv:           serverManager,
		pipeline:      pipeline,
		watcher:       watcher,
		milvusClose:   func() { _ = milvusClient.Close(context.Background()) },
		redisClose:    redisClose,
		registryClose: func() { _ = registry.Close() },
		tracingClose: func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = tracingProvider.Shutdown(shutdownCtx)
		},
	}, nil
}

// Run starts the server and listens for termination signals.
func (s *Server) Run(_ context.Context) error {
	defer func() {
		s.pipeline.Close()
		if s.watcher != nil {
			s.watcher.Stop()
		}
		if s.milvusClose != nil {
			s.milvusClose()
		}
		if s.redisClose != nil {
			s.redisClose()
		}
		if s.registryClose != nil {
			s.registryClose()
		}
		if s.tracingClose != nil {
			s.tracingClose()
		}
	}()
	return s.srv.Run()
}

// GetMiddlewareOptions 从各个配置构建中间件选项。
func (cfg *Config) GetMiddlewareOptions() *middlewareopts.Options {
	opts := middlewareopts.NewOptions()

	// /healthz 与 /readyz 由 handler 提供（带依赖探测），不使用内置 health 端点。
	opts.DisableHealth = true

	if cfg.RecoveryOptions != nil {
		opts.SetConfig(middlewareopts.MiddlewareRecovery, cfg.RecoveryOptions)
	}
	if cfg.RequestIDOptions != nil {
		opts.SetConfig(middlewareopts.MiddlewareRequestID, cfg.RequestIDOptions)
	}
	if cfg.LoggerOptions != nil {
		opts.SetConfig(middlewareopts.MiddlewareLogger, cfg.LoggerOptions)
	}
	if cfg.CORSOptions != nil {
		opts.SetConfig(middlewareopts.MiddlewareCORS, cfg.CORSOptions)
	}
	if cfg.TimeoutOptions != nil {
		opts.SetConfig(middlewareopts.MiddlewareTimeout, cfg.TimeoutOptions)
	}
	if cfg.MetricsOptions != nil {
		opts.SetConfig(middlewareopts.MiddlewareMetrics, cfg.MetricsOptions)
	}
	if cfg.PprofOptions != nil {
		opts.SetConfig(middlewareopts.MiddlewarePprof, cfg.PprofOptions)
	}

	return opts
}

func printBanner(cfg *Config) {
	fmt.Printf("Starting %s...\n", Name)
	fmt.Printf("  Embedding: %s (%s)\n", cfg.EmbeddingOptions.Provider, cfg.EmbeddingOptions.Model)
	fmt.Printf("  Chat: %s (%s)\n", cfg.ChatOptions.Provider, cfg.ChatOptions.Model)

	mw := cfg.GetMiddlewareOptions()
	if mw != nil {
		fmt.Printf("  Enabled Middlewares: %v\n", mw.GetEnabledMiddlewares())
	}
}
