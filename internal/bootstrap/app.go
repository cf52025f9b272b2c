package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"strings"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gin-gonic/gin"

	"docintel-backend/internal/agent"
	"docintel-backend/internal/classify"
	"docintel-backend/internal/documents"
	"docintel-backend/internal/queue"
	"docintel-backend/internal/runs"
	"docintel-backend/internal/shared/config"
	"docintel-backend/internal/shared/server"
	"docintel-backend/internal/shared/storage/db"
	"docintel-backend/internal/shared/storage/object"
	localstore "docintel-backend/internal/shared/storage/object/local"
	s3store "docintel-backend/internal/shared/storage/object/s3"
)

const (
	uploadsDefaultRegion = "us-east-1"
	uploadsDefaultPrefix = "documents/"
)

// App holds shared dependencies wired at startup.
type App struct {
	Config config.Config
	Router *gin.Engine
	DB     *sql.DB
	Store  object.ObjectStore
	Queue  queue.Client

	DocumentsRepo documents.Repo
	RunStore      runs.Store

	Classifier       *classify.Classifier
	Agent            agent.Agent
	Orchestrator     *runs.Orchestrator
	DocumentsService *documents.Service

	ClassifyHandler  *classify.Handler
	RunsHandler      *runs.Handler
	DocumentsHandler *documents.Handler
}

// Build prepares shared dependencies and the HTTP router.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.ObjectStoreType) == "" {
		cfg.ObjectStoreType = "local"
	}
	ctx := context.Background()

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	store, err := buildStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	queueClient, err := buildQueue(ctx, cfg)
	if err != nil {
		return nil, err
	}

	presigner, err := buildUploadsPresigner(ctx)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config: cfg,
		DB:     sqlDB,
		Store:  store,
		Queue:  queueClient,
	}

	buildServices(app, presigner)

	app.Router = server.NewRouter(server.RouterDeps{
		Config:          app.Config,
		ClassifyHandler: app.ClassifyHandler,
		RunsHandler:     app.RunsHandler,
		DocumentHandler: app.DocumentsHandler,
	})

	return app, nil
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: DATABASE_URL empty; using in-memory stores")
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	var (
		sqlDB *sql.DB
		err   error
	)
	if db.IsLambdaRuntime() {
		opts := db.OptionsFromEnv(db.DefaultLambdaOptions())
		sqlDB, err = db.GetSingleton(ctx, cfg.DatabaseURL, opts)
	} else {
		opts := db.OptionsFromEnv(db.DefaultServerOptions())
		sqlDB, err = db.Connect(ctx, cfg.DatabaseURL, opts)
	}
	if err != nil {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: database connect failed; using in-memory stores: %v", err)
			return nil, nil
		}
		return nil, err
	}

	if err := db.RunMigrations(ctx, sqlDB); err != nil {
		sqlDB.Close()
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: migrations failed; using in-memory stores: %v", err)
			return nil, nil
		}
		return nil, err
	}

	return sqlDB, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}

func buildQueue(ctx context.Context, cfg config.Config) (queue.Client, error) {
	if strings.TrimSpace(cfg.RunQueueURL) == "" {
		return nil, nil
	}
	return queue.NewSQSClient(ctx)
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}

func buildUploadsPresigner(ctx context.Context) (*documents.Presigner, error) {
	bucket := strings.TrimSpace(os.Getenv("UPLOADS_S3_BUCKET"))
	if bucket == "" {
		return nil, nil
	}

	region := strings.TrimSpace(os.Getenv("AWS_REGION"))
	if region == "" {
		region = uploadsDefaultRegion
	}
	prefix := strings.TrimSpace(os.Getenv("UPLOADS_S3_PREFIX"))
	if prefix == "" {
		prefix = uploadsDefaultPrefix
	}
	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg)
	return &documents.Presigner{
		Client: s3.NewPresignClient(client),
		Bucket: bucket,
		Prefix: prefix,
	}, nil
}

func buildServices(app *App, presigner *documents.Presigner) {
	var docRepo documents.Repo
	var runStore runs.Store

	if app.DB != nil {
		docRepo = &documents.PGRepo{DB: app.DB}
		runStore = &runs.PGStore{DB: app.DB}
	} else {
		docRepo = documents.NewMemoryRepo()
		runStore = runs.NewMemoryStore()
	}

	docSvc := &documents.Service{
		Store: app.Store,
		Repo:  docRepo,
	}

	var agentClient agent.Agent
	if endpoint := strings.TrimSpace(app.Config.AgentEndpoint); endpoint != "" {
		client, err := agent.NewHTTPClient(endpoint, app.Config.AgentTimeout)
		if err != nil {
			log.Printf("bootstrap: agent client init failed; runs will fail until configured: %v", err)
		} else {
			agentClient = client
		}
	} else {
		log.Printf("bootstrap: AGENT_ENDPOINT empty; runs will fail until configured")
	}

	orc := &runs.Orchestrator{
		Store:       runStore,
		Agent:       agentClient,
		DocRepo:     docRepo,
		Objects:     app.Store,
		Queue:       app.Queue,
		StepTimeout: app.Config.RunStepTimeout,
	}

	app.DocumentsRepo = docRepo
	app.RunStore = runStore
	app.Classifier = classify.New()
	app.Agent = agentClient
	app.Orchestrator = orc
	app.DocumentsService = docSvc
	app.ClassifyHandler = classify.NewHandler(app.Classifier)
	app.RunsHandler = runs.NewHandler(orc)
	app.DocumentsHandler = documents.NewHandler(docSvc)
	app.DocumentsHandler.Presign = presigner
}
