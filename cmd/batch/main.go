package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/katkatprog/sleepApp-sub000/internal/models"
	"github.com/katkatprog/sleepApp-sub000/internal/pipeline"
	"github.com/katkatprog/sleepApp-sub000/pkg/config"
	"github.com/katkatprog/sleepApp-sub000/pkg/llm"
	"github.com/katkatprog/sleepApp-sub000/pkg/logger"
	"github.com/katkatprog/sleepApp-sub000/pkg/metrics"
	"github.com/katkatprog/sleepApp-sub000/pkg/scheduler"
	"github.com/katkatprog/sleepApp-sub000/pkg/storage"
	"github.com/katkatprog/sleepApp-sub000/pkg/util"
)

func main() {
	daemon := flag.Bool("daemon", false, "keep running and self-schedule at BATCH_EXEC_HOUR_GMT instead of running once")
	flag.Parse()
	os.Exit(run(*daemon))
}

// run builds the resource bundle, executes the batch and releases
// everything on every exit path. A run abort returns non-zero without
// panicking; the external scheduler retries on its next tick.
func run(daemon bool) int {
	cfg, err := config.Load()
	if err != nil {
		log.Printf("config load failed: %v", err)
		return 1
	}
	if err := cfg.ValidateBatch(); err != nil {
		log.Printf("invalid configuration: %v", err)
		return 1
	}

	zl := logger.New(cfg.Log)
	defer zl.Sync()

	db, err := util.ConnectDatabase(cfg.DBDriver, cfg.DSN)
	if err != nil {
		zl.Error("database connection failed", zap.Error(err))
		return 1
	}
	defer util.CloseDatabase(db)

	if err := models.AutoMigrate(db); err != nil {
		zl.Error("migration failed", zap.Error(err))
		return 1
	}

	store, err := storage.NewMinioStore(cfg.Minio)
	if err != nil {
		zl.Error("object store setup failed", zap.Error(err))
		return 1
	}
	ctx := context.Background()
	if err := store.EnsureBucket(ctx); err != nil {
		zl.Error("bucket setup failed", zap.Error(err))
		return 1
	}

	dispatcher, err := pipeline.NewSynthesisClient(cfg.TTSServiceURL, cfg.TTSApiKey, store)
	if err != nil {
		zl.Error("synthesis client setup failed", zap.Error(err))
		return 1
	}

	var transformer pipeline.Transformer
	if cfg.TransformServiceURL != "" {
		transformer = pipeline.NewHTTPTransformer(cfg.TransformServiceURL)
	}

	generator := pipeline.NewWordListGenerator(
		llm.NewOpenAIClient(cfg.LLMApiKey, cfg.LLMBaseURL, cfg.LLMModel),
		transformer,
		zl,
	)
	processor := pipeline.NewProcessor(
		db,
		generator,
		dispatcher,
		pipeline.NewArtifactRecorder(db),
		rand.New(rand.NewSource(time.Now().UnixNano())),
		metrics.NewPipeline(prometheus.DefaultRegisterer),
		zl,
		cfg.RecordsPerBatch,
	)

	if daemon {
		return runDaemon(cfg, processor, zl)
	}

	if err := processor.Run(ctx); err != nil {
		zl.Error("batch run aborted", zap.Error(err))
		return 1
	}
	return 0
}

func runDaemon(cfg *config.Config, processor *pipeline.Processor, zl *zap.Logger) int {
	cr := scheduler.NewCron(time.UTC)
	expr := fmt.Sprintf("0 %d * * *", cfg.BatchExecHourGMT)
	_, err := cr.Add(expr, scheduler.FuncJob(func(ctx context.Context) {
		if err := processor.Run(ctx); err != nil {
			zl.Error("batch run aborted", zap.Error(err))
		}
	}))
	if err != nil {
		zl.Error("cron setup failed", zap.Error(err))
		return 1
	}

	cr.Start()
	zl.Info("batch daemon scheduled", zap.String("cron", expr))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	cr.Stop()
	zl.Info("batch daemon stopped")
	return 0
}
