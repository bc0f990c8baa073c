package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"videoserver/internal/adapter/repo"
	"videoserver/internal/domain"
	"videoserver/internal/infra"
	"videoserver/internal/providers/video"
	"videoserver/internal/storage"
)

const (
	syntheticSteps   = 5
	maxThumbnailSize = 4 << 20
)

type taskWorker struct {
	ctx       context.Context
	logger    infra.Logger
	tasks     domain.TaskRepository
	projects  domain.ProjectRepository
	credits   domain.CreditRepository
	analytics domain.AnalyticsRepository
	generator video.Generator
	store     *storage.FileStore
	metrics   *infra.Metrics

	pollInterval time.Duration
	httpClient   *http.Client
}

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("worker: db connection failed")
	}
	defer pool.Close()

	runner := infra.NewSQLRunner(pool, logger)
	tasks := repo.NewTaskRepository(runner)

	storagePath := cfg.StoragePath
	if !filepath.IsAbs(storagePath) {
		if abs, err := filepath.Abs(storagePath); err == nil {
			storagePath = abs
		}
	}
	fileStore, err := storage.NewFileStore(storagePath, cfg.StorageBaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("worker: failed to configure storage")
	}

	generator, err := newGenerator(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("worker: failed to configure video provider")
	}
	logger.Info().Str("provider", cfg.VideoProvider).Msg("worker: video provider ready")

	metrics := infra.NewMetrics("worker")
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))
		if err := http.ListenAndServe(":"+cfg.MetricsPort, mux); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warn().Err(err).Msg("worker: metrics listener stopped")
		}
	}()

	worker := &taskWorker{
		ctx:          ctx,
		logger:       logger,
		tasks:        tasks,
		projects:     repo.NewProjectRepository(runner, tasks),
		credits:      repo.NewCreditRepository(runner),
		analytics:    repo.NewAnalyticsRepository(runner),
		generator:    generator,
		store:        fileStore,
		metrics:      metrics,
		pollInterval: cfg.PollInterval,
		httpClient:   &http.Client{Timeout: 30 * time.Second},
	}

	if err := worker.Run(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal().Err(err).Msg("worker: stopped with error")
	}
	logger.Info().Msg("worker: stopped")
}

func newGenerator(cfg *infra.Config) (video.Generator, error) {
	switch strings.ToLower(cfg.VideoProvider) {
	case "", "synthetic":
		return video.NewSynthetic(syntheticSteps), nil
	case "engine":
		return video.NewEngine(video.EngineOptions{
			BaseURL: cfg.EngineBaseURL,
			APIKey:  cfg.EngineAPIKey,
			Model:   cfg.EngineModel,
			Timeout: cfg.EngineTimeout,
		})
	default:
		return nil, fmt.Errorf("unknown video provider %q", cfg.VideoProvider)
	}
}

func (w *taskWorker) Run() error {
	w.logger.Info().Msg("worker: started")
	for {
		select {
		case <-w.ctx.Done():
			return w.ctx.Err()
		default:
		}

		task, err := w.tasks.ClaimPending(w.ctx)
		if err != nil {
			if !errors.Is(err, domain.ErrNotFound) {
				w.logger.Error().Err(err).Msg("worker: failed to claim task")
			}
			w.sleep()
			continue
		}
		w.handleTask(task)
	}
}

func (w *taskWorker) sleep() {
	select {
	case <-w.ctx.Done():
	case <-time.After(w.pollInterval):
	}
}

func (w *taskWorker) handleTask(task *domain.VideoTask) {
	w.logger.Info().Str("task_id", task.ID).Str("project_id", task.ProjectID).Msg("worker: picked task")
	if err := w.process(task); err != nil {
		w.fail(task, err)
	}
	w.finishProject(task.ProjectID)
}

func (w *taskWorker) process(task *domain.VideoTask) error {
	settings, err := domain.DecodeSettings(task.VideoSettings)
	if err != nil {
		return fmt.Errorf("decode task settings: %w", err)
	}

	params := settings.Params
	req := video.Request{
		RequestID:   task.ID,
		Prompt:      params.Prompt,
		Script:      settings.Script,
		Style:       params.NormalizedStyle(),
		Locale:      settings.Locale,
		Duration:    params.Duration,
		Quality:     string(params.Quality),
		AspectRatio: string(params.AspectRatio),
		AudioURL:    params.AudioURL,
		Seed:        params.Seed,
		Effects:     params.HasAdvancedEffects,
	}
	jobID, err := w.generator.Submit(w.ctx, req)
	if err != nil {
		return fmt.Errorf("submit generation: %w", err)
	}
	if err := w.tasks.SetExternalTask(w.ctx, task.ID, jobID); err != nil {
		w.logger.Error().Err(err).Str("task_id", task.ID).Msg("worker: record external task id failed")
	}
	task.TaskID = jobID

	for {
		select {
		case <-w.ctx.Done():
			return w.ctx.Err()
		case <-time.After(w.pollInterval):
		}

		result, err := w.generator.Poll(w.ctx, jobID)
		if err != nil {
			return fmt.Errorf("poll job %s: %w", jobID, err)
		}
		switch result.Status {
		case video.JobRunning:
			if err := w.tasks.UpdateProgress(w.ctx, task.ID, result.Progress); err != nil {
				w.logger.Warn().Err(err).Str("task_id", task.ID).Msg("worker: progress update failed")
			}
		case video.JobSucceeded:
			return w.complete(task, result)
		case video.JobFailed:
			return fmt.Errorf("%w: %s", domain.ErrProviderFailure, result.Error)
		default:
			return fmt.Errorf("%w: unexpected job status %q", domain.ErrProviderFailure, result.Status)
		}
	}
}

func (w *taskWorker) complete(task *domain.VideoTask, result *video.Result) error {
	thumbnailURL := w.mirrorThumbnail(task.ID, result.ThumbnailURL)
	if err := w.tasks.MarkCompleted(w.ctx, task.ID, result.VideoURL, thumbnailURL); err != nil {
		return fmt.Errorf("mark completed: %w", err)
	}
	w.metrics.VideosCompleted.Inc()
	w.count(domain.CounterVideosGenerated)
	w.logger.Info().Str("task_id", task.ID).Str("video_url", result.VideoURL).Msg("worker: task completed")
	return nil
}

func (w *taskWorker) fail(task *domain.VideoTask, cause error) {
	w.logger.Error().Err(cause).Str("task_id", task.ID).Msg("worker: task failed")
	if err := w.tasks.MarkFailed(w.ctx, task.ID, cause.Error()); err != nil {
		w.logger.Error().Err(err).Str("task_id", task.ID).Msg("worker: mark failed errored")
		return
	}
	w.metrics.VideosFailed.Inc()
	w.count(domain.CounterVideosFailed)
	w.refund(task)
}

// refund returns the credits of a failed generation to the project owner.
func (w *taskWorker) refund(task *domain.VideoTask) {
	if task.CreditsCost <= 0 {
		return
	}
	owner, err := w.projects.OwnerOf(w.ctx, task.ProjectID)
	if err != nil || owner == "" {
		w.logger.Warn().Err(err).Str("task_id", task.ID).Msg("worker: refund skipped, owner unknown")
		return
	}
	if err := w.credits.Grant(w.ctx, owner, task.CreditsCost); err != nil {
		w.logger.Error().Err(err).Str("task_id", task.ID).Msg("worker: credit refund failed")
	}
}

func (w *taskWorker) finishProject(projectID string) {
	total, completed, failed, err := w.tasks.TerminalCounts(w.ctx, projectID)
	if err != nil {
		w.logger.Warn().Err(err).Str("project_id", projectID).Msg("worker: terminal counts failed")
		return
	}
	if total == 0 || completed+failed < total || completed == 0 {
		return
	}
	if err := w.projects.CompleteIfActive(w.ctx, projectID); err != nil {
		w.logger.Warn().Err(err).Str("project_id", projectID).Msg("worker: project completion failed")
	}
}

// mirrorThumbnail copies a remote thumbnail into the local file store so
// it stays serveable after the engine expires its urls. On any error the
// original url is kept.
func (w *taskWorker) mirrorThumbnail(taskID, thumbnailURL string) string {
	if thumbnailURL == "" || w.store == nil {
		return thumbnailURL
	}
	req, err := http.NewRequestWithContext(w.ctx, http.MethodGet, thumbnailURL, nil)
	if err != nil {
		return thumbnailURL
	}
	resp, err := w.httpClient.Do(req)
	if err != nil {
		w.logger.Warn().Err(err).Str("task_id", taskID).Msg("worker: thumbnail fetch failed")
		return thumbnailURL
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return thumbnailURL
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxThumbnailSize))
	if err != nil || len(data) == 0 {
		return thumbnailURL
	}
	name := "thumbnail" + extensionFor(resp.Header.Get("Content-Type"))
	stored, err := w.store.SaveTaskAsset(w.ctx, taskID, name, data)
	if err != nil {
		w.logger.Warn().Err(err).Str("task_id", taskID).Msg("worker: thumbnail store failed")
		return thumbnailURL
	}
	return stored
}

func extensionFor(contentType string) string {
	switch strings.ToLower(strings.TrimSpace(contentType)) {
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	default:
		return ".jpg"
	}
}

func (w *taskWorker) count(counter string) {
	day := time.Now().UTC().Format("2006-01-02")
	if err := w.analytics.IncrementCounters(w.ctx, day, map[string]int{counter: 1}); err != nil {
		w.logger.Warn().Err(err).Msg("worker: analytics increment failed")
	}
}
