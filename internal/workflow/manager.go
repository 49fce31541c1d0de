package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	"clipforge/internal/archive"
	"clipforge/internal/compositor"
	"clipforge/internal/config"
	"clipforge/internal/convert"
	"clipforge/internal/fluidity"
	"clipforge/internal/framing"
	"clipforge/internal/logging"
	"clipforge/internal/media/ffmpeg"
	"clipforge/internal/media/ffprobe"
	"clipforge/internal/queue"
	"clipforge/internal/render"
	"clipforge/internal/services"
	"clipforge/internal/services/aikit"
	"clipforge/internal/textutil"
	"clipforge/internal/validate"
)

const lockFileName = "clipforge.lock"

// Manager drives a batch export end to end.
type Manager struct {
	cfg       *config.Config
	store     *queue.Store
	logger    *slog.Logger
	publisher Publisher

	aiClient  *aikit.Client
	analyzer  *framing.Analyzer
	recorder  *render.Recorder
	converter *convert.Converter
	validator *validate.Validator
	packager  *archive.Packager
	estimator *fluidity.Estimator

	// Injectable for tests.
	run          ffmpeg.Runner
	probe        func(ctx context.Context, binary, path string) (ffprobe.Result, error)
	trialRun     func(ctx context.Context, comp *compositor.Compositor, opts fluidity.TrialOptions) (fluidity.Recommendation, error)
	sleep        func(ctx context.Context, d time.Duration) error
	freeSpace    func(dir string, minimum uint64) error
	checkTools   func() error
	renderPass   func(ctx context.Context, comp *compositor.Compositor, canvasW, canvasH int, opts render.Options, progress render.ProgressFunc) error
	validatePass func(ctx context.Context, path string) error

	// Batch-scoped state: the template is loaded once and shared read-only;
	// the fluidity recommendation from the first job feeds later jobs.
	template       *compositor.Template
	recommendation *fluidity.Recommendation
}

// NewManager wires the pipeline components from configuration.
func NewManager(cfg *config.Config, store *queue.Store, logger *slog.Logger) *Manager {
	client := aikit.NewClient(cfg.AI.BaseURL, cfg.AI.APIKey,
		aikit.WithTimeout(time.Duration(cfg.AI.TimeoutSeconds)*time.Second))
	m := &Manager{
		cfg:       cfg,
		store:     store,
		logger:    logging.NewComponentLogger(logger, "workflow"),
		publisher: NewLogPublisher(logger),
		aiClient:  client,
		analyzer:  framing.NewAnalyzer(client, logger),
		recorder:  render.NewRecorder(cfg.FFmpegBinary(), logger),
		converter: convert.New(cfg.FFmpegBinary(), logger),
		validator: validate.New(cfg.FFprobeBinary(), logger),
		packager:  archive.NewPackager(logger),
		estimator: fluidity.NewEstimator(cfg.FFmpegBinary(), logger),
		probe:     ffprobe.Inspect,
		freeSpace: requireFreeSpace,
	}
	m.trialRun = m.estimator.Trial
	m.sleep = sleepCtx
	m.checkTools = func() error { return requireTools(cfg) }
	m.renderPass = m.recorder.Render
	m.validatePass = m.validator.Validate
	return m
}

// SetPublisher replaces the progress event sink.
func (m *Manager) SetPublisher(p Publisher) {
	if p != nil {
		m.publisher = p
	}
}

// RunBatch processes every pending job in queue order, then packages the
// delivered files. The workspace lock guarantees a single batch at a time.
func (m *Manager) RunBatch(ctx context.Context) error {
	if err := m.cfg.EnsureDirectories(); err != nil {
		return services.Wrap(services.ErrConfiguration, "preflight", "workspace", "", err)
	}

	lock := flock.New(filepath.Join(m.cfg.Paths.WorkspaceDir, lockFileName))
	locked, err := lock.TryLock()
	if err != nil {
		return services.Wrap(services.ErrConfiguration, "preflight", "workspace lock", "", err)
	}
	if !locked {
		return services.Wrap(services.ErrConfiguration, "preflight", "workspace lock",
			"another export is already running against this workspace", nil)
	}
	defer func() {
		_ = lock.Unlock()
	}()

	if err := m.checkTools(); err != nil {
		return err
	}
	if err := m.freeSpace(m.cfg.Paths.OutputDir, minFreeBytes); err != nil {
		return err
	}

	if reset, err := m.store.ResetStuckProcessing(ctx); err != nil {
		return err
	} else if reset > 0 {
		m.logger.Info("reset stuck jobs from a previous run", logging.Int64("count", reset))
	}

	tpl, err := compositor.LoadTemplate(
		m.cfg.Template.Path,
		m.cfg.Template.RegionX,
		m.cfg.Template.RegionY,
		m.cfg.Template.RegionWidth,
		m.cfg.Template.RegionHeight,
	)
	if err != nil {
		return err
	}
	m.template = tpl

	var completed []*queue.Job
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		job, err := m.store.NextForStatuses(ctx, queue.StatusPending)
		if err != nil {
			return err
		}
		if job == nil {
			break
		}

		if err := m.processJob(ctx, job); err != nil {
			if services.IsCancellation(err) {
				return err
			}
			// Job-level failures are already recorded; the batch continues
			// with the remaining jobs.
			m.logger.Error("job failed",
				logging.Int64(logging.FieldJobID, job.ID),
				logging.Error(err),
			)
		} else {
			completed = append(completed, job)
		}

		if delay := m.cfg.Render.InterJobDelaySeconds; delay > 0 {
			if err := m.sleep(ctx, time.Duration(delay)*time.Second); err != nil {
				return err
			}
		}
	}

	return m.archiveBatch(ctx, completed)
}

// archiveBatch packages the delivered files of the jobs completed in this
// run into chunked zips in the output directory.
func (m *Manager) archiveBatch(ctx context.Context, jobs []*queue.Job) error {
	var entries []archive.Entry
	for _, job := range jobs {
		if job.DeliveredFile == "" {
			continue
		}
		size, err := fileSize(job.DeliveredFile)
		if err != nil {
			m.logger.Warn("delivered file missing, excluded from archive",
				logging.Int64(logging.FieldJobID, job.ID),
				logging.Error(err),
			)
			continue
		}
		entries = append(entries, archive.Entry{
			Name: filepath.Base(job.DeliveredFile),
			Path: job.DeliveredFile,
			Size: size,
		})
	}
	if len(entries) == 0 {
		return nil
	}

	limits := archive.Limits{MaxEntries: m.cfg.Archive.MaxEntries, MaxBytes: m.cfg.ArchiveMaxBytes()}
	base := archiveBase(jobs)
	m.logger.Info("packaging batch",
		logging.Int("entries", len(entries)),
		logging.Int("estimated_archives", archive.EstimateZipCount(entries, limits)),
	)
	written, err := m.packager.Pack(ctx, entries, limits, m.cfg.Paths.OutputDir, base)
	if err != nil {
		return err
	}
	for _, path := range written {
		m.logger.Info("archive written", logging.String("path", path))
	}
	return nil
}

func archiveBase(jobs []*queue.Job) string {
	for _, job := range jobs {
		if job.BatchID != "" {
			id := textutil.SanitizeToken(job.BatchID)
			if len(id) > 8 {
				id = id[:8]
			}
			return "clipforge_" + id
		}
	}
	return fmt.Sprintf("clipforge_%s", time.Now().Format("20060102_150405"))
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
