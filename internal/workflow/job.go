package workflow

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"clipforge/internal/captions"
	"clipforge/internal/compositor"
	"clipforge/internal/convert"
	"clipforge/internal/dubbing"
	"clipforge/internal/fileutil"
	"clipforge/internal/fluidity"
	"clipforge/internal/framing"
	"clipforge/internal/language"
	"clipforge/internal/logging"
	"clipforge/internal/media/ffmpeg"
	"clipforge/internal/queue"
	"clipforge/internal/render"
	"clipforge/internal/services"
	"clipforge/internal/services/aikit"
	"clipforge/internal/textutil"
)

// jobMedia is the probed shape of one source video.
type jobMedia struct {
	Width    int
	Height   int
	FPS      float64
	Duration float64
	HasAudio bool
}

// processJob drives one job through loading, optional dubbing and captions,
// rendering, optional conversion, and validation. Cancellation propagates;
// any other failure marks the job failed and lets the batch continue.
func (m *Manager) processJob(ctx context.Context, job *queue.Job) error {
	ctx = logging.WithJobID(ctx, job.ID)
	if job.BatchID != "" {
		ctx = logging.WithBatchID(ctx, job.BatchID)
	}

	jobDir := filepath.Join(m.cfg.Paths.WorkspaceDir, "jobs", fmt.Sprintf("job-%d", job.ID))
	if err := os.MkdirAll(jobDir, 0o755); err != nil {
		return m.failJob(ctx, job, services.Wrap(services.ErrConfiguration, "loading", "workspace", "", err))
	}
	job.ArtifactDir = jobDir

	if err := m.transition(ctx, job, queue.StatusLoading, "loading", "probing source", progressLoading); err != nil {
		return err
	}
	media, err := m.probeSource(ctx, job)
	if err != nil {
		return m.failJob(ctx, job, err)
	}

	placement := m.resolvePlacement(ctx, job, jobDir, media)
	comp := compositor.New(compositor.Options{
		Template:  m.template,
		Placement: placement,
		Watermark: m.cfg.Render.Watermark,
	})

	if err := m.ensureRecommendation(ctx, comp, job, media); err != nil {
		return err
	}

	track, renderAudio, err := m.prepareAudioAndCaptions(ctx, job, jobDir, media)
	if err != nil {
		if services.IsCancellation(err) {
			return err
		}
		return m.failJob(ctx, job, err)
	}

	comp = compositor.New(compositor.Options{
		Template:  m.template,
		Placement: placement,
		Track:     track,
		Watermark: m.cfg.Render.Watermark,
	})

	delivered, err := m.renderAndFinish(ctx, job, jobDir, comp, media, renderAudio)
	if err != nil {
		if services.IsCancellation(err) {
			return err
		}
		return m.failJob(ctx, job, err)
	}

	title := textutil.SanitizeFileName(job.Title)
	if title == "" {
		title = fmt.Sprintf("job-%d", job.ID)
	}
	final := filepath.Join(m.cfg.Paths.OutputDir, title+filepath.Ext(delivered))
	if err := fileutil.MoveFile(delivered, final); err != nil {
		return m.failJob(ctx, job, services.Wrap(services.ErrConfiguration, "validating", "deliver output", "", err))
	}

	job.DeliveredFile = final
	job.SetCompleted(final)
	if err := m.store.Update(ctx, job); err != nil {
		return err
	}
	m.reportProgress(ctx, job, "done", "export complete", 100)

	// Intermediate artifacts are exclusively owned by this job; release them
	// so a long batch cannot grow the workspace without bound.
	_ = os.RemoveAll(jobDir)
	return nil
}

func (m *Manager) probeSource(ctx context.Context, job *queue.Job) (jobMedia, error) {
	const stage = "loading"
	meta, err := m.probe(ctx, m.cfg.FFprobeBinary(), job.SourcePath)
	if err != nil {
		return jobMedia{}, services.Wrap(services.ErrMedia, stage, "probe source", "source is unreadable", err)
	}
	stream := meta.VideoStream()
	if stream == nil {
		return jobMedia{}, services.Wrap(services.ErrMedia, stage, "probe source", "source has no video stream", nil)
	}
	duration := meta.DurationSeconds()
	if math.IsNaN(duration) || duration <= 0 {
		return jobMedia{}, services.Wrap(services.ErrMedia, stage, "probe source", "source reports no duration", nil)
	}

	fps := meta.FrameRate()
	if fps <= 0 {
		fps = m.cfg.Render.FPS
	}
	if m.recommendation != nil && m.recommendation.FPS < fps {
		fps = m.recommendation.FPS
	}

	return jobMedia{
		Width:    stream.Width,
		Height:   stream.Height,
		FPS:      fps,
		Duration: duration,
		HasAudio: meta.AudioStreamCount() > 0,
	}, nil
}

// resolvePlacement derives the framing placement, consulting the remote
// analyzer when enabled. Analysis failures fall back to defaults and never
// block the job.
func (m *Manager) resolvePlacement(ctx context.Context, job *queue.Job, jobDir string, media jobMedia) framing.Placement {
	bounds := framing.DefaultBounds()
	anchor := framing.DefaultAnchor()

	if m.cfg.Framing.AIEnabled && m.aiClient.Enabled() {
		framePath := filepath.Join(jobDir, "frame.png")
		err := ffmpeg.ExtractFrame(ctx, m.run, m.cfg.FFmpegBinary(), job.SourcePath, framePath, media.Duration*0.25)
		if err == nil {
			if png, readErr := os.ReadFile(framePath); readErr == nil {
				bounds, anchor = m.analyzer.Analyze(ctx, png)
			}
		} else {
			logging.WithContext(ctx, m.logger).Warn("representative frame extraction failed, using default framing",
				logging.Error(err))
		}
	}

	return framing.ComputePlacement(
		media.Width, media.Height,
		bounds, anchor,
		m.cfg.Template.RegionWidth, m.cfg.Template.RegionHeight,
		m.cfg.Render.FitMode,
	)
}

// ensureRecommendation runs the fluidity trial once per batch, on the first
// job, and keeps its recommendation for all later jobs.
func (m *Manager) ensureRecommendation(ctx context.Context, comp *compositor.Compositor, job *queue.Job, media jobMedia) error {
	if m.recommendation != nil {
		return nil
	}
	rec, err := m.trialRun(ctx, comp, fluidity.TrialOptions{
		Source:       job.SourcePath,
		SourceWidth:  media.Width,
		SourceHeight: media.Height,
		FPS:          media.FPS,
	})
	if err != nil {
		if services.IsCancellation(err) {
			return err
		}
		m.logger.Warn("fluidity trial failed, keeping configured settings", logging.Error(err))
		rec = fluidity.Recommendation{FPS: media.FPS, Resolution: fluidity.ResolutionOriginal, Quality: "unknown"}
	}
	m.recommendation = &rec
	return nil
}

// prepareAudioAndCaptions runs the optional dubbing lifecycle and builds the
// caption track. Returns the audio input for the encoder: the source
// container in original-audio mode, a decoded dub WAV in dubbed-audio mode,
// or empty when the source is silent.
func (m *Manager) prepareAudioAndCaptions(ctx context.Context, job *queue.Job, jobDir string, media jobMedia) (*captions.Track, string, error) {
	renderAudio := ""
	if media.HasAudio {
		renderAudio = job.SourcePath
	}

	wantDub := m.cfg.Dubbing.Enabled && media.HasAudio
	wantCaptions := m.cfg.Captions.Enabled && media.HasAudio
	if !wantDub && !wantCaptions {
		return nil, renderAudio, nil
	}

	if err := m.transition(ctx, job, queue.StatusTranscribing, "transcribing", "extracting audio", progressTranscribe); err != nil {
		return nil, "", err
	}
	wav, err := m.extractAudio(ctx, job, jobDir)
	if err != nil {
		if services.IsCancellation(err) {
			return nil, "", err
		}
		logging.WithContext(ctx, m.logger).Warn("audio extraction failed, continuing without captions or dubbing",
			logging.Error(err))
		return nil, renderAudio, nil
	}

	style := captions.Style(m.cfg.Captions.Style)
	var transcription aikit.Transcription

	if wantDub {
		orch := dubbing.NewOrchestrator(m.aiClient, m.logger)
		result, err := orch.Run(ctx, wav, dubbing.Options{
			TargetLanguage: m.cfg.Dubbing.Language,
			ForeignOnly:    m.cfg.Dubbing.ForeignOnly,
			VoiceGender:    m.cfg.Dubbing.VoiceGender,
		})
		if err != nil {
			return nil, "", err
		}
		transcription = result.Transcription

		if result.State == dubbing.StateReady {
			message := fmt.Sprintf("preparing %s dub", language.DisplayName(m.cfg.Dubbing.Language))
			if err := m.transition(ctx, job, queue.StatusDubbing, "dubbing", message, progressDubbing); err != nil {
				return nil, "", err
			}
			dubWav, err := m.decodeDub(ctx, jobDir, result)
			if err != nil {
				if services.IsCancellation(err) {
					return nil, "", err
				}
				logging.WithContext(ctx, m.logger).Warn("dub audio decode failed, keeping original audio",
					logging.Error(err))
			} else {
				renderAudio = dubWav
				if wantCaptions {
					return captions.NewTranslatedTrack(result.TranslatedText, media.Duration, style), renderAudio, nil
				}
				return nil, renderAudio, nil
			}
		}
	}

	if !wantCaptions {
		return nil, renderAudio, nil
	}

	if len(transcription.Words) == 0 && transcription.Text == "" {
		transcription, err = m.aiClient.Transcribe(ctx, wav)
		if err != nil {
			if services.IsCancellation(err) {
				return nil, "", err
			}
			logging.WithContext(ctx, m.logger).Warn("transcription unavailable, continuing without captions",
				logging.Error(err))
			return nil, renderAudio, nil
		}
	}

	return m.buildCaptionTrack(ctx, job, transcription, media, style), renderAudio, nil
}

// buildCaptionTrack builds a verbatim track, or a translated one when a
// caption language other than the original is configured. Translation
// failures fall back to the verbatim track.
func (m *Manager) buildCaptionTrack(ctx context.Context, job *queue.Job, transcription aikit.Transcription, media jobMedia, style captions.Style) *captions.Track {
	lang := m.cfg.Captions.Language
	if lang == "" || lang == "original" {
		return captions.NewTrack(transcription, style)
	}

	if err := m.transitionIfForward(ctx, job, queue.StatusTranslating, "translating", "translating captions", progressTranslate); err != nil {
		return captions.NewTrack(transcription, style)
	}
	translation, err := m.aiClient.Translate(ctx, transcription.Text, lang)
	if err != nil {
		logging.WithContext(ctx, m.logger).Warn("caption translation unavailable, keeping original language",
			logging.Error(err))
		return captions.NewTrack(transcription, style)
	}
	return captions.NewTranslatedTrack(translation.TranslatedText, media.Duration, style)
}

func (m *Manager) extractAudio(ctx context.Context, job *queue.Job, jobDir string) ([]byte, error) {
	wavPath := filepath.Join(jobDir, "audio.wav")
	if err := ffmpeg.ExtractAudio(ctx, m.run, m.cfg.FFmpegBinary(), job.SourcePath, wavPath); err != nil {
		return nil, err
	}
	return os.ReadFile(wavPath)
}

// decodeDub writes the synthesized audio to disk and decodes it into a PCM
// WAV the encoder maps directly.
func (m *Manager) decodeDub(ctx context.Context, jobDir string, result dubbing.Result) (string, error) {
	raw := filepath.Join(jobDir, "dub."+result.AudioFormat)
	if err := os.WriteFile(raw, result.AudioBytes, 0o644); err != nil {
		return "", err
	}
	dubWav := filepath.Join(jobDir, "dub.wav")
	if err := ffmpeg.DecodeAudio(ctx, m.run, m.cfg.FFmpegBinary(), raw, dubWav); err != nil {
		return "", err
	}
	return dubWav, nil
}

// renderAndFinish encodes, optionally converts, and validates the output,
// retrying the encode once with a conservative profile when validation
// fails. Returns the path of the validated delivery file.
func (m *Manager) renderAndFinish(ctx context.Context, job *queue.Job, jobDir string, comp *compositor.Compositor, media jobMedia, renderAudio string) (string, error) {
	if err := m.transition(ctx, job, queue.StatusRendering, "rendering", "compositing frames", progressRenderStart); err != nil {
		return "", err
	}

	opts := render.Options{
		Source:         job.SourcePath,
		SourceWidth:    media.Width,
		SourceHeight:   media.Height,
		FPS:            media.FPS,
		Duration:       media.Duration,
		AudioPath:      renderAudio,
		NormalizeAudio: m.cfg.Render.NormalizeAudio,
		MaxQuality:     m.cfg.Render.MaxQuality,
		Dest:           filepath.Join(jobDir, "export.mp4"),
	}
	if err := m.renderOnce(ctx, job, comp, opts); err != nil {
		return "", err
	}

	delivered, err := m.convertIfEnabled(ctx, job, jobDir, opts.Dest)
	if err != nil {
		return "", err
	}

	if err := m.transition(ctx, job, queue.StatusValidating, "validating", "checking output", progressValidate); err != nil {
		return "", err
	}
	if err := m.validatePass(ctx, delivered); err != nil {
		if services.IsCancellation(err) {
			return "", err
		}
		logging.WithContext(ctx, m.logger).Warn("validation failed, re-encoding with conservative profile",
			logging.Error(err))

		opts.Conservative = true
		opts.MaxQuality = false
		opts.Dest = filepath.Join(jobDir, "export_conservative.mp4")
		if err := m.renderOnce(ctx, job, comp, opts); err != nil {
			return "", err
		}
		if err := m.validatePass(ctx, opts.Dest); err != nil {
			return "", err
		}
		delivered = opts.Dest
	}
	return delivered, nil
}

func (m *Manager) renderOnce(ctx context.Context, job *queue.Job, comp *compositor.Compositor, opts render.Options) error {
	return m.renderPass(ctx, comp, m.template.Width(), m.template.Height(), opts, func(fraction float64) {
		percent := progressRenderStart + fraction*(progressRenderEnd-progressRenderStart)
		m.reportProgress(ctx, job, "rendering", "compositing frames", percent)
	})
}

// convertIfEnabled re-encodes into the delivery format. A conversion failure
// is logged and the original container is delivered instead of failing the
// job.
func (m *Manager) convertIfEnabled(ctx context.Context, job *queue.Job, jobDir, encoded string) (string, error) {
	if !m.cfg.Convert.Enabled {
		return encoded, nil
	}
	if err := m.transition(ctx, job, queue.StatusConverting, "converting", "converting container", progressConvert); err != nil {
		return "", err
	}
	dest := convert.DestPath(filepath.Join(jobDir, "delivery.tmp"), m.cfg.Convert.Format)
	if err := m.converter.Convert(ctx, encoded, dest); err != nil {
		if services.IsCancellation(err) {
			return "", err
		}
		logging.WithContext(ctx, m.logger).Warn("conversion failed, delivering original container",
			logging.Error(err))
		return encoded, nil
	}
	return dest, nil
}

func (m *Manager) transition(ctx context.Context, job *queue.Job, status queue.Status, stage, message string, percent float64) error {
	job.Status = status
	if err := m.store.Update(ctx, job); err != nil {
		return err
	}
	logging.WithContext(logging.WithStage(ctx, stage), m.logger).Info("stage started",
		logging.String(logging.FieldEventType, "stage_start"),
		logging.String("message", message),
	)
	m.reportProgress(ctx, job, stage, message, percent)
	return nil
}

// transitionIfForward is transition for optional stages: a regression error
// (the job is already past this status) is absorbed.
func (m *Manager) transitionIfForward(ctx context.Context, job *queue.Job, status queue.Status, stage, message string, percent float64) error {
	if !queue.CanTransition(job.Status, status) {
		return nil
	}
	return m.transition(ctx, job, status, stage, message, percent)
}

// failJob records the failure with a user-facing message. Cancellation is
// never recorded as a failure; the stuck-job reset reclaims the job instead.
func (m *Manager) failJob(ctx context.Context, job *queue.Job, cause error) error {
	if services.IsCancellation(cause) {
		return cause
	}
	job.SetFailed(services.UserMessage(cause))
	if err := m.store.Update(ctx, job); err != nil {
		m.logger.Error("persist job failure", logging.Error(err))
	}
	m.reportProgress(ctx, job, "error", job.ErrorMessage, job.ProgressPercent)
	return cause
}

func fileSize(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}
