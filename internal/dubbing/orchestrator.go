package dubbing

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/text/language"

	"clipforge/internal/logging"
	"clipforge/internal/services"
	"clipforge/internal/services/aikit"
)

// Options configures one dubbing run.
type Options struct {
	TargetLanguage string
	// ForeignOnly skips synthesis when the source already speaks the target
	// language family.
	ForeignOnly bool
	VoiceGender string
}

// Result is the terminal outcome of a dubbing run. Transcription is always
// populated once transcription succeeded, whatever the final state, so the
// caller can still build original-language captions after a failure.
type Result struct {
	State         State
	Transcription aikit.Transcription
	// TranslatedText and WordTimings are set in the ready state for caption
	// reuse without a second translation call.
	TranslatedText string
	WordTimings    []aikit.Word
	AudioBytes     []byte
	AudioFormat    string
	VoiceUsed      string
	// Err records why the run failed. Nil unless State is failed.
	Err error
}

// Orchestrator runs the dubbing state machine for one job at a time.
type Orchestrator struct {
	client *aikit.Client
	logger *slog.Logger
	state  State
}

// NewOrchestrator constructs an orchestrator over the AI service client.
func NewOrchestrator(client *aikit.Client, logger *slog.Logger) *Orchestrator {
	return &Orchestrator{
		client: client,
		logger: logging.NewComponentLogger(logger, "dubbing"),
		state:  StateIdle,
	}
}

// State reports the current lifecycle state.
func (o *Orchestrator) State() State { return o.state }

func (o *Orchestrator) advance(next State) {
	if !o.state.canTransition(next) {
		// A backward transition is a programming error; fail the run loudly
		// rather than corrupting the lifecycle.
		panic(fmt.Sprintf("dubbing: invalid transition %s -> %s", o.state, next))
	}
	o.state = next
}

// Run executes the full lifecycle: transcribe, translate, synthesize. The
// returned error is non-nil only for cancellation; every remote failure is
// absorbed into the failed state so the caller can fall back to original
// audio without treating it as a job error.
func (o *Orchestrator) Run(ctx context.Context, audio []byte, opts Options) (Result, error) {
	result := Result{State: StateIdle}

	o.advance(StateTranscribing)
	transcription, err := o.client.Transcribe(ctx, audio)
	if err != nil {
		return o.fail(&result, "transcription", err)
	}
	result.Transcription = transcription

	if opts.ForeignOnly && sameLanguageFamily(transcription.DetectedLanguage, opts.TargetLanguage) {
		o.advance(StateSkipped)
		result.State = StateSkipped
		o.logger.Info("dubbing skipped, source already in target language",
			logging.String("detected_language", transcription.DetectedLanguage),
			logging.String("target_language", opts.TargetLanguage),
		)
		return result, nil
	}

	o.advance(StateTranslating)
	translation, err := o.client.Translate(ctx, transcription.Text, opts.TargetLanguage)
	if err != nil {
		return o.fail(&result, "translation", err)
	}
	result.TranslatedText = translation.TranslatedText
	result.WordTimings = translation.Words

	o.advance(StateSynthesizing)
	synthesis, err := o.client.Synthesize(ctx, translation.TranslatedText, opts.TargetLanguage, opts.VoiceGender)
	if err != nil {
		return o.fail(&result, "synthesis", err)
	}
	result.AudioBytes = synthesis.AudioBytes
	result.AudioFormat = synthesis.Format
	result.VoiceUsed = synthesis.VoiceUsed

	o.advance(StateReady)
	result.State = StateReady
	return result, nil
}

func (o *Orchestrator) fail(result *Result, stage string, err error) (Result, error) {
	if services.IsCancellation(err) {
		return *result, err
	}
	o.advance(StateFailed)
	result.State = StateFailed
	result.Err = err
	o.logger.Warn("dubbing failed, keeping original audio",
		logging.String("failed_stage", stage),
		logging.Error(err),
		logging.String(logging.FieldImpact, "output keeps original audio and captions"),
	)
	return *result, nil
}

// sameLanguageFamily compares BCP 47 tags by base language, so pt matches
// pt-BR and pt-PT.
func sameLanguageFamily(detected, target string) bool {
	if detected == "" || target == "" {
		return false
	}
	detectedTag, err := language.Parse(detected)
	if err != nil {
		return false
	}
	targetTag, err := language.Parse(target)
	if err != nil {
		return false
	}
	detectedBase, confA := detectedTag.Base()
	targetBase, confB := targetTag.Base()
	if confA == language.No || confB == language.No {
		return false
	}
	return detectedBase == targetBase
}
