package dubbing

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"clipforge/internal/logging"
	"clipforge/internal/services/aikit"
)

type stubService struct {
	transcription   map[string]any
	synthesizeCalls atomic.Int64
}

func (s *stubService) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/transcribe", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(s.transcription)
	})
	mux.HandleFunc("/v1/translate", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"translatedText": "ola mundo",
			"words": []map[string]any{
				{"text": "ola", "start": 0.0, "end": 0.5},
				{"text": "mundo", "start": 0.5, "end": 1.0},
			},
		})
	})
	mux.HandleFunc("/v1/synthesize", func(w http.ResponseWriter, r *http.Request) {
		s.synthesizeCalls.Add(1)
		json.NewEncoder(w).Encode(map[string]any{
			"audio":  base64.StdEncoding.EncodeToString([]byte("dub-audio")),
			"format": "mp3",
		})
	})
	return mux
}

func newStub(detectedLanguage string) *stubService {
	return &stubService{transcription: map[string]any{
		"text":             "hello world",
		"words":            []map[string]any{{"text": "hello", "start": 0.0, "end": 0.5}},
		"detectedLanguage": detectedLanguage,
	}}
}

func TestRunCompletesFullLifecycle(t *testing.T) {
	stub := newStub("en-US")
	srv := httptest.NewServer(stub.handler())
	defer srv.Close()

	o := NewOrchestrator(aikit.NewClient(srv.URL, "key"), logging.NewNop())
	result, err := o.Run(context.Background(), []byte("wav"), Options{TargetLanguage: "pt-BR"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.State != StateReady {
		t.Fatalf("state = %s, want ready", result.State)
	}
	if string(result.AudioBytes) != "dub-audio" || result.AudioFormat != "mp3" {
		t.Fatalf("unexpected synthesis payload: %q %q", result.AudioBytes, result.AudioFormat)
	}
	if result.TranslatedText != "ola mundo" || len(result.WordTimings) != 2 {
		t.Fatalf("translation not carried for caption reuse: %+v", result)
	}
}

func TestForeignOnlySkipsSameLanguageFamily(t *testing.T) {
	stub := newStub("pt-BR")
	srv := httptest.NewServer(stub.handler())
	defer srv.Close()

	o := NewOrchestrator(aikit.NewClient(srv.URL, "key"), logging.NewNop())
	result, err := o.Run(context.Background(), []byte("wav"), Options{
		TargetLanguage: "pt-BR",
		ForeignOnly:    true,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.State != StateSkipped {
		t.Fatalf("state = %s, want skipped", result.State)
	}
	if len(result.AudioBytes) != 0 {
		t.Fatal("skipped run must not carry synthesized audio")
	}
	if got := stub.synthesizeCalls.Load(); got != 0 {
		t.Fatalf("synthesis called %d times, want 0", got)
	}
}

func TestForeignOnlyMatchesAcrossRegions(t *testing.T) {
	stub := newStub("pt")
	srv := httptest.NewServer(stub.handler())
	defer srv.Close()

	o := NewOrchestrator(aikit.NewClient(srv.URL, "key"), logging.NewNop())
	result, err := o.Run(context.Background(), []byte("wav"), Options{
		TargetLanguage: "pt-BR",
		ForeignOnly:    true,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.State != StateSkipped {
		t.Fatalf("pt vs pt-BR should skip, state = %s", result.State)
	}
}

func TestForeignOnlyStillDubsForeignContent(t *testing.T) {
	stub := newStub("en-US")
	srv := httptest.NewServer(stub.handler())
	defer srv.Close()

	o := NewOrchestrator(aikit.NewClient(srv.URL, "key"), logging.NewNop())
	result, err := o.Run(context.Background(), []byte("wav"), Options{
		TargetLanguage: "pt-BR",
		ForeignOnly:    true,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.State != StateReady {
		t.Fatalf("state = %s, want ready", result.State)
	}
	if got := stub.synthesizeCalls.Load(); got != 1 {
		t.Fatalf("synthesis called %d times, want 1", got)
	}
}

func TestRemoteFailureLandsInFailedNotError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	o := NewOrchestrator(aikit.NewClient(srv.URL, "key"), logging.NewNop())
	result, err := o.Run(context.Background(), []byte("wav"), Options{TargetLanguage: "pt-BR"})
	if err != nil {
		t.Fatalf("remote failure must not surface as an error: %v", err)
	}
	if result.State != StateFailed {
		t.Fatalf("state = %s, want failed", result.State)
	}
	if result.Err == nil {
		t.Fatal("failed result must record the cause")
	}
}

func TestTranscriptionSurvivesLaterFailure(t *testing.T) {
	stub := newStub("en-US")
	mux := http.NewServeMux()
	mux.Handle("/v1/transcribe", stub.handler())
	mux.HandleFunc("/v1/translate", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	o := NewOrchestrator(aikit.NewClient(srv.URL, "key"), logging.NewNop())
	result, err := o.Run(context.Background(), []byte("wav"), Options{TargetLanguage: "pt-BR"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.State != StateFailed {
		t.Fatalf("state = %s, want failed", result.State)
	}
	if result.Transcription.Text != "hello world" {
		t.Fatal("transcription should survive a translation failure for caption fallback")
	}
}

func TestCancellationPropagates(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	srv := httptest.NewServer(newStub("en-US").handler())
	defer srv.Close()

	o := NewOrchestrator(aikit.NewClient(srv.URL, "key"), logging.NewNop())
	_, err := o.Run(ctx, []byte("wav"), Options{TargetLanguage: "pt-BR"})
	if err == nil {
		t.Fatal("cancelled context must surface as an error, not a failed state")
	}
}

func TestStateTransitionsForwardOnly(t *testing.T) {
	if StateReady.canTransition(StateIdle) {
		t.Fatal("terminal state must not transition")
	}
	if StateTranslating.canTransition(StateTranscribing) {
		t.Fatal("backward transition allowed")
	}
	if !StateTranscribing.canTransition(StateSkipped) {
		t.Fatal("skipping from transcribing should be allowed")
	}
	if !StateIdle.canTransition(StateFailed) {
		t.Fatal("failing early should be allowed")
	}
}
