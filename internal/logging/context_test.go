package logging

import (
	"context"
	"log/slog"
	"testing"
)

func TestContextFieldsRoundTrip(t *testing.T) {
	ctx := WithJobID(context.Background(), 42)
	ctx = WithBatchID(ctx, "batch-7")
	ctx = WithStage(ctx, "rendering")

	fields := ContextFields(ctx)
	got := map[string]string{}
	for _, attr := range fields {
		got[attr.Key] = attr.Value.String()
	}
	if got[FieldJobID] != "42" {
		t.Fatalf("job id field = %q, want 42", got[FieldJobID])
	}
	if got[FieldBatchID] != "batch-7" {
		t.Fatalf("batch id field = %q, want batch-7", got[FieldBatchID])
	}
	if got[FieldStage] != "rendering" {
		t.Fatalf("stage field = %q, want rendering", got[FieldStage])
	}
}

func TestContextFieldsOmitsUnsetValues(t *testing.T) {
	if fields := ContextFields(context.Background()); len(fields) != 0 {
		t.Fatalf("fields = %v, want none for a bare context", fields)
	}
	ctx := WithStage(context.Background(), "")
	if fields := ContextFields(ctx); len(fields) != 0 {
		t.Fatalf("fields = %v, empty stage must be omitted", fields)
	}
}

func TestWithContextAugmentsLogger(t *testing.T) {
	var record slog.Record
	handler := recordFunc(func(r slog.Record) { record = r })

	ctx := WithJobID(context.Background(), 9)
	WithContext(ctx, slog.New(handler)).Info("hello")

	found := false
	record.Attrs(func(attr slog.Attr) bool {
		if attr.Key == FieldJobID && attr.Value.Int64() == 9 {
			found = true
		}
		return true
	})
	if !found {
		t.Fatal("record missing job id attribute from context")
	}
}

// recordFunc is a minimal handler that forwards each record, with any attrs
// accumulated through With, to the wrapped function.
type recordFunc func(slog.Record)

func (recordFunc) Enabled(context.Context, slog.Level) bool { return true }

func (f recordFunc) Handle(_ context.Context, r slog.Record) error {
	f(r)
	return nil
}

func (f recordFunc) WithAttrs(attrs []slog.Attr) slog.Handler {
	return recordFunc(func(r slog.Record) {
		r.AddAttrs(attrs...)
		f(r)
	})
}

func (f recordFunc) WithGroup(string) slog.Handler { return f }
