package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"go.opentelemetry.io/contrib/processors/minsev"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

func TestInstrumentLocal(t *testing.T) {
	previous := slog.Default()
	t.Cleanup(func() { slog.SetDefault(previous) })

	tests := []struct {
		name   string
		format string
		check  func(t *testing.T, out string)
	}{
		{
			name:   "text",
			format: "text",
			check: func(t *testing.T, out string) {
				if !strings.Contains(out, "msg=hello") || !strings.Contains(out, "path=/items") {
					t.Errorf("text output = %q", out)
				}
			},
		},
		{
			name:   "json",
			format: "json",
			check: func(t *testing.T, out string) {
				var record map[string]any
				if err := json.Unmarshal([]byte(out), &record); err != nil {
					t.Fatalf("output %q is not JSON: %v", out, err)
				}
				if record["msg"] != "hello" || record["path"] != "/items" {
					t.Errorf("json record = %v", record)
				}
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			shutdown, err := Instrument(context.Background(), Options{
				Level:  slog.LevelInfo,
				Format: tt.format,
				Output: &buf,
			})
			if err != nil {
				t.Fatalf("Instrument() error = %v", err)
			}
			defer func() { _ = shutdown(context.Background()) }()

			slog.Debug("hidden")
			slog.Info("hello", "path", "/items")

			tt.check(t, strings.TrimSpace(buf.String()))
		})
	}
}

func TestInstrumentStdoutExporter(t *testing.T) {
	previous := slog.Default()
	previousTracer := otel.GetTracerProvider()
	previousPropagator := otel.GetTextMapPropagator()
	t.Cleanup(func() {
		slog.SetDefault(previous)
		otel.SetTracerProvider(previousTracer)
		otel.SetTextMapPropagator(previousPropagator)
	})

	var buf bytes.Buffer
	shutdown, err := Instrument(context.Background(), Options{
		Level:    slog.LevelInfo,
		Format:   "text",
		Output:   &buf,
		Exporter: ExporterStdout,
	})
	if err != nil {
		t.Fatalf("Instrument() error = %v", err)
	}

	ctx, span := otel.Tracer("test").Start(context.Background(), "GET /items")
	carrier := propagation.MapCarrier{}
	otel.GetTextMapPropagator().Inject(ctx, carrier)
	span.End()

	if !span.SpanContext().IsValid() {
		t.Error("span context invalid, want a recording tracer provider")
	}
	if got := carrier.Get("traceparent"); !strings.Contains(got, span.SpanContext().TraceID().String()) {
		t.Errorf("traceparent = %q, want trace id %s", got, span.SpanContext().TraceID())
	}

	slog.Info("exported")
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown error = %v", err)
	}

	// One line from the local handler, one record from the exporter.
	if got := strings.Count(buf.String(), "exported"); got < 2 {
		t.Errorf("record seen %d times, want local and exported copies:\n%s", got, buf.String())
	}
	if !strings.Contains(buf.String(), `"Name":"GET /items"`) {
		t.Errorf("exported output lacks the span:\n%s", buf.String())
	}
}

func TestInstrumentRejectsUnknownFormat(t *testing.T) {
	if _, err := Instrument(context.Background(), Options{Format: "xml", Output: &bytes.Buffer{}}); err == nil {
		t.Error("Instrument() error = nil, want error")
	}
}

func TestSeverity(t *testing.T) {
	tests := []struct {
		level slog.Level
		want  minsev.Severity
	}{
		{level: slog.LevelDebug, want: minsev.SeverityDebug},
		{level: slog.LevelInfo, want: minsev.SeverityInfo},
		{level: slog.LevelWarn, want: minsev.SeverityWarn},
		{level: slog.LevelError, want: minsev.SeverityError},
	}
	for _, tt := range tests {
		if got := severity(tt.level); got != tt.want {
			t.Errorf("severity(%v) = %v, want %v", tt.level, got, tt.want)
		}
	}
}
