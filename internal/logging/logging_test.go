package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewJSONWithFile(t *testing.T) {
	t.Parallel()

	var stdout bytes.Buffer
	path := filepath.Join(t.TempDir(), "app.log")

	logger, closeFile, err := New(Options{
		Level:  slog.LevelInfo,
		Format: "json",
		Stdout: &stdout,
		File:   path,
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	logger.Debug("hidden")
	logger.Info("page generated", "page_id", "abc")

	if err := closeFile(); err != nil {
		t.Fatalf("close error = %v", err)
	}

	var record map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(stdout.Bytes()), &record); err != nil {
		t.Fatalf("stdout is not a single JSON record: %v (%q)", err, stdout.String())
	}
	if record["msg"] != "page generated" || record["page_id"] != "abc" {
		t.Fatalf("unexpected record: %v", record)
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(contents), `"page_id":"abc"`) {
		t.Fatalf("log file missing record: %q", contents)
	}
}

func TestNewTextDefault(t *testing.T) {
	t.Parallel()

	var stdout bytes.Buffer
	logger, _, err := New(Options{Level: slog.LevelInfo, Stdout: &stdout})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	logger.Info("hello", "component", "test")

	if !strings.Contains(stdout.String(), "hello") {
		t.Fatalf("expected text output, got %q", stdout.String())
	}
}

func TestMultiHandlerRespectsLevels(t *testing.T) {
	t.Parallel()

	var info, errs bytes.Buffer
	handler := MultiHandler(
		slog.NewTextHandler(&info, &slog.HandlerOptions{Level: slog.LevelInfo}),
		slog.NewTextHandler(&errs, &slog.HandlerOptions{Level: slog.LevelError}),
		nil,
	)
	logger := slog.New(handler).With("component", "janitor")

	logger.Info("pruned")
	logger.Error("prune failed")

	if strings.Count(info.String(), "component=janitor") != 2 {
		t.Fatalf("info sink should see both records: %q", info.String())
	}
	if strings.Contains(errs.String(), "pruned") || !strings.Contains(errs.String(), "prune failed") {
		t.Fatalf("error sink should only see the error: %q", errs.String())
	}
}

func TestFromContext(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	ctx := WithLogger(context.Background(), logger)
	if FromContext(ctx, nil) != logger {
		t.Fatalf("expected context logger")
	}
	if FromContext(context.Background(), nil) == nil {
		t.Fatalf("expected no-op logger fallback")
	}
}

func TestWithPageScopesLogger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	base := slog.New(slog.NewTextHandler(&buf, nil))

	ctx := WithPage(context.Background(), base, "page-1")
	FromContext(ctx, nil).Info("refreshed")
	if !strings.Contains(buf.String(), "page_id=page-1") {
		t.Fatalf("expected page id attribute, got %q", buf.String())
	}

	buf.Reset()
	FromContext(WithPage(context.Background(), base, ""), nil).Info("anonymous")
	if strings.Contains(buf.String(), "page_id") {
		t.Fatalf("empty page id should not be attached: %q", buf.String())
	}
}

func TestMultiHandlerRedactsSensitiveAttributes(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(MultiHandler(slog.NewTextHandler(&buf, nil))).With("password", "hunter2")

	logger.Info("share sent",
		"recipient", "ada@example.com",
		slog.Group("customer", "email", "ada@example.com", "city", "Austin"),
		"page_id", "abc",
	)

	out := buf.String()
	for _, leaked := range []string{"hunter2", "ada@example.com"} {
		if strings.Contains(out, leaked) {
			t.Fatalf("sensitive value %q leaked: %q", leaked, out)
		}
	}
	for _, kept := range []string{"page_id=abc", "customer.city=Austin", "recipient=[redacted]"} {
		if !strings.Contains(out, kept) {
			t.Fatalf("expected %q in %q", kept, out)
		}
	}
}
