package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestNewWritesServiceField(t *testing.T) {
	var buf bytes.Buffer
	logg := New(Options{ServiceName: "test-svc", Output: &buf})

	logg.Info(context.Background(), "hello")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log output is not json: %v", err)
	}
	if entry["service"] != "test-svc" {
		t.Fatalf("expected service field, got %v", entry["service"])
	}
	if entry["message"] != "hello" {
		t.Fatalf("expected message field, got %v", entry["message"])
	}
}

func TestContextFieldsPropagate(t *testing.T) {
	var buf bytes.Buffer
	logg := New(Options{ServiceName: "test-svc", Output: &buf})

	ctx := logg.WithCustomerID(context.Background(), 123456)
	ctx = logg.WithOrderID(ctx, 42)
	ctx = logg.WithRequestID(ctx, "req-1")
	logg.Info(ctx, "with fields")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log output is not json: %v", err)
	}
	if entry["customer_id"] != "123456" {
		t.Fatalf("expected customer_id, got %v", entry["customer_id"])
	}
	if entry["order_id"] != "42" {
		t.Fatalf("expected order_id, got %v", entry["order_id"])
	}
	if entry["request_id"] != "req-1" {
		t.Fatalf("expected request_id, got %v", entry["request_id"])
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logg := New(Options{ServiceName: "test-svc", Level: zerolog.WarnLevel, Output: &buf})

	logg.Info(context.Background(), "suppressed")
	if buf.Len() != 0 {
		t.Fatalf("info should be suppressed at warn level")
	}

	logg.Warn(context.Background(), "visible")
	if !strings.Contains(buf.String(), "visible") {
		t.Fatalf("warn should be emitted")
	}
}

func TestParseLevel(t *testing.T) {
	if ParseLevel("debug") != zerolog.DebugLevel {
		t.Fatalf("debug should parse")
	}
	if ParseLevel("") != zerolog.InfoLevel {
		t.Fatalf("empty should default to info")
	}
	if ParseLevel("nonsense") != zerolog.InfoLevel {
		t.Fatalf("unknown should default to info")
	}
}
