package webhook

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/use-agent/webboost/config"
	"github.com/use-agent/webboost/models"
)

func TestDeliver_SignsBody(t *testing.T) {
	var gotSig string
	var gotEvent Event
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		gotSig = r.Header.Get(SignatureHeader)
		if want := Sign("s3cret", body); gotSig != want {
			t.Errorf("signature = %q, want %q", gotSig, want)
		}
		if err := json.Unmarshal(body, &gotEvent); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	ev := NewAuditCompleted("alice", models.AuditRecord{ID: "rec-1", URL: "https://example.com", WordCount: 7})
	if err := Deliver(context.Background(), srv.URL, "s3cret", ev); err != nil {
		t.Fatalf("Deliver: %v", err)
	}

	if gotSig == "" {
		t.Fatal("expected signature header")
	}
	if gotEvent.Type != EventAuditCompleted || gotEvent.Subject != "alice" {
		t.Errorf("event = %+v", gotEvent)
	}
	if gotEvent.ID == "" || gotEvent.ID != ev.ID {
		t.Errorf("event ID = %q, want %q", gotEvent.ID, ev.ID)
	}
	if gotEvent.Data.WordCount != 7 {
		t.Errorf("data = %+v", gotEvent.Data)
	}
}

func TestDeliver_NoSecretNoSignature(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if sig := r.Header.Get(SignatureHeader); sig != "" {
			t.Errorf("unexpected signature %q", sig)
		}
	}))
	defer srv.Close()

	if err := Deliver(context.Background(), srv.URL, "", NewAuditCompleted("u", models.AuditRecord{})); err != nil {
		t.Fatalf("Deliver: %v", err)
	}
}

func TestDeliver_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	if err := Deliver(context.Background(), srv.URL, "", NewAuditCompleted("u", models.AuditRecord{})); err == nil {
		t.Fatal("expected error for 500 response")
	}
}

func TestNotifier_RetriesUntilSuccess(t *testing.T) {
	orig := retryDelays
	retryDelays = []time.Duration{0, time.Millisecond, time.Millisecond}
	defer func() { retryDelays = orig }()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 2 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := NewNotifier(config.WebhookConfig{URL: srv.URL})
	select {
	case <-n.Notify(NewAuditCompleted("u", models.AuditRecord{})):
	case <-time.After(5 * time.Second):
		t.Fatal("notify did not finish")
	}

	if got := calls.Load(); got != 2 {
		t.Errorf("calls = %d, want 2", got)
	}
}

func TestNewNotifier_Disabled(t *testing.T) {
	n := NewNotifier(config.WebhookConfig{})
	if n != nil {
		t.Fatal("expected nil notifier without URL")
	}
	select {
	case <-n.Notify(NewAuditCompleted("u", models.AuditRecord{})):
	default:
		t.Error("nil notifier should complete immediately")
	}
}
