package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/use-agent/webboost/audit"
	"github.com/use-agent/webboost/browser/browsertest"
	"github.com/use-agent/webboost/config"
	"github.com/use-agent/webboost/models"
	"github.com/use-agent/webboost/store"
)

func TestNewRootCmd(t *testing.T) {
	t.Parallel()

	cmd := NewRootCmd()
	if cmd.Use != "webboost" {
		t.Errorf("expected Use to be 'webboost', got %q", cmd.Use)
	}

	want := map[string]bool{"serve": false, "audit": false, "version": false}
	for _, sub := range cmd.Commands() {
		name := strings.Fields(sub.Use)[0]
		if _, ok := want[name]; ok {
			want[name] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("subcommand %q not registered", name)
		}
	}
}

func TestNewVersionCmd(t *testing.T) {
	t.Parallel()

	cmd := NewVersionCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.Run(cmd, nil)

	if !strings.Contains(out.String(), "webboost version "+getVersion()) {
		t.Errorf("unexpected output %q", out.String())
	}
	if !strings.Contains(out.String(), "revision") {
		t.Errorf("missing browser revision in %q", out.String())
	}
}

func TestAuditCmd_RequiresURL(t *testing.T) {
	t.Parallel()

	cmd := NewRootCmd()
	cmd.SetArgs([]string{"audit"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	if err := cmd.Execute(); err == nil {
		t.Error("expected error without a URL argument")
	}
}

func testAuditor(t *testing.T, l *browsertest.Launcher) *audit.Auditor {
	t.Helper()
	a, err := audit.New(l, config.AuditConfig{
		NavigationTimeout: 50 * time.Millisecond,
		RequestDeadline:   time.Second,
	})
	if err != nil {
		t.Fatalf("audit.New: %v", err)
	}
	return a
}

func TestRunAudit(t *testing.T) {
	t.Parallel()

	page := &browsertest.Page{OnEval: browsertest.Returning(map[string]any{
		"contentHeight": 500.0,
		"adHeights":     []float64{50},
		"ldJson":        []string{},
		"bodyText":      "hello world",
	})}
	l := &browsertest.Launcher{Session: &browsertest.Session{Page: page}}

	var out bytes.Buffer
	if err := runAudit(context.Background(), &out, testAuditor(t, l), "https://example.com"); err != nil {
		t.Fatalf("runAudit: %v", err)
	}

	var resp models.AuditResponse
	if err := json.Unmarshal(out.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp.Success || resp.Data.MobileAdDensity != 10 || resp.Data.WordCount != 2 {
		t.Errorf("unexpected result %+v", resp)
	}
}

func TestRunAudit_Failure(t *testing.T) {
	t.Parallel()

	l := &browsertest.Launcher{Err: errors.New("no chrome")}

	var out bytes.Buffer
	err := runAudit(context.Background(), &out, testAuditor(t, l), "https://example.com")
	if err == nil || !strings.Contains(err.Error(), models.ErrCodeProvision) {
		t.Fatalf("expected provision error, got %v", err)
	}

	var resp models.AuditResponse
	if err := json.Unmarshal(out.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Success || resp.Error == "" {
		t.Errorf("unexpected envelope %+v", resp)
	}
}

func TestOpenStore(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	st, err := openStore(ctx, config.StoreConfig{Driver: "none"})
	if err != nil {
		t.Fatalf("none: %v", err)
	}
	_ = st.Close()

	st, err = openStore(ctx, config.StoreConfig{
		Driver:     "sqlite",
		SQLitePath: filepath.Join(t.TempDir(), "audits.db"),
	})
	if err != nil {
		t.Fatalf("sqlite: %v", err)
	}
	if err := st.Save(ctx, store.NewRecord("", "https://example.com", models.PageMetrics{})); err != nil {
		t.Errorf("sqlite save: %v", err)
	}
	_ = st.Close()

	if _, err := openStore(ctx, config.StoreConfig{Driver: "postgres"}); err == nil {
		t.Error("postgres without DSN should fail")
	}
	if _, err := openStore(ctx, config.StoreConfig{Driver: "mongo"}); err == nil {
		t.Error("unknown driver should fail")
	}
}
