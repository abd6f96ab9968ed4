package audit

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/use-agent/webboost/browser"
	"github.com/use-agent/webboost/browser/browsertest"
	"github.com/use-agent/webboost/config"
	"github.com/use-agent/webboost/models"
)

const recipePage = `<!doctype html>
<html>
<head>
<script type="application/ld+json">{"@context":"https://schema.org","@type":"Recipe","name":"Soup"}</script>
<style>
body { margin: 0; height: 1000px; }
h1, p { margin: 0; }
.ad-slot { height: 150px; }
</style>
</head>
<body>
<h1>Tomato soup</h1>
<p>Simmer the tomatoes gently.</p>
<div class="ad-slot"></div>
<div class="mv-ad-box"></div>
<script>var notCounted = "these words";</script>
</body>
</html>`

// framedPage injects an iframe while parsing, then blocks the parser on a
// slow script. The main document's content lives after that script.
const framedPage = `<!doctype html>
<html>
<head><style>body { margin: 0; } p { margin: 0; }</style></head>
<body>
<script>
var f = document.createElement('iframe');
f.srcdoc = '<p>inner frame</p>';
document.body.appendChild(f);
</script>
<script src="/slow.js"></script>
<div class="ad-slot" style="height: 200px"></div>
<p>late words arrive here</p>
</body>
</html>`

func pageServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	serve := func(body string) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			_, _ = w.Write([]byte(body))
		}
	}
	mux.HandleFunc("/recipe", serve(recipePage))
	mux.HandleFunc("/framed", serve(framedPage))
	mux.HandleFunc("/slow.js", func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(1500 * time.Millisecond)
		w.Header().Set("Content-Type", "application/javascript")
		_, _ = w.Write([]byte("window.slowLoaded = true;"))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

// TestRun_RealBrowser runs the shipped extraction script in a real Chrome.
func TestRun_RealBrowser(t *testing.T) {
	bin := os.Getenv("WEBBOOST_TEST_CHROME")
	if bin == "" {
		t.Skip("Skipping real browser test: WEBBOOST_TEST_CHROME not set")
	}

	srv := pageServer(t)
	a, err := New(browser.NewLocalLauncher(bin, false), config.AuditConfig{
		NavigationTimeout: 10 * time.Second,
		RequestDeadline:   30 * time.Second,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	t.Run("recipe page", func(t *testing.T) {
		res := a.Run(context.Background(), srv.URL+"/recipe")
		if !res.OK() {
			t.Fatalf("expected success, got %v", res.Err)
		}
		if res.Metrics.MobileAdDensity != 15 {
			t.Errorf("MobileAdDensity = %d, want 15", res.Metrics.MobileAdDensity)
		}
		if !res.Metrics.HasSchema {
			t.Error("HasSchema = false, want true")
		}
		if res.Metrics.WordCount != 6 {
			t.Errorf("WordCount = %d, want 6", res.Metrics.WordCount)
		}
	})

	t.Run("child frame does not end navigation early", func(t *testing.T) {
		res := a.Run(context.Background(), srv.URL+"/framed")
		if !res.OK() {
			t.Fatalf("expected success, got %v", res.Err)
		}
		if res.Metrics.WordCount != 4 {
			t.Errorf("WordCount = %d, want 4 (content after the slow script)", res.Metrics.WordCount)
		}
		if res.Metrics.MobileAdDensity == 0 {
			t.Error("ad slot after the slow script was not measured")
		}
	})
}

func TestFixturePage_OnlyAnswersExtractScript(t *testing.T) {
	page, err := fixturePage(t, recipeFixture)
	if err != nil {
		t.Fatalf("fixturePage: %v", err)
	}
	sel, err := AdSelector(nil)
	if err != nil {
		t.Fatalf("AdSelector: %v", err)
	}
	ctx := context.Background()

	if _, err := page.Eval(ctx, "THIS IS NOT JAVASCRIPT (((", sel); !errors.Is(err, browsertest.ErrUnexpectedScript) {
		t.Errorf("Eval(other script) error = %v, want ErrUnexpectedScript", err)
	}
	if _, err := page.Eval(ctx, extractScript, sel); err != nil {
		t.Errorf("Eval(extractScript): %v", err)
	}
}

func TestRun_ScriptMismatchIsExtractionFailure(t *testing.T) {
	page, err := browsertest.FixturePage("() => 1", recipeFixture)
	if err != nil {
		t.Fatalf("FixturePage: %v", err)
	}
	l := &browsertest.Launcher{Session: &browsertest.Session{Page: page}}

	res := newAuditor(t, l).Run(context.Background(), "https://example.com/recipe")
	if res.OK() || res.Err == nil {
		t.Fatal("expected failure when the page is asked to run a different script")
	}
	if res.Err.Code != models.ErrCodeExtraction {
		t.Errorf("code = %s, want %s", res.Err.Code, models.ErrCodeExtraction)
	}
	if !errors.Is(res.Err, browsertest.ErrUnexpectedScript) {
		t.Errorf("error = %v, want ErrUnexpectedScript in chain", res.Err)
	}
}
