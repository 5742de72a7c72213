package harvest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

const samplePage = `<html>
<head><style>body { color: red }</style></head>
<body>
  <nav>Home About Contact</nav>
  <script>console.log("tracking")</script>
  <p>Useful   reference
  content here.</p>
  <footer>copyright notice</footer>
</body>
</html>`

func TestHarvestExtractsVisibleText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(samplePage))
	}))
	defer srv.Close()

	h := New(5 * time.Second)
	pages := h.Harvest(context.Background(), []string{srv.URL})
	if len(pages) != 1 {
		t.Fatalf("expected 1 page, got %d", len(pages))
	}
	got := pages[0].Text
	if got != "Useful reference content here." {
		t.Fatalf("unexpected text: %q", got)
	}
	if strings.Contains(got, "tracking") || strings.Contains(got, "copyright") {
		t.Fatalf("boilerplate not stripped: %q", got)
	}
}

func TestHarvestFetchesEachURLOnce(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&hits, 1)
		_, _ = w.Write([]byte("<p>page body</p>"))
	}))
	defer srv.Close()

	h := New(5 * time.Second)
	pages := h.Harvest(context.Background(), []string{srv.URL, srv.URL, srv.URL, ""})
	if n := atomic.LoadInt32(&hits); n != 1 {
		t.Fatalf("expected 1 fetch for duplicated url, got %d", n)
	}
	if len(pages) != 1 {
		t.Fatalf("expected 1 page, got %d", len(pages))
	}
}

func TestHarvestSkipsFailures(t *testing.T) {
	good := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("<p>still here</p>"))
	}))
	defer good.Close()
	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer bad.Close()

	h := New(5 * time.Second)
	pages := h.Harvest(context.Background(), []string{bad.URL, good.URL, "http://127.0.0.1:1/unreachable"})
	if len(pages) != 1 {
		t.Fatalf("expected only the healthy page, got %d", len(pages))
	}
	if pages[0].Text != "still here" {
		t.Fatalf("unexpected text: %q", pages[0].Text)
	}
}

func TestHarvestSkipsEmptyPages(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("<html><body><script>only(junk)</script></body></html>"))
	}))
	defer srv.Close()

	h := New(5 * time.Second)
	if pages := h.Harvest(context.Background(), []string{srv.URL}); len(pages) != 0 {
		t.Fatalf("expected no pages for empty visible text, got %d", len(pages))
	}
}
