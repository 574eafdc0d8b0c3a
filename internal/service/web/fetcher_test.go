package web

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"FinMerge/internal/domain/failure"
	"FinMerge/internal/service/ratelimit"
	xhttp "FinMerge/pkg/http"
)

func TestFetchSendsBrowserHeaders(t *testing.T) {
	var ua, accept string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ua = r.Header.Get("User-Agent")
		accept = r.Header.Get("Accept")
		w.Write([]byte("<html><body>ok</body></html>"))
	}))
	defer srv.Close()

	hc := xhttp.NewClient(
		xhttp.WithHeaders(xhttp.BrowserHeaders()),
		xhttp.WithUserAgents([]string{"agent-a"}),
	)
	f := New(hc, nil)

	body, err := f.Fetch(context.Background(), srv.URL+"/quote/AAPL")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if string(body) != "<html><body>ok</body></html>" {
		t.Fatalf("body = %q", body)
	}
	if ua != "agent-a" {
		t.Fatalf("User-Agent = %q", ua)
	}
	if accept == "" {
		t.Fatal("Accept header missing")
	}
}

func TestFetchWaitHonorsContext(t *testing.T) {
	lim := ratelimit.New(time.Hour, 1)
	f := New(xhttp.NewClient(), lim)
	// consume the only token for the host
	lim.Allow("example.invalid")

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := f.Fetch(ctx, "http://example.invalid/page")
	if failure.Classify(err) != failure.KindNetwork {
		t.Fatalf("expected network failure, got %v", err)
	}
}

func TestFetchStatusIsNetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "blocked", http.StatusForbidden)
	}))
	defer srv.Close()

	_, err := New(xhttp.NewClient(), nil).Fetch(context.Background(), srv.URL)
	if failure.Classify(err) != failure.KindNetwork {
		t.Fatalf("expected network failure, got %v", err)
	}
}
