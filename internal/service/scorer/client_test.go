package scorer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"

	"FinMerge/internal/domain/failure"
	xhttp "FinMerge/pkg/http"
)

// labelServer labels a text by the first sentiment word it contains.
func labelServer(t *testing.T, batches *[]int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/classify" || r.Method != http.MethodPost {
			http.NotFound(w, r)
			return
		}
		var req classifyRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if req.MaxTokens != 512 {
			t.Errorf("max_tokens = %d", req.MaxTokens)
		}
		*batches = append(*batches, len(req.Texts))

		type result struct {
			Label string  `json:"label"`
			Score float64 `json:"score"`
		}
		var out struct {
			Results []result `json:"results"`
		}
		for _, text := range req.Texts {
			label := "neutral"
			switch {
			case strings.Contains(text, "beats"):
				label = "Positive"
			case strings.Contains(text, "misses"):
				label = "negative"
			}
			out.Results = append(out.Results, result{Label: label, Score: 0.9})
		}
		json.NewEncoder(w).Encode(out)
	}))
}

func TestClassifyBatchesInOrder(t *testing.T) {
	var batches []int
	srv := labelServer(t, &batches)
	defer srv.Close()

	c := New(xhttp.NewClient(), srv.URL, 2, 512)
	texts := []string{"Apple beats estimates", "Fed holds rates", "Intel misses guidance", "Nvidia beats again", "Oil flat"}

	got, err := c.Classify(context.Background(), texts)
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	want := []float64{1, 0, -1, 1, 0}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	if !reflect.DeepEqual(batches, []int{2, 2, 1}) {
		t.Fatalf("batches = %v", batches)
	}
}

func TestClassifyUnknownLabel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"results":[{"label":"LABEL_7","score":1}]}`))
	}))
	defer srv.Close()

	_, err := New(xhttp.NewClient(), srv.URL, 8, 512).Classify(context.Background(), []string{"x"})
	if failure.Classify(err) != failure.KindParse {
		t.Fatalf("expected parse failure, got %v", err)
	}
}

func TestClassifyCountMismatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"results":[]}`))
	}))
	defer srv.Close()

	_, err := New(xhttp.NewClient(), srv.URL, 8, 512).Classify(context.Background(), []string{"a", "b"})
	if failure.Classify(err) != failure.KindParse {
		t.Fatalf("expected parse failure, got %v", err)
	}
}

func TestClassifyEmptyInput(t *testing.T) {
	c := New(xhttp.NewClient(), "http://unused.invalid", 8, 512)
	got, err := c.Classify(context.Background(), nil)
	if err != nil || len(got) != 0 {
		t.Fatalf("got %v, %v", got, err)
	}
}
