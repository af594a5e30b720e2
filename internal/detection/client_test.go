package detection

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordedSleeps captures backoff delays without waiting
type recordedSleeps struct {
	mu     sync.Mutex
	delays []time.Duration
}

func (r *recordedSleeps) sleep(_ context.Context, d time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.delays = append(r.delays, d)
	return nil
}

func (r *recordedSleeps) all() []time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]time.Duration(nil), r.delays...)
}

func testClient(url string) (*Client, *recordedSleeps) {
	sleeps := &recordedSleeps{}
	c := NewClient(Config{
		BaseURL:             url,
		SingleTimeout:       100 * time.Millisecond,
		BatchTimeout:        100 * time.Millisecond,
		MaxAttempts:         3,
		FallbackMaxAttempts: 2,
		BaseBackoff:         10 * time.Second,
	}).WithSleep(sleeps.sleep)
	return c, sleeps
}

func writeOutcome(w http.ResponseWriter, o Outcome) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(o)
}

func TestDetectRetriesTimeoutsWithBackoff(t *testing.T) {
	var mu sync.Mutex
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		calls++
		n := calls
		mu.Unlock()

		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "https://cdn.example/hull-1.jpg", r.PostFormValue("photo_url"))

		if n <= 2 {
			// hold the request past the client timeout
			select {
			case <-r.Context().Done():
			case <-time.After(2 * time.Second):
			}
			return
		}
		writeOutcome(w, Outcome{
			Detections: []Box{{ClassName: "corrosion", Confidence: 0.82}},
			Finding:    "Surface corrosion and rust detected on metal surface.",
		})
	}))
	defer srv.Close()

	c, sleeps := testClient(srv.URL)
	out := c.Detect(t.Context(), PhotoRef{ID: 7, URL: "https://cdn.example/hull-1.jpg"})

	assert.False(t, out.Placeholder)
	assert.Equal(t, uint(7), out.PhotoID)
	assert.Equal(t, "Surface corrosion and rust detected on metal surface.", out.Finding)
	assert.Equal(t, Catalog[DefectCorrosion].Recommendation, out.Recommendation, "missing recommendation is filled from the catalog")
	assert.Equal(t, 1, out.DetectionCount)
	assert.Equal(t, []time.Duration{10 * time.Second, 20 * time.Second}, sleeps.all())
	mu.Lock()
	assert.Equal(t, 3, calls)
	mu.Unlock()
}

func TestDetectDoesNotRetryClientErrors(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.Error(w, "bad photo url", http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	c, sleeps := testClient(srv.URL)
	out := c.Detect(t.Context(), PhotoRef{ID: 3, URL: "nope"})

	assert.True(t, out.Placeholder)
	assert.Equal(t, PlaceholderFinding, out.Finding)
	assert.Equal(t, PlaceholderRecommendation, out.Recommendation)
	assert.Empty(t, out.Detections)
	assert.Equal(t, 1, calls)
	assert.Empty(t, sleeps.all())
}

func TestDetectBatchFallsBackPerPhoto(t *testing.T) {
	var mu sync.Mutex
	batchCalls := 0
	perPhoto := map[string]int{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()

		switch r.URL.Path {
		case "/detect-batch":
			batchCalls++
			http.Error(w, "space is waking up", http.StatusServiceUnavailable)
		case "/detect-by-url":
			photoURL := r.PostFormValue("photo_url")
			perPhoto[photoURL]++
			if photoURL == "u2" {
				http.Error(w, "inference crashed", http.StatusInternalServerError)
				return
			}
			writeOutcome(w, Outcome{Finding: "finding for " + photoURL, Recommendation: "recommendation for " + photoURL})
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c, sleeps := testClient(srv.URL)
	refs := []PhotoRef{{ID: 1, URL: "u1"}, {ID: 2, URL: "u2"}, {ID: 3, URL: "u3"}}
	outcomes := c.DetectBatch(t.Context(), refs, "hull")

	require.Len(t, outcomes, 3)
	for i, o := range outcomes {
		assert.Equal(t, refs[i].ID, o.PhotoID)
	}
	assert.Equal(t, "finding for u1", outcomes[0].Finding)
	assert.True(t, outcomes[1].Placeholder)
	assert.Equal(t, PlaceholderFinding, outcomes[1].Finding)
	assert.Equal(t, "finding for u3", outcomes[2].Finding)

	assert.Equal(t, 3, batchCalls)
	assert.Equal(t, 2, perPhoto["u2"], "fallback uses its own smaller attempt budget")
	assert.Equal(t, 1, perPhoto["u1"])

	// batch: 10s, 20s; photo 2 fallback: 10s
	assert.Equal(t, []time.Duration{10 * time.Second, 20 * time.Second, 10 * time.Second}, sleeps.all())
}

func TestDetectBatchSpacesFallbackCalls(t *testing.T) {
	const delay = 150 * time.Millisecond

	var mu sync.Mutex
	var calls []time.Time
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/detect-batch" {
			http.Error(w, "space is waking up", http.StatusServiceUnavailable)
			return
		}
		mu.Lock()
		calls = append(calls, time.Now())
		mu.Unlock()
		writeOutcome(w, Outcome{Finding: "ok"})
	}))
	defer srv.Close()

	c := NewClient(Config{
		BaseURL:             srv.URL,
		SingleTimeout:       time.Second,
		BatchTimeout:        time.Second,
		MaxAttempts:         1,
		FallbackMaxAttempts: 1,
		ItemDelay:           delay,
	})
	refs := []PhotoRef{{ID: 1, URL: "u1"}, {ID: 2, URL: "u2"}, {ID: 3, URL: "u3"}}
	outcomes := c.DetectBatch(t.Context(), refs, "hull")
	require.Len(t, outcomes, 3)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, calls, 3)
	for i := 1; i < len(calls); i++ {
		gap := calls[i].Sub(calls[i-1])
		assert.GreaterOrEqual(t, gap, delay-20*time.Millisecond, "call %d followed the previous one after %s", i, gap)
	}
}

func TestDetectBatchStopsPacingWhenCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/detect-batch" {
			http.Error(w, "space is waking up", http.StatusServiceUnavailable)
			return
		}
		writeOutcome(w, Outcome{Finding: "ok"})
	}))
	defer srv.Close()

	c := NewClient(Config{
		BaseURL:             srv.URL,
		SingleTimeout:       time.Second,
		BatchTimeout:        time.Second,
		MaxAttempts:         1,
		FallbackMaxAttempts: 1,
		ItemDelay:           time.Hour,
	})
	ctx, cancel := context.WithTimeout(t.Context(), 200*time.Millisecond)
	defer cancel()

	start := time.Now()
	outcomes := c.DetectBatch(ctx, []PhotoRef{{ID: 1, URL: "u1"}, {ID: 2, URL: "u2"}}, "hull")
	assert.Less(t, time.Since(start), 5*time.Second)
	require.Len(t, outcomes, 2)
	assert.Equal(t, "ok", outcomes[0].Finding)
	assert.True(t, outcomes[1].Placeholder)
}

func TestDetectBatchFillsMissingResults(t *testing.T) {
	fallbacks := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/detect-batch":
			var req batchRequest
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "nozzle", req.Category)
			assert.Equal(t, []uint{10, 11}, req.PhotoIDs)

			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(map[string]interface{}{
				"success": true,
				"results": []Outcome{{PhotoID: 10, Finding: "batch finding", Recommendation: "batch rec"}},
			})
		case "/detect-by-url":
			fallbacks++
			writeOutcome(w, Outcome{Finding: "single finding", Recommendation: "single rec"})
		}
	}))
	defer srv.Close()

	c, _ := testClient(srv.URL)
	outcomes := c.DetectBatch(t.Context(), []PhotoRef{{ID: 10, URL: "a"}, {ID: 11, URL: "b"}}, "nozzle")

	require.Len(t, outcomes, 2)
	assert.Equal(t, "batch finding", outcomes[0].Finding)
	assert.Equal(t, "single finding", outcomes[1].Finding)
	assert.Equal(t, uint(11), outcomes[1].PhotoID)
	assert.Equal(t, 1, fallbacks)
}

func TestDetectBatchEmpty(t *testing.T) {
	c, _ := testClient("http://127.0.0.1:0")
	assert.Empty(t, c.DetectBatch(t.Context(), nil, "hull"))
}

func TestOutcomeHelpers(t *testing.T) {
	o := Outcome{Detections: []Box{{Confidence: 0.4}, {Confidence: 0.91}, {Confidence: 0.7}}}
	max, ok := o.MaxConfidence()
	assert.True(t, ok)
	assert.InDelta(t, 0.91, max, 1e-9)

	_, ok = Outcome{}.MaxConfidence()
	assert.False(t, ok)

	img, err := DecodeImage("data:image/png;base64,aGVsbG8=")
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), img)

	img, err = DecodeImage("")
	require.NoError(t, err)
	assert.Nil(t, img)

	_, err = DecodeImage("%%%")
	assert.Error(t, err)
}

func TestClassify(t *testing.T) {
	assert.Equal(t, DefectCorrosion, Classify("Surface corrosion and RUST detected"))
	assert.Equal(t, DefectDents, Classify("Surface deformation/dent observed"))
	assert.Equal(t, DefectScratchMark, Classify("Paint peeling"))
	assert.Equal(t, DefectWeldingDefects, Classify("Weld irregularity"))
	assert.Equal(t, "", Classify("No significant defects detected."))
	assert.Len(t, DefectTypes(), 5)
	assert.Len(t, StatCategories(), 4)
}
