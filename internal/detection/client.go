// Package detection talks to the remote defect-detection service.
// Every call degrades to a placeholder outcome instead of failing, so callers
// always get one outcome per requested photo.
package detection

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// Detector is the contract the photo orchestrator depends on
type Detector interface {
	Detect(ctx context.Context, ref PhotoRef) Outcome
	DetectBatch(ctx context.Context, refs []PhotoRef, category string) []Outcome
}

// Config holds connection and retry settings
type Config struct {
	BaseURL             string
	SingleTimeout       time.Duration
	BatchTimeout        time.Duration
	MaxAttempts         int
	FallbackMaxAttempts int
	BaseBackoff         time.Duration
	// ItemDelay spaces consecutive fallback calls. Zero disables spacing.
	ItemDelay time.Duration
}

// SleepFunc waits for d or until ctx is done
type SleepFunc func(ctx context.Context, d time.Duration) error

// Client is the HTTP implementation of Detector
type Client struct {
	cfg     Config
	http    *http.Client
	sleep   SleepFunc
	limiter *rate.Limiter
}

var _ Detector = (*Client)(nil)

// NewClient creates a detector client
func NewClient(cfg Config) *Client {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	if cfg.FallbackMaxAttempts < 1 {
		cfg.FallbackMaxAttempts = 1
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	limit := rate.Inf
	if cfg.ItemDelay > 0 {
		limit = rate.Every(cfg.ItemDelay)
	}

	return &Client{
		cfg:     cfg,
		http:    &http.Client{},
		sleep:   sleepContext,
		limiter: rate.NewLimiter(limit, 1),
	}
}

// WithSleep replaces the backoff sleeper
func (c *Client) WithSleep(fn SleepFunc) *Client {
	c.sleep = fn
	return c
}

// BaseURL returns the detector endpoint root
func (c *Client) BaseURL() string {
	return c.cfg.BaseURL
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// statusError is a non-2xx answer from the detector
type statusError struct {
	code int
	body string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("detector returned %d: %s", e.code, e.body)
}

// errRejected is a 2xx answer that reports success=false
var errRejected = errors.New("detector rejected the request")

// retryable reports whether an attempt failure is worth retrying.
// Timeouts, connection errors and 5xx are; 4xx and rejected payloads are not.
func retryable(err error) bool {
	var se *statusError
	if errors.As(err, &se) {
		return se.code >= 500
	}
	if errors.Is(err, errRejected) {
		return false
	}
	var ue *url.Error
	if errors.As(err, &ue) {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded)
}

// retry runs fn up to attempts times with exponential backoff between attempts
func (c *Client) retry(ctx context.Context, op string, attempts int, timeout time.Duration, fn func(ctx context.Context) error) error {
	var err error
	for attempt := 0; attempt < attempts; attempt++ {
		attemptCtx, cancel := context.WithTimeout(ctx, timeout)
		err = fn(attemptCtx)
		cancel()
		if err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if !retryable(err) || attempt == attempts-1 {
			break
		}

		delay := c.cfg.BaseBackoff << attempt
		log.Printf("⏳ Detector %s failed (attempt %d/%d), retrying in %s: %v", op, attempt+1, attempts, delay, err)
		if serr := c.sleep(ctx, delay); serr != nil {
			return serr
		}
	}
	return err
}

func (c *Client) do(req *http.Request, out interface{}) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &statusError{code: resp.StatusCode, body: strings.TrimSpace(string(body))}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode detector response: %w", err)
	}
	return nil
}

type batchRequest struct {
	PhotoIDs  []uint   `json:"photo_ids"`
	PhotoURLs []string `json:"photo_urls"`
	Category  string   `json:"category"`
}

type batchResponse struct {
	Success *bool     `json:"success"`
	Results []Outcome `json:"results"`
}

func (c *Client) postBatch(ctx context.Context, refs []PhotoRef, category string) ([]Outcome, error) {
	payload := batchRequest{Category: category}
	for _, r := range refs {
		payload.PhotoIDs = append(payload.PhotoIDs, r.ID)
		payload.PhotoURLs = append(payload.PhotoURLs, r.URL)
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	var out batchResponse
	err = c.retry(ctx, "batch", c.cfg.MaxAttempts, c.cfg.BatchTimeout, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/detect-batch", bytes.NewReader(body))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")
		out = batchResponse{}
		if err := c.do(req, &out); err != nil {
			return err
		}
		if out.Success != nil && !*out.Success {
			return errRejected
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out.Results, nil
}

func (c *Client) postURL(ctx context.Context, photoURL string, attempts int) (Outcome, error) {
	form := url.Values{"photo_url": {photoURL}}.Encode()

	var out Outcome
	err := c.retry(ctx, "detect-by-url", attempts, c.cfg.SingleTimeout, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/detect-by-url", strings.NewReader(form))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		out = Outcome{}
		return c.do(req, &out)
	})
	return out, err
}

// Detect analyses a single photo by URL with the full retry budget
func (c *Client) Detect(ctx context.Context, ref PhotoRef) Outcome {
	out, err := c.postURL(ctx, ref.URL, c.cfg.MaxAttempts)
	if err != nil {
		log.Printf("❌ Detection failed for photo %d: %v", ref.ID, err)
		return Placeholder(ref.ID)
	}
	return normalize(out, ref.ID)
}

// DetectBatch analyses photos in one batch call. Photos the batch did not answer
// for are detected one by one; photos that still fail get a placeholder.
// The result holds exactly one outcome per ref, in ref order.
func (c *Client) DetectBatch(ctx context.Context, refs []PhotoRef, category string) []Outcome {
	if len(refs) == 0 {
		return []Outcome{}
	}

	answered := make(map[uint]Outcome, len(refs))
	results, err := c.postBatch(ctx, refs, category)
	if err != nil {
		log.Printf("⚠️ Batch detection failed, trying one by one: %v", err)
	}
	for _, o := range results {
		answered[o.PhotoID] = o
	}

	outcomes := make([]Outcome, len(refs))
	for i, ref := range refs {
		if o, ok := answered[ref.ID]; ok {
			outcomes[i] = normalize(o, ref.ID)
			continue
		}
		if err := c.limiter.Wait(ctx); err != nil {
			outcomes[i] = Placeholder(ref.ID)
			continue
		}
		o, ferr := c.postURL(ctx, ref.URL, c.cfg.FallbackMaxAttempts)
		if ferr != nil {
			log.Printf("❌ Error detecting photo %d: %v", ref.ID, ferr)
			outcomes[i] = Placeholder(ref.ID)
			continue
		}
		outcomes[i] = normalize(o, ref.ID)
	}
	return outcomes
}

// DetectFile forwards an uploaded image to the detector
func (c *Client) DetectFile(ctx context.Context, filename string, data []byte) Outcome {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	if err == nil {
		_, err = part.Write(data)
	}
	if err == nil {
		err = mw.Close()
	}
	if err != nil {
		log.Printf("❌ Could not encode upload %s: %v", filename, err)
		return Placeholder(0)
	}
	body := buf.Bytes()

	var out Outcome
	err = c.retry(ctx, "detect-single", c.cfg.MaxAttempts, c.cfg.SingleTimeout, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/detect-single", bytes.NewReader(body))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", mw.FormDataContentType())
		out = Outcome{}
		return c.do(req, &out)
	})
	if err != nil {
		log.Printf("❌ Detection failed for file %s: %v", filename, err)
		return Placeholder(0)
	}
	return normalize(out, 0)
}

// Health queries the detector's health endpoint
func (c *Client) Health(ctx context.Context) (map[string]interface{}, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+"/health", nil)
	if err != nil {
		return nil, err
	}
	status := map[string]interface{}{}
	if err := c.do(req, &status); err != nil {
		return nil, err
	}
	return status, nil
}
