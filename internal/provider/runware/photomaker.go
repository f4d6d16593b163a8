package runware

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/spetersoncode/headshot"
)

// maxDownloadBytes bounds a downloaded result image.
const maxDownloadBytes = 20 << 20

// photoMakerTask is the wire form of a PhotoMaker request.
type photoMakerTask struct {
	TaskType       string   `json:"taskType"`
	TaskUUID       string   `json:"taskUUID"`
	InputImages    []string `json:"inputImages"`
	Style          string   `json:"style"`
	Strength       int      `json:"strength"`
	PositivePrompt string   `json:"positivePrompt"`
	NegativePrompt string   `json:"negativePrompt,omitempty"`
	Model          string   `json:"model"`
	Width          int      `json:"width"`
	Height         int      `json:"height"`
	Steps          int      `json:"steps"`
	NumberResults  int      `json:"numberResults"`
	OutputType     string   `json:"outputType"`
	OutputFormat   string   `json:"outputFormat"`
}

// GenerateImage runs one PhotoMaker task using the reference images as
// identity input. At least one reference image is required.
func (c *Client) GenerateImage(ctx context.Context, prompt string, opts ...headshot.ImageOption) (*headshot.ImageResponse, error) {
	options := headshot.ApplyImageOptions(opts...)
	if len(options.ReferenceImages) == 0 {
		fe := headshot.NewValidationError("PhotoMaker needs at least one reference photo.")
		fe.Provider = headshot.ProviderRunware
		return nil, fe
	}

	task := c.buildTask(prompt, options)

	var result taskResult
	err := c.WithSession(ctx, func(s *Session) error {
		agg := newAggregator(task.NumberResults)
		direct, release, directErr := s.Run(ctx, task.TaskUUID, task, task.NumberResults, agg.onPartial)
		if directErr == nil && len(usableResults(direct)) == 0 {
			agg.wait(ctx, c.cfg.CallbackGrace)
			if ctx.Err() != nil {
				directErr = ctx.Err()
			}
		}
		release()

		results, err := agg.resolve(direct, directErr)
		if err != nil {
			return err
		}
		result = results[0]
		return nil
	})
	if err != nil {
		return nil, wrapError(err)
	}

	data, mimeType, err := c.download(ctx, result)
	if err != nil {
		return nil, wrapError(err)
	}

	return &headshot.ImageResponse{
		Provider: headshot.ProviderRunware,
		Model:    task.Model,
		Base64:   data,
		MimeType: mimeType,
	}, nil
}

func (c *Client) buildTask(prompt string, options *headshot.ImageOptions) photoMakerTask {
	model := c.cfg.Model
	if options.Model != "" {
		model = options.Model
	}
	width, height := c.cfg.Width, c.cfg.Height
	if w, h, ok := parseSize(options.Size); ok {
		width, height = w, h
	}

	inputs := make([]string, 0, len(options.ReferenceImages))
	for _, img := range options.ReferenceImages {
		inputs = append(inputs, img.DataURI())
	}

	return photoMakerTask{
		TaskType:       "photoMaker",
		TaskUUID:       uuid.NewString(),
		InputImages:    inputs,
		Style:          c.cfg.Style,
		Strength:       c.cfg.Strength,
		PositivePrompt: EnsureTriggerWord(prompt, c.cfg.TriggerWord),
		NegativePrompt: c.cfg.NegativePrompt,
		Model:          model,
		Width:          width,
		Height:         height,
		Steps:          c.cfg.Steps,
		NumberResults:  1,
		OutputType:     "URL",
		OutputFormat:   c.cfg.OutputFormat,
	}
}

// parseSize reads a "WIDTHxHEIGHT" size.
func parseSize(size headshot.ImageSize) (int, int, bool) {
	w, h, ok := strings.Cut(string(size), "x")
	if !ok {
		return 0, 0, false
	}
	width, err := strconv.Atoi(w)
	if err != nil || width <= 0 {
		return 0, 0, false
	}
	height, err := strconv.Atoi(h)
	if err != nil || height <= 0 {
		return 0, 0, false
	}
	return width, height, true
}

// download turns a task result into base64 image data.
func (c *Client) download(ctx context.Context, r taskResult) (string, string, error) {
	if r.ImageBase64Data != "" {
		return r.ImageBase64Data, "image/png", nil
	}
	if r.ImageURL == "" {
		return "", "", headshot.NewEmptyResultError(headshot.ProviderRunware)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.ImageURL, nil)
	if err != nil {
		return "", "", &headshot.ImageError{Op: "fetch", URL: r.ImageURL, Err: err}
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", "", &headshot.ImageError{Op: "fetch", URL: r.ImageURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", "", &headshot.ImageError{Op: "fetch", URL: r.ImageURL, Err: fmt.Errorf("unexpected status: %s", resp.Status)}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxDownloadBytes))
	if err != nil {
		return "", "", &headshot.ImageError{Op: "fetch", URL: r.ImageURL, Err: err}
	}
	if len(body) == 0 {
		return "", "", headshot.NewEmptyResultError(headshot.ProviderRunware)
	}

	mimeType := resp.Header.Get("Content-Type")
	if !strings.HasPrefix(mimeType, "image/") {
		mimeType = http.DetectContentType(body)
	}
	if i := strings.IndexByte(mimeType, ';'); i >= 0 {
		mimeType = strings.TrimSpace(mimeType[:i])
	}
	return base64.StdEncoding.EncodeToString(body), mimeType, nil
}

// aggregator collects partial results reported while a task runs.
// The buffer is bounded by the number of results requested and done is
// closed exactly once, when enough results or an error arrived.
type aggregator struct {
	want int

	mu       sync.Mutex
	buffered []taskResult
	err      error

	once sync.Once
	done chan struct{}
}

func newAggregator(want int) *aggregator {
	if want < 1 {
		want = 1
	}
	return &aggregator{
		want:     want,
		buffered: make([]taskResult, 0, want),
		done:     make(chan struct{}),
	}
}

func (a *aggregator) onPartial(results []taskResult, err error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err != nil {
		if a.err == nil {
			a.err = err
		}
		a.finish()
		return
	}
	for _, r := range results {
		if len(a.buffered) >= a.want {
			break
		}
		if !r.usable() {
			continue
		}
		a.buffered = append(a.buffered, r)
	}
	if len(a.buffered) >= a.want {
		a.finish()
	}
}

func (a *aggregator) finish() {
	a.once.Do(func() { close(a.done) })
}

// wait blocks until the aggregator completes, ctx ends, or grace passes.
func (a *aggregator) wait(ctx context.Context, grace time.Duration) {
	timer := time.NewTimer(grace)
	defer timer.Stop()
	select {
	case <-a.done:
	case <-ctx.Done():
	case <-timer.C:
	}
}

// resolve picks the outcome. A reported error wins, then non-empty direct
// results, then buffered partial results.
func (a *aggregator) resolve(direct []taskResult, directErr error) ([]taskResult, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.err != nil {
		return nil, a.err
	}
	if usable := usableResults(direct); len(usable) > 0 {
		return usable, nil
	}
	if len(a.buffered) > 0 {
		return append([]taskResult(nil), a.buffered...), nil
	}
	if directErr != nil {
		return nil, directErr
	}
	return nil, headshot.NewEmptyResultError(headshot.ProviderRunware)
}

func usableResults(results []taskResult) []taskResult {
	var out []taskResult
	for _, r := range results {
		if r.usable() {
			out = append(out, r)
		}
	}
	return out
}
