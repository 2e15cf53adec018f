package image

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dmorgan81/falbot/internal/log"
	"github.com/samber/do"
	"github.com/samber/lo"
	"golang.org/x/time/rate"
)

const DefaultQueueURL = "https://queue.fal.run"

// FalGenerator runs jobs through the fal.ai queue API: submit, poll status
// with logs until COMPLETED, then fetch the result.
type FalGenerator struct {
	Client       *http.Client
	Key          string
	QueueURL     string
	PollInterval time.Duration
}

func NewFalGenerator(i *do.Injector) (Generator, error) {
	interval, err := time.ParseDuration(do.MustInvokeNamed[string](i, "poll_interval"))
	if err != nil {
		return nil, fmt.Errorf("parse poll interval: %w", err)
	}
	return &FalGenerator{
		Client:       do.MustInvoke[*http.Client](i),
		Key:          do.MustInvokeNamed[string](i, "fal_key"),
		QueueURL:     do.MustInvokeNamed[string](i, "queue_url"),
		PollInterval: interval,
	}, nil
}

type queueSubmission struct {
	RequestID   string `json:"request_id"`
	StatusURL   string `json:"status_url"`
	ResponseURL string `json:"response_url"`
}

type queueStatus struct {
	Status Status `json:"status"`
	Logs   []struct {
		Message string `json:"message"`
	} `json:"logs"`
}

func (g *FalGenerator) Generate(ctx context.Context, model string, input Input, onUpdate func(Update)) (Output, error) {
	log := log.FromContextOrDiscard(ctx).WithGroup("fal").With("model", model)
	if g.Key == "" {
		return Output{}, ErrMissingCredential
	}
	if onUpdate == nil {
		onUpdate = func(Update) {}
	}

	log.Info("submitting generation job", "input", input)
	body, err := json.Marshal(input)
	if err != nil {
		return Output{}, err
	}

	var sub queueSubmission
	endpoint := strings.TrimRight(lo.Ternary(g.QueueURL != "", g.QueueURL, DefaultQueueURL), "/") + "/" + strings.TrimLeft(model, "/")
	if err := g.do(ctx, http.MethodPost, endpoint, body, &sub); err != nil {
		return Output{}, err
	}
	log = log.With("request_id", sub.RequestID)
	log.Info("job submitted")

	statusURL := sub.StatusURL
	if statusURL == "" {
		statusURL = endpoint + "/requests/" + sub.RequestID + "/status"
	}
	responseURL := sub.ResponseURL
	if responseURL == "" {
		responseURL = endpoint + "/requests/" + sub.RequestID
	}

	if err := g.await(ctx, sub.RequestID, statusURL, onUpdate); err != nil {
		return Output{}, err
	}

	var raw map[string]any
	if err := g.do(ctx, http.MethodGet, responseURL, nil, &raw); err != nil {
		return Output{}, err
	}
	log.Debug("received generation result", "result", raw)

	return splitOutput(raw), nil
}

// await polls the status endpoint until the job completes. The provider
// returns the full log list on every poll; only the unseen tail is relayed.
func (g *FalGenerator) await(ctx context.Context, requestID, statusURL string, onUpdate func(Update)) error {
	log := log.FromContextOrDiscard(ctx).WithGroup("fal").With("request_id", requestID)
	u, err := url.Parse(statusURL)
	if err != nil {
		return fmt.Errorf("parse status url: %w", err)
	}
	q := u.Query()
	q.Set("logs", "1")
	u.RawQuery = q.Encode()

	interval := g.PollInterval
	if interval <= 0 {
		interval = time.Second
	}
	limiter := rate.NewLimiter(rate.Every(interval), 1)

	seen := 0
	for {
		if err := limiter.Wait(ctx); err != nil {
			return err
		}

		var status queueStatus
		if err := g.do(ctx, http.MethodGet, u.String(), nil, &status); err != nil {
			return err
		}

		switch status.Status {
		case StatusInQueue, StatusInProgress, StatusCompleted:
		default:
			log.Warn("unknown job status, still polling", "status", status.Status)
		}

		update := Update{RequestID: requestID, Status: status.Status}
		if status.Status == StatusInProgress && len(status.Logs) > seen {
			for _, l := range status.Logs[seen:] {
				update.Logs = append(update.Logs, l.Message)
			}
			seen = len(status.Logs)
		}
		onUpdate(update)

		if status.Status == StatusCompleted {
			return nil
		}
	}
}

func (g *FalGenerator) do(ctx context.Context, method, endpoint string, body []byte, out any) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Key "+g.Key)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	client := g.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("fal.ai %s %s: %w", method, endpoint, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &ProviderError{StatusCode: resp.StatusCode, Detail: errorDetail(data)}
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode fal.ai response: %w", err)
	}
	return nil
}

// errorDetail extracts the provider's "detail" field, which is either a
// string or a list of validation objects. Unknown shapes fall back to the
// raw body.
func errorDetail(body []byte) string {
	var payload struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || len(payload.Detail) == 0 {
		return strings.TrimSpace(string(body))
	}
	var s string
	if err := json.Unmarshal(payload.Detail, &s); err == nil {
		return s
	}
	return string(payload.Detail)
}

func splitOutput(raw map[string]any) Output {
	out := Output{Metadata: map[string]any{}}
	for k, v := range raw {
		if k != "images" {
			out.Metadata[k] = v
		}
	}
	images, _ := raw["images"].([]any)
	for _, img := range images {
		if m, ok := img.(map[string]any); ok {
			out.Images = append(out.Images, m)
		}
	}
	return out
}
