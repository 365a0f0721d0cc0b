package fal

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/nguyentranbao-ct/swipe-preview/internal/config"
	log "github.com/nguyentranbao-ct/swipe-preview/pkg/logger/logctx"
	"github.com/nguyentranbao-ct/swipe-preview/pkg/util"
	"github.com/tidwall/gjson"
)

// Queue statuses reported by the status endpoint.
const (
	StatusInQueue    = "IN_QUEUE"
	StatusInProgress = "IN_PROGRESS"
	StatusCompleted  = "COMPLETED"
)

// Client calls fal.ai model endpoints. Results are returned as raw JSON so
// callers pick the fields their model produces.
type Client interface {
	// Run calls the synchronous endpoint and waits for the result.
	Run(ctx context.Context, model string, input any) (gjson.Result, error)
	// Subscribe submits to the queue and polls until the request completes.
	// Intermediate statuses and logs are only logged.
	Subscribe(ctx context.Context, model string, input any) (gjson.Result, error)
}

type client struct {
	http         *resty.Client
	runURL       string
	queueURL     string
	key          string
	pollInterval time.Duration
}

func NewClient(cfg *config.Config) Client {
	pollInterval := cfg.Fal.PollInterval
	if pollInterval <= 0 {
		pollInterval = 2 * time.Second
	}
	return &client{
		http:         util.NewRestyClient(cfg.Fal.Timeout),
		runURL:       strings.TrimRight(cfg.Fal.RunURL, "/"),
		queueURL:     strings.TrimRight(cfg.Fal.QueueURL, "/"),
		key:          cfg.Fal.Key,
		pollInterval: pollInterval,
	}
}

type queueSubmission struct {
	RequestID   string `json:"request_id"`
	StatusURL   string `json:"status_url"`
	ResponseURL string `json:"response_url"`
}

func (c *client) request(ctx context.Context) *resty.Request {
	return c.http.R().
		SetContext(ctx).
		SetHeader("Authorization", "Key "+c.key)
}

func (c *client) Run(ctx context.Context, model string, input any) (gjson.Result, error) {
	resp, err := c.request(ctx).
		SetBody(input).
		Post(c.runURL + "/" + model)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("run %s: %w", model, err)
	}
	return parse(model, resp)
}

func (c *client) Subscribe(ctx context.Context, model string, input any) (gjson.Result, error) {
	var sub queueSubmission
	resp, err := c.request(ctx).
		SetBody(input).
		SetResult(&sub).
		Post(c.queueURL + "/" + model)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("submit %s: %w", model, err)
	}
	if _, err := parse(model, resp); err != nil {
		return gjson.Result{}, err
	}
	if sub.RequestID == "" {
		return gjson.Result{}, fmt.Errorf("submit %s: response has no request_id", model)
	}
	if sub.StatusURL == "" {
		sub.StatusURL = fmt.Sprintf("%s/%s/requests/%s/status", c.queueURL, model, sub.RequestID)
	}
	if sub.ResponseURL == "" {
		sub.ResponseURL = fmt.Sprintf("%s/%s/requests/%s", c.queueURL, model, sub.RequestID)
	}

	log.Infow(ctx, "fal request queued", "model", model, "request_id", sub.RequestID)
	if err := c.waitCompleted(ctx, model, sub); err != nil {
		return gjson.Result{}, err
	}

	resp, err = c.request(ctx).Get(sub.ResponseURL)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("fetch result %s: %w", sub.RequestID, err)
	}
	return parse(model, resp)
}

func (c *client) waitCompleted(ctx context.Context, model string, sub queueSubmission) error {
	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	seenLogs := 0
	for {
		resp, err := c.request(ctx).
			SetQueryParam("logs", "1").
			Get(sub.StatusURL)
		if err != nil {
			return fmt.Errorf("poll status %s: %w", sub.RequestID, err)
		}
		body, err := parse(model, resp)
		if err != nil {
			return err
		}

		status := body.Get("status").String()
		logs := body.Get("logs.#.message").Array()
		for _, line := range logs[min(seenLogs, len(logs)):] {
			log.Debugw(ctx, "fal progress", "request_id", sub.RequestID, "message", line.String())
		}
		seenLogs = max(seenLogs, len(logs))

		switch status {
		case StatusCompleted:
			if e := body.Get("error"); e.Exists() && e.String() != "" {
				return fmt.Errorf("request %s failed: %s", sub.RequestID, e.String())
			}
			return nil
		case StatusInQueue, StatusInProgress:
			log.Debugw(ctx, "fal request pending",
				"request_id", sub.RequestID,
				"status", status,
				"queue_position", body.Get("queue_position").Int())
		default:
			return fmt.Errorf("request %s: unexpected status %q", sub.RequestID, status)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func parse(model string, resp *resty.Response) (gjson.Result, error) {
	body := resp.Body()
	if resp.StatusCode() < http.StatusOK || resp.StatusCode() >= http.StatusMultipleChoices {
		detail := gjson.GetBytes(body, "detail").String()
		if detail == "" {
			detail = strings.TrimSpace(string(body))
		}
		return gjson.Result{}, fmt.Errorf("%s returned status %d: %s", model, resp.StatusCode(), detail)
	}
	if !gjson.ValidBytes(body) {
		return gjson.Result{}, fmt.Errorf("%s returned invalid json", model)
	}
	return gjson.ParseBytes(body), nil
}
