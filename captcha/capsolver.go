package captcha

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

const (
	capsolverAPI     = "https://api.capsolver.com"
	pollInterval     = 3 * time.Second
	solveTimeout     = 120 * time.Second
	balanceWarnLevel = 5.0 // warn when balance drops below $5
)

// Capsolver implements Solver using the Capsolver API. It uses a plain
// net/http client: the solver endpoint must not share the fingerprinted
// transport used against the platform.
type Capsolver struct {
	apiKey string
	client *http.Client
}

// NewCapsolver creates a Capsolver client with the given API key.
func NewCapsolver(apiKey string) *Capsolver {
	return &Capsolver{
		apiKey: apiKey,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

type taskStatus struct {
	ErrorID          int    `json:"errorId"`
	ErrorCode        string `json:"errorCode"`
	ErrorDescription string `json:"errorDescription"`
	TaskID           string `json:"taskId"`
	Status           string `json:"status"`
	Solution         struct {
		Token string `json:"token"`
	} `json:"solution"`
}

func (ts *taskStatus) err() error {
	if ts.ErrorID == 0 {
		return nil
	}
	return fmt.Errorf("capsolver error %s: %s", ts.ErrorCode, ts.ErrorDescription)
}

// Solve submits a FunCaptcha (Arkose Labs) challenge to Capsolver and
// polls for the result.
func (c *Capsolver) Solve(ctx context.Context, siteKey, pageURL string) (string, error) {
	if bal, err := c.Balance(ctx); err == nil && bal < balanceWarnLevel {
		slog.Warn("Capsolver balance low", slog.Float64("balance", bal))
	}

	var created taskStatus
	err := c.post(ctx, "/createTask", map[string]any{
		"clientKey": c.apiKey,
		"task": map[string]any{
			"type":             "FunCaptchaTaskProxyLess",
			"websiteURL":       pageURL,
			"websitePublicKey": siteKey,
		},
	}, &created)
	if err != nil {
		return "", fmt.Errorf("capsolver createTask: %w", err)
	}
	if err := created.err(); err != nil {
		return "", err
	}
	if created.TaskID == "" {
		return "", fmt.Errorf("capsolver: empty taskId in response")
	}

	slog.Info("CAPTCHA task created", slog.String("taskId", created.TaskID))
	return c.pollResult(ctx, created.TaskID)
}

// pollResult polls getTaskResult until the task is ready or times out.
func (c *Capsolver) pollResult(ctx context.Context, taskID string) (string, error) {
	deadline := time.Now().Add(solveTimeout)
	req := map[string]any{
		"clientKey": c.apiKey,
		"taskId":    taskID,
	}

	for {
		if time.Now().After(deadline) {
			return "", fmt.Errorf("capsolver: solve timeout after %s", solveTimeout)
		}

		var result taskStatus
		if err := c.post(ctx, "/getTaskResult", req, &result); err != nil {
			return "", fmt.Errorf("capsolver getTaskResult: %w", err)
		}
		if err := result.err(); err != nil {
			return "", err
		}

		switch result.Status {
		case "ready":
			if result.Solution.Token == "" {
				return "", fmt.Errorf("capsolver: ready but empty token")
			}
			slog.Info("CAPTCHA solved", slog.String("taskId", taskID))
			return result.Solution.Token, nil
		case "processing":
			select {
			case <-time.After(pollInterval):
			case <-ctx.Done():
				return "", ctx.Err()
			}
		default:
			return "", fmt.Errorf("capsolver: unexpected status %q", result.Status)
		}
	}
}

// Balance returns the Capsolver account balance in USD.
func (c *Capsolver) Balance(ctx context.Context) (float64, error) {
	var resp struct {
		ErrorID int     `json:"errorId"`
		Balance float64 `json:"balance"`
	}
	if err := c.post(ctx, "/getBalance", map[string]any{"clientKey": c.apiKey}, &resp); err != nil {
		return 0, err
	}
	if resp.ErrorID != 0 {
		return 0, fmt.Errorf("capsolver balance error %d", resp.ErrorID)
	}
	return resp.Balance, nil
}

// post sends a JSON POST request to the Capsolver API and decodes the
// response.
func (c *Capsolver) post(ctx context.Context, path string, payload, result any) error {
	return c.postURL(ctx, capsolverAPI+path, payload, result)
}

// postURL sends a JSON POST to an arbitrary URL. Split out for tests.
func (c *Capsolver) postURL(ctx context.Context, url string, payload, result any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode != 200 {
		return fmt.Errorf("capsolver HTTP %d: %s", resp.StatusCode, string(data[:min(200, len(data))]))
	}

	return json.Unmarshal(data, result)
}
