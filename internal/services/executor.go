package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/soochol/workbench/internal/workbench/ports"
)

var _ ports.ProcessExecutor = (*HTTPExecutor)(nil)

// HTTPExecutor asks a remote execution service to run a stored process.
type HTTPExecutor struct {
	baseURL string
	client  *http.Client
}

func NewHTTPExecutor(baseURL string, timeout time.Duration) *HTTPExecutor {
	return &HTTPExecutor{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

type executionResponse struct {
	ID string `json:"id"`
}

// Start posts to {base}/processes/{id}/executions and returns the execution ID
// reported by the service.
func (e *HTTPExecutor) Start(ctx context.Context, processID string) (string, error) {
	endpoint := e.baseURL + "/processes/" + url.PathEscape(processID) + "/executions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("executor: create HTTP request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("executor: HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("executor: read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("executor: server returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var out executionResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("executor: unmarshal response: %w", err)
	}
	if out.ID == "" {
		return "", fmt.Errorf("executor: response has no execution id")
	}
	return out.ID, nil
}
