package services

import (
	"context"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/soochol/workbench/internal/workbench/ports"
)

// RetryPolicy controls how often a failed executor call is repeated.
type RetryPolicy struct {
	MaxRetries    int
	InitialDelay  time.Duration
	MaxDelay      time.Duration
	BackoffFactor float64
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries:    2,
		InitialDelay:  time.Second,
		MaxDelay:      30 * time.Second,
		BackoffFactor: 2.0,
	}
}

var _ ports.ProcessExecutor = (*RetryExecutor)(nil)

// RetryExecutor repeats transient executor failures with exponential backoff.
type RetryExecutor struct {
	inner  ports.ProcessExecutor
	policy RetryPolicy
}

func NewRetryExecutor(inner ports.ProcessExecutor, policy RetryPolicy) *RetryExecutor {
	return &RetryExecutor{inner: inner, policy: policy}
}

func (r *RetryExecutor) Start(ctx context.Context, processID string) (string, error) {
	for attempt := 0; ; attempt++ {
		executionID, err := r.inner.Start(ctx, processID)
		if err == nil {
			return executionID, nil
		}
		if !isRetryable(err) || attempt >= r.policy.MaxRetries || ctx.Err() != nil {
			return "", err
		}
		slog.Warn("executor: start failed, retrying", "process", processID, "attempt", attempt+1, "err", err)
		if !sleepWithBackoff(ctx, r.policy, attempt) {
			return "", ctx.Err()
		}
	}
}

// sleepWithBackoff waits for the backoff delay. It returns false if ctx ends first.
func sleepWithBackoff(ctx context.Context, policy RetryPolicy, attempt int) bool {
	timer := time.NewTimer(calculateBackoff(policy, attempt))
	defer timer.Stop()

	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}

func calculateBackoff(policy RetryPolicy, attempt int) time.Duration {
	delay := float64(policy.InitialDelay) * math.Pow(policy.BackoffFactor, float64(attempt))
	if time.Duration(delay) > policy.MaxDelay {
		return policy.MaxDelay
	}
	return time.Duration(delay)
}

func isRetryable(err error) bool {
	return isRetryableMsg(err.Error())
}

// isRetryableMsg reports whether an executor error looks transient.
func isRetryableMsg(msg string) bool {
	lower := strings.ToLower(msg)
	for _, pattern := range []string{
		"timeout", "too many requests",
		"returned 429", "returned 502", "returned 503", "returned 504",
		"connection reset", "connection refused", "eof",
	} {
		if strings.Contains(lower, pattern) {
			return true
		}
	}
	return false
}
