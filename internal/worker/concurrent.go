package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"voiceup/internal/api"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

type indexedResult struct {
	Index  int
	Result Result
}

// processConcurrent analyzes inputs with bounded parallelism and rate limiting.
func processConcurrent(ctx context.Context, svc Service, opts Options) ([]Result, error) {
	slog.Info("starting concurrent analysis",
		"files", len(opts.Inputs),
		"max_concurrent", opts.MaxConcurrent,
		"rate_limit_rpm", opts.RateLimitPerMin)

	limiter := newLimiter(opts.RateLimitPerMin)

	var (
		mu      sync.Mutex
		results []indexedResult
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.MaxConcurrent)

	for i, input := range opts.Inputs {
		g.Go(func() error {
			if err := limiter.Wait(gctx); err != nil {
				return fmt.Errorf("rate limiter: %w", err)
			}

			slog.Info("starting analysis", "file", fmt.Sprintf("%d/%d", i+1, len(opts.Inputs)))

			res, err := processWithRetry(gctx, svc, input, opts)
			if err != nil {
				return fmt.Errorf("%s: %w", filepath.Base(input), err)
			}

			mu.Lock()
			results = append(results, indexedResult{Index: i, Result: res})
			mu.Unlock()

			slog.Info("file completed", "file", fmt.Sprintf("%d/%d", i+1, len(opts.Inputs)))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		mu.Lock()
		completed := len(results)
		mu.Unlock()

		if completed > 0 && ctx.Err() == nil {
			slog.Warn("concurrent analysis partially failed, falling back to sequential",
				"completed", completed, "total", len(opts.Inputs), "err", err)
			return fallbackToSequential(ctx, svc, opts, results)
		}
		return nil, err
	}

	return orderResults(results), nil
}

// newLimiter allows rpm requests per minute. Zero or less disables limiting.
func newLimiter(rpm int) *rate.Limiter {
	if rpm <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Limit(float64(rpm)/60.0), 1)
}

func orderResults(results []indexedResult) []Result {
	sort.Slice(results, func(i, j int) bool {
		return results[i].Index < results[j].Index
	})
	out := make([]Result, len(results))
	for i, r := range results {
		out[i] = r.Result
	}
	return out
}

func fallbackToSequential(ctx context.Context, svc Service, opts Options, completed []indexedResult) ([]Result, error) {
	done := make(map[int]bool)
	for _, r := range completed {
		done[r.Index] = true
	}

	for i, input := range opts.Inputs {
		if done[i] {
			continue
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		slog.Info("sequential fallback analyzing file", "file", fmt.Sprintf("%d/%d", i+1, len(opts.Inputs)))

		res, err := processWithRetry(ctx, svc, input, opts)
		if err != nil {
			return nil, fmt.Errorf("sequential fallback %s: %w", filepath.Base(input), err)
		}
		completed = append(completed, indexedResult{Index: i, Result: res})
	}

	return orderResults(completed), nil
}

// processWithRetry runs processOne up to opts.MaxRetries times with
// exponential backoff. Errors the service would repeat are not retried.
func processWithRetry(ctx context.Context, svc Service, input string, opts Options) (Result, error) {
	var lastErr error
	for attempt := 0; attempt < max(opts.MaxRetries, 1); attempt++ {
		res, err := processOne(ctx, svc, input, opts)
		if err == nil {
			return res, nil
		}
		lastErr = err
		if !retryable(err) || attempt == opts.MaxRetries-1 {
			break
		}

		backoff := time.Duration(1<<uint(attempt)) * time.Second // 1s, 2s, 4s...
		slog.Warn("analysis failed, retrying",
			"file", filepath.Base(input),
			"attempt", attempt+1,
			"backoff", backoff,
			"err", err)

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return Result{}, ctx.Err()
		case <-timer.C:
		}
	}
	return Result{}, lastErr
}

func retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, api.ErrSampleTooShort) {
		return false
	}
	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		return apiErr.Status >= 500 || apiErr.Status == 429
	}
	return true
}
