package worker

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
)

// processSequential analyzes inputs one at a time.
func processSequential(ctx context.Context, svc Service, opts Options) ([]Result, error) {
	results := make([]Result, 0, len(opts.Inputs))

	for i, input := range opts.Inputs {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		slog.Info("analyzing file",
			"file", fmt.Sprintf("%d/%d", i+1, len(opts.Inputs)),
			"name", filepath.Base(input))

		res, err := processWithRetry(ctx, svc, input, opts)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filepath.Base(input), err)
		}
		results = append(results, res)

		slog.Info("file completed", "file", fmt.Sprintf("%d/%d", i+1, len(opts.Inputs)))
	}

	return results, nil
}
