package pipeline

import (
	"context"
	"fmt"
	"runtime"

	"github.com/mchmarny/kinfeat/pkg/passenger"
	"golang.org/x/sync/errgroup"
)

// FileResult is the outcome of processing one input file.
type FileResult struct {
	Input  string  `json:"input" yaml:"input"`
	Result *Result `json:"result" yaml:"result"`
}

// RunFiles reads and processes each input file independently and
// concurrently. Results are returned in input order; the first error
// cancels the remaining files.
func RunFiles(ctx context.Context, inputs []string, ro passenger.ReadOptions, o Options) ([]*FileResult, error) {
	if len(inputs) == 0 {
		return nil, fmt.Errorf("no input files")
	}
	if err := o.Validate(); err != nil {
		return nil, err
	}

	list := make([]*FileResult, len(inputs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())

	for i, input := range inputs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			t, err := passenger.ReadFile(input, ro)
			if err != nil {
				return err
			}

			res, err := Run(t, o)
			if err != nil {
				return fmt.Errorf("processing %s: %w", input, err)
			}

			list[i] = &FileResult{Input: input, Result: res}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return list, nil
}
