package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/leofalp/nextpress/core/cost"
	"github.com/leofalp/nextpress/core/engagement"
	"github.com/leofalp/nextpress/core/overview"
	"github.com/leofalp/nextpress/core/retry"
	"github.com/leofalp/nextpress/core/structured"
)

// maxLineBytes bounds one JSONL input line.
const maxLineBytes = 1 << 20

type batchItem struct {
	Index  int                            `json:"index"`
	Result *engagement.OptimizationResult `json:"result,omitempty"`
	Error  *batchError                    `json:"error,omitempty"`
	Usage  *overview.Snapshot             `json:"usage,omitempty"`
}

type batchError struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

func newBatchError(err error) *batchError {
	kind := structured.Kind(err)
	if kind == "" {
		kind = "internal"
	}
	return &batchError{Kind: kind, Message: err.Error()}
}

func newBatchCmd(a *app) *cobra.Command {
	var (
		concurrency int
		timeout     time.Duration
		retries     int
	)

	cmd := &cobra.Command{
		Use:   "batch <requests.jsonl>",
		Short: "Optimize many pieces of content concurrently",
		Long: `Reads one JSON request per line ({"content","targetAudience",
"engagementGoal","stylePreferences"}), optimizes each independently and
writes one JSON line per request, in input order:

  {"index":0,"result":{...}}
  {"index":1,"error":{"kind":"validation","message":"..."}}

A failed item never stops the others. The command fails when any item did.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if concurrency < 1 {
				return fmt.Errorf("concurrency must be at least 1, got %d", concurrency)
			}

			in, err := openInput(cmd, args[0])
			if err != nil {
				return err
			}
			defer in.Close()

			var lines []string
			scanner := bufio.NewScanner(in)
			scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
			for scanner.Scan() {
				if line := strings.TrimSpace(scanner.Text()); line != "" {
					lines = append(lines, line)
				}
			}
			if err := scanner.Err(); err != nil {
				return fmt.Errorf("failed to read requests: %w", err)
			}

			opt, err := a.optimizer(nil)
			if err != nil {
				return err
			}

			items := runBatch(cmd.Context(), opt, lines, concurrency, timeout, a.retryPolicy(retries), a.cfg.Provider.ModelCost())

			failed := 0
			for _, item := range items {
				if item.Error != nil {
					failed++
				}
				if err := writeJSONLine(cmd.OutOrStdout(), item); err != nil {
					return err
				}
			}

			a.logger.Info("batch completed",
				slog.Int("total", len(items)),
				slog.Int("failed", failed),
			)
			if failed > 0 {
				return fmt.Errorf("%d of %d requests failed", failed, len(items))
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&concurrency, "concurrency", 4, "maximum optimizations in flight")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "deadline per request, retries included (0 means none)")
	cmd.Flags().IntVar(&retries, "retries", 0, "extra attempts per request after a failed model invocation")
	return cmd
}

// runBatch optimizes every line with at most concurrency calls in flight.
// The returned items are in input order.
func runBatch(ctx context.Context, opt *engagement.Optimizer, lines []string, concurrency int, timeout time.Duration, policy retry.Policy, price cost.ModelCost) []batchItem {
	items := make([]batchItem, len(lines))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, line := range lines {
		items[i].Index = i
		g.Go(func() error {
			var req engagement.OptimizationRequest
			if err := json.Unmarshal([]byte(line), &req); err != nil {
				items[i].Error = &batchError{Kind: "bad_request", Message: "malformed JSON request: " + err.Error()}
				return nil
			}

			ov := overview.New(price)
			defer func() { items[i].Usage = usageOf(ov) }()

			itemCtx := ov.ToContext(ctx)
			if timeout > 0 {
				var cancel context.CancelFunc
				itemCtx, cancel = context.WithTimeout(itemCtx, timeout)
				defer cancel()
			}

			result, err := optimizeWithRetry(itemCtx, opt, req, policy)
			if err != nil {
				items[i].Error = newBatchError(err)
				return nil
			}
			items[i].Result = result
			return nil
		})
	}
	_ = g.Wait()
	return items
}
