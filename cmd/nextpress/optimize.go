package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/leofalp/nextpress/core/engagement"
	"github.com/leofalp/nextpress/core/overview"
	"github.com/leofalp/nextpress/core/retry"
	"github.com/leofalp/nextpress/internal/markup"
)

// optimizeOutput is the --output json shape.
type optimizeOutput struct {
	Result               *engagement.OptimizationResult `json:"result"`
	OptimizedContentHTML string                         `json:"optimizedContentHtml,omitempty"`
	Usage                *overview.Snapshot             `json:"usage,omitempty"`
}

func newOptimizeCmd(a *app) *cobra.Command {
	var (
		req     requestFlags
		timeout time.Duration
		retries int
		output  string
	)

	cmd := &cobra.Command{
		Use:   "optimize [file]",
		Short: "Optimize one piece of content",
		Long: `Sends the content to the configured model once and prints the optimized
content, the suggested styles and the explanation.

Content comes from --content, the file argument, or stdin ("-" or no
argument). Unset audience, goal and style fall back to their defaults.`,
		Example: `  nextpress optimize --content "Check out our new product launch!" --audience "Tech enthusiasts"
  nextpress optimize post.html --format html --output json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			request, format, err := req.request(cmd, args)
			if err != nil {
				return err
			}
			if output != "text" && output != "json" {
				return fmt.Errorf("unknown output %q (want text or json)", output)
			}

			opt, err := a.optimizer(nil)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}

			ov := overview.New(a.cfg.Provider.ModelCost())
			result, err := optimizeWithRetry(ov.ToContext(ctx), opt, request, a.retryPolicy(retries))
			if err != nil {
				return err
			}

			out := optimizeOutput{Result: result, Usage: usageOf(ov)}
			if out.Usage != nil {
				a.logger.Debug("optimization completed",
					slog.Int("calls", out.Usage.Calls),
					slog.Int("total_tokens", out.Usage.Usage.TotalTokens),
				)
			}
			if format == markup.FormatHTML {
				if out.OptimizedContentHTML, err = markup.ToHTML(result.OptimizedContent); err != nil {
					return err
				}
			}

			if output == "json" {
				return writeJSONLine(cmd.OutOrStdout(), out)
			}
			return writeText(cmd.OutOrStdout(), out)
		},
	}

	req.register(cmd)
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "overall deadline, retries included (0 means none)")
	cmd.Flags().IntVar(&retries, "retries", 0, "extra attempts after a failed model invocation")
	cmd.Flags().StringVarP(&output, "output", "o", "text", "output format: text or json")
	return cmd
}

func (a *app) retryPolicy(retries int) retry.Policy {
	return retry.Policy{MaxRetries: retries, InitialBackoff: a.retryBackoff}
}

func optimizeWithRetry(ctx context.Context, opt *engagement.Optimizer, req engagement.OptimizationRequest, policy retry.Policy) (*engagement.OptimizationResult, error) {
	return retry.Do(ctx, policy, func(ctx context.Context) (*engagement.OptimizationResult, error) {
		return opt.Optimize(ctx, req)
	})
}

// usageOf returns the snapshot of ov, or nil when no provider call went
// through the client.
func usageOf(ov *overview.Overview) *overview.Snapshot {
	s := ov.Snapshot()
	if s.Calls == 0 {
		return nil
	}
	return &s
}

func writeText(w io.Writer, out optimizeOutput) error {
	var b strings.Builder
	b.WriteString("Optimized content:\n")
	if out.OptimizedContentHTML != "" {
		b.WriteString(strings.TrimSpace(out.OptimizedContentHTML))
	} else {
		b.WriteString(out.Result.OptimizedContent)
	}
	b.WriteString("\n\nSuggested styles:\n")
	if len(out.Result.SuggestedStyles) == 0 {
		b.WriteString("  (none)\n")
	}
	for _, style := range out.Result.SuggestedStyles {
		b.WriteString("  - " + style + "\n")
	}
	b.WriteString("\nExplanation:\n")
	b.WriteString(out.Result.Explanation)
	b.WriteString("\n")

	_, err := io.WriteString(w, b.String())
	return err
}

func writeJSONLine(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
