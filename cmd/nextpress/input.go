package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/leofalp/nextpress/core/engagement"
	"github.com/leofalp/nextpress/internal/markup"
)

// requestFlags are the content flags shared by optimize and prompt.
type requestFlags struct {
	content  string
	audience string
	goal     string
	style    string
	format   string
}

func (f *requestFlags) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVarP(&f.content, "content", "c", "", "content to optimize (otherwise read from the file argument or stdin)")
	flags.StringVarP(&f.audience, "audience", "a", "", "target audience (default \""+engagement.DefaultTargetAudience+"\")")
	flags.StringVarP(&f.goal, "goal", "g", "", "engagement goal (default \""+engagement.DefaultEngagementGoal+"\")")
	flags.StringVarP(&f.style, "style", "s", "", "style preferences or examples of successful content")
	flags.StringVar(&f.format, "format", "markdown", "content markup: markdown or html")
}

// request reads the content and builds the request. HTML content is
// converted to Markdown first.
func (f *requestFlags) request(cmd *cobra.Command, args []string) (engagement.OptimizationRequest, markup.Format, error) {
	format, err := markup.ParseFormat(f.format)
	if err != nil {
		return engagement.OptimizationRequest{}, "", err
	}

	content := f.content
	if content == "" {
		content, err = readContent(cmd, args)
		if err != nil {
			return engagement.OptimizationRequest{}, "", err
		}
	}

	content, err = markup.Normalize(content, format)
	if err != nil {
		return engagement.OptimizationRequest{}, "", err
	}

	return engagement.OptimizationRequest{
		Content:          content,
		TargetAudience:   f.audience,
		EngagementGoal:   f.goal,
		StylePreferences: f.style,
	}, format, nil
}

// readContent reads the file named by args[0], or stdin when there is no
// argument or the argument is "-".
func readContent(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), nil
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", args[0], err)
	}
	return string(data), nil
}

// openInput returns the named file, or stdin for "-".
func openInput(cmd *cobra.Command, path string) (io.ReadCloser, error) {
	if path == "-" {
		return io.NopCloser(cmd.InOrStdin()), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	return f, nil
}
