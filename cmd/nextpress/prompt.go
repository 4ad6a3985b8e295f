package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leofalp/nextpress/core/engagement"
	"github.com/leofalp/nextpress/internal/jsonschema"
)

var errOffline = errors.New("the prompt command never calls a model")

// offlineInvoker lets an Optimizer render prompts without a provider.
type offlineInvoker struct{}

func (offlineInvoker) Invoke(context.Context, string, *jsonschema.Schema) (string, error) {
	return "", errOffline
}

func newPromptCmd(a *app) *cobra.Command {
	var (
		req        requestFlags
		withSchema bool
	)

	cmd := &cobra.Command{
		Use:   "prompt [file]",
		Short: "Print the prompt optimize would send, without calling the model",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			request, _, err := req.request(cmd, args)
			if err != nil {
				return err
			}

			opt, err := engagement.NewOptimizer(offlineInvoker{}, engagement.WithLogger(a.logger))
			if err != nil {
				return err
			}

			text, err := opt.RenderPrompt(request)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), text)

			if withSchema {
				schema, err := opt.OutputSchema().JsonString(true)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout())
				fmt.Fprintln(cmd.OutOrStdout(), schema)
			}
			return nil
		},
	}

	req.register(cmd)
	cmd.Flags().BoolVar(&withSchema, "schema", false, "also print the output JSON schema")
	return cmd
}
