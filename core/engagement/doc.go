// Package engagement rewrites content for better audience engagement.
//
// [Optimizer.Optimize] takes an [OptimizationRequest], fills in the optional
// audience, goal and style fields, renders the fixed instruction prompt and
// makes exactly one model call through a [structured.Invoker]. The reply must
// decode into an [OptimizationResult] with non-empty optimizedContent and
// explanation and a suggestedStyles array; anything else is an
// [ErrModelOutput] failure.
//
//	c, _ := client.New(provider, client.WithSystemPrompt(engagement.Role))
//	opt, _ := engagement.NewOptimizer(c)
//	res, err := opt.Optimize(ctx, engagement.OptimizationRequest{Content: "Check out our new product launch!"})
//	switch {
//	case errors.Is(err, engagement.ErrValidation): // bad request, nothing was sent
//	case errors.Is(err, engagement.ErrInvocation): // provider or network failure
//	case errors.Is(err, engagement.ErrModelOutput): // the model answered badly
//	}
package engagement
