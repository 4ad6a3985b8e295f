// Package middleware provides built-in middleware for [client.Client]. Each
// constructor returns a [client.Middleware] ready for [client.WithMiddleware].
//
//   - [NewTimeoutMiddleware] bounds a single provider call with context.WithTimeout.
//   - [NewLoggingMiddleware] emits slog entries before and after every provider
//     call, at three verbosity levels.
//
// There is deliberately no retry middleware: a client call maps to exactly one
// provider request. Callers that want retries wrap the whole operation, see
// package retry.
//
//	c, err := client.New(provider,
//	    client.WithMiddleware(
//	        middleware.NewTimeoutMiddleware(30*time.Second),
//	        middleware.NewLoggingMiddleware(slog.Default(), middleware.LogLevelStandard),
//	    ),
//	)
//
// The first middleware given is the outermost: above, the timeout also covers
// the time spent logging.
package middleware
