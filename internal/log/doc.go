// Package log provides logging with automatic masking of credentials,
// built on the standard slog package.
//
// The crawler's verbose logs include request headers and URLs, both of
// which can carry session cookies, API keys, or auth tokens pulled from
// per-domain configuration. SecureHandler masks those values before they
// reach the underlying handler, so even debug logs are safe to share.
//
// Usage:
//
//	logger := log.NewSecureLogger(os.Stderr, verbose)
//	slog.SetDefault(logger)
package log
