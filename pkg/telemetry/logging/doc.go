// Package logging provides structured logging with credential redaction.
//
// # Overview
//
// The package wraps log/slog with:
//   - JSON, text, and colorized console output formats
//   - Credential redaction applied before values reach the handler
//   - Context-aware loggers that pick up call metadata (episode,
//     inference, function, variant, model)
//   - Level parsing from configuration strings
//
// # Usage
//
//	logger, err := logging.New(logging.Config{
//	    Level:  "info",
//	    Format: "console",
//	    Redact: true,
//	})
//	if err != nil {
//	    return err
//	}
//
//	logger.Info("inference complete",
//	    "function", "extract_entities",
//	    "api_key", "sk-abc123xyz", // masked before output
//	    "duration_ms", 840,
//	)
//
// Pass the underlying slog.Logger to APIs that take one:
//
//	client, err := gateway.NewClient(gateway.Config{
//	    BaseURL: "http://localhost:3000",
//	    Logger:  logger.Slog(),
//	})
//
// # Redaction
//
// With Redact enabled, a handler middleware masks credentials wherever
// they appear: values under sensitive keys (api_key, token, secret, ...)
// keep a four-character prefix, and credential-shaped substrings inside
// other strings (sk- keys, bearer tokens, key=value secret pairs) are
// replaced with [REDACTED]. Loggers derived with With or obtained from
// Slog keep redacting.
//
// # Context fields
//
//	ctx = logging.WithEpisodeID(ctx, episodeID)
//	logger.WithContext(ctx).Info("sending feedback") // includes episode_id
package logging
