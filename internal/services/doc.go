// Package services defines shared utilities consumed by the ingestion pipeline,
// the HTTP API, and the CLI.
//
// Key responsibilities:
//   - Context helpers that stamp animation IDs, operation names, and
//     correlation identifiers for logging.
//   - Structured error markers plus the Wrap helper that classify failures
//     into input, not-found, forbidden, and persistence categories, and the
//     HTTPStatus mapping the API uses to report them.
//
// Use these helpers when wiring new handlers so error reporting and
// observability stay uniform across the service.
package services
