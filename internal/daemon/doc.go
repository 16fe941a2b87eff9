// Package daemon hosts the scrollreel HTTP API and serves stored frames.
//
// Daemon is the composition root for the server side: it owns the store,
// the blob store, the ingest pipeline, and the anti-forgery signer, and it
// holds a file lock so only one instance runs against a data directory.
// Every /api route passes through request-ID and bearer-token middleware;
// /frames is public so rendered pages can load images.
package daemon
