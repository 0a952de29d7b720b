// Package timeouts defines shared timeout constants used by the server and CLI.
package timeouts

import "time"

// ReadHeader limits how long an HTTP server waits for request headers.
const ReadHeader = 5 * time.Second

// Shutdown limits how long an HTTP server waits for in-flight requests
// during graceful shutdown.
const Shutdown = 5 * time.Second

// Upstream caps a single face-swap provider call. Video generation is slow,
// so this is far above typical API budgets.
const Upstream = 3 * time.Minute

// ClientRequest caps a CLI round trip through the proxy, which includes the
// upstream call.
const ClientRequest = Upstream + 30*time.Second
