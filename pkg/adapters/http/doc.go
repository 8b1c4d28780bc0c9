// Package http exposes automata and stepwise sessions over a JSON API
// routed with chi. Session steps are also streamed to SSE subscribers, and
// Prometheus metrics are served on /metrics when a gatherer is configured.
package http
