// Package metrics exposes Prometheus collectors for protect decisions:
// decision counts by conclusion, block-cache hits, and Protect latency.
package metrics
