// Package observability provides OpenTelemetry metric instruments for the
// sortstep engine and a Prometheus scrape endpoint backed by them.
//
// All recording methods are safe on a nil receiver, so the engine can run
// without metrics at zero cost beyond a nil check.
package observability
