// Package metrics provides the observability hooks for bundle builds.
//
// Components receive a Recorder through dependency injection and default to
// NoopRecorder, so no nil checks are needed at call sites:
//
//	b := pipeline.NewBuilder(cfg) // NoopRecorder
//	b.WithRecorder(metrics.NewPrometheusRecorder(reg))
//
// A one-shot build exports its registry through WriteTextfile for the node
// exporter textfile collector; watch mode can serve it over HTTP instead.
package metrics
