// Package telemetry provides observability instrumentation for deckfiber.
//
// The telemetry package integrates structured logging (zerolog), distributed tracing
// (OpenTelemetry), metrics (Prometheus), and event publishing into a unified system
// for monitoring mount roots and their commits.
//
// # Architecture
//
// The telemetry system is built on four pillars:
//
//  1. Structured Logging - Context-aware logging with zerolog
//  2. Distributed Tracing - OpenTelemetry traces with stdout and OTLP exporters
//  3. Metrics Collection - Prometheus metrics for commits, instances and roots
//  4. Event Publishing - Event stream of root lifecycle and commits
//
// # Usage
//
// Initialize telemetry at application startup and carry it in the context:
//
//	tel, err := telemetry.NewTelemetry(telemetry.DefaultConfig())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer tel.Shutdown(context.Background())
//
//	ctx = tel.WithContext(ctx)
//
// Code running below an entry point reads it back:
//
//	telemetry.FromContext(ctx).WithRootID(id).Info("Root configured")
//	telemetry.MetricsFrom(ctx).RecordInstance("ArcLayer", "create")
//
// MetricsFrom and EventsFrom return nil without telemetry in the context;
// their methods accept a nil receiver, so callers need no checks.
//
// # Metrics
//
//   - deckfiber_commits_total{status}
//   - deckfiber_commit_duration_seconds{status}
//   - deckfiber_committed_objects{root_id,category}
//   - deckfiber_instances_total{class,operation}
//   - deckfiber_renders_discarded_total{reason}
//   - deckfiber_errors_by_class_total{class}, deckfiber_errors_by_code_total{code}
//   - deckfiber_active_roots, deckfiber_engine_finalizations_total
//
// # Events
//
// root.configured, commit.applied, commit.failed, render.discarded and
// root.unmounted are published for every root. Subscribe with a filter:
//
//	tel.Events.Subscribe(handler, telemetry.FilterByType(telemetry.EventTypeCommitApplied))
package telemetry
