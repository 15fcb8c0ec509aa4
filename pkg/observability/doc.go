/*
Package observability exposes Prometheus metrics for annotation tables and the engine.

Metrics plugs into the existing hook points rather than wrapping components:
GroupHooks feeds annotation.WithHooks and EngineHooks feeds runtime.WithLifecycleHooks.
*/
package observability
