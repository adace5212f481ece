// Package api implements the HTTP REST API for riskdash.
//
// New(builder, alerts, gate) returns a Handler that serves:
//
//	GET /api/v1/health              status and registry size (no auth)
//	GET /api/v1/summary             total, critical, high and per-level counts
//	GET /api/v1/components          scored components, highest risk first
//	GET /api/v1/components/{name}   score, factor breakdown, hints, timeline
//	GET /api/v1/report              full ranked report with timelines
//	GET /api/v1/simulate            ad-hoc timeline for ?base_months=&trials=
//	GET /api/v1/alerts              firing and recently resolved alerts
//
// Every route except health sits behind the auth gate; Handle mounts further
// gated routes such as /metrics and /ws/stream. Non-GET methods get 405 and
// unknown paths 404, both as JSON. JSON types are defined in types.go.
package api
