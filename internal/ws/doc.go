// Package ws implements the WebSocket report stream for riskdash-server.
//
// New(build, interval) creates a Hub. Hub.Run(ctx) assembles a report every
// interval, hands it to the OnReport hook (the server evaluates alert rules
// there) and broadcasts it to every connected client. Hub.ServeHTTP upgrades
// a request, sends a fresh report right away, then streams each tick.
//
// Message format sent to clients:
//
//	{
//	  "event":   "report",
//	  "summary": { /* same schema as GET /api/v1/summary */ },
//	  "data":    { /* same schema as GET /api/v1/report */ }
//	}
//
// Clients whose send buffer fills up are dropped. The upgrader accepts all
// origins; restrict them at the reverse proxy. The server mounts the hub at
// /ws/stream behind the auth gate.
package ws
