// Package httpapi exposes the question-answering agent over HTTP.
//
// Endpoints:
//
//	POST /api/ask        complete answer with retrieval evidence
//	POST /api/ask/stream answer as server-sent events
//	POST /api/ai/summary structured daily summary for one date
//	POST /api/ai/blog    blog post covering a date range
//	POST /api/ai/skills  skill-tree update proposals for a date range
//	POST /api/ai/title   short title for a conversation opener
//	GET  /api/health     liveness and corpus size
//
// The stream endpoint emits a metadata event first (intent and retrieved
// log count), then content events with answer fragments, and closes with a
// [DONE] sentinel. Client disconnects cancel generation through the
// request context.
package httpapi
