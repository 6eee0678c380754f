// Package server provides HTTP routing, middleware, and the JSON API binding
// for the task engine.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first),
// following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally with
// method filtering.
//
// # Task API
//
// [TaskHandler] implements the [Handler] interface and exposes the engine's
// operation set under /api/tasks. Handlers do no decision-making of their
// own: they decode the request, hand it to tasks.TaskService, and map typed
// engine failures onto HTTP status codes.
//
// The caller's identity arrives pre-resolved in the X-Actor-Id and
// X-Actor-Role headers; authentication itself lives outside this service.
//
// # Middleware
//
// [RequestLogger] logs method, path, status, and duration for every request.
// [RateLimit] applies a token-bucket limit (golang.org/x/time/rate) across
// the whole API surface.
package server
