// Package dev provides the development server and hot reload functionality.
//
// This package implements:
//   - File watching for component sources (fsnotify)
//   - Incremental rebuilds through internal/build
//   - Server-rendered component previews
//   - WebSocket-based browser refresh
//   - Build error banner in browser
//
// # Routes
//
//	GET /                    index of registered components and build failures
//	GET /components/{name}   preview; query parameters become props
//	GET /_wcdk/reload        hot reload WebSocket
//	GET /metrics             Prometheus metrics
//	GET /healthz             liveness
//
// A preview can replay actions before rendering:
//
//	/components/my-counter?start=5&dispatch=increment,increment
//
// # Usage
//
//	srv, err := dev.NewServer(dev.ServerOptions{Config: cfg, Logger: logger})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := srv.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
// # Hot Reload Protocol
//
// The browser connects to /_wcdk/reload via WebSocket.
// Messages are JSON-encoded:
//
//	{"type": "reload"}                // Triggers full page reload
//	{"type": "error", "error": "..."} // Shows the error banner
//	{"type": "clear"}                 // Removes the banner
package dev
