// Package preview serves a live browser view of a vrt App.
//
//	GET /          page with the current HTML and a small relay script
//	GET /ws        websocket: pushes {"html": ...} after every flush and
//	               accepts {"path": [0, 2], "event": "click"}
//	GET /snapshot  the current HTML of the root container
//	GET /metrics   Prometheus metrics, when the App records them
//
// Only the newest HTML is queued per connection, so a slow browser skips
// intermediate states instead of falling behind.
package preview
