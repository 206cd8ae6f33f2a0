// Package server exposes the layout pipeline over HTTP.
//
// # Routes
//
//	GET  /healthz                 liveness probe
//	GET  /diagrams/{id}/layout    laid-out diagram as JSON
//	GET  /diagrams/{id}.{ext}     rendered diagram (svg, dot, png, json)
//	POST /layout                  lay out the diagram in the request body
//	GET  /stats                   latest polled system statistics
//
// Layout and render options are read from the query string: direction,
// rank_sep, node_sep, legend, title, summary, detailed and refresh.
//
// Errors are returned as JSON with the status taken from the error code, so
// a diagram with a dangling edge reference answers 422 and an unknown
// workflow answers 404.
package server
