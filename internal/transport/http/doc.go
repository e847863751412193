// Package http provides the HTTP transport layer for the table
// pipeline.
//
// Handlers are thin: they decode and validate requests, delegate to
// the service layer, and map service errors onto the API error
// vocabulary. A refused export (destination exists, overwrite off)
// maps to 409 Conflict; an unknown clean strategy to 400; a load or
// parse failure to 422.
package http
