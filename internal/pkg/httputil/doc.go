// Package httputil writes the engine's JSON response envelopes. API
// handlers delegate here so success payloads and error bodies stay uniform
// across the surface.
package httputil
