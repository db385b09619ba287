// Package server wires the HTTP surface of the proxy: the status and
// rotation endpoints, health and metrics, the HTTP relay under the upstream
// API prefix, and the WebSocket relay that intercepts upgrade requests on
// any path.
package server
