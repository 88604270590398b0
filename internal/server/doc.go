// Package server implements the HTTP surface using the Echo framework.
//
// Routes: the realtime websocket endpoint, the administrative API (status,
// connections, broadcast, job events, debug trace), health probes, and the
// Prometheus scrape endpoint. Handlers split by concern: handlers_ws.go,
// handlers_api.go, handlers_health.go.
package server
