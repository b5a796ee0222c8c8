// Package server provides the HTTP front end for stagekit: a Gin engine
// served over HTTP/1.1 and h2c, wrapped as a component so bootstrap can
// start and stop it.
//
// Middleware lives in server/middleware (recovery, request IDs, request
// logging) and handlers in server/endpoint (health, order runs).
package server
