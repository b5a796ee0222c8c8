// Package provider defines the request/response shape of the services a
// pipeline calls.
//
// A RequestResponse[I, O] takes one input and returns one output. NewFunc
// turns a plain function into one, optionally with simulated latency, and
// Adapt converts between a backend's types and the caller's:
//
//	users := provider.NewFunc("users", lookupUser, provider.WithLatency(50*time.Millisecond))
//	stage := pipeline.FromProvider[int, User](users)
package provider
