// Package orders is a small order-placing domain used to exercise the
// pipeline: look up a user, resolve their cart against the catalog, and
// place the order. Everything lives in memory.
package orders
