// Package resource bounds what concurrent document loads and saves may use:
// cache memory, worker slots and backend bandwidth.
//
// A nil *Controller imposes no limits, so callers can pass one through
// unconditionally.
package resource
