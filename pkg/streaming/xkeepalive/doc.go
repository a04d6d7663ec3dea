// Package xkeepalive relays a [xqueryadmit.ResultHandle] to a stream of
// [Item] values: the eventual terminal payload, plus periodic heartbeats
// while the caller waits, so a long-running query keeps its HTTP
// connection alive against idle-timeout proxies.
//
// The heartbeat path is a single-slot collapsing buffer, not a queue: if
// the consumer hasn't drained the previous heartbeat yet, a new one
// replaces it rather than backing up behind it. Heartbeats are therefore
// advisory and lossy by design; the terminal item is not.
package xkeepalive
