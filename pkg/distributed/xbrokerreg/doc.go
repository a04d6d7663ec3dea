// Package xbrokerreg maps a database id to its [xsemaphore.Broker],
// creating one lazily on first use and never removing it for the lifetime
// of the process.
//
// # Construction race
//
// BrokerFor uses the double-checked sync.Map idiom: it attempts a plain
// Load first, and only on a miss constructs a candidate broker and calls
// LoadOrStore. If a concurrent caller's candidate won the race, the loser's
// candidate is Close()'d immediately so its retire-loop goroutine and
// channels don't leak; the winner is returned to both callers. This means
// two goroutines racing to create the broker for the same, previously
// unseen database id can each construct a Broker, but only one of them is
// ever observed by the rest of the program.
//
// # Capacity is fixed at first creation
//
// Registry reads the per-database capacity from xconf once, the first time
// a database id is seen. A later configuration change does not resize
// brokers that already exist — this is a documented limitation, not an
// oversight (see DESIGN.md).
package xbrokerreg
