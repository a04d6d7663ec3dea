// Package distributed groups the admission-control building blocks that
// coordinate concurrent access to a shared resource across goroutines in
// this process.
//
// Subpackages:
//   - xsemaphore: in-process counting semaphore (Broker/Permit) with
//     abandoned-permit recovery via runtime.AddCleanup.
//   - xbrokerreg: per-database-id broker registry built on xsemaphore.
package distributed
