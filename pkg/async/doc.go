// Package async provides a small generic Future type for running a
// computation in its own goroutine and waiting for its result.
//
// Async starts the supplied function and immediately returns a *Future.
// The caller waits with Await, bounds the wait with AwaitWithTimeout, or
// polls with IsComplete. If the context is cancelled before the goroutine
// starts, the Future completes with the context error.
//
//	candidate := async.Async(ctx, candidateID, notifyParty)
//	employer := async.Async(ctx, employerID, notifyParty)
//
//	_, candErr := candidate.Await()
//	_, emplErr := employer.Await()
package async
