// Package writer serialises every mutation of the local data layer.
//
// All ledgers follow read-modify-write: load a whole slot, change it in
// memory, save it back. Two such sequences running at once would lose one
// of the updates. The Writer removes that hazard by running every
// mutation job, for every slot, on a single goroutine in FIFO order.
//
// Thread-safety model:
//   - Do(): safe from any goroutine; blocks until the job has run
//   - Run(): must be called from exactly one goroutine
//   - Readers never go through the Writer; a save swaps the whole slot
//     document, so a read always sees one complete revision.
//
// A job must not call Do itself: the loop is busy running it, so the
// nested job would never start.
package writer
