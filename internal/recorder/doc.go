// Package recorder turns circuits and event logs into executions and
// persists them.
//
// Building an execution (extraction, graph construction, digests) runs on
// the caller's goroutine, so concurrent callers never wait on each other.
// Persistence is queued: a single writer loop started with Run drains the
// queue and saves one execution at a time. Every submitted execution gets
// its own Task carrying its own context; cancelling that context abandons
// the write without affecting other tasks. Failed writes are never
// retried.
package recorder
