/*
Package session implements per-thread serialisation and persistence orchestration.

A conversation is single-threaded: a new inbound message is not processed until the previous
turn has settled. The Manager enforces this with a reference-counted mutex per thread ID and,
when several replicas share a store, an optional distributed lock.
*/
package session
