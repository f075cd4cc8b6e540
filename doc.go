// Package dict implements the chained hash table underlying an in-memory
// database: amortized O(1) operations, incremental rehashing with bounded
// per-call latency, iteration that stays correct under concurrent mutation,
// and a stateless cursor protocol for exhaustive scans that survive resizes
// mid-walk.
//
// A Dict owns two bucket arrays. Growth allocates the second array and
// migrates chains one bucket at a time, a step per table operation, so no
// caller ever pays for a full rehash in one call. This matters when a
// forked persistence process shares the table's memory copy-on-write: a
// stop-the-world rehash would touch every page at once. The shared Config
// exposes the resize-mode switch (enabled, avoid, forbid) and force ratio
// that persistence code toggles around its own windows, plus the 128-bit
// seed consumed by the SipHash-keyed string hashers.
//
// Tables are parameterized by a Type capability set: hash, equality, key
// and value destructors, optional value duplication and an optional
// allocation-admission check. A nil Type works for any comparable key via
// the runtime hasher.
//
// A Dict supports exactly one active mutator; it performs no internal
// locking. Readers that need a stable view take a safe iterator, which
// pauses rehashing for its lifetime. Scan pauses rehashing per call only
// and tolerates resizes between calls.
package dict
