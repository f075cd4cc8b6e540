package dict

import "math/bits"

// Scan incrementally walks the whole table using a stateless cursor. Start
// with cursor 0, pass each returned cursor to the next call; the walk is
// complete when 0 comes back. Every call visits all entries of the
// bucket(s) the cursor addresses and invokes fn for each.
//
// The cursor counts with its bits reversed, so the high-order bits vary
// fastest. Bucket addressing uses the low bits of the hash, which makes
// visited and unvisited index ranges stay disjoint when the table grows or
// shrinks by a power of two between calls: a walk driven to completion
// visits every key present for its whole duration at least once, and never
// restarts after a resize. Keys may be visited more than once across a
// resize, and keys added or removed mid-walk may or may not be seen.
//
// While a rehash is in progress a call visits the addressed bucket of the
// smaller table and then every bucket of the larger table whose index
// expands it. Rehashing is paused for the duration of the call, so a
// resize-triggering mutation inside fn cannot move entries mid-visit.
func (d *Dict[K, V]) Scan(cursor uint64, fn func(e *Entry[K, V])) uint64 {
	if d.Len() == 0 {
		return 0
	}

	d.pauseRehashing()
	defer d.resumeRehashing()

	if !d.IsRehashing() {
		t0 := &d.ht[0]
		m0 := t0.mask
		emitChain(t0.buckets[cursor&m0], fn)

		// Set the bits above the mask so the reversed increment carries
		// through the masked ones only.
		cursor |= ^m0
		cursor = bits.Reverse64(bits.Reverse64(cursor) + 1)
		return cursor
	}

	t0, t1 := &d.ht[0], &d.ht[1]
	if len(t0.buckets) > len(t1.buckets) {
		t0, t1 = t1, t0
	}
	m0, m1 := t0.mask, t1.mask

	emitChain(t0.buckets[cursor&m0], fn)

	// Visit the larger-table indexes that expand the smaller-table index
	// just emitted, until the bits covered by the mask difference wrap.
	for {
		emitChain(t1.buckets[cursor&m1], fn)

		cursor |= ^m1
		cursor = bits.Reverse64(bits.Reverse64(cursor) + 1)

		if cursor&(m0^m1) == 0 {
			break
		}
	}
	return cursor
}

// emitChain hands every entry of one chain to fn, resolving each successor
// before the callback so fn may delete the entry it was given.
func emitChain[K comparable, V any](e *Entry[K, V], fn func(e *Entry[K, V])) {
	for e != nil {
		next := e.next
		fn(e)
		e = next
	}
}
