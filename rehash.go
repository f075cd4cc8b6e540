package dict

import "time"

// rehashBatch is the step count per batch of the time-boxed bulk rehash.
const rehashBatch = 100

// Rehash performs up to n incremental migration steps and reports whether
// more work remains. One step moves one populated ht[0] bucket, chain and
// all, into ht[1]; to keep the per-call cost bounded on sparse tables, a
// call gives up after visiting n*10 empty buckets even if no bucket was
// migrated.
//
// Under ResizeForbid no progress is made. Under ResizeAvoid progress is
// made only when the size ratio between the two tables has reached the
// force ratio. Both cases report false even though entries remain, since
// further calls cannot progress until the policy changes.
func (d *Dict[K, V]) Rehash(n int) bool {
	if !d.IsRehashing() || n <= 0 {
		return false
	}

	s0, s1 := uint64(len(d.ht[0].buckets)), uint64(len(d.ht[1].buckets))
	switch d.cfg.mode {
	case ResizeForbid:
		return false
	case ResizeAvoid:
		if (s1 > s0 && s1/s0 < d.cfg.forceRatio) ||
			(s1 < s0 && s0/s1 < d.cfg.forceRatio) {
			return false
		}
	}

	emptyVisits := n * 10
	for ; n > 0 && d.ht[0].used != 0; n-- {
		// used != 0 guarantees a populated bucket at or past the cursor.
		if uint64(d.rehashIdx) >= s0 {
			panic("dict: rehash cursor past end of table")
		}
		for d.ht[0].buckets[d.rehashIdx] == nil {
			d.rehashIdx++
			emptyVisits--
			if emptyVisits == 0 {
				return true
			}
		}
		for e := d.ht[0].buckets[d.rehashIdx]; e != nil; {
			next := e.next
			idx := d.typ.Hash(e.key) & d.ht[1].mask
			e.next = d.ht[1].buckets[idx]
			d.ht[1].buckets[idx] = e
			d.ht[0].used--
			d.ht[1].used++
			e = next
		}
		d.ht[0].buckets[d.rehashIdx] = nil
		d.rehashIdx++
	}

	if d.ht[0].used == 0 {
		d.ht[0] = d.ht[1]
		d.ht[1].reset()
		d.rehashIdx = notRehashing
		return false
	}
	return true
}

// rehashStep runs a single migration step unless rehashing is paused.
// Lookup and mutation entry points call this so an active table migrates
// itself while it is being used.
func (d *Dict[K, V]) rehashStep() {
	if d.pauseRehash == 0 {
		d.Rehash(1)
	}
}

// RehashFor runs batches of migration steps until the rehash completes or
// the budget elapses, returning the number of steps attempted. It is meant
// for background maintenance loops. A paused table does nothing.
func (d *Dict[K, V]) RehashFor(budget time.Duration) int {
	if d.pauseRehash > 0 {
		return 0
	}
	start := time.Now()
	steps := 0
	for d.Rehash(rehashBatch) {
		steps += rehashBatch
		if time.Since(start) > budget {
			break
		}
	}
	return steps
}

// pauseRehashing stops incremental migration until a matching
// resumeRehashing. Pauses nest, supporting nested safe iterators.
func (d *Dict[K, V]) pauseRehashing() { d.pauseRehash++ }

func (d *Dict[K, V]) resumeRehashing() {
	if d.pauseRehash == 0 {
		panic("dict: unbalanced rehash resume")
	}
	d.pauseRehash--
}
