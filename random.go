package dict

import "math/rand/v2"

// fairSamplePool is the pool size FairRandomEntry draws before picking.
const fairSamplePool = 15

// RandomEntry returns a uniformly random non-empty bucket's entry at a
// uniformly random chain position, or nil when the table is empty. Entries
// in longer chains are individually less likely to be picked than entries
// in short ones; FairRandomEntry smooths that bias. Cost is proportional to
// the chain length of the bucket hit.
func (d *Dict[K, V]) RandomEntry() *Entry[K, V] {
	if d.Len() == 0 {
		return nil
	}
	if d.IsRehashing() {
		d.rehashStep()
	}

	var e *Entry[K, V]
	if d.IsRehashing() {
		s0 := uint64(len(d.ht[0].buckets))
		slots := s0 + uint64(len(d.ht[1].buckets))
		// ht[0] buckets below the rehash cursor are known empty.
		for e == nil {
			h := uint64(d.rehashIdx) + rand.Uint64N(slots-uint64(d.rehashIdx))
			if h >= s0 {
				e = d.ht[1].buckets[h-s0]
			} else {
				e = d.ht[0].buckets[h]
			}
		}
	} else {
		for e == nil {
			e = d.ht[0].buckets[rand.Uint64()&d.ht[0].mask]
		}
	}

	chainLen := 0
	for he := e; he != nil; he = he.next {
		chainLen++
	}
	for i := rand.IntN(chainLen); i > 0; i-- {
		e = e.next
	}
	return e
}

// SampleEntries collects up to count entries from random locations, walking
// buckets linearly from a random start. It may return fewer entries than
// requested and repeated calls may return duplicates, but it is much
// cheaper than calling RandomEntry count times. It is suited to sampling
// algorithms and statistics, not to uses needing a guaranteed distribution.
//
// A first pass opportunistically performs up to count rehash steps. Long
// runs of empty buckets (five or more, exceeding count) restart the walk at
// a fresh random index instead of scanning on; the total number of bucket
// positions examined is capped at count*10.
func (d *Dict[K, V]) SampleEntries(count int) []*Entry[K, V] {
	if n := d.Len(); n < count {
		count = n
	}
	if count <= 0 {
		return nil
	}
	maxSteps := count * 10

	for j := 0; j < count && d.IsRehashing(); j++ {
		d.rehashStep()
	}

	tables := 1
	if d.IsRehashing() {
		tables = 2
	}
	maxMask := d.ht[0].mask
	if tables > 1 && maxMask < d.ht[1].mask {
		maxMask = d.ht[1].mask
	}

	entries := make([]*Entry[K, V], 0, count)
	i := rand.Uint64() & maxMask
	emptyRun := 0
	for len(entries) < count && maxSteps > 0 {
		maxSteps--
		for j := 0; j < tables; j++ {
			// ht[0] buckets below the rehash cursor hold nothing; when the
			// walk index is also out of range for ht[1] (shrinking), jump
			// the index forward to the cursor.
			if tables == 2 && j == 0 && i < uint64(d.rehashIdx) {
				if i >= uint64(len(d.ht[1].buckets)) {
					i = uint64(d.rehashIdx)
				} else {
					continue
				}
			}
			if i >= uint64(len(d.ht[j].buckets)) {
				continue
			}
			e := d.ht[j].buckets[i]

			if e == nil {
				emptyRun++
				if emptyRun >= 5 && emptyRun > count {
					i = rand.Uint64() & maxMask
					emptyRun = 0
				}
				continue
			}
			emptyRun = 0
			for ; e != nil; e = e.next {
				entries = append(entries, e)
				if len(entries) == count {
					return entries
				}
			}
		}
		i = (i + 1) & maxMask
	}
	return entries
}

// FairRandomEntry returns a random entry with a smoother distribution than
// RandomEntry: it samples a small linear pool of buckets and picks
// uniformly within it, so differing chain lengths average out. When an
// unlucky sample comes back empty it falls back to RandomEntry, which
// always yields an entry from a non-empty table.
func (d *Dict[K, V]) FairRandomEntry() *Entry[K, V] {
	entries := d.SampleEntries(fairSamplePool)
	if len(entries) == 0 {
		return d.RandomEntry()
	}
	return entries[rand.IntN(len(entries))]
}
