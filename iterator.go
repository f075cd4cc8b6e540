package dict

import (
	"encoding/binary"
	"unsafe"

	"github.com/cespare/xxhash/v2"
)

// Iterator walks every entry: ht[0] buckets in increasing index order, then
// ht[1] if a rehash is in progress, newest entry first within a chain.
//
// A safe iterator pauses rehashing for its whole lifetime, so each entry is
// returned exactly once and the current entry may be deleted mid-iteration.
// An unsafe iterator only detects misuse: it fingerprints the table
// structure on the first Next and panics at Release if the structure
// changed underneath it.
//
// Every iterator must be released.
type Iterator[K comparable, V any] struct {
	d           *Dict[K, V]
	table       int
	index       int64
	safe        bool
	started     bool
	fingerprint uint64
	entry       *Entry[K, V]
	nextEntry   *Entry[K, V]
}

// NewIterator returns an unsafe iterator. The caller must not mutate the
// table until Release; violations are detected there, not prevented.
func (d *Dict[K, V]) NewIterator() *Iterator[K, V] {
	return &Iterator[K, V]{d: d, index: -1}
}

// NewSafeIterator returns an iterator that blocks rehash progress until
// released, keeping bucket contents stable under concurrent mutation.
func (d *Dict[K, V]) NewSafeIterator() *Iterator[K, V] {
	it := d.NewIterator()
	it.safe = true
	return it
}

// Next returns the next entry, or nil when the pass is complete.
func (it *Iterator[K, V]) Next() *Entry[K, V] {
	for {
		if it.entry == nil {
			ht := &it.d.ht[it.table]
			if !it.started {
				it.started = true
				if it.safe {
					it.d.pauseRehashing()
				} else {
					it.fingerprint = it.d.fingerprint()
				}
			}
			it.index++
			if it.index >= int64(len(ht.buckets)) {
				if it.d.IsRehashing() && it.table == 0 {
					it.table = 1
					it.index = 0
					ht = &it.d.ht[1]
				} else {
					return nil
				}
			}
			it.entry = ht.buckets[it.index]
		} else {
			it.entry = it.nextEntry
		}
		if it.entry != nil {
			// Save the successor now; the caller may delete the entry we
			// are about to hand out.
			it.nextEntry = it.entry.next
			return it.entry
		}
	}
}

// Release ends the pass. A safe iterator resumes rehashing; an unsafe one
// panics if the table structure changed since the first Next.
func (it *Iterator[K, V]) Release() {
	if !it.started {
		return
	}
	if it.safe {
		it.d.resumeRehashing()
		return
	}
	if it.fingerprint != it.d.fingerprint() {
		panic("dict: table mutated during unsafe iteration")
	}
}

// fingerprint digests the structural state of both tables: bucket array
// identity, capacity and entry count, in a fixed order so the same values
// arranged differently produce a different sum.
func (d *Dict[K, V]) fingerprint() uint64 {
	var h xxhash.Digest
	h.Reset()
	var buf [8]byte
	for i := 0; i <= 1; i++ {
		t := &d.ht[i]
		binary.LittleEndian.PutUint64(buf[:], uint64(uintptr(unsafe.Pointer(unsafe.SliceData(t.buckets)))))
		h.Write(buf[:])
		binary.LittleEndian.PutUint64(buf[:], uint64(len(t.buckets)))
		h.Write(buf[:])
		binary.LittleEndian.PutUint64(buf[:], t.used)
		h.Write(buf[:])
	}
	return h.Sum64()
}

// RangeEntry iterates over all entries under a safe iterator, stopping when
// yield returns false.
func (d *Dict[K, V]) RangeEntry(yield func(e *Entry[K, V]) bool) {
	it := d.NewSafeIterator()
	defer it.Release()
	for e := it.Next(); e != nil; e = it.Next() {
		if !yield(e) {
			return
		}
	}
}

// Range iterates over all key/value pairs.
func (d *Dict[K, V]) Range(yield func(key K, value V) bool) {
	d.RangeEntry(func(e *Entry[K, V]) bool {
		return yield(e.key, e.value)
	})
}

// RangeKeys iterates over all keys.
func (d *Dict[K, V]) RangeKeys(yield func(key K) bool) {
	d.RangeEntry(func(e *Entry[K, V]) bool {
		return yield(e.key)
	})
}
