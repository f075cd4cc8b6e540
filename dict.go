package dict

// Entry is a single key/value pair in a chain. An entry is owned by its
// bucket slot or by its predecessor in the chain; it is never shared between
// the two tables of a Dict.
type Entry[K comparable, V any] struct {
	key   K
	value V
	next  *Entry[K, V]
}

// Key returns the entry's key.
func (e *Entry[K, V]) Key() K { return e.key }

// Value returns the entry's value.
func (e *Entry[K, V]) Value() V { return e.value }

// table is one bucket array: chain heads, the power-of-two mask and the
// live entry count.
type table[K comparable, V any] struct {
	buckets []*Entry[K, V]
	mask    uint64
	used    uint64
}

func (t *table[K, V]) reset() {
	t.buckets = nil
	t.mask = 0
	t.used = 0
}

// notRehashing is the rehash cursor sentinel.
const notRehashing = -1

// Dict is a chained hash table with incremental rehashing. It holds two
// bucket arrays: ht[0] is the active table and ht[1] receives entries while
// a rehash is in progress. A Dict must not be mutated concurrently; the
// single-mutator contract is the caller's responsibility.
//
// The zero Dict is not usable; create instances with New.
type Dict[K comparable, V any] struct {
	typ Type[K, V]
	cfg *Config

	ht [2]table[K, V]

	// rehashIdx is the next ht[0] bucket to migrate, or notRehashing.
	rehashIdx int64
	// pauseRehash blocks rehash progress while > 0. Safe iterators and Scan
	// nest pauses around their windows.
	pauseRehash int
}

// New creates an empty Dict. The bucket array is allocated lazily on the
// first insert or explicit Expand. A nil cfg gets a private NewConfig; a nil
// typ (or nil Type fields) falls back to the runtime hasher and `==`.
func New[K comparable, V any](cfg *Config, typ *Type[K, V]) *Dict[K, V] {
	if cfg == nil {
		cfg = NewConfig()
	}
	d := &Dict[K, V]{cfg: cfg, rehashIdx: notRehashing}
	if typ != nil {
		d.typ = *typ
	}
	if d.typ.Hash == nil {
		d.typ.Hash = defaultHash[K]()
	}
	return d
}

// Len returns the number of live entries across both tables.
func (d *Dict[K, V]) Len() int { return int(d.ht[0].used + d.ht[1].used) }

// Cap returns the total number of bucket slots across both tables.
func (d *Dict[K, V]) Cap() int { return len(d.ht[0].buckets) + len(d.ht[1].buckets) }

// IsRehashing reports whether an incremental rehash is in progress.
func (d *Dict[K, V]) IsRehashing() bool { return d.rehashIdx != notRehashing }

// Config returns the shared configuration this table consults.
func (d *Dict[K, V]) Config() *Config { return d.cfg }

// HashOf exposes the table's hash of a key, for callers layering their own
// indexes on the same function.
func (d *Dict[K, V]) HashOf(key K) uint64 { return d.typ.Hash(key) }

// match reports whether a lookup key matches a stored key: identity first,
// then the injected comparison.
func (d *Dict[K, V]) match(key, stored K) bool {
	return key == stored || (d.typ.Equals != nil && d.typ.Equals(key, stored))
}

// setValue stores a value into an entry, through DupValue when present.
// It does not release any previous value.
func (d *Dict[K, V]) setValue(e *Entry[K, V], value V) {
	if d.typ.DupValue != nil {
		value = d.typ.DupValue(value)
	}
	e.value = value
}

// keyIndex returns the bucket index a new entry for key should go to, after
// growing the table if needed. If the key is already present the existing
// entry is returned instead. While rehashing the index is always relative to
// ht[1], the receiving table.
func (d *Dict[K, V]) keyIndex(key K, hash uint64) (uint64, *Entry[K, V], error) {
	if err := d.expandIfNeeded(); err != nil {
		return 0, nil, err
	}
	var idx uint64
	for t := 0; t <= 1; t++ {
		idx = hash & d.ht[t].mask
		for e := d.ht[t].buckets[idx]; e != nil; e = e.next {
			if d.match(key, e.key) {
				return 0, e, nil
			}
		}
		if !d.IsRehashing() {
			break
		}
	}
	return idx, nil, nil
}

// addRaw inserts a bare entry for key, leaving the value zero for the caller
// to fill. It returns the new entry, or the existing one when the key is
// already present, or an error when a needed growth was rejected.
//
// The new entry is prepended to its chain: in a database workload recently
// added keys tend to be accessed soonest.
func (d *Dict[K, V]) addRaw(key K) (*Entry[K, V], *Entry[K, V], error) {
	if d.IsRehashing() {
		d.rehashStep()
	}
	idx, existing, err := d.keyIndex(key, d.typ.Hash(key))
	if err != nil {
		return nil, nil, err
	}
	if existing != nil {
		return nil, existing, nil
	}

	ht := &d.ht[0]
	if d.IsRehashing() {
		ht = &d.ht[1]
	}
	e := &Entry[K, V]{key: key, next: ht.buckets[idx]}
	ht.buckets[idx] = e
	ht.used++
	return e, nil, nil
}

// Add inserts a new key/value pair. It returns ErrExists when the key is
// already present, or ErrResizeRejected when the insert needed a growth
// that could not be performed.
func (d *Dict[K, V]) Add(key K, value V) error {
	e, _, err := d.addRaw(key)
	if err != nil {
		return err
	}
	if e == nil {
		return ErrExists
	}
	d.setValue(e, value)
	return nil
}

// AddOrFind inserts a zero-valued entry for key, or returns the existing
// one. The second result reports whether the entry was inserted. Callers
// fill inserted entries with SetValue.
func (d *Dict[K, V]) AddOrFind(key K) (*Entry[K, V], bool) {
	e, existing, err := d.addRaw(key)
	if err != nil || e == nil {
		return existing, false
	}
	return e, true
}

// SetValue stores a value into an entry obtained from AddOrFind, Find or
// Unlink, applying DupValue when configured. The previous value is not
// released; use Replace for overwrite-with-release semantics.
func (d *Dict[K, V]) SetValue(e *Entry[K, V], value V) { d.setValue(e, value) }

// Replace upserts a key/value pair and reports whether the key was inserted
// fresh. On overwrite the new value is stored before the old one is
// released: the two may be reference-identical, and with counted references
// the increment must come before the decrement.
func (d *Dict[K, V]) Replace(key K, value V) bool {
	e, existing, err := d.addRaw(key)
	if err == nil && e != nil {
		d.setValue(e, value)
		return true
	}
	if existing == nil {
		// Growth rejection without a conflicting entry: nothing to update.
		return false
	}
	old := existing.value
	d.setValue(existing, value)
	if d.typ.DestroyValue != nil {
		d.typ.DestroyValue(old)
	}
	return false
}

// Find returns the entry for key, or ErrNotFound. An empty table answers
// without hashing. Mid-rehash, one migration step runs first and both
// tables are searched.
func (d *Dict[K, V]) Find(key K) (*Entry[K, V], error) {
	if d.Len() == 0 {
		return nil, ErrNotFound
	}
	if d.IsRehashing() {
		d.rehashStep()
	}
	hash := d.typ.Hash(key)
	for t := 0; t <= 1; t++ {
		idx := hash & d.ht[t].mask
		for e := d.ht[t].buckets[idx]; e != nil; e = e.next {
			if d.match(key, e.key) {
				return e, nil
			}
		}
		if !d.IsRehashing() {
			break
		}
	}
	return nil, ErrNotFound
}

// Get returns the value for key.
func (d *Dict[K, V]) Get(key K) (V, bool) {
	e, err := d.Find(key)
	if err != nil {
		var zero V
		return zero, false
	}
	return e.value, true
}

// unlink splices the entry for key out of its chain. With release set the
// entry's key and value are destroyed as well.
func (d *Dict[K, V]) unlink(key K, release bool) (*Entry[K, V], error) {
	if d.ht[0].used == 0 && d.ht[1].used == 0 {
		return nil, ErrNotFound
	}
	if d.IsRehashing() {
		d.rehashStep()
	}
	hash := d.typ.Hash(key)
	for t := 0; t <= 1; t++ {
		idx := hash & d.ht[t].mask
		for pe := &d.ht[t].buckets[idx]; *pe != nil; pe = &(*pe).next {
			e := *pe
			if d.match(key, e.key) {
				*pe = e.next
				e.next = nil
				d.ht[t].used--
				if release {
					d.destroyEntry(e)
				}
				return e, nil
			}
		}
		if !d.IsRehashing() {
			break
		}
	}
	return nil, ErrNotFound
}

// Delete removes the entry for key, running the key and value destructors.
// It returns ErrNotFound when the key is absent.
func (d *Dict[K, V]) Delete(key K) error {
	_, err := d.unlink(key, true)
	return err
}

// Unlink detaches the entry for key without releasing it, so the caller can
// read the value and then hand the entry to ReleaseEntry. This saves the
// second lookup of a find-then-delete pair.
func (d *Dict[K, V]) Unlink(key K) (*Entry[K, V], error) {
	return d.unlink(key, false)
}

// ReleaseEntry destroys an entry previously detached with Unlink. It is
// safe to call with nil.
func (d *Dict[K, V]) ReleaseEntry(e *Entry[K, V]) {
	if e == nil {
		return
	}
	d.destroyEntry(e)
}

func (d *Dict[K, V]) destroyEntry(e *Entry[K, V]) {
	if d.typ.DestroyKey != nil {
		d.typ.DestroyKey(e.key)
	}
	if d.typ.DestroyValue != nil {
		d.typ.DestroyValue(e.value)
	}
}

// clearTable destroys every entry reachable from a bucket array and resets
// the array.
func (d *Dict[K, V]) clearTable(t *table[K, V]) {
	for i := 0; i < len(t.buckets) && t.used > 0; i++ {
		for e := t.buckets[i]; e != nil; {
			next := e.next
			d.destroyEntry(e)
			e.next = nil
			t.used--
			e = next
		}
		t.buckets[i] = nil
	}
	t.reset()
}

// Clear destroys all entries, invoking the key and value destructors, and
// drops both bucket arrays. The Dict stays usable and allocates again on
// the next insert.
func (d *Dict[K, V]) Clear() {
	d.clearTable(&d.ht[0])
	d.clearTable(&d.ht[1])
	d.rehashIdx = notRehashing
	d.pauseRehash = 0
}
