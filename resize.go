package dict

import (
	"math/bits"
	"unsafe"
)

// maxCapacity is the largest bucket count a table may reach; the next power
// of two above it would overflow the cursor arithmetic.
const maxCapacity = uint64(1) << 62

// Expand grows (or initially allocates) the bucket array to the next power
// of two holding size entries, never below the configured minimum. A first
// allocation installs the array directly; otherwise the new array becomes
// the incoming table and incremental migration begins.
//
// It returns ErrResizeRejected when a rehash is already running, size is
// below the live entry count, the computed capacity overflows or equals the
// current capacity.
func (d *Dict[K, V]) Expand(size uint64) error {
	if d.IsRehashing() || d.ht[0].used > size {
		return ErrResizeRejected
	}
	if size > maxCapacity {
		return ErrResizeRejected
	}
	realSize := nextPowOf2(max(size, d.cfg.minCapacity))
	// Rehashing to the current size would only shuffle chains.
	if realSize == uint64(len(d.ht[0].buckets)) {
		return ErrResizeRejected
	}

	nt := table[K, V]{
		buckets: make([]*Entry[K, V], realSize),
		mask:    realSize - 1,
	}

	// First allocation is not a rehash; the array just starts accepting
	// keys.
	if d.ht[0].buckets == nil {
		d.ht[0] = nt
		return nil
	}

	d.ht[1] = nt
	d.rehashIdx = 0
	return nil
}

// ShrinkToFit resizes the table down to the smallest power of two holding
// the current entries, never below the configured minimum. Shrinking only
// ever happens through this explicit call, and only under ResizeEnabled.
func (d *Dict[K, V]) ShrinkToFit() error {
	if d.cfg.mode != ResizeEnabled || d.IsRehashing() {
		return ErrResizeRejected
	}
	return d.Expand(max(d.ht[0].used, d.cfg.minCapacity))
}

// expandIfNeeded grows the table ahead of an insert. Outside a rehash it
// allocates the initial array, or doubles past the current load when the
// policy allows: under ResizeEnabled at 1:1 load, and under any mode but
// ResizeForbid once load exceeds the force ratio. The optional
// ExpandAllowed capability may veto the implied allocation, in which case
// the insert proceeds without growing.
func (d *Dict[K, V]) expandIfNeeded() error {
	if d.IsRehashing() {
		return nil
	}
	if len(d.ht[0].buckets) == 0 {
		return d.Expand(d.cfg.minCapacity)
	}

	used, slots := d.ht[0].used, uint64(len(d.ht[0].buckets))
	if allowed := d.typ.ExpandAllowed; allowed != nil {
		sizeBytes := uintptr(nextPowOf2(used+1)) * unsafe.Sizeof((*Entry[K, V])(nil))
		if !allowed(sizeBytes, float64(used)/float64(slots)) {
			return nil
		}
	}
	if (d.cfg.mode == ResizeEnabled && used >= slots) ||
		(d.cfg.mode != ResizeForbid && used/slots > d.cfg.forceRatio) {
		return d.Expand(used + 1)
	}
	return nil
}

// nextPowOf2 returns the smallest power of two >= n. n must be nonzero and
// must not exceed 1<<63.
func nextPowOf2(n uint64) uint64 {
	if n <= 1 {
		return 1
	}
	return uint64(1) << (64 - bits.LeadingZeros64(n-1))
}
