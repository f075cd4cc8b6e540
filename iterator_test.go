package dict

import (
	"strconv"
	"testing"
)

func fillRehashing(t *testing.T, n int) *Dict[string, int] {
	t.Helper()
	d := newTestDict(t)
	for i := 0; i < n; i++ {
		if err := d.Add(strconv.Itoa(i), i); err != nil {
			t.Fatalf("Add: %v", err)
		}
	}
	if !d.IsRehashing() {
		if err := d.Expand(uint64(n) * 4); err != nil {
			t.Fatalf("Expand: %v", err)
		}
	}
	return d
}

func TestSafeIteratorVisitsEachOnce(t *testing.T) {
	const n = 500
	d := fillRehashing(t, n)

	seen := make(map[string]int)
	it := d.NewSafeIterator()
	for e := it.Next(); e != nil; e = it.Next() {
		seen[e.Key()]++
	}
	it.Release()

	if len(seen) != n {
		t.Fatalf("iterator saw %d distinct keys, want %d", len(seen), n)
	}
	for k, c := range seen {
		if c != 1 {
			t.Fatalf("key %q visited %d times", k, c)
		}
	}
}

func TestSafeIteratorBlocksRehash(t *testing.T) {
	d := fillRehashing(t, 200)

	it := d.NewSafeIterator()
	if it.Next() == nil {
		t.Fatal("Next returned nil on a populated table")
	}

	b0 := &d.ht[0].buckets[0]
	b1 := &d.ht[1].buckets[0]
	idx := d.rehashIdx
	for i := 0; i < 1000; i++ {
		k := "mut" + strconv.Itoa(i)
		if err := d.Add(k, i); err != nil {
			t.Fatalf("Add: %v", err)
		}
		d.Get(k)
		if i%3 == 0 {
			if err := d.Delete(k); err != nil {
				t.Fatalf("Delete: %v", err)
			}
		}
	}
	if &d.ht[0].buckets[0] != b0 || &d.ht[1].buckets[0] != b1 {
		t.Fatal("table identity changed while a safe iterator was open")
	}
	if d.rehashIdx != idx {
		t.Fatalf("rehash cursor moved from %d to %d under a safe iterator", idx, d.rehashIdx)
	}

	it.Release()
	d.rehashStep()
	if d.IsRehashing() && d.rehashIdx == idx {
		t.Fatal("rehash made no progress after the iterator released")
	}
}

func TestNestedSafeIterators(t *testing.T) {
	d := fillRehashing(t, 100)

	outer := d.NewSafeIterator()
	outer.Next()
	inner := d.NewSafeIterator()
	inner.Next()
	inner.Release()

	// The outer pause must still hold.
	idx := d.rehashIdx
	d.rehashStep()
	if d.rehashIdx != idx {
		t.Fatal("rehash progressed while the outer safe iterator was open")
	}
	outer.Release()
}

func TestSafeIteratorDeleteCurrent(t *testing.T) {
	d := newTestDict(t)
	const n = 100
	for i := 0; i < n; i++ {
		if err := d.Add(strconv.Itoa(i), i); err != nil {
			t.Fatalf("Add: %v", err)
		}
	}

	it := d.NewSafeIterator()
	for e := it.Next(); e != nil; e = it.Next() {
		if err := d.Delete(e.Key()); err != nil {
			t.Fatalf("Delete(%q) during iteration: %v", e.Key(), err)
		}
	}
	it.Release()

	if d.Len() != 0 {
		t.Fatalf("Len() = %d after deleting every visited entry", d.Len())
	}
}

func TestUnsafeIteratorDetectsMutation(t *testing.T) {
	d := newTestDict(t)
	for i := 0; i < 50; i++ {
		if err := d.Add(strconv.Itoa(i), i); err != nil {
			t.Fatalf("Add: %v", err)
		}
	}

	it := d.NewIterator()
	it.Next()
	if err := d.Add("intruder", 1); err != nil {
		t.Fatalf("Add: %v", err)
	}

	defer func() {
		if recover() == nil {
			t.Fatal("Release did not panic after a structural mutation")
		}
	}()
	it.Release()
}

func TestUnsafeIteratorCleanPass(t *testing.T) {
	d := fillRehashing(t, 300)

	seen := 0
	it := d.NewIterator()
	for e := it.Next(); e != nil; e = it.Next() {
		seen++
		_ = e.Value()
	}
	it.Release() // must not panic: no mutation happened

	if seen != 300 {
		t.Fatalf("unsafe iterator saw %d entries, want 300", seen)
	}
}

func TestIteratorEmptyDict(t *testing.T) {
	d := newTestDict(t)
	it := d.NewSafeIterator()
	if it.Next() != nil {
		t.Fatal("Next on an empty dict returned an entry")
	}
	it.Release()

	it = d.NewIterator()
	it.Release() // released before Next: no fingerprint to check
}

func TestRange(t *testing.T) {
	d := newTestDict(t)
	want := make(map[string]int)
	for i := 0; i < 200; i++ {
		k := strconv.Itoa(i)
		if err := d.Add(k, i); err != nil {
			t.Fatalf("Add: %v", err)
		}
		want[k] = i
	}

	got := make(map[string]int)
	d.Range(func(k string, v int) bool {
		got[k] = v
		return true
	})
	if len(got) != len(want) {
		t.Fatalf("Range visited %d pairs, want %d", len(got), len(want))
	}
	for k, v := range want {
		if got[k] != v {
			t.Fatalf("Range saw %q=%d, want %d", k, got[k], v)
		}
	}

	// Early stop.
	visits := 0
	d.RangeKeys(func(string) bool {
		visits++
		return visits < 10
	})
	if visits != 10 {
		t.Fatalf("RangeKeys visited %d keys after yield returned false, want 10", visits)
	}
}
