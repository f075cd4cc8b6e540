package dict

import (
	"strconv"
	"testing"
)

func benchDict(n int) *Dict[string, int] {
	cfg := NewConfig()
	d := New[string, int](cfg, StringType[int](cfg))
	for i := 0; i < n; i++ {
		_ = d.Add(strconv.Itoa(i), i)
	}
	drainRehash(d)
	return d
}

func BenchmarkAdd(b *testing.B) {
	cfg := NewConfig()
	d := New[string, int](cfg, StringType[int](cfg))
	keys := make([]string, b.N)
	for i := range keys {
		keys[i] = strconv.Itoa(i)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = d.Add(keys[i], i)
	}
}

func BenchmarkGet(b *testing.B) {
	const n = 1 << 16
	d := benchDict(n)
	keys := make([]string, n)
	for i := range keys {
		keys[i] = strconv.Itoa(i)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		d.Get(keys[i&(n-1)])
	}
}

func BenchmarkGetMidRehash(b *testing.B) {
	const n = 1 << 16
	d := benchDict(n)
	_ = d.Expand(n * 4)
	keys := make([]string, n)
	for i := range keys {
		keys[i] = strconv.Itoa(i)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		d.Get(keys[i&(n-1)])
	}
}

func BenchmarkRandomEntry(b *testing.B) {
	d := benchDict(1 << 14)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		d.RandomEntry()
	}
}

func BenchmarkFairRandomEntry(b *testing.B) {
	d := benchDict(1 << 14)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		d.FairRandomEntry()
	}
}

func BenchmarkScan(b *testing.B) {
	d := benchDict(1 << 14)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		cursor := uint64(0)
		for {
			cursor = d.Scan(cursor, func(*Entry[string, int]) {})
			if cursor == 0 {
				break
			}
		}
	}
}
