package dict

import (
	"fmt"
	"strings"
)

// chainHistogramLen bounds the chain-length histogram; the last slot counts
// every chain at least that long.
const chainHistogramLen = 50

// TableStats describes one bucket array. Statistics are diagnostic output,
// not a stable format.
type TableStats struct {
	// Capacity is the number of bucket slots.
	Capacity int `json:"capacity"`
	// Used is the number of live entries.
	Used int `json:"used"`
	// NonEmptySlots is the number of buckets with at least one entry.
	NonEmptySlots int `json:"non_empty_slots"`
	// MaxChainLen is the longest collision chain.
	MaxChainLen int `json:"max_chain_len"`
	// AvgChainLen is the mean chain length over non-empty buckets.
	AvgChainLen float64 `json:"avg_chain_len"`
	// ChainHistogram counts buckets by chain length; index 0 is empty
	// buckets, the last index aggregates all longer chains.
	ChainHistogram []int `json:"chain_histogram"`
}

// DictStats is the diagnostic report for a Dict: the active table and,
// while rehashing, the incoming one.
type DictStats struct {
	Main      *TableStats `json:"main"`
	Rehashing *TableStats `json:"rehashing,omitempty"`
}

func (t *table[K, V]) stats() *TableStats {
	s := &TableStats{
		Capacity:       len(t.buckets),
		Used:           int(t.used),
		ChainHistogram: make([]int, chainHistogramLen),
	}
	total := 0
	for _, head := range t.buckets {
		if head == nil {
			s.ChainHistogram[0]++
			continue
		}
		s.NonEmptySlots++
		chainLen := 0
		for e := head; e != nil; e = e.next {
			chainLen++
		}
		slot := chainLen
		if slot >= chainHistogramLen {
			slot = chainHistogramLen - 1
		}
		s.ChainHistogram[slot]++
		if chainLen > s.MaxChainLen {
			s.MaxChainLen = chainLen
		}
		total += chainLen
	}
	if s.NonEmptySlots > 0 {
		s.AvgChainLen = float64(total) / float64(s.NonEmptySlots)
	}
	return s
}

// Stats computes statistics for both tables. It is an O(N) walk; use it for
// diagnostics or debugging, not on a hot path.
func (d *Dict[K, V]) Stats() *DictStats {
	stats := &DictStats{Main: d.ht[0].stats()}
	if d.IsRehashing() {
		stats.Rehashing = d.ht[1].stats()
	}
	return stats
}

// String renders the report in a human-readable form.
func (s *DictStats) String() string {
	var sb strings.Builder
	writeTableStats(&sb, "main hash table", s.Main)
	if s.Rehashing != nil {
		writeTableStats(&sb, "rehashing target", s.Rehashing)
	}
	return sb.String()
}

func writeTableStats(sb *strings.Builder, name string, s *TableStats) {
	fmt.Fprintf(sb, "Hash table stats (%s):\n", name)
	if s.Used == 0 {
		sb.WriteString(" empty\n")
		return
	}
	fmt.Fprintf(sb, " table size: %d\n", s.Capacity)
	fmt.Fprintf(sb, " number of elements: %d\n", s.Used)
	fmt.Fprintf(sb, " different slots: %d\n", s.NonEmptySlots)
	fmt.Fprintf(sb, " max chain length: %d\n", s.MaxChainLen)
	fmt.Fprintf(sb, " avg chain length: %.02f\n", s.AvgChainLen)
	sb.WriteString(" chain length distribution:\n")
	for i, n := range s.ChainHistogram {
		if n == 0 {
			continue
		}
		prefix := ""
		if i == chainHistogramLen-1 {
			prefix = ">= "
		}
		fmt.Fprintf(sb, "   %s%d: %d (%.02f%%)\n",
			prefix, i, n, float64(n)/float64(s.Capacity)*100)
	}
}
