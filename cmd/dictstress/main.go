// Package main provides dictstress, a load generator and diagnostics tool
// for the dict engine. It fills a table with sequential string keys, drives
// the incremental rehash to completion, exercises lookups, scans and random
// sampling, and prints per-phase timings plus the table statistics report.
package main

import (
	"fmt"
	"math/rand/v2"
	"os"
	"strconv"
	"time"

	"github.com/spf13/pflag"
	"github.com/sugawarayuuta/sonnet"

	"github.com/nitrokv/dict"
)

func main() {
	var (
		count     = pflag.IntP("count", "n", 5000000, "number of keys to insert")
		jsonOut   = pflag.Bool("json", false, "emit the stats report as JSON")
		budget    = pflag.Duration("rehash-budget", 100*time.Millisecond, "budget per background rehash slice")
		avoid     = pflag.Bool("avoid-resize", false, "run the fill phase under the avoid resize mode")
		quiet     = pflag.BoolP("quiet", "q", false, "suppress phase timings")
		seedValue = pflag.Uint64("seed", 0, "hash seed (0 keeps the random default)")
	)
	pflag.Parse()

	cfg := dict.NewConfig()
	if *seedValue != 0 {
		var seed [16]byte
		for i := 0; i < 8; i++ {
			seed[i] = byte(*seedValue >> (8 * i))
		}
		cfg.SetHashSeed(seed)
	}
	if *avoid {
		cfg.SetResizeMode(dict.ResizeAvoid)
	}

	d := dict.New[string, int](cfg, dict.StringType[int](cfg))

	phase := func(name string, fn func()) {
		start := time.Now()
		fn()
		if !*quiet {
			fmt.Printf("%-28s %d items in %v\n", name, *count, time.Since(start).Round(time.Millisecond))
		}
	}

	phase("inserting", func() {
		for i := 0; i < *count; i++ {
			if err := d.Add(strconv.Itoa(i), i); err != nil {
				fmt.Fprintf(os.Stderr, "dictstress: add %d: %v\n", i, err)
				os.Exit(1)
			}
		}
	})
	if d.Len() != *count {
		fmt.Fprintf(os.Stderr, "dictstress: size %d after %d inserts\n", d.Len(), *count)
		os.Exit(1)
	}

	cfg.SetResizeMode(dict.ResizeEnabled)
	phase("draining rehash", func() {
		for d.IsRehashing() {
			d.RehashFor(*budget)
		}
	})

	phase("linear access", func() {
		for i := 0; i < *count; i++ {
			if _, ok := d.Get(strconv.Itoa(i)); !ok {
				fmt.Fprintf(os.Stderr, "dictstress: missing key %d\n", i)
				os.Exit(1)
			}
		}
	})

	phase("random access", func() {
		for i := 0; i < *count; i++ {
			if _, ok := d.Get(strconv.Itoa(rand.IntN(*count))); !ok {
				fmt.Fprintln(os.Stderr, "dictstress: missing random key")
				os.Exit(1)
			}
		}
	})

	phase("random sampling", func() {
		for i := 0; i < *count; i++ {
			if d.FairRandomEntry() == nil {
				fmt.Fprintln(os.Stderr, "dictstress: empty sample")
				os.Exit(1)
			}
		}
	})

	phase("full scan", func() {
		seen := 0
		cursor := uint64(0)
		for {
			cursor = d.Scan(cursor, func(*dict.Entry[string, int]) { seen++ })
			if cursor == 0 {
				break
			}
		}
		if seen < *count {
			fmt.Fprintf(os.Stderr, "dictstress: scan saw %d of %d keys\n", seen, *count)
			os.Exit(1)
		}
	})

	phase("delete and reinsert", func() {
		for i := 0; i < *count; i++ {
			key := strconv.Itoa(i)
			if err := d.Delete(key); err != nil {
				fmt.Fprintf(os.Stderr, "dictstress: delete %s: %v\n", key, err)
				os.Exit(1)
			}
			if err := d.Add("x"+key, i); err != nil {
				fmt.Fprintf(os.Stderr, "dictstress: reinsert %s: %v\n", key, err)
				os.Exit(1)
			}
		}
	})

	stats := d.Stats()
	if *jsonOut {
		out, err := sonnet.Marshal(stats)
		if err != nil {
			fmt.Fprintf(os.Stderr, "dictstress: encode stats: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(string(out))
		return
	}
	fmt.Print(stats.String())
}
