package dict

import (
	"encoding/binary"
	"math/rand/v2"
	"unsafe"

	"golang.org/x/sys/cpu"
)

// CacheLineSize is used in structure padding to prevent false sharing.
// It's automatically calculated using the `golang.org/x/sys` package.
const CacheLineSize = unsafe.Sizeof(cpu.CacheLinePad{})

// ResizeMode controls whether tables sharing a Config may grow.
type ResizeMode int32

const (
	// ResizeEnabled allows growth whenever the load condition is met.
	ResizeEnabled ResizeMode = iota
	// ResizeAvoid skips growth and rehash progress unless the ratio between
	// entries and buckets (or between the two table sizes mid-rehash)
	// exceeds the force ratio. Used to minimize memory movement while a
	// copy-on-write child is active.
	ResizeAvoid
	// ResizeForbid disables resizing and rehash progress entirely, for the
	// duration of external snapshot operations.
	ResizeForbid
)

const (
	// defaultMinCapacity is the smallest bucket count a table is given.
	defaultMinCapacity = 4
	// defaultForceRatio is the entries/buckets ratio past which growth
	// happens even under ResizeAvoid.
	defaultForceRatio = 5
)

// Config carries the settings shared by a pool of tables: the resize mode
// switch, the force-resize ratio, the minimum table capacity and the 128-bit
// seed consumed by the seeded hashers. It is an explicit value rather than
// package-level state so independent pools stay independent under test.
//
// A background maintenance goroutine may hold a Config while mutators run on
// their own tables, so the struct is padded to a cache line.
type Config struct {
	//lint:ignore U1000 prevents false sharing
	pad [(CacheLineSize - unsafe.Sizeof(struct {
		seed        [2]uint64
		forceRatio  uint64
		minCapacity uint64
		mode        ResizeMode
	}{})%CacheLineSize) % CacheLineSize]byte

	seed        [2]uint64
	forceRatio  uint64
	minCapacity uint64
	mode        ResizeMode
}

// NewConfig returns a Config with resizing enabled, the default force ratio
// and minimum capacity, and a randomized hash seed.
func NewConfig() *Config {
	c := &Config{
		forceRatio:  defaultForceRatio,
		minCapacity: defaultMinCapacity,
	}
	c.seed[0] = rand.Uint64()
	c.seed[1] = rand.Uint64()
	return c
}

// SetResizeMode switches the resize policy for every table sharing c.
func (c *Config) SetResizeMode(mode ResizeMode) { c.mode = mode }

// ResizeMode returns the current resize policy.
func (c *Config) ResizeMode() ResizeMode { return c.mode }

// SetForceRatio overrides the entries/buckets ratio past which growth is
// forced even under ResizeAvoid. Zero or negative values are ignored.
func (c *Config) SetForceRatio(ratio int) {
	if ratio > 0 {
		c.forceRatio = uint64(ratio)
	}
}

// ForceRatio returns the force-resize ratio.
func (c *Config) ForceRatio() int { return int(c.forceRatio) }

// SetMinCapacity overrides the minimum table capacity. The value is rounded
// up to a power of two; values below the default are ignored.
func (c *Config) SetMinCapacity(n int) {
	if n > defaultMinCapacity {
		c.minCapacity = nextPowOf2(uint64(n))
	}
}

// MinCapacity returns the minimum table capacity.
func (c *Config) MinCapacity() int { return int(c.minCapacity) }

// SetHashSeed installs a 128-bit seed for the seeded hashers. Tables keyed
// with a seeded capability set must be rebuilt after changing the seed.
func (c *Config) SetHashSeed(seed [16]byte) {
	c.seed[0] = binary.LittleEndian.Uint64(seed[0:8])
	c.seed[1] = binary.LittleEndian.Uint64(seed[8:16])
}

// HashSeed returns the current 128-bit hash seed.
func (c *Config) HashSeed() [16]byte {
	var seed [16]byte
	binary.LittleEndian.PutUint64(seed[0:8], c.seed[0])
	binary.LittleEndian.PutUint64(seed[8:16], c.seed[1])
	return seed
}

// seedKeys returns the seed as the two uint64 halves the SipHash core wants.
func (c *Config) seedKeys() (uint64, uint64) { return c.seed[0], c.seed[1] }
