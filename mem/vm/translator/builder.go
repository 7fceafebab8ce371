package translator

import (
	"errors"
	"fmt"

	"github.com/sarchlab/pagesim/mem/vm/layout"
	"github.com/sarchlab/pagesim/mem/vm/nfu"
	"github.com/sarchlab/pagesim/mem/vm/pagetable"
)

const (
	// DefaultNumFrames is large enough that no page is ever replaced in
	// practice.
	DefaultNumFrames = 999999

	// DefaultNFUInterval is the default number of accesses between two
	// aging sweeps.
	DefaultNFUInterval = 50
)

// ErrInvalidNumFrames is returned when the number of frames is not positive.
var ErrInvalidNumFrames = errors.New("number of frames must be positive")

// A Builder can build Translators.
type Builder struct {
	levelBits    []int
	numFrames    int
	nfuInterval  int
	victimFinder nfu.VictimFinder
}

// MakeBuilder creates a new builder with default parameters.
func MakeBuilder() Builder {
	return Builder{
		numFrames:   DefaultNumFrames,
		nfuInterval: DefaultNFUInterval,
	}
}

// WithLevelBits sets the number of bits of each page table level, starting
// from the root level.
func (b Builder) WithLevelBits(bits ...int) Builder {
	b.levelBits = append([]int(nil), bits...)
	return b
}

// WithNumFrames sets the number of physical frames.
func (b Builder) WithNumFrames(n int) Builder {
	b.numFrames = n
	return b
}

// WithNFUInterval sets the number of accesses between two aging sweeps. A
// non-positive interval disables aging.
func (b Builder) WithNFUInterval(n int) Builder {
	b.nfuInterval = n
	return b
}

// WithoutAging disables the aging of the bitstrings.
func (b Builder) WithoutAging() Builder {
	b.nfuInterval = 0
	return b
}

// WithVictimFinder sets the policy that selects the page to replace.
func (b Builder) WithVictimFinder(f nfu.VictimFinder) Builder {
	b.victimFinder = f
	return b
}

// Build creates a new Translator. It returns an error if the configuration
// is invalid.
func (b Builder) Build(name string) (*Translator, error) {
	l, err := layout.New(b.levelBits)
	if err != nil {
		return nil, fmt.Errorf("building %s: %w", name, err)
	}

	if b.numFrames <= 0 {
		return nil, fmt.Errorf("building %s: %w, got %d",
			name, ErrInvalidNumFrames, b.numFrames)
	}

	t := &Translator{
		name:   name,
		layout: l,
		table:  pagetable.New(l),
	}

	t.engine = nfu.NewEngine(t.table, b.numFrames, b.nfuInterval)
	if b.victimFinder != nil {
		t.engine.SetVictimFinder(b.victimFinder)
	}

	return t, nil
}
