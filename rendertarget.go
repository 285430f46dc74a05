package quadblur

import "fmt"

// DefaultResDivs are the per-level divisors of the blur chain, finest first.
var DefaultResDivs = []int{2, 4, 8, 16, 32, 64}

// TargetChain is an ordered list of offscreen targets, finest to coarsest.
// Level k has size base/resDivs[k], at least 1x1.
type TargetChain struct {
	dev     Device
	resDivs []int
	width   int
	height  int
	levels  []RenderTarget
}

// NewTargetChain allocates one target per divisor for a base size of
// width x height. Panics if resDivs is empty, not strictly increasing, or
// contains a non-positive divisor.
func NewTargetChain(dev Device, width, height int, resDivs []int) *TargetChain {
	validateResDivs(resDivs)
	c := &TargetChain{
		dev:     dev,
		resDivs: append([]int(nil), resDivs...),
	}
	c.build(width, height)
	return c
}

func validateResDivs(resDivs []int) {
	if len(resDivs) == 0 {
		panic("quadblur: target chain needs at least one level")
	}
	for i, d := range resDivs {
		if d <= 0 {
			panic(fmt.Sprintf("quadblur: resolution divisor %d at level %d is not positive", d, i))
		}
		if i > 0 && d <= resDivs[i-1] {
			panic(fmt.Sprintf("quadblur: resolution divisors must be strictly increasing (%d after %d)", d, resDivs[i-1]))
		}
	}
}

// levelSize returns base/div, at least 1.
func levelSize(base, div int) int {
	return max(1, base/div)
}

func (c *TargetChain) build(width, height int) {
	c.width, c.height = width, height
	c.levels = make([]RenderTarget, len(c.resDivs))
	for k, d := range c.resDivs {
		c.levels[k] = c.dev.NewRenderTarget(levelSize(width, d), levelSize(height, d))
	}
}

// Resize rebuilds every level for a new base size. It is a no-op if the
// size did not change. Targets are never resized in place.
func (c *TargetChain) Resize(width, height int) bool {
	if width == c.width && height == c.height {
		return false
	}
	c.Release()
	c.build(width, height)
	return true
}

// Level returns target k.
func (c *TargetChain) Level(k int) RenderTarget { return c.levels[k] }

// Len returns the number of levels.
func (c *TargetChain) Len() int { return len(c.levels) }

// MaxLayers is the largest layer count a blur over this chain can use.
func (c *TargetChain) MaxLayers() int { return len(c.levels) - 1 }

// BaseSize returns the size the chain was built for.
func (c *TargetChain) BaseSize() (width, height int) { return c.width, c.height }

// Release deletes every target. The chain can be rebuilt with Resize.
func (c *TargetChain) Release() {
	for _, rt := range c.levels {
		c.dev.DeleteRenderTarget(rt)
	}
	c.levels = nil
	c.width, c.height = 0, 0
}
