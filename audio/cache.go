package audio

import (
	"math/rand"
	"sync"
)

// clickCache stores synthesized unity-gain clicks per sound type
// Clicks are generated once per rate and reused by every voice
type clickCache struct {
	mu    sync.RWMutex
	rate  int
	rng   *rand.Rand
	store [soundTypeCount]floatBuffer
	ready [soundTypeCount]bool
}

func newClickCache(rate int, rng *rand.Rand) *clickCache {
	return &clickCache{rate: rate, rng: rng}
}

// get returns cached buffer or generates on demand
func (c *clickCache) get(st SoundType) (floatBuffer, error) {
	if st < 0 || st >= soundTypeCount {
		st = SoundDefault
	}

	c.mu.RLock()
	if c.ready[st] {
		buf := c.store[st]
		c.mu.RUnlock()
		return buf, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()

	// Double-check after acquiring write lock
	if c.ready[st] {
		return c.store[st], nil
	}

	buf, err := synthesizeClick(Profile(st), c.rate, c.rng)
	if err != nil {
		return nil, err
	}
	c.store[st] = buf
	c.ready[st] = true
	return buf, nil
}

// preload generates the default click at init
func (c *clickCache) preload() {
	c.get(SoundDefault)
}
