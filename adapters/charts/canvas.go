// Package charts draws dashboard charts as PNG images with go-chart and keeps the
// latest image of every render target on a Canvas.
package charts

import (
	"sort"
	"sync"

	"csvdash/domain/dashboard"
)

// slot is the image currently shown on one surface
type slot struct {
	png        []byte
	title      string
	generation uint64
	live       bool
}

// Canvas is the set of registered drawing surfaces. It is safe for concurrent use: the
// engine writes while HTTP handlers read images.
type Canvas struct {
	mu    sync.RWMutex
	slots map[dashboard.TargetID]*slot
	next  uint64
}

// NewCanvas creates a canvas with the given targets registered
func NewCanvas(targets ...dashboard.TargetID) *Canvas {
	c := &Canvas{slots: make(map[dashboard.TargetID]*slot)}
	for _, t := range targets {
		c.Register(t)
	}
	return c
}

// Register adds a surface for target. Registering twice keeps the current image.
func (c *Canvas) Register(target dashboard.TargetID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.slots[target]; !ok {
		c.slots[target] = &slot{}
	}
}

// Unregister removes the surface and its image
func (c *Canvas) Unregister(target dashboard.TargetID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.slots, target)
}

// Has reports whether target has a surface
func (c *Canvas) Has(target dashboard.TargetID) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.slots[target]
	return ok
}

// Targets lists the registered surfaces, sorted
func (c *Canvas) Targets() []dashboard.TargetID {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]dashboard.TargetID, 0, len(c.slots))
	for t := range c.slots {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Image returns a copy of the PNG live on target
func (c *Canvas) Image(target dashboard.TargetID) ([]byte, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s, ok := c.slots[target]
	if !ok || !s.live {
		return nil, false
	}
	out := make([]byte, len(s.png))
	copy(out, s.png)
	return out, true
}

// Title returns the title of the chart live on target
func (c *Canvas) Title(target dashboard.TargetID) string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if s, ok := c.slots[target]; ok && s.live {
		return s.title
	}
	return ""
}

// put shows png on target and returns the generation identifying it. ok is false when
// the surface was unregistered in the meantime.
func (c *Canvas) put(target dashboard.TargetID, title string, png []byte) (uint64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.slots[target]
	if !ok {
		return 0, false
	}
	c.next++
	s.png = png
	s.title = title
	s.generation = c.next
	s.live = true
	return c.next, true
}

// clear blanks target only if generation is still the image being shown.
func (c *Canvas) clear(target dashboard.TargetID, generation uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.slots[target]
	if !ok || s.generation != generation {
		return
	}
	s.png = nil
	s.title = ""
	s.live = false
}
