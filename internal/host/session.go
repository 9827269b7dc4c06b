// Package host is the stateful side of the windowing engine: it receives
// scroll and resize notifications, coalesces them, and produces at most one
// render instruction per paint opportunity.
package host

import (
	"fmt"
	"sync"
	"time"

	"perflab/internal/config"
	"perflab/internal/window"
)

// Sink receives one Pass per recomputed frame. Record must not block.
type Sink interface {
	Record(p Pass)
}

// Option configures a Session.
type Option func(*Session)

// WithSink forwards every recomputed frame to sink.
func WithSink(sink Sink) Option {
	return func(s *Session) {
		s.sink = sink
	}
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Session) {
		if now != nil {
			s.now = now
		}
	}
}

// Session tracks one list's viewport and the last frame computed for it.
type Session struct {
	mu          sync.Mutex
	geometry    window.Geometry
	overscan    int
	viewport    window.Viewport
	virtualized bool
	dirty       bool
	seq         uint64
	frame       Frame

	sink Sink
	now  func() time.Time
}

// NewSession builds a session from the list configuration. The viewport
// starts at offset 0 with the configured extent.
func NewSession(list config.List, opts ...Option) (*Session, error) {
	g, err := list.Geometry()
	if err != nil {
		return nil, fmt.Errorf("list geometry: %w", err)
	}
	if list.Overscan < 0 {
		return nil, &window.FieldError{Kind: window.ErrInvalidOverscan, Field: "overscan", Message: "must not be negative"}
	}
	vp := window.Viewport{ScrollOffset: 0, ViewportExtent: list.ViewportExtent}
	if err := vp.Validate(); err != nil {
		return nil, err
	}

	s := &Session{
		geometry:    g,
		overscan:    list.Overscan,
		viewport:    vp,
		virtualized: list.Virtualized,
		dirty:       true,
		now:         time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s, nil
}

// Scroll records a new scroll offset. Invalid offsets are rejected and leave
// the session untouched.
func (s *Session) Scroll(offset float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	vp := s.viewport
	vp.ScrollOffset = offset
	return s.setViewportLocked(vp)
}

// Resize records a new viewport extent.
func (s *Session) Resize(extent float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	vp := s.viewport
	vp.ViewportExtent = extent
	return s.setViewportLocked(vp)
}

func (s *Session) setViewportLocked(vp window.Viewport) error {
	if err := vp.Validate(); err != nil {
		return err
	}
	if vp != s.viewport {
		s.viewport = vp
		s.dirty = true
	}
	return nil
}

// Reconfigure swaps in a new geometry. The old one is never modified, so a
// frame computed before the swap stays consistent.
func (s *Session) Reconfigure(g window.Geometry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.geometry = g
	s.dirty = true
}

func (s *Session) SetOverscan(n int) error {
	if n < 0 {
		return &window.FieldError{Kind: window.ErrInvalidOverscan, Field: "overscan", Message: "must not be negative"}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if n != s.overscan {
		s.overscan = n
		s.dirty = true
	}
	return nil
}

// SetVirtualized switches between windowed rendering and materializing the
// whole collection on every pass.
func (s *Session) SetVirtualized(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if on != s.virtualized {
		s.virtualized = on
		s.dirty = true
	}
}

func (s *Session) Virtualized() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.virtualized
}

func (s *Session) Geometry() window.Geometry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.geometry
}

func (s *Session) Viewport() window.Viewport {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewport
}

func (s *Session) Overscan() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.overscan
}

// Frame returns the render instruction for the current viewport. It
// recomputes only when something changed since the previous call; fresh
// reports whether this call did the work.
func (s *Session) Frame() (f Frame, fresh bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.dirty {
		return s.frame, false, nil
	}

	started := s.now()
	r := window.FullRange(s.geometry)
	if s.virtualized {
		r, err = window.ComputeVisibleRange(s.viewport, s.geometry, s.overscan)
		if err != nil {
			return s.frame, false, fmt.Errorf("compute visible range: %w", err)
		}
	}
	instruction := window.Materialize(r, s.geometry)
	removed, added := window.Diff(s.frame.Range, r)
	finished := s.now()

	s.seq++
	s.frame = Frame{
		Seq:         s.seq,
		At:          finished,
		Viewport:    s.viewport,
		Range:       r,
		Instruction: instruction,
		Removed:     removed,
		Added:       added,
		Compute:     finished.Sub(started),
		Virtualized: s.virtualized,
		ItemCount:   s.geometry.ItemCount(),
		ItemExtent:  s.geometry.ItemExtent(),
	}
	s.dirty = false

	if s.sink != nil {
		s.sink.Record(s.frame.Pass())
	}
	return s.frame, true, nil
}
