// Package target owns the shadow render targets: a primary buffer and, for
// techniques that blur, a secondary buffer of the same shape used for ping-pong.
package target

import (
	"errors"
	"fmt"

	"github.com/gekko3d/shadows"
	"github.com/gekko3d/shadows/rt/core"
)

var (
	// ErrAllocation wraps any failure reported by the Allocator.
	ErrAllocation = errors.New("shadow target allocation failed")
	// ErrMismatchedTargets is returned when a blur pair is incomplete or mis-sized.
	ErrMismatchedTargets = errors.New("shadow targets do not form a valid ping-pong pair")
)

// Allocator creates and destroys GPU targets.
type Allocator interface {
	AllocateTarget(desc core.TargetDesc) (core.TextureHandle, error)
	FreeTarget(handle core.TextureHandle)
}

type Target struct {
	Handle core.TextureHandle
	Desc   core.TargetDesc
}

// Set is the primary/secondary pair. Secondary is nil when no blur was requested.
type Set struct {
	Primary   *Target
	Secondary *Target
}

// Swap exchanges the primary and secondary roles without touching data.
func (s *Set) Swap() {
	s.Primary, s.Secondary = s.Secondary, s.Primary
}

// Validate checks the pair is usable for a read/write blur pass.
func (s *Set) Validate() error {
	if s == nil || s.Primary == nil || s.Secondary == nil {
		return ErrMismatchedTargets
	}
	if s.Primary.Handle.IsZero() || s.Secondary.Handle.IsZero() || s.Primary.Handle == s.Secondary.Handle {
		return ErrMismatchedTargets
	}
	if !s.Primary.Desc.Matches(s.Secondary.Desc) {
		return fmt.Errorf("%w: %s vs %s", ErrMismatchedTargets, s.Primary.Desc, s.Secondary.Desc)
	}
	if !s.Primary.Desc.RandomWrite {
		return fmt.Errorf("%w: %s is not writable from compute", ErrMismatchedTargets, s.Primary.Desc)
	}
	return nil
}

type Manager struct {
	alloc  Allocator
	logger shadows.Logger
	set    *Set

	allocations int
}

func NewManager(alloc Allocator, logger shadows.Logger) *Manager {
	if logger == nil {
		logger = shadows.NewNopLogger()
	}
	return &Manager{alloc: alloc, logger: logger}
}

// Current returns the held set, or nil.
func (m *Manager) Current() *Set {
	return m.set
}

// Allocations counts AllocateTarget calls that succeeded over the manager's life.
func (m *Manager) Allocations() int {
	return m.allocations
}

// Ensure returns a set matching desc, reallocating both buffers on any mismatch.
// Identical requests return the held set untouched.
func (m *Manager) Ensure(desc core.TargetDesc, needsSecondary bool) (*Set, error) {
	if m.set != nil && !m.set.Primary.Desc.Matches(desc) {
		m.logger.Debugf("shadow targets %s -> %s, reallocating", m.set.Primary.Desc, desc)
		m.Release()
	}

	if m.set == nil {
		primary, err := m.allocate(desc)
		if err != nil {
			return nil, err
		}
		set := &Set{Primary: primary}
		if needsSecondary {
			secondary, err := m.allocate(desc)
			if err != nil {
				m.alloc.FreeTarget(primary.Handle)
				return nil, err
			}
			set.Secondary = secondary
		}
		m.set = set
		return m.set, nil
	}

	if needsSecondary && m.set.Secondary == nil {
		secondary, err := m.allocate(m.set.Primary.Desc)
		if err != nil {
			return nil, err
		}
		m.set.Secondary = secondary
	}
	return m.set, nil
}

func (m *Manager) allocate(desc core.TargetDesc) (*Target, error) {
	h, err := m.alloc.AllocateTarget(desc)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrAllocation, desc, err)
	}
	if h.IsZero() {
		return nil, fmt.Errorf("%w: %s: allocator returned an empty handle", ErrAllocation, desc)
	}
	m.allocations++
	return &Target{Handle: h, Desc: desc}, nil
}

// Release frees both buffers. Safe to call repeatedly or with nothing allocated.
func (m *Manager) Release() {
	if m.set == nil {
		return
	}
	if m.set.Primary != nil {
		m.alloc.FreeTarget(m.set.Primary.Handle)
	}
	if m.set.Secondary != nil {
		m.alloc.FreeTarget(m.set.Secondary.Handle)
	}
	m.set = nil
}
