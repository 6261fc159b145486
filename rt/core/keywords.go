package core

import (
	"fmt"
	"sort"
	"sync"
)

// Keywords is the process-wide set of shader feature flags. Readers may poll it
// from any goroutine; only the claiming owner is expected to write.
type Keywords struct {
	mu      sync.Mutex
	enabled map[string]bool
	owner   string
}

func NewKeywords() *Keywords {
	return &Keywords{enabled: make(map[string]bool)}
}

// Claim makes owner the single writer. Claiming twice with the same name is a
// no-op; a different owner gets an error.
func (k *Keywords) Claim(owner string) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.owner != "" && k.owner != owner {
		return fmt.Errorf("shader keywords already owned by %s, cannot hand to %s", k.owner, owner)
	}
	k.owner = owner
	return nil
}

// ReleaseOwner drops ownership if owner holds it.
func (k *Keywords) ReleaseOwner(owner string) {
	k.mu.Lock()
	if k.owner == owner {
		k.owner = ""
	}
	k.mu.Unlock()
}

func (k *Keywords) Owner() string {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.owner
}

func (k *Keywords) Set(name string) {
	if name == "" {
		return
	}
	k.mu.Lock()
	k.enabled[name] = true
	k.mu.Unlock()
}

func (k *Keywords) Clear(name string) {
	k.mu.Lock()
	delete(k.enabled, name)
	k.mu.Unlock()
}

func (k *Keywords) Enabled(name string) bool {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.enabled[name]
}

// Active returns the enabled keywords sorted by name.
func (k *Keywords) Active() []string {
	k.mu.Lock()
	out := make([]string, 0, len(k.enabled))
	for name := range k.enabled {
		out = append(out, name)
	}
	k.mu.Unlock()
	sort.Strings(out)
	return out
}

// Keyword bits as seen by WGSL.
const (
	BitHard            uint32 = 1 << 0
	BitVariance        uint32 = 1 << 1
	BitDrawTransparent uint32 = 1 << 2
)

// Bits packs the known shadow keywords into a bitmask for uniform upload.
func (k *Keywords) Bits() uint32 {
	k.mu.Lock()
	defer k.mu.Unlock()
	var bits uint32
	if k.enabled[KeywordHard] {
		bits |= BitHard
	}
	if k.enabled[KeywordVariance] {
		bits |= BitVariance
	}
	if k.enabled[KeywordDrawTransparent] {
		bits |= BitDrawTransparent
	}
	return bits
}
