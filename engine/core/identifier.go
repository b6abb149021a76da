package core

import (
	"fmt"
	"sync"
)

// IdentifierPool hands out uint32 ids from a slot table, reusing
// released slots before growing. Slot 0 is reserved so that a valid id
// is never zero.
type IdentifierPool struct {
	mu     sync.Mutex
	owners []interface{}
}

func NewIdentifierPool() *IdentifierPool {
	p := &IdentifierPool{
		owners: make([]interface{}, 1, 128),
	}
	p.owners[0] = p
	return p
}

func (p *IdentifierPool) Acquire(owner interface{}) uint32 {
	p.mu.Lock()
	defer p.mu.Unlock()

	for i := uint32(1); i < uint32(len(p.owners)); i++ {
		// Existing free slot. Take it.
		if p.owners[i] == nil {
			p.owners[i] = owner
			return i
		}
	}

	p.owners = append(p.owners, owner)
	return uint32(len(p.owners) - 1)
}

func (p *IdentifierPool) Release(id uint32) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if id == 0 || id >= uint32(len(p.owners)) {
		return fmt.Errorf("identifier release: id '%d' out of range (max=%d)", id, len(p.owners)-1)
	}
	p.owners[id] = nil
	return nil
}

// Owner returns whatever was registered for the id, or nil.
func (p *IdentifierPool) Owner(id uint32) interface{} {
	p.mu.Lock()
	defer p.mu.Unlock()

	if id >= uint32(len(p.owners)) {
		return nil
	}
	return p.owners[id]
}
