package store

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Slot names a persistent bucket holding one collection or singleton.
type Slot string

const (
	SlotBookings Slot = "bookings"
	SlotCart     Slot = "cart"
	SlotServices Slot = "services"
	SlotUser     Slot = "user"
)

// AllSlots lists every slot the layer uses.
var AllSlots = []Slot{SlotBookings, SlotCart, SlotServices, SlotUser}

// ErrUnknownSlot is returned for slot names outside AllSlots.
var ErrUnknownSlot = errors.New("unknown slot")

// Valid reports whether s is one of AllSlots.
func (s Slot) Valid() bool {
	for _, known := range AllSlots {
		if s == known {
			return true
		}
	}
	return false
}

func (s Slot) check() error {
	if !s.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownSlot, string(s))
	}
	return nil
}

// Snapshot is the stored state of one slot at read time.
// Exists is false (and Doc nil) when nothing has been saved to the slot.
type Snapshot struct {
	Slot      Slot
	Doc       []byte
	Revision  int64
	Exists    bool
	UpdatedAt time.Time
}

// SlotInfo summarises a stored slot without its document.
type SlotInfo struct {
	Name      Slot      `json:"name"`
	Revision  int64     `json:"revision"`
	Size      int       `json:"size"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Backend is the load/save contract the ledgers depend on.
// *Store implements it.
type Backend interface {
	Load(ctx context.Context, slot Slot) (Snapshot, error)
	Save(ctx context.Context, slot Slot, doc []byte) error
	Remove(ctx context.Context, slot Slot) error
}
