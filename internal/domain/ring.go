package domain

import "fmt"

// MaxEncounters is the number of encounter slots kept per entry.
const MaxEncounters = 128

// FirstSlot holds the first-ever encounter of an entry.
const FirstSlot = 0

// SlotFor returns the ring slot of the n-th subsequent encounter (n >= 1).
// Subsequent encounters cycle through slots 1..MaxEncounters-1 so the first
// encounter in slot 0 survives every wraparound.
func SlotFor(n int) int {
	if n < 1 {
		n = 1
	}
	return ((n - 1) % (MaxEncounters - 1)) + 1
}

// EncounterLog is the slot-addressed view of an entry's stored encounters.
type EncounterLog struct {
	slots [MaxEncounters]*Encounter
}

// NewEncounterLog arranges stored encounters by slot.
func NewEncounterLog(encounters []*Encounter) (*EncounterLog, error) {
	log := &EncounterLog{}
	for _, enc := range encounters {
		if enc.Slot < 0 || enc.Slot >= MaxEncounters {
			return nil, fmt.Errorf("%w: encounter slot %d out of range", ErrValidation, enc.Slot)
		}
		log.slots[enc.Slot] = enc
	}
	return log, nil
}

// Record places enc as the n-th subsequent encounter and returns its slot.
// Whatever occupied the slot before is replaced.
func (l *EncounterLog) Record(n int, enc *Encounter) int {
	slot := SlotFor(n)
	enc.Slot = slot
	l.slots[slot] = enc
	return slot
}

// First returns the first-ever encounter, or nil when none was recorded.
func (l *EncounterLog) First() *Encounter {
	return l.slots[FirstSlot]
}

// HighestSlot returns the occupied encounter with the highest slot index.
// After a wraparound this is not necessarily the most recent sighting.
func (l *EncounterLog) HighestSlot() *Encounter {
	for i := MaxEncounters - 1; i >= 0; i-- {
		if l.slots[i] != nil {
			return l.slots[i]
		}
	}
	return nil
}

// Len returns the number of occupied slots.
func (l *EncounterLog) Len() int {
	n := 0
	for _, enc := range l.slots {
		if enc != nil {
			n++
		}
	}
	return n
}

// Encounters returns the occupied slots in slot order.
func (l *EncounterLog) Encounters() []*Encounter {
	out := make([]*Encounter, 0, l.Len())
	for _, enc := range l.slots {
		if enc != nil {
			out = append(out, enc)
		}
	}
	return out
}
