package domain

import (
	"testing"

	"github.com/google/uuid"
)

func TestSlotFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		n    int
		want int
	}{
		{n: 1, want: 1},
		{n: 2, want: 2},
		{n: 126, want: 126},
		{n: 127, want: 127},
		{n: 128, want: 1},
		{n: 129, want: 2},
		{n: 254, want: 127},
		{n: 255, want: 1},
		{n: 0, want: 1},
	}

	for _, tc := range tests {
		if got := SlotFor(tc.n); got != tc.want {
			t.Errorf("SlotFor(%d) = %d, want %d", tc.n, got, tc.want)
		}
	}
}

func TestSlotForNeverReturnsFirstSlot(t *testing.T) {
	t.Parallel()

	for n := 1; n <= 3*MaxEncounters; n++ {
		slot := SlotFor(n)
		if slot == FirstSlot || slot >= MaxEncounters {
			t.Fatalf("SlotFor(%d) = %d, outside 1..%d", n, slot, MaxEncounters-1)
		}
	}
}

func TestEncounterLogWraparound(t *testing.T) {
	t.Parallel()

	entryID := uuid.New()
	log, err := NewEncounterLog([]*Encounter{{EntryID: entryID, Slot: FirstSlot, Day: 0, Sentence: "first"}})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	// 200 encounters in total: the first plus 199 subsequent ones.
	for n := 1; n < 200; n++ {
		log.Record(n, &Encounter{EntryID: entryID, Day: n})
	}

	if log.Len() != MaxEncounters {
		t.Errorf("Expected %d occupied slots, got %d", MaxEncounters, log.Len())
	}

	first := log.First()
	if first == nil || first.Sentence != "first" || first.Day != 0 {
		t.Errorf("Expected first encounter to survive wraparound, got %+v", first)
	}

	// Subsequent encounter 199 landed in slot ((199-1) % 127) + 1 = 72.
	if got := log.slots[72].Day; got != 199 {
		t.Errorf("Expected slot 72 to hold day 199, got %d", got)
	}

	// Slot 127 was last written by encounter 127 and is now stale.
	highest := log.HighestSlot()
	if highest == nil || highest.Slot != MaxEncounters-1 || highest.Day != 127 {
		t.Errorf("Expected highest slot to be the stale slot 127 entry, got %+v", highest)
	}
}

func TestNewEncounterLogRejectsOutOfRangeSlot(t *testing.T) {
	t.Parallel()

	_, err := NewEncounterLog([]*Encounter{{Slot: MaxEncounters}})
	if err == nil {
		t.Fatal("Expected error for out-of-range slot, got nil")
	}
}

func TestEncounterLogEmpty(t *testing.T) {
	t.Parallel()

	log, err := NewEncounterLog(nil)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if log.First() != nil || log.HighestSlot() != nil {
		t.Error("Expected empty log to have no first or highest encounter")
	}
	if len(log.Encounters()) != 0 {
		t.Errorf("Expected no encounters, got %d", len(log.Encounters()))
	}
}
