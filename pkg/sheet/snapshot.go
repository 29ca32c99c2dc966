package sheet

import "github.com/matzehuels/contactsheet/pkg/page"

// Snapshot is a frozen copy of a sheet. Mutating the sheet after the
// snapshot was taken never affects it. Source bytes are shared with the
// sheet; both sides treat them as read-only.
type Snapshot struct {
	Slots       []Slot
	Orientation page.Orientation
}

// Snapshot freezes the current state of the sheet.
func (s *Sheet) Snapshot() Snapshot {
	return Snapshot{Slots: s.Slots(), Orientation: s.orientation}
}

// Len returns the number of occupied slots in the snapshot.
func (s Snapshot) Len() int { return len(s.Slots) }

// Empty reports whether the snapshot has no slots.
func (s Snapshot) Empty() bool { return len(s.Slots) == 0 }
