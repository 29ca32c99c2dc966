// Package sheet holds the editable state of a contact sheet: up to nine
// image slots, each with a rotation and a scale, and the page orientation.
//
// A [Sheet] is mutated by a single goroutine. Long-running work such as an
// export must not read the live sheet; it takes a [Snapshot] first and works
// on that instead.
package sheet

import (
	"math"
	"slices"

	"github.com/matzehuels/contactsheet/pkg/errors"
	"github.com/matzehuels/contactsheet/pkg/page"
)

const (
	// Capacity is the maximum number of slots on a sheet.
	Capacity = 9

	// Slot scale bounds and the scale of a newly added image.
	MinScale     = 0.1
	MaxScale     = 2.0
	DefaultScale = 1.0

	// RotationStep is the rotation applied by one call to Rotate.
	RotationStep = 90
)

// Slot is one image on the sheet together with its transform.
// Rotation is clockwise in degrees and always one of 0, 90, 180 or 270.
type Slot struct {
	Source   Source
	Rotation int
	Scale    float64
}

// Sheet is an ordered list of at most Capacity slots plus the orientation.
// The zero value is not usable; call New.
type Sheet struct {
	slots       []Slot
	orientation page.Orientation
}

// New returns an empty portrait sheet.
func New() *Sheet {
	return &Sheet{
		slots:       make([]Slot, 0, Capacity),
		orientation: page.Portrait,
	}
}

// Len returns the number of occupied slots.
func (s *Sheet) Len() int { return len(s.slots) }

// Full reports whether no more images can be added.
func (s *Sheet) Full() bool { return len(s.slots) >= Capacity }

// Remaining returns how many more images fit.
func (s *Sheet) Remaining() int { return Capacity - len(s.slots) }

// Orientation returns the page orientation.
func (s *Sheet) Orientation() page.Orientation { return s.orientation }

// Slot returns slot i and whether it exists.
func (s *Sheet) Slot(i int) (Slot, bool) {
	if i < 0 || i >= len(s.slots) {
		return Slot{}, false
	}
	return s.slots[i], true
}

// Slots returns a copy of the slot list.
func (s *Sheet) Slots() []Slot {
	out := make([]Slot, len(s.slots))
	copy(out, s.slots)
	return out
}

// Add appends sources as new slots with no rotation and unit scale.
// Either every source is added or none is: when the result would exceed
// Capacity, or any source is empty, the sheet is left unchanged.
func (s *Sheet) Add(sources ...Source) error {
	if len(sources) > Capacity {
		return errors.New(errors.ErrCodeCapacityExceeded,
			"select up to %d images at a time (got %d)", Capacity, len(sources))
	}
	if len(s.slots)+len(sources) > Capacity {
		return errors.New(errors.ErrCodeCapacityExceeded,
			"a sheet holds at most %d images (%d present, %d requested)", Capacity, len(s.slots), len(sources))
	}
	for i, src := range sources {
		if err := src.validate(len(s.slots) + i); err != nil {
			return err
		}
	}
	for _, src := range sources {
		s.slots = append(s.slots, Slot{Source: src.clone(), Scale: DefaultScale})
	}
	return nil
}

// Remove deletes slot i; later slots move down by one and keep their order.
func (s *Sheet) Remove(i int) error {
	if err := s.checkIndex(i); err != nil {
		return err
	}
	s.slots = slices.Delete(s.slots, i, i+1)
	return nil
}

// Rotate turns slot i a further 90 degrees clockwise.
func (s *Sheet) Rotate(i int) error {
	if err := s.checkIndex(i); err != nil {
		return err
	}
	s.slots[i].Rotation = (s.slots[i].Rotation + RotationStep) % 360
	return nil
}

// AdjustScale adds delta to the scale of slot i, clamping the result to
// [MinScale, MaxScale]. Saturation is not an error. A NaN delta is ignored.
func (s *Sheet) AdjustScale(i int, delta float64) error {
	if err := s.checkIndex(i); err != nil {
		return err
	}
	if math.IsNaN(delta) {
		return nil
	}
	s.slots[i].Scale = ClampScale(s.slots[i].Scale + delta)
	return nil
}

// SetOrientation sets the page orientation. Slot transforms are untouched.
func (s *Sheet) SetOrientation(o page.Orientation) error {
	if !o.Valid() {
		return errors.New(errors.ErrCodeInvalidOrientation, "invalid orientation: %q", string(o))
	}
	s.orientation = o
	return nil
}

// ToggleOrientation flips between portrait and landscape.
func (s *Sheet) ToggleOrientation() page.Orientation {
	s.orientation = s.orientation.Toggle()
	return s.orientation
}

func (s *Sheet) checkIndex(i int) error {
	if i < 0 || i >= len(s.slots) {
		return errors.New(errors.ErrCodeInvalidIndex,
			"slot %d out of range (sheet has %d images)", i, len(s.slots))
	}
	return nil
}

// ClampScale limits v to [MinScale, MaxScale].
func ClampScale(v float64) float64 {
	return math.Max(MinScale, math.Min(MaxScale, v))
}
