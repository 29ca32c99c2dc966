package sheet

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"

	"github.com/matzehuels/contactsheet/pkg/errors"
	"github.com/matzehuels/contactsheet/pkg/page"
)

func sources(n int) []Source {
	out := make([]Source, n)
	for i := range out {
		out[i] = NewSource(fmt.Sprintf("img%d.png", i), []byte{byte(i + 1)})
	}
	return out
}

func names(s *Sheet) []string {
	var out []string
	for _, sl := range s.Slots() {
		out = append(out, sl.Source.Name)
	}
	return out
}

func TestNew(t *testing.T) {
	s := New()
	if s.Len() != 0 {
		t.Errorf("Len() = %d, want 0", s.Len())
	}
	if s.Orientation() != page.Portrait {
		t.Errorf("Orientation() = %v, want portrait", s.Orientation())
	}
	if s.Remaining() != Capacity {
		t.Errorf("Remaining() = %d, want %d", s.Remaining(), Capacity)
	}
}

func TestAddDefaults(t *testing.T) {
	s := New()
	if err := s.Add(sources(2)...); err != nil {
		t.Fatalf("Add() error: %v", err)
	}
	for i := 0; i < 2; i++ {
		sl, ok := s.Slot(i)
		if !ok {
			t.Fatalf("Slot(%d) missing", i)
		}
		if sl.Rotation != 0 || sl.Scale != DefaultScale {
			t.Errorf("Slot(%d) = rotation %d scale %v, want 0 and %v", i, sl.Rotation, sl.Scale, DefaultScale)
		}
	}
}

func TestAddCapacityScenario(t *testing.T) {
	s := New()
	if err := s.Add(sources(9)...); err != nil {
		t.Fatalf("Add(9) error: %v", err)
	}
	if s.Len() != 9 || !s.Full() {
		t.Fatalf("Len() = %d, want 9", s.Len())
	}

	err := s.Add(sources(1)...)
	if !errors.Is(err, errors.ErrCodeCapacityExceeded) {
		t.Fatalf("Add(1) on full sheet error = %v, want %v", err, errors.ErrCodeCapacityExceeded)
	}
	if s.Len() != 9 {
		t.Errorf("Len() after rejected add = %d, want 9", s.Len())
	}
}

func TestAddIsAtomic(t *testing.T) {
	tests := []struct {
		name     string
		existing int
		add      []Source
		wantCode errors.Code
	}{
		{"overflow by one", 5, sources(5), errors.ErrCodeCapacityExceeded},
		{"too many at once", 0, sources(10), errors.ErrCodeCapacityExceeded},
		{"empty source", 2, []Source{NewSource("a", []byte{1}), NewSource("b", nil)}, errors.ErrCodeInvalidInput},
		{"control char name", 0, []Source{NewSource("bad\x07", []byte{1})}, errors.ErrCodeInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New()
			if err := s.Add(sources(tt.existing)...); err != nil {
				t.Fatalf("setup Add() error: %v", err)
			}
			_ = s.Rotate(0)
			before := s.Snapshot()

			err := s.Add(tt.add...)
			if !errors.Is(err, tt.wantCode) {
				t.Fatalf("Add() error = %v, want %v", err, tt.wantCode)
			}
			after := s.Snapshot()
			if after.Len() != before.Len() {
				t.Fatalf("Len() = %d after failed add, want %d", after.Len(), before.Len())
			}
			for i := range before.Slots {
				if before.Slots[i].Source.ID != after.Slots[i].Source.ID ||
					before.Slots[i].Rotation != after.Slots[i].Rotation {
					t.Errorf("slot %d changed after failed add", i)
				}
			}
		})
	}
}

func TestAddCopiesData(t *testing.T) {
	data := []byte{1, 2, 3}
	s := New()
	if err := s.Add(NewSource("a", data)); err != nil {
		t.Fatal(err)
	}
	data[0] = 99

	sl, _ := s.Slot(0)
	if sl.Source.Data[0] != 1 {
		t.Error("Add() should keep a private copy of the source bytes")
	}
}

func TestAddAssignsMissingID(t *testing.T) {
	s := New()
	if err := s.Add(Source{Name: "a", Data: []byte{1}}); err != nil {
		t.Fatal(err)
	}
	sl, _ := s.Slot(0)
	if sl.Source.ID == uuid.Nil {
		t.Error("Add() should assign an ID to sources without one")
	}
}

func TestRemoveShiftsPreservingOrder(t *testing.T) {
	s := New()
	if err := s.Add(sources(3)...); err != nil {
		t.Fatal(err)
	}
	if err := s.Remove(1); err != nil {
		t.Fatalf("Remove(1) error: %v", err)
	}

	got := names(s)
	want := []string{"img0.png", "img2.png"}
	if len(got) != len(want) {
		t.Fatalf("names = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("slot %d = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestInvalidIndex(t *testing.T) {
	s := New()
	if err := s.Add(sources(2)...); err != nil {
		t.Fatal(err)
	}

	ops := map[string]func(int) error{
		"Remove":      s.Remove,
		"Rotate":      s.Rotate,
		"AdjustScale": func(i int) error { return s.AdjustScale(i, 0.5) },
	}
	for name, op := range ops {
		for _, idx := range []int{-1, 2, 9} {
			t.Run(fmt.Sprintf("%s(%d)", name, idx), func(t *testing.T) {
				if err := op(idx); !errors.Is(err, errors.ErrCodeInvalidIndex) {
					t.Errorf("error = %v, want %v", err, errors.ErrCodeInvalidIndex)
				}
				if s.Len() != 2 {
					t.Errorf("Len() = %d, want 2", s.Len())
				}
			})
		}
	}
}

func TestRotateCycle(t *testing.T) {
	s := New()
	if err := s.Add(sources(1)...); err != nil {
		t.Fatal(err)
	}

	want := []int{90, 180, 270, 0, 90, 180, 270, 0}
	for i, w := range want {
		if err := s.Rotate(0); err != nil {
			t.Fatal(err)
		}
		sl, _ := s.Slot(0)
		if sl.Rotation != w {
			t.Errorf("after %d rotations: %d, want %d", i+1, sl.Rotation, w)
		}
	}
}

func TestRotateFourTimesIsIdentity(t *testing.T) {
	s := New()
	if err := s.Add(sources(1)...); err != nil {
		t.Fatal(err)
	}
	for start := 0; start < 4; start++ {
		before, _ := s.Slot(0)
		for i := 0; i < 4; i++ {
			_ = s.Rotate(0)
		}
		after, _ := s.Slot(0)
		if after.Rotation != before.Rotation {
			t.Errorf("rotation %d became %d after four turns", before.Rotation, after.Rotation)
		}
		_ = s.Rotate(0)
	}
}

func TestAdjustScaleClamps(t *testing.T) {
	deltas := []float64{0.1, -0.1, 5, -5, 0.35, -0.75, 1e9, -1e9, math.Inf(1), math.Inf(-1), math.NaN(), 0.0001}

	s := New()
	if err := s.Add(sources(1)...); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 200; i++ {
		d := deltas[i%len(deltas)] * float64(1+i%3)
		if err := s.AdjustScale(0, d); err != nil {
			t.Fatalf("AdjustScale(%v) error: %v", d, err)
		}
		sl, _ := s.Slot(0)
		if sl.Scale < MinScale || sl.Scale > MaxScale || math.IsNaN(sl.Scale) {
			t.Fatalf("scale %v out of [%v, %v] after delta %v", sl.Scale, MinScale, MaxScale, d)
		}
	}
}

func TestAdjustScaleSaturates(t *testing.T) {
	tests := []struct {
		name  string
		delta float64
		want  float64
	}{
		{"grow past max", 3, MaxScale},
		{"shrink past min", -3, MinScale},
		{"within range", 0.5, 1.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New()
			_ = s.Add(sources(1)...)
			if err := s.AdjustScale(0, tt.delta); err != nil {
				t.Fatalf("AdjustScale() error: %v", err)
			}
			sl, _ := s.Slot(0)
			if math.Abs(sl.Scale-tt.want) > 1e-9 {
				t.Errorf("Scale = %v, want %v", sl.Scale, tt.want)
			}
		})
	}
}

func TestOrientationDoesNotTouchSlots(t *testing.T) {
	s := New()
	_ = s.Add(sources(3)...)
	_ = s.Rotate(1)
	_ = s.AdjustScale(2, 0.4)
	before := s.Slots()

	if err := s.SetOrientation(page.Landscape); err != nil {
		t.Fatal(err)
	}
	if got := s.ToggleOrientation(); got != page.Portrait {
		t.Errorf("ToggleOrientation() = %v, want portrait", got)
	}

	after := s.Slots()
	for i := range before {
		if before[i].Rotation != after[i].Rotation || before[i].Scale != after[i].Scale {
			t.Errorf("slot %d transform changed: %+v -> %+v", i, before[i], after[i])
		}
	}

	if err := s.SetOrientation("diagonal"); !errors.Is(err, errors.ErrCodeInvalidOrientation) {
		t.Errorf("SetOrientation(diagonal) error = %v, want %v", err, errors.ErrCodeInvalidOrientation)
	}
	if s.Orientation() != page.Portrait {
		t.Errorf("Orientation() = %v after invalid set, want portrait", s.Orientation())
	}
}

func TestSnapshotIsFrozen(t *testing.T) {
	s := New()
	_ = s.Add(sources(3)...)
	snap := s.Snapshot()

	_ = s.Rotate(0)
	_ = s.AdjustScale(1, 0.5)
	_ = s.Remove(2)
	s.ToggleOrientation()

	if snap.Len() != 3 {
		t.Fatalf("snapshot Len() = %d, want 3", snap.Len())
	}
	if snap.Slots[0].Rotation != 0 || snap.Slots[1].Scale != DefaultScale {
		t.Errorf("snapshot slots changed after mutation: %+v", snap.Slots[:2])
	}
	if snap.Orientation != page.Portrait {
		t.Errorf("snapshot orientation = %v, want portrait", snap.Orientation)
	}
	if snap.Slots[2].Source.Name != "img2.png" {
		t.Errorf("snapshot slot 2 = %s, want img2.png", snap.Slots[2].Source.Name)
	}
}

func TestReadSource(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "photo.jpg")
	if err := os.WriteFile(path, []byte("data"), 0o644); err != nil {
		t.Fatal(err)
	}

	src, err := ReadSource(path)
	if err != nil {
		t.Fatalf("ReadSource() error: %v", err)
	}
	if src.Name != "photo.jpg" || string(src.Data) != "data" || src.ID == uuid.Nil {
		t.Errorf("ReadSource() = %+v", src)
	}

	_, err = ReadSources([]string{path, filepath.Join(dir, "missing.jpg")})
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("ReadSources() error = %v, want %v", err, errors.ErrCodeFileNotFound)
	}
}
