package scheme

import (
	"context"
	"errors"
	"testing"

	"github.com/jmylchreest/scheming/internal/colour"
	"github.com/jmylchreest/scheming/internal/dichromacy"
	"github.com/jmylchreest/scheming/internal/gamut"
)

func TestNewDefaultLimits(t *testing.T) {
	s, err := New(5, WithSeed(1))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if s.Len() != 5 {
		t.Fatalf("Len() = %d, want 5", s.Len())
	}
	if s.Limits() != gamut.DefaultLimits() {
		t.Errorf("Limits() = %+v, want defaults", s.Limits())
	}

	for i, c := range s.Colours() {
		lab := c.Lab()
		if lab.L < 0 || lab.L > 100 {
			t.Errorf("colour %d lightness %v outside [0, 100]", i, lab.L)
		}
		if len(c.Hex()) != 7 || c.Hex()[0] != '#' {
			t.Errorf("colour %d hex %q", i, c.Hex())
		}
		if c.RGB().Hex() != c.Hex() {
			t.Errorf("colour %d hex %q does not match rgb %v", i, c.Hex(), c.RGB())
		}
	}
}

func TestNewRejectsBadInput(t *testing.T) {
	if _, err := New(0); err == nil {
		t.Error("expected error for zero colours")
	}

	bad := gamut.DefaultLimits()
	bad.Chroma = gamut.Interval{Low: 50, High: 10}
	if _, err := New(3, WithLimits(bad)); !errors.Is(err, gamut.ErrInvalidRange) {
		t.Errorf("New() with inverted chroma error = %v, want ErrInvalidRange", err)
	}

	if _, err := New(3, WithSteps(-1, 1)); err == nil {
		t.Error("expected error for negative steps")
	}
}

func TestSeedIsDeterministic(t *testing.T) {
	a, _ := New(6, WithSeed(99))
	b, _ := New(6, WithSeed(99))

	for i := range a.Len() {
		if a.Colour(i).Hex() != b.Colour(i).Hex() {
			t.Fatalf("colour %d differs: %s vs %s", i, a.Colour(i).Hex(), b.Colour(i).Hex())
		}
	}
}

func TestRerollWithinNarrowHue(t *testing.T) {
	s, err := New(8, WithSeed(3))
	if err != nil {
		t.Fatal(err)
	}
	if err := s.SetHueLimit(40, 70); err != nil {
		t.Fatalf("SetHueLimit() error = %v", err)
	}

	for range 3 {
		if err := s.Reroll(); err != nil {
			t.Fatalf("Reroll() error = %v", err)
		}
		aMin, aMax, bMin, bMax := gamut.LabBounds(s.Limits().Hue, s.Limits().Chroma)
		box := gamut.Box{AMin: aMin, AMax: aMax, BMin: bMin, BMax: bMax}
		if box != s.Bounds() {
			t.Fatalf("Bounds() = %+v, want %+v", s.Bounds(), box)
		}
		for i, c := range s.Colours() {
			lab := c.Lab()
			if !box.Contains(lab.A, lab.B, 1e-9) {
				t.Errorf("colour %d (a=%v, b=%v) outside %+v", i, lab.A, lab.B, box)
			}
		}
	}
}

func TestSetLimitsDoNotReroll(t *testing.T) {
	s, _ := New(4, WithSeed(5))
	before := s.Hex()

	if err := s.SetLightLimit(20, 80); err != nil {
		t.Fatal(err)
	}
	if err := s.SetChromaLimit(10, 20); err != nil {
		t.Fatal(err)
	}
	for i, h := range s.Hex() {
		if h != before[i] {
			t.Fatalf("colour %d changed from %s to %s without a reroll", i, before[i], h)
		}
	}

	if err := s.Reroll(); err != nil {
		t.Fatal(err)
	}
	for i, c := range s.Colours() {
		if l := c.Lab().L; l < 20 || l > 80 {
			t.Errorf("colour %d lightness %v outside [20, 80]", i, l)
		}
	}
}

func TestSetLimitRejectsInverted(t *testing.T) {
	s, _ := New(2, WithSeed(1))
	tests := []struct {
		name string
		call func() error
	}{
		{name: "hue", call: func() error { return s.SetHueLimit(200, 100) }},
		{name: "chroma", call: func() error { return s.SetChromaLimit(90, 10) }},
		{name: "light", call: func() error { return s.SetLightLimit(60, 50) }},
		{name: "all", call: func() error {
			return s.SetLimits(gamut.Limits{Light: gamut.Interval{Low: 2, High: 1}})
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var rangeErr *gamut.InvalidRangeError
			if err := tt.call(); !errors.As(err, &rangeErr) {
				t.Errorf("error = %v, want *gamut.InvalidRangeError", err)
			}
		})
	}
	if s.Limits() != gamut.DefaultLimits() {
		t.Errorf("limits changed after rejected updates: %+v", s.Limits())
	}
}

func TestReorder(t *testing.T) {
	s, _ := New(4, WithSeed(11))
	orig := s.Colours()

	if err := s.Reorder([]int{3, 2, 1, 0}); err != nil {
		t.Fatalf("Reorder() error = %v", err)
	}
	for i := range 4 {
		if s.Colour(i) != orig[3-i] {
			t.Errorf("position %d holds %s, want %s", i, s.Colour(i).Hex(), orig[3-i].Hex())
		}
	}

	for _, perm := range [][]int{{0, 1, 2}, {0, 1, 2, 2}, {0, 1, 2, 4}, {-1, 0, 1, 2}} {
		if err := s.Reorder(perm); !errors.Is(err, ErrInvalidPermutation) {
			t.Errorf("Reorder(%v) error = %v, want ErrInvalidPermutation", perm, err)
		}
	}
}

func TestSwapAndMove(t *testing.T) {
	s, _ := New(4, WithSeed(12))
	c := s.Colours()

	if err := s.Swap(0, 3); err != nil {
		t.Fatal(err)
	}
	if s.Colour(0) != c[3] || s.Colour(3) != c[0] {
		t.Fatal("Swap(0, 3) did not exchange colours")
	}
	if err := s.Swap(0, 3); err != nil {
		t.Fatal(err)
	}

	for _, pair := range [][2]int{{0, 4}, {-1, 2}, {4, 4}} {
		if err := s.Swap(pair[0], pair[1]); err == nil {
			t.Errorf("Swap(%d, %d) should fail for 4 colours", pair[0], pair[1])
		}
	}
	for i := range c {
		if s.Colour(i) != c[i] {
			t.Fatalf("failed Swap changed position %d", i)
		}
	}

	if err := s.Move(0, 2); err != nil {
		t.Fatal(err)
	}
	want := []colour.Colour{c[1], c[2], c[0], c[3]}
	for i := range want {
		if s.Colour(i) != want[i] {
			t.Fatalf("after Move(0, 2) position %d = %s, want %s", i, s.Colour(i).Hex(), want[i].Hex())
		}
	}

	if err := s.Move(2, 0); err != nil {
		t.Fatal(err)
	}
	for i := range c {
		if s.Colour(i) != c[i] {
			t.Fatalf("Move(2, 0) did not restore order at %d", i)
		}
	}

	if err := s.Move(0, 4); err == nil {
		t.Error("expected error for out of range move")
	}
}

func TestResize(t *testing.T) {
	s, _ := New(3, WithSeed(2))
	if err := s.Resize(7); err != nil {
		t.Fatal(err)
	}
	if s.Len() != 7 {
		t.Errorf("Len() = %d after Resize(7)", s.Len())
	}
	if err := s.Resize(0); err == nil {
		t.Error("expected error for Resize(0)")
	}
	if s.Len() != 7 {
		t.Errorf("Len() = %d after failed resize, want 7", s.Len())
	}
}

func TestGenerate(t *testing.T) {
	p := DefaultParams()
	p.Count = 5
	p.Seed, p.Seeded = 7, true

	s, err := Generate(context.Background(), p)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if s.Len() != 5 {
		t.Errorf("Len() = %d, want 5", s.Len())
	}

	again, _ := Generate(context.Background(), p)
	for i := range s.Len() {
		if s.Colour(i) != again.Colour(i) {
			t.Fatalf("seeded Generate() differs at %d", i)
		}
	}

	p.Count = 0
	if _, err := Generate(context.Background(), p); err == nil {
		t.Error("expected error for zero count")
	}
}

func TestGenerateCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := DefaultParams()
	if _, err := Generate(ctx, p); !errors.Is(err, context.Canceled) {
		t.Errorf("Generate() error = %v, want context.Canceled", err)
	}
}

func TestSimulate(t *testing.T) {
	s, _ := New(6, WithSeed(4))

	normal, err := s.Simulate(dichromacy.Normal)
	if err != nil {
		t.Fatal(err)
	}
	for i, c := range normal {
		if c != s.Colour(i).RGB() {
			t.Errorf("normal simulation changed colour %d", i)
		}
	}

	grey, err := s.Simulate(dichromacy.Achromatopsia)
	if err != nil {
		t.Fatal(err)
	}
	for i, c := range grey {
		if !c.IsGrey() {
			t.Errorf("achromatopsia colour %d = %v", i, c)
		}
	}
}
