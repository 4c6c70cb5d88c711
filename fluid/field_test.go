package fluid

import "testing"

func TestFieldCommitPromotesNext(t *testing.T) {
	f := NewField[float32](3)
	f.Write(1, 1, 5)

	if got := f.Read(1, 1); got != 0 {
		t.Fatalf("write leaked into current generation: got %v", got)
	}

	f.Commit()
	if got := f.Read(1, 1); got != 5 {
		t.Errorf("expected committed value 5, got %v", got)
	}
}

func TestFieldReadClampsCoordinates(t *testing.T) {
	f := NewField[float32](4)
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			f.Write(x, y, float32(y*4+x))
		}
	}
	f.Commit()

	tests := []struct {
		x, y int
		want float32
	}{
		{-1, 0, 0},
		{-5, -5, 0},
		{4, 0, 3},
		{0, 9, 12},
		{10, 10, 15},
		{2, 1, 6},
	}
	for _, tt := range tests {
		if got := f.Read(tt.x, tt.y); got != tt.want {
			t.Errorf("Read(%d,%d) = %v, want %v", tt.x, tt.y, got, tt.want)
		}
	}
}

func TestFieldCarryOver(t *testing.T) {
	f := NewField[Vec2](2)
	f.Write(0, 0, Vec2{1, 2})
	f.Commit()

	f.CarryOver()
	f.Write(1, 1, Vec2{3, 4})
	f.Commit()

	if got := f.Read(0, 0); got != (Vec2{1, 2}) {
		t.Errorf("carried value lost: got %v", got)
	}
	if got := f.Read(1, 1); got != (Vec2{3, 4}) {
		t.Errorf("expected new value, got %v", got)
	}
}

func TestNewStoreRejectsBadSize(t *testing.T) {
	for _, n := range []int{0, -1} {
		s, err := NewStore(n)
		if err == nil || s != nil {
			t.Errorf("NewStore(%d) = %v, %v; want nil store and error", n, s, err)
		}
	}
}

func TestSeedBlob(t *testing.T) {
	s, err := NewStore(16)
	if err != nil {
		t.Fatal(err)
	}
	s.SeedBlob(Blob{CX: 8, CY: 8, Radius: 4, Amount: 2})

	if got := s.Density.Read(8, 8); got != 2 {
		t.Errorf("expected center density 2, got %v", got)
	}
	if got := s.Density.Read(0, 0); got != 0 {
		t.Errorf("expected zero density outside blob, got %v", got)
	}
	if s.Density.Read(10, 8) >= s.Density.Read(9, 8) {
		t.Error("expected density to fall off away from center")
	}
	if s.Mass() <= 0 {
		t.Error("expected positive mass after seeding")
	}
}
