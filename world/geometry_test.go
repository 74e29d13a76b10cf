package world

import (
	"testing"
)

func TestCuboidPositions(t *testing.T) {
	t.Run("single block", func(t *testing.T) {
		got := CuboidPositions(Position{1, 2, 3}, Position{1, 2, 3})
		if len(got) != 1 || got[0] != (Position{1, 2, 3}) {
			t.Errorf("got %v, want single position (1, 2, 3)", got)
		}
	})

	t.Run("count", func(t *testing.T) {
		got := CuboidPositions(Position{0, 0, 0}, Position{2, 3, 4})
		if len(got) != 3*4*5 {
			t.Errorf("got %d positions, want %d", len(got), 3*4*5)
		}
	})

	t.Run("corners in either order", func(t *testing.T) {
		forward := CuboidPositions(Position{0, 0, 0}, Position{2, 2, 2})
		reverse := CuboidPositions(Position{2, 2, 2}, Position{0, 0, 0})
		if len(forward) != len(reverse) {
			t.Fatalf("forward %d positions, reverse %d", len(forward), len(reverse))
		}
		// Same set, opposite iteration order.
		seen := make(map[Position]bool, len(forward))
		for _, p := range forward {
			seen[p] = true
		}
		for _, p := range reverse {
			if !seen[p] {
				t.Errorf("reverse iteration produced %v outside the forward set", p)
			}
		}
	})

	t.Run("first position is first corner", func(t *testing.T) {
		got := CuboidPositions(Position{5, 5, 5}, Position{3, 3, 3})
		if got[0] != (Position{5, 5, 5}) {
			t.Errorf("iteration should start at the given first corner, got %v", got[0])
		}
	})
}

func TestShellPositions(t *testing.T) {
	got := ShellPositions(Position{0, 0, 0}, Position{2, 2, 2})
	// 3x3x3 cube minus the single interior block.
	if len(got) != 27-1 {
		t.Errorf("got %d shell positions, want 26", len(got))
	}
	for _, p := range got {
		if p == (Position{1, 1, 1}) {
			t.Error("shell must not contain the interior position")
		}
	}
}

func TestWireframePositions(t *testing.T) {
	got := WireframePositions(Position{0, 0, 0}, Position{2, 2, 2})
	// 12 edges of 3 blocks share 8 corners: 12*3 - 2*8 = 20.
	if len(got) != 20 {
		t.Errorf("got %d wireframe positions, want 20", len(got))
	}
	for _, p := range got {
		if p == (Position{1, 1, 0}) || p == (Position{1, 1, 1}) {
			t.Errorf("wireframe must not contain face or interior position %v", p)
		}
	}
}

func TestLine2D(t *testing.T) {
	t.Run("horizontal", func(t *testing.T) {
		got := Line2D(0, 0, 3, 0)
		if len(got) != 4 {
			t.Fatalf("got %d points, want 4", len(got))
		}
		if got[0] != [2]int{0, 0} || got[3] != [2]int{3, 0} {
			t.Errorf("endpoints wrong: %v .. %v", got[0], got[3])
		}
	})

	t.Run("diagonal", func(t *testing.T) {
		got := Line2D(0, 0, 3, 3)
		if len(got) != 4 {
			t.Fatalf("got %d points, want 4", len(got))
		}
		for i, p := range got {
			if p != [2]int{i, i} {
				t.Errorf("point %d = %v, want (%d, %d)", i, p, i, i)
			}
		}
	})

	t.Run("single point", func(t *testing.T) {
		got := Line2D(7, -2, 7, -2)
		if len(got) != 1 || got[0] != [2]int{7, -2} {
			t.Errorf("got %v, want single point (7, -2)", got)
		}
	})
}
