package world

import (
	"testing"
)

func TestPositionSlice(t *testing.T) {
	p := Position{10, 64, -20}
	got := p.Slice()
	want := []int{10, 64, -20}
	if len(got) != 3 {
		t.Fatalf("Slice() returned %d elements, want 3", len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Slice()[%d] = %d, want %d", i, got[i], want[i])
		}
	}
}

func TestBoxEnd(t *testing.T) {
	b := Box{Offset: Position{-32, 0, -32}, Size: Position{64, 256, 64}}
	end := b.End()
	if end != (Position{32, 256, 32}) {
		t.Errorf("End() = %v, want (32, 256, 32)", end)
	}
}

func TestBoxCenter(t *testing.T) {
	b := Box{Offset: Position{0, 60, 0}, Size: Position{100, 10, 50}}
	c := b.Center()
	if c != (Position{50, 60, 25}) {
		t.Errorf("Center() = %v, want (50, 60, 25)", c)
	}
}

func TestBlockValidate(t *testing.T) {
	tests := []struct {
		name    string
		block   Block
		wantErr bool
	}{
		{"valid", NewBlock("minecraft:stone"), false},
		{"empty id", Block{}, true},
		{"whitespace id", Block{ID: "   "}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.block.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestBlockString(t *testing.T) {
	b := Block{ID: "minecraft:oak_planks", States: map[string]string{"axis": "y"}}
	if got := b.String(); got != "Block(minecraft:oak_planks)" {
		t.Errorf("String() = %q, want %q", got, "Block(minecraft:oak_planks)")
	}
}

func TestParseHeightmapType(t *testing.T) {
	t.Run("valid types", func(t *testing.T) {
		for _, typ := range HeightmapTypes() {
			got, err := ParseHeightmapType(string(typ))
			if err != nil {
				t.Errorf("ParseHeightmapType(%q) error: %v", typ, err)
			}
			if got != typ {
				t.Errorf("ParseHeightmapType(%q) = %q", typ, got)
			}
		}
	})

	t.Run("invalid type", func(t *testing.T) {
		if _, err := ParseHeightmapType("LAVA_SURFACE"); err == nil {
			t.Error("expected error for unknown heightmap type")
		}
	})

	t.Run("case sensitive", func(t *testing.T) {
		if _, err := ParseHeightmapType("world_surface"); err == nil {
			t.Error("expected error for lowercase heightmap type")
		}
	})
}
