package bridge

import (
	"errors"
	"fmt"
	"testing"

	"github.com/voxelforge/gdmc-bridge/bridge/session"
	"github.com/voxelforge/gdmc-bridge/world"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"session unavailable", session.ErrUnavailable, KindSessionUnavailable},
		{"unreachable", world.ErrUnreachable, KindConnection},
		{"wrapped unreachable", fmt.Errorf("%w: dial tcp", world.ErrUnreachable), KindConnection},
		{"build area not set", world.ErrBuildAreaNotSet, KindPrecondition},
		{"no heightmap data", world.ErrNoHeightmapData, KindUnavailable},
		{"unknown error", errors.New("exploded"), KindOperationFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize("test_op", tt.err)
			if got.Kind != tt.want {
				t.Errorf("Normalize kind = %v, want %v", got.Kind, tt.want)
			}
			if got.Op != "test_op" {
				t.Errorf("op = %q", got.Op)
			}
			if !errors.Is(got, tt.err) {
				t.Error("normalized error should wrap the original")
			}
		})
	}
}

func TestNormalizePassthrough(t *testing.T) {
	orig := ValidationError("place_block", errors.New("bad position"))
	got := Normalize("place_block", orig)
	if got != orig {
		t.Error("already-classified errors must pass through unchanged")
	}
}

func TestBuildAreaNotSetIsNotOperationFailed(t *testing.T) {
	got := Normalize("build_area", world.ErrBuildAreaNotSet)
	if got.Kind == KindOperationFailed {
		t.Error("an undesignated build area must not be classified as a backend fault")
	}
}

func TestKindOf(t *testing.T) {
	if KindOf(errors.New("plain")) != KindOperationFailed {
		t.Error("unclassified errors default to operation_failed")
	}
	wrapped := fmt.Errorf("context: %w", OutOfBounds("block_at", world.Position{X: 1, Y: 2, Z: 3}))
	if KindOf(wrapped) != KindOutOfBounds {
		t.Error("KindOf should see through wrapping")
	}
}

func TestErrorMessage(t *testing.T) {
	e := OutOfBounds("block_at", world.Position{X: 100000, Y: 64, Z: 100000})
	msg := e.Error()
	if msg == "" {
		t.Fatal("empty error message")
	}
	want := "block_at: out_of_bounds: position (100000, 64, 100000) is outside the loaded world"
	if msg != want {
		t.Errorf("Error() = %q, want %q", msg, want)
	}
}
