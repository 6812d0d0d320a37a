package scene

import (
	"testing"

	"github.com/Pascu-Victor/path-tracer/types"
)

func TestMaterialArenaGet(t *testing.T) {
	var arena MaterialArena
	id := arena.Add(Material{
		Color:   types.Vec3{0.8, 0.2, 0.2},
		Diffuse: 0.7,
	})

	mat, ok := arena.Get(id)
	if !ok {
		t.Fatal("expected Get to find the added material")
	}
	if mat.Color != (types.Vec3{0.8, 0.2, 0.2}) || mat.Diffuse != 0.7 {
		t.Fatalf("expected the added material back; got %+v", mat)
	}

	if _, ok = arena.Get(NoMaterial); ok {
		t.Fatal("expected Get to reject NoMaterial")
	}
	if _, ok = arena.Get(MaterialID(42)); ok {
		t.Fatal("expected Get to reject an out-of-range handle")
	}
}
