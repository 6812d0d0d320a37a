package scene

import (
	"testing"

	"github.com/Pascu-Victor/path-tracer/types"
)

func TestPrepareForRenderDedupsByIdentity(t *testing.T) {
	var arena MaterialArena
	red := arena.Diffuse(types.Vec3{0.8, 0.2, 0.2}, 0.7, 0.1)
	mirror := arena.Mirror(types.Vec3{0.9, 0.9, 0.9}, 0.9)
	// Value-identical to red but a distinct identity; must NOT be merged.
	redTwin := arena.Diffuse(types.Vec3{0.8, 0.2, 0.2}, 0.7, 0.1)

	spheres := []Sphere{
		NewSphere(types.Vec3{0, 0, -1}, 0.5, types.Vec3{0.8, 0.2, 0.2}, red),
		NewSphere(types.Vec3{1, 0, -1}, 0.3, types.Vec3{0.9, 0.9, 0.9}, mirror),
		NewSphere(types.Vec3{2, 0, -1}, 0.3, types.Vec3{0.8, 0.2, 0.2}, red),
		NewSphere(types.Vec3{3, 0, -1}, 0.3, types.Vec3{0.8, 0.2, 0.2}, redTwin),
	}
	ellipsoids := []Ellipsoid{
		NewEllipsoid(types.Vec3{-2, 0.8, -1}, types.Vec3{0.5, 0.8, 0.3}, types.Vec3{0.8, 0.4, 0.8}, mirror),
	}

	table, err := PrepareForRender(&arena, spheres, ellipsoids, nil)
	if err != nil {
		t.Fatalf("expected no error; got %v", err)
	}

	if len(table) != 3 {
		t.Fatalf("expected 3 distinct materials; got %d", len(table))
	}

	wantIndices := []int32{0, 1, 0, 2}
	for i, want := range wantIndices {
		if spheres[i].MaterialIndex != want {
			t.Fatalf("expected sphere %d to resolve to index %d; got %d", i, want, spheres[i].MaterialIndex)
		}
	}
	if ellipsoids[0].MaterialIndex != 1 {
		t.Fatalf("expected ellipsoid to reuse mirror index 1; got %d", ellipsoids[0].MaterialIndex)
	}

	// Every resolved index must point at a table entry equal to the
	// originally referenced material.
	for i := range spheres {
		mat, _ := arena.Get(spheres[i].Material)
		if table[spheres[i].MaterialIndex] != *mat {
			t.Fatalf("sphere %d index %d does not round-trip to its material", i, spheres[i].MaterialIndex)
		}
	}
}

func TestPrepareForRenderSkipsShapesWithoutMaterial(t *testing.T) {
	var arena MaterialArena
	spheres := []Sphere{NewSphere(types.Vec3{}, 1, types.Vec3{1, 1, 1}, NoMaterial)}

	table, err := PrepareForRender(&arena, spheres, nil, nil)
	if err != nil {
		t.Fatalf("expected no error; got %v", err)
	}
	if len(table) != 0 {
		t.Fatalf("expected empty table; got %d entries", len(table))
	}
	if spheres[0].MaterialIndex != -1 {
		t.Fatalf("expected unresolved index -1; got %d", spheres[0].MaterialIndex)
	}
}

func TestPrepareForRenderRejectsDanglingHandle(t *testing.T) {
	var arena MaterialArena
	spheres := []Sphere{NewSphere(types.Vec3{}, 1, types.Vec3{1, 1, 1}, MaterialID(42))}

	if _, err := PrepareForRender(&arena, spheres, nil, nil); err == nil {
		t.Fatal("expected error for dangling material handle; got nil")
	}
}
