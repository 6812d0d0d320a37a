package scene

import (
	"github.com/Pascu-Victor/path-tracer/types"
)

// Scene aggregates everything a tracer needs for a frame: the shape
// collections (slice order is the hit-test scan order), the lights, the
// camera, the background gradient and the material arena plus its interned
// table.
type Scene struct {
	Materials MaterialArena

	Spheres    []Sphere
	Ellipsoids []Ellipsoid
	Volumes    []VolumetricBlock
	Lights     []Light

	Camera *Camera

	// Background gradient, interpolated by the ray direction's vertical
	// component.
	BgColorTop    types.Vec3
	BgColorBottom types.Vec3

	// Hard recursion budget for reflection bounces.
	MaxDepth int32

	// Interned material table; valid after Prepare and until any shape's
	// material reference changes.
	MaterialTable []Material
}

// NewScene returns a scene with the reference background gradient and
// bounce budget.
func NewScene() *Scene {
	return &Scene{
		BgColorTop:    types.Vec3{0.5, 0.7, 1.0},
		BgColorBottom: types.Vec3{1, 1, 1},
		MaxDepth:      5,
	}
}

// Prepare runs the material interning pass, resolving every shape's
// MaterialIndex and rebuilding the dense table. Tracers read the scene
// concurrently, so Prepare must run before the scene is handed to them.
func (sc *Scene) Prepare() error {
	table, err := PrepareForRender(&sc.Materials, sc.Spheres, sc.Ellipsoids, sc.Volumes)
	if err != nil {
		return err
	}
	sc.MaterialTable = table
	return nil
}

// Prepared reports whether the material interning pass has run for the
// scene's current material set.
func (sc *Scene) Prepared() bool {
	return len(sc.MaterialTable) > 0 || sc.Materials.Len() == 0
}

// MaterialAt returns the interned material for a resolved index, or nil
// for -1 or an out-of-range index.
func (sc *Scene) MaterialAt(index int32) *Material {
	if index < 0 || int(index) >= len(sc.MaterialTable) {
		return nil
	}
	return &sc.MaterialTable[index]
}
