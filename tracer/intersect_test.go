package tracer

import (
	"math"
	"testing"

	"github.com/Pascu-Victor/path-tracer/scene"
	"github.com/Pascu-Victor/path-tracer/types"
)

func TestSphereRootsStraddleCenter(t *testing.T) {
	sc := scene.NewScene()
	sc.Spheres = []scene.Sphere{
		scene.NewSphere(types.Vec3{0, 0, -2}, 0.5, types.Vec3{1, 1, 1}, scene.NoMaterial),
	}
	ray := Ray{Origin: types.Vec3{0, 0, 0}, Dir: types.Vec3{0, 0, -1}}
	ref := scene.ShapeRef{Kind: scene.SphereShape, Index: 0}

	// A ray through the center hits at distance(origin, center) +/- radius.
	hit, ok := intersectShape(sc, ref, ray, 0.001, maxRayDistance)
	if !ok {
		t.Fatal("expected near-root hit; got miss")
	}
	if math.Abs(float64(hit.T-1.5)) > 1e-5 {
		t.Fatalf("expected near root t=1.5; got %f", hit.T)
	}

	// Raising tMin past the near root must yield the far root.
	hit, ok = intersectShape(sc, ref, ray, 2.0, maxRayDistance)
	if !ok {
		t.Fatal("expected far-root hit; got miss")
	}
	if math.Abs(float64(hit.T-2.5)) > 1e-5 {
		t.Fatalf("expected far root t=2.5; got %f", hit.T)
	}
}

func TestSphereMissReturnsNoHit(t *testing.T) {
	sc := scene.NewScene()
	sc.Spheres = []scene.Sphere{
		scene.NewSphere(types.Vec3{0, 0, -2}, 0.5, types.Vec3{1, 1, 1}, scene.NoMaterial),
	}
	// Aim well wide of the bounding sphere.
	ray := Ray{Origin: types.Vec3{0, 0, 0}, Dir: types.Vec3{1, 0, 0}}

	if _, ok := intersectScene(sc, ray, 0.001, maxRayDistance); ok {
		t.Fatal("expected miss; got a hit")
	}
}

func TestSphereNormalPointsOutward(t *testing.T) {
	sc := scene.NewScene()
	sc.Spheres = []scene.Sphere{
		scene.NewSphere(types.Vec3{0, 0, -2}, 0.5, types.Vec3{1, 1, 1}, scene.NoMaterial),
	}
	ray := Ray{Origin: types.Vec3{0, 0, 0}, Dir: types.Vec3{0, 0, -1}}

	hit, ok := intersectScene(sc, ray, 0.001, maxRayDistance)
	if !ok {
		t.Fatal("expected hit; got miss")
	}
	want := types.Vec3{0, 0, 1}
	if hit.Normal.Sub(want).Len() > 1e-5 {
		t.Fatalf("expected normal %v; got %v", want, hit.Normal)
	}
}

func TestEllipsoidIntersectAxisScaled(t *testing.T) {
	sc := scene.NewScene()
	sc.Ellipsoids = []scene.Ellipsoid{
		scene.NewEllipsoid(types.Vec3{0, 0, -3}, types.Vec3{2, 0.5, 0.5}, types.Vec3{1, 1, 1}, scene.NoMaterial),
	}

	// Down the Z axis the ellipsoid extends 0.5 either side of its center.
	ray := Ray{Origin: types.Vec3{0, 0, 0}, Dir: types.Vec3{0, 0, -1}}
	hit, ok := intersectScene(sc, ray, 0.001, maxRayDistance)
	if !ok {
		t.Fatal("expected hit; got miss")
	}
	if math.Abs(float64(hit.T-2.5)) > 1e-4 {
		t.Fatalf("expected entry at t=2.5; got %f", hit.T)
	}

	// Along X it extends 2 units, so a ray offset by 1.5 in X still hits.
	ray = Ray{Origin: types.Vec3{1.5, 0, 0}, Dir: types.Vec3{0, 0, -1}}
	if _, ok = intersectScene(sc, ray, 0.001, maxRayDistance); !ok {
		t.Fatal("expected hit inside the wide axis; got miss")
	}

	// A sphere of radius 0.5 at the same center would also miss this one.
	ray = Ray{Origin: types.Vec3{0, 0.75, 0}, Dir: types.Vec3{0, 0, -1}}
	if _, ok = intersectScene(sc, ray, 0.001, maxRayDistance); ok {
		t.Fatal("expected miss above the narrow axis; got hit")
	}
}

func TestEllipsoidRotationMovesWideAxis(t *testing.T) {
	sc := scene.NewScene()
	e := scene.NewEllipsoid(types.Vec3{0, 0, -3}, types.Vec3{2, 0.5, 0.5}, types.Vec3{1, 1, 1}, scene.NoMaterial)
	// Rotate the long X axis onto Y.
	e.Orientation = types.QuatFromAxisAngle(types.Vec3{0, 0, 1}, float32(math.Pi/2))
	sc.Ellipsoids = []scene.Ellipsoid{e}

	ray := Ray{Origin: types.Vec3{0, 1.5, 0}, Dir: types.Vec3{0, 0, -1}}
	if _, ok := intersectScene(sc, ray, 0.001, maxRayDistance); !ok {
		t.Fatal("expected hit along the rotated wide axis; got miss")
	}

	ray = Ray{Origin: types.Vec3{1.5, 0, 0}, Dir: types.Vec3{0, 0, -1}}
	if _, ok := intersectScene(sc, ray, 0.001, maxRayDistance); ok {
		t.Fatal("expected miss along the rotated narrow axis; got hit")
	}
}

func solidGrid(res int, value uint8) *scene.VoxelGrid {
	data := make([]uint8, res*res*res)
	for i := range data {
		data[i] = value
	}
	return &scene.VoxelGrid{
		Res:       [3]int{res, res, res},
		Thickness: [3]float32{1, 1, 1},
		Data:      data,
	}
}

func TestVolumeSlabEntryAndExit(t *testing.T) {
	sc := scene.NewScene()
	// Unit cube from (0,0,-3) to (1,1,-2).
	vb := scene.NewVolumetricBlock(types.Vec3{0, 0, -3}, 0.25, solidGrid(4, 128), scene.NoMaterial)
	sc.Volumes = []scene.VolumetricBlock{vb}

	ray := Ray{Origin: types.Vec3{0.5, 0.5, 0}, Dir: types.Vec3{0, 0, -1}}
	hit, ok := intersectScene(sc, ray, 0.001, maxRayDistance)
	if !ok {
		t.Fatal("expected slab hit; got miss")
	}
	if !hit.Volumetric {
		t.Fatal("expected a volumetric hit record")
	}
	if math.Abs(float64(hit.T-2.0)) > 1e-4 {
		t.Fatalf("expected entry at t=2.0; got %f", hit.T)
	}

	exit := exitPoint(&sc.Volumes[0], ray, hit.Point)
	want := types.Vec3{0.5, 0.5, -3}
	if exit.Sub(want).Len() > 1e-4 {
		t.Fatalf("expected exit point %v; got %v", want, exit)
	}
}

func TestVolumeParallelRayOutsideSlab(t *testing.T) {
	sc := scene.NewScene()
	vb := scene.NewVolumetricBlock(types.Vec3{0, 0, -3}, 0.25, solidGrid(4, 128), scene.NoMaterial)
	sc.Volumes = []scene.VolumetricBlock{vb}

	// Parallel to the slab on Y, starting above it.
	ray := Ray{Origin: types.Vec3{0.5, 2, 0}, Dir: types.Vec3{0, 0, -1}}
	if _, ok := intersectScene(sc, ray, 0.001, maxRayDistance); ok {
		t.Fatal("expected parallel outside ray to miss; got hit")
	}
}

func TestVolumeGradientNormalAtDenseBoundary(t *testing.T) {
	sc := scene.NewScene()
	vb := scene.NewVolumetricBlock(types.Vec3{0, 0, -3}, 0.25, solidGrid(4, 200), scene.NoMaterial)
	sc.Volumes = []scene.VolumetricBlock{vb}

	// Entering the +Z face of a dense grid, the density gradient points
	// into the volume.
	ray := Ray{Origin: types.Vec3{0.5, 0.5, 0}, Dir: types.Vec3{0, 0, -1}}
	hit, ok := intersectScene(sc, ray, 0.001, maxRayDistance)
	if !ok {
		t.Fatal("expected hit; got miss")
	}
	want := types.Vec3{0, 0, -1}
	if hit.Normal.Sub(want).Len() > 1e-5 {
		t.Fatalf("expected gradient normal %v; got %v", want, hit.Normal)
	}
}

func TestVolumeZeroGradientFallsBackToFaceNormal(t *testing.T) {
	sc := scene.NewScene()
	// An empty grid still hit-tests against its bounding box, but the
	// gradient is zero everywhere.
	vb := scene.NewVolumetricBlock(types.Vec3{0, 0, -3}, 0.25, solidGrid(4, 0), scene.NoMaterial)
	sc.Volumes = []scene.VolumetricBlock{vb}

	ray := Ray{Origin: types.Vec3{0.5, 0.5, 0}, Dir: types.Vec3{0, 0, -1}}
	hit, ok := intersectScene(sc, ray, 0.001, maxRayDistance)
	if !ok {
		t.Fatal("expected hit; got miss")
	}
	want := types.Vec3{0, 0, 1}
	if hit.Normal.Sub(want).Len() > 1e-5 {
		t.Fatalf("expected +Z face normal %v; got %v", want, hit.Normal)
	}
}

func TestClosestHitTieGoesToFirstShape(t *testing.T) {
	sc := scene.NewScene()
	// Two coincident spheres; scan order decides the winner.
	sc.Spheres = []scene.Sphere{
		scene.NewSphere(types.Vec3{0, 0, -2}, 0.5, types.Vec3{1, 0, 0}, scene.NoMaterial),
		scene.NewSphere(types.Vec3{0, 0, -2}, 0.5, types.Vec3{0, 1, 0}, scene.NoMaterial),
	}
	ray := Ray{Origin: types.Vec3{0, 0, 0}, Dir: types.Vec3{0, 0, -1}}

	hit, ok := intersectScene(sc, ray, 0.001, maxRayDistance)
	if !ok {
		t.Fatal("expected hit; got miss")
	}
	if hit.Shape.Index != 0 {
		t.Fatalf("expected first shape to win the tie; got index %d", hit.Shape.Index)
	}
}
