package tracer

import (
	"testing"

	"github.com/Pascu-Victor/path-tracer/scene"
	"github.com/Pascu-Victor/path-tracer/types"
)

func TestBackgroundGradientEndpoints(t *testing.T) {
	sc := scene.NewScene()
	sc.BgColorTop = types.Vec3{0, 0, 1}
	sc.BgColorBottom = types.Vec3{1, 0, 0}

	up := Background(sc, Ray{Dir: types.Vec3{0, 1, 0}})
	if up.Sub(sc.BgColorTop).Len() > 1e-5 {
		t.Fatalf("expected top color %v; got %v", sc.BgColorTop, up)
	}

	down := Background(sc, Ray{Dir: types.Vec3{0, -1, 0}})
	if down.Sub(sc.BgColorBottom).Len() > 1e-5 {
		t.Fatalf("expected bottom color %v; got %v", sc.BgColorBottom, down)
	}
}

func TestTraceRayExhaustedDepthReturnsBackground(t *testing.T) {
	sc := scene.NewScene()
	matID := sc.Materials.Diffuse(types.Vec3{0.8, 0.2, 0.2}, 0.7, 0.1)
	sc.Spheres = []scene.Sphere{
		scene.NewSphere(types.Vec3{0, 0, -2}, 0.5, types.Vec3{0.8, 0.2, 0.2}, matID),
	}
	if err := sc.Prepare(); err != nil {
		t.Fatal(err)
	}

	ray := Ray{Origin: types.Vec3{0, 0, 0}, Dir: types.Vec3{0, 0, -1}}
	got := TraceRay(sc, ray, 0)
	want := Background(sc, ray)
	if got.Sub(want).Len() > 1e-5 {
		t.Fatalf("expected background %v at depth 0; got %v", want, got)
	}
}

func TestFullyOccludedLightContributesNothing(t *testing.T) {
	build := func(intensity float32) *scene.Scene {
		sc := scene.NewScene()
		matID := sc.Materials.Diffuse(types.Vec3{0.8, 0.2, 0.2}, 0.7, 0.1)
		sc.Spheres = []scene.Sphere{
			scene.NewSphere(types.Vec3{0, 0, -2}, 0.5, types.Vec3{0.8, 0.2, 0.2}, matID),
			// Blocker sits on the segment between the hit point and the light.
			scene.NewSphere(types.Vec3{0, 0, 0.5}, 0.3, types.Vec3{1, 1, 1}, matID),
		}
		sc.Lights = []scene.Light{
			scene.NewLight(types.Vec3{0, 0, 2}, intensity, types.Vec3{1, 1, 1}),
		}
		if err := sc.Prepare(); err != nil {
			t.Fatal(err)
		}
		return sc
	}

	ray := Ray{Origin: types.Vec3{0, 0, 0}, Dir: types.Vec3{0, 0, -1}}

	dim := TraceRay(build(1), ray, 5)
	bright := TraceRay(build(1000), ray, 5)

	if dim.Sub(bright).Len() > 1e-5 {
		t.Fatalf("occluded light intensity leaked into shading: %v vs %v", dim, bright)
	}

	// Only the ambient term survives.
	want := types.Vec3{0.8, 0.2, 0.2}.Mul(0.1)
	if dim.Sub(want).Len() > 1e-5 {
		t.Fatalf("expected ambient-only color %v; got %v", want, dim)
	}
}

func reflectScene(t *testing.T, reflectivity float32) *scene.Scene {
	t.Helper()

	sc := scene.NewScene()
	matID := sc.Materials.Specular(types.Vec3{0.9, 0.9, 0.9}, 0.8, 64, reflectivity)
	sc.Spheres = []scene.Sphere{
		scene.NewSphere(types.Vec3{0, 0, -2}, 0.5, types.Vec3{0.9, 0.9, 0.9}, matID),
	}
	sc.Lights = []scene.Light{
		scene.NewLight(types.Vec3{2, 2, 1}, 1, types.Vec3{1, 1, 1}),
	}
	if err := sc.Prepare(); err != nil {
		t.Fatal(err)
	}
	return sc
}

func TestZeroReflectivityEqualsDirectLighting(t *testing.T) {
	sc := reflectScene(t, 0)
	ray := Ray{Origin: types.Vec3{0, 0, 0}, Dir: types.Vec3{0, 0, -1}}

	hit, ok := intersectScene(sc, ray, hitEpsilon, maxRayDistance)
	if !ok {
		t.Fatal("expected hit; got miss")
	}
	mat := sc.MaterialAt(hit.MaterialIndex)
	if mat == nil {
		t.Fatal("expected a resolved material")
	}

	viewDir := ray.Origin.Sub(hit.Point).Normalize()
	want := calculateLighting(sc, &hit, mat, viewDir)

	got := TraceRay(sc, ray, 5)
	if got.Sub(want).Len() > 1e-5 {
		t.Fatalf("expected direct lighting %v; got %v", want, got)
	}
}

func TestFullReflectivityEqualsBouncedColor(t *testing.T) {
	sc := reflectScene(t, 1)
	ray := Ray{Origin: types.Vec3{0, 0, 0}, Dir: types.Vec3{0, 0, -1}}

	// The head-on bounce leaves along +Z and hits nothing.
	bounced := Background(sc, Ray{Dir: types.Vec3{0, 0, 1}})

	got := TraceRay(sc, ray, 2)
	if got.Sub(bounced).Len() > 1e-5 {
		t.Fatalf("expected bounced color %v; got %v", bounced, got)
	}
}

func TestLitSphereKeepsMaterialHue(t *testing.T) {
	sc := scene.NewScene()
	matID := sc.Materials.Diffuse(types.Vec3{0.8, 0.2, 0.2}, 0.7, 0.1)
	sc.Spheres = []scene.Sphere{
		scene.NewSphere(types.Vec3{0, 0, -1}, 0.5, types.Vec3{0.8, 0.2, 0.2}, matID),
	}
	sc.Lights = []scene.Light{
		scene.NewLight(types.Vec3{2, 2, 1}, 1, types.Vec3{1, 0.9, 0.8}),
	}
	if err := sc.Prepare(); err != nil {
		t.Fatal(err)
	}

	center := TraceRay(sc, Ray{Origin: types.Vec3{0, 0, 0}, Dir: types.Vec3{0, 0, -1}}, 5)

	// The diffuse term must contribute on top of ambient and the red hue
	// must dominate.
	ambientRed := float32(0.8 * 0.1)
	if center[0] <= ambientRed {
		t.Fatalf("expected diffuse contribution above ambient %f; got %f", ambientRed, center[0])
	}
	if center[0] <= center[1] || center[0] <= center[2] {
		t.Fatalf("expected red-dominant color; got %v", center)
	}

	// A ray past the silhouette sees the background gradient.
	cornerRay := Ray{Origin: types.Vec3{0, 0, 0}, Dir: types.XYZ(1, 1, -1).Normalize()}
	corner := TraceRay(sc, cornerRay, 5)
	if want := Background(sc, cornerRay); corner.Sub(want).Len() > 1e-5 {
		t.Fatalf("expected background %v past the silhouette; got %v", want, corner)
	}
}

func TestEmissiveSurfaceIgnoresLights(t *testing.T) {
	sc := scene.NewScene()
	matID := sc.Materials.Emissive(types.Vec3{0.2, 0.8, 0.2}, 2)
	sc.Spheres = []scene.Sphere{
		scene.NewSphere(types.Vec3{0, 0, -1}, 0.3, types.Vec3{0.2, 0.8, 0.2}, matID),
	}
	if err := sc.Prepare(); err != nil {
		t.Fatal(err)
	}

	got := TraceRay(sc, Ray{Origin: types.Vec3{0, 0, 0}, Dir: types.Vec3{0, 0, -1}}, 5)
	want := types.Vec3{0.2, 0.8, 0.2}.Mul(2)
	if got.Sub(want).Len() > 1e-5 {
		t.Fatalf("expected emissive color %v; got %v", want, got)
	}
}
