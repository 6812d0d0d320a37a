package webgpu

import (
	"testing"
	"unsafe"

	"github.com/Pascu-Victor/path-tracer/log"
	"github.com/Pascu-Victor/path-tracer/scene"
	"github.com/Pascu-Victor/path-tracer/tracer"
	"github.com/Pascu-Victor/path-tracer/types"
)

// The packed structs are uploaded verbatim, so their in-memory size must
// match the kernel-side layouts exactly.
func TestPackedStructSizes(t *testing.T) {
	specs := []struct {
		name string
		got  uintptr
		want uintptr
	}{
		{"gpuSphere", unsafe.Sizeof(gpuSphere{}), sizeofSphere},
		{"gpuEllipsoid", unsafe.Sizeof(gpuEllipsoid{}), sizeofEllipsoid},
		{"gpuLight", unsafe.Sizeof(gpuLight{}), sizeofLight},
		{"gpuVolume", unsafe.Sizeof(gpuVolume{}), sizeofVolume},
		{"gpuMaterial", unsafe.Sizeof(gpuMaterial{}), sizeofMaterial},
		{"gpuUniforms", unsafe.Sizeof(gpuUniforms{}), sizeofUniforms},
	}

	for _, spec := range specs {
		if spec.got != spec.want {
			t.Fatalf("expected %s to pack to %d bytes; got %d", spec.name, spec.want, spec.got)
		}
	}
}

func packTestScene(t *testing.T, sc *scene.Scene, index map[string]int32) *packedScene {
	t.Helper()
	if err := sc.Prepare(); err != nil {
		t.Fatal(err)
	}
	ps, err := packScene(sc, index, log.New("test"))
	if err != nil {
		t.Fatal(err)
	}
	return ps
}

func TestPackSceneRequiresPreparedScene(t *testing.T) {
	sc := scene.NewScene()
	matID := sc.Materials.Diffuse(types.Vec3{1, 1, 1}, 0.8, 0.1)
	sc.Spheres = []scene.Sphere{
		scene.NewSphere(types.Vec3{0, 0, -2}, 0.5, types.Vec3{1, 1, 1}, matID),
	}

	if _, err := packScene(sc, nil, log.New("test")); err != tracer.ErrSceneNotPrepared {
		t.Fatalf("expected ErrSceneNotPrepared for an unprepared scene; got %v", err)
	}
}

func TestPackSceneResolvesShaderIndices(t *testing.T) {
	sc := scene.NewScene()
	matID := sc.Materials.Add(scene.Material{
		Color:     types.Vec3{1, 0, 0},
		ShaderKey: "checker",
	})
	sc.Spheres = []scene.Sphere{
		scene.NewSphere(types.Vec3{0, 0, -2}, 0.5, types.Vec3{1, 0, 0}, matID),
	}

	ps := packTestScene(t, sc, map[string]int32{"checker": 2})

	if len(ps.Materials) != 1 {
		t.Fatalf("expected 1 packed material; got %d", len(ps.Materials))
	}
	if got := ps.Materials[0].TransparencyEmissive[2]; got != 2 {
		t.Fatalf("expected shader function index 2; got %v", got)
	}
}

func TestPackSceneUnknownShaderFallsBackToBuiltin(t *testing.T) {
	sc := scene.NewScene()
	matID := sc.Materials.Add(scene.Material{
		Color:     types.Vec3{1, 0, 0},
		ShaderKey: "nosuchshader",
	})
	sc.Spheres = []scene.Sphere{
		scene.NewSphere(types.Vec3{0, 0, -2}, 0.5, types.Vec3{1, 0, 0}, matID),
	}

	ps := packTestScene(t, sc, map[string]int32{"checker": 1})

	if got := ps.Materials[0].TransparencyEmissive[2]; got != 0 {
		t.Fatalf("expected built-in shading fallback index 0; got %v", got)
	}
}

func TestPackSceneConcatenatesVolumeData(t *testing.T) {
	sc := scene.NewScene()
	matID := sc.Materials.Volumetric(types.Vec3{1, 1, 1}, 1)

	gridA := &scene.VoxelGrid{Res: [3]int{2, 2, 2}, Thickness: [3]float32{1, 1, 1}, Data: make([]uint8, 8)}
	gridB := &scene.VoxelGrid{Res: [3]int{3, 3, 3}, Thickness: [3]float32{1, 1, 1}, Data: make([]uint8, 27)}
	sc.Volumes = []scene.VolumetricBlock{
		scene.NewVolumetricBlock(types.Vec3{0, 0, 0}, 1, gridA, matID),
		scene.NewVolumetricBlock(types.Vec3{4, 0, 0}, 1, gridB, matID),
	}

	ps := packTestScene(t, sc, nil)

	// 8+27 voxel bytes, padded up to the next 32-bit word boundary.
	if len(ps.VolumeData) != 36 {
		t.Fatalf("expected 36 bytes of padded voxel data; got %d", len(ps.VolumeData))
	}
	if len(ps.VolumeData)%4 != 0 {
		t.Fatalf("expected voxel data length to be a 4-byte multiple; got %d", len(ps.VolumeData))
	}
	if ps.Volumes[0].DataOffset != 0 || ps.Volumes[1].DataOffset != 8 {
		t.Fatalf("expected data offsets 0 and 8; got %d and %d", ps.Volumes[0].DataOffset, ps.Volumes[1].DataOffset)
	}
	if got := ps.Volumes[1].BoundsMax; got != (types.Vec3{7, 3, 3}) {
		t.Fatalf("expected bounds max (7,3,3); got %v", got)
	}
}

func TestPackSceneCarriesFrameParameters(t *testing.T) {
	sc := scene.NewScene()
	sc.MaxDepth = 3
	sc.BgColorTop = types.Vec3{0, 0, 1}
	sc.BgColorBottom = types.Vec3{1, 0, 0}
	sc.Lights = []scene.Light{
		scene.NewLight(types.Vec3{0, 2, 0}, 1, types.Vec3{1, 1, 1}),
	}

	ps := packTestScene(t, sc, nil)

	if ps.MaxDepth != 3 {
		t.Fatalf("expected max depth 3; got %d", ps.MaxDepth)
	}
	if ps.NumLights != 1 || len(ps.Lights) != 1 {
		t.Fatalf("expected 1 packed light; got count %d, slice %d", ps.NumLights, len(ps.Lights))
	}
	if ps.BgColorTop != (types.Vec3{0, 0, 1}) || ps.BgColorBottom != (types.Vec3{1, 0, 0}) {
		t.Fatal("expected background colors to be carried through packing")
	}
}

// Unpack the five material lanes and compare every field against the
// authored material.
func TestPackSceneMaterialRoundTrip(t *testing.T) {
	want := scene.Material{
		Color:            types.Vec3{0.8, 0.2, 0.3},
		Ambient:          0.1,
		Diffuse:          0.7,
		Specular:         0.4,
		Shininess:        64,
		Reflectivity:     0.25,
		Transparency:     0.5,
		Emissive:         types.Vec3{0.2, 0.8, 0.2},
		EmissiveStrength: 2,
		Density:          1.5,
		ScatterColor:     types.Vec3{0.8, 0.6, 0.4},
		Absorption:       8,
		ShaderKey:        "checker",
	}

	sc := scene.NewScene()
	matID := sc.Materials.Add(want)
	sc.Spheres = []scene.Sphere{
		scene.NewSphere(types.Vec3{0, 0, -2}, 0.5, want.Color, matID),
	}

	ps := packTestScene(t, sc, map[string]int32{"checker": 3})

	packed := ps.Materials[0]
	got := scene.Material{
		Color:            packed.ColorAndAmbient.Vec3(),
		Ambient:          packed.ColorAndAmbient[3],
		Diffuse:          packed.DiffuseSpecularShiny[0],
		Specular:         packed.DiffuseSpecularShiny[1],
		Shininess:        packed.DiffuseSpecularShiny[2],
		Reflectivity:     packed.DiffuseSpecularShiny[3],
		Transparency:     packed.TransparencyEmissive[0],
		EmissiveStrength: packed.TransparencyEmissive[1],
		Density:          packed.TransparencyEmissive[3],
		Emissive:         packed.Emissive.Vec3(),
		ScatterColor:     packed.ScatterAndAbsorption.Vec3(),
		Absorption:       packed.ScatterAndAbsorption[3],
	}

	// The shader key packs as its dispatch index, not as a string.
	if idx := packed.TransparencyEmissive[2]; idx != 3 {
		t.Fatalf("expected shader key to pack as dispatch index 3; got %v", idx)
	}
	got.ShaderKey = want.ShaderKey

	if got != want {
		t.Fatalf("expected packed material to round-trip\nwant %+v\ngot  %+v", want, got)
	}
}

func TestPackSceneInvertsEllipsoidOrientation(t *testing.T) {
	sc := scene.NewScene()
	matID := sc.Materials.Diffuse(types.Vec3{1, 1, 1}, 0.8, 0.1)

	ell := scene.NewEllipsoid(types.Vec3{0, 0, -2}, types.Vec3{2, 1, 1}, types.Vec3{1, 1, 1}, matID)
	ell.Orientation = types.QuatFromAxisAngle(types.Vec3{0, 0, 1}, 1.2)
	sc.Ellipsoids = []scene.Ellipsoid{ell}

	ps := packTestScene(t, sc, nil)

	inv, err := ell.Orientation.Inverse()
	if err != nil {
		t.Fatal(err)
	}
	if got := ps.Ellipsoids[0].InvOrientation; got != inv.V.Vec4(inv.W) {
		t.Fatalf("expected packed inverse orientation %v; got %v", inv.V.Vec4(inv.W), got)
	}
}
