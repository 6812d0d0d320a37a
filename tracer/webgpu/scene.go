package webgpu

import (
	"github.com/Pascu-Victor/path-tracer/log"
	"github.com/Pascu-Victor/path-tracer/scene"
	"github.com/Pascu-Victor/path-tracer/tracer"
	"github.com/Pascu-Victor/path-tracer/types"
)

// Packed sphere (32 bytes).
type gpuSphere struct {
	Center        types.Vec3
	Radius        float32
	Color         types.Vec3
	MaterialIndex int32
}

// Packed ellipsoid (64 bytes). The orientation is stored as the inverse
// rotation quaternion so the kernel can map rays straight into the local
// frame.
type gpuEllipsoid struct {
	Center         types.Vec3
	MaterialIndex  int32
	Radii          types.Vec3
	Pad0           float32
	Color          types.Vec3
	Pad1           float32
	InvOrientation types.Vec4
}

// Packed point light (32 bytes).
type gpuLight struct {
	Position  types.Vec3
	Intensity float32
	Color     types.Vec3
	Pad0      float32
}

// Packed volumetric block header (64 bytes). The voxel bytes themselves
// live in a shared data buffer; DataOffset indexes into it.
type gpuVolume struct {
	Position      types.Vec3
	Scale         float32
	Thickness     types.Vec3
	DataOffset    int32
	ResX          int32
	ResY          int32
	ResZ          int32
	MaterialIndex int32
	BoundsMax     types.Vec3
	Pad0          float32
}

// Packed material (80 bytes, five vec4 lanes):
//
//	lane 0: color.rgb, ambient
//	lane 1: diffuse, specular, shininess, reflectivity
//	lane 2: transparency, emissive strength, shader function index, density
//	lane 3: emissive.rgb, unused
//	lane 4: scatter color.rgb, absorption
type gpuMaterial struct {
	ColorAndAmbient      types.Vec4
	DiffuseSpecularShiny types.Vec4
	TransparencyEmissive types.Vec4
	Emissive             types.Vec4
	ScatterAndAbsorption types.Vec4
}

// Per-dispatch parameter block (144 bytes). CameraMatrix holds the
// inverse view-projection matrix.
type gpuUniforms struct {
	CameraMatrix types.Mat4

	CameraPos types.Vec3
	Time      float32

	NumSpheres    int32
	NumEllipsoids int32
	NumLights     int32
	NumVolumes    int32

	MaxDepth int32
	BlockY   uint32
	FrameW   uint32
	FrameH   uint32

	BgColorTop types.Vec3
	BlockH     uint32

	BgColorBottom types.Vec3
	Pad1          float32
}

// packedScene is the device-ready form of a scene.
type packedScene struct {
	Spheres    []gpuSphere
	Ellipsoids []gpuEllipsoid
	Lights     []gpuLight
	Volumes    []gpuVolume
	VolumeData []uint8
	Materials  []gpuMaterial

	NumSpheres    int32
	NumEllipsoids int32
	NumLights     int32
	NumVolumes    int32
	MaxDepth      int32

	BgColorTop    types.Vec3
	BgColorBottom types.Vec3
}

// packScene resolves surface shader keys through the composed dispatch
// index and lays the scene out in the device buffer formats. The scene's
// material interning pass must have run already; the scene is shared
// read-only between tracer workers. Unknown shader keys fall back to the
// built-in shading with a diagnostic.
func packScene(sc *scene.Scene, shaderIndex map[string]int32, logger log.Logger) (*packedScene, error) {
	if !sc.Prepared() {
		return nil, tracer.ErrSceneNotPrepared
	}

	ps := &packedScene{
		NumSpheres:    int32(len(sc.Spheres)),
		NumEllipsoids: int32(len(sc.Ellipsoids)),
		NumLights:     int32(len(sc.Lights)),
		NumVolumes:    int32(len(sc.Volumes)),
		MaxDepth:      sc.MaxDepth,
		BgColorTop:    sc.BgColorTop,
		BgColorBottom: sc.BgColorBottom,
	}

	ps.Materials = make([]gpuMaterial, len(sc.MaterialTable))
	for idx, mat := range sc.MaterialTable {
		fnIndex := int32(0)
		if mat.ShaderKey != "" {
			var known bool
			if fnIndex, known = lookupShaderIndex(shaderIndex, mat.ShaderKey); !known {
				logger.Warningf("material %d references unknown surface shader %q; using built-in shading", idx, mat.ShaderKey)
			}
		}

		ps.Materials[idx] = gpuMaterial{
			ColorAndAmbient:      mat.Color.Vec4(mat.Ambient),
			DiffuseSpecularShiny: types.XYZW(mat.Diffuse, mat.Specular, mat.Shininess, mat.Reflectivity),
			TransparencyEmissive: types.XYZW(mat.Transparency, mat.EmissiveStrength, float32(fnIndex), mat.Density),
			Emissive:             mat.Emissive.Vec4(0),
			ScatterAndAbsorption: mat.ScatterColor.Vec4(mat.Absorption),
		}
	}

	ps.Spheres = make([]gpuSphere, len(sc.Spheres))
	for idx := range sc.Spheres {
		s := &sc.Spheres[idx]
		ps.Spheres[idx] = gpuSphere{
			Center:        s.Center,
			Radius:        s.Radius,
			Color:         s.Color,
			MaterialIndex: s.MaterialIndex,
		}
	}

	ps.Ellipsoids = make([]gpuEllipsoid, len(sc.Ellipsoids))
	for idx := range sc.Ellipsoids {
		e := &sc.Ellipsoids[idx]
		invRot, err := e.Orientation.Inverse()
		if err != nil {
			return nil, err
		}
		ps.Ellipsoids[idx] = gpuEllipsoid{
			Center:         e.Center,
			MaterialIndex:  e.MaterialIndex,
			Radii:          e.Radii,
			Color:          e.Color,
			InvOrientation: invRot.V.Vec4(invRot.W),
		}
	}

	ps.Lights = make([]gpuLight, len(sc.Lights))
	for idx := range sc.Lights {
		l := &sc.Lights[idx]
		ps.Lights[idx] = gpuLight{
			Position:  l.Position,
			Intensity: l.Intensity,
			Color:     l.Color,
		}
	}

	ps.Volumes = make([]gpuVolume, len(sc.Volumes))
	for idx := range sc.Volumes {
		vb := &sc.Volumes[idx]
		ps.Volumes[idx] = gpuVolume{
			Position:      vb.Position,
			Scale:         vb.Scale,
			Thickness:     types.Vec3(vb.Grid.Thickness),
			DataOffset:    int32(len(ps.VolumeData)),
			ResX:          int32(vb.Grid.Res[0]),
			ResY:          int32(vb.Grid.Res[1]),
			ResZ:          int32(vb.Grid.Res[2]),
			MaterialIndex: vb.MaterialIndex,
			BoundsMax:     vb.BoundsMax(),
		}
		ps.VolumeData = append(ps.VolumeData, vb.Grid.Data...)
	}

	// The kernel reads the voxel blob as an array of 32-bit words and
	// buffer uploads must be 4-byte multiples.
	for len(ps.VolumeData)%4 != 0 {
		ps.VolumeData = append(ps.VolumeData, 0)
	}

	return ps, nil
}

// lookupShaderIndex resolves a material shader key against the composed
// dispatch index. Index 0 selects the built-in shading.
func lookupShaderIndex(shaderIndex map[string]int32, key string) (int32, bool) {
	if shaderIndex == nil {
		return 0, false
	}
	idx, ok := shaderIndex[key]
	if !ok {
		return 0, false
	}
	return idx, true
}
