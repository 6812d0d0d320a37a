package scene

import (
	"github.com/Pascu-Victor/path-tracer/types"
)

// MaterialID is a stable handle into a MaterialArena. Shapes reference
// materials through it during scene authoring; PrepareForRender resolves it
// to a dense table index. The zero value never names a material.
type MaterialID uint32

// NoMaterial marks shapes that should be skipped by material resolution.
const NoMaterial MaterialID = 0

// Material describes the full surface and volumetric response of a shape.
// Values are immutable once added to an arena.
type Material struct {
	Color        types.Vec3
	Ambient      float32
	Diffuse      float32
	Specular     float32
	Shininess    float32
	Reflectivity float32
	Transparency float32

	Emissive         types.Vec3
	EmissiveStrength float32

	// Volumetric response.
	Density      float32
	ScatterColor types.Vec3
	Absorption   float32

	// Optional surface shader lookup key. Resolved to a dispatch index when
	// packing for the GPU; an empty key selects the built-in shading.
	ShaderKey string
}

// MaterialArena owns all materials referenced by a scene. Shapes store
// MaterialIDs instead of pointers so authoring-time aliasing never leaks
// into the packed GPU tables.
type MaterialArena struct {
	materials []Material
}

// Add a material to the arena and return its handle.
func (ar *MaterialArena) Add(mat Material) MaterialID {
	ar.materials = append(ar.materials, mat)
	return MaterialID(len(ar.materials))
}

// Get the material for a handle. The second return value is false for
// NoMaterial or an out-of-range handle.
func (ar *MaterialArena) Get(id MaterialID) (*Material, bool) {
	if id == NoMaterial || int(id) > len(ar.materials) {
		return nil, false
	}
	return &ar.materials[id-1], true
}

// Len returns the number of materials in the arena.
func (ar *MaterialArena) Len() int {
	return len(ar.materials)
}

func defaultMaterial() Material {
	return Material{
		Color:     types.Vec3{1, 1, 1},
		Ambient:   0.1,
		Diffuse:   0.5,
		Specular:  0.5,
		Shininess: 32.0,
	}
}

// Diffuse adds a matte material with a soft highlight.
func (ar *MaterialArena) Diffuse(color types.Vec3, diffuse, ambient float32) MaterialID {
	mat := defaultMaterial()
	mat.Color = color
	mat.Ambient = ambient
	mat.Diffuse = diffuse
	mat.Specular = 0.1
	mat.Shininess = 16.0
	return ar.Add(mat)
}

// Specular adds a glossy material with a configurable highlight.
func (ar *MaterialArena) Specular(color types.Vec3, specular, shininess, reflectivity float32) MaterialID {
	mat := defaultMaterial()
	mat.Color = color
	mat.Specular = specular
	mat.Shininess = shininess
	mat.Reflectivity = reflectivity
	return ar.Add(mat)
}

// Mirror adds a highly reflective material.
func (ar *MaterialArena) Mirror(color types.Vec3, reflectivity float32) MaterialID {
	mat := defaultMaterial()
	mat.Color = color
	mat.Diffuse = 0.2
	mat.Specular = 0.8
	mat.Shininess = 128.0
	mat.Reflectivity = reflectivity
	return ar.Add(mat)
}

// Volumetric adds a participating-medium material for voxel blocks.
func (ar *MaterialArena) Volumetric(scatterColor types.Vec3, absorption float32) MaterialID {
	mat := defaultMaterial()
	mat.ScatterColor = scatterColor
	mat.Absorption = absorption
	mat.Density = 1.0
	return ar.Add(mat)
}

// Emissive adds a light-emitting material. Emissive shapes neither receive
// ambient nor diffuse lighting.
func (ar *MaterialArena) Emissive(color types.Vec3, strength float32) MaterialID {
	mat := defaultMaterial()
	mat.Color = color
	mat.Ambient = 0
	mat.Diffuse = 0
	mat.Emissive = color
	mat.EmissiveStrength = strength
	return ar.Add(mat)
}
