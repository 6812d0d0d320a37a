package tracer

import (
	"github.com/Pascu-Victor/path-tracer/scene"
	"github.com/Pascu-Victor/path-tracer/types"
)

// Epsilon used for shadow/reflection ray offsets. Must be larger than the
// root-finding epsilon to avoid self-intersection artifacts.
const hitEpsilon = 0.001

// Epsilon used by the slab test when a ray runs parallel to an axis.
const slabEpsilon = 1e-6

const maxRayDistance = 1e10

// Ray is a parametrized line origin + t*dir.
type Ray struct {
	Origin types.Vec3
	Dir    types.Vec3
}

// At returns the point at parameter t along the ray.
func (r Ray) At(t float32) types.Vec3 {
	return r.Origin.Add(r.Dir.Mul(t))
}

// HitRecord describes a successful intersection.
type HitRecord struct {
	T      float32
	Point  types.Vec3
	Normal types.Vec3

	// Resolved dense material index; -1 if the shape carries no material.
	MaterialIndex int32

	// Volumetric is set for voxel-block entry hits; Density then holds the
	// sampled density at the entry point.
	Volumetric bool
	Density    float32

	// The shape that produced the hit, so the illumination stage can
	// re-query it (e.g. for volume exit points).
	Shape scene.ShapeRef
}
