package tracer

import (
	"github.com/chewxy/math32"

	"github.com/Pascu-Victor/path-tracer/scene"
	"github.com/Pascu-Victor/path-tracer/types"
)

// intersectShape is the single dispatch point over the closed shape union.
func intersectShape(sc *scene.Scene, ref scene.ShapeRef, ray Ray, tMin, tMax float32) (HitRecord, bool) {
	switch ref.Kind {
	case scene.SphereShape:
		return intersectSphere(&sc.Spheres[ref.Index], ref, ray, tMin, tMax)
	case scene.EllipsoidShape:
		return intersectEllipsoid(&sc.Ellipsoids[ref.Index], ref, ray, tMin, tMax)
	case scene.VolumeShape:
		return intersectVolume(&sc.Volumes[ref.Index], ref, ray, tMin, tMax)
	}
	return HitRecord{}, false
}

// intersectScene scans all shapes in slice order and returns the nearest
// hit in (tMin, tMax]. On exactly equal t the first-encountered shape wins.
func intersectScene(sc *scene.Scene, ray Ray, tMin, tMax float32) (HitRecord, bool) {
	var closest HitRecord
	found := false

	scan := func(ref scene.ShapeRef) {
		hit, ok := intersectShape(sc, ref, ray, tMin, tMax)
		if !ok || (found && hit.T >= closest.T) {
			return
		}
		closest = hit
		tMax = hit.T
		found = true
	}

	for i := range sc.Spheres {
		scan(scene.ShapeRef{Kind: scene.SphereShape, Index: i})
	}
	for i := range sc.Ellipsoids {
		scan(scene.ShapeRef{Kind: scene.EllipsoidShape, Index: i})
	}
	for i := range sc.Volumes {
		scan(scene.ShapeRef{Kind: scene.VolumeShape, Index: i})
	}

	return closest, found
}

// intersectSphere solves |O + tD - C|^2 = r^2 and returns the nearest root
// in (tMin, tMax], preferring the smaller one.
func intersectSphere(s *scene.Sphere, ref scene.ShapeRef, ray Ray, tMin, tMax float32) (HitRecord, bool) {
	oc := ray.Origin.Sub(s.Center)
	a := ray.Dir.Dot(ray.Dir)
	halfB := oc.Dot(ray.Dir)
	c := oc.Dot(oc) - s.Radius*s.Radius

	disc := halfB*halfB - a*c
	if disc < 0 {
		return HitRecord{}, false
	}

	sqrtDisc := math32.Sqrt(disc)
	root := (-halfB - sqrtDisc) / a
	if root <= tMin || root > tMax {
		root = (-halfB + sqrtDisc) / a
		if root <= tMin || root > tMax {
			return HitRecord{}, false
		}
	}

	point := ray.At(root)
	return HitRecord{
		T:             root,
		Point:         point,
		Normal:        point.Sub(s.Center).Mul(1 / s.Radius),
		MaterialIndex: s.MaterialIndex,
		Shape:         ref,
	}, true
}

// intersectEllipsoid maps the ray into the ellipsoid's unrotated unit
// sphere frame (inverse translation, inverse rotation, per-axis inverse
// scale), solves there and recomputes the world hit point by forward
// transform. The linear map preserves the ray parameter so the local root
// is valid in world space.
func intersectEllipsoid(e *scene.Ellipsoid, ref scene.ShapeRef, ray Ray, tMin, tMax float32) (HitRecord, bool) {
	invRot, err := e.Orientation.Inverse()
	if err != nil {
		return HitRecord{}, false
	}

	localOrigin := invRot.Rotate(ray.Origin.Sub(e.Center)).DivVec(e.Radii)
	localDir := invRot.Rotate(ray.Dir).DivVec(e.Radii)

	a := localDir.Dot(localDir)
	halfB := localOrigin.Dot(localDir)
	c := localOrigin.Dot(localOrigin) - 1

	disc := halfB*halfB - a*c
	if disc < 0 {
		return HitRecord{}, false
	}

	sqrtDisc := math32.Sqrt(disc)
	root := (-halfB - sqrtDisc) / a
	if root <= tMin || root > tMax {
		root = (-halfB + sqrtDisc) / a
		if root <= tMin || root > tMax {
			return HitRecord{}, false
		}
	}

	// Surface normal is the implicit-function gradient: divide the local
	// hit point by the radii once more, rotate back to world space.
	localPoint := localOrigin.Add(localDir.Mul(root))
	normal := e.Orientation.Rotate(localPoint.DivVec(e.Radii)).Normalize()

	return HitRecord{
		T:             root,
		Point:         ray.At(root),
		Normal:        normal,
		MaterialIndex: e.MaterialIndex,
		Shape:         ref,
	}, true
}

// intersectVolume runs the three-axis slab test against the block's world
// bounding box. A successful hit returns the entry parameter t0; the
// normal is the central-difference density gradient at the entry point,
// falling back to the entered slab face normal when the gradient is
// degenerate.
func intersectVolume(vb *scene.VolumetricBlock, ref scene.ShapeRef, ray Ray, tMin, tMax float32) (HitRecord, bool) {
	bMin := vb.BoundsMin()
	bMax := vb.BoundsMax()

	t0, t1 := tMin, tMax
	entryAxis := -1
	entrySign := float32(1)

	for axis := 0; axis < 3; axis++ {
		if math32.Abs(ray.Dir[axis]) > slabEpsilon {
			invD := 1 / ray.Dir[axis]
			tNear := (bMin[axis] - ray.Origin[axis]) * invD
			tFar := (bMax[axis] - ray.Origin[axis]) * invD
			sign := float32(-1)
			if invD < 0 {
				tNear, tFar = tFar, tNear
				sign = 1
			}
			if tNear > t0 {
				t0 = tNear
				entryAxis = axis
				entrySign = sign
			}
			if tFar < t1 {
				t1 = tFar
			}
		} else if ray.Origin[axis] < bMin[axis]-slabEpsilon || ray.Origin[axis] > bMax[axis]+slabEpsilon {
			// Parallel ray starting outside the slab on this axis.
			return HitRecord{}, false
		}
		if t1 <= t0+slabEpsilon {
			return HitRecord{}, false
		}
	}

	if t0 <= tMin || t0 > tMax {
		return HitRecord{}, false
	}

	point := ray.At(t0)
	normal := vb.Gradient(point).Normalize()
	if normal == (types.Vec3{}) {
		// Homogeneous region: fall back to the entered face normal.
		normal = types.Vec3{}
		if entryAxis >= 0 {
			normal[entryAxis] = entrySign
		} else {
			normal = ray.Dir.Neg().Normalize()
		}
	}

	return HitRecord{
		T:             t0,
		Point:         point,
		Normal:        normal,
		MaterialIndex: vb.MaterialIndex,
		Volumetric:    true,
		Density:       vb.Density(point),
		Shape:         ref,
	}, true
}

// exitPoint computes where the ray leaves the block's bounding box given a
// point inside it, bounding the volumetric march.
func exitPoint(vb *scene.VolumetricBlock, ray Ray, entry types.Vec3) types.Vec3 {
	bMin := vb.BoundsMin()
	bMax := vb.BoundsMax()

	t1 := float32(maxRayDistance)
	for axis := 0; axis < 3; axis++ {
		if math32.Abs(ray.Dir[axis]) <= slabEpsilon {
			continue
		}
		invD := 1 / ray.Dir[axis]
		tNear := (bMin[axis] - entry[axis]) * invD
		tFar := (bMax[axis] - entry[axis]) * invD
		if invD < 0 {
			tNear, tFar = tFar, tNear
		}
		if tFar < t1 {
			t1 = tFar
		}
	}

	return entry.Add(ray.Dir.Mul(t1))
}
