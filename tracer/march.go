package tracer

import (
	"github.com/chewxy/math32"

	"github.com/Pascu-Victor/path-tracer/scene"
	"github.com/Pascu-Victor/path-tracer/types"
)

const (
	// World-space step for the fixed-step volumetric march.
	marchStepSize = 0.01

	// The march terminates early once transmittance drops below this.
	transmittanceCutoff = 0.01
)

// shadeVolume integrates single scattering through a voxel block from the
// entry hit to the ray's exit point and composites the remaining
// transmittance over the background.
func shadeVolume(sc *scene.Scene, hit *HitRecord, ray Ray) types.Vec3 {
	vb := &sc.Volumes[hit.Shape.Index]
	mat := sc.MaterialAt(hit.MaterialIndex)
	if mat == nil {
		return Background(sc, ray)
	}

	color, transmittance := marchVolume(vb, mat, ray, hit.Point)
	return color.Add(Background(sc, ray).Mul(transmittance))
}

// marchVolume walks the ray through the block in fixed steps, accumulating
// scattered color and attenuating transmittance per step:
//
//	T *= exp(-absorption * density * step)
//	color += scatterColor * density * step * T
//
// It returns the accumulated color and the final transmittance.
// Transmittance never increases along the march; with zero absorption it
// stays at 1.
func marchVolume(vb *scene.VolumetricBlock, mat *scene.Material, ray Ray, entry types.Vec3) (types.Vec3, float32) {
	exit := exitPoint(vb, ray, entry)
	span := exit.Sub(entry).Len()

	var color types.Vec3
	transmittance := float32(1.0)

	for s := float32(0); s < span; s += marchStepSize {
		p := entry.Add(ray.Dir.Mul(s))
		density := vb.Density(p) * mat.Density
		if density <= 0 {
			continue
		}

		transmittance *= math32.Exp(-mat.Absorption * density * marchStepSize)
		color = color.Add(mat.ScatterColor.Mul(density * marchStepSize * transmittance))

		if transmittance < transmittanceCutoff {
			break
		}
	}

	return color, transmittance
}
