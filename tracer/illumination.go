package tracer

import (
	"github.com/chewxy/math32"

	"github.com/Pascu-Victor/path-tracer/scene"
	"github.com/Pascu-Victor/path-tracer/types"
)

// Light attenuation coefficients: 1 / (1 + k1*d + k2*d^2).
const (
	attenuationLinear    = 0.09
	attenuationQuadratic = 0.032
)

// Background returns the vertical gradient between the scene's two
// background colors, interpolated by the ray direction's vertical
// component remapped from [-1,1] to [0,1].
func Background(sc *scene.Scene, ray Ray) types.Vec3 {
	unit := ray.Dir.Normalize()
	t := 0.5 * (unit[1] + 1.0)
	return sc.BgColorBottom.Mul(1 - t).Add(sc.BgColorTop.Mul(t))
}

// TraceRay evaluates the color seen along a ray, recursing into reflection
// bounces down to the given depth budget. Colors are unclamped; callers
// clamp at byte conversion.
func TraceRay(sc *scene.Scene, ray Ray, depth int32) types.Vec3 {
	if depth <= 0 {
		return Background(sc, ray)
	}

	hit, ok := intersectScene(sc, ray, hitEpsilon, maxRayDistance)
	if !ok {
		return Background(sc, ray)
	}

	if hit.Volumetric {
		return shadeVolume(sc, &hit, ray)
	}
	return shadeSurface(sc, &hit, ray, depth)
}

func shadeSurface(sc *scene.Scene, hit *HitRecord, ray Ray, depth int32) types.Vec3 {
	mat := sc.MaterialAt(hit.MaterialIndex)
	if mat == nil {
		return Background(sc, ray)
	}

	viewDir := ray.Origin.Sub(hit.Point).Normalize()
	color := calculateLighting(sc, hit, mat, viewDir)

	if mat.Reflectivity > 0 {
		reflectDir := ray.Dir.Reflect(hit.Normal).Normalize()
		reflectColor := TraceRay(sc, Ray{Origin: hit.Point, Dir: reflectDir}, depth-1)
		color = color.Mul(1 - mat.Reflectivity).Add(reflectColor.Mul(mat.Reflectivity))
	}

	return color
}

// calculateLighting accumulates the ambient, emissive, diffuse and
// specular terms for a surface hit.
func calculateLighting(sc *scene.Scene, hit *HitRecord, mat *scene.Material, viewDir types.Vec3) types.Vec3 {
	color := mat.Color.Mul(mat.Ambient)
	color = color.Add(mat.Emissive.Mul(mat.EmissiveStrength))

	for i := range sc.Lights {
		light := &sc.Lights[i]

		toLight := light.Position.Sub(hit.Point)
		distance := toLight.Len()
		lightDir := toLight.Mul(1 / distance)

		if isInShadow(sc, hit.Point, lightDir, distance) {
			continue
		}

		attenuation := light.Intensity / (1 + attenuationLinear*distance + attenuationQuadratic*distance*distance)

		diffuseStrength := math32.Max(0, hit.Normal.Dot(lightDir))
		diffuse := mat.Color.Mul(mat.Diffuse * diffuseStrength * attenuation).MulVec(light.Color)

		halfDir := lightDir.Add(viewDir).Normalize()
		specularStrength := math32.Pow(math32.Max(0, hit.Normal.Dot(halfDir)), mat.Shininess)
		specular := light.Color.Mul(mat.Specular * specularStrength * attenuation)

		color = color.Add(diffuse).Add(specular)
	}

	return color
}

// isInShadow casts a binary-visibility shadow ray towards a light. Only
// opaque shapes occlude; volumetric blocks cast no shadows.
func isInShadow(sc *scene.Scene, point, lightDir types.Vec3, distance float32) bool {
	shadowRay := Ray{Origin: point, Dir: lightDir}
	tMax := distance - hitEpsilon

	for i := range sc.Spheres {
		ref := scene.ShapeRef{Kind: scene.SphereShape, Index: i}
		if _, ok := intersectShape(sc, ref, shadowRay, hitEpsilon, tMax); ok {
			return true
		}
	}
	for i := range sc.Ellipsoids {
		ref := scene.ShapeRef{Kind: scene.EllipsoidShape, Index: i}
		if _, ok := intersectShape(sc, ref, shadowRay, hitEpsilon, tMax); ok {
			return true
		}
	}

	return false
}
