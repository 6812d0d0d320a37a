package cmd

import (
	"github.com/Pascu-Victor/path-tracer/scene"
	"github.com/Pascu-Victor/path-tracer/types"
)

// Camera orbit parameters: the camera circles above the scene at a fixed
// height while looking towards the volume.
const (
	orbitRadius  = 3.0
	orbitCenterX = 2.0
	orbitCenterZ = 6.0
	orbitHeight  = 1.5

	// Orbit angle advance per rendered frame, in radians.
	orbitStep = 1.0 / 180.0
)

// The fixed point the orbiting camera keeps looking at.
var orbitTarget = types.Vec3{2, 1.5, 0}

// demoScene builds the showcase scene: a cluster of spheres and ellipsoids
// over a ground sphere, three colored lights and an optional voxel volume.
// A failed volume load logs a warning and leaves the scene without it.
func demoScene(datFile, rawFile, shaderKey string) *scene.Scene {
	sc := scene.NewScene()

	redMat := sc.Materials.Add(scene.Material{
		Color:     types.Vec3{0.8, 0.2, 0.2},
		Ambient:   0.1,
		Diffuse:   0.7,
		Specular:  0.3,
		Shininess: 32,
	})
	yellowMat := sc.Materials.Add(scene.Material{
		Color:     types.Vec3{0.8, 0.8, 0.2},
		Ambient:   0.1,
		Diffuse:   0.6,
		Specular:  0.1,
		Shininess: 16,
	})
	blueMat := sc.Materials.Add(scene.Material{
		Color:     types.Vec3{0.2, 0.2, 0.8},
		Ambient:   0.1,
		Diffuse:   0.7,
		Specular:  0.5,
		Shininess: 64,
	})
	// Like Materials.Emissive, plus the optional surface shader routing
	// for the glowing sphere. An empty key selects the built-in shading.
	greenMat := sc.Materials.Add(scene.Material{
		Color:            types.Vec3{0.2, 0.8, 0.2},
		Specular:         0.5,
		Shininess:        32,
		Emissive:         types.Vec3{0.2, 0.8, 0.2},
		EmissiveStrength: 2,
		ShaderKey:        shaderKey,
	})
	mirrorMat := sc.Materials.Mirror(types.Vec3{0.9, 0.9, 0.9}, 0.9)
	volumetricMat := sc.Materials.Volumetric(types.Vec3{0.8, 0.6, 0.4}, 8)

	sc.Spheres = []scene.Sphere{
		scene.NewSphere(types.Vec3{0, 0, -1}, 0.5, types.Vec3{0.8, 0.2, 0.2}, redMat),
		scene.NewSphere(types.Vec3{-1, 0, -1}, 0.3, types.Vec3{0.2, 0.8, 0.2}, greenMat),
		scene.NewSphere(types.Vec3{1, 0, -1}, 0.3, types.Vec3{0.2, 0.2, 0.8}, blueMat),
		scene.NewSphere(types.Vec3{0, -100.5, -1}, 100, types.Vec3{0.8, 0.8, 0.2}, yellowMat),
		scene.NewSphere(types.Vec3{0.5, 0.3, -0.5}, 0.2, types.Vec3{0.9, 0.9, 0.9}, mirrorMat),
		scene.NewSphere(types.Vec3{2, 0.5, 1.5}, 1, types.Vec3{0.8, 0.8, 0.2}, yellowMat),
	}

	sc.Ellipsoids = []scene.Ellipsoid{
		scene.NewEllipsoid(types.Vec3{-2, 0.8, -1}, types.Vec3{0.5, 0.8, 0.3}, types.Vec3{0.8, 0.4, 0.8}, mirrorMat),
		scene.NewEllipsoid(types.Vec3{0, 1.2, -2}, types.Vec3{0.6, 0.4, 0.4}, types.Vec3{0.4, 0.8, 0.8}, blueMat),
	}

	sc.Lights = []scene.Light{
		scene.NewLight(types.Vec3{2, 2, 1}, 1, types.Vec3{1, 0.9, 0.8}),
		scene.NewLight(types.Vec3{-2, 1, 0}, 1, types.Vec3{0.3, 0.5, 1}),
		scene.NewLight(types.Vec3{0, -0.2, 0.5}, 1, types.Vec3{1, 0.4, 0.4}),
	}

	if datFile != "" && rawFile != "" {
		grid, err := scene.ReadVoxelGrid(datFile, rawFile)
		if err != nil {
			logger.Warningf("could not load volume, continuing without it: %v", err)
		} else {
			sc.Volumes = []scene.VolumetricBlock{
				scene.NewVolumetricBlock(types.Vec3{1.5, 1, -0.5}, 0.001, grid, volumetricMat),
			}
		}
	}

	sc.Camera = scene.NewCamera(60)
	sc.Camera.LookAt = orbitTarget
	sc.Camera.Up = types.Vec3{0, 1, 0}
	orbitCamera(sc.Camera, 0)

	return sc
}

// orbitCamera places the camera on its orbit circle at the given angle.
// The look-at target stays fixed on the scene center.
func orbitCamera(camera *scene.Camera, angle float64) {
	camera.LookAt = orbitTarget
	camera.Orbit(types.Vec3{orbitCenterX, 0, orbitCenterZ}, float32(angle), orbitRadius, orbitHeight)
}
