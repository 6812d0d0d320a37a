package scene

import (
	"math"

	"github.com/Pascu-Victor/path-tracer/types"
)

// The camera type controls the scene camera.
type Camera struct {
	Position types.Vec3
	LookAt   types.Vec3
	Up       types.Vec3
	Pitch    float32
	Yaw      float32

	ViewMat types.Mat4
	ProjMat types.Mat4

	// Vertical field of view in degrees.
	FOV float32
}

func NewCamera(fov float32) *Camera {
	return &Camera{
		ViewMat:  types.Ident4(),
		ProjMat:  types.Ident4(),
		Position: types.Vec3{0, 0, 0},
		LookAt:   types.Vec3{0, 0, -1},
		Up:       types.Vec3{0, 1, 0},
		FOV:      fov,
	}
}

// Setup camera projection matrix.
func (c *Camera) SetupProjection(aspect float32) {
	c.ProjMat = types.Perspective4(c.FOV, aspect, 0.1, 100)
	c.Update()
}

// Update camera view matrix, applying any pending pitch/yaw rotation to
// the view direction.
func (c *Camera) Update() {
	dir := c.LookAt.Sub(c.Position).Normalize()
	pitchAxis := dir.Cross(c.Up)
	pitchQuat := types.QuatFromAxisAngle(pitchAxis, c.Pitch)
	yawQuat := types.QuatFromAxisAngle(c.Up, c.Yaw)

	orientQuat := pitchQuat.Mul(yawQuat).Normalize()

	dir = orientQuat.Rotate(dir)
	c.LookAt = c.Position.Add(dir)

	c.ViewMat = types.LookAtV(c.Position, c.LookAt, c.Up)
}

// InvViewProjMat returns the inverse view-projection matrix used by the
// kernels to unproject pixel coordinates into world-space rays.
func (c *Camera) InvViewProjMat() types.Mat4 {
	return c.ProjMat.Mul4(c.ViewMat).Inv()
}

// Orbit places the camera on a circle of the given radius around the xz
// coordinates of center, at the given angle (radians) and height, and
// refreshes the view matrix. The look-at target is left untouched.
func (c *Camera) Orbit(center types.Vec3, angle, radius, height float32) {
	c.Position = types.Vec3{
		center[0] + radius*float32(math.Cos(float64(angle))),
		height,
		center[2] + radius*float32(math.Sin(float64(angle))),
	}
	c.ViewMat = types.LookAtV(c.Position, c.LookAt, c.Up)
}
