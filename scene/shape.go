package scene

import (
	"github.com/Pascu-Victor/path-tracer/types"
)

// ShapeKind enumerates the closed set of shape variants. Intersection code
// dispatches with a single switch instead of dynamic dispatch; the set of
// kinds is fixed at design time.
type ShapeKind uint8

const (
	SphereShape ShapeKind = iota
	EllipsoidShape
	VolumeShape
)

// ShapeRef identifies one shape inside a Scene: the variant and its index
// in the scene's slice for that variant. Hit records carry one so the
// illumination stage can re-query the shape it hit.
type ShapeRef struct {
	Kind  ShapeKind
	Index int
}

// Sphere is an analytic sphere.
type Sphere struct {
	Center types.Vec3
	Radius float32
	Color  types.Vec3

	Material MaterialID

	// Dense table index resolved by PrepareForRender; -1 until then.
	MaterialIndex int32
}

func NewSphere(center types.Vec3, radius float32, color types.Vec3, material MaterialID) Sphere {
	return Sphere{
		Center:        center,
		Radius:        radius,
		Color:         color,
		Material:      material,
		MaterialIndex: -1,
	}
}

// Ellipsoid is an axis-independent ellipsoid with an optional orientation.
type Ellipsoid struct {
	Center      types.Vec3
	Radii       types.Vec3
	Color       types.Vec3
	Orientation types.Quat

	Material      MaterialID
	MaterialIndex int32
}

func NewEllipsoid(center, radii, color types.Vec3, material MaterialID) Ellipsoid {
	return Ellipsoid{
		Center:        center,
		Radii:         radii,
		Color:         color,
		Orientation:   types.QuatIdent(),
		Material:      material,
		MaterialIndex: -1,
	}
}

// VolumetricBlock places a voxel density grid in the world. The grid's
// world-space bounding box derives from the block position, the per-axis
// voxel pitch and the uniform scale factor.
type VolumetricBlock struct {
	Position types.Vec3
	Scale    float32
	Grid     *VoxelGrid

	Material      MaterialID
	MaterialIndex int32
}

func NewVolumetricBlock(position types.Vec3, scale float32, grid *VoxelGrid, material MaterialID) VolumetricBlock {
	return VolumetricBlock{
		Position:      position,
		Scale:         scale,
		Grid:          grid,
		Material:      material,
		MaterialIndex: -1,
	}
}

// BoundsMin returns the world-space lower corner of the block.
func (vb *VolumetricBlock) BoundsMin() types.Vec3 {
	return vb.Position
}

// BoundsMax returns the world-space upper corner of the block.
func (vb *VolumetricBlock) BoundsMax() types.Vec3 {
	return vb.Position.Add(types.Vec3{
		float32(vb.Grid.Res[0]) * vb.Grid.Thickness[0] * vb.Scale,
		float32(vb.Grid.Res[1]) * vb.Grid.Thickness[1] * vb.Scale,
		float32(vb.Grid.Res[2]) * vb.Grid.Thickness[2] * vb.Scale,
	})
}

// VoxelSize returns the world-space pitch of one voxel along each axis.
func (vb *VolumetricBlock) VoxelSize() types.Vec3 {
	return types.Vec3{
		vb.Grid.Thickness[0] * vb.Scale,
		vb.Grid.Thickness[1] * vb.Scale,
		vb.Grid.Thickness[2] * vb.Scale,
	}
}

// VoxelIndices maps a world point to integer voxel coordinates.
func (vb *VolumetricBlock) VoxelIndices(p types.Vec3) (int, int, int) {
	local := p.Sub(vb.Position)
	size := vb.VoxelSize()
	return floorDiv(local[0], size[0]), floorDiv(local[1], size[1]), floorDiv(local[2], size[2])
}

// Density samples the normalized density at a world point. Points outside
// the grid sample as zero.
func (vb *VolumetricBlock) Density(p types.Vec3) float32 {
	x, y, z := vb.VoxelIndices(p)
	return float32(vb.Grid.Value(x, y, z)) / 255.0
}

// Gradient estimates the density gradient at a world point using central
// differences over neighboring voxels. A homogeneous region yields the
// zero vector; callers fall back to the slab face normal in that case.
func (vb *VolumetricBlock) Gradient(p types.Vec3) types.Vec3 {
	x, y, z := vb.VoxelIndices(p)
	return types.Vec3{
		float32(vb.Grid.Value(x+1, y, z)) - float32(vb.Grid.Value(x-1, y, z)),
		float32(vb.Grid.Value(x, y+1, z)) - float32(vb.Grid.Value(x, y-1, z)),
		float32(vb.Grid.Value(x, y, z+1)) - float32(vb.Grid.Value(x, y, z-1)),
	}
}

func floorDiv(v, size float32) int {
	if size == 0 {
		return 0
	}
	q := v / size
	i := int(q)
	if q < 0 && float32(i) != q {
		i--
	}
	return i
}

// Light is a point light without area.
type Light struct {
	Position  types.Vec3
	Intensity float32
	Color     types.Vec3
}

func NewLight(position types.Vec3, intensity float32, color types.Vec3) Light {
	return Light{Position: position, Intensity: intensity, Color: color}
}
