package scene

import "fmt"

// interner collapses MaterialID references into a dense, deduplicated
// table. The dedup key is the handle (identity), never value equality: two
// arena entries with identical fields stay two table entries.
type interner struct {
	arena *MaterialArena
	index map[MaterialID]int32
	table []Material
}

func (in *interner) resolve(id MaterialID) (int32, error) {
	if id == NoMaterial {
		return -1, nil
	}
	if idx, ok := in.index[id]; ok {
		return idx, nil
	}

	mat, ok := in.arena.Get(id)
	if !ok {
		return -1, fmt.Errorf("scene: shape references unknown material %d", id)
	}

	idx := int32(len(in.table))
	in.table = append(in.table, *mat)
	in.index[id] = idx
	return idx, nil
}

// PrepareForRender builds the interned material table for a scene and
// overwrites each shape's MaterialIndex with its resolved dense index.
// Table order is first-seen order across the collections in the order they
// are processed: spheres, then ellipsoids, then volumes. Shapes without a
// material keep index -1 and contribute no table entry. The pass must be
// re-run after any shape's material reference changes.
func PrepareForRender(arena *MaterialArena, spheres []Sphere, ellipsoids []Ellipsoid, volumes []VolumetricBlock) ([]Material, error) {
	in := &interner{
		arena: arena,
		index: make(map[MaterialID]int32),
	}

	var err error
	for i := range spheres {
		if spheres[i].MaterialIndex, err = in.resolve(spheres[i].Material); err != nil {
			return nil, err
		}
	}
	for i := range ellipsoids {
		if ellipsoids[i].MaterialIndex, err = in.resolve(ellipsoids[i].Material); err != nil {
			return nil, err
		}
	}
	for i := range volumes {
		if volumes[i].MaterialIndex, err = in.resolve(volumes[i].Material); err != nil {
			return nil, err
		}
	}

	return in.table, nil
}
