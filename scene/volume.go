package scene

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Pascu-Victor/path-tracer/log"
)

var volumeLogger = log.New("volume")

// VoxelGrid holds a dense 3D array of byte densities together with the
// per-axis slice thickness from the metadata sidecar.
type VoxelGrid struct {
	Res       [3]int
	Thickness [3]float32
	Data      []uint8
}

// Value returns the raw byte density at integer voxel coordinates.
// Out-of-range coordinates sample as zero (clamped, not wrapped).
func (g *VoxelGrid) Value(x, y, z int) uint8 {
	if x < 0 || y < 0 || z < 0 || x >= g.Res[0] || y >= g.Res[1] || z >= g.Res[2] {
		return 0
	}
	return g.Data[z*g.Res[1]*g.Res[0]+y*g.Res[0]+x]
}

// ReadVoxelGrid loads a voxel volume from a metadata file with `Key: value`
// lines (at minimum `Resolution: X Y Z`, optionally `SliceThickness: X Y Z`)
// and a companion flat binary file of X*Y*Z density bytes. A raw file
// shorter than expected logs a warning and leaves the missing tail at zero
// density.
func ReadVoxelGrid(datFile, rawFile string) (*VoxelGrid, error) {
	grid := &VoxelGrid{
		Res:       [3]int{1, 1, 1},
		Thickness: [3]float32{1, 1, 1},
	}

	df, err := os.Open(datFile)
	if err != nil {
		return nil, fmt.Errorf("volume: could not open metadata file %s: %v", datFile, err)
	}
	defer df.Close()

	scanner := bufio.NewScanner(df)
	for scanner.Scan() {
		key, value, ok := strings.Cut(scanner.Text(), ":")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)

		switch key {
		case "Resolution":
			if _, err = fmt.Sscanf(value, "%d %d %d", &grid.Res[0], &grid.Res[1], &grid.Res[2]); err != nil {
				return nil, fmt.Errorf("volume: malformed Resolution line in %s: %q", datFile, value)
			}
		case "SliceThickness":
			if _, err = fmt.Sscanf(value, "%f %f %f", &grid.Thickness[0], &grid.Thickness[1], &grid.Thickness[2]); err != nil {
				return nil, fmt.Errorf("volume: malformed SliceThickness line in %s: %q", datFile, value)
			}
		}
	}
	if err = scanner.Err(); err != nil {
		return nil, fmt.Errorf("volume: error reading metadata file %s: %v", datFile, err)
	}

	expected := grid.Res[0] * grid.Res[1] * grid.Res[2]
	if expected <= 0 {
		return nil, fmt.Errorf("volume: invalid resolution %v in %s", grid.Res, datFile)
	}
	grid.Data = make([]uint8, expected)

	rf, err := os.Open(rawFile)
	if err != nil {
		return nil, fmt.Errorf("volume: could not open raw file %s: %v", rawFile, err)
	}
	defer rf.Close()

	read, err := io.ReadFull(rf, grid.Data)
	if err == io.ErrUnexpectedEOF || err == io.EOF {
		// Missing data is treated as zero density.
		volumeLogger.Warningf("short read from %s: expected %d bytes, got %d", rawFile, expected, read)
	} else if err != nil {
		return nil, fmt.Errorf("volume: error reading raw file %s: %v", rawFile, err)
	}

	volumeLogger.Infof("loaded %dx%dx%d voxel grid (%d bytes) from %s", grid.Res[0], grid.Res[1], grid.Res[2], read, rawFile)
	return grid, nil
}
