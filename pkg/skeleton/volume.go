// Package skeleton implements 3D topological thinning of binary volumes
// following Lee, Kashyap and Chu, "Building skeleton models via 3-D medial
// surface/axis thinning algorithms" (CVGIP 56(6), 1994).
//
// A binary object is reduced to a one-voxel-thin medial skeleton while the
// number of connected components, tunnels and cavities is preserved.
package skeleton

import (
	"fmt"
)

// Volume is a 3D grid of single-byte voxels stored plane by plane.
// Voxel (x, y, z) lives at index z*Width*Height + y*Width + x.
//
// Reads outside the grid always return background (0); writes outside the
// grid are ignored. The thinning code relies on this clamping at the surface
// of the volume.
type Volume struct {
	data   []byte
	width  int
	height int
	depth  int
}

// NewVolume allocates an all-background volume. Negative dimensions are
// treated as zero.
func NewVolume(width, height, depth int) *Volume {
	width, height, depth = max(width, 0), max(height, 0), max(depth, 0)
	return &Volume{
		data:   make([]byte, width*height*depth),
		width:  width,
		height: height,
		depth:  depth,
	}
}

// NewVolumeFromData wraps an existing buffer without copying it.
func NewVolumeFromData(data []byte, width, height, depth int) (*Volume, error) {
	if width < 0 || height < 0 || depth < 0 {
		return nil, fmt.Errorf("invalid volume dimensions %dx%dx%d", width, height, depth)
	}
	if len(data) != width*height*depth {
		return nil, fmt.Errorf("buffer holds %d voxels, expected %d for %dx%dx%d",
			len(data), width*height*depth, width, height, depth)
	}
	return &Volume{data: data, width: width, height: height, depth: depth}, nil
}

// Width returns the number of voxels along x.
func (v *Volume) Width() int { return v.width }

// Height returns the number of voxels along y.
func (v *Volume) Height() int { return v.height }

// Depth returns the number of slices along z.
func (v *Volume) Depth() int { return v.depth }

// Data returns the backing buffer. Changes to it are visible to the volume.
func (v *Volume) Data() []byte { return v.data }

// Slice returns the backing plane for slice z, or nil when z is out of range.
func (v *Volume) Slice(z int) []byte {
	if z < 0 || z >= v.depth {
		return nil
	}
	plane := v.width * v.height
	return v.data[z*plane : (z+1)*plane]
}

func (v *Volume) inside(x, y, z int) bool {
	return x >= 0 && x < v.width && y >= 0 && y < v.height && z >= 0 && z < v.depth
}

// Get returns the voxel value at (x, y, z), or 0 outside the volume.
func (v *Volume) Get(x, y, z int) byte {
	if !v.inside(x, y, z) {
		return 0
	}
	return v.data[z*v.width*v.height+y*v.width+x]
}

// Set stores value at (x, y, z). Out-of-range coordinates are ignored.
func (v *Volume) Set(x, y, z int, value byte) {
	if !v.inside(x, y, z) {
		return
	}
	v.data[z*v.width*v.height+y*v.width+x] = value
}

// Binarize turns every nonzero voxel into foreground (1).
func (v *Volume) Binarize() {
	for i, b := range v.data {
		if b != 0 {
			v.data[i] = 1
		}
	}
}

// Count returns the number of foreground voxels.
func (v *Volume) Count() int {
	n := 0
	for _, b := range v.data {
		if b == 1 {
			n++
		}
	}
	return n
}

// Clone returns a deep copy of the volume.
func (v *Volume) Clone() *Volume {
	data := make([]byte, len(v.data))
	copy(data, v.data)
	return &Volume{data: data, width: v.width, height: v.height, depth: v.depth}
}

// Equal reports whether both volumes have the same shape and contents.
func (v *Volume) Equal(other *Volume) bool {
	if other == nil || v.width != other.width || v.height != other.height || v.depth != other.depth {
		return false
	}
	for i := range v.data {
		if v.data[i] != other.data[i] {
			return false
		}
	}
	return true
}

// Foreground returns the coordinates of all foreground voxels in raster
// order (z outer, y middle, x inner).
func (v *Volume) Foreground() []Point {
	var points []Point
	for z := 0; z < v.depth; z++ {
		for y := 0; y < v.height; y++ {
			for x := 0; x < v.width; x++ {
				if v.Get(x, y, z) == 1 {
					points = append(points, Point{X: x, Y: y, Z: z})
				}
			}
		}
	}
	return points
}

// Point is an integer voxel coordinate.
type Point struct {
	X, Y, Z int
}

func (p Point) String() string {
	return fmt.Sprintf("(%d,%d,%d)", p.X, p.Y, p.Z)
}
