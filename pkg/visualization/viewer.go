package visualization

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"path/filepath"

	"skeletonize3d/pkg/skeleton"
)

// Viewer renders planar views of a binary volume: single slices along any
// axis and maximum-intensity projections. Foreground voxels are drawn white.
type Viewer struct {
	volume *skeleton.Volume

	// sliceGap is the distance between consecutive z slices relative to the
	// in-plane voxel size. Views containing the z axis repeat each slice
	// that many times.
	sliceGap float64
}

// NewViewer creates a new viewer for v
func NewViewer(v *skeleton.Volume, sliceGap float64) *Viewer {
	return &Viewer{
		volume:   v,
		sliceGap: sliceGap,
	}
}

// zRepeat is the number of image rows or columns drawn per z slice
func (v *Viewer) zRepeat() int {
	r := int(math.Round(v.sliceGap))
	if r < 1 {
		return 1
	}
	return r
}

// axisLength returns the number of positions along axis
func (v *Viewer) axisLength(axis string) (int, error) {
	switch axis {
	case "x", "X":
		return v.volume.Width(), nil
	case "y", "Y":
		return v.volume.Height(), nil
	case "z", "Z":
		return v.volume.Depth(), nil
	}
	return 0, fmt.Errorf("invalid axis: %s (must be x, y, or z)", axis)
}

// render builds an image of the plane orthogonal to axis. at reports
// whether the pixel (u, w) is lit, where u and w index the image columns and
// rows in volume coordinates.
func (v *Viewer) render(axis string, at func(u, w int) bool) *image.Gray {
	vol := v.volume
	rep := v.zRepeat()

	var cols, rows int
	var uz, wz bool
	switch axis {
	case "x", "X":
		// columns run along z, rows along y
		cols, rows, uz = vol.Depth()*rep, vol.Height(), true
	case "y", "Y":
		// columns run along x, rows along z
		cols, rows, wz = vol.Width(), vol.Depth()*rep, true
	default:
		cols, rows = vol.Width(), vol.Height()
	}

	img := image.NewGray(image.Rect(0, 0, cols, rows))
	for row := 0; row < rows; row++ {
		w := row
		if wz {
			w /= rep
		}
		for col := 0; col < cols; col++ {
			u := col
			if uz {
				u /= rep
			}
			if at(u, w) {
				img.SetGray(col, row, color.Gray{Y: 255})
			}
		}
	}
	return img
}

// ExtractSlice extracts a 2D slice from the volume along the specified axis
func (v *Viewer) ExtractSlice(axis string, position int) (*image.Gray, error) {
	if position < 0 {
		return nil, fmt.Errorf("position must be non-negative")
	}
	n, err := v.axisLength(axis)
	if err != nil {
		return nil, err
	}
	if position >= n {
		return nil, fmt.Errorf("position %d exceeds %s extent %d", position, axis, n)
	}

	vol := v.volume
	switch axis {
	case "x", "X":
		return v.render(axis, func(z, y int) bool { return vol.Get(position, y, z) != 0 }), nil
	case "y", "Y":
		return v.render(axis, func(x, z int) bool { return vol.Get(x, position, z) != 0 }), nil
	}
	return v.render(axis, func(x, y int) bool { return vol.Get(x, y, position) != 0 }), nil
}

// MaxProjection projects the volume along axis: a pixel is lit when any
// voxel on its ray is foreground.
func (v *Viewer) MaxProjection(axis string) (*image.Gray, error) {
	n, err := v.axisLength(axis)
	if err != nil {
		return nil, err
	}

	vol := v.volume
	var at func(u, w int) bool
	switch axis {
	case "x", "X":
		at = func(z, y int) bool {
			for x := 0; x < n; x++ {
				if vol.Get(x, y, z) != 0 {
					return true
				}
			}
			return false
		}
	case "y", "Y":
		at = func(x, z int) bool {
			for y := 0; y < n; y++ {
				if vol.Get(x, y, z) != 0 {
					return true
				}
			}
			return false
		}
	default:
		at = func(x, y int) bool {
			for z := 0; z < n; z++ {
				if vol.Get(x, y, z) != 0 {
					return true
				}
			}
			return false
		}
	}
	return v.render(axis, at), nil
}

// ExtractRegion copies the box starting at (startX, startY, startZ) with the
// given size into a new volume.
func (v *Viewer) ExtractRegion(startX, startY, startZ, sizeX, sizeY, sizeZ int) (*skeleton.Volume, error) {
	if startX < 0 || startY < 0 || startZ < 0 {
		return nil, fmt.Errorf("start coordinates must be non-negative")
	}
	if sizeX <= 0 || sizeY <= 0 || sizeZ <= 0 {
		return nil, fmt.Errorf("size dimensions must be positive")
	}
	vol := v.volume
	if startX+sizeX > vol.Width() || startY+sizeY > vol.Height() || startZ+sizeZ > vol.Depth() {
		return nil, fmt.Errorf("region extends beyond volume boundaries")
	}

	region := skeleton.NewVolume(sizeX, sizeY, sizeZ)
	for z := 0; z < sizeZ; z++ {
		for y := 0; y < sizeY; y++ {
			for x := 0; x < sizeX; x++ {
				region.Set(x, y, z, vol.Get(startX+x, startY+y, startZ+z))
			}
		}
	}
	return region, nil
}

// SaveSlice saves an image as PNG
func (v *Viewer) SaveSlice(img image.Image, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}

	if err := png.Encode(file, img); err != nil {
		file.Close()
		return fmt.Errorf("failed to encode %s: %w", filename, err)
	}
	return file.Close()
}

// SaveSliceSequence extracts and saves every slice along the specified axis
func (v *Viewer) SaveSliceSequence(axis string, outputDir string) error {
	n, err := v.axisLength(axis)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return err
	}

	for pos := 0; pos < n; pos++ {
		img, err := v.ExtractSlice(axis, pos)
		if err != nil {
			return err
		}

		filename := filepath.Join(outputDir, fmt.Sprintf("slice_%s_%03d.png", axis, pos))
		if err := v.SaveSlice(img, filename); err != nil {
			return err
		}
	}

	return nil
}

// SaveProjections writes the maximum-intensity projections along x, y and z
// to outputDir as projection_<axis>.png.
func (v *Viewer) SaveProjections(outputDir string) error {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return err
	}

	for _, axis := range []string{"x", "y", "z"} {
		img, err := v.MaxProjection(axis)
		if err != nil {
			return err
		}
		if err := v.SaveSlice(img, filepath.Join(outputDir, "projection_"+axis+".png")); err != nil {
			return fmt.Errorf("failed to save %s projection: %w", axis, err)
		}
	}
	return nil
}
