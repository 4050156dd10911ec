// Package stack reads and writes binary volumes as image stacks and as
// single-file voxel formats.
package stack

import (
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/tiff"

	"skeletonize3d/internal/models"
	"skeletonize3d/pkg/skeleton"
)

// imageExtensions lists the slice image types LoadDir picks up
var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".tif":  true,
	".tiff": true,
	".bmp":  true,
}

// LoadDir loads every image of dir as one slice of a gray-level volume.
// Files are ordered by the number embedded in their name so that
// "slice_2.png" comes before "slice_10.png". All images must have the same
// dimensions. Voxel values are the 8-bit gray levels of the images; call
// Binarize before thinning.
func LoadDir(dir string) (*skeleton.Volume, []models.Slice, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read input directory: %w", err)
	}

	var imageFiles []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if imageExtensions[ext] {
			imageFiles = append(imageFiles, entry.Name())
		}
	}
	if len(imageFiles) == 0 {
		return nil, nil, fmt.Errorf("no slice images found in %s", dir)
	}

	sort.SliceStable(imageFiles, func(i, j int) bool {
		numI, numJ := extractNumber(imageFiles[i]), extractNumber(imageFiles[j])
		if numI != numJ {
			return numI < numJ
		}
		return imageFiles[i] < imageFiles[j]
	})

	var (
		vol    *skeleton.Volume
		slices []models.Slice
	)
	for z, name := range imageFiles {
		img, err := loadImage(filepath.Join(dir, name))
		if err != nil {
			return nil, nil, fmt.Errorf("failed to load image %s: %w", name, err)
		}

		bounds := img.Bounds()
		if vol == nil {
			vol = skeleton.NewVolume(bounds.Dx(), bounds.Dy(), len(imageFiles))
		} else if bounds.Dx() != vol.Width() || bounds.Dy() != vol.Height() {
			return nil, nil, fmt.Errorf("image %s is %dx%d, expected %dx%d",
				name, bounds.Dx(), bounds.Dy(), vol.Width(), vol.Height())
		}

		plane := vol.Slice(z)
		nonZero := 0
		for y := 0; y < bounds.Dy(); y++ {
			for x := 0; x < bounds.Dx(); x++ {
				g := color.GrayModel.Convert(img.At(bounds.Min.X+x, bounds.Min.Y+y)).(color.Gray)
				plane[y*vol.Width()+x] = g.Y
				if g.Y != 0 {
					nonZero++
				}
			}
		}

		slices = append(slices, models.Slice{
			Index:      z,
			Filename:   name,
			Width:      bounds.Dx(),
			Height:     bounds.Dy(),
			Foreground: nonZero,
		})
	}

	return vol, slices, nil
}

// Binarize turns voxels with a value above threshold into foreground (1)
// and all others into background (0). A threshold of 0 keeps every nonzero
// voxel.
func Binarize(v *skeleton.Volume, threshold uint8) {
	data := v.Data()
	for i, b := range data {
		if b > threshold {
			data[i] = 1
		} else {
			data[i] = 0
		}
	}
}

// SaveDir writes one 8-bit image per slice of v to dir. Foreground voxels
// are written as 255.
func SaveDir(v *skeleton.Volume, dir string, format models.Format) error {
	if !format.IsSliceFormat() {
		return fmt.Errorf("format %q does not store image slices", format)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	for z := 0; z < v.Depth(); z++ {
		filename := filepath.Join(dir, fmt.Sprintf("slice_%04d%s", z, format.Extension()))
		if err := saveImage(filename, SliceImage(v, z), format); err != nil {
			return fmt.Errorf("failed to save slice %d: %w", z, err)
		}
	}
	return nil
}

// SliceImage renders slice z of a binary volume as a gray image with
// foreground voxels at 255.
func SliceImage(v *skeleton.Volume, z int) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, v.Width(), v.Height()))
	plane := v.Slice(z)
	for i, b := range plane {
		if b != 0 {
			img.Pix[i] = 255
		}
	}
	return img
}

// extractNumber extracts the numeric part from a filename
func extractNumber(filename string) int {
	base := filepath.Base(filename)
	numStr := ""
	for _, c := range base {
		if c >= '0' && c <= '9' {
			numStr += string(c)
		}
	}

	if numStr != "" {
		num, err := strconv.Atoi(numStr)
		if err == nil {
			return num
		}
	}
	return 0
}

// loadImage decodes an image in any registered format
func loadImage(path string) (image.Image, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, err
	}
	return img, nil
}

func saveImage(path string, img image.Image, format models.Format) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}

	switch format {
	case models.FormatPNG:
		err = png.Encode(file, img)
	case models.FormatTIFF:
		err = tiff.Encode(file, img, &tiff.Options{Compression: tiff.Deflate})
	case models.FormatJPEG:
		err = jpeg.Encode(file, img, &jpeg.Options{Quality: 100})
	default:
		err = fmt.Errorf("unsupported image format %q", format)
	}
	if err != nil {
		file.Close()
		return err
	}
	return file.Close()
}
