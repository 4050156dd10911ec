package stack

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"skeletonize3d/internal/models"
	"skeletonize3d/pkg/skeleton"
)

// maxVolumeVoxels bounds the voxel count of a volume file, checked before
// anything is allocated.
const maxVolumeVoxels = 1 << 30

// Load reads a volume from a directory of slice images, a .binvox file or
// a raw .skv file. Slice images keep their gray levels; the other formats
// are binary already.
func Load(path string) (*skeleton.Volume, []models.Slice, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open input: %w", err)
	}
	if info.IsDir() {
		return LoadDir(path)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open input: %w", err)
	}
	defer file.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case models.FormatBinvox.Extension():
		v, _, err := ReadBinvox(file)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		return v, nil, nil
	case models.FormatRaw.Extension():
		v, _, err := ReadRaw(file)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		return v, nil, nil
	}
	return nil, nil, fmt.Errorf("unsupported input %s", path)
}

// LoadBinary reads path like Load and turns it into a 0/1 volume. Slice
// stacks hold gray levels and are cut at threshold; volume files are binary
// already and only have nonzero voxels mapped to 1.
func LoadBinary(path string, threshold uint8) (*skeleton.Volume, []models.Slice, error) {
	v, slices, err := Load(path)
	if err != nil {
		return nil, nil, err
	}
	if slices != nil {
		Binarize(v, threshold)
	} else {
		v.Binarize()
	}
	return v, slices, nil
}

// Save writes v to path. Slice formats treat path as a directory; the raw
// format compresses its payload with codec.
func Save(v *skeleton.Volume, path string, format models.Format, codec Codec) error {
	if format.IsSliceFormat() {
		return SaveDir(v, path, format)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}

	switch format {
	case models.FormatBinvox:
		err = WriteBinvox(file, v, nil)
	case models.FormatRaw:
		err = WriteRaw(file, v, codec)
	default:
		err = fmt.Errorf("unsupported output format %q", format)
	}
	if err != nil {
		file.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return file.Close()
}
