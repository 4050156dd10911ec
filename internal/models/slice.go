package models

// Slice describes one image of a loaded stack
type Slice struct {
	// Index is the position of this slice in the stack (z coordinate)
	Index int

	// Filename is the original filename of the slice
	Filename string

	// Width and Height are the image dimensions in pixels
	Width  int
	Height int

	// Foreground is the number of pixels above the binarization threshold
	Foreground int
}

// Format identifies a volume file format
type Format string

const (
	// FormatPNG writes one PNG image per slice
	FormatPNG Format = "png"

	// FormatTIFF writes one deflate-compressed TIFF image per slice
	FormatTIFF Format = "tiff"

	// FormatJPEG writes one JPEG image per slice
	FormatJPEG Format = "jpeg"

	// FormatBinvox is the run-length encoded binvox format
	FormatBinvox Format = "binvox"

	// FormatRaw is the raw voxel container, optionally compressed
	FormatRaw Format = "raw"
)

// IsSliceFormat reports whether f stores one image per slice in a directory
func (f Format) IsSliceFormat() bool {
	return f == FormatPNG || f == FormatTIFF || f == FormatJPEG
}

// Extension returns the file extension used for f, including the dot
func (f Format) Extension() string {
	switch f {
	case FormatJPEG:
		return ".jpg"
	case FormatTIFF:
		return ".tif"
	case FormatBinvox:
		return ".binvox"
	case FormatRaw:
		return ".skv"
	default:
		return "." + string(f)
	}
}
