package stack

import (
	"bufio"
	"fmt"
	"io"
	"math"

	"skeletonize3d/pkg/skeleton"
)

const (
	binvoxSignature = "#binvox 1\n"

	// maxBinvoxDim bounds each grid dimension read from a file
	maxBinvoxDim = 4096
)

// BinvoxInfo holds the placement of a binvox grid in model space.
type BinvoxInfo struct {
	Translate [3]float64
	Scale     float64
}

// binvox grids are stored with y running fastest, then z, then x. The
// header lists the x, z and y extents in that order. A volume maps binvox
// x, y, z onto its own x, y, z.

// ReadBinvox decodes a binvox 1 stream. Occupied voxels become 1.
func ReadBinvox(r io.Reader) (*skeleton.Volume, *BinvoxInfo, error) {
	br := bufio.NewReader(r)
	if _, err := fmt.Fscanf(br, binvoxSignature); err != nil {
		return nil, nil, fmt.Errorf("not a binvox file: %w", err)
	}

	var nx, nz, ny int
	if _, err := fmt.Fscanf(br, "dim %d %d %d\n", &nx, &nz, &ny); err != nil {
		return nil, nil, fmt.Errorf("failed to read binvox dimensions: %w", err)
	}
	if nx <= 0 || ny <= 0 || nz <= 0 || nx > maxBinvoxDim || ny > maxBinvoxDim || nz > maxBinvoxDim {
		return nil, nil, fmt.Errorf("invalid binvox dimensions: %d x %d x %d", nx, nz, ny)
	}
	if nx*ny*nz > maxVolumeVoxels {
		return nil, nil, fmt.Errorf("binvox grid of %d x %d x %d voxels is too large", nx, nz, ny)
	}

	info := &BinvoxInfo{}
	if _, err := fmt.Fscanf(br, "translate %f %f %f\n", &info.Translate[0], &info.Translate[1], &info.Translate[2]); err != nil {
		return nil, nil, fmt.Errorf("failed to read binvox translation: %w", err)
	}
	if _, err := fmt.Fscanf(br, "scale %f\n", &info.Scale); err != nil {
		return nil, nil, fmt.Errorf("failed to read binvox scale: %w", err)
	}
	if _, err := fmt.Fscanf(br, "data\n"); err != nil {
		return nil, nil, fmt.Errorf("missing binvox data section: %w", err)
	}

	v := skeleton.NewVolume(nx, ny, nz)
	total := nx * ny * nz

	// Runs are (value, count) byte pairs.
	for i := 0; i < total; {
		value, err := br.ReadByte()
		if err != nil {
			return nil, nil, fmt.Errorf("truncated binvox data at voxel %d: %w", i, err)
		}
		count, err := br.ReadByte()
		if err != nil {
			return nil, nil, fmt.Errorf("truncated binvox data at voxel %d: %w", i, err)
		}
		if i+int(count) > total {
			return nil, nil, fmt.Errorf("binvox run exceeds grid size")
		}
		if value != 0 {
			for j := i; j < i+int(count); j++ {
				x, y, z := binvoxCoords(j, ny, nz)
				v.Set(x, y, z, 1)
			}
		}
		i += int(count)
	}
	if _, err := br.ReadByte(); err != io.EOF {
		if err == nil {
			err = fmt.Errorf("unexpected data past end of grid")
		}
		return nil, nil, err
	}

	return v, info, nil
}

// WriteBinvox encodes v as a binvox 1 stream. A nil info writes an
// untranslated unit-scale grid.
func WriteBinvox(w io.Writer, v *skeleton.Volume, info *BinvoxInfo) error {
	if info == nil {
		info = &BinvoxInfo{Scale: 1}
	}
	nx, ny, nz := v.Width(), v.Height(), v.Depth()

	bw := bufio.NewWriter(w)
	bw.WriteString(binvoxSignature)
	fmt.Fprintf(bw, "dim %d %d %d\n", nx, nz, ny)
	fmt.Fprintf(bw, "translate %.6f %.6f %.6f\n", info.Translate[0], info.Translate[1], info.Translate[2])
	fmt.Fprintf(bw, "scale %.6f\n", info.Scale)
	bw.WriteString("data\n")

	set, n := false, 0
	writeRun := func() {
		if n > 0 {
			if set {
				bw.WriteByte(1)
			} else {
				bw.WriteByte(0)
			}
			bw.WriteByte(byte(n))
		}
	}
	for i := 0; i < nx*ny*nz; i++ {
		x, y, z := binvoxCoords(i, ny, nz)
		value := v.Get(x, y, z) != 0
		if value == set && n < math.MaxUint8 {
			n++
		} else {
			writeRun()
			set = value
			n = 1
		}
	}
	writeRun()
	return bw.Flush()
}

// binvoxCoords converts a binvox linear index to volume coordinates.
func binvoxCoords(i, ny, nz int) (x, y, z int) {
	x = i / (ny * nz)
	i -= x * ny * nz
	z = i / ny
	y = i - z*ny
	return
}
