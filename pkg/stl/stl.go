// Package stl exports binary volumes as triangle meshes in binary STL format.
package stl

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"skeletonize3d/pkg/skeleton"
)

// Triangle is one facet of a mesh
type Triangle struct {
	Normal  [3]float32
	Vertex1 [3]float32
	Vertex2 [3]float32
	Vertex3 [3]float32
}

// face describes one side of a unit voxel cube: the neighbor offset that
// must be background for the face to be visible, its outward normal and its
// four corners in counter-clockwise order seen from outside.
type face struct {
	offset  [3]int
	normal  [3]float32
	corners [4][3]float32
}

var cubeFaces = [6]face{
	{[3]int{1, 0, 0}, [3]float32{1, 0, 0}, [4][3]float32{{1, 0, 0}, {1, 1, 0}, {1, 1, 1}, {1, 0, 1}}},
	{[3]int{-1, 0, 0}, [3]float32{-1, 0, 0}, [4][3]float32{{0, 0, 0}, {0, 0, 1}, {0, 1, 1}, {0, 1, 0}}},
	{[3]int{0, 1, 0}, [3]float32{0, 1, 0}, [4][3]float32{{0, 1, 0}, {0, 1, 1}, {1, 1, 1}, {1, 1, 0}}},
	{[3]int{0, -1, 0}, [3]float32{0, -1, 0}, [4][3]float32{{0, 0, 0}, {1, 0, 0}, {1, 0, 1}, {0, 0, 1}}},
	{[3]int{0, 0, 1}, [3]float32{0, 0, 1}, [4][3]float32{{0, 0, 1}, {1, 0, 1}, {1, 1, 1}, {0, 1, 1}}},
	{[3]int{0, 0, -1}, [3]float32{0, 0, -1}, [4][3]float32{{0, 0, 0}, {0, 1, 0}, {1, 1, 0}, {1, 0, 0}}},
}

// VoxelMesh builds the boundary surface of all foreground voxels of v. Each
// voxel is a cube scaled by scale along x, y and z; faces shared by two
// foreground voxels are dropped.
func VoxelMesh(v *skeleton.Volume, scale [3]float32) []Triangle {
	var triangles []Triangle
	for z := 0; z < v.Depth(); z++ {
		for y := 0; y < v.Height(); y++ {
			for x := 0; x < v.Width(); x++ {
				if v.Get(x, y, z) == 0 {
					continue
				}
				for _, f := range cubeFaces {
					if v.Get(x+f.offset[0], y+f.offset[1], z+f.offset[2]) != 0 {
						continue
					}
					var c [4][3]float32
					for i, corner := range f.corners {
						c[i] = [3]float32{
							(float32(x) + corner[0]) * scale[0],
							(float32(y) + corner[1]) * scale[1],
							(float32(z) + corner[2]) * scale[2],
						}
					}
					triangles = append(triangles,
						Triangle{Normal: f.normal, Vertex1: c[0], Vertex2: c[1], Vertex3: c[2]},
						Triangle{Normal: f.normal, Vertex1: c[0], Vertex2: c[2], Vertex3: c[3]},
					)
				}
			}
		}
	}
	return triangles
}

// WriteSTL writes triangles as a binary STL stream
func WriteSTL(w io.Writer, triangles []Triangle) error {
	bw := bufio.NewWriter(w)

	var header [80]byte
	copy(header[:], "skeletonize3d binary STL")
	if _, err := bw.Write(header[:]); err != nil {
		return err
	}
	if err := binary.Write(bw, binary.LittleEndian, uint32(len(triangles))); err != nil {
		return err
	}

	for _, t := range triangles {
		if err := binary.Write(bw, binary.LittleEndian, t); err != nil {
			return err
		}
		// attribute byte count
		if err := binary.Write(bw, binary.LittleEndian, uint16(0)); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// SaveToSTL writes triangles to a binary STL file
func SaveToSTL(filename string, triangles []Triangle) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create STL file: %w", err)
	}
	if err := WriteSTL(file, triangles); err != nil {
		file.Close()
		return fmt.Errorf("failed to write STL file: %w", err)
	}
	return file.Close()
}
