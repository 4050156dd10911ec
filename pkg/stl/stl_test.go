package stl

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"skeletonize3d/pkg/skeleton"
)

var unitScale = [3]float32{1, 1, 1}

// TestVoxelMeshSingleVoxel verifies a lone voxel becomes a closed cube
func TestVoxelMeshSingleVoxel(t *testing.T) {
	v := skeleton.NewVolume(3, 3, 3)
	v.Set(1, 1, 1, 1)

	triangles := VoxelMesh(v, unitScale)

	// 6 faces, 2 triangles each
	if len(triangles) != 12 {
		t.Fatalf("Expected 12 triangles, got %d", len(triangles))
	}

	for _, tri := range triangles {
		for _, vertex := range [][3]float32{tri.Vertex1, tri.Vertex2, tri.Vertex3} {
			for axis := 0; axis < 3; axis++ {
				if vertex[axis] != 1 && vertex[axis] != 2 {
					t.Fatalf("Vertex %v lies outside the voxel cube", vertex)
				}
			}
		}
	}
}

// TestVoxelMeshSharedFaces verifies faces between touching voxels are culled
func TestVoxelMeshSharedFaces(t *testing.T) {
	v := skeleton.NewVolume(4, 1, 1)
	v.Set(0, 0, 0, 1)
	v.Set(1, 0, 0, 1)

	// Two cubes expose 10 faces
	if got := len(VoxelMesh(v, unitScale)); got != 20 {
		t.Errorf("Expected 20 triangles, got %d", got)
	}

	// Diagonal neighbors share no face
	d := skeleton.NewVolume(2, 2, 1)
	d.Set(0, 0, 0, 1)
	d.Set(1, 1, 0, 1)
	if got := len(VoxelMesh(d, unitScale)); got != 24 {
		t.Errorf("Expected 24 triangles, got %d", got)
	}
}

// TestVoxelMeshWinding verifies every triangle winds counter-clockwise
// around its outward normal
func TestVoxelMeshWinding(t *testing.T) {
	v := skeleton.NewVolume(3, 3, 3)
	v.Set(1, 1, 1, 1)
	v.Set(1, 2, 1, 1)
	v.Set(0, 1, 1, 1)

	for i, tri := range VoxelMesh(v, unitScale) {
		var a, b [3]float32
		for k := 0; k < 3; k++ {
			a[k] = tri.Vertex2[k] - tri.Vertex1[k]
			b[k] = tri.Vertex3[k] - tri.Vertex1[k]
		}
		cross := [3]float32{
			a[1]*b[2] - a[2]*b[1],
			a[2]*b[0] - a[0]*b[2],
			a[0]*b[1] - a[1]*b[0],
		}
		dot := cross[0]*tri.Normal[0] + cross[1]*tri.Normal[1] + cross[2]*tri.Normal[2]
		if dot <= 0 {
			t.Errorf("Triangle %d winds against its normal %v", i, tri.Normal)
		}
	}
}

// TestVoxelMeshScale verifies that the scaling functionality works
func TestVoxelMeshScale(t *testing.T) {
	v := skeleton.NewVolume(1, 1, 1)
	v.Set(0, 0, 0, 1)

	scale := [3]float32{2.5, 1.5, 3.0}
	var max [3]float32
	for _, tri := range VoxelMesh(v, scale) {
		for _, vertex := range [][3]float32{tri.Vertex1, tri.Vertex2, tri.Vertex3} {
			for axis := 0; axis < 3; axis++ {
				if vertex[axis] > max[axis] {
					max[axis] = vertex[axis]
				}
			}
		}
	}
	if max != scale {
		t.Errorf("Expected mesh extent %v, got %v", scale, max)
	}
}

func TestVoxelMeshEmpty(t *testing.T) {
	if got := VoxelMesh(skeleton.NewVolume(4, 4, 4), unitScale); len(got) != 0 {
		t.Errorf("Expected no triangles, got %d", len(got))
	}
}

// TestWriteSTL checks the binary layout: 80 byte header, triangle count and
// 50 bytes per triangle
func TestWriteSTL(t *testing.T) {
	triangles := []Triangle{
		{
			Normal:  [3]float32{0, 0, 1},
			Vertex1: [3]float32{0, 0, 0},
			Vertex2: [3]float32{1, 0, 0},
			Vertex3: [3]float32{0, 1, 0},
		},
	}

	var buf bytes.Buffer
	if err := WriteSTL(&buf, triangles); err != nil {
		t.Fatalf("Failed to write STL: %v", err)
	}

	if buf.Len() != 80+4+50 {
		t.Fatalf("Expected %d bytes, got %d", 80+4+50, buf.Len())
	}
	if n := binary.LittleEndian.Uint32(buf.Bytes()[80:84]); n != 1 {
		t.Errorf("Expected triangle count 1, got %d", n)
	}

	var got Triangle
	if err := binary.Read(bytes.NewReader(buf.Bytes()[84:]), binary.LittleEndian, &got); err != nil {
		t.Fatalf("Failed to decode triangle: %v", err)
	}
	if got != triangles[0] {
		t.Errorf("Expected %+v, got %+v", triangles[0], got)
	}
}

// TestSaveToSTL verifies that the STL file can be written
func TestSaveToSTL(t *testing.T) {
	v := skeleton.NewVolume(2, 2, 2)
	v.Set(0, 0, 0, 1)
	triangles := VoxelMesh(v, unitScale)

	path := filepath.Join(t.TempDir(), "mesh.stl")
	if err := SaveToSTL(path, triangles); err != nil {
		t.Fatalf("Failed to save STL: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Failed to stat output file: %v", err)
	}
	want := int64(80 + 4 + 50*len(triangles))
	if info.Size() != want {
		t.Errorf("Expected %d bytes, got %d", want, info.Size())
	}

	if err := SaveToSTL(filepath.Join(t.TempDir(), "missing", "mesh.stl"), triangles); err == nil {
		t.Error("Expected error for missing directory")
	}
}

// BenchmarkVoxelMesh benchmarks surface extraction of a solid block
func BenchmarkVoxelMesh(b *testing.B) {
	v := skeleton.NewVolume(32, 32, 32)
	for z := 4; z < 28; z++ {
		for y := 4; y < 28; y++ {
			for x := 4; x < 28; x++ {
				v.Set(x, y, z, 1)
			}
		}
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		VoxelMesh(v, unitScale)
	}
}
