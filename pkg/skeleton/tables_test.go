package skeleton

import (
	"math/bits"
	"math/rand"
	"testing"
)

// cubeIndex maps a Neighborhood index to the index of the same cell in the
// 26-cell array used for labeling.
func cubeIndex(i int) int {
	if i > Center {
		return i - 1
	}
	return i
}

// octantSigns gives the (x, y, z) half each octant lies in; north is -y,
// west is -x and bottom is -z.
var octantSigns = [8][3]int{
	SWU: {-1, 1, 1},
	SEU: {1, 1, 1},
	NWU: {-1, -1, 1},
	NEU: {1, -1, 1},
	SWB: {-1, 1, -1},
	SEB: {1, 1, -1},
	NWB: {-1, -1, -1},
	NEB: {1, -1, -1},
}

// TestOctantCellsGeometry checks every octant lists the seven non-center
// cells of its 2x2x2 corner cube
func TestOctantCellsGeometry(t *testing.T) {
	for o := SWU; o <= NEB; o++ {
		seen := map[int]bool{}
		for _, cell := range octantCells[o] {
			if cell == Center || cell < 0 || cell > 26 {
				t.Fatalf("%s: invalid cell %d", o, cell)
			}
			if seen[cell] {
				t.Fatalf("%s: duplicate cell %d", o, cell)
			}
			seen[cell] = true

			d := [3]int{}
			d[0], d[1], d[2] = NeighborOffset(cell)
			for axis := 0; axis < 3; axis++ {
				if d[axis] != 0 && d[axis] != octantSigns[o][axis] {
					t.Errorf("%s: cell %d with offset %v lies outside the octant", o, cell, d)
				}
			}
		}
	}
}

// referenceOctants is the hand-enumerated octant membership used by the
// recursive N(v) labeling of [Lee94], in its 1-based octant numbering and
// 26-cell indexing.
var referenceOctants = map[int]struct {
	octant Octant
	cells  []int
}{
	1: {NWB, []int{0, 1, 3, 4, 9, 10, 12}},
	2: {NEB, []int{1, 2, 4, 5, 10, 11, 13}},
	3: {SWB, []int{3, 4, 6, 7, 12, 14, 15}},
	4: {SEB, []int{4, 5, 7, 8, 13, 15, 16}},
	5: {NWU, []int{9, 10, 12, 17, 18, 20, 21}},
	6: {NEU, []int{10, 11, 13, 18, 19, 21, 22}},
	7: {SWU, []int{12, 14, 15, 20, 21, 23, 24}},
	8: {SEU, []int{13, 15, 16, 21, 22, 24, 25}},
}

// TestOctantTablesAgree compares the labeling tables cell by cell with the
// reference enumeration and with the Euler octant table
func TestOctantTablesAgree(t *testing.T) {
	for num, ref := range referenceOctants {
		got := map[int]bool{}
		for _, c := range octantCube[ref.octant] {
			got[c] = true
		}
		for _, c := range ref.cells {
			if !got[c] {
				t.Errorf("Octant %d (%s): expected cell %d in %v", num, ref.octant, c, octantCube[ref.octant])
			}
		}

		euler := map[int]bool{}
		for _, cell := range octantCells[ref.octant] {
			euler[cubeIndex(cell)] = true
		}
		for _, c := range ref.cells {
			if !euler[c] {
				t.Errorf("Octant %d (%s): Euler cells do not contain cube cell %d", num, ref.octant, c)
			}
		}
	}

	total := 0
	for c, m := range octantMembership {
		total += bits.OnesCount8(m)
		for o := SWU; o <= NEB; o++ {
			in := false
			for _, cell := range octantCube[o] {
				if cell == c {
					in = true
				}
			}
			if in != (m&(1<<o) != 0) {
				t.Errorf("Cell %d: membership %08b disagrees with octant %s", c, m, o)
			}
		}
	}
	if total != 8*7 {
		t.Errorf("Expected 56 memberships in total, got %d", total)
	}
}

// TestOctantAdjacencyIs26Adjacency checks that sharing an octant is the
// same relation as being 26-adjacent
func TestOctantAdjacencyIs26Adjacency(t *testing.T) {
	for a := 0; a < 27; a++ {
		for b := 0; b < 27; b++ {
			if a == Center || b == Center || a == b {
				continue
			}
			share := octantMembership[cubeIndex(a)]&octantMembership[cubeIndex(b)] != 0
			if share != adjacent26(a, b) {
				t.Errorf("Cells %d and %d: share octant %v, 26-adjacent %v", a, b, share, adjacent26(a, b))
			}
		}
	}
}

func adjacent26(a, b int) bool {
	ax, ay, az := NeighborOffset(a)
	bx, by, bz := NeighborOffset(b)
	return abs(ax-bx) <= 1 && abs(ay-by) <= 1 && abs(az-bz) <= 1
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func TestEulerLUT(t *testing.T) {
	nonZero := 0
	for i, v := range EulerLUT {
		if i%2 == 0 && v != 0 {
			t.Errorf("Expected even entry %d to be unused, got %d", i, v)
		}
		if v < -7 || v > 5 {
			t.Errorf("Entry %d out of range: %d", i, v)
		}
		if v != 0 {
			nonZero++
		}
	}
	if nonZero != 128 {
		t.Errorf("Expected 128 populated entries, got %d", nonZero)
	}

	spot := map[int]int{1: 1, 9: -3, 105: 5, 129: -7, 233: 5, 255: -1}
	for i, want := range spot {
		if EulerLUT[i] != want {
			t.Errorf("EulerLUT[%d]: expected %d, got %d", i, want, EulerLUT[i])
		}
	}
}

// neighborhoodOf builds a neighborhood with the center and the given cells set
func neighborhoodOf(cells ...int) Neighborhood {
	var n Neighborhood
	n[Center] = 1
	for _, c := range cells {
		n[c] = 1
	}
	return n
}

func TestEulerInvariance(t *testing.T) {
	plane := []int{9, 10, 11, 12, 14, 15, 16, 17}
	all := make([]int, 0, 26)
	for i := 0; i < 27; i++ {
		if i != Center {
			all = append(all, i)
		}
	}

	tests := []struct {
		name  string
		cells []int
		want  bool
	}{
		{"isolated voxel", nil, false},
		{"end of line", []int{14}, true},
		{"middle of line", []int{12, 14}, false},
		{"center of plate", plane, false},
		{"edge of plate", []int{12, 14, 15, 16, 17}, true},
		{"interior of solid", all, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := neighborhoodOf(tt.cells...)
			if got := IsEulerInvariant(n); got != tt.want {
				t.Errorf("Expected Euler invariant %v, got %v (change %d)", tt.want, got, EulerCharacteristicChange(n))
			}
		})
	}

	if got := EulerCharacteristicChange(neighborhoodOf()); got != 8 {
		t.Errorf("Expected isolated voxel to change the characteristic by 8, got %d", got)
	}
}

func TestSimplePoint(t *testing.T) {
	tests := []struct {
		name       string
		cells      []int
		simple     bool
		components int
	}{
		{"isolated voxel", nil, true, 0},
		{"end of line", []int{14}, true, 1},
		{"bridge between two sides", []int{12, 14}, false, 2},
		{"bridge between opposite corners", []int{0, 26}, false, 2},
		{"diagonal chain", []int{0, 4, 8}, true, 1},
		{"three separate corners", []int{0, 2, 26}, false, 3},
		{"edge of plate", []int{12, 14, 15, 16, 17}, true, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := neighborhoodOf(tt.cells...)
			if got := IsSimplePoint(n); got != tt.simple {
				t.Errorf("Expected simple %v, got %v", tt.simple, got)
			}
			if got := ComponentCount(n); got != tt.components {
				t.Errorf("Expected %d components, got %d", tt.components, got)
			}
		})
	}
}

// bfsComponents counts 26-connected components among the 26 neighbors
// without using the octant tables.
func bfsComponents(n Neighborhood) int {
	var seen [27]bool
	components := 0
	for start := 0; start < 27; start++ {
		if start == Center || n[start] != 1 || seen[start] {
			continue
		}
		components++
		stack := []int{start}
		seen[start] = true
		for len(stack) > 0 {
			c := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			for next := 0; next < 27; next++ {
				if next == Center || next == c || seen[next] || n[next] != 1 {
					continue
				}
				if adjacent26(c, next) {
					seen[next] = true
					stack = append(stack, next)
				}
			}
		}
	}
	return components
}

// TestLabelingMatchesBFS compares the octant labeling with a plain
// breadth-first count on random neighborhoods
func TestLabelingMatchesBFS(t *testing.T) {
	rng := rand.New(rand.NewSource(1994))
	trials := 20000
	if testing.Short() {
		trials = 2000
	}
	for trial := 0; trial < trials; trial++ {
		var n Neighborhood
		density := rng.Float64()
		for i := range n {
			if rng.Float64() < density {
				n[i] = 1
			}
		}
		n[Center] = 1

		want := bfsComponents(n)
		if got := ComponentCount(n); got != want {
			t.Fatalf("Neighborhood %v: expected %d components, got %d", n, want, got)
		}
		if got := IsSimplePoint(n); got != (want < 2) {
			t.Fatalf("Neighborhood %v: expected simple %v, got %v", n, want < 2, got)
		}
	}
}

func TestLabelingDoesNotModifyInput(t *testing.T) {
	n := neighborhoodOf(0, 26, 14)
	before := n
	IsSimplePoint(n)
	ComponentCount(n)
	IsEulerInvariant(n)
	if n != before {
		t.Error("Expected neighborhood to be left unchanged")
	}
}

func TestOctantNames(t *testing.T) {
	if SWU.String() != "SWU" || NEB.String() != "NEB" || Octant(8).String() != "unknown" {
		t.Errorf("Unexpected octant names: %s %s %s", SWU, NEB, Octant(8))
	}
}
