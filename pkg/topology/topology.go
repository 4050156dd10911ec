// Package topology counts the connected components and cavities of binary
// volumes. It is independent of the thinning code and is used to check that
// a skeleton keeps the topology of the object it was computed from.
package topology

import (
	"fmt"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"

	"skeletonize3d/pkg/skeleton"
)

// Signature summarizes the topology of a binary volume.
type Signature struct {
	// Components is the number of 26-connected foreground components.
	Components int

	// Cavities is the number of 6-connected background components that do
	// not reach the outside of the volume.
	Cavities int

	// Voxels is the number of foreground voxels.
	Voxels int
}

func (s Signature) String() string {
	return fmt.Sprintf("%d component(s), %d cavit(ies), %d voxel(s)", s.Components, s.Cavities, s.Voxels)
}

// SameTopology reports whether both signatures have the same component and
// cavity counts. Voxel counts are ignored.
func (s Signature) SameTopology(other Signature) bool {
	return s.Components == other.Components && s.Cavities == other.Cavities
}

// Describe computes the signature of v.
func Describe(v *skeleton.Volume) Signature {
	return Signature{
		Components: ForegroundComponents(v),
		Cavities:   Cavities(v),
		Voxels:     v.Count(),
	}
}

// forward26 holds the half of the 26 neighbor offsets that come after the
// origin in raster order, so every adjacent pair is linked once.
var forward26 = func() [][3]int {
	var offsets [][3]int
	for dz := -1; dz <= 1; dz++ {
		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				if dz > 0 || (dz == 0 && dy > 0) || (dz == 0 && dy == 0 && dx > 0) {
					offsets = append(offsets, [3]int{dx, dy, dz})
				}
			}
		}
	}
	return offsets
}()

var forward6 = [][3]int{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}

// ForegroundComponents returns the number of 26-connected foreground
// components of v.
func ForegroundComponents(v *skeleton.Volume) int {
	g := buildGraph(v, 1, forward26)
	return len(topo.ConnectedComponents(g))
}

// Cavities returns the number of 6-connected background components of v
// enclosed by foreground, i.e. not connected to the space around the volume.
func Cavities(v *skeleton.Volume) int {
	g := buildGraph(v, 0, forward6)

	// Every background voxel on the volume surface touches the outside.
	outside := simple.Node(int64(len(v.Data())))
	g.AddNode(outside)
	w, h, d := v.Width(), v.Height(), v.Depth()
	for z := 0; z < d; z++ {
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				if v.Get(x, y, z) != 0 {
					continue
				}
				if x == 0 || y == 0 || z == 0 || x == w-1 || y == h-1 || z == d-1 {
					g.SetEdge(g.NewEdge(nodeAt(v, x, y, z), outside))
				}
			}
		}
	}
	return len(topo.ConnectedComponents(g)) - 1
}

// buildGraph links all voxels with the given value through the given
// forward offsets.
func buildGraph(v *skeleton.Volume, value byte, offsets [][3]int) *simple.UndirectedGraph {
	g := simple.NewUndirectedGraph()
	w, h, d := v.Width(), v.Height(), v.Depth()
	for z := 0; z < d; z++ {
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				if v.Get(x, y, z) != value {
					continue
				}
				from := nodeAt(v, x, y, z)
				if g.Node(from.ID()) == nil {
					g.AddNode(from)
				}
				for _, o := range offsets {
					nx, ny, nz := x+o[0], y+o[1], z+o[2]
					if nx < 0 || ny < 0 || nz < 0 || nx >= w || ny >= h || nz >= d {
						continue
					}
					if v.Get(nx, ny, nz) != value {
						continue
					}
					g.SetEdge(g.NewEdge(from, nodeAt(v, nx, ny, nz)))
				}
			}
		}
	}
	return g
}

func nodeAt(v *skeleton.Volume, x, y, z int) graph.Node {
	return simple.Node(int64(z*v.Width()*v.Height() + y*v.Width() + x))
}
