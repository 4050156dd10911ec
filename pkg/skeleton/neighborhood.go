package skeleton

// Center is the index of the voxel under test inside a Neighborhood.
const Center = 13

// Neighborhood holds the 3x3x3 cube around a voxel in row-major (dz, dy, dx)
// order over the offsets {-1, 0, 1}. Index 13 is the voxel itself.
type Neighborhood [27]byte

// NeighborIndex returns the Neighborhood index of offset (dx, dy, dz).
func NeighborIndex(dx, dy, dz int) int {
	return (dz+1)*9 + (dy+1)*3 + (dx + 1)
}

// NeighborOffset is the inverse of NeighborIndex.
func NeighborOffset(i int) (dx, dy, dz int) {
	return i%3 - 1, (i/3)%3 - 1, i/9 - 1
}

// Neighborhood samples the 27 voxels centered on (x, y, z). Cells outside
// the volume read as background.
func (v *Volume) Neighborhood(x, y, z int) Neighborhood {
	var n Neighborhood
	i := 0
	for dz := -1; dz <= 1; dz++ {
		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				n[i] = v.Get(x+dx, y+dy, z+dz)
				i++
			}
		}
	}
	return n
}

// CountForeground returns the number of foreground cells among the 26
// neighbors, the center excluded.
func (n *Neighborhood) CountForeground() int {
	count := 0
	for i, b := range n {
		if i != Center && b == 1 {
			count++
		}
	}
	return count
}

// Direction selects which axis-adjacent neighbor must be background for a
// voxel to be a border point during a sub-pass.
type Direction int

const (
	North Direction = iota
	South
	East
	West
	Up
	Bottom
)

// Directions is the fixed cyclic order of the sub-passes of a thinning cycle.
var Directions = [6]Direction{North, South, East, West, Up, Bottom}

var directionNames = [...]string{"north", "south", "east", "west", "up", "bottom"}

func (d Direction) String() string {
	if d < North || d > Bottom {
		return "unknown"
	}
	return directionNames[d]
}

// Offset returns the unit step towards the neighbor d refers to.
func (d Direction) Offset() (dx, dy, dz int) {
	switch d {
	case North:
		return 0, -1, 0
	case South:
		return 0, 1, 0
	case East:
		return 1, 0, 0
	case West:
		return -1, 0, 0
	case Up:
		return 0, 0, 1
	case Bottom:
		return 0, 0, -1
	}
	panic("skeleton: invalid direction")
}

// AxisNeighbor returns the voxel one step from (x, y, z) in direction d.
func (v *Volume) AxisNeighbor(x, y, z int, d Direction) byte {
	dx, dy, dz := d.Offset()
	return v.Get(x+dx, y+dy, z+dz)
}
