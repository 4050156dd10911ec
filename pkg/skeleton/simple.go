package skeleton

import "math/bits"

// The simple point test works on the 26 neighbors alone. Neighborhood index
// i maps to cube index i for i < 13 and to i-1 for i > 13.

// octantCube lists the cube indices of the seven non-center cells of each
// octant.
var octantCube = [8][7]int{
	SWU: {12, 14, 15, 20, 21, 23, 24},
	SEU: {13, 15, 16, 21, 22, 24, 25},
	NWU: {9, 10, 12, 17, 18, 20, 21},
	NEU: {10, 11, 13, 18, 19, 21, 22},
	SWB: {3, 4, 6, 7, 12, 14, 15},
	SEB: {4, 5, 7, 8, 13, 15, 16},
	NWB: {0, 1, 3, 4, 9, 10, 12},
	NEB: {1, 2, 4, 5, 10, 11, 13},
}

// octantMembership is the set of octants (bit o for Octant o) each cube
// cell belongs to. Two cells are adjacent iff their sets intersect, which
// is 26-adjacency restricted to the neighborhood.
var octantMembership = [26]uint8{
	64, 192, 128, 80, 240, 160, 16, 48, 32,
	68, 204, 136, 85, 170, 17, 51, 34,
	4, 12, 8, 5, 15, 10, 1, 3, 2,
}

// IsSimplePoint reports whether deleting the center voxel keeps the
// foreground of its 26-neighborhood in a single connected component
// (N(v) labeling in [Lee94]).
func IsSimplePoint(n Neighborhood) bool {
	return labelNeighbors(&n, 2) < 2
}

// ComponentCount returns the number of 26-connected foreground components
// among the 26 neighbors of the center voxel.
func ComponentCount(n Neighborhood) int {
	return labelNeighbors(&n, len(octantMembership)+1)
}

// labelNeighbors labels the components of the neighborhood with the center
// removed and returns their number. It stops as soon as limit components
// have been found.
func labelNeighbors(n *Neighborhood, limit int) int {
	var cube [26]byte
	copy(cube[:Center], n[:Center])
	copy(cube[Center:], n[Center+1:])

	label := byte(2)
	components := 0
	for i := range cube {
		if cube[i] != 1 {
			continue
		}
		components++
		if components >= limit {
			return components
		}
		m := octantMembership[i]
		fillOctants(&cube, m&-m, label)
		label++
	}
	return components
}

// fillOctants gives label to every foreground cell reachable from the
// octants in seed, walking into each octant a newly labelled cell belongs
// to. Octants are visited at most once.
func fillOctants(cube *[26]byte, seed uint8, label byte) {
	pending := seed
	var visited uint8
	for pending != 0 {
		o := bits.TrailingZeros8(pending)
		pending &^= 1 << o
		visited |= 1 << o
		for _, c := range octantCube[o] {
			if cube[c] == 1 {
				cube[c] = label
				pending |= octantMembership[c] &^ visited
			}
		}
	}
}
