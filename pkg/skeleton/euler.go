package skeleton

// EulerLUT holds the change of the local Euler characteristic contributed by
// one octant of the 3x3x3 neighborhood [Lee94]. It is indexed by the octant
// code built in octantCode; bit 0 is always set, so even entries are unused.
var EulerLUT = [256]int{
	1: 1, 3: -1, 5: -1, 7: 1, 9: -3, 11: -1, 13: -1, 15: 1,
	17: -1, 19: 1, 21: 1, 23: -1, 25: 3, 27: 1, 29: 1, 31: -1,
	33: -3, 35: -1, 37: 3, 39: 1, 41: 1, 43: -1, 45: 3, 47: 1,
	49: -1, 51: 1, 53: 1, 55: -1, 57: 3, 59: 1, 61: 1, 63: -1,
	65: -3, 67: 3, 69: -1, 71: 1, 73: 1, 75: 3, 77: -1, 79: 1,
	81: -1, 83: 1, 85: 1, 87: -1, 89: 3, 91: 1, 93: 1, 95: -1,
	97: 1, 99: 3, 101: 3, 103: 1, 105: 5, 107: 3, 109: 3, 111: 1,
	113: -1, 115: 1, 117: 1, 119: -1, 121: 3, 123: 1, 125: 1, 127: -1,
	129: -7, 131: -1, 133: -1, 135: 1, 137: -3, 139: -1, 141: -1, 143: 1,
	145: -1, 147: 1, 149: 1, 151: -1, 153: 3, 155: 1, 157: 1, 159: -1,
	161: -3, 163: -1, 165: 3, 167: 1, 169: 1, 171: -1, 173: 3, 175: 1,
	177: -1, 179: 1, 181: 1, 183: -1, 185: 3, 187: 1, 189: 1, 191: -1,
	193: -3, 195: 3, 197: -1, 199: 1, 201: 1, 203: 3, 205: -1, 207: 1,
	209: -1, 211: 1, 213: 1, 215: -1, 217: 3, 219: 1, 221: 1, 223: -1,
	225: 1, 227: 3, 229: 3, 231: 1, 233: 5, 235: 3, 237: 3, 239: 1,
	241: -1, 243: 1, 245: 1, 247: -1, 249: 3, 251: 1, 253: 1, 255: -1,
}

// Octant names one of the eight 2x2x2 sub-cubes of a neighborhood that
// contain the center voxel.
type Octant int

const (
	SWU Octant = iota
	SEU
	NWU
	NEU
	SWB
	SEB
	NWB
	NEB
)

var octantNames = [...]string{"SWU", "SEU", "NWU", "NEU", "SWB", "SEB", "NWB", "NEB"}

func (o Octant) String() string {
	if o < SWU || o > NEB {
		return "unknown"
	}
	return octantNames[o]
}

// octantCells lists, per octant, the seven non-center Neighborhood indices
// in the bit order of the Euler code: the first cell sets bit 7, the last
// sets bit 1.
var octantCells = [8][7]int{
	SWU: {24, 25, 15, 16, 21, 22, 12},
	SEU: {26, 23, 17, 14, 25, 22, 16},
	NWU: {18, 21, 9, 12, 19, 22, 10},
	NEU: {20, 23, 19, 22, 11, 14, 10},
	SWB: {6, 15, 7, 16, 3, 12, 4},
	SEB: {8, 7, 17, 16, 5, 4, 14},
	NWB: {0, 9, 3, 12, 1, 10, 4},
	NEB: {2, 1, 11, 10, 5, 4, 14},
}

// octantCode builds the Euler LUT index of octant o.
func octantCode(n *Neighborhood, o Octant) int {
	code := 1
	for bit, cell := range octantCells[o] {
		if n[cell] == 1 {
			code |= 1 << (7 - bit)
		}
	}
	if code < 0 || code > 255 {
		panic("skeleton: euler lookup index out of range")
	}
	return code
}

// EulerCharacteristicChange returns the change of the local Euler
// characteristic caused by deleting the center voxel.
func EulerCharacteristicChange(n Neighborhood) int {
	sum := 0
	for o := SWU; o <= NEB; o++ {
		sum += EulerLUT[octantCode(&n, o)]
	}
	return sum
}

// IsEulerInvariant reports whether deleting the center voxel leaves the
// local Euler characteristic unchanged.
func IsEulerInvariant(n Neighborhood) bool {
	return EulerCharacteristicChange(n) == 0
}
