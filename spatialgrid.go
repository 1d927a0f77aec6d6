package kinema

import (
	"encoding/binary"
	"math"
	"slices"

	"github.com/akmonengine/kinema/actor"
	"github.com/akmonengine/kinema/collider"
	"github.com/cespare/xxhash/v2"
	"github.com/go-gl/mathgl/mgl64"
)

// ============================================================================
// Types
// ============================================================================

// CellKey - Coordonnées d'une cellule dans l'espace 3D
type CellKey struct {
	X, Y, Z int
}

// Cell - Conteneur d'indices de bodies dans une cellule
type Cell struct {
	bodyIndices []int
}

// Proxy is a body as the broad phase sees it: its collider placed in world
// space and the bounds of that collider.
type Proxy struct {
	Body     *actor.RigidBody
	Collider collider.Collider
	Bounds   collider.AABB
}

// Pair - Paire de bodies potentiellement en collision
type Pair struct {
	BodyA     *actor.RigidBody
	BodyB     *actor.RigidBody
	ColliderA collider.Collider
	ColliderB collider.Collider
}

// SpatialGrid - Grille spatiale uniforme avec hashing pour broad phase
//
// Bodies without finite bounds (planes), or spanning more cells than the
// grid holds, are not inserted: they are kept aside and paired with every
// other body.
type SpatialGrid struct {
	cellSize  float64
	cells     []Cell
	cellMask  int
	unbounded []int
}

// ============================================================================
// Constructeur
// ============================================================================

// NewSpatialGrid - Crée une nouvelle grille spatiale
func NewSpatialGrid(cellSize float64, numCells int) *SpatialGrid {
	numCells = nextPowerOfTwo(numCells)

	cells := make([]Cell, numCells)
	for i := range cells {
		cells[i].bodyIndices = make([]int, 0, 8)
	}

	return &SpatialGrid{
		cellSize: cellSize,
		cells:    cells,
		cellMask: numCells - 1,
	}
}

// nextPowerOfTwo - Arrondit à la puissance de 2 supérieure
func nextPowerOfTwo(n int) int {
	if n <= 0 {
		return 1
	}
	n--
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n++
	return n
}

// Insert - Insère un body dans toutes les cellules qu'il occupe
func (sg *SpatialGrid) Insert(bodyIndex int, bounds collider.AABB) {
	if !sg.fits(bounds) {
		sg.unbounded = append(sg.unbounded, bodyIndex)
		return
	}

	sg.eachCell(bounds, func(cellIdx int) {
		sg.cells[cellIdx].bodyIndices = append(sg.cells[cellIdx].bodyIndices, bodyIndex)
	})
}

// fits reports whether bounds can be rasterized into the grid.
func (sg *SpatialGrid) fits(bounds collider.AABB) bool {
	if bounds.IsUnbounded() {
		return false
	}
	minCell := sg.worldToCell(bounds.Min)
	maxCell := sg.worldToCell(bounds.Max)
	span := float64(maxCell.X-minCell.X+1) * float64(maxCell.Y-minCell.Y+1) * float64(maxCell.Z-minCell.Z+1)
	return span <= float64(len(sg.cells))
}

func (sg *SpatialGrid) eachCell(bounds collider.AABB, fn func(cellIdx int)) {
	minCell := sg.worldToCell(bounds.Min)
	maxCell := sg.worldToCell(bounds.Max)

	for x := minCell.X; x <= maxCell.X; x++ {
		for y := minCell.Y; y <= maxCell.Y; y++ {
			for z := minCell.Z; z <= maxCell.Z; z++ {
				fn(sg.hashCell(CellKey{x, y, z}))
			}
		}
	}
}

func (sg *SpatialGrid) Clear() {
	for i := range sg.cells {
		sg.cells[i].bodyIndices = sg.cells[i].bodyIndices[:0]
	}
	sg.unbounded = sg.unbounded[:0]
}

func (sg *SpatialGrid) SortCells() {
	for i := range sg.cells {
		if len(sg.cells[i].bodyIndices) > 1 {
			slices.Sort(sg.cells[i].bodyIndices)
		}
	}
}

// FindPairs returns every pair of proxies whose bounds overlap, each pair
// once, ordered by the index of its first body. Proxies must have been
// inserted under their index in the slice.
func (sg *SpatialGrid) FindPairs(proxies []Proxy) []Pair {
	pairs := make([]Pair, 0, len(proxies)/2)

	// seen[j] == i+1 once (i, j) has been considered
	seen := make([]int, len(proxies))
	isUnbounded := make([]bool, len(proxies))
	for _, idx := range sg.unbounded {
		isUnbounded[idx] = true
	}

	// ========== BOUCLE SUR BODIES ==========
	for bodyIdx := range proxies {
		a := &proxies[bodyIdx]
		if isUnbounded[bodyIdx] {
			// Paired with everything after it, bounded or not
			for otherIdx := bodyIdx + 1; otherIdx < len(proxies); otherIdx++ {
				if pair, ok := candidate(a, &proxies[otherIdx]); ok {
					pairs = append(pairs, pair)
				}
			}
			continue
		}

		sg.eachCell(a.Bounds, func(cellIdx int) {
			for _, otherIdx := range sg.cells[cellIdx].bodyIndices {
				// ========== ORDRE DÉTERMINISTE ==========
				if otherIdx <= bodyIdx || seen[otherIdx] == bodyIdx+1 {
					continue // Évite doublons (A,B) et (B,A)
				}
				seen[otherIdx] = bodyIdx + 1

				if pair, ok := candidate(a, &proxies[otherIdx]); ok {
					pairs = append(pairs, pair)
				}
			}
		})

		// Unbounded bodies before this one have already been paired with it
		for _, otherIdx := range sg.unbounded {
			if otherIdx > bodyIdx {
				if pair, ok := candidate(a, &proxies[otherIdx]); ok {
					pairs = append(pairs, pair)
				}
			}
		}
	}

	return pairs
}

// candidate applies the cheap pair filters, then the bounds overlap test.
func candidate(a, b *Proxy) (Pair, bool) {
	bodyA, bodyB := a.Body, b.Body

	// Checks
	if bodyA.BodyType == actor.BodyTypeStatic && bodyB.BodyType == actor.BodyTypeStatic {
		return Pair{}, false
	}
	if bodyA.IsSleeping && bodyB.IsSleeping {
		return Pair{}, false
	}
	if !a.Collider.Common().Layer.Interacts(b.Collider.Common().Layer) {
		return Pair{}, false
	}
	if !a.Bounds.Overlaps(b.Bounds) {
		return Pair{}, false
	}

	return Pair{BodyA: bodyA, BodyB: bodyB, ColliderA: a.Collider, ColliderB: b.Collider}, true
}

// worldToCell - Convertit une position monde en coordonnées de cellule
func (sg *SpatialGrid) worldToCell(pos mgl64.Vec3) CellKey {
	return CellKey{
		X: int(math.Floor(pos.X() / sg.cellSize)),
		Y: int(math.Floor(pos.Y() / sg.cellSize)),
		Z: int(math.Floor(pos.Z() / sg.cellSize)),
	}
}

// hashCell - Hash une cellule vers un index dans l'array
func (sg *SpatialGrid) hashCell(key CellKey) int {
	var buf [24]byte
	binary.LittleEndian.PutUint64(buf[0:], uint64(int64(key.X)))
	binary.LittleEndian.PutUint64(buf[8:], uint64(int64(key.Y)))
	binary.LittleEndian.PutUint64(buf[16:], uint64(int64(key.Z)))

	return int(xxhash.Sum64(buf[:]) & uint64(sg.cellMask))
}
