package kinema

import (
	"sort"
	"testing"

	"github.com/akmonengine/kinema/actor"
	"github.com/akmonengine/kinema/collider"
	"github.com/akmonengine/kinema/transform"
	"github.com/go-gl/mathgl/mgl64"
)

func TestWorldToCell(t *testing.T) {
	grid := NewSpatialGrid(1.0, 16)

	tests := []struct {
		name     string
		position mgl64.Vec3
		expected CellKey
	}{
		{"origine", mgl64.Vec3{0, 0, 0}, CellKey{0, 0, 0}},
		{"positif", mgl64.Vec3{1.5, 2.3, 3.7}, CellKey{1, 2, 3}},
		{"negatif", mgl64.Vec3{-1.5, -2.3, -3.7}, CellKey{-2, -3, -4}},
		{"fractionnaire", mgl64.Vec3{0.5, 0.5, 0.5}, CellKey{0, 0, 0}},
		{"grand", mgl64.Vec3{100.7, -200.3, 50.1}, CellKey{100, -201, 50}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := grid.worldToCell(tt.position)
			if result != tt.expected {
				t.Errorf("worldToCell(%v) = %v, want %v", tt.position, result, tt.expected)
			}
		})
	}
}

func TestNextPowerOfTwo(t *testing.T) {
	tests := map[int]int{-3: 1, 0: 1, 1: 1, 2: 2, 3: 4, 16: 16, 1000: 1024}
	for n, want := range tests {
		if got := nextPowerOfTwo(n); got != want {
			t.Errorf("nextPowerOfTwo(%d) = %d, want %d", n, got, want)
		}
	}
}

func TestHashCell(t *testing.T) {
	grid := NewSpatialGrid(1.0, 16) // 16 cellules, mask = 15

	keys := []CellKey{
		{0, 0, 0},
		{1, 2, 3},
		{-1, -2, -3},
		{100, 200, 300},
	}

	for _, key := range keys {
		result := grid.hashCell(key)
		// Vérifier que le résultat est dans la plage valide
		if result < 0 || result >= len(grid.cells) {
			t.Errorf("hashCell(%v) = %d, out of range [0, %d)", key, result, len(grid.cells))
		}
		if again := grid.hashCell(key); again != result {
			t.Errorf("hashCell(%v) not deterministic: %d then %d", key, result, again)
		}
	}
}

func TestHashCellDistribution(t *testing.T) {
	grid := NewSpatialGrid(1.0, 1024) // Grande grille pour tester la distribution

	cellCounts := make(map[int]int)
	for x := -20; x <= 20; x++ {
		for y := -20; y <= 20; y++ {
			for z := -20; z <= 20; z++ {
				cellCounts[grid.hashCell(CellKey{x, y, z})]++
			}
		}
	}

	// 41³ keys over 1024 cells: every cell should be used
	if len(cellCounts) != len(grid.cells) {
		t.Errorf("Expected all %d cells to be used, got %d", len(grid.cells), len(cellCounts))
	}

	maxCount := 0
	for _, count := range cellCounts {
		maxCount = max(maxCount, count)
	}
	avg := float64(41*41*41) / float64(len(grid.cells))
	if float64(maxCount) > 2*avg {
		t.Errorf("Hash distribution too uneven: max=%d, avg=%.1f", maxCount, avg)
	}
}

func createTestBox(position mgl64.Vec3, halfExtents mgl64.Vec3) *actor.RigidBody {
	return createTestBoxOfType(position, halfExtents, actor.BodyTypeDynamic)
}

func createTestBoxOfType(position mgl64.Vec3, halfExtents mgl64.Vec3, bodyType actor.BodyType) *actor.RigidBody {
	t := transform.New()
	t.SetPosition(position)
	size := halfExtents.Mul(2)

	return actor.NewRigidBody(
		t,
		collider.Box{Base: collider.Base{Layer: collider.DefaultLayer}, Width: size[0], Height: size[1], Depth: size[2]},
		bodyType,
		1.0,
	)
}

func createTestPlane() *actor.RigidBody {
	return actor.NewRigidBody(
		nil,
		collider.Plane{Base: collider.Base{Layer: collider.DefaultLayer}, Normal: mgl64.Vec3{0, 1, 0}, D: 0},
		actor.BodyTypeStatic,
		0.0,
	)
}

// insertAll places the bodies and inserts them the way BroadPhase does.
func insertAll(grid *SpatialGrid, bodies []*actor.RigidBody) []Proxy {
	proxies := Proxies(bodies)
	for i, proxy := range proxies {
		grid.Insert(i, proxy.Bounds)
	}
	grid.SortCells()
	return proxies
}

func hasPair(pairs []Pair, a, b *actor.RigidBody) bool {
	for _, pair := range pairs {
		if (pair.BodyA == a && pair.BodyB == b) || (pair.BodyA == b && pair.BodyB == a) {
			return true
		}
	}
	return false
}

func TestInsertSingleBody(t *testing.T) {
	grid := NewSpatialGrid(1.0, 16)
	body := createTestBox(mgl64.Vec3{1.5, 2.5, 3.5}, mgl64.Vec3{0.4, 0.4, 0.4})
	proxies := insertAll(grid, []*actor.RigidBody{body})

	// Le body tient dans une seule cellule
	cellIdx := grid.hashCell(grid.worldToCell(proxies[0].Bounds.Min))
	if len(grid.cells[cellIdx].bodyIndices) != 1 || grid.cells[cellIdx].bodyIndices[0] != 0 {
		t.Errorf("Body not found in cell %d: %v", cellIdx, grid.cells[cellIdx].bodyIndices)
	}
	if len(grid.unbounded) != 0 {
		t.Errorf("Bounded body should not be kept aside, got %v", grid.unbounded)
	}
}

func TestInsertPlane(t *testing.T) {
	grid := NewSpatialGrid(1.0, 16)
	insertAll(grid, []*actor.RigidBody{createTestPlane()})

	if len(grid.unbounded) != 1 || grid.unbounded[0] != 0 {
		t.Errorf("Plane should be kept aside, got %v", grid.unbounded)
	}

	// Vérifier qu'aucun body n'est dans les cellules régulières
	for _, cell := range grid.cells {
		if len(cell.bodyIndices) > 0 {
			t.Error("Regular cells should be empty when inserting plane")
		}
	}
}

func TestClear(t *testing.T) {
	grid := NewSpatialGrid(1.0, 16)
	proxies := insertAll(grid, []*actor.RigidBody{
		createTestBox(mgl64.Vec3{1.0, 1.0, 1.0}, mgl64.Vec3{0.4, 0.4, 0.4}),
		createTestPlane(),
	})

	if len(grid.cells[grid.hashCell(grid.worldToCell(proxies[0].Bounds.Min))].bodyIndices) == 0 {
		t.Error("Bodies should be present before clear")
	}

	grid.Clear()

	if len(grid.unbounded) != 0 {
		t.Error("Unbounded bodies should be cleared")
	}
	for _, cell := range grid.cells {
		if len(cell.bodyIndices) != 0 {
			t.Error("Cells should be empty after clear")
		}
	}
}

func TestSortCells(t *testing.T) {
	grid := NewSpatialGrid(1.0, 16)

	// Insérer des bodies dans la même cellule dans un ordre aléatoire
	cellIdx := 0
	grid.cells[cellIdx].bodyIndices = append(grid.cells[cellIdx].bodyIndices, 5, 2, 8, 1, 9, 3)

	grid.SortCells()

	if !sort.IntsAreSorted(grid.cells[cellIdx].bodyIndices) {
		t.Error("Cell indices should be sorted")
	}
}

func TestFindPairsNoCollision(t *testing.T) {
	grid := NewSpatialGrid(1.0, 16)
	bodies := []*actor.RigidBody{
		createTestBox(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{0.4, 0.4, 0.4}),
		createTestBox(mgl64.Vec3{10, 10, 10}, mgl64.Vec3{0.4, 0.4, 0.4}),
	}

	pairs := grid.FindPairs(insertAll(grid, bodies))

	// Les cellules peuvent entrer en collision de hash, pas les bounds
	if len(pairs) != 0 {
		t.Errorf("Expected 0 pairs, got %d", len(pairs))
	}
}

func TestFindPairsWithCollision(t *testing.T) {
	grid := NewSpatialGrid(1.0, 16)
	bodyA := createTestBox(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{0.6, 0.6, 0.6})
	bodyB := createTestBox(mgl64.Vec3{1, 0, 0}, mgl64.Vec3{0.6, 0.6, 0.6})
	far := createTestBox(mgl64.Vec3{5, 5, 5}, mgl64.Vec3{0.4, 0.4, 0.4})

	pairs := grid.FindPairs(insertAll(grid, []*actor.RigidBody{bodyA, bodyB, far}))

	// Les deux boxes partagent plusieurs cellules: une seule paire
	if len(pairs) != 1 {
		t.Fatalf("Expected 1 pair, got %d", len(pairs))
	}
	if pairs[0].BodyA != bodyA || pairs[0].BodyB != bodyB {
		t.Error("Pair should be ordered by body index")
	}
	if pairs[0].ColliderA.Kind() != collider.KindBox || pairs[0].ColliderB.Kind() != collider.KindBox {
		t.Error("Pair should carry the placed colliders")
	}
}

func TestFindPairsWithPlane(t *testing.T) {
	grid := NewSpatialGrid(1.0, 16)
	plane := createTestPlane()
	body := createTestBox(mgl64.Vec3{0, 5, 0}, mgl64.Vec3{0.4, 0.4, 0.4})
	other := createTestBox(mgl64.Vec3{-40, 80, 3}, mgl64.Vec3{0.4, 0.4, 0.4})

	// Le plane est placé après un body, puis avant un autre
	pairs := grid.FindPairs(insertAll(grid, []*actor.RigidBody{body, plane, other}))

	if len(pairs) != 2 {
		t.Errorf("Expected 2 pairs with plane, got %d", len(pairs))
	}
	if !hasPair(pairs, plane, body) || !hasPair(pairs, plane, other) {
		t.Error("Plane should be paired with every body")
	}
}

func TestFindPairsStaticBodies(t *testing.T) {
	grid := NewSpatialGrid(1.0, 16)
	bodies := []*actor.RigidBody{
		createTestBoxOfType(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{0.4, 0.4, 0.4}, actor.BodyTypeStatic),
		createTestBoxOfType(mgl64.Vec3{0.5, 0.5, 0.5}, mgl64.Vec3{0.4, 0.4, 0.4}, actor.BodyTypeStatic),
		createTestPlane(),
	}

	pairs := grid.FindPairs(insertAll(grid, bodies))

	// Ne devrait pas détecter de collision entre bodies statiques
	if len(pairs) != 0 {
		t.Errorf("Expected 0 pairs for static bodies, got %d", len(pairs))
	}
}

func TestFindPairsSleepingBodies(t *testing.T) {
	grid := NewSpatialGrid(1.0, 16)
	body1 := createTestBox(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{0.4, 0.4, 0.4})
	body2 := createTestBox(mgl64.Vec3{0.5, 0.5, 0.5}, mgl64.Vec3{0.4, 0.4, 0.4})
	body1.IsSleeping = true
	body2.IsSleeping = true

	pairs := grid.FindPairs(insertAll(grid, []*actor.RigidBody{body1, body2}))
	if len(pairs) != 0 {
		t.Errorf("Expected 0 pairs for sleeping bodies, got %d", len(pairs))
	}

	// Un seul body réveillé suffit
	body2.IsSleeping = false
	grid.Clear()
	pairs = grid.FindPairs(insertAll(grid, []*actor.RigidBody{body1, body2}))
	if len(pairs) != 1 {
		t.Errorf("Expected 1 pair with one awake body, got %d", len(pairs))
	}
}

func TestFindPairsLayers(t *testing.T) {
	grid := NewSpatialGrid(1.0, 16)
	bodyA := createTestBox(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{0.4, 0.4, 0.4})
	bodyB := createTestBox(mgl64.Vec3{0.5, 0, 0}, mgl64.Vec3{0.4, 0.4, 0.4})
	bodyB.Collider = collider.WithBase(bodyB.Collider, collider.Base{Layer: 0x02})

	pairs := grid.FindPairs(insertAll(grid, []*actor.RigidBody{bodyA, bodyB}))
	if len(pairs) != 0 {
		t.Errorf("Expected 0 pairs for disjoint layers, got %d", len(pairs))
	}
}

func TestFindPairsMultiplePlanes(t *testing.T) {
	grid := NewSpatialGrid(1.0, 16)
	plane1 := createTestPlane()
	plane2 := createTestPlane()
	body := createTestBox(mgl64.Vec3{0, 5, 0}, mgl64.Vec3{0.4, 0.4, 0.4})

	pairs := grid.FindPairs(insertAll(grid, []*actor.RigidBody{plane1, plane2, body}))

	// Les deux planes sont statiques: seules les paires plane-body comptent
	if len(pairs) != 2 {
		t.Errorf("Expected 2 pairs with planes, got %d", len(pairs))
	}
	if !hasPair(pairs, plane1, body) || !hasPair(pairs, plane2, body) {
		t.Error("Both plane-body pairs should be found")
	}
}

// ============================================================================
// Tests pour les cas limites
// ============================================================================

func TestBoundaryCases(t *testing.T) {
	grid := NewSpatialGrid(1.0, 16)

	// Body exactement sur la frontière entre deux cellules
	body := createTestBox(mgl64.Vec3{1.0, 1.0, 1.0}, mgl64.Vec3{0.5, 0.5, 0.5})
	proxies := insertAll(grid, []*actor.RigidBody{body})

	minCell := grid.worldToCell(proxies[0].Bounds.Min)
	maxCell := grid.worldToCell(proxies[0].Bounds.Max)

	// Devrait couvrir 2 cellules dans chaque dimension
	if maxCell.X-minCell.X != 1 || maxCell.Y-minCell.Y != 1 || maxCell.Z-minCell.Z != 1 {
		t.Errorf("Expected body to span 2 cells in each dimension, got %d, %d, %d",
			maxCell.X-minCell.X, maxCell.Y-minCell.Y, maxCell.Z-minCell.Z)
	}
}

func TestLargeBodySpanningManyCells(t *testing.T) {
	grid := NewSpatialGrid(1.0, 4096)

	// Body très large couvrant beaucoup de cellules
	body := createTestBox(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{5.0, 5.0, 5.0})
	small := createTestBox(mgl64.Vec3{4, 4, 4}, mgl64.Vec3{0.4, 0.4, 0.4})
	proxies := insertAll(grid, []*actor.RigidBody{body, small})

	minCell := grid.worldToCell(proxies[0].Bounds.Min)
	maxCell := grid.worldToCell(proxies[0].Bounds.Max)

	for x := minCell.X; x <= maxCell.X; x++ {
		for y := minCell.Y; y <= maxCell.Y; y++ {
			for z := minCell.Z; z <= maxCell.Z; z++ {
				cellIdx := grid.hashCell(CellKey{x, y, z})
				found := false
				for _, idx := range grid.cells[cellIdx].bodyIndices {
					if idx == 0 {
						found = true
						break
					}
				}
				if !found {
					t.Fatalf("Body missing from cell %v", CellKey{x, y, z})
				}
			}
		}
	}

	// Shared cells must not produce duplicates
	if pairs := grid.FindPairs(proxies); len(pairs) != 1 {
		t.Errorf("Expected 1 pair, got %d", len(pairs))
	}
}

func TestOversizedBodyKeptAside(t *testing.T) {
	grid := NewSpatialGrid(1.0, 16)

	// 11³ cellules, plus que la grille n'en contient
	body := createTestBox(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{5.0, 5.0, 5.0})
	inside := createTestBox(mgl64.Vec3{2, 2, 2}, mgl64.Vec3{0.4, 0.4, 0.4})
	outside := createTestBox(mgl64.Vec3{20, 0, 0}, mgl64.Vec3{0.4, 0.4, 0.4})
	proxies := insertAll(grid, []*actor.RigidBody{inside, body, outside})

	if len(grid.unbounded) != 1 || grid.unbounded[0] != 1 {
		t.Fatalf("Oversized body should be kept aside, got %v", grid.unbounded)
	}

	pairs := grid.FindPairs(proxies)
	if len(pairs) != 1 || !hasPair(pairs, body, inside) {
		t.Errorf("Expected only the overlapping pair, got %d pairs", len(pairs))
	}
}

func BenchmarkFindPairs(b *testing.B) {
	grid := NewSpatialGrid(1.0, 1024)
	bodies := make([]*actor.RigidBody, 1000)

	for i := range bodies {
		pos := mgl64.Vec3{
			float64(i%10) * 0.7,
			float64((i/10)%10) * 0.7,
			float64((i/100)%10) * 0.7,
		}
		bodies[i] = createTestBox(pos, mgl64.Vec3{0.4, 0.4, 0.4})
	}
	proxies := insertAll(grid, bodies)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		grid.FindPairs(proxies)
	}
}
