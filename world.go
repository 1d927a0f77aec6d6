package kinema

import (
	"github.com/akmonengine/kinema/actor"
	"github.com/akmonengine/kinema/config"
	"github.com/akmonengine/kinema/constraint"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const DEFAULT_WORKERS = 1

type World struct {
	// List of all rigid bodies in the world
	Bodies []*actor.RigidBody
	// Gravity acceleration (m/s², or N/kg)
	Gravity     mgl64.Vec3
	Substeps    int
	SpatialGrid *SpatialGrid
	Workers     int
	// Bodies slower than Sleep.Velocity for Sleep.Time seconds are put to sleep
	Sleep config.Sleep

	Events Events

	logger *zap.Logger
	byID   map[uuid.UUID]*actor.RigidBody
}

// NewWorld creates an empty world from its settings. A nil logger discards
// every log entry.
func NewWorld(settings config.World, logger *zap.Logger) *World {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &World{
		Gravity:     mgl64.Vec3(settings.Gravity),
		Substeps:    max(1, settings.Substeps),
		SpatialGrid: NewSpatialGrid(settings.CellSize, settings.GridCells),
		Workers:     settings.Workers,
		Sleep:       settings.Sleep,
		Events:      NewEvents(),
		logger:      logger,
		byID:        make(map[uuid.UUID]*actor.RigidBody),
	}
}

// AddBody adds a rigid body to the world
func (w *World) AddBody(body *actor.RigidBody) {
	if _, ok := w.byID[body.ID]; ok {
		w.logger.Warn("body already in world", zap.Stringer("id", body.ID))
		return
	}

	w.Bodies = append(w.Bodies, body)
	w.byID[body.ID] = body
	w.logger.Debug("body added",
		zap.Stringer("id", body.ID),
		zap.Stringer("type", body.BodyType),
		zap.Stringer("collider", body.Collider.Kind()),
	)
}

// RemoveBody removes a rigid body from the world. Pending events about it
// are dropped, no exit event is emitted.
func (w *World) RemoveBody(body *actor.RigidBody) bool {
	k := -1
	for i, b := range w.Bodies {
		if b == body {
			k = i
			break
		}
	}

	if k == -1 {
		w.logger.Warn("body not in world", zap.Stringer("id", body.ID))
		return false
	}

	w.Bodies = append(w.Bodies[:k], w.Bodies[k+1:]...)
	delete(w.byID, body.ID)
	w.Events.forget(body)
	w.logger.Debug("body removed", zap.Stringer("id", body.ID))

	return true
}

// Body looks a body up by its ID.
func (w *World) Body(id uuid.UUID) (*actor.RigidBody, bool) {
	body, ok := w.byID[id]
	return body, ok
}

// Step advances the simulation by dt seconds, split in Substeps substeps.
// Events are sent once, at the end of the step.
func (w *World) Step(dt float64) {
	w.Workers = max(DEFAULT_WORKERS, w.Workers)
	w.Substeps = max(1, w.Substeps)
	h := dt / float64(w.Substeps)

	var pairs, contacts int
	for range w.Substeps {
		// Phase 1: external forces and motion
		w.integrate(h)
		w.update(h)

		// Phase 2.0: Collision pair finding - Broad phase
		// Phase 2.1: Collision pair finding - narrow phase
		constraints, found := w.detectCollision()
		pairs += found

		constraints = w.Events.recordCollisions(constraints)
		contacts += len(constraints)

		// Phase 3: Solver, only one iteration is required thanks to substeps
		w.solvePosition(h, constraints)
		w.solveVelocity(h, constraints)

		w.trySleep(h)
	}

	w.Events.processSleepEvents(w.Bodies)
	w.Events.flush()

	w.logger.Debug("step",
		zap.Float64("dt", dt),
		zap.Int("bodies", len(w.Bodies)),
		zap.Int("pairs", pairs),
		zap.Int("contacts", contacts),
	)
}

// integrate adds gravity to awake dynamic bodies. The velocity is changed
// directly: going through ApplyAcceleration would wake the body and reset
// its sleep timer every substep.
func (w *World) integrate(h float64) {
	dv := w.Gravity.Mul(h)
	for _, body := range w.Bodies {
		if body.BodyType == actor.BodyTypeStatic || body.IsSleeping {
			continue
		}
		body.Velocity = body.Velocity.Add(dv)
	}
}

// update moves the bodies. Bodies may share parent transforms, whose caches
// are rebuilt on read, so this stays on one goroutine.
func (w *World) update(h float64) {
	for _, body := range w.Bodies {
		body.Update(h)
	}
}

func (w *World) detectCollision() ([]*constraint.ContactConstraint, int) {
	pairs := BroadPhase(w.SpatialGrid, Proxies(w.Bodies))
	return NarrowPhase(pairs, w.Workers), len(pairs)
}

// solvePosition and solveVelocity run in order: two constraints may share a
// body.
func (w *World) solvePosition(h float64, constraints []*constraint.ContactConstraint) {
	for _, c := range constraints {
		c.SolvePosition(h)
	}
}

func (w *World) solveVelocity(h float64, constraints []*constraint.ContactConstraint) {
	for _, c := range constraints {
		c.SolveVelocity(h)
	}
}

// trySleep sets the body to sleep if its velocity is lower than the threshold, for a given duration
// this method is too simple to use a task, it slows down in multiple goroutines
func (w *World) trySleep(h float64) {
	for _, body := range w.Bodies {
		body.TrySleep(h, w.Sleep.Time, w.Sleep.Velocity)
	}
}

// task splits data in workersCount contiguous chunks and runs fn over each
// chunk in its own goroutine.
func task[T any](workersCount int, data []T, fn func(data T)) {
	var g errgroup.Group
	dataSize := len(data)
	chunkSize := (dataSize + workersCount - 1) / workersCount

	for start := 0; start < dataSize; start += chunkSize {
		end := min(start+chunkSize, dataSize)
		g.Go(func() error {
			for i := start; i < end; i++ {
				fn(data[i])
			}
			return nil
		})
	}
	_ = g.Wait()
}
