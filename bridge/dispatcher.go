// Package bridge validates, classifies, and executes world operations against
// the active session's client.
package bridge

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/voxelforge/gdmc-bridge/bridge/session"
	"github.com/voxelforge/gdmc-bridge/world"
)

// EventSink receives a notification after every applied mutation. Used to
// fan mutation events out to websocket observers.
type EventSink interface {
	MutationApplied(op string, result map[string]any)
}

// Event is one dispatched operation as seen by a Recorder.
type Event struct {
	ID       string
	Op       string
	Args     map[string]any
	Kind     string
	OK       bool
	Duration time.Duration
}

// Recorder persists dispatched operations for later inspection. Record must
// not block the dispatch path.
type Recorder interface {
	Record(e Event)
}

// Dispatcher validates, classifies, and executes the mutating operations.
// Backend calls are bounded by a shared slot pool so a burst of requests
// cannot pile unbounded goroutines onto the single backend connection.
type Dispatcher struct {
	sessions *session.Manager
	slots    chan struct{}
	sink     EventSink
	rec      Recorder
}

// NewDispatcher builds a dispatcher with the given concurrency bound.
func NewDispatcher(sessions *session.Manager, workers int) *Dispatcher {
	if workers <= 0 {
		workers = 8
	}
	return &Dispatcher{
		sessions: sessions,
		slots:    make(chan struct{}, workers),
	}
}

// SetEventSink installs the mutation-event observer. Must be called before
// the dispatcher starts serving.
func (d *Dispatcher) SetEventSink(s EventSink) { d.sink = s }

// SetRecorder installs the operation recorder. Must be called before the
// dispatcher starts serving.
func (d *Dispatcher) SetRecorder(r Recorder) { d.rec = r }

// Slots exposes the backend-call slot pool so query layers can share the
// same concurrency bound.
func (d *Dispatcher) Slots() chan struct{} { return d.slots }

func (d *Dispatcher) acquire(ctx context.Context) error {
	select {
	case d.slots <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Dispatcher) release() { <-d.slots }

// Dispatch runs one named mutating operation. Arguments are validated before
// any session or backend access; classified errors come back as *Error.
func (d *Dispatcher) Dispatch(ctx context.Context, op string, args map[string]any) (map[string]any, error) {
	id := uuid.NewString()
	start := time.Now()
	result, err := d.dispatch(ctx, op, args)
	d.finish(id, op, args, err, time.Since(start), result)
	return result, err
}

func (d *Dispatcher) dispatch(ctx context.Context, op string, args map[string]any) (map[string]any, error) {
	switch op {
	case "place_block":
		return d.placeBlock(ctx, args)
	case "place_cuboid":
		return d.placeCuboid(ctx, args)
	case "place_entities":
		return d.placeEntities(ctx, args)
	case "place_structure":
		return d.placeStructure(ctx, args)
	case "run_command":
		return d.runCommand(ctx, args)
	}
	return nil, newValidation(op, fmt.Errorf("unknown operation %q", op))
}

func (d *Dispatcher) finish(id, op string, args map[string]any, err error, elapsed time.Duration, result map[string]any) {
	kind := ""
	if err != nil {
		kind = string(KindOf(err))
		log.Printf("Operation %s failed (%s, %s): %v", op, id, kind, err)
	}
	if d.rec != nil {
		d.rec.Record(Event{ID: id, Op: op, Args: args, Kind: kind, OK: err == nil, Duration: elapsed})
	}
	if err == nil && d.sink != nil && result != nil {
		d.sink.MutationApplied(op, result)
	}
}

// borrow validates nothing, only resolves the session client. Callers must
// finish argument validation first so malformed requests never consume a
// backend slot.
func (d *Dispatcher) borrow(op string) (world.Client, error) {
	client, err := d.sessions.Current()
	if err != nil {
		return nil, Normalize(op, err)
	}
	return client, nil
}

func newValidation(op string, err error) *Error {
	return ValidationError(op, err)
}

func (d *Dispatcher) placeBlock(ctx context.Context, args map[string]any) (map[string]any, error) {
	const op = "place_block"
	pos, err := world.PositionFromPayload(args["position"])
	if err != nil {
		return nil, newValidation(op, err)
	}
	block, err := world.BlockFromPayload(args["block"])
	if err != nil {
		return nil, newValidation(op, err)
	}
	client, err := d.borrow(op)
	if err != nil {
		return nil, err
	}
	if err := d.acquire(ctx); err != nil {
		return nil, Normalize(op, err)
	}
	defer d.release()

	ok, err := client.PlaceBlock(ctx, pos, block)
	if err != nil {
		return nil, Normalize(op, err)
	}
	return map[string]any{
		"success":  ok,
		"position": pos.Slice(),
		"block":    block.String(),
	}, nil
}

func (d *Dispatcher) placeCuboid(ctx context.Context, args map[string]any) (map[string]any, error) {
	const op = "place_cuboid"
	corner1, err := world.PositionFromPayload(args["corner1"])
	if err != nil {
		return nil, newValidation(op, fmt.Errorf("corner1: %v", err))
	}
	corner2, err := world.PositionFromPayload(args["corner2"])
	if err != nil {
		return nil, newValidation(op, fmt.Errorf("corner2: %v", err))
	}
	block, err := world.BlockFromPayload(args["block"])
	if err != nil {
		return nil, newValidation(op, err)
	}
	hollow := false
	if v, ok := args["hollow"].(bool); ok {
		hollow = v
	}
	client, err := d.borrow(op)
	if err != nil {
		return nil, err
	}
	if err := d.acquire(ctx); err != nil {
		return nil, Normalize(op, err)
	}
	defer d.release()

	count, err := client.PlaceCuboid(ctx, corner1, corner2, block, hollow)
	if err != nil {
		return nil, Normalize(op, err)
	}
	return map[string]any{
		"success":       true,
		"corner1":       corner1.Slice(),
		"corner2":       corner2.Slice(),
		"block":         block.String(),
		"hollow":        hollow,
		"blocks_placed": count,
	}, nil
}

func (d *Dispatcher) placeEntities(ctx context.Context, args map[string]any) (map[string]any, error) {
	const op = "place_entities"
	entities, err := world.EntitiesFromPayload(args["entities"])
	if err != nil {
		return nil, newValidation(op, err)
	}
	client, err := d.borrow(op)
	if err != nil {
		return nil, err
	}
	if err := d.acquire(ctx); err != nil {
		return nil, Normalize(op, err)
	}
	defer d.release()

	message, err := client.PlaceEntities(ctx, entities)
	if err != nil {
		return nil, Normalize(op, err)
	}
	return map[string]any{
		"success": true,
		"count":   len(entities),
		"message": message,
	}, nil
}

func (d *Dispatcher) placeStructure(ctx context.Context, args map[string]any) (map[string]any, error) {
	const op = "place_structure"
	s, err := world.StructureFromPayload(args)
	if err != nil {
		return nil, newValidation(op, err)
	}
	client, err := d.borrow(op)
	if err != nil {
		return nil, err
	}
	if err := d.acquire(ctx); err != nil {
		return nil, Normalize(op, err)
	}
	defer d.release()

	message, err := client.PlaceStructure(ctx, s)
	if err != nil {
		return nil, Normalize(op, err)
	}
	return map[string]any{
		"success":   true,
		"structure": s.Name,
		"position":  s.Position.Slice(),
		"message":   message,
	}, nil
}

func (d *Dispatcher) runCommand(ctx context.Context, args map[string]any) (map[string]any, error) {
	const op = "run_command"
	command, _ := args["command"].(string)
	command = strings.TrimSpace(command)
	if command == "" {
		return nil, newValidation(op, fmt.Errorf("command must be a non-empty string"))
	}
	if strings.HasPrefix(command, "/") {
		return nil, newValidation(op, fmt.Errorf("command must not start with a slash"))
	}
	client, err := d.borrow(op)
	if err != nil {
		return nil, err
	}
	if err := d.acquire(ctx); err != nil {
		return nil, Normalize(op, err)
	}
	defer d.release()

	results, err := client.RunCommand(ctx, command)
	if err != nil {
		return nil, Normalize(op, err)
	}
	tuples := make([]map[string]any, len(results))
	for i, r := range results {
		tuples[i] = map[string]any{"success": r.Success, "message": r.Message}
	}
	return map[string]any{
		"command": command,
		"count":   len(tuples),
		"results": tuples,
	}, nil
}

// Do runs fn against the session client under the shared slot pool, with the
// same classification and recording as the named operations. The procedural
// generators run through here.
func (d *Dispatcher) Do(ctx context.Context, op string, fn func(world.Client) (map[string]any, error)) (map[string]any, error) {
	id := uuid.NewString()
	start := time.Now()

	result, err := func() (map[string]any, error) {
		client, err := d.borrow(op)
		if err != nil {
			return nil, err
		}
		if err := d.acquire(ctx); err != nil {
			return nil, Normalize(op, err)
		}
		defer d.release()

		result, err := fn(client)
		if err != nil {
			return nil, Normalize(op, err)
		}
		return result, nil
	}()

	d.finish(id, op, nil, err, time.Since(start), result)
	return result, err
}
