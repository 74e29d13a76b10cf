package world

import (
	"fmt"
)

// Payload coercion: request arguments arrive as untyped JSON-decoded values
// (map[string]any, []any, float64). The functions below turn them into
// validated command models. They return plain errors; the dispatch layer is
// responsible for tagging them as validation failures.

// PositionFromPayload coerces a value into a Position. The wire shape is a
// list of exactly three integers.
func PositionFromPayload(v any) (Position, error) {
	list, ok := v.([]any)
	if !ok {
		// Already-typed inputs show up in internal calls and tests.
		if ints, ok := v.([]int); ok {
			list = make([]any, len(ints))
			for i, n := range ints {
				list[i] = n
			}
		} else {
			return Position{}, fmt.Errorf("position must have exactly 3 integer coordinates")
		}
	}
	if len(list) != 3 {
		return Position{}, fmt.Errorf("position must have exactly 3 integer coordinates")
	}
	coords := make([]int, 3)
	for i, c := range list {
		n, ok := intFromNumber(c)
		if !ok {
			return Position{}, fmt.Errorf("position must have exactly 3 integer coordinates")
		}
		coords[i] = n
	}
	return Position{coords[0], coords[1], coords[2]}, nil
}

// BlockFromPayload coerces a value into a Block. The wire shape is a mapping
// with a required "id" and optional "states" and "data".
func BlockFromPayload(v any) (Block, error) {
	m, ok := v.(map[string]any)
	if !ok {
		return Block{}, fmt.Errorf("block must be a mapping with an \"id\" field")
	}
	id, _ := m["id"].(string)
	b := Block{ID: id}
	if raw, ok := m["states"]; ok && raw != nil {
		states, ok := raw.(map[string]any)
		if !ok {
			return Block{}, fmt.Errorf("block states must be a string-to-string mapping")
		}
		b.States = make(map[string]string, len(states))
		for k, sv := range states {
			s, ok := sv.(string)
			if !ok {
				return Block{}, fmt.Errorf("block state %q must be a string value", k)
			}
			b.States[k] = s
		}
	}
	if data, ok := m["data"].(string); ok {
		b.Data = data
	}
	if err := b.Validate(); err != nil {
		return Block{}, err
	}
	return b, nil
}

// EntityFromPayload coerces a single entity mapping.
func EntityFromPayload(v any) (Entity, error) {
	m, ok := v.(map[string]any)
	if !ok {
		return Entity{}, fmt.Errorf("entity must be a mapping with \"id\" and \"pos\" fields")
	}
	id, _ := m["id"].(string)
	if id == "" {
		return Entity{}, fmt.Errorf("entity id must be a non-empty string")
	}
	pos, err := PositionFromPayload(m["pos"])
	if err != nil {
		return Entity{}, fmt.Errorf("entity %q: %v", id, err)
	}
	e := Entity{ID: id, Pos: pos}
	if nbt, ok := m["nbt"].(string); ok {
		e.NBT = nbt
	}
	return e, nil
}

// EntitiesFromPayload coerces a batch of entity mappings and enforces the
// 1..MaxEntityBatch bound before any world access is attempted.
func EntitiesFromPayload(v any) ([]Entity, error) {
	list, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("entities must be a list of entity mappings")
	}
	if len(list) == 0 {
		return nil, fmt.Errorf("entities list must contain at least 1 item")
	}
	if len(list) > MaxEntityBatch {
		return nil, fmt.Errorf("entities list exceeds %d items", MaxEntityBatch)
	}
	entities := make([]Entity, 0, len(list))
	for i, raw := range list {
		e, err := EntityFromPayload(raw)
		if err != nil {
			return nil, fmt.Errorf("entities[%d]: %v", i, err)
		}
		entities = append(entities, e)
	}
	return entities, nil
}

// StructureFromPayload coerces a structure placement mapping, validating the
// rotation step and integrity range.
func StructureFromPayload(v any) (Structure, error) {
	m, ok := v.(map[string]any)
	if !ok {
		return Structure{}, fmt.Errorf("structure must be a mapping with \"name\" and \"position\" fields")
	}
	name, _ := m["name"].(string)
	if name == "" {
		return Structure{}, fmt.Errorf("structure name must be a non-empty string")
	}
	pos, err := PositionFromPayload(m["position"])
	if err != nil {
		return Structure{}, err
	}
	s := Structure{Name: name, Position: pos}
	if raw, ok := m["rotation"]; ok && raw != nil {
		r, ok := intFromNumber(raw)
		if !ok || r < 0 || r > 3 {
			return Structure{}, fmt.Errorf("structure rotation must be an integer between 0 and 3")
		}
		s.Rotation = &r
	}
	if raw, ok := m["mirror"]; ok && raw != nil {
		mir, ok := raw.(bool)
		if !ok {
			return Structure{}, fmt.Errorf("structure mirror must be a boolean")
		}
		s.Mirror = &mir
	}
	if raw, ok := m["integrity"]; ok && raw != nil {
		f, ok := raw.(float64)
		if !ok {
			if n, okInt := intFromNumber(raw); okInt {
				f, ok = float64(n), true
			}
		}
		if !ok || f < 0.0 || f > 1.0 {
			return Structure{}, fmt.Errorf("structure integrity must be between 0.0 and 1.0")
		}
		s.Integrity = &f
	}
	if raw, ok := m["seed"]; ok && raw != nil {
		n, ok := intFromNumber(raw)
		if !ok {
			return Structure{}, fmt.Errorf("structure seed must be an integer")
		}
		seed := int64(n)
		s.Seed = &seed
	}
	return s, nil
}
