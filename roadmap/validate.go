package roadmap

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
)

// Decode parses candidate text and validates it. Malformed text yields a *ParseError and
// structurally wrong data a *ValidationError; it never panics on generator output.
func Decode(text []byte) (*Document, error) {
	dec := json.NewDecoder(bytes.NewReader(text))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, &ParseError{Err: err}
	}
	if dec.More() {
		return nil, &ParseError{Err: errTrailingData}
	}
	return Validate(raw)
}

var errTrailingData = errors.New("unexpected data after top-level value")

// Validate checks a decoded candidate (objects as map[string]any, arrays as []any) and
// returns the typed document. Checks run in a fixed order and stop at the first failure.
func Validate(raw any) (*Document, error) {
	top, ok := raw.(map[string]any)
	if !ok {
		return nil, invalid(RuleShape, "", "document must be an object")
	}
	title, ok := top["title"].(string)
	if !ok {
		return nil, invalid(RuleShape, "", "title must be a string")
	}
	description, ok := top["description"].(string)
	if !ok {
		return nil, invalid(RuleShape, "", "description must be a string")
	}
	rawStages, ok := top["stages"].([]any)
	if !ok {
		return nil, invalid(RuleShape, "", "stages must be an array")
	}
	if len(rawStages) == 0 {
		return nil, invalid(RuleEmptyStages, "", "stages must not be empty")
	}

	doc := &Document{
		Title:       title,
		Description: description,
		Stages:      make([]Stage, len(rawStages)),
	}
	rawLevels := make([]any, len(rawStages))
	for i, rs := range rawStages {
		obj, ok := rs.(map[string]any)
		if !ok {
			return nil, invalid(RuleStageShape, "", "stage %d must be an object", i)
		}
		st, err := decodeStage(i, obj)
		if err != nil {
			return nil, err
		}
		doc.Stages[i] = st
		rawLevels[i] = obj["level"]
	}

	doc.index = make(map[string]int, len(doc.Stages))
	for i, st := range doc.Stages {
		if st.ID == "" {
			return nil, invalid(RuleMissingID, "", "stage %d has no id", i)
		}
		if _, dup := doc.index[st.ID]; dup {
			return nil, invalid(RuleDuplicateID, st.ID, "id is used by more than one stage")
		}
		doc.index[st.ID] = i
	}

	for _, st := range doc.Stages {
		seen := make(map[string]struct{}, len(st.Children))
		for _, child := range st.Children {
			if _, ok := doc.index[child]; !ok {
				return nil, invalid(RuleDanglingChild, st.ID, "child %q is not a stage in this roadmap", child)
			}
			if _, dup := seen[child]; dup {
				return nil, invalid(RuleDuplicateChild, st.ID, "child %q is listed more than once", child)
			}
			seen[child] = struct{}{}
		}
	}

	if id, found := findCycle(doc); found {
		return nil, invalid(RuleCycle, id, "children form a cycle")
	}

	for i := range doc.Stages {
		lvl, ok := levelOf(rawLevels[i])
		if !ok {
			return nil, invalid(RuleLevel, doc.Stages[i].ID, "level must be a non-negative integer")
		}
		doc.Stages[i].Level = lvl
	}

	for _, st := range doc.Stages {
		for _, child := range st.Children {
			c := doc.Stages[doc.index[child]]
			if c.Level < st.Level {
				return nil, invalid(RuleLevelOrder, c.ID, "level %d is above parent %q at level %d", c.Level, st.ID, st.Level)
			}
		}
	}

	return doc, nil
}

func decodeStage(i int, obj map[string]any) (Stage, error) {
	var st Stage
	var err *ValidationError

	id, present := obj["id"]
	if present && id != nil {
		s, ok := id.(string)
		if !ok {
			return st, invalid(RuleStageShape, "", "stage %d id must be a string", i)
		}
		st.ID = s
	}

	text := func(key string) string {
		if err != nil {
			return ""
		}
		v, present := obj[key]
		if !present || v == nil {
			return ""
		}
		s, ok := v.(string)
		if !ok {
			err = invalid(RuleStageShape, st.ID, "%s must be a string", key)
		}
		return s
	}
	list := func(key string) []string {
		if err != nil {
			return nil
		}
		v, present := obj[key]
		if !present || v == nil {
			return []string{}
		}
		items, ok := v.([]any)
		if !ok {
			err = invalid(RuleStageShape, st.ID, "%s must be an array of strings", key)
			return nil
		}
		out := make([]string, 0, len(items))
		for _, item := range items {
			s, ok := item.(string)
			if !ok {
				err = invalid(RuleStageShape, st.ID, "%s must be an array of strings", key)
				return nil
			}
			out = append(out, s)
		}
		return out
	}

	st.Label = text("label")
	st.Type = text("type")
	st.Description = text("description")
	st.Duration = text("duration")
	st.Skills = list("skills")
	st.Resources = list("resources")
	st.Children = list("children")
	if err != nil {
		return Stage{}, err
	}
	return st, nil
}

const (
	white = iota
	onPath
	done
)

// findCycle runs a depth-first search over the children relation. A stage reached again
// while it is still on the current path closes a cycle; its id is returned.
func findCycle(doc *Document) (string, bool) {
	state := make([]uint8, len(doc.Stages))

	var visit func(i int) (string, bool)
	visit = func(i int) (string, bool) {
		state[i] = onPath
		for _, child := range doc.Stages[i].Children {
			j := doc.index[child]
			switch state[j] {
			case onPath:
				return doc.Stages[j].ID, true
			case white:
				if id, found := visit(j); found {
					return id, true
				}
			}
		}
		state[i] = done
		return "", false
	}

	for i := range doc.Stages {
		if state[i] == white {
			if id, found := visit(i); found {
				return id, true
			}
		}
	}
	return "", false
}

func levelOf(v any) (int, bool) {
	var f float64
	switch n := v.(type) {
	case json.Number:
		if i, err := n.Int64(); err == nil {
			if i < 0 || i > math.MaxInt32 {
				return 0, false
			}
			return int(i), true
		}
		parsed, err := n.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case float64:
		f = n
	case int:
		if n < 0 {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
	if f < 0 || f > math.MaxInt32 || f != math.Trunc(f) {
		return 0, false
	}
	return int(f), true
}
