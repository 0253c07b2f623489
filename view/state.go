package view

import (
	"errors"
	"fmt"
	"sync"

	"github.com/andrewpaige1/roadmap-api/roadmap"
)

// PreviewSkills is how many skills a collapsed node shows.
const PreviewSkills = 3

var (
	ErrUnknownNode = errors.New("node is not part of this roadmap")
	ErrUnknownEdge = errors.New("connection not found")
	// ErrStructuralEdge is returned when removing an edge that belongs to the roadmap
	// itself rather than to the session.
	ErrStructuralEdge = errors.New("roadmap transitions cannot be removed")
	ErrSelfConnection = errors.New("a stage cannot connect to itself")
	ErrInvalidZoom    = errors.New("zoom must be positive")
)

type ZoomLimits struct {
	Min float64
	Max float64
}

func DefaultZoomLimits() ZoomLimits {
	return ZoomLimits{Min: 0.3, Max: 1.5}
}

func (z ZoomLimits) clamp(scale float64) float64 {
	return min(max(scale, z.Min), z.Max)
}

type Viewport struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Zoom float64 `json:"zoom"`
}

// State is the interactive state of one displayed roadmap. The laid-out graph is fixed;
// expand flags, viewport and user-drawn connections live in an overlay that is never
// written back to the document.
type State struct {
	mu       sync.RWMutex
	graph    roadmap.Graph
	nodes    map[string]int
	limits   ZoomLimits
	expanded map[string]bool
	viewport Viewport
	user     []roadmap.Edge
}

// New lays out the stages and returns a fresh state with every node collapsed.
func New(stages []roadmap.Stage, limits ZoomLimits) *State {
	return FromGraph(roadmap.Layout(stages), limits)
}

func FromGraph(g roadmap.Graph, limits ZoomLimits) *State {
	nodes := make(map[string]int, len(g.Nodes))
	for i, n := range g.Nodes {
		nodes[n.ID] = i
	}
	return &State{
		graph:    g,
		nodes:    nodes,
		limits:   limits,
		expanded: make(map[string]bool),
		viewport: Viewport{Zoom: limits.clamp(1)},
	}
}

// Toggle flips a node between collapsed and expanded and returns the new value.
func (s *State) Toggle(nodeID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.nodes[nodeID]; !ok {
		return false, fmt.Errorf("%w: %s", ErrUnknownNode, nodeID)
	}
	s.expanded[nodeID] = !s.expanded[nodeID]
	return s.expanded[nodeID], nil
}

func (s *State) SetExpanded(nodeID string, expanded bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.nodes[nodeID]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownNode, nodeID)
	}
	s.expanded[nodeID] = expanded
	return nil
}

func (s *State) Expanded(nodeID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.expanded[nodeID]
}

func (s *State) Viewport() Viewport {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.viewport
}

// SetViewport replaces the viewport, clamping zoom into the configured range.
func (s *State) SetViewport(v Viewport) (Viewport, error) {
	if v.Zoom <= 0 {
		return Viewport{}, ErrInvalidZoom
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	v.Zoom = s.limits.clamp(v.Zoom)
	s.viewport = v
	return v, nil
}

func (s *State) Pan(dx, dy float64) Viewport {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.viewport.X += dx
	s.viewport.Y += dy
	return s.viewport
}

func (s *State) ZoomTo(scale float64) (Viewport, error) {
	if scale <= 0 {
		return Viewport{}, ErrInvalidZoom
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.viewport.Zoom = s.limits.clamp(scale)
	return s.viewport, nil
}

// Connect adds a user-drawn edge. Connecting two nodes that are already connected in
// that direction returns the existing edge.
func (s *State) Connect(source, target string) (roadmap.Edge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range []string{source, target} {
		if _, ok := s.nodes[id]; !ok {
			return roadmap.Edge{}, fmt.Errorf("%w: %s", ErrUnknownNode, id)
		}
	}
	if source == target {
		return roadmap.Edge{}, ErrSelfConnection
	}
	for _, e := range s.graph.Edges {
		if e.Source == source && e.Target == target {
			return e, nil
		}
	}
	for _, e := range s.user {
		if e.Source == source && e.Target == target {
			return e, nil
		}
	}

	e := roadmap.Edge{ID: roadmap.EdgeID(source, target), Source: source, Target: target}
	s.user = append(s.user, e)
	return e, nil
}

// Disconnect removes a user-drawn edge.
func (s *State) Disconnect(edgeID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, e := range s.user {
		if e.ID == edgeID {
			s.user = append(s.user[:i:i], s.user[i+1:]...)
			return nil
		}
	}
	for _, e := range s.graph.Edges {
		if e.ID == edgeID {
			return ErrStructuralEdge
		}
	}
	return ErrUnknownEdge
}

// NodeView is a node as a renderer should draw it right now.
type NodeView struct {
	roadmap.Node
	Color         int      `json:"color"`
	Expanded      bool     `json:"expanded"`
	VisibleSkills []string `json:"visibleSkills"`
	HiddenSkills  int      `json:"hiddenSkills"`
}

type EdgeView struct {
	roadmap.Edge
	UserAdded bool `json:"userAdded"`
}

type Snapshot struct {
	Nodes    []NodeView   `json:"nodes"`
	Edges    []EdgeView   `json:"edges"`
	Viewport Viewport     `json:"viewport"`
	Bounds   roadmap.Rect `json:"bounds"`
}

// Snapshot returns a copy of the current render model.
func (s *State) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := Snapshot{
		Nodes:    make([]NodeView, 0, len(s.graph.Nodes)),
		Edges:    make([]EdgeView, 0, len(s.graph.Edges)+len(s.user)),
		Viewport: s.viewport,
		Bounds:   s.graph.Bounds(),
	}
	for _, n := range s.graph.Nodes {
		expanded := s.expanded[n.ID]
		skills := n.Stage.Skills
		hidden := 0
		if !expanded && len(skills) > PreviewSkills {
			hidden = len(skills) - PreviewSkills
			skills = skills[:PreviewSkills]
		}
		snap.Nodes = append(snap.Nodes, NodeView{
			Node:          n,
			Color:         n.Color(roadmap.PaletteSize),
			Expanded:      expanded,
			VisibleSkills: append([]string{}, skills...),
			HiddenSkills:  hidden,
		})
	}
	for _, e := range s.graph.Edges {
		snap.Edges = append(snap.Edges, EdgeView{Edge: e})
	}
	for _, e := range s.user {
		snap.Edges = append(snap.Edges, EdgeView{Edge: e, UserAdded: true})
	}
	return snap
}
