package roadmap

import "sort"

// Drawing constants shared with rendering surfaces.
const (
	NodeWidth  = 280.0
	NodeGapX   = 60.0
	NodeHeight = 160.0
	NodeGapY   = 80.0

	// PaletteSize is the number of stage colours a renderer cycles through.
	PaletteSize = 8
)

// Node is a stage placed on the drawing. X is the horizontal centre of the node and
// Left its left edge; Y is the top of the node's row.
type Node struct {
	ID    string  `json:"id"`
	Index int     `json:"index"`
	Level int     `json:"level"`
	X     float64 `json:"x"`
	Left  float64 `json:"left"`
	Y     float64 `json:"y"`
	Stage Stage   `json:"data"`
}

// Color returns the palette slot for the node. It depends only on the stage's position
// in the document.
func (n Node) Color(paletteSize int) int {
	if paletteSize <= 0 {
		return 0
	}
	return n.Index % paletteSize
}

// Edge is a directed transition between two stages.
type Edge struct {
	ID     string `json:"id"`
	Source string `json:"source"`
	Target string `json:"target"`
}

func EdgeID(source, target string) string {
	return "edge-" + source + "-" + target
}

type Graph struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// Rect is an axis-aligned box in drawing coordinates.
type Rect struct {
	MinX float64 `json:"minX"`
	MinY float64 `json:"minY"`
	MaxX float64 `json:"maxX"`
	MaxY float64 `json:"maxY"`
}

// Bounds returns the box enclosing every node, or the zero Rect for an empty graph.
func (g Graph) Bounds() Rect {
	if len(g.Nodes) == 0 {
		return Rect{}
	}
	r := Rect{MinX: g.Nodes[0].Left, MinY: g.Nodes[0].Y, MaxX: g.Nodes[0].Left + NodeWidth, MaxY: g.Nodes[0].Y + NodeHeight}
	for _, n := range g.Nodes[1:] {
		r.MinX = min(r.MinX, n.Left)
		r.MinY = min(r.MinY, n.Y)
		r.MaxX = max(r.MaxX, n.Left+NodeWidth)
		r.MaxY = max(r.MaxY, n.Y+NodeHeight)
	}
	return r
}

// Layout places stages in rows by level, each row centred on x = 0, and emits one edge
// per child reference. Input must already be validated; dangling children are not
// checked here and duplicate references produce duplicate edges.
func Layout(stages []Stage) Graph {
	g := Graph{Nodes: []Node{}, Edges: []Edge{}}
	if len(stages) == 0 {
		return g
	}

	buckets := make(map[int][]int)
	for i, s := range stages {
		buckets[s.Level] = append(buckets[s.Level], i)
	}
	levels := make([]int, 0, len(buckets))
	for lvl := range buckets {
		levels = append(levels, lvl)
	}
	sort.Ints(levels)

	for _, lvl := range levels {
		row := buckets[lvl]
		count := float64(len(row))
		rowWidth := count*NodeWidth + (count-1)*NodeGapX
		startX := -rowWidth / 2
		y := float64(lvl) * (NodeHeight + NodeGapY)

		for pos, i := range row {
			s := stages[i]
			left := startX + float64(pos)*(NodeWidth+NodeGapX)
			g.Nodes = append(g.Nodes, Node{
				ID:    s.ID,
				Index: i,
				Level: lvl,
				X:     left + NodeWidth/2,
				Left:  left,
				Y:     y,
				Stage: s,
			})
			for _, child := range s.Children {
				g.Edges = append(g.Edges, Edge{ID: EdgeID(s.ID, child), Source: s.ID, Target: child})
			}
		}
	}
	return g
}
