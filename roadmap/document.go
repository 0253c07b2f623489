package roadmap

// Stage is one milestone in a career roadmap.
type Stage struct {
	ID          string   `json:"id"`
	Label       string   `json:"label"`
	Type        string   `json:"type,omitempty"`
	Level       int      `json:"level"`
	Description string   `json:"description"`
	Duration    string   `json:"duration"`
	Skills      []string `json:"skills"`
	Resources   []string `json:"resources"`
	Children    []string `json:"children"`
}

// Document is the unit of generation and persistence: a titled, ordered list of stages
// whose children lists form a DAG.
type Document struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Stages      []Stage `json:"stages"`

	index map[string]int
}

// Lookup returns the stage with the given id.
func (d *Document) Lookup(id string) (Stage, bool) {
	if d.index == nil {
		d.reindex()
	}
	i, ok := d.index[id]
	if !ok {
		return Stage{}, false
	}
	return d.Stages[i], true
}

func (d *Document) reindex() {
	d.index = make(map[string]int, len(d.Stages))
	for i, s := range d.Stages {
		d.index[s.ID] = i
	}
}

// Roots returns the ids of level 0 stages in document order.
func (d *Document) Roots() []string {
	var roots []string
	for _, s := range d.Stages {
		if s.Level == 0 {
			roots = append(roots, s.ID)
		}
	}
	return roots
}

// Disconnected returns the ids of stages above level 0 that no level 0 stage reaches.
// Such stages are tolerated in a valid document but worth surfacing to callers.
func (d *Document) Disconnected() []string {
	if d.index == nil {
		d.reindex()
	}
	seen := make([]bool, len(d.Stages))
	var queue []int
	for i, s := range d.Stages {
		if s.Level == 0 {
			seen[i] = true
			queue = append(queue, i)
		}
	}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, child := range d.Stages[cur].Children {
			j, ok := d.index[child]
			if !ok || seen[j] {
				continue
			}
			seen[j] = true
			queue = append(queue, j)
		}
	}

	var out []string
	for i, s := range d.Stages {
		if !seen[i] {
			out = append(out, s.ID)
		}
	}
	return out
}

// Summary holds the totals shown alongside a roadmap.
type Summary struct {
	Stages    int `json:"stages"`
	Skills    int `json:"skills"`
	Resources int `json:"resources"`
}

func Summarize(d *Document) Summary {
	sum := Summary{Stages: len(d.Stages)}
	for _, s := range d.Stages {
		sum.Skills += len(s.Skills)
		sum.Resources += len(s.Resources)
	}
	return sum
}
