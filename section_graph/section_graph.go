// section_graph partitions the playable width into fixed-size sections and connects
// consecutive sections with edges weighted by their horizontal distance. It is the
// structural half of the world model; per-section occupancy lives elsewhere.
package section_graph

import (
	"errors"
	"fmt"

	"applepicker/models"

	"gonum.org/v1/gonum/graph/path"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// ErrEmptyGrid is returned when the grid is built over a degenerate range.
var ErrEmptyGrid error = errors.New("empty grid: range or section size is not positive")

// ErrUnknownSection is returned when an operation references a position outside the precomputed grid.
var ErrUnknownSection error = errors.New("unknown section")

// ErrNoPathFound is returned when two sections are not connected. Build never produces
// such a grid, so seeing this means the graph was corrupted.
var ErrNoPathFound error = errors.New("no path found")

// SectionGraph is a line graph over the section positions. Sections are kept in
// ascending order alongside the gonum graph, since gonum's node iteration order is
// not deterministic.
type SectionGraph struct {
	graph    *simple.WeightedUndirectedGraph
	sections []int
	index    map[int]int
	size     int
}

// Build populates one section per stride in [left, right) and connects each
// consecutive pair with an edge of weight @size.
func Build(left, right, size int) (*SectionGraph, error) {
	if size <= 0 || right <= left {
		return nil, fmt.Errorf("build [%d,%d) stride %d: %w", left, right, size, ErrEmptyGrid)
	}

	sg := &SectionGraph{
		graph: simple.NewWeightedUndirectedGraph(0, 0),
		index: map[int]int{},
		size:  size,
	}

	for x := left; x < right; x += size {
		sg.index[x] = len(sg.sections)
		sg.sections = append(sg.sections, x)
		sg.graph.AddNode(simple.Node(x))
	}

	for i := 1; i < len(sg.sections); i++ {
		prev, cur := sg.sections[i-1], sg.sections[i]
		sg.graph.SetWeightedEdge(
			sg.graph.NewWeightedEdge(simple.Node(prev), simple.Node(cur), float64(cur-prev)))
	}

	return sg, nil
}

// Sections returns a copy of the section positions in ascending order.
func (sg *SectionGraph) Sections() []int {
	return append([]int(nil), sg.sections...)
}

// Len returns the number of sections.
func (sg *SectionGraph) Len() int {
	return len(sg.sections)
}

// SectionSize returns the stride between consecutive sections.
func (sg *SectionGraph) SectionSize() int {
	return sg.size
}

// Has reports whether @section is a node of the grid.
func (sg *SectionGraph) Has(section int) bool {
	_, ok := sg.index[section]
	return ok
}

// Index returns the ordinal of @section, counting from the leftmost section.
func (sg *SectionGraph) Index(section int) (int, error) {
	i, ok := sg.index[section]
	if !ok {
		return 0, fmt.Errorf("section %d: %w", section, ErrUnknownSection)
	}
	return i, nil
}

// At returns the section with ordinal @i.
func (sg *SectionGraph) At(i int) int {
	return sg.sections[i]
}

// Neighbor returns the adjacent section in direction @dir, or false at the boundary.
func (sg *SectionGraph) Neighbor(section int, dir models.Direction) (int, bool) {
	i, ok := sg.index[section]
	if !ok {
		return 0, false
	}
	if dir == models.Left {
		i--
	} else {
		i++
	}
	if i < 0 || i >= len(sg.sections) {
		return 0, false
	}
	return sg.sections[i], true
}

// Weight returns the weight of the edge between two sections, if there is one.
func (sg *SectionGraph) Weight(a, b int) (float64, bool) {
	edge := sg.graph.WeightedEdge(int64(a), int64(b))
	if edge == nil {
		return 0, false
	}
	return edge.Weight(), true
}

// Connected reports whether the grid is a single component.
func (sg *SectionGraph) Connected() bool {
	return len(topo.ConnectedComponents(sg.graph)) == 1
}

// ShortestPath returns the minimum-weight sequence of sections from @source to @target,
// excluding @source and including @target. The result is empty when they are equal.
func (sg *SectionGraph) ShortestPath(source, target int) ([]int, error) {
	if !sg.Has(source) {
		return nil, fmt.Errorf("path source %d: %w", source, ErrUnknownSection)
	}
	if !sg.Has(target) {
		return nil, fmt.Errorf("path target %d: %w", target, ErrUnknownSection)
	}
	if source == target {
		return []int{}, nil
	}

	shortest := path.DijkstraFrom(simple.Node(source), sg.graph)
	nodes, _ := shortest.To(int64(target))
	if len(nodes) == 0 {
		return nil, fmt.Errorf("%d to %d: %w", source, target, ErrNoPathFound)
	}

	sections := make([]int, 0, len(nodes)-1)
	for _, node := range nodes[1:] {
		sections = append(sections, int(node.ID()))
	}
	return sections, nil
}
