// Package hierarchy turns the flat list of dependencias into the org chart
// forest and the tabular exports built on top of it.
package hierarchy

import (
	"errors"

	"github.com/farxc/portal_tramites/internal/store"
)

var (
	ErrInvalidTipo    = errors.New("tipo must be dependencia or subdependencia")
	ErrParentRequired = errors.New("a subdependencia requires a parent dependencia")
	ErrParentNotFound = errors.New("parent dependencia does not exist")
	ErrCycle          = errors.New("a dependencia cannot be placed under itself or one of its descendants")
)

// Node is a dependencia with its ordered children.
type Node struct {
	store.Dependencia
	Children []*Node `json:"children"`
}

// BuildForest links units to their parents. Input order is kept among
// siblings, so callers pass units sorted by nivel, orden and nombre.
// A unit whose parent id does not resolve is left out of the forest.
func BuildForest(units []store.Dependencia) []*Node {
	byID := make(map[int64]*Node, len(units))
	for _, u := range units {
		byID[u.ID] = &Node{Dependencia: u, Children: []*Node{}}
	}

	roots := []*Node{}
	for _, u := range units {
		node := byID[u.ID]
		if u.DependenciaPadreID == nil {
			roots = append(roots, node)
			continue
		}
		if parent, ok := byID[*u.DependenciaPadreID]; ok {
			parent.Children = append(parent.Children, node)
		}
	}
	return roots
}

// Walk visits nodes in pre-order. depth is 0 for the given nodes.
func Walk(nodes []*Node, fn func(n *Node, depth int)) {
	var visit func(nodes []*Node, depth int)
	visit = func(nodes []*Node, depth int) {
		for _, n := range nodes {
			fn(n, depth)
			visit(n.Children, depth+1)
		}
	}
	visit(nodes, 0)
}

// Flatten returns the forest in pre-order.
func Flatten(nodes []*Node) []store.Dependencia {
	var out []store.Dependencia
	Walk(nodes, func(n *Node, _ int) {
		out = append(out, n.Dependencia)
	})
	return out
}

// Placement checks where candidate sits in the tree described by units and
// returns the nivel it must carry: 0 for roots, parent nivel + 1 otherwise.
// candidate.ID is zero for units that do not exist yet.
func Placement(units []store.Dependencia, candidate store.Dependencia) (int, error) {
	if candidate.Tipo != store.TipoDependencia && candidate.Tipo != store.TipoSubdependencia {
		return 0, ErrInvalidTipo
	}
	if candidate.DependenciaPadreID == nil {
		if candidate.IsSub() {
			return 0, ErrParentRequired
		}
		return 0, nil
	}

	byID := make(map[int64]store.Dependencia, len(units))
	for _, u := range units {
		byID[u.ID] = u
	}

	parent, ok := byID[*candidate.DependenciaPadreID]
	if !ok {
		return 0, ErrParentNotFound
	}

	if candidate.ID != 0 {
		seen := make(map[int64]bool)
		for cur, ok := parent, true; ok; {
			if cur.ID == candidate.ID {
				return 0, ErrCycle
			}
			if seen[cur.ID] || cur.DependenciaPadreID == nil {
				break
			}
			seen[cur.ID] = true
			cur, ok = byID[*cur.DependenciaPadreID]
		}
	}

	return parent.Nivel + 1, nil
}

// Relevel returns the nivel every descendant of id must take once id sits
// at nivel. Only descendants whose stored nivel changes are returned.
func Relevel(units []store.Dependencia, id int64, nivel int) map[int64]int {
	children := make(map[int64][]store.Dependencia)
	for _, u := range units {
		if u.DependenciaPadreID != nil {
			children[*u.DependenciaPadreID] = append(children[*u.DependenciaPadreID], u)
		}
	}

	changes := make(map[int64]int)
	visited := map[int64]bool{id: true}

	type item struct {
		id    int64
		nivel int
	}
	queue := []item{{id: id, nivel: nivel}}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		for _, child := range children[cur.id] {
			if visited[child.ID] {
				continue
			}
			visited[child.ID] = true

			want := cur.nivel + 1
			if child.Nivel != want {
				changes[child.ID] = want
			}
			queue = append(queue, item{id: child.ID, nivel: want})
		}
	}
	return changes
}
