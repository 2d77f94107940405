package graphqlapi

import (
	"errors"
	"fmt"
	"strings"

	"github.com/graphql-go/graphql/language/ast"
	"github.com/graphql-go/graphql/language/parser"
)

var (
	errIntrospection = errors.New("introspection disabled")
	errFragmentCycle = errors.New("fragment cycle")
)

// listFanout is the assumed page size of each list field in the schema; nested
// lists multiply. campgrounds is unpaginated, so its weight bounds the whole query.
var listFanout = map[string]int{
	"campgrounds": 50,
	"reviews":     20,
	"images":      5,
}

// queryShape is what the guard measures on a parsed document.
type queryShape struct {
	depth         int
	cost          int
	introspection bool
}

// inspect parses the query and measures the operation that would run.
func inspect(query, operationName string) (queryShape, error) {
	doc, err := parser.Parse(parser.ParseParams{Source: query})
	if err != nil {
		return queryShape{}, fmt.Errorf("invalid query: %w", err)
	}

	fragments := map[string]*ast.FragmentDefinition{}
	var ops []*ast.OperationDefinition
	for _, def := range doc.Definitions {
		switch d := def.(type) {
		case *ast.OperationDefinition:
			ops = append(ops, d)
		case *ast.FragmentDefinition:
			if d.Name != nil {
				fragments[d.Name.Value] = d
			}
		}
	}

	op, err := pickOperation(ops, operationName)
	if err != nil {
		return queryShape{}, err
	}
	if op.Operation != ast.OperationTypeQuery {
		return queryShape{}, fmt.Errorf("%s operations are not supported", op.Operation)
	}

	w := &walker{fragments: fragments, active: map[string]bool{}}
	cost, depth, err := w.selections(op.SelectionSet, 1)
	if err != nil {
		return queryShape{}, err
	}
	return queryShape{depth: depth, cost: cost, introspection: w.introspection}, nil
}

func pickOperation(ops []*ast.OperationDefinition, name string) (*ast.OperationDefinition, error) {
	if len(ops) == 0 {
		return nil, errors.New("query required")
	}
	if name == "" {
		if len(ops) > 1 {
			return nil, errors.New("operationName required for multiple operations")
		}
		return ops[0], nil
	}
	for _, op := range ops {
		if op.Name != nil && op.Name.Value == name {
			return op, nil
		}
	}
	return nil, fmt.Errorf("unknown operation %q", name)
}

type walker struct {
	fragments     map[string]*ast.FragmentDefinition
	active        map[string]bool
	introspection bool
}

// selections returns the cost of set when each of its fields is fetched mult
// times, and the depth it reaches.
func (w *walker) selections(set *ast.SelectionSet, mult int) (cost, depth int, err error) {
	if set == nil {
		return 0, 0, nil
	}
	for _, sel := range set.Selections {
		var c, d int
		switch s := sel.(type) {
		case *ast.Field:
			c, d, err = w.field(s, mult)
		case *ast.InlineFragment:
			c, d, err = w.selections(s.SelectionSet, mult)
			d--
		case *ast.FragmentSpread:
			c, d, err = w.spread(s, mult)
		}
		if err != nil {
			return 0, 0, err
		}
		cost += c
		depth = max(depth, d+1)
	}
	return cost, depth, nil
}

func (w *walker) field(f *ast.Field, mult int) (int, int, error) {
	name := ""
	if f.Name != nil {
		name = f.Name.Value
	}
	if strings.HasPrefix(name, "__") && name != "__typename" {
		w.introspection = true
	}
	inner := mult
	if n, ok := listFanout[name]; ok {
		inner = mult * n
	}
	c, d, err := w.selections(f.SelectionSet, inner)
	return mult + c, d, err
}

func (w *walker) spread(s *ast.FragmentSpread, mult int) (int, int, error) {
	if s.Name == nil {
		return 0, 0, nil
	}
	name := s.Name.Value
	frag, ok := w.fragments[name]
	if !ok {
		return 0, 0, fmt.Errorf("unknown fragment %q", name)
	}
	if w.active[name] {
		return 0, 0, errFragmentCycle
	}
	w.active[name] = true
	defer delete(w.active, name)
	c, d, err := w.selections(frag.SelectionSet, mult)
	return c, d - 1, err
}
