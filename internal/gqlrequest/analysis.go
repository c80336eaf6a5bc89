// Package gqlrequest parses incoming GraphQL documents once per request so that
// middleware can act on the operation before it is executed.
package gqlrequest

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"dogbreeds-graphql/internal/apperr"

	"github.com/graphql-go/graphql/language/ast"
	"github.com/graphql-go/graphql/language/parser"
	"github.com/graphql-go/graphql/language/source"
)

// Operation types as they appear in a document.
const (
	OperationQuery        = "query"
	OperationMutation     = "mutation"
	OperationSubscription = "subscription"
	OperationUnknown      = "unknown"
)

// ErrMissingQuery marks a well-formed request that carries no document.
var ErrMissingQuery = errors.New("request does not include a query")

// Analysis is what the middleware chain knows about a request's GraphQL document.
type Analysis struct {
	Envelope Envelope

	Document  *ast.Document
	Operation *ast.OperationDefinition

	OperationName string
	OperationType string

	FieldCount    int
	Depth         int
	VariableCount int
	Hash          string

	// Err is set when the body could not be decoded, the document did not parse,
	// or no single operation could be selected.
	Err error
}

// Analyze decodes r's GraphQL payload and analyzes it. The body is rewound.
func Analyze(r *http.Request, maxBodyBytes int64) *Analysis {
	env, err := DecodeEnvelope(r, maxBodyBytes)
	a := AnalyzeEnvelope(env)
	if err != nil {
		// the decode failure replaces ErrMissingQuery
		a.Err = err
	}
	return a
}

// AnalyzeEnvelope parses env.Query and derives operation metadata.
func AnalyzeEnvelope(env Envelope) *Analysis {
	a := &Analysis{Envelope: env, OperationType: OperationUnknown}
	if strings.TrimSpace(env.Query) == "" {
		a.Err = ErrMissingQuery
		return a
	}

	doc, err := parser.Parse(parser.ParseParams{
		Source: source.NewSource(&source.Source{Body: []byte(env.Query), Name: "GraphQL request"}),
	})
	if err != nil {
		a.Err = err
		return a
	}
	a.Document = doc

	op, err := selectOperation(doc, env.OperationName)
	if err != nil {
		a.Err = err
		return a
	}
	a.Operation = op
	a.OperationName = operationName(op)
	a.OperationType = string(op.Operation)
	a.VariableCount = len(op.VariableDefinitions)

	fragments := fragmentsByName(doc)
	w := walker{fragments: fragments, inFlight: map[string]bool{}}
	a.FieldCount, a.Depth = w.walk(op.SelectionSet, 1)
	a.Hash = operationHash(op, fragments)
	return a
}

// Parsed reports whether a single operation was selected from the document.
func (a *Analysis) Parsed() bool {
	return a != nil && a.Err == nil && a.Operation != nil
}

// IsMutation reports whether the selected operation is a mutation.
func (a *Analysis) IsMutation() bool {
	return a.Parsed() && a.OperationType == OperationMutation
}

// CheckDepth rejects documents nested deeper than max. A max of zero disables
// the check.
func (a *Analysis) CheckDepth(max int) error {
	if max <= 0 || !a.Parsed() || a.Depth <= max {
		return nil
	}
	return apperr.Validation(fmt.Sprintf("Query depth %d exceeds the maximum of %d", a.Depth, max))
}

func fragmentsByName(doc *ast.Document) map[string]*ast.FragmentDefinition {
	out := map[string]*ast.FragmentDefinition{}
	for _, def := range doc.Definitions {
		if f, ok := def.(*ast.FragmentDefinition); ok && f.Name != nil && f.Name.Value != "" {
			out[f.Name.Value] = f
		}
	}
	return out
}

func selectOperation(doc *ast.Document, name string) (*ast.OperationDefinition, error) {
	var ops []*ast.OperationDefinition
	for _, def := range doc.Definitions {
		if op, ok := def.(*ast.OperationDefinition); ok && op != nil {
			ops = append(ops, op)
		}
	}

	if name != "" {
		for _, op := range ops {
			if op.Name != nil && op.Name.Value == name {
				return op, nil
			}
		}
		return nil, fmt.Errorf("unknown operation named %q", name)
	}
	switch len(ops) {
	case 0:
		return nil, errors.New("request does not include an operation")
	case 1:
		return ops[0], nil
	default:
		return nil, errors.New("operationName is required when the document has several operations")
	}
}

// walker counts fields and nesting depth, expanding fragments in place.
type walker struct {
	fragments map[string]*ast.FragmentDefinition
	inFlight  map[string]bool
}

func (w walker) walk(set *ast.SelectionSet, depth int) (fields, maxDepth int) {
	if set == nil {
		return 0, depth - 1
	}
	maxDepth = depth
	merge := func(f, d int) {
		fields += f
		if d > maxDepth {
			maxDepth = d
		}
	}

	for _, selection := range set.Selections {
		switch sel := selection.(type) {
		case *ast.Field:
			fields++
			if sel.SelectionSet != nil {
				merge(w.walk(sel.SelectionSet, depth+1))
			}
		case *ast.InlineFragment:
			merge(w.walk(sel.SelectionSet, depth))
		case *ast.FragmentSpread:
			if sel.Name == nil || w.inFlight[sel.Name.Value] {
				continue
			}
			frag, ok := w.fragments[sel.Name.Value]
			if !ok {
				continue
			}
			// Cyclic spreads are a validation error; stop here and let graphql-go report it.
			w.inFlight[sel.Name.Value] = true
			merge(w.walk(frag.SelectionSet, depth))
			delete(w.inFlight, sel.Name.Value)
		}
	}
	return fields, maxDepth
}
