package gqlrequest

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"

	"github.com/graphql-go/graphql/language/ast"
	"github.com/graphql-go/graphql/language/printer"
)

// AnonymousOperation names operations declared without a name.
const AnonymousOperation = "<anonymous>"

func operationName(op *ast.OperationDefinition) string {
	if op == nil || op.Name == nil || op.Name.Value == "" {
		return AnonymousOperation
	}
	return op.Name.Value
}

// operationHash identifies an operation independent of whitespace, comments and
// unrelated definitions in the same document. Only the fragments the operation
// reaches are included, in name order.
func operationHash(op *ast.OperationDefinition, fragments map[string]*ast.FragmentDefinition) string {
	reached := map[string]bool{}
	collectSpreads(op.SelectionSet, fragments, reached)
	names := make([]string, 0, len(reached))
	for name := range reached {
		names = append(names, name)
	}
	sort.Strings(names)

	defs := []ast.Node{op}
	for _, name := range names {
		defs = append(defs, fragments[name])
	}
	printed, _ := printer.Print(ast.NewDocument(&ast.Document{Definitions: defs})).(string)
	return framedSHA256(printed, operationName(op))
}

func collectSpreads(set *ast.SelectionSet, fragments map[string]*ast.FragmentDefinition, reached map[string]bool) {
	if set == nil {
		return
	}
	for _, selection := range set.Selections {
		switch sel := selection.(type) {
		case *ast.Field:
			collectSpreads(sel.SelectionSet, fragments, reached)
		case *ast.InlineFragment:
			collectSpreads(sel.SelectionSet, fragments, reached)
		case *ast.FragmentSpread:
			if sel.Name == nil || reached[sel.Name.Value] {
				continue
			}
			if frag, ok := fragments[sel.Name.Value]; ok {
				reached[sel.Name.Value] = true
				collectSpreads(frag.SelectionSet, fragments, reached)
			}
		}
	}
}

// framedSHA256 length-prefixes each part so ("ab","c") and ("a","bc") differ.
func framedSHA256(parts ...string) string {
	h := sha256.New()
	for _, part := range parts {
		_, _ = fmt.Fprintf(h, "%d:%s|", len(part), part)
	}
	return hex.EncodeToString(h.Sum(nil))
}
