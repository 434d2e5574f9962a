// Package complexity scores a query structure before execution so
// oversized queries are rejected server-side instead of burdening the
// upstream. The score weighs arguments, large pagination values, and
// directives, with an exponential depth multiplier.
package complexity

import (
	"fmt"
	"math"

	"github.com/querysculptor/querysculptor/internal/querystate"
)

// Limits bounds an analysis run.
type Limits struct {
	MaxDepth      int
	MaxFields     int
	MaxComplexity float64
}

// Result is the outcome of an analysis.
type Result struct {
	MaxDepth   int      `json:"maxDepth"`
	FieldCount int      `json:"fieldCount"`
	Score      float64  `json:"score"`
	Errors     []string `json:"errors,omitempty"`
	Warnings   []string `json:"warnings,omitempty"`
}

// OK reports whether the query stayed within all limits.
func (r *Result) OK() bool {
	return len(r.Errors) == 0
}

const (
	argWeight           = 0.5
	directiveWeight     = 0.3
	depthMultiplier     = 1.2
	paginationThreshold = 100
	spreadScore         = 2.0

	depthWarnRatio = 0.8
	scoreWarnRatio = 0.7
)

type analyzer struct {
	limits  Limits
	result  *Result
	visited map[*querystate.FieldNode]bool

	depthErrored  bool
	fieldsErrored bool
	scoreErrored  bool
}

// Analyze walks the query structure and scores it against the limits.
// Subtrees past a violated limit are pruned rather than walked further.
func Analyze(qs *querystate.QueryState, limits Limits) *Result {
	a := &analyzer{
		limits:  limits,
		result:  &Result{},
		visited: make(map[*querystate.FieldNode]bool),
	}
	a.walkChildren(qs.QueryStructure, 1)

	if a.result.MaxDepth > int(float64(limits.MaxDepth)*depthWarnRatio) && a.result.MaxDepth <= limits.MaxDepth {
		a.result.Warnings = append(a.result.Warnings, fmt.Sprintf(
			"Query depth %d is approaching the maximum of %d", a.result.MaxDepth, limits.MaxDepth))
	}
	if a.result.Score > limits.MaxComplexity*scoreWarnRatio && a.result.Score <= limits.MaxComplexity {
		a.result.Warnings = append(a.result.Warnings, fmt.Sprintf(
			"Query complexity %.1f is approaching the maximum of %.0f", a.result.Score, limits.MaxComplexity))
	}
	return a.result
}

// walkChildren scores the selections of a node whose children sit at the
// given depth.
func (a *analyzer) walkChildren(node *querystate.FieldNode, depth int) {
	for _, child := range node.ChildrenInOrder() {
		a.walkField(child, depth)
	}

	for range node.FragmentSpreads {
		a.countField(depth)
		a.addScore(spreadScore)
	}

	for _, inline := range node.InlineFragments {
		for _, key := range inline.SelectionOrder {
			if f, ok := inline.Selections[key]; ok {
				a.walkField(f, depth+1)
			}
		}
	}
}

func (a *analyzer) walkField(node *querystate.FieldNode, depth int) {
	if a.visited[node] {
		return
	}
	a.visited[node] = true
	defer delete(a.visited, node)

	if depth > a.limits.MaxDepth {
		if !a.depthErrored {
			a.depthErrored = true
			a.result.Errors = append(a.result.Errors, fmt.Sprintf(
				"Query depth %d exceeds maximum allowed depth of %d", depth, a.limits.MaxDepth))
		}
		if depth > a.result.MaxDepth {
			a.result.MaxDepth = depth
		}
		return
	}

	if !a.countField(depth) {
		return
	}

	local := 1.0 + argWeight*float64(len(node.Args)) + directiveWeight*float64(len(node.Directives))
	for _, name := range node.ArgOrder {
		arg, ok := node.Args[name]
		if !ok || arg == nil || !isPaginationArg(name) {
			continue
		}
		if n, ok := paginationValue(arg.Value); ok && n > paginationThreshold {
			local += math.Log10(n) * 2
		}
	}
	a.addScore(local * math.Pow(depthMultiplier, float64(depth)))
	if a.scoreErrored {
		return
	}

	a.walkChildren(node, depth+1)
}

func (a *analyzer) countField(depth int) bool {
	if depth > a.result.MaxDepth {
		a.result.MaxDepth = depth
	}
	a.result.FieldCount++
	if a.result.FieldCount > a.limits.MaxFields {
		if !a.fieldsErrored {
			a.fieldsErrored = true
			a.result.Errors = append(a.result.Errors, fmt.Sprintf(
				"Query selects %d fields, exceeding the maximum of %d", a.result.FieldCount, a.limits.MaxFields))
		}
		return false
	}
	return true
}

func (a *analyzer) addScore(delta float64) {
	a.result.Score += delta
	if a.result.Score > a.limits.MaxComplexity && !a.scoreErrored {
		a.scoreErrored = true
		a.result.Errors = append(a.result.Errors, fmt.Sprintf(
			"Query complexity %.1f exceeds the maximum of %.0f", a.result.Score, a.limits.MaxComplexity))
	}
}

func isPaginationArg(name string) bool {
	switch name {
	case "first", "last", "limit", "top", "count":
		return true
	}
	return false
}

func paginationValue(value any) (float64, bool) {
	switch v := value.(type) {
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case float32:
		return float64(v), true
	case float64:
		return v, true
	default:
		return 0, false
	}
}
