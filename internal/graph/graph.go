// Package graph implements the node state machine that drives the question
// pipeline. The graph is an explicit adjacency structure: nodes and their
// allowed successors are declared up front and validated when the graph is
// compiled, so an illegal transition is a construction-time error rather
// than a runtime surprise.
//
// Each node is a function over the shared pipeline state that returns the
// key of the next node. The engine owns a bounded scheduling loop; all side
// effects (SQL execution, model inference) live inside the nodes.
package graph

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gearsight/internal/gamedata"

	"go.uber.org/zap"
)

// NodeKey names a node in the graph. The set of keys is closed per graph:
// Compile rejects edges that reference unregistered keys.
type NodeKey string

// End is the terminal marker. A node returning End stops the run.
const End NodeKey = "end"

// DefaultMaxSteps bounds a single run. The longest legal walk is
// 5 sub-queries, each generated three times through the four-node
// retry loop (60 steps), plus pre-router, planner, analyst, classifier,
// and the three-node strategic branch: 67 steps. Anything past the
// ceiling indicates a routing defect and aborts the run.
const DefaultMaxSteps = 72

// ErrStepCeiling is returned when a run exceeds the step ceiling.
var ErrStepCeiling = errors.New("graph: step ceiling exceeded")

// Node advances the pipeline state and names its successor.
type Node func(ctx context.Context, s *gamedata.State) (NodeKey, error)

// Builder accumulates nodes and edges before compilation.
type Builder struct {
	nodes    map[NodeKey]Node
	edges    map[NodeKey][]NodeKey
	entry    NodeKey
	maxSteps int
	logger   *zap.Logger
	errs     []error
}

// NewBuilder returns an empty graph builder.
func NewBuilder() *Builder {
	return &Builder{
		nodes:    make(map[NodeKey]Node),
		edges:    make(map[NodeKey][]NodeKey),
		maxSteps: DefaultMaxSteps,
	}
}

// AddNode registers a node under a key. Re-registering a key is a defect
// and surfaces at Compile.
func (b *Builder) AddNode(key NodeKey, fn Node) *Builder {
	if _, dup := b.nodes[key]; dup {
		b.errs = append(b.errs, fmt.Errorf("graph: node %q registered twice", key))
		return b
	}
	b.nodes[key] = fn
	return b
}

// AddEdge declares the allowed successors of a node. A node may appear in
// several AddEdge calls; successor sets accumulate.
func (b *Builder) AddEdge(from NodeKey, to ...NodeKey) *Builder {
	b.edges[from] = append(b.edges[from], to...)
	return b
}

// SetEntry names the node a run starts at.
func (b *Builder) SetEntry(key NodeKey) *Builder {
	b.entry = key
	return b
}

// WithMaxSteps overrides the step ceiling.
func (b *Builder) WithMaxSteps(n int) *Builder {
	if n > 0 {
		b.maxSteps = n
	}
	return b
}

// WithLogger attaches a logger used for per-step tracing.
func (b *Builder) WithLogger(l *zap.Logger) *Builder {
	b.logger = l
	return b
}

// Compile validates the adjacency structure and returns a runnable graph.
// Validation errors: missing entry, edges from or to unregistered nodes,
// and nodes with no way to reach End (no successors at all).
func (b *Builder) Compile() (*Graph, error) {
	if len(b.errs) > 0 {
		return nil, b.errs[0]
	}
	if b.entry == "" {
		return nil, fmt.Errorf("graph: no entry node set")
	}
	if _, ok := b.nodes[b.entry]; !ok {
		return nil, fmt.Errorf("graph: entry node %q not registered", b.entry)
	}
	for from, tos := range b.edges {
		if _, ok := b.nodes[from]; !ok {
			return nil, fmt.Errorf("graph: edge from unregistered node %q", from)
		}
		for _, to := range tos {
			if to == End {
				continue
			}
			if _, ok := b.nodes[to]; !ok {
				return nil, fmt.Errorf("graph: edge %q -> %q targets unregistered node", from, to)
			}
		}
	}
	for key := range b.nodes {
		if len(b.edges[key]) == 0 {
			return nil, fmt.Errorf("graph: node %q has no successors (unreachable End)", key)
		}
	}

	logger := b.logger
	if logger == nil {
		logger = zap.NewNop()
	}

	allowed := make(map[NodeKey]map[NodeKey]bool, len(b.edges))
	for from, tos := range b.edges {
		set := make(map[NodeKey]bool, len(tos))
		for _, to := range tos {
			set[to] = true
		}
		allowed[from] = set
	}

	return &Graph{
		nodes:    b.nodes,
		allowed:  allowed,
		entry:    b.entry,
		maxSteps: b.maxSteps,
		logger:   logger.Named("graph"),
	}, nil
}

// Graph is a compiled, immutable node graph.
type Graph struct {
	nodes    map[NodeKey]Node
	allowed  map[NodeKey]map[NodeKey]bool
	entry    NodeKey
	maxSteps int
	logger   *zap.Logger
}

// Entry returns the configured entry node key.
func (g *Graph) Entry() NodeKey { return g.entry }

// Run walks the graph from the entry node until a node returns End, a node
// errors, the context is cancelled, or the step ceiling is hit. The state
// is mutated in place by the nodes.
func (g *Graph) Run(ctx context.Context, s *gamedata.State) error {
	cur := g.entry
	for step := 1; ; step++ {
		if step > g.maxSteps {
			return fmt.Errorf("%w: %d steps (run %s)", ErrStepCeiling, g.maxSteps, s.RunID)
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		fn := g.nodes[cur]
		start := time.Now()
		next, err := fn(ctx, s)
		if err != nil {
			return fmt.Errorf("graph: node %q: %w", cur, err)
		}
		g.logger.Debug("step",
			zap.String("run", s.RunID),
			zap.Int("step", step),
			zap.String("node", string(cur)),
			zap.String("next", string(next)),
			zap.Duration("took", time.Since(start)),
		)

		if !g.allowed[cur][next] {
			return fmt.Errorf("graph: node %q returned undeclared successor %q", cur, next)
		}
		if next == End {
			return nil
		}
		cur = next
	}
}
