package graph

import (
	"context"
	"errors"
	"testing"

	"gearsight/internal/gamedata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func step(next NodeKey) Node {
	return func(ctx context.Context, s *gamedata.State) (NodeKey, error) {
		return next, nil
	}
}

func TestCompileRejectsMissingEntry(t *testing.T) {
	b := NewBuilder()
	b.AddNode("a", step(End)).AddEdge("a", End)
	_, err := b.Compile()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "entry")
}

func TestCompileRejectsUnregisteredEdgeTarget(t *testing.T) {
	b := NewBuilder()
	b.AddNode("a", step("ghost")).AddEdge("a", "ghost").SetEntry("a")
	_, err := b.Compile()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unregistered")
}

func TestCompileRejectsNodeWithoutSuccessors(t *testing.T) {
	b := NewBuilder()
	b.AddNode("a", step("b")).AddNode("b", step(End))
	b.AddEdge("a", "b").SetEntry("a")
	_, err := b.Compile()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no successors")
}

func TestCompileRejectsDuplicateNode(t *testing.T) {
	b := NewBuilder()
	b.AddNode("a", step(End)).AddNode("a", step(End)).AddEdge("a", End).SetEntry("a")
	_, err := b.Compile()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "twice")
}

func TestRunWalksDeclaredEdges(t *testing.T) {
	var visited []string
	record := func(name string, next NodeKey) Node {
		return func(ctx context.Context, s *gamedata.State) (NodeKey, error) {
			visited = append(visited, name)
			return next, nil
		}
	}

	b := NewBuilder()
	b.AddNode("a", record("a", "b")).AddEdge("a", "b")
	b.AddNode("b", record("b", "c")).AddEdge("b", "c")
	b.AddNode("c", record("c", End)).AddEdge("c", End)
	b.SetEntry("a")
	g, err := b.Compile()
	require.NoError(t, err)

	require.NoError(t, g.Run(context.Background(), &gamedata.State{}))
	assert.Equal(t, []string{"a", "b", "c"}, visited)
}

func TestRunRejectsUndeclaredTransition(t *testing.T) {
	b := NewBuilder()
	b.AddNode("a", step("c")).AddEdge("a", "b") // declares b, returns c
	b.AddNode("b", step(End)).AddEdge("b", End)
	b.AddNode("c", step(End)).AddEdge("c", End)
	b.SetEntry("a")
	g, err := b.Compile()
	require.NoError(t, err)

	err = g.Run(context.Background(), &gamedata.State{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "undeclared successor")
}

func TestRunStepCeiling(t *testing.T) {
	b := NewBuilder()
	b.AddNode("loop", step("loop")).AddEdge("loop", "loop", End)
	b.SetEntry("loop").WithMaxSteps(10)
	g, err := b.Compile()
	require.NoError(t, err)

	err = g.Run(context.Background(), &gamedata.State{RunID: "test"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrStepCeiling))
}

func TestRunPropagatesNodeError(t *testing.T) {
	boom := errors.New("boom")
	b := NewBuilder()
	b.AddNode("a", func(ctx context.Context, s *gamedata.State) (NodeKey, error) {
		return End, boom
	}).AddEdge("a", End).SetEntry("a")
	g, err := b.Compile()
	require.NoError(t, err)

	err = g.Run(context.Background(), &gamedata.State{})
	assert.True(t, errors.Is(err, boom))
}

func TestRunHonorsContextCancel(t *testing.T) {
	b := NewBuilder()
	b.AddNode("loop", step("loop")).AddEdge("loop", "loop", End)
	b.SetEntry("loop")
	g, err := b.Compile()
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = g.Run(ctx, &gamedata.State{})
	assert.True(t, errors.Is(err, context.Canceled))
}
