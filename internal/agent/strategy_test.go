package agent

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"gearsight/internal/gamedata"
)

func TestStrategicQuestionEndToEnd(t *testing.T) {
	// Registered before newTestAgent's cleanups so it runs after the
	// test DB is closed; opencensus starts a permanent worker at init
	// via the genai dependency chain.
	t.Cleanup(func() {
		goleak.VerifyNone(t,
			goleak.IgnoreTopFunction("go.opencensus.io/stats/view.(*worker).start"))
	})

	var (
		mu               sync.Mutex
		aggregatorPrompt string
	)

	a := newTestAgent(t, func(prompt string) (string, error) {
		switch {
		case strings.Contains(prompt, "database query planner"):
			return "SUB1: current financial performance\nTABLES1: CompanyList", nil

		case strings.Contains(prompt, "SQLite SQL expert"):
			// Both the pipeline and the evaluators generate SQL; the
			// embedded question tells them apart.
			return "SELECT COMPANY_NAME, FUNDS_ONHAND FROM CompanyList", nil

		case strings.Contains(prompt, "business analyst"):
			return "Revenue is steady, cash position is strong.", nil

		case strings.Contains(prompt, "question classifier"):
			return "strategic", nil

		case strings.Contains(prompt, "senior strategic advisor"):
			mu.Lock()
			aggregatorPrompt = prompt
			mu.Unlock()
			return "Expand factories first, then revisit pricing.", nil

		case strings.Contains(prompt, "strategic advisor for GearCity"):
			return `STRATEGY1_NAME: Expand Factories
STRATEGY1_DESC: Add production lines in underserved markets.
STRATEGY1_QUERIES: factory utilization
STRATEGY1_TABLES: CompanyList

STRATEGY2_NAME: Cut Prices
STRATEGY2_DESC: Trade margin for market share.
STRATEGY2_QUERIES: price positioning
STRATEGY2_TABLES: CompanyList

STRATEGY3_NAME: Bad Idea
STRATEGY3_DESC: A strategy whose evaluation will fail.
STRATEGY3_QUERIES: unavailable data
STRATEGY3_TABLES: CompanyList`, nil

		case strings.Contains(prompt, "You are evaluating a specific strategy"):
			switch {
			case strings.Contains(prompt, "## Strategy: Expand Factories"):
				return "PROS: Growth\nCONS: Capital heavy\nFEASIBILITY: MEDIUM\nIMPACT: HIGH\nSCORE: 8", nil
			case strings.Contains(prompt, "## Strategy: Cut Prices"):
				return "PROS: Quick share gains\nCONS: Margin erosion\nFEASIBILITY: HIGH\nIMPACT: MEDIUM\nSCORE: 6", nil
			default:
				return "", assert.AnError
			}
		}
		return "", assert.AnError
	})

	state, err := a.Ask(context.Background(), "How should I grow the company?")
	require.NoError(t, err)

	assert.Equal(t, gamedata.QuestionStrategic, state.QuestionType)
	assert.Equal(t, "Expand factories first, then revisit pricing.", state.FinalAnswer)
	require.Len(t, state.Candidates, 3)
	require.Len(t, state.Evaluations, 3)

	// Evaluations keep the candidate order; only the failed one is
	// flagged unverified.
	byName := map[string]gamedata.StrategyEvaluation{}
	for _, ev := range state.Evaluations {
		byName[ev.StrategyName] = ev
	}
	assert.Equal(t, 8.0, byName["Expand Factories"].Score)
	assert.False(t, byName["Expand Factories"].Unverified)
	assert.Equal(t, 6.0, byName["Cut Prices"].Score)

	bad := byName["Bad Idea"]
	assert.True(t, bad.Unverified)
	assert.Zero(t, bad.Score)
	assert.Contains(t, bad.Cons, "evaluation failed")

	// Supporting data from the real database reaches the evaluators.
	assert.Contains(t, byName["Expand Factories"].SupportingData, "Test Motors")

	// The aggregator sees the ranking best-first with the failure flagged.
	mu.Lock()
	agg := aggregatorPrompt
	mu.Unlock()
	require.NotEmpty(t, agg)
	expandIdx := strings.Index(agg, "Expand Factories (score 8.0)")
	cutIdx := strings.Index(agg, "Cut Prices (score 6.0)")
	badIdx := strings.Index(agg, "Bad Idea (score 0.0)")
	require.True(t, expandIdx >= 0 && cutIdx >= 0 && badIdx >= 0, agg)
	assert.Less(t, expandIdx, cutIdx)
	assert.Less(t, cutIdx, badIdx)
	assert.Contains(t, agg, "[UNVERIFIED: evaluation incomplete]")
}

func TestStrategistFallbackCandidate(t *testing.T) {
	a := newTestAgent(t, func(prompt string) (string, error) {
		switch {
		case strings.Contains(prompt, "database query planner"):
			return "SUB1: overview\nTABLES1: CompanyList", nil
		case strings.Contains(prompt, "SQLite SQL expert"):
			return "SELECT COMPANY_NAME FROM CompanyList", nil
		case strings.Contains(prompt, "business analyst"):
			return "Summary.", nil
		case strings.Contains(prompt, "question classifier"):
			return "strategic", nil
		case strings.Contains(prompt, "senior strategic advisor"):
			return "Final recommendation.", nil
		case strings.Contains(prompt, "strategic advisor for GearCity"):
			return "I have no structured strategies to offer.", nil
		case strings.Contains(prompt, "You are evaluating a specific strategy"):
			return "PROS: n/a\nCONS: n/a\nFEASIBILITY: LOW\nIMPACT: LOW\nSCORE: 3", nil
		}
		return "", assert.AnError
	})

	state, err := a.Ask(context.Background(), "what should I do next?")
	require.NoError(t, err)

	require.Len(t, state.Candidates, 1)
	assert.Equal(t, "General Improvement", state.Candidates[0].Name)
	require.Len(t, state.Evaluations, 1)
	assert.Equal(t, 3.0, state.Evaluations[0].Score)
	assert.Equal(t, "Final recommendation.", state.FinalAnswer)
}
