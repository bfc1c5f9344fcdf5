package agent

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gearsight/internal/gamedata"
)

func TestParseSubQueries(t *testing.T) {
	raw := `Here is my plan:
SUB1: What is the current game year and month?
TABLES1: GameInfo
SUB2: How much cash does the player have?
TABLES2: CompanyList, PlayerInfo`

	want := []gamedata.SubQuery{
		{
			ID:       1,
			Question: "What is the current game year and month?",
			Tables:   []string{"GameInfo"},
			Status:   gamedata.StatusPending,
		},
		{
			ID:       2,
			Question: "How much cash does the player have?",
			Tables:   []string{"CompanyList", "PlayerInfo"},
			Status:   gamedata.StatusPending,
		},
	}
	if diff := cmp.Diff(want, parseSubQueries(raw, "original question")); diff != "" {
		t.Errorf("plan mismatch (-want +got):\n%s", diff)
	}
}

func TestParseSubQueriesFallbacks(t *testing.T) {
	// No recognizable plan at all: the whole question becomes one
	// sub-query against the core tables.
	subs := parseSubQueries("I cannot help with that.", "how many cars do I sell?")
	require.Len(t, subs, 1)
	assert.Equal(t, "how many cars do I sell?", subs[0].Question)
	assert.Equal(t, gamedata.CoreTables, subs[0].Tables)

	// SUB line without a matching TABLES line gets the default set.
	subs = parseSubQueries("SUB1: market share by city", "q")
	require.Len(t, subs, 1)
	assert.Equal(t, gamedata.CoreTables[:5], subs[0].Tables)
}

func TestParseSubQueriesCapped(t *testing.T) {
	raw := ""
	for i := 1; i <= 8; i++ {
		raw += "SUB" + string(rune('0'+i)) + ": part\n"
	}
	subs := parseSubQueries(raw, "q")
	assert.Len(t, subs, gamedata.MaxSubQueries)
}

func TestParseStrategies(t *testing.T) {
	raw := `STRATEGY1_NAME: Expand to Europe
STRATEGY1_DESC: Build a factory in Berlin to serve the European market.
STRATEGY1_QUERIES: European city populations, current factory utilization
STRATEGY1_TABLES: CitiesInfo, FactoryInfo

STRATEGY2_NAME: Cut Prices
STRATEGY2_DESC: Reduce margins to gain market share.`

	cands := parseStrategies(raw, "how do I grow?")
	require.Len(t, cands, 2)

	assert.Equal(t, "Expand to Europe", cands[0].Name)
	assert.Equal(t, []string{"European city populations", "current factory utilization"}, cands[0].DataQueries)
	assert.Equal(t, []string{"CitiesInfo", "FactoryInfo"}, cands[0].Tables)

	// Missing QUERIES/TABLES fall back to the question and core tables.
	assert.Equal(t, []string{"how do I grow?"}, cands[1].DataQueries)
	assert.Equal(t, gamedata.CoreTables[:5], cands[1].Tables)
}

func TestParseStrategiesFallback(t *testing.T) {
	cands := parseStrategies("no structured output here", "what should I do?")
	require.Len(t, cands, 1)
	assert.Equal(t, "General Improvement", cands[0].Name)
}

func TestParseStrategiesIgnoresIncomplete(t *testing.T) {
	// A name without a description does not count.
	raw := "STRATEGY1_NAME: Half Baked\nSTRATEGY2_NAME: Real\nSTRATEGY2_DESC: A complete one."
	cands := parseStrategies(raw, "q")
	require.Len(t, cands, 1)
	assert.Equal(t, "Real", cands[0].Name)
}

func TestParseEvaluation(t *testing.T) {
	c := gamedata.StrategyCandidate{ID: 2, Name: "Expand to Europe"}
	raw := `PROS: Large untapped market
CONS: High upfront capital cost
FEASIBILITY: Medium
IMPACT: High
SCORE: 7.5`

	ev := parseEvaluation(raw, c)
	assert.Equal(t, 2, ev.StrategyID)
	assert.Equal(t, "Expand to Europe", ev.StrategyName)
	assert.Equal(t, "Large untapped market", ev.Pros)
	assert.Equal(t, "High upfront capital cost", ev.Cons)
	assert.Equal(t, 7.5, ev.Score)
}

func TestParseEvaluationScoreBounds(t *testing.T) {
	c := gamedata.StrategyCandidate{ID: 1, Name: "X"}
	assert.Equal(t, 0.0, parseEvaluation("SCORE: 15", c).Score)
	assert.Equal(t, 0.0, parseEvaluation("SCORE: nonsense", c).Score)
	assert.Equal(t, 0.0, parseEvaluation("no score line", c).Score)
	assert.Equal(t, 10.0, parseEvaluation("SCORE: 10", c).Score)
	assert.Equal(t, 1.0, parseEvaluation("SCORE: 1.0", c).Score)
}

func TestClassifyLabel(t *testing.T) {
	assert.Equal(t, gamedata.QuestionForecast, classifyLabel("This is a FORECAST question."))
	assert.Equal(t, gamedata.QuestionDesign, classifyLabel("design"))
	assert.Equal(t, gamedata.QuestionStrategic, classifyLabel("strategic\n"))
	assert.Equal(t, gamedata.QuestionAnalytical, classifyLabel("Analytical"))
	assert.Equal(t, gamedata.QuestionFactual, classifyLabel("factual"))
	assert.Equal(t, gamedata.QuestionFactual, classifyLabel("I am not sure"))
}

func TestClassifyByKeywords(t *testing.T) {
	cases := []struct {
		question string
		want     gamedata.QuestionType
	}{
		{"Will there be a world war soon?", gamedata.QuestionForecast},
		{"Is a recession or crash coming?", gamedata.QuestionForecast},
		{"Should I increase the bore of my engine?", gamedata.QuestionDesign},
		{"How stale are my vehicle designs?", gamedata.QuestionDesign},
		{"How much cash do I have?", gamedata.QuestionUnknown},
		{"What is my market share in Paris?", gamedata.QuestionUnknown},
		// "war" alone is a weak signal and must not trigger bypass.
		{"Did the price war hurt my margins?", gamedata.QuestionUnknown},
		// A factory question is a data question, not a forecast: the
		// single mention scores 1 and falls through to the planner.
		{"Should I build a new factory in Detroit?", gamedata.QuestionUnknown},
		// Forecast wins a tie against design.
		{"Is my engine factory at risk in the upcoming war?", gamedata.QuestionForecast},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, classifyByKeywords(tc.question), tc.question)
	}
}
