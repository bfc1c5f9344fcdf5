package agent

import (
	"strings"

	"gearsight/internal/gamedata"
)

// Keyword lists for the pre-router. Strong signals are specific enough
// to stand alone; weak ones only count in combination.

var forecastStrong = []string{
	"world war", "wwi", "wwii", "korean war",
	"safe haven", "safe city", "great depression",
}

var forecastWeak = []string{
	"war", "recession", "depression", "downturn",
	"oil", "gas price", "interest rate",
	"event", "crisis", "crash", "spike",
	"forecast", "outlook", "upcoming", "future",
	// "factor" also covers "factory" as a substring; listing both
	// would double-count a single factory mention.
	"risk", "conflict", "govern", "factor",
	"economy", "economic",
}

var designStrong = []string{
	"bore", "stroke", "displacement",
	"staleness", "stale", "refresh",
	"modification", "new generation",
}

var designWeak = []string{
	"horsepower", "hp", "torque",
	"chassis", "gearbox", "transmission",
	"design", "compatible", "compatibility",
	"engine", "upgrade", "cost",
	"aging", "component",
}

func keywordScore(q string, strong, weak []string) int {
	score := 0
	for _, kw := range strong {
		if strings.Contains(q, kw) {
			score += 2
		}
	}
	for _, kw := range weak {
		if strings.Contains(q, kw) {
			score++
		}
	}
	return score
}

// classifyByKeywords scores the question against the forecast and
// design vocabularies. A score of 2 or more settles the type without
// an LLM call; anything weaker falls through to the SQL pipeline.
// Forecast wins ties: war risk questions often mention factories too.
func classifyByKeywords(question string) gamedata.QuestionType {
	q := strings.ToLower(question)
	forecast := keywordScore(q, forecastStrong, forecastWeak)
	design := keywordScore(q, designStrong, designWeak)

	if forecast >= 2 && forecast >= design {
		return gamedata.QuestionForecast
	}
	if design >= 2 && design > forecast {
		return gamedata.QuestionDesign
	}
	return gamedata.QuestionUnknown
}
