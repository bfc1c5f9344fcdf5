package agent

import (
	"regexp"
	"strconv"
	"strings"

	"gearsight/internal/gamedata"
)

var (
	subRe    = regexp.MustCompile(`SUB(\d+):\s*(.+)`)
	tablesRe = regexp.MustCompile(`TABLES(\d+):\s*(.+)`)
	scoreRe  = regexp.MustCompile(`(\d+(?:\.\d+)?)`)
)

func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if t := strings.TrimSpace(part); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// parseSubQueries extracts SUBn/TABLESn pairs from planner output.
// A response with no recognizable pairs falls back to one sub-query
// holding the whole question against the core tables.
func parseSubQueries(raw, question string) []gamedata.SubQuery {
	tableMap := make(map[string][]string)
	for _, m := range tablesRe.FindAllStringSubmatch(raw, -1) {
		tableMap[m[1]] = splitCSV(m[2])
	}

	var subs []gamedata.SubQuery
	for _, m := range subRe.FindAllStringSubmatch(raw, -1) {
		tables := tableMap[m[1]]
		if len(tables) == 0 {
			tables = gamedata.CoreTables[:5]
		}
		id, _ := strconv.Atoi(m[1])
		subs = append(subs, gamedata.SubQuery{
			ID:       id,
			Question: strings.TrimSpace(m[2]),
			Tables:   tables,
			Status:   gamedata.StatusPending,
		})
	}

	if len(subs) == 0 {
		subs = append(subs, gamedata.SubQuery{
			ID:       1,
			Question: question,
			Tables:   gamedata.CoreTables,
			Status:   gamedata.StatusPending,
		})
	}
	if len(subs) > gamedata.MaxSubQueries {
		subs = subs[:gamedata.MaxSubQueries]
	}
	return subs
}

// extractField pulls "LABEL: value" from a response, first match wins.
func extractField(raw, label string) string {
	re := regexp.MustCompile(label + `:\s*(.+)`)
	if m := re.FindStringSubmatch(raw); m != nil {
		return strings.TrimSpace(m[1])
	}
	return ""
}

// parseStrategies extracts STRATEGYn_NAME/DESC/QUERIES/TABLES blocks.
// A response with no recognizable strategies falls back to a single
// general-improvement candidate so the branch still produces a ranking.
func parseStrategies(raw, question string) []gamedata.StrategyCandidate {
	var out []gamedata.StrategyCandidate
	for i := 1; i <= gamedata.MaxStrategyCandidates; i++ {
		prefix := "STRATEGY" + strconv.Itoa(i)
		name := extractField(raw, prefix+"_NAME")
		desc := extractField(raw, prefix+"_DESC")
		if name == "" || desc == "" {
			continue
		}
		queries := splitCSV(extractField(raw, prefix+"_QUERIES"))
		if len(queries) == 0 {
			queries = []string{question}
		}
		tables := splitCSV(extractField(raw, prefix+"_TABLES"))
		if len(tables) == 0 {
			tables = gamedata.CoreTables[:5]
		}
		out = append(out, gamedata.StrategyCandidate{
			ID:          i,
			Name:        name,
			Description: desc,
			DataQueries: queries,
			Tables:      tables,
		})
	}

	if len(out) == 0 {
		out = append(out, gamedata.StrategyCandidate{
			ID:          1,
			Name:        "General Improvement",
			Description: "Analyze current performance and suggest general improvements.",
			DataQueries: []string{question},
			Tables:      gamedata.CoreTables,
		})
	}
	return out
}

// parseEvaluation extracts the structured fields of an evaluator
// response. A score outside 1-10 or missing scores zero.
func parseEvaluation(raw string, c gamedata.StrategyCandidate) gamedata.StrategyEvaluation {
	ev := gamedata.StrategyEvaluation{
		StrategyID:   c.ID,
		StrategyName: c.Name,
		Pros:         extractField(raw, "PROS"),
		Cons:         extractField(raw, "CONS"),
		Feasibility:  extractField(raw, "FEASIBILITY"),
		Impact:       extractField(raw, "IMPACT"),
	}
	if s := extractField(raw, "SCORE"); s != "" {
		if m := scoreRe.FindString(s); m != "" {
			if v, err := strconv.ParseFloat(m, 64); err == nil && v >= 1 && v <= 10 {
				ev.Score = v
			}
		}
	}
	return ev
}

// classifyLabel maps a classifier response onto a question type by
// keyword presence, most specific first. Unrecognized output falls
// back to factual, terminating the run rather than looping.
func classifyLabel(raw string) gamedata.QuestionType {
	s := strings.ToLower(raw)
	switch {
	case strings.Contains(s, "forecast"):
		return gamedata.QuestionForecast
	case strings.Contains(s, "design"):
		return gamedata.QuestionDesign
	case strings.Contains(s, "strategic"):
		return gamedata.QuestionStrategic
	case strings.Contains(s, "analytical"):
		return gamedata.QuestionAnalytical
	default:
		return gamedata.QuestionFactual
	}
}
