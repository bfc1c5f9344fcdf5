package agent

import (
	"context"
	"fmt"

	"gearsight/internal/gamedata"
	"gearsight/internal/graph"
	"gearsight/internal/llm"
	"gearsight/internal/memory"
	"gearsight/internal/timeline"
)

// forecastAdvisor answers future-event questions from the timeline
// data: the global outlook plus a per-city risk analysis of everywhere
// the player holds assets. A missing timeline degrades to a notice
// instead of failing the run.
func (a *Agent) forecastAdvisor(ctx context.Context, s *gamedata.State) (graph.NodeKey, error) {
	currentYear := s.Year
	if currentYear == 0 {
		currentYear = 1900
	}

	var forecastSummary, assetRiskReport string
	if a.timeline == nil {
		forecastSummary = "(event timeline data unavailable)"
		assetRiskReport = "(risk analysis unavailable)"
	} else {
		forecastSummary = a.timeline.ForecastSummary(currentYear, timeline.DefaultLookahead)

		cityIDs := a.fetchPlayerCityIDs(ctx)
		if len(cityIDs) > 0 {
			risks := a.timeline.AssetRisks(cityIDs, currentYear, timeline.DefaultLookahead)
			assetRiskReport = timeline.AssetRiskReport(risks, currentYear)
		} else {
			assetRiskReport = "(no player asset cities known - no factories or dealerships yet, or early game state)"
		}
	}

	prompt := forecastAdvisorPrompt(s.Question, s.AnalystSummary, forecastSummary, assetRiskReport)
	resp, err := a.llm.CompleteWithTemperature(ctx, prompt, tempAnalysis)
	if err != nil {
		return "", fmt.Errorf("forecast_advisor: %w", err)
	}

	forecastContext := forecastSummary + "\n\n" + assetRiskReport
	s.FinalAnswer = llm.StripReasoning(resp)
	s.ForecastContext = forecastContext
	s.QuestionType = gamedata.QuestionForecast

	if a.timeline != nil {
		a.session.Put(memory.DomainForecast, forecastContext)
	}
	return graph.End, nil
}

// fetchPlayerCityIDs lists the cities where the player has a factory
// or active sales. Lookup failure just means no risk report.
func (a *Agent) fetchPlayerCityIDs(ctx context.Context) []int {
	res, err := a.db.Query(ctx, playerCityIDsSQL)
	if err != nil {
		return nil
	}
	var ids []int
	for i := range res.Rows {
		ids = append(ids, res.Int(i, "City_ID"))
	}
	return ids
}
