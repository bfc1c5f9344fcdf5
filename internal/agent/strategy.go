package agent

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"gearsight/internal/gamedata"
	"gearsight/internal/graph"
	"gearsight/internal/llm"
	"gearsight/internal/timeline"
)

// strategist drafts 2-4 candidate strategies from the analyst summary
// and the event forecast.
func (a *Agent) strategist(ctx context.Context, s *gamedata.State) (graph.NodeKey, error) {
	eventForecast := ""
	if a.timeline != nil {
		year := s.Year
		if year == 0 {
			year = 1900
		}
		eventForecast = a.timeline.ForecastSummary(year, timeline.DefaultLookahead)
	}

	prompt := strategistPrompt(s.Question, s.AnalystSummary, eventForecast, a.catalog.Index())
	resp, err := a.llm.CompleteWithTemperature(ctx, prompt, tempCreative)
	if err != nil {
		return "", fmt.Errorf("strategist: %w", err)
	}

	s.Candidates = parseStrategies(llm.StripReasoning(resp), s.Question)
	a.logger.Debug("strategies drafted",
		zap.String("run", s.RunID),
		zap.Int("candidates", len(s.Candidates)))
	return nodeEvaluate, nil
}

// evaluate fans out over the candidates concurrently. Each evaluator
// may run one extra SQL round-trip for supporting data, then scores its
// candidate. A failed evaluation yields an unverified entry in its
// fixed slot; it never sinks the other candidates or the run.
func (a *Agent) evaluate(ctx context.Context, s *gamedata.State) (graph.NodeKey, error) {
	evals := make([]gamedata.StrategyEvaluation, len(s.Candidates))

	g, gctx := errgroup.WithContext(ctx)
	for i := range s.Candidates {
		g.Go(func() error {
			evals[i] = a.evaluateOne(gctx, s, s.Candidates[i])
			return nil
		})
	}
	// Workers only report through their slots.
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return "", err
	}

	s.Evaluations = evals
	return nodeAggregate, nil
}

// evaluateOne gathers supporting data for a single candidate and asks
// the model to score it.
func (a *Agent) evaluateOne(ctx context.Context, s *gamedata.State, c gamedata.StrategyCandidate) gamedata.StrategyEvaluation {
	supporting := a.fetchSupportingData(ctx, c)

	prompt := evaluatorPrompt(s.Question, c, s.AnalystSummary, supporting)
	resp, err := a.llm.CompleteWithTemperature(ctx, prompt, tempAnalysis)
	if err != nil {
		a.logger.Warn("strategy evaluation failed",
			zap.String("run", s.RunID),
			zap.Int("strategy", c.ID),
			zap.Error(err))
		return gamedata.StrategyEvaluation{
			StrategyID:     c.ID,
			StrategyName:   c.Name,
			Cons:           fmt.Sprintf("evaluation failed: %v", err),
			SupportingData: supporting,
			Unverified:     true,
		}
	}

	ev := parseEvaluation(llm.StripReasoning(resp), c)
	ev.SupportingData = supporting
	return ev
}

// fetchSupportingData runs at most one generated query for the
// candidate's first data question. Anything that goes wrong just
// leaves the evaluator working from the analyst summary alone.
func (a *Agent) fetchSupportingData(ctx context.Context, c gamedata.StrategyCandidate) string {
	if len(c.DataQueries) == 0 {
		return ""
	}
	question := c.DataQueries[0]

	var known []string
	for _, t := range c.Tables {
		if a.catalog.Has(t) {
			known = append(known, t)
		}
	}
	if len(known) == 0 {
		known = gamedata.CoreTables[:5]
	}

	resp, err := a.llm.CompleteWithTemperature(ctx,
		evaluatorSQLPrompt(a.catalog.Extract(known), question), tempDeterministic)
	if err != nil {
		return ""
	}
	stmt := llm.CleanSQL(resp)
	if stmt == "" {
		return ""
	}
	res, err := a.db.Query(ctx, stmt)
	if err != nil {
		return ""
	}
	return fmt.Sprintf("Q: %s\n%s", question, res.Markdown(30))
}

// aggregate ranks the evaluations and asks the model for the final
// recommendation. Unverified candidates stay in the ranking, flagged.
func (a *Agent) aggregate(ctx context.Context, s *gamedata.State) (graph.NodeKey, error) {
	if len(s.Evaluations) == 0 {
		s.FinalAnswer = s.AnalystSummary
		return graph.End, nil
	}

	ranked := make([]gamedata.StrategyEvaluation, len(s.Evaluations))
	copy(ranked, s.Evaluations)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})

	var sections []string
	for _, ev := range ranked {
		flag := ""
		if ev.Unverified {
			flag = " [UNVERIFIED: evaluation incomplete]"
		}
		sections = append(sections, fmt.Sprintf(
			"### Strategy %d: %s (score %.1f)%s\nPROS: %s\nCONS: %s\nFEASIBILITY: %s\nIMPACT: %s",
			ev.StrategyID, ev.StrategyName, ev.Score, flag,
			ev.Pros, ev.Cons, ev.Feasibility, ev.Impact))
	}

	prompt := aggregatorPrompt(s.Question, s.AnalystSummary, strings.Join(sections, "\n\n"))
	resp, err := a.llm.CompleteWithTemperature(ctx, prompt, tempAnalysis)
	if err != nil {
		return "", fmt.Errorf("aggregate: %w", err)
	}
	s.FinalAnswer = llm.StripReasoning(resp)
	return graph.End, nil
}
