package agent

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"gearsight/internal/gamedata"
	"gearsight/internal/graph"
	"gearsight/internal/llm"
	"gearsight/internal/memory"
	"gearsight/internal/savedb"
)

// preRouter probes the game clock once for the run, refreshes the
// session cache's notion of time, and classifies obvious forecast and
// design questions by keyword so they can skip the SQL pipeline.
func (a *Agent) preRouter(ctx context.Context, s *gamedata.State) (graph.NodeKey, error) {
	year, month, err := a.db.CurrentTurn(ctx)
	if err != nil {
		// Clock probe failure is survivable: caches stop expiring
		// and advisors fall back to a default year.
		a.logger.Warn("game clock probe failed", zap.Error(err))
		year, month = 0, 0
	}
	s.Year, s.Month = year, month
	a.session.SetTurn(year, month)

	switch qt := classifyByKeywords(s.Question); qt {
	case gamedata.QuestionForecast:
		s.QuestionType = qt
		return nodeForecastAdvisor, nil
	case gamedata.QuestionDesign:
		s.QuestionType = qt
		return nodeDesignAdvisor, nil
	}
	return nodePlanner, nil
}

// planner decomposes the question into sub-queries with table picks.
func (a *Agent) planner(ctx context.Context, s *gamedata.State) (graph.NodeKey, error) {
	s.MemoryContext = a.session.Context()

	prompt := plannerPrompt(a.catalog.Index(), s.MemoryContext, s.Question)
	resp, err := a.llm.CompleteWithTemperature(ctx, prompt, tempDeterministic)
	if err != nil {
		return "", fmt.Errorf("planner: %w", err)
	}

	s.SubQueries = parseSubQueries(llm.StripReasoning(resp), s.Question)
	s.Current = 0
	a.logger.Debug("plan ready",
		zap.String("run", s.RunID),
		zap.Int("sub_queries", len(s.SubQueries)))
	return nodeLoadSchema, nil
}

// loadSchema pulls the full schema sections for the current sub-query's
// tables. Table picks the catalog doesn't know fall back to the core
// set rather than feeding the generator an empty schema.
func (a *Agent) loadSchema(ctx context.Context, s *gamedata.State) (graph.NodeKey, error) {
	sq := s.CurrentSubQuery()
	if sq == nil {
		return "", fmt.Errorf("load_schema: cursor %d out of range", s.Current)
	}

	var known []string
	for _, t := range sq.Tables {
		if a.catalog.Has(t) {
			known = append(known, t)
		}
	}
	if len(known) == 0 {
		known = gamedata.CoreTables
	}
	s.SchemaContext = a.catalog.Extract(known)
	return nodeSQLGenerator, nil
}

// sqlGenerator asks the model for one SELECT statement. Each call is
// one attempt; retries re-enter here with the previous error attached.
func (a *Agent) sqlGenerator(ctx context.Context, s *gamedata.State) (graph.NodeKey, error) {
	sq := s.CurrentSubQuery()
	if sq == nil {
		return "", fmt.Errorf("sql_generator: cursor %d out of range", s.Current)
	}

	prompt := sqlGeneratorPrompt(s.SchemaContext, sq.Question, sq.Err)
	resp, err := a.llm.CompleteWithTemperature(ctx, prompt, tempDeterministic)
	if err != nil {
		return "", fmt.Errorf("sql_generator: %w", err)
	}

	sq.SQL = llm.CleanSQL(resp)
	sq.Attempts++
	return nodeExecutor, nil
}

// executor runs the generated SQL read-only and records the outcome on
// the sub-query. Execution failure is data, not a node error: it feeds
// the retry loop and, if retries run out, the analyst's error section.
func (a *Agent) executor(ctx context.Context, s *gamedata.State) (graph.NodeKey, error) {
	sq := s.CurrentSubQuery()
	if sq == nil {
		return "", fmt.Errorf("executor: cursor %d out of range", s.Current)
	}

	if strings.TrimSpace(sq.SQL) == "" {
		sq.Err = "empty SQL generated"
		sq.Result = ""
		s.ErrorLog = append(s.ErrorLog, fmt.Sprintf("Sub%d: empty SQL", sq.ID))
		return nodeRoute, nil
	}

	res, err := a.db.Query(ctx, sq.SQL)
	if err != nil {
		sq.Err = err.Error()
		sq.Result = ""
		s.ErrorLog = append(s.ErrorLog,
			fmt.Sprintf("Sub%d (try %d): %v", sq.ID, sq.Attempts, err))
		a.logger.Debug("sub-query failed",
			zap.String("run", s.RunID),
			zap.Int("sub", sq.ID),
			zap.Int("attempt", sq.Attempts),
			zap.String("kind", string(savedb.Classify(err))))
		return nodeRoute, nil
	}

	// An empty result set is a successful answer, not a failure.
	sq.Result = res.Markdown(30)
	sq.Err = ""
	return nodeRoute, nil
}

// route decides what follows an execution: retry the same sub-query,
// advance to the next, or hand everything to the analyst.
func (a *Agent) route(ctx context.Context, s *gamedata.State) (graph.NodeKey, error) {
	sq := s.CurrentSubQuery()
	if sq == nil {
		return "", fmt.Errorf("route: cursor %d out of range", s.Current)
	}

	if sq.Err != "" && sq.Attempts <= gamedata.MaxRetries {
		return nodeLoadSchema, nil
	}

	if sq.Err != "" {
		sq.Status = gamedata.StatusFailed
	} else {
		sq.Status = gamedata.StatusDone
	}

	if s.Current+1 < len(s.SubQueries) {
		s.Current++
		return nodeLoadSchema, nil
	}
	return nodeAnalyst, nil
}

// analyst synthesizes every collected result into one answer, then
// files the successful results into the session cache by domain.
func (a *Agent) analyst(ctx context.Context, s *gamedata.State) (graph.NodeKey, error) {
	var results, failures []string
	for i := range s.SubQueries {
		sq := &s.SubQueries[i]
		header := fmt.Sprintf("### Sub-query %d: %s", sq.ID, sq.Question)
		if sq.Result != "" {
			results = append(results,
				fmt.Sprintf("%s\n```sql\n%s\n```\n%s", header, sq.SQL, sq.Result))
		} else if sq.Err != "" {
			failures = append(failures,
				fmt.Sprintf("%s\nSQL: %s\nError: %s", header, sq.SQL, sq.Err))
		}
	}

	resultsSection := "(No successful results)"
	if len(results) > 0 {
		resultsSection = strings.Join(results, "\n\n")
	}
	errorsSection := ""
	if len(failures) > 0 {
		errorsSection = "## Failed Queries\n" + strings.Join(failures, "\n\n")
	}

	prompt := analystPrompt(s.Question, a.session.Context(), resultsSection, errorsSection)
	resp, err := a.llm.CompleteWithTemperature(ctx, prompt, tempAnalysis)
	if err != nil {
		return "", fmt.Errorf("analyst: %w", err)
	}
	answer := llm.StripReasoning(resp)
	s.AnalystSummary = answer
	s.FinalAnswer = answer

	a.cacheResults(s)
	return nodeClassifier, nil
}

// cacheResults groups successful sub-query results by memory domain
// and upserts each group into the session cache.
func (a *Agent) cacheResults(s *gamedata.State) {
	var allTables []string
	for i := range s.SubQueries {
		allTables = append(allTables, s.SubQueries[i].Tables...)
	}

	for _, d := range memory.DomainsFor(allTables) {
		domainTables := make(map[string]bool)
		for _, t := range memory.Tables(d) {
			domainTables[t] = true
		}

		var parts []string
		for i := range s.SubQueries {
			sq := &s.SubQueries[i]
			if sq.Result == "" {
				continue
			}
			for _, t := range sq.Tables {
				if domainTables[t] {
					parts = append(parts, fmt.Sprintf("Q: %s\n%s", sq.Question, sq.Result))
					break
				}
			}
		}
		if len(parts) > 0 {
			a.session.Put(d, strings.Join(parts, "\n\n"))
		}
	}
}

// classifier labels the question and routes it to its terminal branch.
func (a *Agent) classifier(ctx context.Context, s *gamedata.State) (graph.NodeKey, error) {
	prompt := classifierPrompt(s.Question, s.AnalystSummary)
	resp, err := a.llm.CompleteWithTemperature(ctx, prompt, tempDeterministic)
	if err != nil {
		return "", fmt.Errorf("classifier: %w", err)
	}

	s.QuestionType = classifyLabel(llm.StripReasoning(resp))
	a.logger.Debug("classified",
		zap.String("run", s.RunID),
		zap.String("type", string(s.QuestionType)))

	switch s.QuestionType {
	case gamedata.QuestionForecast:
		return nodeForecastAdvisor, nil
	case gamedata.QuestionDesign:
		return nodeDesignAdvisor, nil
	case gamedata.QuestionStrategic:
		return nodeStrategist, nil
	default:
		// factual and analytical end with the analyst's answer.
		return graph.End, nil
	}
}
