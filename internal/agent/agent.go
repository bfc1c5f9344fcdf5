// Package agent wires the question-answering pipeline: a pre-router,
// an SQL decompose/generate/execute/retry loop, analysis and
// classification, and the strategic, design, and forecast branches.
package agent

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"gearsight/internal/gamedata"
	"gearsight/internal/graph"
	"gearsight/internal/llm"
	"gearsight/internal/memory"
	"gearsight/internal/savedb"
	"gearsight/internal/schema"
	"gearsight/internal/timeline"
)

// Node keys.
const (
	nodePreRouter       graph.NodeKey = "pre_router"
	nodePlanner         graph.NodeKey = "planner"
	nodeLoadSchema      graph.NodeKey = "load_schema"
	nodeSQLGenerator    graph.NodeKey = "sql_generator"
	nodeExecutor        graph.NodeKey = "executor"
	nodeRoute           graph.NodeKey = "route"
	nodeAnalyst         graph.NodeKey = "analyst"
	nodeClassifier      graph.NodeKey = "classifier"
	nodeStrategist      graph.NodeKey = "strategist"
	nodeEvaluate        graph.NodeKey = "evaluate"
	nodeAggregate       graph.NodeKey = "aggregate"
	nodeDesignAdvisor   graph.NodeKey = "design_advisor"
	nodeForecastAdvisor graph.NodeKey = "forecast_advisor"
)

// Sampling temperatures per call site. SQL wants determinism; strategy
// drafting wants variety.
const (
	tempDeterministic float32 = 0.0
	tempAnalysis      float32 = 0.3
	tempCreative      float32 = 0.5
)

// Options configures an Agent. DB, Catalog, and LLM are required;
// Timeline may be nil, which degrades the forecast branch to an
// unavailability notice instead of failing the run.
type Options struct {
	DB       *savedb.DB
	Catalog  *schema.Catalog
	LLM      llm.Client
	Timeline *timeline.Timeline
	Session  *memory.Session
	Logger   *zap.Logger
	MaxSteps int
}

// Agent answers questions about one save file over one conversation.
type Agent struct {
	db       *savedb.DB
	catalog  *schema.Catalog
	llm      llm.Client
	timeline *timeline.Timeline
	session  *memory.Session
	logger   *zap.Logger
	graph    *graph.Graph
}

// New builds an agent and compiles its pipeline graph.
func New(opts Options) (*Agent, error) {
	if opts.DB == nil {
		return nil, fmt.Errorf("agent: DB is required")
	}
	if opts.Catalog == nil {
		return nil, fmt.Errorf("agent: Catalog is required")
	}
	if opts.LLM == nil {
		return nil, fmt.Errorf("agent: LLM is required")
	}
	if opts.Session == nil {
		opts.Session = memory.New()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	a := &Agent{
		db:       opts.DB,
		catalog:  opts.Catalog,
		llm:      opts.LLM,
		timeline: opts.Timeline,
		session:  opts.Session,
		logger:   opts.Logger.Named("agent"),
	}

	b := graph.NewBuilder().
		SetEntry(nodePreRouter).
		WithLogger(opts.Logger)
	if opts.MaxSteps > 0 {
		b.WithMaxSteps(opts.MaxSteps)
	}

	b.AddNode(nodePreRouter, a.preRouter).
		AddNode(nodePlanner, a.planner).
		AddNode(nodeLoadSchema, a.loadSchema).
		AddNode(nodeSQLGenerator, a.sqlGenerator).
		AddNode(nodeExecutor, a.executor).
		AddNode(nodeRoute, a.route).
		AddNode(nodeAnalyst, a.analyst).
		AddNode(nodeClassifier, a.classifier).
		AddNode(nodeStrategist, a.strategist).
		AddNode(nodeEvaluate, a.evaluate).
		AddNode(nodeAggregate, a.aggregate).
		AddNode(nodeDesignAdvisor, a.designAdvisor).
		AddNode(nodeForecastAdvisor, a.forecastAdvisor)

	b.AddEdge(nodePreRouter, nodePlanner, nodeDesignAdvisor, nodeForecastAdvisor).
		AddEdge(nodePlanner, nodeLoadSchema).
		AddEdge(nodeLoadSchema, nodeSQLGenerator).
		AddEdge(nodeSQLGenerator, nodeExecutor).
		AddEdge(nodeExecutor, nodeRoute).
		AddEdge(nodeRoute, nodeLoadSchema, nodeAnalyst).
		AddEdge(nodeAnalyst, nodeClassifier).
		AddEdge(nodeClassifier, graph.End, nodeStrategist, nodeDesignAdvisor, nodeForecastAdvisor).
		AddEdge(nodeStrategist, nodeEvaluate).
		AddEdge(nodeEvaluate, nodeAggregate).
		AddEdge(nodeAggregate, graph.End).
		AddEdge(nodeDesignAdvisor, graph.End).
		AddEdge(nodeForecastAdvisor, graph.End)

	g, err := b.Compile()
	if err != nil {
		return nil, err
	}
	a.graph = g
	return a, nil
}

// Session exposes the conversation cache, mainly for the CLI to show
// what is cached.
func (a *Agent) Session() *memory.Session { return a.session }

// Ask runs the full pipeline for one question and returns the final
// answer.
func (a *Agent) Ask(ctx context.Context, question string) (*gamedata.State, error) {
	s := &gamedata.State{
		RunID:    uuid.NewString(),
		Question: question,
	}
	a.logger.Info("run started",
		zap.String("run", s.RunID),
		zap.String("question", question))

	if err := a.graph.Run(ctx, s); err != nil {
		return s, err
	}

	a.logger.Info("run finished",
		zap.String("run", s.RunID),
		zap.String("type", string(s.QuestionType)),
		zap.Int("sub_queries", len(s.SubQueries)),
		zap.Int("errors", len(s.ErrorLog)))
	return s, nil
}

// ResetSession drops all cached conversation context.
func (a *Agent) ResetSession() {
	a.session.Reset()
}
