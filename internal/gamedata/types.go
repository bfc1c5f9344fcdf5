// Package gamedata holds the pipeline state record and the shared constants
// describing the GearCity save database: question labels, sub-query lifecycle,
// strategy types, and the default table sets.
//
// Every graph node reads only the fields it declares as input and writes only
// the fields it owns; the State struct is the single record threaded through
// the whole pipeline.
package gamedata

// QuestionType labels a user question after classification.
type QuestionType string

const (
	QuestionUnknown    QuestionType = ""
	QuestionFactual    QuestionType = "factual"
	QuestionAnalytical QuestionType = "analytical"
	QuestionStrategic  QuestionType = "strategic"
	QuestionDesign     QuestionType = "design"
	QuestionForecast   QuestionType = "forecast"
)

// SubQueryStatus is the lifecycle state of one decomposed sub-query.
type SubQueryStatus string

const (
	StatusPending SubQueryStatus = "pending"
	StatusDone    SubQueryStatus = "done"
	StatusFailed  SubQueryStatus = "failed"
)

const (
	// MaxRetries caps SQL regeneration after a failed execution. A sub-query
	// is generated at most MaxRetries+1 times before it is marked failed.
	MaxRetries = 2

	// MaxSubQueries caps how many sub-queries the planner may emit.
	MaxSubQueries = 5

	// MaxStrategyCandidates caps the strategist's output.
	MaxStrategyCandidates = 4
)

// CoreTables is the default table set used when the planner cannot select
// better candidates. These cover the player company, the game clock, cars,
// factories, cities and the fiscal breakdowns.
var CoreTables = []string{
	"GameInfo", "PlayerInfo", "CompanyList", "CarInfo", "CarDistro",
	"FactoryInfo", "CarManufactor", "CitiesInfo",
	"MonthlyFiscalsBreakdown", "YearlyAutoBreakdown",
	"ContractsGranted",
}

// DesignTables is the table set the design advisor draws on.
var DesignTables = []string{
	"CarInfo", "EngineInfo", "ChassisInfo", "GearboxInfo",
	"GameInfo", "PlayerInfo", "Researching",
}

// SubQuery is one independently executable unit of the decomposed question.
// Created by the planner, consumed by the SQL generator and executor,
// terminal once Status becomes done or failed.
type SubQuery struct {
	ID       int
	Question string
	Tables   []string
	SQL      string
	Result   string
	Err      string
	Attempts int // number of SQL generations performed (1..MaxRetries+1)
	Status   SubQueryStatus
}

// StrategyCandidate is one option generated by the strategist.
type StrategyCandidate struct {
	ID          int
	Name        string
	Description string
	DataQueries []string
	Tables      []string
}

// StrategyEvaluation is the structured assessment of one candidate.
// Unverified marks a candidate whose evaluation failed; it is still
// reported, never dropped.
type StrategyEvaluation struct {
	StrategyID     int
	StrategyName   string
	Pros           string
	Cons           string
	Feasibility    string
	Impact         string
	SupportingData string
	Score          float64
	Unverified     bool
}

// State is the mutable record flowing through the graph.
type State struct {
	RunID    string
	Question string

	// Game clock, probed once per run by the pre-router.
	Year  int
	Month int

	// SQL pipeline fields.
	SubQueries    []SubQuery
	Current       int // index of the sub-query being worked on
	SchemaContext string
	MemoryContext string
	ErrorLog      []string

	// Classification and analysis.
	QuestionType   QuestionType
	AnalystSummary string

	// Strategic branch.
	Candidates  []StrategyCandidate
	Evaluations []StrategyEvaluation

	// Specialized advisor branches.
	DesignCalc      string
	DesignContext   string
	ForecastContext string

	FinalAnswer string
}

// CurrentSubQuery returns the sub-query under the cursor, or nil when the
// cursor is out of range.
func (s *State) CurrentSubQuery() *SubQuery {
	if s.Current < 0 || s.Current >= len(s.SubQueries) {
		return nil
	}
	return &s.SubQueries[s.Current]
}

// Turn converts the probed year/month into the game's discrete turn count
// (one turn per month). Zero means the probe failed.
func (s *State) Turn() int {
	if s.Year == 0 {
		return 0
	}
	return s.Year*12 + s.Month
}
