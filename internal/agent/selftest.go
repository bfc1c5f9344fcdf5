package agent

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"gearsight/internal/gamedata"
)

// BenchmarkQuestion is one entry of the built-in exercise set.
type BenchmarkQuestion struct {
	Label    string
	Question string
}

// BenchmarkQuestions exercises every pipeline branch: factual lookups,
// analytical comparisons, strategy, design math, and event forecasts.
var BenchmarkQuestions = []BenchmarkQuestion{
	{"Q1. Game date and cash", "What is the current game year and month, and how much cash does my company have?"},
	{"Q2. Best sellers", "What are my company's top 5 best-selling car models of all time?"},
	{"Q3. Factory overview", "List my factories with their locations and number of production lines."},
	{"Q4. Margin comparison", "Compare monthly sales volume and margin rate across my car models."},
	{"Q5. Profitability strategy", "How can I improve profitability? Analyze pricing, production, and sales strategy together."},
	{"Q6. Expansion strategy", "Should I expand into new cities, or grow market share in existing markets?"},
	{"Q7. Bore simulation", "If I increase my engine's bore by 5mm, how much horsepower do I gain?"},
	{"Q8. Modification cost", "How much would a new generation of my car cost? What if I also change the engine?"},
	{"Q9. Staleness analysis", "How old are my car and its components? When should I refresh the design?"},
	{"Q10. Upgrade priorities", "Which component changes would improve my car's performance most cost-effectively?"},
	{"Q11. Torque compatibility", "Do any of my cars have engine torque exceeding the gearbox's maximum torque?"},
	{"Q12. War risk", "Will any cities be at war soon? Are my factories in dangerous locations?"},
	{"Q13. Economic outlook", "When is the next recession or gas price spike coming?"},
	{"Q14. Safe cities", "Which cities are permanently safe from war?"},
	{"Q15. Expansion with events", "Recommend a city for a new factory, considering war risk and the economic outlook."},
}

// SelfTestResult is the outcome of one benchmark question.
type SelfTestResult struct {
	Label        string
	QuestionType gamedata.QuestionType
	Answer       string
	Err          error
	Took         time.Duration
}

// SelfTest runs the benchmark set sequentially through the full
// pipeline. Failures are recorded per question; the run continues.
func (a *Agent) SelfTest(ctx context.Context) []SelfTestResult {
	results := make([]SelfTestResult, 0, len(BenchmarkQuestions))
	for _, bq := range BenchmarkQuestions {
		if err := ctx.Err(); err != nil {
			results = append(results, SelfTestResult{Label: bq.Label, Err: err})
			break
		}

		start := time.Now()
		state, err := a.Ask(ctx, bq.Question)
		r := SelfTestResult{
			Label: bq.Label,
			Took:  time.Since(start),
			Err:   err,
		}
		if state != nil {
			r.QuestionType = state.QuestionType
			r.Answer = state.FinalAnswer
		}
		if err != nil {
			a.logger.Warn("self-test question failed",
				zap.String("label", bq.Label), zap.Error(err))
		}
		results = append(results, r)
	}
	return results
}

// Summary renders a compact pass/fail table of self-test results.
func SelfTestSummary(results []SelfTestResult) string {
	out := ""
	passed := 0
	for _, r := range results {
		status := "ok"
		if r.Err != nil {
			status = "FAIL: " + r.Err.Error()
		} else {
			passed++
		}
		out += fmt.Sprintf("%-28s %-10s %6.1fs  %s\n",
			r.Label, r.QuestionType, r.Took.Seconds(), status)
	}
	out += fmt.Sprintf("\n%d/%d passed\n", passed, len(results))
	return out
}
