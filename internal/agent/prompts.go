package agent

import (
	"fmt"
	"strings"

	"gearsight/internal/gamedata"
)

// Schema hints shared by the planner and SQL generator. The save file
// has several key-value tables and naming quirks ("Varible") that
// models get wrong without being told.
const schemaHints = `- PlayerInfo is a KEY-VALUE table: Player_Varible / Player_Data. Rows: Company_Name, Player_Name, Company_ID.
  -> Player company ID: SELECT Player_Data FROM PlayerInfo WHERE Player_Varible = 'Company_ID'
- GameInfo is a KEY-VALUE table: GameInfo_Varible / GameInfo_Data. Rows include: Current_Year, Current_Turn (= current month 1-12, since 1 turn = 1 month), Starting_Year.
- CompanyList: ID = company ID, COMPANY_NAME, FUNDS_ONHAND = cash.
- CarInfo: Car_ID, Company_ID, Name, Trim, CarType, sellprice, unitcost, sold_all_time, Rating_Overall.
- CarDistro: per-city sales. Company_ID, City_ID, Car_ID, SellPrice, Sold_This_Month, Possible_Sales.
- NOTE: 1 turn = 1 month. "Current_Turn" means current month (1-12) within Current_Year.
- FactoryInfo: Factory_ID, Company_ID, City_ID, CarsInProduction, MaxCarsInProduction.
- CarManufactor: production lines per factory. Factory_ID, Lines, Car_ID, Current_Employees, Unit_Cost.
- CitiesInfo: City_ID, City_NAME, City_COUNTRY, City_POPULATION.
- ContractRequests: available contract opportunities. Active, ProjectName, CustomerName, Units, UnitsPerMonth, UnitCosts, VehicleType. Filter: Active = 1.
- ContractsGranted: awarded contracts in progress. CompID, ProjectName, UnitPrice, UnitsMovedMonth, UnitsMovedTotal, UnitsNeeded, Active, Penalty.
  -> Player contracts: WHERE CompID = (SELECT Player_Data FROM PlayerInfo WHERE Player_Varible = 'Company_ID')
- ContractCustomers: contract customer profiles with spec requirements (HP, weight, fuel, engine size limits). IsMilitary flag.
- CarInfo has license/rebadge columns: Creator_ID (original designer), RoyalityComp/RoyalityPayment (royalty), RebadgeBuyFromCompID/RebadgeBuyPrice (rebadge purchase), OutSourced_Units/OutSourced_Income (outsourcing).
  -> Licensed cars: WHERE Creator_ID != Company_ID OR RoyalityComp != -1
  -> Rebadged cars: WHERE RebadgeBuyFromCompID != -1
- CompanyList.SKILL_RND: player's design skill level. Components require SkillReq <= SKILL_RND to use.
- *Components tables (GearboxComponents, GearsComponents, LayoutComponents, CylinderComponents, InductionComponents, SuspensionComponents, ValveComponents, FuelComponents, DrivetrainComponents): component library with SkillReq, playerUnlocked, Year (unlock year), Death (obsolete year).
  -> Available components: WHERE SkillReq <= (player SKILL_RND) AND Year <= (current year) AND (Death IS NULL OR Death > current year)
- Researching: active research progress. Type (1-3), Percent, CompanyID.`

const sqlRules = `- Output ONLY the raw SQL. No markdown fences, no explanation, no comments.
- Use LIMIT 20 unless the question needs all rows.
- PlayerInfo is KEY-VALUE: SELECT Player_Data FROM PlayerInfo WHERE Player_Varible = 'Company_ID'
- GameInfo is KEY-VALUE: SELECT GameInfo_Data FROM GameInfo WHERE GameInfo_Varible = 'Current_Year'
- Current_Turn in GameInfo = current month (1-12). 1 turn = 1 month.
- To filter by player company, use subquery: Company_ID = (SELECT Player_Data FROM PlayerInfo WHERE Player_Varible = 'Company_ID')
- ContractRequests: contracts available for bidding. Filter Active = 1.
- ContractsGranted: awarded contracts. Filter by player company via CompID.
- License/rebadge in CarInfo: RoyalityComp != -1 means licensed, RebadgeBuyFromCompID != -1 means rebadged.
- Component availability: *Components tables have SkillReq and Year (unlock year). Filter: SkillReq <= player's SKILL_RND from CompanyList, Year <= current year, AND (Death IS NULL OR Death > current year).`

func orPlaceholder(s, placeholder string) string {
	if strings.TrimSpace(s) == "" {
		return placeholder
	}
	return s
}

func plannerPrompt(catalog, memoryContext, question string) string {
	return fmt.Sprintf(`You are a database query planner for the game GearCity.
Your job is to break down the user's question into 1-%d sub-queries that can each be answered with a single SQL query.

## Available Tables
%s

## KEY SCHEMA HINTS
%s

## Previously Retrieved Information (from this session)
%s

Use this cached data to avoid redundant queries. If the cached data already answers
a sub-question, you can skip that sub-query or reduce the number of sub-queries needed.

## User Question
%s

## Output Format (STRICTLY follow this format, one sub-query per line)
SUB1: <sub-question in English>
TABLES1: <comma-separated table names>
SUB2: <sub-question in English>
TABLES2: <comma-separated table names>
...

Output ONLY the sub-queries. No explanations, no markdown, no extra text.
If the question is simple enough for one query, output just SUB1/TABLES1.`,
		gamedata.MaxSubQueries, catalog, schemaHints,
		orPlaceholder(memoryContext, "(No cached data)"), question)
}

func sqlGeneratorPrompt(schema, question, previousError string) string {
	errorContext := ""
	if previousError != "" {
		errorContext = fmt.Sprintf("\n## Previous Error (fix this)\n%s\n", previousError)
	}
	return fmt.Sprintf(`You are a SQLite SQL expert for the game GearCity.
Write a single SELECT query to answer the question below.

## Database Schema
%s

## KEY RULES
%s

## Question
%s
%s## SQL`, schema, sqlRules, question, errorContext)
}

func analystPrompt(question, memoryContext, resultsSection, errorsSection string) string {
	return fmt.Sprintf(`You are a GearCity business analyst AI.
The user asked: "%s"

## Previously Known Information
%s

Below are the results from database queries. Analyze them and provide a clear, comprehensive answer.

%s

%s

Provide your analysis in a clear format. Use bullet points or tables where helpful.
Keep the response concise but thorough.`,
		question, orPlaceholder(memoryContext, "(No cached data)"), resultsSection, errorsSection)
}

func classifierPrompt(question, analystSummary string) string {
	return fmt.Sprintf(`You are a question classifier for a GearCity business analysis system.
Classify the user's question into exactly one of five categories:

- **factual**: Simple data lookup (e.g., "How much cash do I have?", "What year is it?")
- **analytical**: Data comparison or trend analysis, but no strategic recommendation needed (e.g., "Compare margins by car model", "Show sales trends")
- **strategic**: Requires strategic recommendations, action plans, or "what should I do?" decisions (e.g., "How can I improve profitability?", "Should I expand to new cities?")
- **design**: Questions about vehicle/component design parameters, "what if" simulations, modification/improvement costs, staleness/aging analysis, or design refresh timing (e.g., "What if I increase bore by 5mm?", "How much to upgrade my car?", "How old are my components?", "Is my engine torque compatible with the gearbox?")
- **forecast**: Questions about future wars, economic crises, global events, or risk to player assets from upcoming conflicts (e.g., "Will there be a war soon?", "Is my factory safe?", "When is the next recession?", "Which cities will be affected by war?", "What global events are coming?")

## User Question
%s

## Analyst Summary
%s

Output ONLY one word: factual, analytical, strategic, design, or forecast
No explanations, no extra text.`, question, analystSummary)
}

func strategistPrompt(question, analystSummary, eventForecast, catalog string) string {
	return fmt.Sprintf(`You are a strategic advisor for GearCity, a car company management simulation game.
Based on the analyst's data summary, generate 2-%d distinct strategic options the player could pursue.
IMPORTANT: Consider upcoming global events (wars, recessions) when formulating strategies.

## User Question
%s

## Data Analysis Summary
%s

## Upcoming Global Events (next 15 years)
%s

## Available Tables for Further Analysis
%s

## Output Format (STRICTLY follow this - one strategy per block)
STRATEGY1_NAME: <short name>
STRATEGY1_DESC: <1-2 sentence description>
STRATEGY1_QUERIES: <comma-separated data questions to validate this strategy>
STRATEGY1_TABLES: <comma-separated table names needed>

STRATEGY2_NAME: <short name>
STRATEGY2_DESC: <1-2 sentence description>
STRATEGY2_QUERIES: <comma-separated data questions to validate this strategy>
STRATEGY2_TABLES: <comma-separated table names needed>

(up to STRATEGY%d)

Output ONLY the strategies. No explanations, no markdown, no extra text.`,
		gamedata.MaxStrategyCandidates, question, analystSummary,
		orPlaceholder(eventForecast, "(no event data)"), catalog,
		gamedata.MaxStrategyCandidates)
}

func evaluatorSQLPrompt(schema, question string) string {
	return fmt.Sprintf(`You are a SQLite SQL expert for the game GearCity.
Write a single SELECT query to answer the question below.

## Database Schema
%s

## KEY RULES
%s

## Question
%s

## SQL`, schema, sqlRules, question)
}

func evaluatorPrompt(question string, c gamedata.StrategyCandidate, analystSummary, additionalData string) string {
	return fmt.Sprintf(`You are evaluating a specific strategy for a GearCity player.

## User Question
%s

## Strategy: %s
%s

## Data Analysis (from earlier queries)
%s

## Additional Data (from strategy-specific queries)
%s

## Evaluation Criteria
Evaluate this strategy on these dimensions:
1. PROS: Key advantages
2. CONS: Key risks/downsides
3. FEASIBILITY: How easy to implement (HIGH/MEDIUM/LOW)
4. IMPACT: Expected profit/growth impact (HIGH/MEDIUM/LOW)
5. SCORE: Overall score 1-10

## Output Format (STRICTLY follow this)
PROS: <bullet points separated by semicolons>
CONS: <bullet points separated by semicolons>
FEASIBILITY: <HIGH/MEDIUM/LOW with brief reason>
IMPACT: <HIGH/MEDIUM/LOW with brief reason>
SCORE: <number 1-10>

Output ONLY the evaluation. No extra text.`,
		question, c.Name, c.Description, analystSummary,
		orPlaceholder(additionalData, "(no additional data)"))
}

func aggregatorPrompt(question, analystSummary, evaluationsSection string) string {
	return fmt.Sprintf(`You are a senior strategic advisor for GearCity.
Compare the evaluated strategies below and provide a final recommendation.

## User Question
%s

## Data Analysis Summary
%s

## Strategy Evaluations
%s

## Instructions
1. Compare all strategies side-by-side
2. Rank them by overall value (considering score, feasibility, and impact)
3. Provide a clear final recommendation with reasoning
4. Suggest a prioritized action plan

Be specific and actionable. Reference the data to support your recommendations.`,
		question, analystSummary, evaluationsSection)
}

func designAdvisorPrompt(question, analystSummary, calcResults, designContext string, skillRND, currentYear int, techContext string) string {
	return fmt.Sprintf(`You are a GearCity vehicle design advisor with deep knowledge of game mechanics.
Use the calculated data below AND your knowledge of design formulas to give precise, actionable advice.

## Key Design Formulas (reference)
- Displacement: CC = 0.7854 * (bore_cm)^2 * stroke_cm * cylinders
- HP = (torque * rpm) / 5252
- Bore up -> displacement up -> torque up -> HP up (fuel economy down)
- Stroke up -> displacement up + torque up, but RPM down (net HP may vary)

## Modification Cost Rules
- New Generation (no component change): 15%% of original design cost
- + Gearbox change: +5%% (total 20%%)
- + Engine change: +5%% + auto gearbox 5%% (total 25%%)
- + Engine & Gearbox: +10%% (total 25%%)
- Chassis change: 100%% (full redesign cost)

## Staleness Thresholds
- Vehicle: safe under ~5 years, penalty starts at age+4 > 9
- Components (engine/chassis/gearbox): safe under 12 years, steep after 15
- Combined staleness > 1.0 -> buyer rating divided by staleness^1.2

## Torque Compatibility
- Engine torque > gearbox max torque -> quality/reliability penalty
- Always check headroom when changing engines

## Rating Interpretation
- Static = at design time, Current = now (with tech progression)
- Negative delta = design is falling behind current technology

## Technology Constraints
Player's design skill (SKILL_RND): %d
Current year: %d

### Available Components (SkillReq <= %d AND Year <= %d)
%s

CRITICAL: Only recommend components from the available list above.
Do NOT suggest components the player cannot build yet.
If an upgrade would require unavailable components, explicitly state it's locked.

## User Question
%s

## Analyst Summary (from SQL data)
%s

## Calculation Results
%s

## Additional Design Data (from SQL)
%s

Instructions:
1. Reference the specific numbers from calculations (don't re-calculate)
2. Give concrete recommendations with expected numeric outcomes
3. Prioritize by cost-effectiveness (biggest improvement per dollar)
4. Warn about any compatibility issues or urgent staleness
5. NEVER recommend components not in the Available Components list - they are locked by tech level.`,
		skillRND, currentYear, skillRND, currentYear, techContext,
		question, analystSummary, calcResults, designContext)
}

func forecastAdvisorPrompt(question, analystSummary, forecastSummary, assetRiskReport string) string {
	return fmt.Sprintf(`You are a GearCity strategic forecaster with access to the game's complete historical event timeline.
GearCity simulates real-world history: wars, recessions, oil crises all happen at historically accurate times.

## Key Game Mechanics for Wars
- **TOTAL_WAR** (gov=-2): No sales possible, factories may be damaged/destroyed
- **WAR** (gov=-1): No sales possible in that city
- **LIMITED** (gov=0): Sales reduced by 50%%
- **STABLE** (gov=1): Normal operations

## Key Game Mechanics for Economy
- **buyrate**: Global demand multiplier. 1.0 = normal, < 0.90 = recession, < 0.80 = depression
- **gas**: Fuel price. > 2.0 = expensive, affects fuel-efficient car demand
- **interest**: Loan interest multiplier. > 1.06 = expensive borrowing
- **stockrate**: Stock market multiplier. < 0.90 = market crash

## User Question
%s

## Analyst Summary (from SQL data)
%s

## Event Forecast
%s

## Player Asset Risk Analysis
%s

## Instructions
1. Directly answer the user's question about future events, wars, or economic outlook
2. Be SPECIFIC about dates: exact years and months when events start/end
3. If the player has assets in at-risk cities, prioritize warning about those
4. Recommend concrete actions: when to sell factories, when to build in safe cities, when to stockpile cash
5. For economic events, suggest timing for expansion vs. conservation
6. Reference the specific data (don't generalize - use exact numbers and dates)`,
		question, analystSummary, forecastSummary, assetRiskReport)
}
