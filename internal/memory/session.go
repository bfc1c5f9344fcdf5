// Package memory implements the turn-scoped session cache. Facts gathered
// while answering one question are reused for related questions in the same
// conversation, with a per-domain TTL measured in game turns (one turn per
// month) rather than wall-clock time.
//
// The cache is an explicitly constructed object owned by whoever starts the
// pipeline; there is no package-level instance.
package memory

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Domain is a semantic bucket of cached facts with its own TTL.
type Domain string

const (
	DomainGameState     Domain = "game_state"
	DomainSalesMarket   Domain = "sales_market"
	DomainVehicleDesign Domain = "vehicle_design"
	DomainFactory       Domain = "factory"
	DomainContracts     Domain = "contracts"
	DomainForecast      Domain = "forecast"
)

// defaultTTL applies to writes into an unknown domain.
const defaultTTL = 5

// maxPreviewRunes caps how much of one entry is injected into a prompt.
const maxPreviewRunes = 500

// domainTTL maps each domain to its lifetime in game turns.
var domainTTL = map[Domain]int{
	DomainGameState:     3,
	DomainSalesMarket:   5,
	DomainVehicleDesign: 12,
	DomainFactory:       6,
	DomainContracts:     6,
	DomainForecast:      60,
}

// domainTables maps each domain to the save tables that feed it. The
// forecast domain is fed by the event timeline, not by tables.
var domainTables = map[Domain][]string{
	DomainGameState:     {"GameInfo", "PlayerInfo", "CompanyList"},
	DomainSalesMarket:   {"CarDistro", "CitiesInfo", "MonthlyFiscalsBreakdown", "YearlyAutoBreakdown"},
	DomainVehicleDesign: {"CarInfo", "EngineInfo", "ChassisInfo", "GearboxInfo", "Researching"},
	DomainFactory:       {"FactoryInfo", "CarManufactor"},
	DomainContracts:     {"ContractRequests", "ContractsGranted", "ContractCustomers", "ContractBids"},
}

// tableDomain is the reverse index, built once.
var tableDomain = func() map[string]Domain {
	m := make(map[string]Domain)
	for d, tables := range domainTables {
		for _, t := range tables {
			m[t] = d
		}
	}
	return m
}()

// TTL returns a domain's lifetime in game turns.
func TTL(d Domain) int {
	if ttl, ok := domainTTL[d]; ok {
		return ttl
	}
	return defaultTTL
}

// DomainsFor classifies a table list into the domains it touches.
func DomainsFor(tables []string) []Domain {
	seen := make(map[Domain]bool)
	var out []Domain
	for _, t := range tables {
		if d, ok := tableDomain[t]; ok && !seen[d] {
			seen[d] = true
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Tables returns the save tables feeding a domain.
func Tables(d Domain) []string {
	return append([]string(nil), domainTables[d]...)
}

type entry struct {
	data         string
	recordedTurn int
	ttl          int
}

// valid reports whether the entry is visible at the given turn. Turn zero on
// either side means the game clock could not be probed; expiry judgment is
// skipped in that case rather than guessed.
func (e *entry) valid(turn int) bool {
	if turn == 0 || e.recordedTurn == 0 {
		return true
	}
	return turn-e.recordedTurn < e.ttl
}

// Session is the per-conversation cache. Readers get a point-in-time
// snapshot filtered by TTL validity; writers upsert by domain. Expired
// entries become invisible immediately and are evicted lazily.
type Session struct {
	mu      sync.Mutex
	entries map[Domain]*entry
	turn    int
}

// New returns an empty session cache.
func New() *Session {
	return &Session{entries: make(map[Domain]*entry)}
}

// SetTurn records the current game turn (year*12 + month) and evicts
// entries that expired under it.
func (s *Session) SetTurn(year, month int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if year == 0 {
		s.turn = 0
		return
	}
	s.turn = year*12 + month
	for d, e := range s.entries {
		if !e.valid(s.turn) {
			delete(s.entries, d)
		}
	}
}

// Turn returns the last recorded game turn.
func (s *Session) Turn() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.turn
}

// Get returns the cached payload for a domain if it is still valid.
func (s *Session) Get(d Domain) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[d]
	if !ok {
		return "", false
	}
	if !e.valid(s.turn) {
		delete(s.entries, d)
		return "", false
	}
	return e.data, true
}

// Put upserts a domain's payload, stamped with the current turn.
func (s *Session) Put(d Domain, data string) {
	if data == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[d] = &entry{
		data:         data,
		recordedTurn: s.turn,
		ttl:          TTL(d),
	}
}

// Relevant returns the valid cached payloads for the domains a table list
// touches.
func (s *Session) Relevant(tables []string) map[Domain]string {
	out := make(map[Domain]string)
	for _, d := range DomainsFor(tables) {
		if data, ok := s.Get(d); ok {
			out[d] = data
		}
	}
	return out
}

// Context renders every valid entry as a prompt block, each prefixed with
// its domain and age in turns. Long payloads are truncated.
func (s *Session) Context() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	domains := make([]Domain, 0, len(s.entries))
	for d := range s.entries {
		domains = append(domains, d)
	}
	sort.Slice(domains, func(i, j int) bool { return domains[i] < domains[j] })

	var parts []string
	for _, d := range domains {
		e := s.entries[d]
		if !e.valid(s.turn) {
			continue
		}
		age := 0
		if s.turn > 0 && e.recordedTurn > 0 {
			age = s.turn - e.recordedTurn
		}
		data := e.data
		if runes := []rune(data); len(runes) > maxPreviewRunes {
			data = string(runes[:maxPreviewRunes]) + "\n...(truncated)"
		}
		parts = append(parts, fmt.Sprintf("[Cached: %s (%d turns ago)]\n%s", d, age, data))
	}
	return strings.Join(parts, "\n\n")
}

// Reset drops every entry. Called when a new conversation starts.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[Domain]*entry)
	s.turn = 0
}
