// Package legal implements the legal theme and relationship analyzer: theme
// assignment against the fixed taxonomy, pairwise case relationships
// (citing, conflicting, similar facts), precedent chains, and outcome
// conflicts per theme.
package legal

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/turtacn/MedReg-Intelligence/internal/domain/record"
	"github.com/turtacn/MedReg-Intelligence/internal/domain/theme"
	"github.com/turtacn/MedReg-Intelligence/internal/infrastructure/monitoring/logging"
)

// ---------------------------------------------------------------------------
// Types
// ---------------------------------------------------------------------------

// RelationshipType classifies how two cases relate.
type RelationshipType string

const (
	RelationCiting       RelationshipType = "citing"
	RelationConflicting  RelationshipType = "conflicting"
	RelationSimilarFacts RelationshipType = "similar_facts"
)

// ThemeAssignment lists the cases matched to one taxonomy theme.
type ThemeAssignment struct {
	ThemeID   string   `json:"theme_id"`
	ThemeName string   `json:"theme_name"`
	CaseIDs   []string `json:"case_ids"`
}

// CaseRelationship is one scored pair of related cases.  Pair order carries
// no meaning; each unordered pair appears at most once.
type CaseRelationship struct {
	CaseID1     string           `json:"case_id_1"`
	CaseID2     string           `json:"case_id_2"`
	Type        RelationshipType `json:"relationship_type"`
	Strength    float64          `json:"strength"`
	Explanation string           `json:"explanation"`
}

// PrecedentChain is the chronological sequence of same-theme cases showing
// how a legal position evolved.
type PrecedentChain struct {
	ThemeID   string   `json:"theme_id"`
	CaseIDs   []string `json:"case_ids"`
	Narrative string   `json:"development_narrative"`
}

// ConflictPosition records one case's stance inside a Conflict.
type ConflictPosition struct {
	CaseID       string `json:"case_id"`
	Outcome      string `json:"outcome_position"`
	Jurisdiction string `json:"jurisdiction"`
}

// Conflict reports a theme whose cases split across two or more outcome
// groups.
type Conflict struct {
	ThemeID   string             `json:"theme_id"`
	Positions []ConflictPosition `json:"positions"`
}

// Analysis is the full output of one corpus analysis pass.
type Analysis struct {
	Themes          []ThemeAssignment  `json:"themes"`
	Relationships   []CaseRelationship `json:"relationships"`
	PrecedentChains []PrecedentChain   `json:"precedent_chains"`
	Conflicts       []Conflict         `json:"conflicts"`
}

// Scoring constants for pairwise relationship strength.
const (
	issueOverlapWeight   = 0.2
	citingWeight         = 0.4
	sharedBasisWeight    = 0.3
	divergentWeight      = 0.2
	temporalWeight       = 0.1
	temporalWindowDays   = 365
	retentionMinStrength = 0.3
)

// ---------------------------------------------------------------------------
// Service
// ---------------------------------------------------------------------------

// Service analyzes a legal-case corpus.
type Service interface {
	// AnalyzeCorpus assigns cases to themes, scores pairwise relationships,
	// and derives precedent chains and conflicts.  Output is deterministic
	// for a fixed input: running it twice on the same snapshot yields
	// deep-equal results.
	AnalyzeCorpus(ctx context.Context, cases []*record.Record) *Analysis
}

// Deps holds the service dependencies.  MinStrength defaults to the shipped
// retention floor when zero.
type Deps struct {
	Taxonomy    []theme.Theme
	MinStrength float64
	Logger      logging.Logger
}

type serviceImpl struct {
	taxonomy    []theme.Theme
	minStrength float64
	logger      logging.Logger
}

// NewService creates a legal corpus analyzer.  A nil taxonomy falls back to
// the shipped default.
func NewService(deps Deps) Service {
	taxonomy := deps.Taxonomy
	if taxonomy == nil {
		taxonomy = theme.DefaultTaxonomy()
	}
	minStrength := deps.MinStrength
	if minStrength == 0 {
		minStrength = retentionMinStrength
	}
	logger := deps.Logger
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &serviceImpl{
		taxonomy:    taxonomy,
		minStrength: minStrength,
		logger:      logger,
	}
}

func (s *serviceImpl) AnalyzeCorpus(_ context.Context, cases []*record.Record) *Analysis {
	legalCases := make([]*record.Record, 0, len(cases))
	for _, c := range cases {
		if c != nil && c.IsLegalCase() {
			legalCases = append(legalCases, c)
		}
	}

	buckets := s.assignThemes(legalCases)

	analysis := &Analysis{
		Themes:          make([]ThemeAssignment, 0, len(s.taxonomy)),
		Relationships:   s.scoreRelationships(buckets),
		PrecedentChains: make([]PrecedentChain, 0),
		Conflicts:       make([]Conflict, 0),
	}
	for _, th := range s.taxonomy {
		bucket := buckets[th.ID]
		ids := make([]string, 0, len(bucket))
		for _, c := range bucket {
			ids = append(ids, c.ID)
		}
		analysis.Themes = append(analysis.Themes, ThemeAssignment{
			ThemeID:   th.ID,
			ThemeName: th.Name,
			CaseIDs:   ids,
		})
		if chain, ok := buildPrecedentChain(th, bucket); ok {
			analysis.PrecedentChains = append(analysis.PrecedentChains, chain)
		}
		if conflict, ok := detectConflict(th, bucket); ok {
			analysis.Conflicts = append(analysis.Conflicts, conflict)
		}
	}

	s.logger.Debug("legal corpus analysis complete",
		logging.Int("cases", len(legalCases)),
		logging.Int("relationships", len(analysis.Relationships)),
		logging.Int("chains", len(analysis.PrecedentChains)),
		logging.Int("conflicts", len(analysis.Conflicts)),
	)
	return analysis
}

// assignThemes buckets cases per theme via case-insensitive keyword substring
// matching over title, summary, and key issues.  A case may land in several
// buckets at once.
func (s *serviceImpl) assignThemes(cases []*record.Record) map[string][]*record.Record {
	buckets := make(map[string][]*record.Record, len(s.taxonomy))
	for _, c := range cases {
		searchable := c.SearchableText()
		for _, th := range s.taxonomy {
			if th.Matches(searchable) {
				buckets[th.ID] = append(buckets[th.ID], c)
			}
		}
	}
	return buckets
}

// scoreRelationships runs the pairwise comparison within each theme bucket.
// Pre-bucketing bounds the quadratic blow-up to within-theme pairs; a pair
// sharing several themes is scored once.
func (s *serviceImpl) scoreRelationships(buckets map[string][]*record.Record) []CaseRelationship {
	seen := make(map[string]struct{})
	relationships := make([]CaseRelationship, 0)

	themeIDs := make([]string, 0, len(s.taxonomy))
	for _, th := range s.taxonomy {
		themeIDs = append(themeIDs, th.ID)
	}

	for _, themeID := range themeIDs {
		bucket := buckets[themeID]
		for i := 0; i < len(bucket); i++ {
			for j := i + 1; j < len(bucket); j++ {
				key := pairKey(bucket[i].ID, bucket[j].ID)
				if _, dup := seen[key]; dup {
					continue
				}
				seen[key] = struct{}{}
				if rel, ok := s.scorePair(bucket[i], bucket[j]); ok {
					relationships = append(relationships, rel)
				}
			}
		}
	}

	sort.SliceStable(relationships, func(i, j int) bool {
		if relationships[i].Strength != relationships[j].Strength {
			return relationships[i].Strength > relationships[j].Strength
		}
		if relationships[i].CaseID1 != relationships[j].CaseID1 {
			return relationships[i].CaseID1 < relationships[j].CaseID1
		}
		return relationships[i].CaseID2 < relationships[j].CaseID2
	})
	return relationships
}

// scorePair applies the relationship scoring rules to one unordered case
// pair.  The boolean return reports whether the pair clears the retention
// floor.
func (s *serviceImpl) scorePair(a, b *record.Record) (CaseRelationship, bool) {
	strength := 0.0
	relType := RelationSimilarFacts
	reasons := make([]string, 0, 4)

	overlap := overlappingIssues(a.EffectiveKeyIssues(), b.EffectiveKeyIssues())
	if overlap > 0 {
		strength += issueOverlapWeight * float64(overlap)
		reasons = append(reasons, fmt.Sprintf("%d overlapping key issues", overlap))
	}

	if citesEachOther(a, b) {
		strength += citingWeight
		relType = RelationCiting
		reasons = append(reasons, "one case cites the other")
	}

	if sharedLegalBasis(a, b) {
		strength += sharedBasisWeight
		reasons = append(reasons, "shared legal basis")
	}

	if overlap > 0 && outcomesDiverge(a, b) {
		strength += divergentWeight
		relType = RelationConflicting
		reasons = append(reasons, "same issues with divergent outcomes")
	}

	if decidedWithinWindow(a, b) {
		strength += temporalWeight
		reasons = append(reasons, "decided within one year of each other")
	}

	if strength > 1.0 {
		strength = 1.0
	}
	if strength <= s.minStrength {
		return CaseRelationship{}, false
	}

	id1, id2 := a.ID, b.ID
	if id2 < id1 {
		id1, id2 = id2, id1
	}
	return CaseRelationship{
		CaseID1:     id1,
		CaseID2:     id2,
		Type:        relType,
		Strength:    strength,
		Explanation: strings.Join(reasons, "; "),
	}, true
}

func pairKey(a, b string) string {
	if b < a {
		a, b = b, a
	}
	return a + "\x00" + b
}

func overlappingIssues(a, b []string) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	set := make(map[string]struct{}, len(a))
	for _, issue := range a {
		set[strings.ToLower(strings.TrimSpace(issue))] = struct{}{}
	}
	count := 0
	counted := make(map[string]struct{}, len(b))
	for _, issue := range b {
		norm := strings.ToLower(strings.TrimSpace(issue))
		if _, dup := counted[norm]; dup {
			continue
		}
		counted[norm] = struct{}{}
		if _, ok := set[norm]; ok {
			count++
		}
	}
	return count
}

func citesEachOther(a, b *record.Record) bool {
	sa := strings.ToLower(a.EffectiveSummary())
	sb := strings.ToLower(b.EffectiveSummary())
	ta := strings.ToLower(a.Title)
	tb := strings.ToLower(b.Title)
	return (tb != "" && strings.Contains(sa, tb)) || (ta != "" && strings.Contains(sb, ta))
}

func sharedLegalBasis(a, b *record.Record) bool {
	if a.LegalBasis == "" || b.LegalBasis == "" {
		return false
	}
	la := strings.ToLower(a.LegalBasis)
	lb := strings.ToLower(b.LegalBasis)
	return strings.Contains(la, lb) || strings.Contains(lb, la)
}

func outcomesDiverge(a, b *record.Record) bool {
	oa := strings.ToLower(strings.TrimSpace(a.Outcome))
	ob := strings.ToLower(strings.TrimSpace(b.Outcome))
	return oa != "" && ob != "" && oa != ob
}

func decidedWithinWindow(a, b *record.Record) bool {
	da := a.EffectiveDecisionDate()
	db := b.EffectiveDecisionDate()
	diff := da.Sub(db)
	if diff < 0 {
		diff = -diff
	}
	return diff <= temporalWindowDays*24*time.Hour
}

// buildPrecedentChain orders a theme's cases chronologically and summarises
// whether the jurisprudence developed or stayed consistent between the
// chain's endpoints.
func buildPrecedentChain(th theme.Theme, bucket []*record.Record) (PrecedentChain, bool) {
	if len(bucket) < 2 {
		return PrecedentChain{}, false
	}
	ordered := make([]*record.Record, len(bucket))
	copy(ordered, bucket)
	sort.SliceStable(ordered, func(i, j int) bool {
		di, dj := ordered[i].EffectiveDecisionDate(), ordered[j].EffectiveDecisionDate()
		if !di.Equal(dj) {
			return di.Before(dj)
		}
		return ordered[i].ID < ordered[j].ID
	})

	ids := make([]string, 0, len(ordered))
	for _, c := range ordered {
		ids = append(ids, c.ID)
	}

	first, last := ordered[0], ordered[len(ordered)-1]
	narrative := fmt.Sprintf("Jurisprudence on %s has remained consistent across %d cases.",
		th.Name, len(ordered))
	if outcomesDiverge(first, last) {
		narrative = fmt.Sprintf(
			"The legal position on %s developed from %q (%s) to %q (%s) across %d cases.",
			th.Name, first.Outcome, first.EffectiveDecisionDate().Format("2006-01-02"),
			last.Outcome, last.EffectiveDecisionDate().Format("2006-01-02"), len(ordered))
	}

	return PrecedentChain{
		ThemeID:   th.ID,
		CaseIDs:   ids,
		Narrative: narrative,
	}, true
}

// detectConflict groups a theme's cases by declared outcome and reports a
// Conflict when they split across at least two outcome groups.  Cases
// without a declared outcome carry no position and are skipped.
func detectConflict(th theme.Theme, bucket []*record.Record) (Conflict, bool) {
	positions := make([]ConflictPosition, 0, len(bucket))
	outcomes := make(map[string]struct{})
	for _, c := range bucket {
		outcome := strings.ToLower(strings.TrimSpace(c.Outcome))
		if outcome == "" {
			continue
		}
		outcomes[outcome] = struct{}{}
		positions = append(positions, ConflictPosition{
			CaseID:       c.ID,
			Outcome:      c.Outcome,
			Jurisdiction: c.Jurisdiction,
		})
	}
	if len(outcomes) < 2 || len(positions) < 2 {
		return Conflict{}, false
	}
	sort.SliceStable(positions, func(i, j int) bool {
		return positions[i].CaseID < positions[j].CaseID
	})
	return Conflict{ThemeID: th.ID, Positions: positions}, true
}
