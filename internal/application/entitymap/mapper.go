// Package entitymap implements the device entity mapper: it partitions a
// corpus snapshot into equivalence clusters believed to describe the same
// real-world device across jurisdictions.
package entitymap

import (
	"context"
	"sort"
	"time"

	"github.com/turtacn/MedReg-Intelligence/internal/domain/record"
	"github.com/turtacn/MedReg-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/MedReg-Intelligence/internal/intelligence/textkit"
)

// ---------------------------------------------------------------------------
// Types
// ---------------------------------------------------------------------------

// MappingBasis names the signal a cluster was built on.
type MappingBasis string

const (
	BasisManufacturer  MappingBasis = "manufacturer"
	BasisDeviceName    MappingBasis = "device_name"
	BasisRegulation    MappingBasis = "regulation"
	BasisClinicalStudy MappingBasis = "clinical_study"
)

// EntityMapping is one cross-jurisdiction device cluster.  Mappings are
// ephemeral: recomputed per analysis pass, never persisted as a source of
// truth.
type EntityMapping struct {
	PrimaryID    string       `json:"primary_id"`
	RelatedIDs   []string     `json:"related_ids"`
	MappingBasis MappingBasis `json:"mapping_basis"`
	Confidence   float64      `json:"confidence"`
	ComputedAt   time.Time    `json:"computed_at"`
}

// unknownKeyPart stands in for a missing extraction signal inside grouping
// keys.
const unknownKeyPart = "unknown"

// ---------------------------------------------------------------------------
// Service
// ---------------------------------------------------------------------------

// Service clusters records that describe the same device across
// jurisdictions.
type Service interface {
	// MapDevices partitions the snapshot into entity mappings.  Absence of
	// signal yields fewer (or zero) mappings, never an error.
	MapDevices(ctx context.Context, corpus *record.Corpus) []EntityMapping
}

// Deps holds the service dependencies.
type Deps struct {
	Threshold float64
	Logger    logging.Logger
	Now       func() time.Time
}

type serviceImpl struct {
	threshold float64
	logger    logging.Logger
	now       func() time.Time
}

// NewService creates a device entity mapper with the given acceptance
// threshold (mean pairwise similarity a group must reach to become a
// mapping).
func NewService(deps Deps) Service {
	logger := deps.Logger
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &serviceImpl{
		threshold: deps.Threshold,
		logger:    logger,
		now:       now,
	}
}

type group struct {
	manufacturer string
	deviceName   string
	members      []*record.Record
}

func (s *serviceImpl) MapDevices(_ context.Context, corpus *record.Corpus) []EntityMapping {
	if corpus == nil || corpus.Len() == 0 {
		return nil
	}

	// ── Grouping: O(n) over the corpus ───────────────────────────────────────
	groups := make(map[[2]string]*group)
	order := make([][2]string, 0)
	for _, r := range corpus.All() {
		manufacturer, deviceName := extractionKey(r)
		if manufacturer == unknownKeyPart && deviceName == unknownKeyPart {
			// A group keyed on nothing clusters unrelated records.
			continue
		}
		key := [2]string{manufacturer, deviceName}
		g, ok := groups[key]
		if !ok {
			g = &group{manufacturer: manufacturer, deviceName: deviceName}
			groups[key] = g
			order = append(order, key)
		}
		g.members = append(g.members, r)
	}

	// ── Cluster acceptance: O(k²) within each group ──────────────────────────
	mappings := make([]EntityMapping, 0, len(order))
	computedAt := s.now().UTC()
	for _, key := range order {
		g := groups[key]
		if len(g.members) < 2 {
			continue
		}
		if distinctAuthorities(g.members) < 2 {
			// Same-authority duplicates are not cross-jurisdictional
			// evidence, even at perfect similarity.
			continue
		}
		confidence := meanPairwiseSimilarity(g.members)
		if confidence < s.threshold {
			continue
		}

		related := make([]string, 0, len(g.members)-1)
		for _, m := range g.members[1:] {
			related = append(related, m.ID)
		}
		mappings = append(mappings, EntityMapping{
			PrimaryID:    g.members[0].ID,
			RelatedIDs:   related,
			MappingBasis: basisForKey(g),
			Confidence:   confidence,
			ComputedAt:   computedAt,
		})
	}

	sort.SliceStable(mappings, func(i, j int) bool {
		if mappings[i].Confidence != mappings[j].Confidence {
			return mappings[i].Confidence > mappings[j].Confidence
		}
		return mappings[i].PrimaryID < mappings[j].PrimaryID
	})

	s.logger.Debug("device mapping pass complete",
		logging.Int("records", corpus.Len()),
		logging.Int("groups", len(order)),
		logging.Int("mappings", len(mappings)),
	)
	return mappings
}

// extractionKey derives the normalised composite grouping key for a record.
func extractionKey(r *record.Record) (manufacturer, deviceName string) {
	manufacturer = unknownKeyPart
	if m, ok := textkit.ExtractManufacturer(r.ComparableText()); ok {
		if norm := textkit.NormalizeString(m); norm != "" {
			manufacturer = norm
		}
	}
	deviceName = unknownKeyPart
	if d, ok := textkit.ExtractDeviceName(r.Title); ok {
		if norm := textkit.NormalizeString(d); norm != "" {
			deviceName = norm
		}
	}
	return manufacturer, deviceName
}

func basisForKey(g *group) MappingBasis {
	if g.manufacturer != unknownKeyPart {
		return BasisManufacturer
	}
	return BasisDeviceName
}

func distinctAuthorities(members []*record.Record) int {
	seen := make(map[string]struct{}, len(members))
	for _, m := range members {
		seen[m.Authority] = struct{}{}
	}
	return len(seen)
}

// meanPairwiseSimilarity averages the Jaccard similarity of title+body over
// every unordered member pair.  Token sets are normalised once per member.
func meanPairwiseSimilarity(members []*record.Record) float64 {
	sets := make([]map[string]struct{}, len(members))
	for i, m := range members {
		sets[i] = textkit.Normalize(m.ComparableText())
	}
	var sum float64
	pairs := 0
	for i := 0; i < len(sets); i++ {
		for j := i + 1; j < len(sets); j++ {
			sum += textkit.JaccardSets(sets[i], sets[j])
			pairs++
		}
	}
	if pairs == 0 {
		return 0
	}
	return sum / float64(pairs)
}
