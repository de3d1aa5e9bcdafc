package record

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/MedReg-Intelligence/pkg/errors"
	rtypes "github.com/turtacn/MedReg-Intelligence/pkg/types/record"
)

func validDTO() rtypes.RecordDTO {
	return rtypes.RecordDTO{
		ID:          "rec-001",
		Title:       "Device XYZ 510(k) Clearance",
		Body:        "FDA has cleared Device XYZ for marketing.",
		Authority:   "FDA",
		Region:      "US",
		PublishedAt: time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC),
		RecordType:  rtypes.TypeRegulatoryUpdate,
	}
}

func TestNewFromDTO(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		mutate   func(*rtypes.RecordDTO)
		wantCode errors.ErrorCode
	}{
		{
			name:   "valid regulatory update",
			mutate: func(*rtypes.RecordDTO) {},
		},
		{
			name: "valid legal case",
			mutate: func(d *rtypes.RecordDTO) {
				d.RecordType = rtypes.TypeLegalCase
				d.Summary = "Court held the recall was warranted."
			},
		},
		{
			name:     "missing id",
			mutate:   func(d *rtypes.RecordDTO) { d.ID = "" },
			wantCode: errors.CodeValidation,
		},
		{
			name:     "missing title",
			mutate:   func(d *rtypes.RecordDTO) { d.Title = "" },
			wantCode: errors.CodeValidation,
		},
		{
			name:     "missing authority",
			mutate:   func(d *rtypes.RecordDTO) { d.Authority = "" },
			wantCode: errors.CodeValidation,
		},
		{
			name:     "missing region",
			mutate:   func(d *rtypes.RecordDTO) { d.Region = "" },
			wantCode: errors.CodeValidation,
		},
		{
			name:     "zero published_at",
			mutate:   func(d *rtypes.RecordDTO) { d.PublishedAt = time.Time{} },
			wantCode: errors.CodeValidation,
		},
		{
			name:     "unknown record type",
			mutate:   func(d *rtypes.RecordDTO) { d.RecordType = "newsletter" },
			wantCode: errors.CodeRecordTypeUnknown,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			dto := validDTO()
			tt.mutate(&dto)
			r, err := NewFromDTO(dto)
			if tt.wantCode != "" {
				require.Error(t, err)
				assert.Equal(t, tt.wantCode, errors.GetCode(err))
				assert.Nil(t, r)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, dto.ID, r.ID)
		})
	}
}

func TestRecordDefaultResolution(t *testing.T) {
	t.Parallel()

	decision := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	dto := validDTO()
	dto.RecordType = rtypes.TypeLegalCase
	dto.DecisionDate = &decision
	dto.KeyIssues = []string{"product liability"}
	r, err := NewFromDTO(dto)
	require.NoError(t, err)

	// Summary absent: falls back to body.
	assert.Equal(t, r.Body, r.EffectiveSummary())
	r2 := *r
	r2.Summary = "Appeal dismissed."
	assert.Equal(t, "Appeal dismissed.", r2.EffectiveSummary())

	// Key issues present: preferred over keywords.
	assert.Equal(t, []string{"product liability"}, r.EffectiveKeyIssues())
	r3 := *r
	r3.KeyIssues = nil
	r3.Keywords = []string{"recall"}
	assert.Equal(t, []string{"recall"}, r3.EffectiveKeyIssues())
	r3.Keywords = nil
	assert.Nil(t, r3.EffectiveKeyIssues())

	// Decision date preferred for ordering; publication time otherwise.
	assert.Equal(t, decision, r.EffectiveDecisionDate())
	r4 := *r
	r4.DecisionDate = nil
	assert.Equal(t, r4.PublishedAt.UTC(), r4.EffectiveDecisionDate())
}

func TestRecordComparableAndSearchableText(t *testing.T) {
	t.Parallel()

	dto := validDTO()
	r, err := NewFromDTO(dto)
	require.NoError(t, err)
	assert.Equal(t, r.Title+" "+r.Body, r.ComparableText())

	r2 := *r
	r2.Body = ""
	assert.Equal(t, r.Title, r2.ComparableText())

	r3 := *r
	r3.Summary = "Summary Text"
	r3.KeyIssues = []string{"Recall", "Liability"}
	searchable := r3.SearchableText()
	assert.Contains(t, searchable, "device xyz")
	assert.Contains(t, searchable, "summary text")
	assert.Contains(t, searchable, "recall liability")
}

func TestCorpusOrderingAndLookup(t *testing.T) {
	t.Parallel()

	mk := func(id string, published time.Time, typ rtypes.Type) *Record {
		dto := validDTO()
		dto.ID = id
		dto.PublishedAt = published
		dto.RecordType = typ
		r, err := NewFromDTO(dto)
		require.NoError(t, err)
		return r
	}

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewCorpus([]*Record{
		mk("c", base.AddDate(0, 2, 0), rtypes.TypeLegalCase),
		mk("a", base, rtypes.TypeRegulatoryUpdate),
		nil,
		mk("b", base.AddDate(0, 1, 0), rtypes.TypeRegulatoryUpdate),
		mk("a", base.AddDate(0, 5, 0), rtypes.TypeRegulatoryUpdate), // duplicate dropped
	})

	require.Equal(t, 3, c.Len())
	ids := make([]string, 0, c.Len())
	for _, r := range c.All() {
		ids = append(ids, r.ID)
	}
	assert.Equal(t, []string{"a", "b", "c"}, ids)

	got, ok := c.Get("b")
	require.True(t, ok)
	assert.Equal(t, "b", got.ID)
	_, ok = c.Get("missing")
	assert.False(t, ok)

	assert.Len(t, c.RegulatoryUpdates(), 2)
	assert.Len(t, c.LegalCases(), 1)
}

type stubStore struct {
	updates []*Record
	cases   []*Record
	err     error
}

func (s *stubStore) ListRegulatoryUpdates(context.Context) ([]*Record, error) {
	return s.updates, s.err
}

func (s *stubStore) ListLegalCases(context.Context) ([]*Record, error) {
	return s.cases, s.err
}

func (s *stubStore) GetByID(context.Context, string) (*Record, error) {
	return nil, errors.NotFound("not implemented")
}

func TestSnapshot(t *testing.T) {
	t.Parallel()

	upd, err := NewFromDTO(validDTO())
	require.NoError(t, err)
	caseDTO := validDTO()
	caseDTO.ID = "case-001"
	caseDTO.RecordType = rtypes.TypeLegalCase
	lc, err := NewFromDTO(caseDTO)
	require.NoError(t, err)

	c, err := Snapshot(context.Background(), &stubStore{
		updates: []*Record{upd},
		cases:   []*Record{lc},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, c.Len())

	_, err = Snapshot(context.Background(), &stubStore{err: errors.Internal("store down")})
	assert.Error(t, err)
}
