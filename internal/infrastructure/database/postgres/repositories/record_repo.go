// Package repositories contains the PostgreSQL adapters behind the domain
// store ports.
package repositories

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/turtacn/MedReg-Intelligence/internal/domain/record"
	"github.com/turtacn/MedReg-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/MedReg-Intelligence/pkg/errors"
	rtypes "github.com/turtacn/MedReg-Intelligence/pkg/types/record"
)

// Querier is the subset of pgxpool.Pool the repository uses.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const recordColumns = `
	id, title, body, authority, region, published_at, priority, record_type,
	regulatory_kind, categories, device_classes, keywords,
	summary, key_issues, outcome, legal_basis, jurisdiction, decision_date`

const (
	listByTypeSQL = `SELECT` + recordColumns + `
	FROM records
	WHERE record_type = $1
	ORDER BY published_at, id`

	getByIDSQL = `SELECT` + recordColumns + `
	FROM records
	WHERE id = $1`
)

// RecordRepo implements record.Store over PostgreSQL.
type RecordRepo struct {
	db     Querier
	logger logging.Logger
}

// NewRecordRepo creates the repository.
func NewRecordRepo(db Querier, log logging.Logger) *RecordRepo {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &RecordRepo{db: db, logger: log}
}

// ListRegulatoryUpdates returns the complete regulatory-update snapshot.
func (r *RecordRepo) ListRegulatoryUpdates(ctx context.Context) ([]*record.Record, error) {
	return r.listByType(ctx, rtypes.TypeRegulatoryUpdate)
}

// ListLegalCases returns the complete legal-case snapshot.
func (r *RecordRepo) ListLegalCases(ctx context.Context) ([]*record.Record, error) {
	return r.listByType(ctx, rtypes.TypeLegalCase)
}

func (r *RecordRepo) listByType(ctx context.Context, typ rtypes.Type) ([]*record.Record, error) {
	rows, err := r.db.Query(ctx, listByTypeSQL, string(typ))
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to list records")
	}
	defer rows.Close()

	out := make([]*record.Record, 0, 64)
	skipped := 0
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		domainRec, err := record.NewFromDTO(rec)
		if err != nil {
			// A row that fails domain validation is skipped, not fatal:
			// one bad record must not poison the whole snapshot.
			skipped++
			continue
		}
		out = append(out, domainRec)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "record iteration failed")
	}
	if skipped > 0 {
		r.logger.Warn("skipped invalid records during snapshot",
			logging.Int("skipped", skipped),
			logging.String("record_type", string(typ)),
		)
	}
	return out, nil
}

// GetByID fetches one record.  Missing IDs map to REC_001.
func (r *RecordRepo) GetByID(ctx context.Context, id string) (*record.Record, error) {
	dto, err := scanRecord(r.db.QueryRow(ctx, getByIDSQL, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, errors.New(errors.ErrCodeRecordNotFound, "record not found").WithDetail(id)
		}
		return nil, err
	}
	return record.NewFromDTO(dto)
}

// rowScanner is satisfied by both pgx.Row and pgx.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (rtypes.RecordDTO, error) {
	var (
		dto          rtypes.RecordDTO
		body         *string
		kind         *string
		priority     *string
		summary      *string
		outcome      *string
		legalBasis   *string
		jurisdiction *string
		decisionDate *time.Time
	)
	err := row.Scan(
		&dto.ID, &dto.Title, &body, &dto.Authority, &dto.Region,
		&dto.PublishedAt, &priority, (*string)(&dto.RecordType),
		&kind, &dto.Categories, &dto.DeviceClasses, &dto.Keywords,
		&summary, &dto.KeyIssues, &outcome, &legalBasis, &jurisdiction,
		&decisionDate,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return rtypes.RecordDTO{}, err
		}
		return rtypes.RecordDTO{}, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to scan record row")
	}

	if body != nil {
		dto.Body = *body
	}
	if kind != nil {
		dto.RegulatoryKind = rtypes.RegulatoryKind(*kind)
	}
	if priority != nil {
		dto.Priority = rtypes.ParsePriority(*priority)
	}
	if summary != nil {
		dto.Summary = *summary
	}
	if outcome != nil {
		dto.Outcome = *outcome
	}
	if legalBasis != nil {
		dto.LegalBasis = *legalBasis
	}
	if jurisdiction != nil {
		dto.Jurisdiction = *jurisdiction
	}
	dto.DecisionDate = decisionDate
	return dto, nil
}
