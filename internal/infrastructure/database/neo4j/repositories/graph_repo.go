// Package repositories persists derived analysis artifacts into the
// relationship graph.
package repositories

import (
	"context"
	"strings"

	"github.com/turtacn/MedReg-Intelligence/internal/application/entitymap"
	"github.com/turtacn/MedReg-Intelligence/internal/application/legal"
	driver "github.com/turtacn/MedReg-Intelligence/internal/infrastructure/database/neo4j"
	"github.com/turtacn/MedReg-Intelligence/internal/infrastructure/monitoring/logging"
)

// writer is the slice of the neo4j driver the repo uses.
type writer interface {
	ExecuteWrite(ctx context.Context, work func(driver.Transaction) (any, error)) (any, error)
}

// GraphRepo implements the engine graph-export port.  Nodes and edges are
// MERGEd so repeated analysis passes stay idempotent.
type GraphRepo struct {
	driver writer
	logger logging.Logger
}

func NewGraphRepo(d writer, log logging.Logger) *GraphRepo {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &GraphRepo{driver: d, logger: log}
}

const exportMappingsCypher = `
	UNWIND $batch AS row
	MERGE (p:Record {id: row.primary_id})
	WITH p, row
	UNWIND row.related_ids AS relatedID
	MERGE (r:Record {id: relatedID})
	MERGE (p)-[m:SAME_DEVICE]->(r)
	SET m.basis = row.basis, m.confidence = row.confidence, m.computed_at = row.computed_at`

const exportRelationshipsCypher = `
	UNWIND $batch AS row
	MERGE (a:Record {id: row.case_id_1})
	MERGE (b:Record {id: row.case_id_2})
	MERGE (a)-[r:RELATED_CASE {type: row.type}]->(b)
	SET r.strength = row.strength, r.explanation = row.explanation`

// ExportMappings upserts device-identity edges for each mapping cluster.
func (r *GraphRepo) ExportMappings(ctx context.Context, mappings []entitymap.EntityMapping) error {
	if len(mappings) == 0 {
		return nil
	}
	batch := make([]map[string]any, 0, len(mappings))
	for _, m := range mappings {
		batch = append(batch, map[string]any{
			"primary_id":  m.PrimaryID,
			"related_ids": m.RelatedIDs,
			"basis":       string(m.MappingBasis),
			"confidence":  m.Confidence,
			"computed_at": m.ComputedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
		})
	}

	_, err := r.driver.ExecuteWrite(ctx, func(tx driver.Transaction) (any, error) {
		_, err := tx.Run(ctx, exportMappingsCypher, map[string]any{"batch": batch})
		return nil, err
	})
	if err != nil {
		return err
	}
	r.logger.Debug("exported device mappings to graph", logging.Int("count", len(mappings)))
	return nil
}

// ExportRelationships upserts legal-case relationship edges.
func (r *GraphRepo) ExportRelationships(ctx context.Context, relationships []legal.CaseRelationship) error {
	if len(relationships) == 0 {
		return nil
	}
	batch := make([]map[string]any, 0, len(relationships))
	for _, rel := range relationships {
		batch = append(batch, map[string]any{
			"case_id_1":   rel.CaseID1,
			"case_id_2":   rel.CaseID2,
			"type":        strings.ToUpper(string(rel.Type)),
			"strength":    rel.Strength,
			"explanation": rel.Explanation,
		})
	}

	_, err := r.driver.ExecuteWrite(ctx, func(tx driver.Transaction) (any, error) {
		_, err := tx.Run(ctx, exportRelationshipsCypher, map[string]any{"batch": batch})
		return nil, err
	})
	if err != nil {
		return err
	}
	r.logger.Debug("exported case relationships to graph", logging.Int("count", len(relationships)))
	return nil
}
