package record

import "context"

// Store is the read port onto the record store collaborator.  Both list
// operations return complete, unfiltered snapshots; filtering and pagination
// are the caller's responsibility.
type Store interface {
	// ListRegulatoryUpdates returns every regulatory-update record.
	ListRegulatoryUpdates(ctx context.Context) ([]*Record, error)

	// ListLegalCases returns every legal-case record.
	ListLegalCases(ctx context.Context) ([]*Record, error)

	// GetByID fetches a single record.  A missing ID yields an error with
	// code REC_001.
	GetByID(ctx context.Context, id string) (*Record, error)
}

// Snapshot loads both record variants from the store and freezes them into a
// single Corpus.  The snapshot-then-process contract keeps one analysis pass
// consistent even while the store is being written to.
func Snapshot(ctx context.Context, store Store) (*Corpus, error) {
	updates, err := store.ListRegulatoryUpdates(ctx)
	if err != nil {
		return nil, err
	}
	cases, err := store.ListLegalCases(ctx)
	if err != nil {
		return nil, err
	}
	all := make([]*Record, 0, len(updates)+len(cases))
	all = append(all, updates...)
	all = append(all, cases...)
	return NewCorpus(all), nil
}
