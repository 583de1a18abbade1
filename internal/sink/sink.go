package sink

import "context"

// Sink is the destination-store surface the loader needs: one idempotent
// upsert keyed by the document's natural key. Implementations must be safe
// for concurrent use; the pipeline loads files from several goroutines.
//
// Returning an error lets the caller record the file as failed and leave it
// eligible for a later attempt.
type Sink interface {
	// Upsert writes doc under key in collection. Applying the same document
	// twice must leave the collection in the same state.
	Upsert(ctx context.Context, collection, key string, doc any) error
}
