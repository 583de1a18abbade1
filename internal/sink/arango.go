package sink

import (
	"context"
	"fmt"

	"arango-etl/internal/config"
	"arango-etl/internal/document"

	driver "github.com/arangodb/go-driver"
	driverhttp "github.com/arangodb/go-driver/http"
	"github.com/sirupsen/logrus"
)

// upsertQuery rewrites the full document on conflict, which keeps replays
// convergent: the same report always produces the same end state.
const upsertQuery = `UPSERT { _key: @key } INSERT @doc UPDATE @doc IN @@collection`

// ArangoSink writes documents into ArangoDB with AQL upserts. The database
// and its collections are created on first use.
type ArangoSink struct {
	db driver.Database
}

// NewArangoSink connects to ArangoDB and makes sure the target database and
// collections exist.
func NewArangoSink(ctx context.Context, cfg config.ArangoConfig) (*ArangoSink, error) {
	conn, err := driverhttp.NewConnection(driverhttp.ConnectionConfig{
		Endpoints: []string{cfg.Endpoint},
	})
	if err != nil {
		return nil, fmt.Errorf("connect to arangodb: %w", err)
	}

	client, err := driver.NewClient(driver.ClientConfig{
		Connection:     conn,
		Authentication: driver.BasicAuthentication(cfg.User, cfg.Password),
	})
	if err != nil {
		return nil, fmt.Errorf("create arangodb client: %w", err)
	}

	db, err := ensureDatabase(ctx, client, cfg.Database)
	if err != nil {
		return nil, err
	}
	if err := ensureCollections(ctx, db); err != nil {
		return nil, err
	}

	return &ArangoSink{db: db}, nil
}

func ensureDatabase(ctx context.Context, client driver.Client, name string) (driver.Database, error) {
	exists, err := client.DatabaseExists(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("check database %s: %w", name, err)
	}
	if exists {
		return client.Database(ctx, name)
	}

	logrus.Infof("creating database | name=%s", name)
	db, err := client.CreateDatabase(ctx, name, nil)
	if err != nil {
		return nil, fmt.Errorf("create database %s: %w", name, err)
	}
	return db, nil
}

func ensureCollections(ctx context.Context, db driver.Database) error {
	plain := []string{document.BeaconCollection, document.HotspotCollection}
	for _, name := range plain {
		if err := ensureCollection(ctx, db, name, nil); err != nil {
			return err
		}
	}
	edgeOpts := &driver.CreateCollectionOptions{Type: driver.CollectionTypeEdge}
	return ensureCollection(ctx, db, document.WitnessCollection, edgeOpts)
}

func ensureCollection(ctx context.Context, db driver.Database, name string, opts *driver.CreateCollectionOptions) error {
	exists, err := db.CollectionExists(ctx, name)
	if err != nil {
		return fmt.Errorf("check collection %s: %w", name, err)
	}
	if exists {
		return nil
	}

	logrus.Infof("creating collection | name=%s", name)
	if _, err := db.CreateCollection(ctx, name, opts); err != nil {
		// another process may have won the race
		if driver.IsConflict(err) {
			return nil
		}
		return fmt.Errorf("create collection %s: %w", name, err)
	}
	return nil
}

// Upsert writes doc under key in collection via AQL.
func (s *ArangoSink) Upsert(ctx context.Context, collection, key string, doc any) error {
	cursor, err := s.db.Query(ctx, upsertQuery, map[string]interface{}{
		"@collection": collection,
		"key":         key,
		"doc":         doc,
	})
	if err != nil {
		return fmt.Errorf("upsert into %s: %w", collection, err)
	}
	return cursor.Close()
}
