package dataset

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/sync/semaphore"
)

// Store persists findings in a mongo collection, one document per finding hash.
type Store struct {
	collection *mongo.Collection
	inflight   *semaphore.Weighted
}

// NewStore creates a Store writing at most inflight documents concurrently.
func NewStore(collection *mongo.Collection, inflight int64) *Store {
	if inflight < 1 {
		inflight = 1
	}
	return &Store{
		collection: collection,
		inflight:   semaphore.NewWeighted(inflight),
	}
}

// EnsureIndexes creates the indexes of the collection. The unique hash index is what keeps
// concurrent writers from storing a finding twice.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "hash", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "contract", Value: 1}}},
	})
	return err
}

// Save inserts the records whose hash is not stored yet and returns how many were inserted.
// Records failing to be saved are logged; the first failure is returned after all records are processed.
func (s *Store) Save(ctx context.Context, records []*FindingBSON) (int, error) {
	records = lo.UniqBy(records, func(r *FindingBSON) string { return r.Hash })

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		inserted int
		firstErr error
	)
	fail := func(err error) {
		mu.Lock()
		defer mu.Unlock()
		if firstErr == nil {
			firstErr = err
		}
	}
	for _, record := range records {
		if err := s.inflight.Acquire(ctx, 1); err != nil {
			fail(err)
			break
		}
		wg.Add(1)
		go func(record *FindingBSON) {
			defer wg.Done()
			defer s.inflight.Release(1)

			ok, err := s.insertIfAbsent(ctx, record)
			if err != nil {
				log.Error().Err(err).Str("hash", record.Hash).Msg("Failed to save finding")
				fail(err)
				return
			}
			if !ok {
				log.Debug().Str("hash", record.Hash).Msg("Finding already exists")
				return
			}
			mu.Lock()
			inserted++
			mu.Unlock()
		}(record)
	}
	wg.Wait()
	return inserted, firstErr
}

func (s *Store) insertIfAbsent(ctx context.Context, record *FindingBSON) (bool, error) {
	n, err := s.collection.CountDocuments(ctx, bson.D{{Key: "hash", Value: record.Hash}})
	if err != nil {
		return false, err
	}
	if n > 0 {
		return false, nil
	}
	if _, err = s.collection.InsertOne(ctx, record); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			// another writer stored it since the count
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// FindByContract returns the stored findings of the named contract, in detection order.
func (s *Store) FindByContract(ctx context.Context, contract string) ([]*FindingBSON, error) {
	opts := options.Find().SetSort(bson.D{{Key: "detectedAt", Value: 1}, {Key: "function", Value: 1}, {Key: "node", Value: 1}})
	cursor, err := s.collection.Find(ctx, bson.D{{Key: "contract", Value: contract}}, opts)
	if err != nil {
		return nil, err
	}
	var records []*FindingBSON
	if err = cursor.All(ctx, &records); err != nil {
		return nil, err
	}
	return records, nil
}
