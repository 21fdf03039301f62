// Package mongo implements ports.DataStore on MongoDB collections. Each table
// maps to a collection; rows keep their string "id" field and the driver's
// _id is never exposed.
package mongo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/tsmart/voyage-api/internal/core/domain"
	"github.com/tsmart/voyage-api/internal/core/ports"
	"github.com/tsmart/voyage-api/internal/pkg/metrics"
)

const driverName = "mongo"

// Store is a ports.DataStore backed by a MongoDB database.
type Store struct {
	db      *mongo.Database
	timeout time.Duration
	log     zerolog.Logger
}

var _ ports.DataStore = (*Store)(nil)

// NewStore wraps db. A zero timeout falls back to defaultTimeout.
func NewStore(db *mongo.Database, timeout time.Duration, log zerolog.Logger) *Store {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Store{
		db:      db,
		timeout: timeout,
		log:     log.With().Str("component", "datastore").Str("driver", driverName).Logger(),
	}
}

// FindMany runs an aggregation so includes can be resolved with $lookup.
// An include "yachts" joins yachts.id against the local "yachtId" field.
func (s *Store) FindMany(ctx context.Context, table string, opts ports.QueryOptions) (res *ports.FindResult, err error) {
	defer s.observe("find_many", time.Now(), &err)

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	filter := toFilter(opts.Where)
	coll := s.db.Collection(table)

	total, err := coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("find %s: count: %w", table, wrap(err))
	}

	pipeline := mongo.Pipeline{{{Key: "$match", Value: filter}}}
	if len(opts.OrderBy) > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$sort", Value: toSort(opts.OrderBy)}})
	}
	if opts.Offset > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$skip", Value: int64(opts.Offset)}})
	}
	if opts.Limit > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$limit", Value: int64(opts.Limit)}})
	}
	for _, rel := range opts.Include {
		pipeline = append(pipeline, bson.D{{Key: "$lookup", Value: bson.M{
			"from":         rel,
			"localField":   strings.TrimSuffix(rel, "s") + "Id",
			"foreignField": "id",
			"as":           rel,
			"pipeline":     bson.A{bson.M{"$project": bson.M{"_id": 0}}},
		}}})
	}
	pipeline = append(pipeline, bson.D{{Key: "$project", Value: toProjection(opts.Select, opts.Include)}})

	cur, err := coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", table, wrap(err))
	}
	var docs []bson.M
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("find %s: decode: %w", table, wrap(err))
	}

	records := make([]ports.Record, 0, len(docs))
	for _, d := range docs {
		records = append(records, ports.Record(d))
	}
	return &ports.FindResult{Records: records, Count: int(total)}, nil
}

func (s *Store) FindUnique(ctx context.Context, table, id string, opts ports.QueryOptions) (ports.Record, error) {
	q := opts
	q.Where = map[string]any{"id": id}
	q.Limit = 1
	q.Offset = 0

	res, err := s.FindMany(ctx, table, q)
	if err != nil {
		return nil, err
	}
	if len(res.Records) == 0 {
		return nil, domain.ErrNotFound
	}
	return res.Records[0], nil
}

func (s *Store) Create(ctx context.Context, table string, data ports.Record) (rec ports.Record, err error) {
	defer s.observe("create", time.Now(), &err)

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	doc := maps.Clone(data)
	if doc == nil {
		doc = ports.Record{}
	}
	if id, _ := doc["id"].(string); id == "" {
		doc["id"] = uuid.NewString()
	}
	now := time.Now().UTC()
	if _, ok := doc["createdAt"]; !ok {
		doc["createdAt"] = now
	}
	doc["updatedAt"] = now

	if _, err := s.db.Collection(table).InsertOne(ctx, bson.M(doc)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, fmt.Errorf("create %s: %w", table, domain.ErrConflict)
		}
		return nil, fmt.Errorf("create %s: %w", table, wrap(err))
	}
	delete(doc, "_id")
	return doc, nil
}

func (s *Store) Update(ctx context.Context, table, id string, data ports.Record) (rec ports.Record, err error) {
	defer s.observe("update", time.Now(), &err)

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	set := maps.Clone(data)
	if set == nil {
		set = ports.Record{}
	}
	delete(set, "id")
	delete(set, "_id")
	set["updatedAt"] = time.Now().UTC()

	opts := options.FindOneAndUpdate().
		SetReturnDocument(options.After).
		SetProjection(bson.M{"_id": 0})

	var out bson.M
	err = s.db.Collection(table).
		FindOneAndUpdate(ctx, bson.M{"id": id}, bson.M{"$set": bson.M(set)}, opts).
		Decode(&out)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("update %s %s: %w", table, id, wrap(err))
	}
	return ports.Record(out), nil
}

func (s *Store) Delete(ctx context.Context, table, id string) (err error) {
	defer s.observe("delete", time.Now(), &err)

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	res, err := s.db.Collection(table).DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		return fmt.Errorf("delete %s %s: %w", table, id, wrap(err))
	}
	if res.DeletedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *Store) Count(ctx context.Context, table string, where map[string]any) (n int, err error) {
	defer s.observe("count", time.Now(), &err)

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	total, err := s.db.Collection(table).CountDocuments(ctx, toFilter(where))
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", table, wrap(err))
	}
	return int(total), nil
}

func (s *Store) Exists(ctx context.Context, table string, where map[string]any) (bool, error) {
	n, err := s.Count(ctx, table, where)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ExecuteRaw runs query as a database command written in extended JSON,
// e.g. {"collStats": "yachts"}. Positional params are not supported.
func (s *Store) ExecuteRaw(ctx context.Context, query string, params ...any) (out json.RawMessage, err error) {
	defer s.observe("execute_raw", time.Now(), &err)

	if len(params) > 0 {
		return nil, fmt.Errorf("execute raw: %w: positional params are not supported by the mongo driver", domain.ErrDataStore)
	}

	var cmd bson.D
	if err := bson.UnmarshalExtJSON([]byte(query), false, &cmd); err != nil {
		return nil, fmt.Errorf("execute raw: parse command: %w", wrap(err))
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	raw, err := s.db.RunCommand(ctx, cmd).Raw()
	if err != nil {
		return nil, fmt.Errorf("execute raw: %w", wrap(err))
	}
	b, err := bson.MarshalExtJSON(raw, false, false)
	if err != nil {
		return nil, fmt.Errorf("execute raw: encode result: %w", wrap(err))
	}
	return json.RawMessage(b), nil
}

// Transaction runs ops inside a session transaction: a failing step rolls
// back every earlier one. Requires a replica set or sharded cluster.
func (s *Store) Transaction(ctx context.Context, ops ...ports.Operation) ([]any, error) {
	sess, err := s.db.Client().StartSession()
	if err != nil {
		return nil, fmt.Errorf("transaction: start session: %w", wrap(err))
	}
	defer sess.EndSession(ctx)

	out, err := sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		results := make([]any, 0, len(ops))
		for i, op := range ops {
			res, err := op(sc)
			if err != nil {
				return nil, &ports.TransactionError{Step: i, Committed: 0, Err: err}
			}
			results = append(results, res)
		}
		return results, nil
	})
	if err != nil {
		metrics.DataStoreTransactionsAbortedTotal.WithLabelValues(driverName).Inc()
		s.log.Error().Err(err).Msg("transaction rolled back")
		return nil, err
	}
	results, _ := out.([]any)
	return results, nil
}

func (s *Store) Ping(ctx context.Context) (err error) {
	defer s.observe("ping", time.Now(), &err)

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.db.Client().Ping(ctx, readpref.Primary()); err != nil {
		return fmt.Errorf("ping: %w", wrap(err))
	}
	return nil
}

// EnsureIndexes creates the lookup indexes the API relies on.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	unique := options.Index().SetUnique(true)
	indexes := map[string][]mongo.IndexModel{
		domain.TableUsers: {
			{Keys: bson.D{{Key: "id", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		domain.TableYachts:    {{Keys: bson.D{{Key: "id", Value: 1}}, Options: unique}},
		domain.TableCustomers: {{Keys: bson.D{{Key: "id", Value: 1}}, Options: unique}},
		domain.TableCharters: {
			{Keys: bson.D{{Key: "id", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "yachtId", Value: 1}, {Key: "status", Value: 1}}},
			{Keys: bson.D{{Key: "customerId", Value: 1}}},
		},
	}

	for coll, models := range indexes {
		if _, err := s.db.Collection(coll).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("ensure indexes on %s: %w", coll, err)
		}
	}
	return nil
}

func (s *Store) observe(op string, start time.Time, errp *error) {
	metrics.DataStoreRequestDuration.WithLabelValues(driverName, op).Observe(time.Since(start).Seconds())

	err := *errp
	if err == nil || errors.Is(err, domain.ErrNotFound) {
		return
	}
	metrics.DataStoreErrorsTotal.WithLabelValues(driverName, op).Inc()
	s.log.Error().Err(err).Str("operation", op).Msg("data store request failed")
}

func wrap(err error) error {
	return fmt.Errorf("%w: %w", domain.ErrDataStore, err)
}

func toFilter(where map[string]any) bson.M {
	filter := bson.M{}
	for k, v := range where {
		if v == nil {
			continue
		}
		filter[k] = v
	}
	return filter
}

func toSort(order []ports.OrderBy) bson.D {
	sort := make(bson.D, 0, len(order))
	for _, o := range order {
		dir := 1
		if o.Direction == ports.SortDesc {
			dir = -1
		}
		sort = append(sort, bson.E{Key: o.Field, Value: dir})
	}
	return sort
}

// toProjection hides _id and, when fields are selected, keeps only those
// plus the included relations.
func toProjection(fields, include []string) bson.M {
	proj := bson.M{"_id": 0}
	if len(fields) == 0 || (len(fields) == 1 && fields[0] == "*") {
		return proj
	}
	for _, f := range fields {
		if f == "*" {
			continue
		}
		proj[f] = 1
	}
	for _, rel := range include {
		proj[rel] = 1
	}
	return proj
}
