package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	mongodriver "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/alexwilson/cardex/internal/db"
	"github.com/alexwilson/cardex/internal/domain/card"
	"github.com/alexwilson/cardex/internal/domain/search/predicate"
)

// projection drops the server-assigned _id.
var projection = bson.D{{Key: "_id", Value: 0}}

// FindCards returns one page of cards matching the query, ordered by
// collated name then id.
func (s *Store) FindCards(ctx context.Context, q *db.CardQuery) ([]card.Card, error) {
	filter, err := buildFilter(q.Predicate)
	if err != nil {
		return nil, err
	}

	cur, err := s.coll.Find(ctx, filter, s.findOptions(q.Offset, q.Limit))
	if err != nil {
		return nil, &db.Error{Op: db.OpFind, Err: err}
	}
	defer func() { _ = cur.Close(ctx) }()

	var docs []cardDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, &db.Error{Op: db.OpFind, Err: err}
	}

	cards := make([]card.Card, 0, len(docs))
	for i := range docs {
		cards = append(cards, docs[i].toCard())
	}
	return cards, nil
}

func (s *Store) findOptions(offset, limit int) *options.FindOptions {
	opts := options.Find().
		SetCollation(s.collation).
		SetSort(bson.D{{Key: "name", Value: 1}, {Key: "id", Value: 1}}).
		SetProjection(projection).
		SetSkip(int64(offset))
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	return opts
}

// GetCard loads a single card by external id.
func (s *Store) GetCard(ctx context.Context, id int64) (card.Card, error) {
	var doc cardDocument
	err := s.coll.FindOne(ctx, bson.D{{Key: "id", Value: id}},
		options.FindOne().SetProjection(projection)).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongodriver.ErrNoDocuments) {
			return card.Card{}, db.ErrKeyNotFound
		}
		return card.Card{}, &db.Error{Op: db.OpGetCard, Err: err}
	}
	return doc.toCard(), nil
}

// CountCards counts the cards matching p.
func (s *Store) CountCards(ctx context.Context, p predicate.Predicate) (int64, error) {
	filter, err := buildFilter(p)
	if err != nil {
		return 0, err
	}
	n, err := s.coll.CountDocuments(ctx, filter, options.Count().SetCollation(s.collation))
	if err != nil {
		return 0, &db.Error{Op: db.OpCount, Err: err}
	}
	return n, nil
}

// InsertCardIfAbsent upserts with $setOnInsert, so an existing card with
// the same id is left untouched.
func (s *Store) InsertCardIfAbsent(ctx context.Context, c *card.Card) (bool, error) {
	res, err := s.coll.UpdateOne(ctx,
		bson.D{{Key: "id", Value: c.ID}},
		bson.D{{Key: "$setOnInsert", Value: toDocument(c)}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		// Two concurrent upserts of the same id: the loser hits the unique index.
		if mongodriver.IsDuplicateKeyError(err) {
			return false, nil
		}
		return false, &db.Error{Op: db.OpInsert, Err: err}
	}
	return res.UpsertedCount == 1, nil
}

// EnsureSchema creates the unique id index and the collated ordering index.
func (s *Store) EnsureSchema(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateMany(ctx, indexModels(s.collation))
	if err != nil {
		return &db.Error{Op: db.OpEnsureSchema, Err: err}
	}
	return nil
}

func indexModels(collation *options.Collation) []mongodriver.IndexModel {
	return []mongodriver.IndexModel{
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetName("cards_id_unique").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "name", Value: 1}, {Key: "id", Value: 1}},
			Options: options.Index().SetName("cards_name_id").SetCollation(collation),
		},
		{
			Keys:    bson.D{{Key: "setPrintings.rarity", Value: 1}},
			Options: options.Index().SetName("cards_set_rarity"),
		},
	}
}
