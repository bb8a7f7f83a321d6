package mongo

import (
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/alexwilson/cardex/internal/db"
	"github.com/alexwilson/cardex/internal/domain/search/predicate"
)

// buildFilter translates a predicate into a query document.
// An empty predicate matches every card.
func buildFilter(p predicate.Predicate) (bson.D, error) {
	cs := p.Constraints()
	if len(cs) == 0 {
		return bson.D{}, nil
	}

	clauses := make(bson.A, 0, len(cs))
	for _, c := range cs {
		clause, err := buildClause(c)
		if err != nil {
			return nil, err
		}
		clauses = append(clauses, clause)
	}
	if len(clauses) == 1 {
		return clauses[0].(bson.D), nil
	}
	// $and keeps repeated fields (two constraints on "type") distinct.
	return bson.D{{Key: "$and", Value: clauses}}, nil
}

func buildClause(c predicate.Constraint) (bson.D, error) {
	field := string(c.Field())
	switch c.Kind() {
	case predicate.Equals:
		return bson.D{{Key: field, Value: c.Value()}}, nil
	case predicate.EqualsInt:
		return bson.D{{Key: field, Value: c.Int()}}, nil
	case predicate.Pattern:
		opts := ""
		if c.Fold() {
			opts = "i"
		}
		return bson.D{{Key: field, Value: primitive.Regex{Pattern: c.Value(), Options: opts}}}, nil
	case predicate.ElementEquals:
		return bson.D{{Key: field, Value: bson.D{
			{Key: "$elemMatch", Value: bson.D{{Key: string(c.Element()), Value: c.Value()}}},
		}}}, nil
	default:
		return nil, db.UnsupportedConstraintError("mongo", c.String())
	}
}
