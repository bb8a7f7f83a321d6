package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/uptrace/bun"

	"github.com/alexwilson/cardex/internal/db"
	"github.com/alexwilson/cardex/internal/domain/card"
	"github.com/alexwilson/cardex/internal/domain/search/predicate"
)

// FindCards returns one page of cards matching the query, ordered by
// collated name then id.
func (s *Store) FindCards(ctx context.Context, q *db.CardQuery) ([]card.Card, error) {
	var rows []cardRow
	sel, err := s.selectCards(&rows, q)
	if err != nil {
		return nil, err
	}
	if err := sel.Scan(ctx); err != nil {
		return nil, &db.Error{Op: db.OpFind, Err: err}
	}

	cards := make([]card.Card, 0, len(rows))
	for i := range rows {
		cards = append(cards, rows[i].toCard())
	}
	return cards, nil
}

func (s *Store) selectCards(dest *[]cardRow, q *db.CardQuery) (*bun.SelectQuery, error) {
	sel, err := applyPredicate(s.bun.NewSelect().Model(dest), q.Predicate)
	if err != nil {
		return nil, err
	}
	sel = sel.
		OrderExpr("? COLLATE ?, ? ASC", bun.Ident("name"), bun.Ident(s.collation), bun.Ident("id")).
		Offset(q.Offset)
	if q.Limit > 0 {
		sel = sel.Limit(q.Limit)
	}
	return sel, nil
}

// applyPredicate adds one WHERE clause per constraint; bun joins them with AND.
func applyPredicate(sel *bun.SelectQuery, p predicate.Predicate) (*bun.SelectQuery, error) {
	for _, c := range p.Constraints() {
		col, ok := columns[c.Field()]
		if !ok {
			return nil, db.UnsupportedConstraintError("postgres", c.String())
		}
		switch c.Kind() {
		case predicate.Equals:
			sel = sel.Where("? = ?", bun.Ident(col), c.Value())
		case predicate.EqualsInt:
			sel = sel.Where("? = ?", bun.Ident(col), c.Int())
		case predicate.Pattern:
			op := "~"
			if c.Fold() {
				op = "~*"
			}
			sel = sel.Where("? "+op+" ?", bun.Ident(col), c.Value())
		case predicate.ElementEquals:
			doc, err := containment(c)
			if err != nil {
				return nil, err
			}
			sel = sel.Where("? @> ?::jsonb", bun.Ident(col), doc)
		default:
			return nil, db.UnsupportedConstraintError("postgres", c.String())
		}
	}
	return sel, nil
}

// containment renders [{"<element>": "<value>"}] for a jsonb @> test.
func containment(c predicate.Constraint) (string, error) {
	b, err := json.Marshal([]map[string]string{{string(c.Element()): c.Value()}})
	if err != nil {
		return "", fmt.Errorf("marshal containment: %w", err)
	}
	return string(b), nil
}

// GetCard loads a single card by external id.
func (s *Store) GetCard(ctx context.Context, id int64) (card.Card, error) {
	var row cardRow
	err := s.bun.NewSelect().Model(&row).Where("? = ?", bun.Ident("id"), id).Limit(1).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return card.Card{}, db.ErrKeyNotFound
		}
		return card.Card{}, &db.Error{Op: db.OpGetCard, Err: err}
	}
	return row.toCard(), nil
}

// CountCards counts the cards matching p.
func (s *Store) CountCards(ctx context.Context, p predicate.Predicate) (int64, error) {
	sel, err := applyPredicate(s.bun.NewSelect().Model((*cardRow)(nil)), p)
	if err != nil {
		return 0, err
	}
	n, err := sel.Count(ctx)
	if err != nil {
		return 0, &db.Error{Op: db.OpCount, Err: err}
	}
	return int64(n), nil
}

// InsertCardIfAbsent inserts c, leaving an existing row with the same id untouched.
func (s *Store) InsertCardIfAbsent(ctx context.Context, c *card.Card) (bool, error) {
	res, err := s.insertCard(c).Exec(ctx)
	if err != nil {
		return false, &db.Error{Op: db.OpInsert, Err: err}
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, &db.Error{Op: db.OpInsert, Err: err}
	}
	return n == 1, nil
}

func (s *Store) insertCard(c *card.Card) *bun.InsertQuery {
	return s.bun.NewInsert().Model(toRow(c)).On("CONFLICT (id) DO NOTHING")
}

// EnsureSchema creates the cards table and its indexes.
func (s *Store) EnsureSchema(ctx context.Context) error {
	_, err := s.bun.NewCreateTable().Model((*cardRow)(nil)).IfNotExists().Exec(ctx)
	if err != nil {
		return &db.Error{Op: db.OpEnsureSchema, Err: fmt.Errorf("create table: %w", err)}
	}
	for _, stmt := range schemaStatements(s.collation) {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return &db.Error{Op: db.OpEnsureSchema, Err: fmt.Errorf("exec %q: %w", stmt, err)}
		}
	}
	return nil
}

// schemaStatements returns the collation and index DDL, in execution order.
func schemaStatements(collation string) []string {
	var stmts []string
	if collation == DefaultCollation {
		stmts = append(stmts, defaultCollationDDL)
	}
	return append(stmts,
		"CREATE INDEX IF NOT EXISTS idx_cards_name_id ON cards (name COLLATE " +
			pgx.Identifier{collation}.Sanitize() + ", id);",
		"CREATE INDEX IF NOT EXISTS idx_cards_type ON cards (type);",
		"CREATE INDEX IF NOT EXISTS idx_cards_race ON cards (race);",
		"CREATE INDEX IF NOT EXISTS idx_cards_set_printings ON cards USING GIN (set_printings jsonb_path_ops);",
	)
}
