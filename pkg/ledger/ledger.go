// Package ledger records placed deal orders in Postgres.
package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
)

type OrderRecord struct {
	bun.BaseModel `bun:"table:deal_orders,alias:o" json:"-"`

	ID        int64     `bun:"id,pk,autoincrement" json:"id"`
	SessionID string    `bun:"session_id,notnull" json:"session_id"`
	OfferID   string    `bun:"offer_id,notnull" json:"offer_id"`
	Quantity  int       `bun:"quantity,notnull" json:"quantity"`
	Amount    float64   `bun:"amount,notnull" json:"amount"`
	OrderRef  string    `bun:"order_ref,notnull,unique" json:"order_ref"`
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
}

type Recorder interface {
	Record(ctx context.Context, rec OrderRecord) error
}

// Noop discards records; used when no database is configured.
type Noop struct{}

func (Noop) Record(context.Context, OrderRecord) error { return nil }

type Ledger struct {
	db *bun.DB
}

var _ Recorder = (*Ledger)(nil)

// Open builds a ledger for dsn. No connection is made until first use.
func Open(dsn string) (*Ledger, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return nil, fmt.Errorf("ledger dsn is required")
	}
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	return &Ledger{db: bun.NewDB(sqldb, pgdialect.New())}, nil
}

func (l *Ledger) Close() error {
	return l.db.Close()
}

func (l *Ledger) Migrate(ctx context.Context) error {
	if _, err := l.createTableQuery().Exec(ctx); err != nil {
		return fmt.Errorf("migrate deal_orders: %w", err)
	}
	return nil
}

func (l *Ledger) Record(ctx context.Context, rec OrderRecord) error {
	if _, err := l.insertQuery(&rec).Exec(ctx); err != nil {
		return fmt.Errorf("record order %s: %w", rec.OrderRef, err)
	}
	return nil
}

// Recent lists the newest orders of a session.
func (l *Ledger) Recent(ctx context.Context, sessionID string, limit int) ([]OrderRecord, error) {
	var out []OrderRecord
	if err := l.recentQuery(&out, sessionID, limit).Scan(ctx); err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return out, nil
}

func (l *Ledger) createTableQuery() *bun.CreateTableQuery {
	return l.db.NewCreateTable().Model((*OrderRecord)(nil)).IfNotExists()
}

func (l *Ledger) insertQuery(rec *OrderRecord) *bun.InsertQuery {
	return l.db.NewInsert().Model(rec)
}

func (l *Ledger) recentQuery(out *[]OrderRecord, sessionID string, limit int) *bun.SelectQuery {
	if limit <= 0 {
		limit = 10
	}
	return l.db.NewSelect().
		Model(out).
		Where("session_id = ?", sessionID).
		OrderExpr("created_at DESC").
		Limit(limit)
}
