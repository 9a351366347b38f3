package repos

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	ex "driftmon/data/extensions"
	m "driftmon/data/models"
	q "driftmon/data/queries"
)

// FetchPrices returns the stored prices for every requested symbol, ordered by date.
// Symbols without rows map to an empty series.
func (pg *Postgres) FetchPrices(ctx context.Context, symbols []string) (m.PriceSeries, error) {
	res := make(m.PriceSeries, len(symbols))
	for _, s := range symbols {
		res[s] = []m.PricePoint{}
	}
	if len(symbols) == 0 {
		return res, nil
	}

	args := pgx.NamedArgs{
		"symbols": symbols,
	}

	rows, err := Query[m.PricePoint](ctx, pg, q.Get(q.QueryHelper.Select.PricesBySymbols), args)
	if err != nil {
		return nil, fmt.Errorf("unable to query prices for symbols %v: %w", symbols, err)
	}

	for _, r := range rows {
		r.Date = ex.DateOf(r.Date)
		res[r.Symbol] = append(res[r.Symbol], *r)
	}

	return res, nil
}

// UpsertPrices writes prices keyed on (symbol, date), an existing row is overwritten
func (pg *Postgres) UpsertPrices(ctx context.Context, points []m.PricePoint, tx *pgx.Tx) (int64, error) {
	if len(points) == 0 {
		return 0, nil
	}

	sql := q.Get(q.QueryHelper.Insert.Price)
	batch := &pgx.Batch{}
	for _, p := range points {
		batch.Queue(sql, pgx.NamedArgs{
			"symbol":    p.Symbol,
			"date":      ex.DateOf(p.Date),
			"adj_close": p.AdjustedClose,
		})
	}

	var br pgx.BatchResults
	if tx == nil {
		br = pg.db.SendBatch(ctx, batch)
	} else {
		br = (*tx).SendBatch(ctx, batch)
	}
	defer br.Close()

	var affected int64
	for range points {
		tag, err := br.Exec()
		if err != nil {
			return affected, fmt.Errorf("error upserting price: %w", err)
		}
		affected += tag.RowsAffected()
	}

	return affected, nil
}

// SavePrices upserts a symbol's prices and stamps its refresh date in one transaction
func (pg *Postgres) SavePrices(ctx context.Context, symbol string, points []m.PricePoint, lastRefreshed time.Time) (int64, error) {
	tx, err := pg.GetTransaction(ctx)
	if err != nil {
		return 0, fmt.Errorf("error beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx) // this will kick off if we return before committing

	ra, err := pg.UpsertPrices(ctx, m.DedupeLastWriteWins(points), &tx)
	if err != nil {
		return 0, err
	}

	if err := pg.UpdateLastRefreshedDate(ctx, symbol, lastRefreshed, &tx); err != nil {
		return 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("error committing prices for symbol %s: %w", symbol, err)
	}

	return ra, nil
}

// DeleteSymbol removes every stored price and the metadata row for a symbol
func (pg *Postgres) DeleteSymbol(ctx context.Context, symbol string) (int64, error) {
	tx, err := pg.GetTransaction(ctx)
	if err != nil {
		return 0, fmt.Errorf("error beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	args := pgx.NamedArgs{"symbol": symbol}
	tag, err := tx.Exec(ctx, q.Get(q.QueryHelper.Delete.PricesBySymbol), args)
	if err != nil {
		return 0, fmt.Errorf("error deleting prices for %s: %w", symbol, err)
	}

	if _, err := tx.Exec(ctx, q.Get(q.QueryHelper.Delete.MetadataBySymbol), args); err != nil {
		return 0, fmt.Errorf("error deleting metadata for %s: %w", symbol, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("error committing delete for symbol %s: %w", symbol, err)
	}

	return tag.RowsAffected(), nil
}
