package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"house-finder/models"
	"house-finder/utils"
)

// listingColumns is the insert column order of the listings table.
var listingColumns = []string{
	"search_key", "id", "position", "description", "detail", "nbhd", "price", "link", "status", "first_seen_date",
}

// PostgresStore persists the history in PostgreSQL, one row per listing.
type PostgresStore struct {
	db     *sql.DB
	logger *utils.Logger
}

// NewPostgresStore opens a connection to PostgreSQL, creates the schema if
// needed and returns a ready-to-use PostgresStore.
func NewPostgresStore(ctx context.Context, dsn string, logger *utils.Logger) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	for i := 0; i < 10; i++ {
		if err = db.PingContext(ctx); err == nil {
			break
		}
		logger.Warn("[postgres] Ping failed: %v", err)
		select {
		case <-ctx.Done():
			_ = db.Close()
			return nil, fmt.Errorf("postgres: ping: %w", ctx.Err())
		case <-time.After(2 * time.Second):
		}
	}
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: ping failed after retries: %w", err)
	}

	ps := &PostgresStore{db: db, logger: logger}
	if err := ps.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}

	return ps, nil
}

func (ps *PostgresStore) migrate(ctx context.Context) error {
	_, err := ps.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS listings (
			search_key      TEXT        NOT NULL,
			id              TEXT        NOT NULL,
			position        INTEGER     NOT NULL,
			description     TEXT        NOT NULL DEFAULT '',
			detail          TEXT        NOT NULL DEFAULT '',
			nbhd            TEXT        NOT NULL DEFAULT '',
			price           TEXT        NOT NULL DEFAULT '',
			link            TEXT        NOT NULL DEFAULT '',
			status          VARCHAR(16) NOT NULL,
			first_seen_date DATE,
			PRIMARY KEY (search_key, id)
		);

		CREATE INDEX IF NOT EXISTS idx_listings_status ON listings(search_key, status);
	`)
	return err
}

// Load reads every stored search. Rows with an unknown or transient status
// wrap ErrCorruptStore.
func (ps *PostgresStore) Load(ctx context.Context) (models.History, error) {
	rows, err := ps.db.QueryContext(ctx, `
		SELECT search_key, id, description, detail, nbhd, price, link, status, first_seen_date
		FROM listings
		ORDER BY search_key, position
	`)
	if err != nil {
		return nil, fmt.Errorf("postgres: load: %w", err)
	}
	defer rows.Close()

	history := models.History{}
	for rows.Next() {
		var (
			key, status string
			firstSeen   sql.NullTime
			l           models.Listing
		)
		if err := rows.Scan(
			&key, &l.ID, &l.Description, &l.Detail, &l.Neighborhood,
			&l.Price, &l.Link, &status, &firstSeen,
		); err != nil {
			return nil, fmt.Errorf("postgres: scan row: %w", err)
		}

		l.Status, err = models.ParseStatus(status)
		if err == nil && l.Status == models.StatusTainted {
			err = errors.New("transient status persisted")
		}
		if err != nil {
			return nil, fmt.Errorf("postgres: listing %s/%s: %w: %w", key, l.ID, ErrCorruptStore, err)
		}
		if firstSeen.Valid {
			l.FirstSeen = firstSeen.Time.Format(models.DateLayout)
		}

		snap, ok := history[key]
		if !ok {
			snap = models.NewSnapshot()
			history[key] = snap
		}
		snap.Put(l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: load: %w", err)
	}

	ps.logger.Debug("[postgres] Loaded %d search(es)", len(history))
	return history, nil
}

// Save replaces the stored history inside one transaction.
func (ps *PostgresStore) Save(ctx context.Context, history models.History) error {
	tx, err := ps.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("postgres: begin: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, "DELETE FROM listings"); err != nil {
		return fmt.Errorf("postgres: clear: %w", err)
	}

	rows := historyRows(history)
	const batchSize = 50
	for i := 0; i < len(rows); i += batchSize {
		end := i + batchSize
		if end > len(rows) {
			end = len(rows)
		}
		query, args := insertStatement(rows[i:end])
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("postgres: insert batch: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("postgres: commit: %w", err)
	}
	ps.logger.Debug("[postgres] Saved %d listing(s)", len(rows))
	return nil
}

func (ps *PostgresStore) Close() error {
	return ps.db.Close()
}

type listingRow struct {
	key      string
	position int
	listing  models.Listing
}

// historyRows flattens history into rows, sorted by search key. Positions
// keep snapshot order.
func historyRows(history models.History) []listingRow {
	keys := make([]string, 0, len(history))
	for key, snap := range history {
		if snap != nil {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	var rows []listingRow
	for _, key := range keys {
		for i, l := range history[key].Listings() {
			rows = append(rows, listingRow{key: key, position: i, listing: l})
		}
	}
	return rows
}

// insertStatement builds one multi-row INSERT for batch.
func insertStatement(batch []listingRow) (string, []interface{}) {
	n := len(listingColumns)
	valueStrings := make([]string, 0, len(batch))
	valueArgs := make([]interface{}, 0, len(batch)*n)

	for idx, r := range batch {
		placeholders := make([]string, n)
		for c := range placeholders {
			placeholders[c] = fmt.Sprintf("$%d", idx*n+c+1)
		}
		valueStrings = append(valueStrings, "("+strings.Join(placeholders, ",")+")")

		var firstSeen interface{}
		if r.listing.FirstSeen != "" {
			firstSeen = r.listing.FirstSeen
		}
		l := r.listing
		valueArgs = append(valueArgs,
			r.key, l.ID, r.position, l.Description, l.Detail, l.Neighborhood,
			l.Price, l.Link, string(l.Status), firstSeen)
	}

	query := fmt.Sprintf("INSERT INTO listings (%s) VALUES %s",
		strings.Join(listingColumns, ", "), strings.Join(valueStrings, ","))
	return query, valueArgs
}
