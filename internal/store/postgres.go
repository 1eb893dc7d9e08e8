package store

import (
	"database/sql"
	"time"

	_ "github.com/lib/pq"

	"clickforge/internal/game"
)

// Postgres is the remote-backend KV. Slots are rows in a key/value
// table; purchases go to an audit table.
type Postgres struct {
	db *sql.DB
}

func OpenPostgres(url string) (*Postgres, error) {
	db, err := sql.Open("postgres", url)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, err
	}
	if err := ensurePostgresSchema(db); err != nil {
		return nil, err
	}
	return &Postgres{db: db}, nil
}

func ensurePostgresSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS save_slots (
			slot TEXT PRIMARY KEY,
			payload TEXT NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		);
	`)
	if err != nil {
		return err
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS purchase_log (
			id TEXT PRIMARY KEY,
			mode TEXT NOT NULL,
			upgrade_id TEXT NOT NULL,
			level INT NOT NULL,
			price DOUBLE PRECISION NOT NULL,
			coins_before DOUBLE PRECISION NOT NULL,
			coins_after DOUBLE PRECISION NOT NULL,
			created_at TIMESTAMPTZ NOT NULL
		);
	`)
	return err
}

func (p *Postgres) Get(key string) (string, bool, error) {
	var payload string
	err := p.db.QueryRow(`
		SELECT payload
		FROM save_slots
		WHERE slot = $1
	`, key).Scan(&payload)

	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return payload, true, nil
}

func (p *Postgres) Set(key, value string) error {
	_, err := p.db.Exec(`
		INSERT INTO save_slots (slot, payload, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (slot)
		DO UPDATE SET
			payload = EXCLUDED.payload,
			updated_at = NOW()
	`, key, value)
	return err
}

func (p *Postgres) Delete(key string) error {
	_, err := p.db.Exec(`
		DELETE FROM save_slots
		WHERE slot = $1
	`, key)
	return err
}

func (p *Postgres) LogPurchase(rec game.PurchaseRecord) error {
	_, err := p.db.Exec(`
		INSERT INTO purchase_log (
			id,
			mode,
			upgrade_id,
			level,
			price,
			coins_before,
			coins_after,
			created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`,
		rec.ID,
		rec.Mode,
		rec.UpgradeID,
		rec.Level,
		rec.Price,
		rec.CoinsBefore,
		rec.CoinsAfter,
		rec.At,
	)
	return err
}

func (p *Postgres) Close() error {
	return p.db.Close()
}
