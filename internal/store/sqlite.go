package store

import (
	"database/sql"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"clickforge/internal/game"
)

// SQLite is the local single-player KV, one file on disk.
type SQLite struct {
	db *sqlx.DB
}

// OpenSQLite opens (or creates) the save file. WAL keeps the server and
// slotctl from tripping over each other on the same file; the pragmas
// use modernc's _pragma form, not the mattn parameter names.
func OpenSQLite(path string) (*SQLite, error) {
	db, err := sqlx.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}
	if err := ensureSQLiteSchema(db); err != nil {
		return nil, err
	}
	return &SQLite{db: db}, nil
}

func ensureSQLiteSchema(db *sqlx.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS save_slots (
			slot TEXT PRIMARY KEY,
			payload TEXT NOT NULL,
			updated_at TEXT NOT NULL
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
			level INTEGER NOT NULL,
			price REAL NOT NULL,
			coins_before REAL NOT NULL,
			coins_after REAL NOT NULL,
			created_at TEXT NOT NULL
		);
	`)
	return err
}

func (s *SQLite) Get(key string) (string, bool, error) {
	var payload string
	err := s.db.Get(&payload, `
		SELECT payload
		FROM save_slots
		WHERE slot = ?
	`, key)

	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return payload, true, nil
}

func (s *SQLite) Set(key, value string) error {
	_, err := s.db.Exec(`
		INSERT INTO save_slots (slot, payload, updated_at)
		VALUES (?, ?, datetime('now'))
		ON CONFLICT (slot)
		DO UPDATE SET
			payload = excluded.payload,
			updated_at = datetime('now')
	`, key, value)
	return err
}

func (s *SQLite) Delete(key string) error {
	_, err := s.db.Exec(`
		DELETE FROM save_slots
		WHERE slot = ?
	`, key)
	return err
}

type purchaseRow struct {
	ID          string  `db:"id"`
	Mode        string  `db:"mode"`
	UpgradeID   string  `db:"upgrade_id"`
	Level       int     `db:"level"`
	Price       float64 `db:"price"`
	CoinsBefore float64 `db:"coins_before"`
	CoinsAfter  float64 `db:"coins_after"`
	CreatedAt   string  `db:"created_at"`
}

func (s *SQLite) LogPurchase(rec game.PurchaseRecord) error {
	_, err := s.db.NamedExec(`
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
		VALUES (:id, :mode, :upgrade_id, :level, :price, :coins_before, :coins_after, :created_at)
	`, purchaseRow{
		ID:          rec.ID,
		Mode:        rec.Mode,
		UpgradeID:   rec.UpgradeID,
		Level:       rec.Level,
		Price:       rec.Price,
		CoinsBefore: rec.CoinsBefore,
		CoinsAfter:  rec.CoinsAfter,
		CreatedAt:   rec.At.UTC().Format("2006-01-02 15:04:05"),
	})
	return err
}

func (s *SQLite) Close() error {
	return s.db.Close()
}
