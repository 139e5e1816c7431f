package repos

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"
	_ "modernc.org/sqlite"
)

// ErrConflict is returned when a guarded update matched no row because the
// row changed (version or status) since it was read.
var ErrConflict = errors.New("row changed concurrently")

const tsLayout = "2006-01-02T15:04:05.000000Z"

// now returns a fixed-width UTC timestamp so TEXT ordering matches time ordering.
func now() string { return time.Now().UTC().Format(tsLayout) }

func OpenDB(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// One connection: transactions serialize and ":memory:" stays a single database.
	db.SetMaxOpenConns(1)
	if err = db.Ping(); err != nil {
		return nil, err
	}

	if err := ensureSchema(db); err != nil {
		return nil, err
	}
	// Ensure users exist (idempotent; safe to run every start)
	if err := seedUsers(db); err != nil {
		return nil, err
	}

	return db, nil
}

// InTx runs fn in a transaction and commits when fn returns nil.
func InTx(ctx context.Context, db *sqlx.DB, fn func(tx *sqlx.Tx) error) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()
	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

func affected(res interface{ RowsAffected() (int64, error) }) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrConflict
	}
	return nil
}

func ensureSchema(db *sqlx.DB) error {
	schema := `
PRAGMA foreign_keys = ON;

-- Users & Sessions
CREATE TABLE IF NOT EXISTS users(
  id TEXT PRIMARY KEY,
  email TEXT NOT NULL UNIQUE,
  name TEXT NOT NULL,
  password_hash TEXT NOT NULL,
  role TEXT NOT NULL CHECK (role IN ('FARMER','BUYER','ADMIN')),
  created_at TEXT DEFAULT CURRENT_TIMESTAMP,
  updated_at TEXT
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email ON users(LOWER(email));

CREATE TABLE IF NOT EXISTS sessions(
  id TEXT PRIMARY KEY,
  user_id TEXT NULL REFERENCES users(id) ON DELETE SET NULL,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP,
  last_seen  TEXT
);
CREATE INDEX IF NOT EXISTS idx_sessions_user ON sessions(user_id);

-- Supply listings; decimals are stored as TEXT and compared in Go
CREATE TABLE IF NOT EXISTS crops(
  id TEXT PRIMARY KEY,
  farmer_id TEXT NOT NULL REFERENCES users(id),
  crop_name TEXT NOT NULL,
  quantity_available TEXT NOT NULL,
  price_per_unit TEXT NOT NULL,
  status TEXT NOT NULL CHECK (status IN ('PLANTED','GROWING','HARVESTED','SOLD')),
  prior_status TEXT NOT NULL DEFAULT '',
  version INTEGER NOT NULL DEFAULT 1,
  created_at TEXT NOT NULL,
  updated_at TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_crops_farmer ON crops(farmer_id);
CREATE INDEX IF NOT EXISTS idx_crops_name   ON crops(crop_name);

-- Demand requests
CREATE TABLE IF NOT EXISTS demands(
  id TEXT PRIMARY KEY,
  buyer_id TEXT NOT NULL REFERENCES users(id),
  crop_name TEXT NOT NULL,
  quantity_required TEXT NOT NULL,
  max_price_per_unit TEXT NOT NULL,
  needed_by TEXT NOT NULL DEFAULT '',
  min_quality_grade TEXT NOT NULL DEFAULT '',
  status TEXT NOT NULL CHECK (status IN ('OPEN','FULFILLED','CANCELLED')),
  created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_demands_buyer  ON demands(buyer_id);
CREATE INDEX IF NOT EXISTS idx_demands_status ON demands(status);

-- Deals
CREATE TABLE IF NOT EXISTS deals(
  id TEXT PRIMARY KEY,
  crop_id TEXT NOT NULL REFERENCES crops(id),
  demand_id TEXT NOT NULL DEFAULT '',
  buyer_id TEXT NOT NULL,
  seller_id TEXT NOT NULL,
  crop_name TEXT NOT NULL,
  price_per_unit TEXT NOT NULL,
  quantity TEXT NOT NULL,
  total_amount TEXT NOT NULL,
  status TEXT NOT NULL CHECK (status IN ('CREATED','CONFIRMED','IN_TRANSIT','DELIVERED','CANCELLED')),
  created_at TEXT NOT NULL,
  updated_at TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_deals_buyer  ON deals(buyer_id);
CREATE INDEX IF NOT EXISTS idx_deals_seller ON deals(seller_id);
CREATE INDEX IF NOT EXISTS idx_deals_crop   ON deals(crop_id);

-- Negotiation log (append-only; seq is insertion order)
CREATE TABLE IF NOT EXISTS negotiation_entries(
  seq INTEGER PRIMARY KEY AUTOINCREMENT,
  deal_id TEXT NOT NULL REFERENCES deals(id) ON DELETE CASCADE,
  sender_id TEXT NOT NULL,
  price TEXT NOT NULL,
  message TEXT NOT NULL DEFAULT '',
  created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_negotiation_deal ON negotiation_entries(deal_id, seq);

-- Reviews
CREATE TABLE IF NOT EXISTS reviews(
  id TEXT PRIMARY KEY,
  deal_id TEXT NOT NULL REFERENCES deals(id) ON DELETE CASCADE,
  author_id TEXT NOT NULL,
  subject_id TEXT NOT NULL,
  rating INTEGER NOT NULL CHECK (rating BETWEEN 1 AND 5),
  comment TEXT NOT NULL DEFAULT '',
  created_at TEXT NOT NULL,
  UNIQUE(deal_id, author_id)
);
CREATE INDEX IF NOT EXISTS idx_reviews_subject ON reviews(subject_id);

-- Deal event outbox
CREATE TABLE IF NOT EXISTS deal_events(
  seq INTEGER PRIMARY KEY AUTOINCREMENT,
  deal_id TEXT NOT NULL,
  event_type TEXT NOT NULL,
  payload TEXT NOT NULL,
  created_at TEXT NOT NULL,
  published_at TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_deal_events_pending ON deal_events(published_at, seq);
`
	_, err := db.Exec(schema)
	return err
}

// SeedDemo inserts a few crops and demands when none exist.
func SeedDemo(db *sqlx.DB) error {
	var n int
	if err := db.Get(&n, `SELECT COUNT(*) FROM crops`); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	log.Println("[seed] inserting demo crops/demands")

	ts := now()
	tx := db.MustBegin()
	tx.MustExec(`INSERT INTO crops(id,farmer_id,crop_name,quantity_available,price_per_unit,status,created_at) VALUES
	  ('crop-wheat-1','u-farmer-asha','Wheat','150','18.50','HARVESTED',?),
	  ('crop-rice-1','u-farmer-asha','Rice','400','31','GROWING',?),
	  ('crop-tomato-1','u-farmer-ravi','Tomato','80','12.25','PLANTED',?)`, ts, ts, ts)
	tx.MustExec(`INSERT INTO demands(id,buyer_id,crop_name,quantity_required,max_price_per_unit,needed_by,min_quality_grade,status,created_at) VALUES
	  ('demand-wheat-1','u-buyer-meera','Wheat','100','20','2026-12-01','A','OPEN',?),
	  ('demand-tomato-1','u-buyer-kiran','Tomato','120','14','','B','OPEN',?)`, ts, ts)
	return tx.Commit()
}

// seedUsers ensures two FARMERs, two BUYERs and one ADMIN exist (idempotent).
func seedUsers(db *sqlx.DB) error {
	type u struct {
		ID, Email, Name, Role, Hash string
	}
	mk := func(id, email, name, role, raw string) u {
		h, _ := bcrypt.GenerateFromPassword([]byte(raw), bcrypt.DefaultCost)
		return u{ID: id, Email: email, Name: name, Role: role, Hash: string(h)}
	}

	users := []u{
		mk("u-farmer-asha", "asha@farmdirect.test", "Asha", "FARMER", "Passw0rd!"),
		mk("u-farmer-ravi", "ravi@farmdirect.test", "Ravi", "FARMER", "Passw0rd!"),
		mk("u-buyer-meera", "meera@farmdirect.test", "Meera", "BUYER", "Passw0rd!"),
		mk("u-buyer-kiran", "kiran@farmdirect.test", "Kiran", "BUYER", "Passw0rd!"),
		mk("u-admin", "admin@farmdirect.test", "Admin", "ADMIN", "Passw0rd!"),
	}

	tx := db.MustBegin()
	defer func() { _ = tx.Rollback() }()

	for _, x := range users {
		if _, err := tx.Exec(`
			INSERT INTO users(id,email,name,password_hash,role)
			VALUES(?,?,?,?,?)
			ON CONFLICT(email) DO NOTHING
		`, x.ID, x.Email, x.Name, x.Hash, x.Role); err != nil {
			return err
		}
	}

	return tx.Commit()
}
