package loader

import (
	"context"
	_ "embed"
	"fmt"
	"time"

	"apotek/database"
	"apotek/model"
	"apotek/pricing"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

//go:embed schema.sql
var schemaSQL string

// Open connects to the SQLite file at path, or to a private in-memory
// database when path is ":memory:". The pool is capped at one connection:
// the catalog has a single writer and an in-memory database lives only as
// long as its connection.
func Open(path string) (*sqlx.DB, error) {
	dsn := path + "?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on"
	if path == ":memory:" {
		dsn = ":memory:?_foreign_keys=on"
	}
	db, err := sqlx.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("db ping error: %w", err)
	}
	return db, nil
}

// OpenMemory opens an in-memory database with the schema applied and no
// seed data.
func OpenMemory() (*sqlx.DB, error) {
	db, err := Open(":memory:")
	if err != nil {
		return nil, err
	}
	if err := InitDatabase(context.Background(), db, nil, false); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// InitDatabase applies the schema, brings the code sequences level with
// existing rows and, when seed is set, loads the demo catalog into an
// empty medicines table.
func InitDatabase(ctx context.Context, db *sqlx.DB, log *zap.Logger, seed bool) error {
	if log == nil {
		log = zap.NewNop()
	}
	log.Debug("applying database schema")
	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}

	err := database.InTx(ctx, db, func(tx *sqlx.Tx) error {
		for _, seq := range database.AllSequences {
			n, err := database.SyncSequenceInTx(ctx, tx, seq)
			if err != nil {
				return err
			}
			log.Debug("code sequence synced", zap.String("sequence", seq.Name), zap.Int("max", n))
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to initialize code sequences: %w", err)
	}

	if !seed {
		return nil
	}
	n, err := SeedDemoCatalog(ctx, db, time.Now().UTC())
	if err != nil {
		return err
	}
	if n > 0 {
		log.Info("demo catalog seeded", zap.Int("medicines", n))
	}
	return nil
}

type demoMedicine struct {
	name     string
	unit     string
	stock    int
	hna      float64
	margin   float64
	category string
	barcode  string
}

var demoCatalog = []demoMedicine{
	{"Amoxicillin 500mg", "Strip", 120, 5000, 20, "Antibiotik", "AMX-001"},
	{"Paracetamol 500mg", "Box", 45, 12000, 15, "Analgesik", "PCT-002"},
	{"Cetirizine 10mg", "Strip", 80, 3500, 25, "Antihistamin", "CTR-003"},
	{"Metformin 500mg", "Strip", 200, 2500, 20, "Antidiabetik", "MTF-004"},
	{"Amlodipine 5mg", "Strip", 65, 4200, 18, "Hipertensi", "AMD-005"},
}

// SeedDemoCatalog inserts the demo medicines when the catalog is empty and
// returns how many were added.
func SeedDemoCatalog(ctx context.Context, db *sqlx.DB, now time.Time) (int, error) {
	var existing int
	if err := db.GetContext(ctx, &existing, `SELECT COUNT(*) FROM medicines`); err != nil {
		return 0, fmt.Errorf("failed to count medicines: %w", err)
	}
	if existing > 0 {
		return 0, nil
	}

	err := database.InTx(ctx, db, func(tx *sqlx.Tx) error {
		for _, d := range demoCatalog {
			id, err := database.NextSequenceInTx(ctx, tx, database.MedicineSequence)
			if err != nil {
				return err
			}
			m := &model.Medicine{
				ID:          id,
				Barcode:     d.barcode,
				Name:        d.name,
				Category:    d.category,
				Unit:        d.unit,
				SystemStock: d.stock,
				HNA:         d.hna,
				PPN:         pricing.PPN(d.hna),
				Margin:      d.margin,
				CreatedAt:   now,
			}
			if err := database.InsertMedicineInTx(ctx, tx, m); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to seed demo catalog: %w", err)
	}
	return len(demoCatalog), nil
}
