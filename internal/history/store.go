package history

import (
	"database/sql"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// #region schema
const schema = `
CREATE TABLE IF NOT EXISTS predictions (
	id                        TEXT PRIMARY KEY,
	owner                     TEXT NOT NULL,
	image_path                TEXT NOT NULL,
	cultivar                  TEXT NOT NULL,
	confidence                REAL NOT NULL,
	grain_weight              REAL NOT NULL,
	gsw                       REAL NOT NULL,
	phips2                    REAL NOT NULL,
	fertilizer_score          REAL NOT NULL,
	field_area_acres          REAL NOT NULL,
	fertilizer_rate_inr       REAL NOT NULL,
	urea_required_kg          REAL NOT NULL,
	fertilizer_cost_inr       REAL NOT NULL,
	total_production_quintals REAL NOT NULL,
	probabilities             BLOB,
	mean_spectrum             BLOB,
	created_at                TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_predictions_owner_created ON predictions(owner, created_at);
`

// timeLayout is fixed width so created_at sorts lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

const columns = `id, owner, image_path, cultivar, confidence,
	grain_weight, gsw, phips2, fertilizer_score,
	field_area_acres, fertilizer_rate_inr,
	urea_required_kg, fertilizer_cost_inr, total_production_quintals,
	probabilities, mean_spectrum, created_at`

// #endregion schema

// #region store
// Store persists predictions in SQLite. It is safe for concurrent use.
type Store struct {
	db *sql.DB
}

// NewStore opens a SQLite database and runs migrations.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma busy_timeout: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// #endregion store

// #region save
// Save inserts rec, assigning an ID and timestamp when they are empty.
func (s *Store) Save(rec Record) (Record, error) {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.Exec(
		`INSERT INTO predictions (`+columns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Owner, rec.ImagePath, rec.Cultivar, rec.Confidence,
		rec.Traits.GrainWeight, rec.Traits.Gsw, rec.Traits.PhiPS2, rec.Traits.FertilizerScore,
		rec.Field.AreaAcres, rec.Field.FertilizerRateInr,
		rec.Metrics.UreaRequiredKg, rec.Metrics.FertilizerCostInr, rec.Metrics.TotalProductionQuintals,
		encodeVector(rec.Probabilities), encodeVector(rec.MeanSpectrum),
		rec.CreatedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return Record{}, fmt.Errorf("insert prediction: %w", err)
	}
	return rec, nil
}

// #endregion save

// #region get
// Get retrieves one record by ID.
func (s *Store) Get(id string) (Record, error) {
	row := s.db.QueryRow(`SELECT `+columns+` FROM predictions WHERE id = ?`, id)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, fmt.Errorf("get prediction %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return Record{}, fmt.Errorf("get prediction %s: %w", id, err)
	}
	return rec, nil
}

// #endregion get

// #region list
// List returns records newest first. An empty owner lists every owner.
// A non-positive limit means no limit.
func (s *Store) List(owner string, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.Query(
		`SELECT `+columns+` FROM predictions
		 WHERE (? = '' OR owner = ?)
		 ORDER BY created_at DESC, rowid DESC LIMIT ?`,
		owner, owner, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list predictions: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Owners returns every owner with at least one record, sorted.
func (s *Store) Owners() ([]string, error) {
	rows, err := s.db.Query(`SELECT DISTINCT owner FROM predictions ORDER BY owner`)
	if err != nil {
		return nil, fmt.Errorf("list owners: %w", err)
	}
	defer rows.Close()

	var owners []string
	for rows.Next() {
		var o string
		if err := rows.Scan(&o); err != nil {
			return nil, fmt.Errorf("scan owner: %w", err)
		}
		owners = append(owners, o)
	}
	return owners, rows.Err()
}

// #endregion list

// #region delete
// Delete removes one record.
func (s *Store) Delete(id string) error {
	res, err := s.db.Exec(`DELETE FROM predictions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete prediction %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete prediction %s: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("delete prediction %s: %w", id, ErrNotFound)
	}
	return nil
}

// #endregion delete

// #region scan
type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(sc scanner) (Record, error) {
	var rec Record
	var probs, spectrum []byte
	var created string
	err := sc.Scan(
		&rec.ID, &rec.Owner, &rec.ImagePath, &rec.Cultivar, &rec.Confidence,
		&rec.Traits.GrainWeight, &rec.Traits.Gsw, &rec.Traits.PhiPS2, &rec.Traits.FertilizerScore,
		&rec.Field.AreaAcres, &rec.Field.FertilizerRateInr,
		&rec.Metrics.UreaRequiredKg, &rec.Metrics.FertilizerCostInr, &rec.Metrics.TotalProductionQuintals,
		&probs, &spectrum, &created,
	)
	if err != nil {
		return Record{}, err
	}
	rec.Probabilities = decodeVector(probs)
	rec.MeanSpectrum = decodeVector(spectrum)
	if rec.CreatedAt, err = time.Parse(timeLayout, created); err != nil {
		return Record{}, fmt.Errorf("parse created_at for %s: %w", rec.ID, err)
	}
	return rec, nil
}

// #endregion scan

// #region vector-encoding
// Vectors are stored as little-endian float32. A nil vector is stored as NULL.
func encodeVector(v []float64) []byte {
	if v == nil {
		return nil
	}
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(float32(f)))
	}
	return buf
}

func decodeVector(b []byte) []float64 {
	if b == nil {
		return nil
	}
	v := make([]float64, len(b)/4)
	for i := range v {
		v[i] = float64(math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:])))
	}
	return v
}

// #endregion vector-encoding
