package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

const createRecordsTable = `
	CREATE TABLE IF NOT EXISTS catalog_records (
		id            TEXT PRIMARY KEY,
		slug          TEXT NOT NULL DEFAULT '',
		name          TEXT NOT NULL DEFAULT '',
		description   TEXT NOT NULL DEFAULT '',
		sku           TEXT NOT NULL DEFAULT '',
		list_price    INTEGER NOT NULL DEFAULT 0,
		sale_price    INTEGER NOT NULL DEFAULT 0,
		stock         INTEGER NOT NULL DEFAULT 0,
		category_id   TEXT NOT NULL DEFAULT '',
		category_name TEXT NOT NULL DEFAULT '',
		tags          TEXT NOT NULL DEFAULT '[]',
		images        TEXT NOT NULL DEFAULT '[]',
		is_active     INTEGER NOT NULL DEFAULT 0,
		is_featured   INTEGER NOT NULL DEFAULT 0,
		created_at    INTEGER NOT NULL DEFAULT 0
	)`

const recordColumns = `id, slug, name, description, sku, list_price, sale_price, stock,
	category_id, category_name, tags, images, is_active, is_featured, created_at`

// SQLRepository keeps catalog records in a relational table and evaluates the repository filter in SQL.
type SQLRepository struct {
	db *sql.DB
}

func NewSQLRepository(c context.Context, db *sql.DB) (*SQLRepository, error) {
	_, err := db.ExecContext(c, createRecordsTable)
	if err != nil {
		return nil, fmt.Errorf("error creating catalog table: %w", err)
	}
	return &SQLRepository{
		db: db,
	}, nil
}

func (r *SQLRepository) Fetch(c context.Context, filter RepositoryFilter) ([]CatalogRecord, error) {
	where, args := filter.sqlWhere()
	rows, err := r.db.QueryContext(c, "SELECT "+recordColumns+" FROM catalog_records"+where+" ORDER BY id", args...)
	if err != nil {
		return nil, fmt.Errorf("error fetching catalog records: %w", err)
	}
	defer rows.Close()

	records := []CatalogRecord{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("error iterating catalog records: %w", err)
	}
	return records, nil
}

func (r *SQLRepository) Count(c context.Context, filter RepositoryFilter) (int, error) {
	where, args := filter.sqlWhere()
	count := 0
	err := r.db.QueryRowContext(c, "SELECT COUNT(*) FROM catalog_records"+where, args...).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("error counting catalog records: %w", err)
	}
	return count, nil
}

func (r *SQLRepository) Get(c context.Context, productID string) (CatalogRecord, bool, error) {
	row := r.db.QueryRowContext(c, "SELECT "+recordColumns+" FROM catalog_records WHERE id = ?", productID)
	rec, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return CatalogRecord{}, false, nil
		}
		return CatalogRecord{}, false, err
	}
	return rec, true, nil
}

// Put inserts or replaces the record stored under uid.
func (r *SQLRepository) Put(c context.Context, uid string, rec CatalogRecord) error {
	tags, err := json.Marshal(nonNil(rec.Tags))
	if err != nil {
		return fmt.Errorf("error encoding tags of %s: %w", uid, err)
	}
	images, err := json.Marshal(nonNil(rec.Images))
	if err != nil {
		return fmt.Errorf("error encoding images of %s: %w", uid, err)
	}

	_, err = r.db.ExecContext(c, "INSERT OR REPLACE INTO catalog_records ("+recordColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		uid, rec.Slug, rec.Name, rec.Description, rec.SKU, rec.ListPrice, rec.SalePrice, rec.Stock,
		rec.CategoryID, rec.CategoryName, string(tags), string(images), rec.IsActive, rec.IsFeatured, rec.CreatedAt.UnixNano())
	if err != nil {
		return fmt.Errorf("error storing catalog record %s: %w", uid, err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (CatalogRecord, error) {
	var (
		rec       CatalogRecord
		tags      string
		images    string
		createdAt int64
	)
	err := row.Scan(&rec.ID, &rec.Slug, &rec.Name, &rec.Description, &rec.SKU, &rec.ListPrice, &rec.SalePrice, &rec.Stock,
		&rec.CategoryID, &rec.CategoryName, &tags, &images, &rec.IsActive, &rec.IsFeatured, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return CatalogRecord{}, err
		}
		return CatalogRecord{}, fmt.Errorf("error scanning catalog record: %w", err)
	}

	err = json.Unmarshal([]byte(tags), &rec.Tags)
	if err != nil {
		return CatalogRecord{}, fmt.Errorf("error decoding tags of %s: %w", rec.ID, err)
	}
	err = json.Unmarshal([]byte(images), &rec.Images)
	if err != nil {
		return CatalogRecord{}, fmt.Errorf("error decoding images of %s: %w", rec.ID, err)
	}
	rec.CreatedAt = time.Unix(0, createdAt).UTC()

	return rec, nil
}

func (f RepositoryFilter) sqlWhere() (string, []any) {
	conditions := []string{}
	args := []any{}
	if f.ActiveOnly {
		conditions = append(conditions, "is_active = 1")
	}
	if f.CategoryID != "" {
		conditions = append(conditions, "category_id = ?")
		args = append(args, f.CategoryID)
	}
	if f.Slug != "" {
		conditions = append(conditions, "slug = ?")
		args = append(args, f.Slug)
	}
	if len(conditions) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
