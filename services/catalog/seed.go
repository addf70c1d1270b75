package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
)

// RecordWriter is satisfied by both a mystore.Store[CatalogRecord] and a SQLRepository.
type RecordWriter interface {
	Put(c context.Context, uid string, rec CatalogRecord) error
}

// Seed stores the JSON array of records read from r. Records without an id are rejected.
func Seed(c context.Context, store RecordWriter, r io.Reader) (int, error) {
	records := []CatalogRecord{}
	err := json.NewDecoder(r).Decode(&records)
	if err != nil {
		return 0, fmt.Errorf("error decoding catalog seed: %w", err)
	}

	for idx, rec := range records {
		if rec.ID == "" {
			return idx, fmt.Errorf("catalog seed record %d has no id", idx)
		}
		err = store.Put(c, rec.ID, rec)
		if err != nil {
			return idx, fmt.Errorf("error storing seed record %s: %w", rec.ID, err)
		}
	}

	return len(records), nil
}
