package index

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/vinayprograms/jobmatch/catalog"
	"github.com/vinayprograms/jobmatch/errors"
)

// indexFile is the on-disk representation of a built index.
type indexFile struct {
	Dimension   int     `json:"dimension"`
	Count       int     `json:"count"`
	Fingerprint string  `json:"fingerprint"`
	Entries     []Entry `json:"entries"`
}

// Save writes the index to path as JSON.
func (idx *SemanticIndex) Save(path string) error {
	f := indexFile{
		Dimension:   idx.dimension,
		Count:       len(idx.entries),
		Fingerprint: fmt.Sprintf("%016x", idx.fingerprint),
		Entries:     idx.entries,
	}
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to encode index")
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.Wrap(err, "failed to write index file")
	}
	return nil
}

// Load restores a persisted index and validates it against the catalog it
// is meant to serve. Any inconsistency — entry count, dimension, or
// catalog fingerprint — fails with INDEX_CORRUPT instead of serving a
// partial or stale index.
func Load(path string, cat *catalog.Catalog) (*SemanticIndex, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read index file")
	}

	var f indexFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrCodeIndexCorrupt, "index file is not valid JSON")
	}

	if len(f.Entries) == 0 {
		return nil, errors.IndexCorrupt("index file holds zero entries")
	}
	if f.Count != len(f.Entries) {
		return nil, errors.Newf(errors.ErrCodeIndexCorrupt,
			"index file declares %d entries but holds %d", f.Count, len(f.Entries))
	}
	if f.Count != cat.Len() {
		return nil, errors.Newf(errors.ErrCodeIndexCorrupt,
			"index holds %d entries, catalog has %d postings", f.Count, cat.Len())
	}

	want := fmt.Sprintf("%016x", Fingerprint(cat))
	if f.Fingerprint != want {
		return nil, errors.IndexCorrupt("index was built from a different catalog snapshot",
			errors.WithMetadata("index_fingerprint", f.Fingerprint),
			errors.WithMetadata("catalog_fingerprint", want))
	}

	// With the count check above, unique known IDs guarantee every posting
	// is covered.
	seen := make(map[string]bool, len(f.Entries))
	for i := range f.Entries {
		if len(f.Entries[i].Vector) != f.Dimension {
			return nil, errors.Newf(errors.ErrCodeIndexCorrupt,
				"entry %s has dimension %d, index declares %d",
				f.Entries[i].JobID, len(f.Entries[i].Vector), f.Dimension)
		}
		if cat.Get(f.Entries[i].JobID) == nil {
			return nil, errors.Newf(errors.ErrCodeIndexCorrupt,
				"entry %s is not in the catalog", f.Entries[i].JobID)
		}
		if seen[f.Entries[i].JobID] {
			return nil, errors.Newf(errors.ErrCodeIndexCorrupt,
				"entry %s appears more than once", f.Entries[i].JobID)
		}
		seen[f.Entries[i].JobID] = true
	}

	return &SemanticIndex{
		entries:     f.Entries,
		dimension:   f.Dimension,
		fingerprint: Fingerprint(cat),
	}, nil
}

// Exists reports whether a persisted index is present at path.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
