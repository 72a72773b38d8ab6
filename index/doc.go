// Package index implements the persisted semantic index over job postings.
//
// The index is built exactly once per catalog snapshot: every posting's
// description text is embedded and stored against its ID. It is immutable
// after build and safe for concurrent searches. A persisted copy carries a
// fingerprint of the catalog it was built from; loading against a changed
// catalog fails instead of silently serving stale vectors.
//
//	idx, err := index.Build(ctx, provider, cat)
//	...
//	hits, err := idx.Search(queryVec, 5)
package index
