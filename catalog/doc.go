// Package catalog loads and models the job posting dataset.
//
// The catalog is read-mostly process state: it is loaded once at startup
// from a JSON dataset file and never mutated afterwards. Every other
// component (the semantic index, the keyword index, the scoring engine)
// operates on the postings the catalog hands out.
//
//	postings, err := catalog.LoadFile("job_dataset.json")
//	if err != nil {
//	    log.Fatal(err)
//	}
package catalog
