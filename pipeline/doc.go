// Package pipeline orchestrates resume analysis: retrieval over the
// semantic index followed by scoring, behind the single entry point the
// service layer calls.
//
// The pipeline owns the index lifecycle. The index is built (or loaded
// from disk) exactly once, guarded against concurrent first requests; a
// failed build is sticky and every later call fails with it rather than
// serving results from a partial index. After the build, Analyze is
// read-only against shared state and safe to call from any number of
// goroutines.
//
//	p, _ := pipeline.New(pipeline.Config{Catalog: cat, Provider: embedder})
//	results, err := p.Analyze(ctx, resumeText, skills, 5)
package pipeline
