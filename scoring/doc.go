// Package scoring turns a retrieval shortlist into ranked, explainable
// match results. Three bounded signals are blended per job:
//
//   - semantic score: raw index distance mapped through 1/(1+d)
//   - skill match: fraction of the job's required skills the resume has
//   - experience score: a pluggable seniority factor (fixed baseline by
//     default)
//
// total = 0.5*semantic + 0.3*skill + 0.2*experience, everything in [0,1].
// The weights are fixed and identical for every candidate in a ranking
// call. Alongside each score the engine reports the job's missing skills
// in the posting's declared order.
package scoring
