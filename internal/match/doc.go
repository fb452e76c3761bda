// Package match provides identifier normalization and edit-distance ranking
// used to produce "did you mean" hints when an expression names a member
// that does not exist on the selected type.
//
// Key functions:
//   - NormalizeIdent: folds an identifier for fuzzy comparison
//   - Levenshtein: computes edit distance between strings
//   - Suggest: ranks candidate member names against a misspelled one
package match
