// Package survey enumerates every graph on n vertices, groups them by the
// exact characteristic polynomial of their skew structure matrix and flags
// the spectra that have a closed form.
//
// Isomorphic copies are filtered with an invariant fingerprint (sorted
// degree sequence, sorted endpoint-degree pairs and edge count). The
// fingerprint is not a canonical labeling: distinct graphs with equal
// fingerprints are merged, so counts are a lower bound on the number of
// isomorphism classes.
package survey
