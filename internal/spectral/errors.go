package spectral

import "errors"

var (
	// ErrVerificationFailed means an exactness check failed: a non-integer
	// coefficient, a non-zero final Faddeev–LeVerrier matrix, a Cayley–Hamilton
	// residue, or odd coefficients on a skew-symmetric input.
	ErrVerificationFailed = errors.New("spectral: verification failed")

	ErrNotSquare = errors.New("spectral: matrix is not square")

	// ErrNumericalInconsistency is attached to an EigenvalueSet as a warning;
	// it is never returned as the error of an operation.
	ErrNumericalInconsistency = errors.New("spectral: numerical inconsistency")

	ErrNoConvergence = errors.New("spectral: eigensolver did not converge")
)
