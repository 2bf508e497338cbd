package integrators

import "errors"

var (
	// ErrSingularSolve means the implicit system of a Cayley step could not
	// be solved reliably. Retry with a smaller step or use Rodrigues.
	ErrSingularSolve = errors.New("integrators: singular linear solve")

	ErrNotSkew = errors.New("integrators: structure matrix is not skew-symmetric")

	ErrInvalidStep = errors.New("integrators: step size must be positive and finite")

	ErrUnknownMethod = errors.New("integrators: unknown method")
)
