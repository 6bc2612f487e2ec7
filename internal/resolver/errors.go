package resolver

import "errors"

// Oracle lookup errors.
// These errors classify why a candidate name could not be resolved.
//
// Design decision: We separate "the oracle answered no" from "the oracle
// could not answer" because the two have very different consequences: a
// not-found is a per-candidate negative result worth caching, while an
// unavailable oracle degrades the whole resolver for the rest of the run.
var (
	// ErrModuleNotFound is returned when the oracle ran successfully but
	// does not know the candidate name. Custom and third-party modules
	// outside the installed collections produce this.
	ErrModuleNotFound = errors.New("module not known to documentation oracle")

	// ErrOracleUnavailable is returned when the oracle process could not
	// be started or produced unusable output. The resolver degrades to
	// unresolved names for the remainder of the scan.
	ErrOracleUnavailable = errors.New("documentation oracle unavailable")
)
