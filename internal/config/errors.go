package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() and provide specific
// information about what is wrong with the configuration.
//
// Design decision: We use package-level sentinel errors rather than
// creating new error instances in Validate(). This allows callers to use
// errors.Is() for programmatic error handling while still providing
// human-readable messages. Using errors.New() here rather than fmt.Errorf()
// because we don't need to include dynamic values in these messages.
var (
	// ErrNoTarget is returned when no scan target is specified.
	// The scan command requires a playbook file or directory as its
	// positional argument.
	ErrNoTarget = errors.New("no target specified: provide a playbook file or directory to scan")

	// ErrInvalidWorkers is returned when the worker count is not positive.
	// Zero workers would mean no files are ever scanned.
	ErrInvalidWorkers = errors.New("invalid worker count: must be positive")

	// ErrInvalidView is returned when the view name is not recognized.
	ErrInvalidView = errors.New("invalid view: must be one of tree, flat, summary")

	// ErrInvalidFormat is returned when the output format is not recognized.
	ErrInvalidFormat = errors.New("invalid output format: must be one of text, json, csv, html, markdown")

	// ErrConflictingOracleFlags is returned when --oracle and --no-oracle
	// are specified together. A custom oracle command and a disabled
	// oracle cannot both be honored.
	ErrConflictingOracleFlags = errors.New("conflicting oracle flags: --oracle and --no-oracle cannot be used together")
)
