// Package log provides redacting logging functionality built on top of the
// standard slog package.
//
// This package extends slog to provide:
//   - Automatic masking of secret-bearing values before they reach the log
//   - Configurable log levels with verbose mode support
//   - Consistent log formatting across the application
//
// # Why redaction
//
// modscan debug-logs the module parameters it extracts, and playbook
// parameters routinely carry secrets: connection passwords, API tokens,
// vault-encrypted blobs, private key material. The RedactHandler masks
// those values so that verbose scan logs can be shared or attached to
// tickets without leaking credentials:
//   - Attribute keys that name credentials (password, token, vault_password)
//   - Values that look like secrets regardless of key (vault payloads,
//     JWTs, PEM private keys)
//
// # Usage
//
//	// Create a redacting logger
//	logger := log.NewRedactLogger(os.Stderr, true) // verbose=true
//
//	// Use as a standard slog.Logger
//	logger.Debug("module parameters",
//	    "ansible_password", "hunter2",  // Will be masked
//	    "dest", "/etc/app.conf",
//	)
//
//	// Set as default logger
//	slog.SetDefault(logger)
package log
