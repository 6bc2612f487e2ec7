// Package config provides configuration structures and utilities for modscan.
// It defines the scan options populated from CLI flags, the .modscan
// configuration file format, and validation of the effective configuration.
package config
