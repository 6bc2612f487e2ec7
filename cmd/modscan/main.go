// Package main provides the entry point for the modscan CLI.
//
// modscan reports which Ansible modules a playbook repository uses,
// where they are used, and with which parameters.
//
// Usage:
//
//	modscan scan <path>
//	modscan compare <path>
//
// See --help for all available options.
package main

// main is the entry point for modscan.
func main() {
	Execute()
}
