package model

// UnknownModuleLabel is displayed in place of a fully-qualified name when a
// short module name cannot be resolved against the documentation oracle.
// Custom and third-party modules outside the installed collections end up
// with this label.
const UnknownModuleLabel = "<unknown or custom module>"

// ModuleUsage is one recognized module invocation inside a playbook file.
type ModuleUsage struct {
	// Name is the module name exactly as written in the task, which may be
	// a short name ("copy") or already fully qualified
	// ("ansible.builtin.copy").
	Name string `json:"module"`

	// FQCN is the display form of the fully-qualified collection name.
	// When Resolved is true this is the canonical name returned by the
	// oracle. When resolution failed it falls back to Name if Name is
	// already dotted, otherwise to UnknownModuleLabel.
	FQCN string `json:"fqcn"`

	// Resolved is true if the documentation oracle vouched for FQCN.
	Resolved bool `json:"resolved"`

	// Params holds the invocation parameters in document order. A module
	// invoked with a bare scalar or sequence has a single ValueParam entry.
	// A module invoked with no arguments has an empty Params.
	Params Mapping `json:"params"`
}

// CanonicalName returns the name used for uniqueness counting and summary
// grouping: the oracle-resolved FQCN, or the as-written name when resolution
// failed. Unresolved usages still count toward totals under their own name
// rather than collapsing into a shared placeholder.
func (u ModuleUsage) CanonicalName() string {
	if u.Resolved {
		return u.FQCN
	}
	return u.Name
}

// HasParams reports whether the invocation carries any parameters.
func (u ModuleUsage) HasParams() bool {
	return len(u.Params) > 0
}
