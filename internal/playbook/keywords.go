package playbook

// reservedKeywords is the closed set of task and play directives that are
// recognized structurally and never treated as module candidates. The set
// follows the common task/play grammar: metadata, guards, loops, delegation,
// privilege escalation, handler wiring, includes, and the play-level section
// keys. Scan configuration may extend it for site-specific dialects, but
// nothing is ever removed from it.
var reservedKeywords = map[string]struct{}{
	// Task metadata and guards
	"name":         {},
	"when":         {},
	"failed_when":  {},
	"changed_when": {},
	"tags":         {},
	"register":     {},
	"vars":         {},
	"args":         {},
	"environment":  {},

	// Loop constructs and their control directives
	"with_items":   {},
	"loop":         {},
	"loop_control": {},
	"retries":      {},
	"delay":        {},
	"until":        {},

	// Delegation and execution context
	"delegate_to":      {},
	"delegate_facts":   {},
	"run_once":         {},
	"throttle":         {},
	"ignore_errors":    {},
	"any_errors_fatal": {},
	"check_mode":       {},
	"diff":             {},
	"no_log":           {},

	// Privilege escalation
	"become":        {},
	"become_user":   {},
	"become_method": {},

	// Handler wiring
	"notify": {},
	"listen": {},

	// Block containers
	"block":  {},
	"rescue": {},
	"always": {},

	// Includes and imports
	"import_tasks":    {},
	"include_tasks":   {},
	"import_playbook": {},
	"import_role":     {},
	"include_role":    {},

	// Facts and meta actions
	"set_fact": {},
	"meta":     {},

	// Module resolution context
	"collections":     {},
	"module_defaults": {},

	// Play-level section keys
	"hosts":        {},
	"roles":        {},
	"tasks":        {},
	"pre_tasks":    {},
	"post_tasks":   {},
	"handlers":     {},
	"gather_facts": {},
	"vars_files":   {},
}

// containerKeys are the mapping keys whose sequence values are task lists
// in their own right and are descended into recursively. All of them are
// also reserved keywords.
var containerKeys = map[string]struct{}{
	"block":      {},
	"rescue":     {},
	"always":     {},
	"tasks":      {},
	"pre_tasks":  {},
	"post_tasks": {},
	"handlers":   {},
}

// isContainer reports whether key introduces a nested task list.
func isContainer(key string) bool {
	_, ok := containerKeys[key]
	return ok
}
