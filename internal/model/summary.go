package model

import "sort"

// Summary contains the derived aggregation views of a scan report.
// It is built once from the complete file results and consumed by every
// renderer, so the per-view loops in the renderers stay trivial.
//
// Design decision: All grouping happens over canonical module names
// (ModuleUsage.CanonicalName) because:
//  1. Short and fully-qualified spellings of one module must count once
//  2. Unresolved modules must still appear under their own written name
//  3. Renderers should never re-derive grouping rules independently
type Summary struct {
	// Roles maps each role label (including NotInRole) to the sorted
	// canonical names of the modules used inside it.
	Roles map[string][]string `json:"roles,omitempty"`

	// UniqueModules is the sorted list of all canonical module names seen
	// in the scan.
	UniqueModules []string `json:"unique_modules,omitempty"`

	// ModuleFiles maps each canonical module name to the sorted list of
	// files that invoke it.
	ModuleFiles map[string][]string `json:"module_files,omitempty"`
}

// UniqueModuleCount returns the number of distinct canonical module names.
func (s Summary) UniqueModuleCount() int {
	return len(s.UniqueModules)
}

// RoleNames returns the role labels in sorted order.
func (s Summary) RoleNames() []string {
	names := make([]string, 0, len(s.Roles))
	for name := range s.Roles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ModuleNames returns the canonical module names of ModuleFiles in sorted
// order.
func (s Summary) ModuleNames() []string {
	names := make([]string, 0, len(s.ModuleFiles))
	for name := range s.ModuleFiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// BuildSummary computes the derived views from the report's file results.
// The scan driver calls this once after all files are processed; the report
// is immutable afterwards.
func (r *ScanReport) BuildSummary() {
	roleSet := make(map[string]map[string]struct{})
	moduleFileSet := make(map[string]map[string]struct{})
	uniqueSet := make(map[string]struct{})

	for _, file := range r.Files {
		role := file.RoleLabel()
		for _, usage := range file.Usages {
			canonical := usage.CanonicalName()
			uniqueSet[canonical] = struct{}{}

			if roleSet[role] == nil {
				roleSet[role] = make(map[string]struct{})
			}
			roleSet[role][canonical] = struct{}{}

			if moduleFileSet[canonical] == nil {
				moduleFileSet[canonical] = make(map[string]struct{})
			}
			moduleFileSet[canonical][file.Path] = struct{}{}
		}
	}

	summary := Summary{}
	if len(uniqueSet) > 0 {
		summary.Roles = make(map[string][]string, len(roleSet))
		for role, modules := range roleSet {
			summary.Roles[role] = sortedKeys(modules)
		}
		summary.UniqueModules = sortedKeys(uniqueSet)
		summary.ModuleFiles = make(map[string][]string, len(moduleFileSet))
		for module, files := range moduleFileSet {
			summary.ModuleFiles[module] = sortedKeys(files)
		}
	}
	r.Summary = summary
}

// sortedKeys returns the keys of a string set in sorted order.
func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for key := range set {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
