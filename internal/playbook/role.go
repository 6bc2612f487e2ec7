package playbook

import (
	"path/filepath"
	"strings"
)

// RoleFromPath returns the role a playbook file belongs to, derived purely
// from its path: the segment following the first directory literally named
// "roles". Files outside any roles/ tree return the empty role. No file
// content is consulted.
func RoleFromPath(path string) string {
	parts := strings.Split(path, string(filepath.Separator))
	for i, part := range parts {
		if part == "roles" {
			if i+1 < len(parts) {
				return parts[i+1]
			}
			return ""
		}
	}
	return ""
}
