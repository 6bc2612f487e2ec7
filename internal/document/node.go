package document

import (
	"gopkg.in/yaml.v3"

	"github.com/Alexius0815/ansible-module-usage-scanner/internal/model"
)

// YAML resolver tags used when classifying scalar nodes.
const (
	nullTag  = "!!null"
	boolTag  = "!!bool"
	intTag   = "!!int"
	floatTag = "!!float"
	mergeTag = "!!merge"
)

// MappingEntry is one key/value pair of a YAML mapping node.
type MappingEntry struct {
	// Key is the key scalar's text.
	Key string

	// Value is the value node, with aliases still unresolved. Callers pass
	// it back through Resolve, Entries, or Value as needed.
	Value *yaml.Node
}

// Resolve follows alias nodes to their anchor target.
// It returns nil for nil input and the node itself when it is not an alias.
func Resolve(node *yaml.Node) *yaml.Node {
	for node != nil && node.Kind == yaml.AliasNode {
		node = node.Alias
	}
	return node
}

// Entries returns the key/value pairs of a mapping node in document order.
// The second return value is false when the node is not a mapping.
//
// Merge keys (<<) are expanded with standard YAML merge semantics: keys
// written directly in the mapping override merged ones, and when several
// mappings are merged the earliest source wins. Duplicate explicit keys
// keep their first occurrence.
func Entries(node *yaml.Node) ([]MappingEntry, bool) {
	node = Resolve(node)
	if node == nil || node.Kind != yaml.MappingNode {
		return nil, false
	}

	// Pre-pass so merged keys know whether an explicit key overrides them.
	explicit := make(map[string]struct{})
	for i := 0; i+1 < len(node.Content); i += 2 {
		key := Resolve(node.Content[i])
		if key.Tag != mergeTag {
			explicit[key.Value] = struct{}{}
		}
	}

	seen := make(map[string]struct{})
	entries := make([]MappingEntry, 0, len(node.Content)/2)

	appendEntry := func(key string, value *yaml.Node, merged bool) {
		if _, dup := seen[key]; dup {
			return
		}
		if merged {
			if _, overridden := explicit[key]; overridden {
				return
			}
		}
		seen[key] = struct{}{}
		entries = append(entries, MappingEntry{Key: key, Value: value})
	}

	var expandMerge func(value *yaml.Node)
	expandMerge = func(value *yaml.Node) {
		value = Resolve(value)
		if value == nil {
			return
		}
		switch value.Kind {
		case yaml.MappingNode:
			merged, _ := Entries(value)
			for _, entry := range merged {
				appendEntry(entry.Key, entry.Value, true)
			}
		case yaml.SequenceNode:
			for _, item := range value.Content {
				expandMerge(item)
			}
		}
	}

	for i := 0; i+1 < len(node.Content); i += 2 {
		key := Resolve(node.Content[i])
		value := node.Content[i+1]
		if key.Tag == mergeTag {
			expandMerge(value)
			continue
		}
		appendEntry(key.Value, value, false)
	}
	return entries, true
}

// Value converts a node tree into the report value model: nil, string,
// bool, int64, float64, []any, and model.Mapping. Scalars with unknown
// tags such as !vault keep their raw text so that encrypted or templated
// values survive into reports verbatim.
func Value(node *yaml.Node) any {
	node = Resolve(node)
	if node == nil {
		return nil
	}

	switch node.Kind {
	case yaml.DocumentNode:
		if len(node.Content) == 0 {
			return nil
		}
		return Value(node.Content[0])

	case yaml.ScalarNode:
		return scalarValue(node)

	case yaml.SequenceNode:
		items := make([]any, 0, len(node.Content))
		for _, item := range node.Content {
			items = append(items, Value(item))
		}
		return items

	case yaml.MappingNode:
		entries, _ := Entries(node)
		mapping := make(model.Mapping, 0, len(entries))
		for _, entry := range entries {
			mapping = append(mapping, model.Entry{Key: entry.Key, Value: Value(entry.Value)})
		}
		return mapping
	}
	return nil
}

// scalarValue converts a scalar node according to its resolved tag.
// Decode failures and unknown tags fall back to the raw scalar text.
func scalarValue(node *yaml.Node) any {
	switch node.Tag {
	case nullTag:
		return nil
	case boolTag:
		var b bool
		if err := node.Decode(&b); err == nil {
			return b
		}
	case intTag:
		var i int64
		if err := node.Decode(&i); err == nil {
			return i
		}
	case floatTag:
		var f float64
		if err := node.Decode(&f); err == nil {
			return f
		}
	}
	return node.Value
}
