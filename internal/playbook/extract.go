package playbook

import (
	"gopkg.in/yaml.v3"

	"github.com/Alexius0815/ansible-module-usage-scanner/internal/document"
	"github.com/Alexius0815/ansible-module-usage-scanner/internal/model"
)

// Invocation is one candidate module invocation found in a document,
// before name resolution.
type Invocation struct {
	// Name is the surviving mapping key, the module name as written.
	Name string

	// Params holds the invocation parameters in document order. Bare
	// scalar and sequence arguments are wrapped under model.ValueParam;
	// a null or absent argument yields an empty mapping.
	Params model.Mapping
}

// Extractor finds module invocations in playbook document trees.
// The zero value is not usable; construct it with NewExtractor.
type Extractor struct {
	// reserved holds the keyword set used for survivor filtering.
	reserved map[string]struct{}
}

// NewExtractor creates an extractor using the built-in reserved keywords
// plus any site-specific extras. Extras only ever grow the set, so a
// misconfigured extra can hide a module but never invent one.
func NewExtractor(extraKeywords ...string) *Extractor {
	reserved := make(map[string]struct{}, len(reservedKeywords)+len(extraKeywords))
	for keyword := range reservedKeywords {
		reserved[keyword] = struct{}{}
	}
	for _, keyword := range extraKeywords {
		if keyword != "" {
			reserved[keyword] = struct{}{}
		}
	}
	return &Extractor{reserved: reserved}
}

// IsReserved reports whether key is a reserved directive rather than a
// module candidate.
func (e *Extractor) IsReserved(key string) bool {
	_, ok := e.reserved[key]
	return ok
}

// Extract walks the document roots of one file and returns the module
// invocations in document order, depth-first.
//
// A top-level sequence is a task list. A top-level mapping is a play or a
// vars file: only its container keys (tasks, handlers, and the like) are
// descended into, so plain data files never produce false candidates.
func (e *Extractor) Extract(roots []*yaml.Node) []Invocation {
	var invocations []Invocation
	for _, root := range roots {
		root = document.Resolve(root)
		if root == nil {
			continue
		}
		switch root.Kind {
		case yaml.SequenceNode:
			invocations = e.taskList(root, invocations)
		case yaml.MappingNode:
			invocations = e.containers(root, invocations)
		}
	}
	return invocations
}

// taskList iterates a sequence sitting in a task-list position.
// Non-mapping items are skipped.
func (e *Extractor) taskList(node *yaml.Node, invocations []Invocation) []Invocation {
	node = document.Resolve(node)
	if node == nil || node.Kind != yaml.SequenceNode {
		return invocations
	}
	for _, item := range node.Content {
		item = document.Resolve(item)
		if item == nil || item.Kind != yaml.MappingNode {
			continue
		}
		invocations = e.task(item, invocations)
	}
	return invocations
}

// task inspects one task-like mapping. If exactly one key survives keyword
// filtering it is the module invocation; zero or several survivors mean the
// mapping is not a recognized invocation and is skipped. Either way, nested
// container keys are descended into afterwards.
func (e *Extractor) task(mapping *yaml.Node, invocations []Invocation) []Invocation {
	entries, ok := document.Entries(mapping)
	if !ok {
		return invocations
	}

	var survivor *document.MappingEntry
	survivors := 0
	for i := range entries {
		if e.IsReserved(entries[i].Key) {
			continue
		}
		survivors++
		survivor = &entries[i]
	}
	if survivors == 1 {
		invocations = append(invocations, Invocation{
			Name:   survivor.Key,
			Params: invocationParams(survivor.Value),
		})
	}

	for _, entry := range entries {
		if isContainer(entry.Key) {
			invocations = e.taskList(entry.Value, invocations)
		}
	}
	return invocations
}

// containers descends into the container keys of a play-level mapping
// without treating the mapping itself as a task candidate.
func (e *Extractor) containers(mapping *yaml.Node, invocations []Invocation) []Invocation {
	entries, ok := document.Entries(mapping)
	if !ok {
		return invocations
	}
	for _, entry := range entries {
		if isContainer(entry.Key) {
			invocations = e.taskList(entry.Value, invocations)
		}
	}
	return invocations
}

// invocationParams converts a module argument node into the parameter
// mapping of the report model.
func invocationParams(value *yaml.Node) model.Mapping {
	value = document.Resolve(value)
	if value == nil {
		return model.Mapping{}
	}
	if value.Kind == yaml.MappingNode {
		if mapping, ok := document.Value(value).(model.Mapping); ok {
			return mapping
		}
		return model.Mapping{}
	}
	converted := document.Value(value)
	if converted == nil {
		return model.Mapping{}
	}
	return model.Mapping{{Key: model.ValueParam, Value: converted}}
}
