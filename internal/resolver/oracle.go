package resolver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"sort"
	"strings"
	"time"
)

// ModuleDoc is the documentation metadata the oracle returns for one module.
type ModuleDoc struct {
	// FQCN is the canonical fully-qualified collection name,
	// for example "ansible.builtin.copy".
	FQCN string

	// ShortName is the module name without its collection prefix.
	ShortName string

	// Collection is the collection the module ships in,
	// for example "ansible.builtin".
	Collection string

	// Description is the module's short description, when available.
	Description string
}

// Oracle answers module documentation queries.
// Lookups are assumed expensive and side-effect-free for a given name; the
// Resolver layers memoization on top.
type Oracle interface {
	// LookupModule returns the documentation metadata for a candidate
	// module name. It returns ErrModuleNotFound when the oracle does not
	// know the name and ErrOracleUnavailable when it cannot answer at all.
	LookupModule(ctx context.Context, name string) (*ModuleDoc, error)
}

// ExecCommandFunc is the function signature for creating exec.Cmd.
// This allows injection of mock implementations for testing.
type ExecCommandFunc func(ctx context.Context, name string, arg ...string) *exec.Cmd

// DefaultOracleCommand is the documentation oracle invocation. The candidate
// module name is appended as the final argument.
var DefaultOracleCommand = []string{"ansible-doc", "--json", "-t", "module"}

// DefaultLookupTimeout bounds a single oracle query. ansible-doc loads the
// full plugin loader on every call, which takes seconds on cold caches but
// should never take this long.
const DefaultLookupTimeout = 30 * time.Second

// AnsibleDocClient is the production Oracle. It shells out to ansible-doc
// once per candidate and parses the JSON document it prints.
type AnsibleDocClient struct {
	// command is the argv prefix the candidate name is appended to.
	command []string

	// timeout bounds a single lookup; zero disables the bound.
	timeout time.Duration

	// execCommand creates the command; replaced in tests.
	execCommand ExecCommandFunc
}

// AnsibleDocOption configures an AnsibleDocClient.
type AnsibleDocOption func(*AnsibleDocClient)

// WithCommand overrides the oracle command line. The candidate module name
// is still appended as the final argument.
func WithCommand(command []string) AnsibleDocOption {
	return func(c *AnsibleDocClient) {
		if len(command) > 0 {
			c.command = command
		}
	}
}

// WithLookupTimeout overrides the per-lookup timeout. Zero disables it.
func WithLookupTimeout(timeout time.Duration) AnsibleDocOption {
	return func(c *AnsibleDocClient) {
		c.timeout = timeout
	}
}

// WithExecCommand replaces the command constructor, allowing tests to
// intercept process execution.
func WithExecCommand(fn ExecCommandFunc) AnsibleDocOption {
	return func(c *AnsibleDocClient) {
		if fn != nil {
			c.execCommand = fn
		}
	}
}

// NewAnsibleDocClient creates an oracle client with the default ansible-doc
// command line.
func NewAnsibleDocClient(opts ...AnsibleDocOption) *AnsibleDocClient {
	client := &AnsibleDocClient{
		command:     DefaultOracleCommand,
		timeout:     DefaultLookupTimeout,
		execCommand: exec.CommandContext,
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// docPayload mirrors the ansible-doc JSON output: one top-level key per
// documented module, keyed by FQCN.
type docPayload map[string]struct {
	Doc struct {
		Module           string `json:"module"`
		Collection       string `json:"collection"`
		ShortDescription string `json:"short_description"`
	} `json:"doc"`
}

// LookupModule implements Oracle.
//
// A non-zero exit from ansible-doc is its not-found signal. A start failure
// (binary missing, permission denied) or unparsable output means the oracle
// itself is unusable.
func (c *AnsibleDocClient) LookupModule(ctx context.Context, name string) (*ModuleDoc, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	args := make([]string, 0, len(c.command))
	args = append(args, c.command[1:]...)
	args = append(args, name)
	cmd := c.execCommand(ctx, c.command[0], args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && ctx.Err() == nil {
			return nil, fmt.Errorf("module %s: %w", name, ErrModuleNotFound)
		}
		return nil, fmt.Errorf("%w: %v", ErrOracleUnavailable, err)
	}

	var payload docPayload
	if err := json.Unmarshal(stdout.Bytes(), &payload); err != nil {
		return nil, fmt.Errorf("%w: unparsable output: %v", ErrOracleUnavailable, err)
	}
	if len(payload) == 0 {
		return nil, fmt.Errorf("module %s: %w", name, ErrModuleNotFound)
	}

	fqcn := pickFQCN(payload, name)
	entry := payload[fqcn]

	doc := &ModuleDoc{
		FQCN:        fqcn,
		ShortName:   entry.Doc.Module,
		Collection:  entry.Doc.Collection,
		Description: entry.Doc.ShortDescription,
	}
	if doc.ShortName == "" {
		doc.ShortName = shortName(fqcn)
	}
	if doc.Collection == "" {
		doc.Collection = collectionOf(fqcn)
	}
	return doc, nil
}

// pickFQCN chooses the payload key matching the queried name. ansible-doc
// answers a single-module query with a single key, but if several appear the
// choice must stay deterministic.
func pickFQCN(payload docPayload, name string) string {
	if _, ok := payload[name]; ok {
		return name
	}
	keys := make([]string, 0, len(payload))
	for key := range payload {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if shortName(key) == shortName(name) {
			return key
		}
	}
	return keys[0]
}

// shortName returns the final dot-separated segment of a module name.
func shortName(name string) string {
	if idx := strings.LastIndex(name, "."); idx >= 0 {
		return name[idx+1:]
	}
	return name
}

// collectionOf returns everything before the final dot-separated segment.
func collectionOf(fqcn string) string {
	if idx := strings.LastIndex(fqcn, "."); idx >= 0 {
		return fqcn[:idx]
	}
	return ""
}
