package playbook

import (
	"reflect"
	"strings"
	"testing"

	"github.com/Alexius0815/ansible-module-usage-scanner/internal/document"
	"github.com/Alexius0815/ansible-module-usage-scanner/internal/model"
)

// extract parses src and runs the extractor over its documents.
func extract(t *testing.T, e *Extractor, src string) []Invocation {
	t.Helper()
	roots, err := document.Parse([]byte(src), "test.yml")
	if err != nil {
		t.Fatalf("failed to parse test yaml: %v", err)
	}
	return e.Extract(roots)
}

// names returns the invocation names in discovery order.
func names(invocations []Invocation) []string {
	result := make([]string, 0, len(invocations))
	for _, inv := range invocations {
		result = append(result, inv.Name)
	}
	return result
}

// TestExtractorTaskLists tests extraction from top-level task lists.
func TestExtractorTaskLists(t *testing.T) {
	t.Parallel()
	e := NewExtractor()

	t.Run("finds modules in a flat task list", func(t *testing.T) {
		t.Parallel()
		src := strings.Join([]string{
			"- name: ensure motd exists",
			"  file:",
			"    path: /etc/motd",
			"    state: touch",
			"    mode: \"0644\"",
			"- name: write motd",
			"  copy:",
			"    content: welcome",
			"    dest: /etc/motd",
			"    mode: \"0644\"",
			"",
		}, "\n")
		got := extract(t, e, src)

		if !reflect.DeepEqual(names(got), []string{"file", "copy"}) {
			t.Fatalf("got %v, expected [file copy]", names(got))
		}
		if !reflect.DeepEqual(got[0].Params.Keys(), []string{"path", "state", "mode"}) {
			t.Errorf("got params %v, expected document order", got[0].Params.Keys())
		}
	})

	t.Run("skips non-mapping items", func(t *testing.T) {
		t.Parallel()
		got := extract(t, e, "- just a string\n- 42\n- debug:\n    msg: hi\n")
		if !reflect.DeepEqual(names(got), []string{"debug"}) {
			t.Errorf("got %v, expected [debug]", names(got))
		}
	})

	t.Run("walks every document of a multi-document file", func(t *testing.T) {
		t.Parallel()
		src := "---\n- ping:\n---\n- debug:\n    msg: second doc\n"
		got := extract(t, e, src)
		if !reflect.DeepEqual(names(got), []string{"ping", "debug"}) {
			t.Errorf("got %v, expected [ping debug]", names(got))
		}
	})
}

// TestExtractorPlays tests extraction from play-level mappings.
func TestExtractorPlays(t *testing.T) {
	t.Parallel()
	e := NewExtractor()

	t.Run("finds modules under a play's tasks", func(t *testing.T) {
		t.Parallel()
		src := strings.Join([]string{
			"hosts: webservers",
			"tasks:",
			"  - name: install nginx",
			"    yum:",
			"      name: nginx",
			"      state: present",
			"",
		}, "\n")
		got := extract(t, e, src)
		if !reflect.DeepEqual(names(got), []string{"yum"}) {
			t.Errorf("got %v, expected [yum]", names(got))
		}
	})

	t.Run("descends pre_tasks post_tasks and handlers", func(t *testing.T) {
		t.Parallel()
		src := strings.Join([]string{
			"- hosts: all",
			"  pre_tasks:",
			"    - setup:",
			"  tasks:",
			"    - service:",
			"        name: nginx",
			"        state: started",
			"  post_tasks:",
			"    - debug:",
			"        msg: done",
			"  handlers:",
			"    - name: restart nginx",
			"      service:",
			"        name: nginx",
			"        state: restarted",
			"",
		}, "\n")
		got := extract(t, e, src)
		expected := []string{"setup", "service", "debug", "service"}
		if !reflect.DeepEqual(names(got), expected) {
			t.Errorf("got %v, expected %v", names(got), expected)
		}
	})

	t.Run("ignores mapping documents without task containers", func(t *testing.T) {
		t.Parallel()
		// A vars file: top-level keys must never become candidates even
		// when they collide with module names.
		src := "copy:\n  src: defaults.conf\nnginx_port: 8080\n"
		got := extract(t, e, src)
		if len(got) != 0 {
			t.Errorf("got %v, expected no invocations from a vars file", names(got))
		}
	})

	t.Run("mixes plays and bare tasks in one sequence", func(t *testing.T) {
		t.Parallel()
		src := strings.Join([]string{
			"- hosts: db",
			"  tasks:",
			"    - postgresql_db:",
			"        name: app",
			"- file:",
			"    path: /var/backups",
			"    state: directory",
			"",
		}, "\n")
		got := extract(t, e, src)
		if !reflect.DeepEqual(names(got), []string{"postgresql_db", "file"}) {
			t.Errorf("got %v, expected [postgresql_db file]", names(got))
		}
	})
}

// TestExtractorBlocks tests recursion through block containers.
func TestExtractorBlocks(t *testing.T) {
	t.Parallel()
	e := NewExtractor()

	t.Run("recurses block rescue and always", func(t *testing.T) {
		t.Parallel()
		src := strings.Join([]string{
			"- name: guarded install",
			"  block:",
			"    - yum:",
			"        name: nginx",
			"  rescue:",
			"    - debug:",
			"        msg: install failed",
			"  always:",
			"    - file:",
			"        path: /tmp/install.lock",
			"        state: absent",
			"",
		}, "\n")
		got := extract(t, e, src)
		expected := []string{"yum", "debug", "file"}
		if !reflect.DeepEqual(names(got), expected) {
			t.Errorf("got %v, expected %v", names(got), expected)
		}
	})

	t.Run("recurses nested blocks", func(t *testing.T) {
		t.Parallel()
		src := strings.Join([]string{
			"- block:",
			"    - block:",
			"        - ping:",
			"",
		}, "\n")
		got := extract(t, e, src)
		if !reflect.DeepEqual(names(got), []string{"ping"}) {
			t.Errorf("got %v, expected [ping]", names(got))
		}
	})

	t.Run("block wrapper itself is not an invocation", func(t *testing.T) {
		t.Parallel()
		src := "- name: wrapper\n  when: ansible_os_family == 'Debian'\n  block:\n    - ping:\n"
		got := extract(t, e, src)
		if !reflect.DeepEqual(names(got), []string{"ping"}) {
			t.Errorf("got %v, expected only the nested ping", names(got))
		}
	})
}

// TestExtractorSurvivorRule tests the unique-survivor recognition rule.
func TestExtractorSurvivorRule(t *testing.T) {
	t.Parallel()

	t.Run("reserved directives do not mask the module key", func(t *testing.T) {
		t.Parallel()
		e := NewExtractor()
		src := strings.Join([]string{
			"- name: install packages",
			"  yum:",
			"    name: \"{{ item }}\"",
			"    state: present",
			"  loop:",
			"    - nginx",
			"    - postgresql",
			"  when: ansible_os_family == 'RedHat'",
			"  register: install_result",
			"  notify: restart nginx",
			"  become: true",
			"",
		}, "\n")
		got := extract(t, e, src)
		if !reflect.DeepEqual(names(got), []string{"yum"}) {
			t.Errorf("got %v, expected [yum]", names(got))
		}
	})

	t.Run("skips mappings with several surviving keys", func(t *testing.T) {
		t.Parallel()
		e := NewExtractor()
		got := extract(t, e, "- first_candidate: 1\n  second_candidate: 2\n")
		if len(got) != 0 {
			t.Errorf("got %v, expected ambiguous mapping to be skipped", names(got))
		}
	})

	t.Run("skips keyword-only mappings", func(t *testing.T) {
		t.Parallel()
		e := NewExtractor()
		got := extract(t, e, "- name: just metadata\n  when: false\n")
		if len(got) != 0 {
			t.Errorf("got %v, expected keyword-only mapping to be skipped", names(got))
		}
	})

	t.Run("honors extra keywords", func(t *testing.T) {
		t.Parallel()
		e := NewExtractor("site_directive")
		src := "- site_directive: x\n  debug:\n    msg: hi\n"
		got := extract(t, e, src)
		if !reflect.DeepEqual(names(got), []string{"debug"}) {
			t.Errorf("got %v, expected extra keyword to be filtered", names(got))
		}
		if !e.IsReserved("site_directive") {
			t.Error("expected site_directive to be reserved")
		}
	})
}

// TestExtractorParams tests parameter-set construction.
func TestExtractorParams(t *testing.T) {
	t.Parallel()
	e := NewExtractor()

	t.Run("wraps scalar arguments under the value pseudo parameter", func(t *testing.T) {
		t.Parallel()
		got := extract(t, e, "- command: uptime\n")
		if len(got) != 1 {
			t.Fatalf("got %d invocations, expected 1", len(got))
		}
		value, ok := got[0].Params.Get(model.ValueParam)
		if !ok {
			t.Fatalf("expected %s parameter", model.ValueParam)
		}
		if value != "uptime" {
			t.Errorf("got %v, expected uptime", value)
		}
	})

	t.Run("wraps sequence arguments", func(t *testing.T) {
		t.Parallel()
		got := extract(t, e, "- add_host:\n  - one\n  - two\n")
		if len(got) != 1 {
			t.Fatalf("got %d invocations, expected 1", len(got))
		}
		value, _ := got[0].Params.Get(model.ValueParam)
		if !reflect.DeepEqual(value, []any{"one", "two"}) {
			t.Errorf("got %v, expected the raw sequence", value)
		}
	})

	t.Run("null argument yields empty parameters", func(t *testing.T) {
		t.Parallel()
		got := extract(t, e, "- ping:\n")
		if len(got) != 1 {
			t.Fatalf("got %d invocations, expected 1", len(got))
		}
		if len(got[0].Params) != 0 {
			t.Errorf("got %v, expected no parameters", got[0].Params)
		}
	})

	t.Run("keeps template expressions opaque", func(t *testing.T) {
		t.Parallel()
		got := extract(t, e, "- copy:\n    src: \"{{ config_src }}\"\n    dest: /etc/app.conf\n")
		if len(got) != 1 {
			t.Fatalf("got %d invocations, expected 1", len(got))
		}
		src, _ := got[0].Params.Get("src")
		if src != "{{ config_src }}" {
			t.Errorf("got %v, expected verbatim template expression", src)
		}
	})
}
