package env

import (
	"os"
	"sort"
	"strings"
)

// Env holds an immutable base environment snapshot. The snapshot is taken
// once (or injected in tests) so spawning never reads ambient process
// globals at call time.
type Env struct {
	base map[string]string
}

// New builds an Env from a list of KEY=VALUE entries. Malformed entries
// and empty keys are skipped.
func New(pairs []string) *Env {
	base := make(map[string]string, len(pairs))
	for _, kv := range pairs {
		if i := strings.IndexByte(kv, '='); i > 0 {
			base[kv[:i]] = kv[i+1:]
		}
	}
	return &Env{base: base}
}

// FromOS snapshots the current process environment.
func FromOS() *Env {
	return New(os.Environ())
}

// Merge composes the child environment: base snapshot first, then the
// per-process overlay, overlay wins on key conflict. The result is sorted
// for stable output.
func (e *Env) Merge(overlay map[string]string) []string {
	m := make(map[string]string, len(e.base)+len(overlay))
	for k, v := range e.base {
		m[k] = v
	}
	for k, v := range overlay {
		if k == "" {
			continue
		}
		m[k] = v
	}
	out := make([]string, 0, len(m))
	for k, v := range m {
		out = append(out, k+"="+v)
	}
	sort.Strings(out)
	return out
}
