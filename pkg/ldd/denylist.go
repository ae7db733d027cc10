package ldd

import (
	"path/filepath"
	"strings"
)

// Rule matches a soname exactly or by prefix
type Rule struct {
	Name   string
	Prefix bool
}

// Match checks the rule against the base name of soname
func (r Rule) Match(soname string) bool {
	base := filepath.Base(soname)
	if r.Prefix {
		return strings.HasPrefix(base, r.Name)
	}
	return base == r.Name
}

// String renders the rule in its config form: name for exact, name* for prefix
func (r Rule) String() string {
	if r.Prefix {
		return r.Name + "*"
	}
	return r.Name
}

// ParseRule reads a config entry; a trailing '*' makes it a prefix rule
func ParseRule(s string) Rule {
	s = strings.TrimSpace(s)
	if strings.HasSuffix(s, "*") {
		return Rule{Name: strings.TrimSuffix(s, "*"), Prefix: true}
	}
	return Rule{Name: s}
}

// Denylist lists libraries that every target host provides and that must
// never be embedded in a package.
type Denylist []Rule

// DefaultDenylist covers the C runtime, the dynamic linker and the
// kernel-provided virtual objects.
var DefaultDenylist = Denylist{
	// glibc and musl C runtimes
	{Name: "libc.so.6"},
	{Name: "libc.musl-", Prefix: true},
	// ld-linux.so.2, ld-linux-x86-64.so.2, ld-linux-armhf.so.3, ld-linux-aarch64.so.1
	{Name: "ld-linux", Prefix: true},
	{Name: "ld-musl-", Prefix: true},
	{Name: "ld64.so.1"},
	{Name: "ld64.so.2"},
	// vDSO
	{Name: "linux-vdso.so.1"},
	{Name: "linux-vdso64.so.1"},
	{Name: "linux-gate.so.1"},
}

// With returns a new denylist extended by extra config entries
func (d Denylist) With(extra ...string) Denylist {
	out := make(Denylist, len(d), len(d)+len(extra))
	copy(out, d)
	for _, e := range extra {
		r := ParseRule(e)
		if r.Name == "" {
			continue
		}
		out = append(out, r)
	}
	return out
}

// Excludes reports whether soname matches any rule
func (d Denylist) Excludes(soname string) bool {
	for _, r := range d {
		if r.Match(soname) {
			return true
		}
	}
	return false
}

// Filter returns a copy of c without the denied entries
func (d Denylist) Filter(c Closure) Closure {
	out := make(Closure, len(c))
	for soname, path := range c {
		if d.Excludes(soname) {
			continue
		}
		out[soname] = path
	}
	return out
}
