package ldd

import (
	"sort"
)

// Closure maps a library soname to its resolved absolute path.
// An empty path means the dynamic linker could not resolve the library.
type Closure map[string]string

// Library is a single Closure entry
type Library struct {
	Soname string `json:"soname"`
	Path   string `json:"path,omitempty"`
}

// Resolved reports whether the linker found the library on disk
func (l Library) Resolved() bool {
	return l.Path != ""
}

// Sorted returns the entries ordered by soname
func (c Closure) Sorted() []Library {
	libs := make([]Library, 0, len(c))
	for soname, path := range c {
		libs = append(libs, Library{Soname: soname, Path: path})
	}
	sort.Slice(libs, func(i, j int) bool {
		return libs[i].Soname < libs[j].Soname
	})
	return libs
}

// Resolved returns only the entries that have a path
func (c Closure) Resolved() []Library {
	var libs []Library
	for _, lib := range c.Sorted() {
		if lib.Resolved() {
			libs = append(libs, lib)
		}
	}
	return libs
}

// Unresolved returns the sonames the linker reported as not found
func (c Closure) Unresolved() []string {
	var names []string
	for _, lib := range c.Sorted() {
		if !lib.Resolved() {
			names = append(names, lib.Soname)
		}
	}
	return names
}
