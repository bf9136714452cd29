// Package pathutil turns stored archive filenames into slash-separated paths
// and answers directory questions about them. Archives store no directories;
// every directory is implied by the files below it.
package pathutil

import (
	"path"
	"strings"
)

// Base returns the last element of p. The root ("" or ".") is ".".
func Base(p string) string {
	if p == "" || p == "." {
		return "."
	}
	return path.Base(p)
}

// DirPrefix returns the prefix shared by every path below dir. The root has
// the empty prefix, which every path matches.
func DirPrefix(dir string) string {
	if dir == "." || dir == "" {
		return ""
	}
	return dir + "/"
}

// Child returns the element of p directly below prefix.
//
// implied is true when p continues past that element, so the element is a
// directory implied by p rather than the file p itself. An archive may hold
// both "Data" and "Data/Map001.rvdata2"; for prefix "" both paths yield the
// child "Data", once as a file and once implied.
//
// ok is false when p is not below prefix or p names the directory itself.
func Child(p, prefix string) (name string, implied, ok bool) {
	rel, found := strings.CutPrefix(p, prefix)
	if !found || rel == "" {
		return "", false, false
	}
	name, _, implied = strings.Cut(rel, "/")
	return name, implied, true
}
