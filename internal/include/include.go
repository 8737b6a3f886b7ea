// © 2024 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

// Package include expands server-side include directives of the form
//
//	<!--#include file="name" -->
//
// in HTML documents.
//
// Expansion is a single pass: text inserted by a directive is never scanned
// again, so nested directives appear in the output literally. A directive
// whose file cannot be read is replaced by an HTML comment naming the file.
package include

import (
	"fmt"
	"io/fs"
	"path"
	"regexp"
	"strings"
	"unicode/utf8"
)

var directiveRe = regexp.MustCompile(`<!--#include file="([^"]+)" -->`)

// Stats describes the outcome of an expansion.
type Stats struct {
	Resolved int // directives replaced by file contents
	Missing  int // directives replaced by an error marker
}

// Expand replaces every include directive in content with the contents of the
// named file. Names are resolved relative to dir within fsys.
func Expand(fsys fs.FS, content, dir string) string {
	out, _ := ExpandStats(fsys, content, dir)
	return out
}

// ExpandStats is like [Expand], but also reports how many directives were
// resolved.
func ExpandStats(fsys fs.FS, content, dir string) (string, Stats) {
	var st Stats

	matches := directiveRe.FindAllStringSubmatchIndex(content, -1)
	if len(matches) == 0 {
		return content, st
	}

	var sb strings.Builder
	sb.Grow(len(content))
	last := 0
	for _, m := range matches {
		sb.WriteString(content[last:m[0]])
		name := content[m[2]:m[3]]
		if text, err := read(fsys, path.Join(dir, name)); err == nil {
			sb.WriteString(text)
			st.Resolved++
		} else {
			sb.WriteString(missingMarker(name))
			st.Missing++
		}
		last = m[1]
	}
	sb.WriteString(content[last:])

	return sb.String(), st
}

// Directives returns names referenced by include directives in content, in
// document order.
func Directives(content string) []string {
	var names []string
	for _, m := range directiveRe.FindAllStringSubmatch(content, -1) {
		names = append(names, m[1])
	}
	return names
}

func missingMarker(name string) string {
	return "<!-- Error: Could not find " + name + " -->"
}

func read(fsys fs.FS, name string) (string, error) {
	b, err := fs.ReadFile(fsys, name)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(b) {
		return "", fmt.Errorf("%s: not valid UTF-8", name)
	}
	return string(b), nil
}
