// © 2024 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package include

import (
	"errors"
	"flag"
	"io/fs"
	"os"
	"path"
	"strings"
	"testing"
	"testing/fstest"

	"golang.org/x/tools/txtar"

	"go.astrophena.name/devserve/internal/testutil"
)

var update = flag.Bool("update", false, "update golden files in testdata")

func TestExpand(t *testing.T) {
	cases := map[string]struct {
		files     map[string]string
		content   string
		dir       string
		want      string
		wantStats Stats
	}{
		"no directives": {
			content: "<p>Nothing to see here.</p>",
			dir:     ".",
			want:    "<p>Nothing to see here.</p>",
		},
		"single directive": {
			files:     map[string]string{"x.html": "cat"},
			content:   `Hello <!--#include file="x.html" --> World`,
			dir:       ".",
			want:      "Hello cat World",
			wantStats: Stats{Resolved: 1},
		},
		"missing file": {
			content:   `<!--#include file="missing.html" -->`,
			dir:       ".",
			want:      "<!-- Error: Could not find missing.html -->",
			wantStats: Stats{Missing: 1},
		},
		"nested directive is not expanded": {
			files: map[string]string{
				"a.html": `A<!--#include file="b.html" -->`,
				"b.html": "B",
			},
			content:   `<!--#include file="a.html" -->`,
			dir:       ".",
			want:      `A<!--#include file="b.html" -->`,
			wantStats: Stats{Resolved: 1},
		},
		"resolved relative to dir": {
			files: map[string]string{
				"home_page/header.html": "<header></header>",
				"header.html":           "wrong",
			},
			content:   `<!--#include file="header.html" -->`,
			dir:       "home_page",
			want:      "<header></header>",
			wantStats: Stats{Resolved: 1},
		},
		"name with subdirectory": {
			files:     map[string]string{"home_page/parts/nav.html": "<nav></nav>"},
			content:   `<!--#include file="parts/nav.html" -->`,
			dir:       "home_page",
			want:      "<nav></nav>",
			wantStats: Stats{Resolved: 1},
		},
		"same file twice": {
			files:     map[string]string{"x.html": "x"},
			content:   `<!--#include file="x.html" -->-<!--#include file="x.html" -->`,
			dir:       ".",
			want:      "x-x",
			wantStats: Stats{Resolved: 2},
		},
		"mixed resolved and missing": {
			files:     map[string]string{"ok.html": "ok"},
			content:   `[<!--#include file="ok.html" -->][<!--#include file="gone.html" -->]`,
			dir:       ".",
			want:      "[ok][<!-- Error: Could not find gone.html -->]",
			wantStats: Stats{Resolved: 1, Missing: 1},
		},
		"directory": {
			files:     map[string]string{"parts/nav.html": "<nav></nav>"},
			content:   `<!--#include file="parts" -->`,
			dir:       ".",
			want:      "<!-- Error: Could not find parts -->",
			wantStats: Stats{Missing: 1},
		},
		"invalid UTF-8": {
			files:     map[string]string{"bin.html": "\xff\xfe"},
			content:   `<!--#include file="bin.html" -->`,
			dir:       ".",
			want:      "<!-- Error: Could not find bin.html -->",
			wantStats: Stats{Missing: 1},
		},
		"outside of root": {
			content:   `<!--#include file="../../etc/passwd" -->`,
			dir:       "home_page",
			want:      "<!-- Error: Could not find ../../etc/passwd -->",
			wantStats: Stats{Missing: 1},
		},
		"empty name is not a directive": {
			content: `<!--#include file="" -->`,
			dir:     ".",
			want:    `<!--#include file="" -->`,
		},
		"different spacing is not a directive": {
			content: `<!--#include file="x.html"-->`,
			dir:     ".",
			want:    `<!--#include file="x.html"-->`,
		},
		"empty file": {
			files:     map[string]string{"empty.html": ""},
			content:   `a<!--#include file="empty.html" -->b`,
			dir:       ".",
			want:      "ab",
			wantStats: Stats{Resolved: 1},
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			fsys := filesToFS(tc.files)

			got, stats := ExpandStats(fsys, tc.content, tc.dir)
			testutil.AssertEqual(t, got, tc.want)
			testutil.AssertEqual(t, stats, tc.wantStats)

			testutil.AssertEqual(t, Expand(fsys, tc.content, tc.dir), tc.want)
		})
	}
}

func TestExpandReadError(t *testing.T) {
	got := Expand(failFS{}, `<!--#include file="x.html" -->`, ".")
	testutil.AssertEqual(t, got, "<!-- Error: Could not find x.html -->")
}

func TestDirectives(t *testing.T) {
	cases := map[string]struct {
		content string
		want    []string
	}{
		"none": {
			content: "<html></html>",
			want:    nil,
		},
		"in document order": {
			content: `<!--#include file="b.html" --><!--#include file="a.html" --><!--#include file="b.html" -->`,
			want:    []string{"b.html", "a.html", "b.html"},
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			testutil.AssertEqual(t, Directives(tc.content), tc.want)
		})
	}
}

// Each archive in testdata holds a site; its comment names the document to
// expand.
func TestExpandGolden(t *testing.T) {
	testutil.RunGolden(t, "testdata/*.txtar", func(t *testing.T, match string) []byte {
		ar, err := txtar.ParseFile(match)
		if err != nil {
			t.Fatal(err)
		}

		dir := t.TempDir()
		testutil.ExtractTxtar(t, ar, dir)
		fsys := os.DirFS(dir)

		doc := strings.TrimSpace(string(ar.Comment))
		b, err := fs.ReadFile(fsys, doc)
		if err != nil {
			t.Fatal(err)
		}

		return []byte(Expand(fsys, string(b), path.Dir(doc)))
	}, *update)
}

func filesToFS(files map[string]string) fs.FS {
	fs := make(fstest.MapFS)
	for name, content := range files {
		fs[name] = &fstest.MapFile{
			Data: []byte(content),
		}
	}
	return fs
}

type failFS struct{}

func (failFS) Open(name string) (fs.File, error) { return nil, errors.New("failed") }
