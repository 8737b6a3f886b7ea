// © 2024 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

//go:build ignore

// gencopyright.go adds the license header to Go files that lack it.

package main

import (
	"bytes"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
)

const tmpl = `// © %d Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

`

var roots = []string{"cmd", "devtools", "internal"}

func main() {
	for _, root := range roots {
		if err := filepath.WalkDir(root, addHeader); err != nil {
			log.Fatal(err)
		}
	}
}

func addHeader(path string, d fs.DirEntry, err error) error {
	if err != nil {
		return err
	}
	if d.IsDir() {
		if d.Name() == "testdata" {
			return filepath.SkipDir
		}
		return nil
	}
	if filepath.Ext(path) != ".go" {
		return nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if bytes.HasPrefix(content, []byte("// ©")) {
		return nil
	}

	info, err := d.Info()
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, tmpl, info.ModTime().Year())
	buf.Write(content)
	log.Printf("Adding header to %s.", path)
	return os.WriteFile(path, buf.Bytes(), 0o644)
}
