// © 2024 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

/*
Devserve serves a static site for local development.

HTML documents (paths ending in .html, the site root and everything under
/home_page) have server-side include directives expanded:

	<!--#include file="header.html" -->

The named file is resolved relative to the directory of the document. The site
root is served from home_page/front_page.html.

Browser-side code can send debug messages to the server:

	fetch("/log?msg=" + encodeURIComponent("button clicked"))

Every message is printed to standard output with a timestamp. The 50 most
recent messages are available as JSON at /debug, and new messages are streamed
from /debug/stream (as server-sent events if requested).

# Usage

	$ devserve [flags...] [dir]

If dir is omitted, the current directory is served.
*/
package main

import (
	_ "embed"

	"go.astrophena.name/devserve/internal/cli"
)

//go:embed doc.go
var doc []byte

func init() { cli.SetDocComment(doc) }
