// © 2024 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

// Package devserver implements the HTTP handler of a local development server
// for static sites.
//
// Requests are classified by their raw target (path and query):
//
//	/debug         most recent log entries as a JSON array
//	/log?msg=...   append msg to the log
//	/debug/stream  newly appended log entries, streamed
//	*.html, /, /home_page*
//	               HTML document with include directives expanded
//	anything else  static file
//
// The front page, served for "/", is home_page/front_page.html.
package devserver

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"os"
	"path"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"go.astrophena.name/devserve/internal/include"
	"go.astrophena.name/devserve/internal/logbuf"
	"go.astrophena.name/devserve/internal/web"
)

const (
	// recentWindow is the number of entries returned by /debug.
	recentWindow = 50
	frontPage    = "home_page/front_page.html"
)

// Config configures a [Handler].
type Config struct {
	// FS is the site root. If nil, the current directory is served.
	FS fs.FS
	// Logs receives messages sent to /log. If nil, a buffer that doesn't echo
	// anything is created.
	Logs *logbuf.Buffer
	// Metrics, if not nil, is updated on every request.
	Metrics *Metrics
}

// Handler serves a site. Create it with [New].
type Handler struct {
	fs      fs.FS
	logs    *logbuf.Buffer
	metrics *Metrics
	static  http.Handler
}

// New returns a new Handler.
func New(c Config) *Handler {
	h := &Handler{
		fs:      c.FS,
		logs:    c.Logs,
		metrics: c.Metrics,
	}
	if h.fs == nil {
		h.fs = os.DirFS(".")
	}
	if h.logs == nil {
		h.logs = logbuf.New(logbuf.Options{})
	}
	h.static = http.FileServerFS(h.fs)
	return h
}

// Logs returns the log buffer used by h.
func (h *Handler) Logs() *logbuf.Buffer { return h.logs }

type route int

const (
	routeStatic route = iota
	routeDebug
	routeLog
	routeStream
	routeDocument
)

func (rt route) String() string {
	switch rt {
	case routeDebug:
		return "debug"
	case routeLog:
		return "log"
	case routeStream:
		return "stream"
	case routeDocument:
		return "document"
	default:
		return "static"
	}
}

// classify picks the route for a raw request target. Rules are checked in
// order, first match wins.
func classify(target string) route {
	switch {
	case target == "/debug":
		return routeDebug
	case strings.HasPrefix(target, "/log?"):
		return routeLog
	case target == "/debug/stream":
		return routeStream
	case strings.HasSuffix(target, ".html"), target == "/", strings.HasPrefix(target, "/home_page"):
		return routeDocument
	}
	return routeStatic
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	target := r.RequestURI
	if target == "" {
		target = r.URL.RequestURI()
	}

	rt := classify(target)
	defer h.metrics.observeRequest(rt, time.Now())

	switch rt {
	case routeDebug:
		allowAnyOrigin(w)
		web.RespondJSON(w, h.logs.Recent(recentWindow))
	case routeLog:
		h.appendLog(w, r)
	case routeStream:
		h.logs.ServeHTTP(w, r)
	case routeDocument:
		h.serveDocument(w, r)
	default:
		h.static.ServeHTTP(w, r)
	}
}

func allowAnyOrigin(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
}

func (h *Handler) appendLog(w http.ResponseWriter, r *http.Request) {
	// Malformed pairs are skipped, the rest of the query still counts.
	q, _ := url.ParseQuery(r.URL.RawQuery)
	h.logs.Append(q.Get("msg"))
	h.metrics.observeLogEntry()

	allowAnyOrigin(w)
	w.WriteHeader(http.StatusOK)
}

func documentPath(urlPath string) string {
	if urlPath == "/" || urlPath == "" {
		return frontPage
	}
	p := strings.TrimPrefix(path.Clean(urlPath), "/")
	if p == "" {
		return "."
	}
	return p
}

func (h *Handler) serveDocument(w http.ResponseWriter, r *http.Request) {
	name := documentPath(r.URL.Path)

	b, err := fs.ReadFile(h.fs, name)
	if errors.Is(err, fs.ErrNotExist) {
		web.RespondError(w, r, fmt.Errorf("%s: %w", name, web.ErrNotFound))
		return
	}
	if err != nil {
		web.RespondError(w, r, err)
		return
	}
	if !utf8.Valid(b) {
		web.RespondError(w, r, fmt.Errorf("%s: document is not valid UTF-8", name))
		return
	}

	out, st := include.ExpandStats(h.fs, string(b), path.Dir(name))
	h.metrics.observeIncludes(st.Resolved, st.Missing)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Content-Length", strconv.Itoa(len(out)))
	w.WriteHeader(http.StatusOK)
	io.WriteString(w, out)
}
