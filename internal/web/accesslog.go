// © 2024 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package web

import (
	"net/http"
	"time"

	"go.astrophena.name/devserve/internal/cli"
)

// AccessLog wraps next so that every served request is logged with
// [cli.Env.Logf] from the request context once the response is complete:
//
//	HTTP: 15:04:05.000 GET /index.html 200 (0.001s)
func AccessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w}
		next.ServeHTTP(rec, r)
		now := time.Now()
		cli.GetEnv(r.Context()).Logf("HTTP: %s %s %s %d (%.3fs)", timeFormat(now), r.Method, r.RequestURI, rec.Status(), now.Sub(start).Seconds())
	})
}

func timeFormat(t time.Time) string {
	return t.Format("15:04:05.000")
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	if r.status == 0 {
		r.status = code
	}
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	return r.ResponseWriter.Write(b)
}

// Flush keeps streaming handlers working behind AccessLog.
func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (r *statusRecorder) Unwrap() http.ResponseWriter { return r.ResponseWriter }

// Status returns the response status code, or 200 if nothing was written.
func (r *statusRecorder) Status() int {
	if r.status == 0 {
		return http.StatusOK
	}
	return r.status
}
