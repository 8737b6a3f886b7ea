// © 2024 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package logger

import (
	"fmt"
	"log"
	"testing"

	"go.astrophena.name/devserve/internal/testutil"
)

func TestLogfWriter(t *testing.T) {
	t.Parallel()

	var lines []string
	logf := Logf(func(format string, args ...any) {
		lines = append(lines, fmt.Sprintf(format, args...))
	})

	l := log.New(logf, "", 0)
	l.Printf("Listening on %s...", "localhost:5500")

	testutil.AssertEqual(t, lines, []string{"Listening on localhost:5500...\n"})
}
