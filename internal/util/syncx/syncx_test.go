// © 2024 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package syncx

import (
	"errors"
	"sync"
	"testing"

	"go.astrophena.name/devserve/internal/testutil"
)

func TestProtected(t *testing.T) {
	t.Parallel()

	t.Run("read access", func(t *testing.T) {
		p := Protect(map[string]int{"entries": 3})
		var got int
		p.RAccess(func(m map[string]int) { got = m["entries"] })
		testutil.AssertEqual(t, got, 3)
	})

	t.Run("concurrent writes", func(t *testing.T) {
		p := Protect(make(map[string]int))
		var wg sync.WaitGroup
		for range 50 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				p.Access(func(m map[string]int) { m["hits"]++ })
			}()
		}
		wg.Wait()

		var got int
		p.RAccess(func(m map[string]int) { got = m["hits"] })
		testutil.AssertEqual(t, got, 50)
	})
}

func TestLazy(t *testing.T) {
	t.Parallel()

	var (
		l     Lazy[string]
		calls int
	)
	f := func() string {
		calls++
		return "template"
	}
	testutil.AssertEqual(t, l.Get(f), "template")
	testutil.AssertEqual(t, l.Get(f), "template")
	testutil.AssertEqual(t, calls, 1)
}

func TestLazyGetErr(t *testing.T) {
	t.Parallel()

	errParse := errors.New("parse failed")

	var l Lazy[int]
	for range 2 {
		v, err := l.GetErr(func() (int, error) { return 0, errParse })
		testutil.AssertEqual(t, v, 0)
		if !errors.Is(err, errParse) {
			t.Fatalf("want %v, got %v", errParse, err)
		}
	}
}
