// © 2024 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package version

import (
	"runtime"
	"runtime/debug"
	"testing"

	"go.astrophena.name/devserve/internal/testutil"
)

func TestLoadInfo(t *testing.T) {
	t.Parallel()

	cases := map[string]struct {
		bi   *debug.BuildInfo
		ok   bool
		want Info
	}{
		"no build info": {
			want: Info{Name: "devserve", Version: "devel"},
		},
		"devel build": {
			bi: &debug.BuildInfo{
				Main: debug.Module{Version: "(devel)"},
			},
			ok:   true,
			want: Info{Name: "devserve", Version: "devel"},
		},
		"release with vcs info": {
			bi: &debug.BuildInfo{
				Main: debug.Module{Version: "v1.2.0"},
				Settings: []debug.BuildSetting{
					{Key: "vcs.revision", Value: "abc123"},
					{Key: "vcs.time", Value: "2024-05-01T10:00:00Z"},
				},
			},
			ok: true,
			want: Info{
				Name:    "devserve",
				Version: "v1.2.0",
				Commit:  "abc123",
				BuiltAt: "2024-05-01T10:00:00Z",
			},
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			tc.want.Go = runtime.Version()
			tc.want.OS = runtime.GOOS
			tc.want.Arch = runtime.GOARCH
			testutil.AssertEqual(t, loadInfo("devserve", tc.bi, tc.ok), tc.want)
		})
	}
}

func TestInfoString(t *testing.T) {
	t.Parallel()

	i := Info{
		Name:    "devserve",
		Version: "v1.2.0",
		Commit:  "abc123",
		BuiltAt: "2024-05-01T10:00:00Z",
		Go:      "go1.22.3",
		OS:      "linux",
		Arch:    "amd64",
	}
	want := "devserve v1.2.0 (go1.22.3, linux/amd64)\ncommit abc123\nbuilt at 2024-05-01T10:00:00Z\n"
	testutil.AssertEqual(t, i.String(), want)
}
