// © 2024 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

// Package envflag allows flags of a [flag.FlagSet] to be set by environment
// variables.
package envflag

import (
	"flag"
	"fmt"
	"strings"
)

// Name returns the environment variable name for the flag: prefix followed by
// the flag name in upper case with dashes replaced by underscores.
//
//	envflag.Name("DEVSERVE_", "log-capacity") == "DEVSERVE_LOG_CAPACITY"
func Name(prefix, flagName string) string {
	return prefix + strings.ToUpper(strings.ReplaceAll(flagName, "-", "_"))
}

// Usage appends a note about the overriding environment variable to usage.
func Usage(prefix, flagName, usage string) string {
	return usage + " Can be overridden by " + Name(prefix, flagName) + " environment variable."
}

// Override sets every flag of fs that was not given on the command line from
// its environment variable, if that variable is not empty. It must be called
// after fs has been parsed.
func Override(fs *flag.FlagSet, prefix string, getenv func(string) string) error {
	given := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { given[f.Name] = true })

	var err error
	fs.VisitAll(func(f *flag.Flag) {
		if err != nil || given[f.Name] {
			return
		}
		name := Name(prefix, f.Name)
		val := getenv(name)
		if val == "" {
			return
		}
		if serr := fs.Set(f.Name, val); serr != nil {
			err = fmt.Errorf("invalid value %q for %s: %v", val, name, serr)
		}
	})
	return err
}
