// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"strings"

	"mvdan.cc/sh/v3/syntax"
)

// shellJoin assembles argv elements into a single sh-compatible command
// line, quoting each element so word boundaries survive the trip through
// `sh -lc`. Plain words stay bare. A single argument is taken as a raw
// command string, which is how compound commands ("npm run build && git
// push") are expressed.
func shellJoin(args []string) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}
	quoted := make([]string, 0, len(args))
	for _, arg := range args {
		q, err := syntax.Quote(arg, syntax.LangPOSIX)
		if err != nil {
			return "", fmt.Errorf("cannot quote argument %q: %w", arg, err)
		}
		quoted = append(quoted, q)
	}
	return strings.Join(quoted, " "), nil
}
