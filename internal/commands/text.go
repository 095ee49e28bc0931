// Copyright 2024 Google Inc. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package commands

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/mkokutoyori/netsim/internal/shell"
	"github.com/mkokutoyori/netsim/internal/vfs"
)

// inputText returns the text to operate over: stdin if non-empty,
// otherwise the first file argument's content (spec §4.3 "reduce or
// transform stdin (or first file argument)").
func inputText(ctx *shell.Context, args []string, stdin string) (string, []string, int) {
	if stdin != "" || len(args) == 0 {
		return stdin, nil, 0
	}
	data, err := ctx.VFS.ReadFile(args[0], ctx.Cwd)
	if err != nil {
		return "", nil, 1
	}
	return string(data), args[1:], 0
}

func splitLines(s string) []string {
	s = strings.TrimSuffix(s, "\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}

// Head implements `head` (default/`-n N` first lines).
func Head(ctx *shell.Context, args []string, stdin string) (string, int) {
	n, rest := takeCount(args, 10)
	text, _, code := inputText(ctx, rest, stdin)
	if code != 0 {
		return "", code
	}
	lines := splitLines(text)
	if n > len(lines) {
		n = len(lines)
	}
	return joinLF(lines[:n]), 0
}

// Tail implements `tail` (default/`-n N` last lines).
func Tail(ctx *shell.Context, args []string, stdin string) (string, int) {
	n, rest := takeCount(args, 10)
	text, _, code := inputText(ctx, rest, stdin)
	if code != 0 {
		return "", code
	}
	lines := splitLines(text)
	if n > len(lines) {
		n = len(lines)
	}
	return joinLF(lines[len(lines)-n:]), 0
}

func takeCount(args []string, def int) (int, []string) {
	for i, a := range args {
		if a == "-n" && i+1 < len(args) {
			n, err := strconv.Atoi(args[i+1])
			if err != nil {
				break
			}
			rest := append(append([]string{}, args[:i]...), args[i+2:]...)
			return n, rest
		}
		if strings.HasPrefix(a, "-n") && len(a) > 2 {
			if n, err := strconv.Atoi(a[2:]); err == nil {
				rest := append(append([]string{}, args[:i]...), args[i+1:]...)
				return n, rest
			}
		}
	}
	return def, args
}

func joinLF(lines []string) string {
	if len(lines) == 0 {
		return ""
	}
	return strings.Join(lines, "\n") + "\n"
}

// Wc implements `wc`: lines, words, bytes (spec §4.3), default all
// three; `-l`/`-w`/`-c` select one.
func Wc(ctx *shell.Context, args []string, stdin string) (string, int) {
	flags, rest := splitFlags(args)
	text, _, code := inputText(ctx, rest, stdin)
	if code != 0 {
		return "", code
	}

	lineCount := strings.Count(text, "\n")
	if text != "" && !strings.HasSuffix(text, "\n") {
		lineCount++
	}
	wordCount := len(strings.Fields(text))
	byteCount := len(text)

	switch {
	case hasFlag(flags, 'l'):
		return fmt.Sprintf("%d\n", lineCount), 0
	case hasFlag(flags, 'w'):
		return fmt.Sprintf("%d\n", wordCount), 0
	case hasFlag(flags, 'c'):
		return fmt.Sprintf("%d\n", byteCount), 0
	default:
		return fmt.Sprintf("%d %d %d\n", lineCount, wordCount, byteCount), 0
	}
}

// Sort implements `sort`, with `-r` (reverse) and `-n` (numeric).
func Sort(ctx *shell.Context, args []string, stdin string) (string, int) {
	flags, rest := splitFlags(args)
	text, _, code := inputText(ctx, rest, stdin)
	if code != 0 {
		return "", code
	}
	lines := splitLines(text)

	numeric := hasFlag(flags, 'n')
	reverse := hasFlag(flags, 'r')

	sort.SliceStable(lines, func(i, j int) bool {
		var less bool
		if numeric {
			a, _ := strconv.ParseFloat(strings.TrimSpace(lines[i]), 64)
			b, _ := strconv.ParseFloat(strings.TrimSpace(lines[j]), 64)
			less = a < b
		} else {
			less = lines[i] < lines[j]
		}
		if reverse {
			return !less
		}
		return less
	})
	return joinLF(lines), 0
}

// Uniq implements `uniq`: collapses adjacent duplicate lines, with
// `-c` to prefix counts.
func Uniq(ctx *shell.Context, args []string, stdin string) (string, int) {
	flags, rest := splitFlags(args)
	text, _, code := inputText(ctx, rest, stdin)
	if code != 0 {
		return "", code
	}
	lines := splitLines(text)
	withCount := hasFlag(flags, 'c')

	var out []string
	i := 0
	for i < len(lines) {
		j := i + 1
		for j < len(lines) && lines[j] == lines[i] {
			j++
		}
		if withCount {
			out = append(out, fmt.Sprintf("%d %s", j-i, lines[i]))
		} else {
			out = append(out, lines[i])
		}
		i = j
	}
	return joinLF(out), 0
}

// Cut implements `cut -d DELIM -f FIELDS` (1-indexed, comma-separated
// field list).
func Cut(ctx *shell.Context, args []string, stdin string) (string, int) {
	delim := "\t"
	var fields []int
	var rest []string

	for i := 0; i < len(args); i++ {
		switch {
		case args[i] == "-d" && i+1 < len(args):
			delim = args[i+1]
			i++
		case strings.HasPrefix(args[i], "-d") && len(args[i]) > 2:
			delim = args[i][2:]
		case args[i] == "-f" && i+1 < len(args):
			fields = parseFieldList(args[i+1])
			i++
		case strings.HasPrefix(args[i], "-f") && len(args[i]) > 2:
			fields = parseFieldList(args[i][2:])
		default:
			rest = append(rest, args[i])
		}
	}

	text, _, code := inputText(ctx, rest, stdin)
	if code != 0 {
		return "", code
	}

	var b strings.Builder
	for _, line := range splitLines(text) {
		parts := strings.Split(line, delim)
		var picked []string
		for _, f := range fields {
			if f-1 >= 0 && f-1 < len(parts) {
				picked = append(picked, parts[f-1])
			}
		}
		b.WriteString(strings.Join(picked, delim) + "\n")
	}
	return b.String(), 0
}

func parseFieldList(s string) []int {
	var out []int
	for _, part := range strings.Split(s, ",") {
		if n, err := strconv.Atoi(part); err == nil {
			out = append(out, n)
		}
	}
	return out
}

// Tr implements `tr SET1 SET2`: position-wise character translation.
func Tr(ctx *shell.Context, args []string, stdin string) (string, int) {
	deleteMode := false
	rest := args
	if len(args) > 0 && args[0] == "-d" {
		deleteMode = true
		rest = args[1:]
	}
	if len(rest) == 0 {
		return stdin, 1
	}

	if deleteMode {
		set := expandTrSet(rest[0])
		return strings.Map(func(r rune) rune {
			if strings.ContainsRune(set, r) {
				return -1
			}
			return r
		}, stdin), 0
	}

	if len(rest) < 2 {
		return stdin, 1
	}
	from := expandTrSet(rest[0])
	to := expandTrSet(rest[1])

	return strings.Map(func(r rune) rune {
		idx := strings.IndexRune(from, r)
		if idx < 0 {
			return r
		}
		if idx >= len(to) {
			if len(to) == 0 {
				return r
			}
			idx = len(to) - 1
		}
		return rune(to[idx])
	}, stdin), 0
}

func expandTrSet(s string) string {
	var b strings.Builder
	runes := []rune(s)
	for i := 0; i < len(runes); i++ {
		if i+2 < len(runes) && runes[i+1] == '-' {
			for c := runes[i]; c <= runes[i+2]; c++ {
				b.WriteRune(c)
			}
			i += 2
			continue
		}
		b.WriteRune(runes[i])
	}
	return b.String()
}

// Grep implements `grep` with `-i -c -r -E -v` (spec §4.3). On
// compile failure the pattern is matched literally (spec: "a safe
// fallback if the pattern fails to compile").
func Grep(ctx *shell.Context, args []string, stdin string) (string, int) {
	var pattern string
	flags := ""
	var rest []string
	for _, a := range args {
		if strings.HasPrefix(a, "-") && a != "-" && len(a) > 1 {
			flags += strings.TrimPrefix(a, "-")
			continue
		}
		if pattern == "" {
			pattern = a
			continue
		}
		rest = append(rest, a)
	}

	ignoreCase := hasFlag(flags, 'i')
	countOnly := hasFlag(flags, 'c')
	recursive := hasFlag(flags, 'r')
	invert := hasFlag(flags, 'v')

	re := compileGrepPattern(pattern, ignoreCase)

	if recursive && len(rest) > 0 {
		return grepRecursive(ctx, rest[0], re, countOnly, invert)
	}

	text, _, code := inputText(ctx, rest, stdin)
	if code != 0 && len(rest) > 0 {
		return fmt.Sprintf("grep: %s: No such file or directory\n", rest[0]), 2
	}

	matches := grepLines(text, re, invert)
	if countOnly {
		return fmt.Sprintf("%d\n", len(matches)), boolExit(len(matches) > 0)
	}
	return joinLF(matches), boolExit(len(matches) > 0)
}

func compileGrepPattern(pattern string, ignoreCase bool) *regexp.Regexp {
	expr := pattern
	if ignoreCase {
		expr = "(?i)" + expr
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		re = regexp.MustCompile(regexp.QuoteMeta(pattern))
	}
	return re
}

func grepLines(text string, re *regexp.Regexp, invert bool) []string {
	var out []string
	for _, line := range splitLines(text) {
		if re.MatchString(line) != invert {
			out = append(out, line)
		}
	}
	return out
}

func grepRecursive(ctx *shell.Context, root string, re *regexp.Regexp, countOnly, invert bool) (string, int) {
	fileType := vfs.TypeFile
	paths, err := ctx.VFS.Find(root, ctx.Cwd, vfs.FindPredicate{Type: &fileType})
	if err != nil {
		return fmt.Sprintf("grep: %s: %s\n", root, vfsErrText(err)), 2
	}
	var b strings.Builder
	total := 0
	for _, p := range paths {
		data, rerr := ctx.VFS.ReadFile(p, ctx.Cwd)
		if rerr != nil {
			continue
		}
		matches := grepLines(string(data), re, invert)
		total += len(matches)
		if countOnly {
			continue
		}
		for _, m := range matches {
			fmt.Fprintf(&b, "%s:%s\n", p, m)
		}
	}
	if countOnly {
		fmt.Fprintf(&b, "%d\n", total)
	}
	return b.String(), boolExit(total > 0)
}

func boolExit(matched bool) int {
	if matched {
		return 0
	}
	return 1
}
