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

package shell

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

// scriptRunner interprets the subset of shell script syntax spec §4.4
// names: shebang, comments, VAR=value, VAR=$((expr)), if/then/else/fi,
// for .. in .. do .. done, while .. do .. done (capped at 100
// iterations), case .. esac. Unknown constructs fall through to the
// kernel as ordinary command lines.
type scriptRunner struct {
	e        *Executor
	path     string
	args     []string
	lastExit int
}

// RunScript executes path as a script with the given arguments,
// maintaining $0.. $@ $# $$ $? (spec §4.4).
func (e *Executor) RunScript(path string, args []string) (string, int) {
	data, err := e.Ctx.VFS.ReadFile(path, e.Ctx.Cwd)
	if err != nil {
		return fmt.Sprintf("%s: %s\n", path, vfsErrText(err)), 127
	}
	lines := normalizeBlock(strings.Split(string(data), "\n"))
	sr := &scriptRunner{e: e, path: path, args: args}
	return sr.runSequence(lines)
}

// normalizeBlock folds a standalone "then"/"do" line into the preceding
// header line, so "if COND\nthen" and "if COND; then" parse identically.
func normalizeBlock(lines []string) []string {
	var out []string
	for _, l := range lines {
		t := strings.TrimSpace(l)
		if (t == "then" || t == "do") && len(out) > 0 {
			out[len(out)-1] = out[len(out)-1] + "; " + t
			continue
		}
		out = append(out, l)
	}
	return out
}

func firstWord(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if end := strings.IndexAny(s, " \t;"); end >= 0 {
		return s[:end]
	}
	return s
}

// captureBlock scans lines starting at start for the line matching
// closeWord at nesting depth 0 (depth tracked only against openWords,
// so an unrelated block type's lines pass through untouched), returning
// the inclusive block and the index just past it.
func captureBlock(lines []string, start int, openWords []string, closeWord string) ([]string, int) {
	open := map[string]bool{}
	for _, w := range openWords {
		open[w] = true
	}
	depth := 0
	for i := start; i < len(lines); i++ {
		w := firstWord(lines[i])
		if open[w] {
			depth++
		}
		if w == closeWord {
			depth--
			if depth == 0 {
				return lines[start : i+1], i + 1
			}
		}
	}
	return lines[start:], len(lines)
}

func (sr *scriptRunner) runSequence(lines []string) (string, int) {
	var out strings.Builder
	i := 0
	for i < len(lines) {
		trimmed := strings.TrimSpace(lines[i])
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			i++
			continue
		}

		switch firstWord(trimmed) {
		case "if":
			block, next := captureBlock(lines, i, []string{"if"}, "fi")
			out.WriteString(sr.runIf(block))
			i = next
		case "for":
			block, next := captureBlock(lines, i, []string{"for", "while"}, "done")
			out.WriteString(sr.runFor(block))
			i = next
		case "while":
			block, next := captureBlock(lines, i, []string{"for", "while"}, "done")
			out.WriteString(sr.runWhile(block))
			i = next
		case "case":
			block, next := captureBlock(lines, i, []string{"case"}, "esac")
			out.WriteString(sr.runCase(block))
			i = next
		default:
			out.WriteString(sr.runSimpleLine(trimmed))
			i++
		}
	}
	return out.String(), sr.lastExit
}

var assignmentArithRE = regexp.MustCompile(`^\$\(\(\s*(.*?)\s*\)\)$`)

// runSimpleLine handles a VAR=value / VAR=$((expr)) assignment, or
// dispatches a plain command line back through the kernel.
func (sr *scriptRunner) runSimpleLine(line string) string {
	if m := assignRE.FindStringSubmatch(line); m != nil {
		name := m[1]
		rhs := sr.expand(m[2])
		if am := assignmentArithRE.FindStringSubmatch(rhs); am != nil {
			val := evalArithmetic(am[1], func(v string) string { return sr.e.Ctx.Env[v] })
			sr.e.Ctx.Env[name] = strconv.FormatInt(val, 10)
		} else {
			sr.e.Ctx.Env[name] = rhs
		}
		sr.lastExit = 0
		return ""
	}

	out := sr.e.Run(sr.expandPositional(line))
	sr.lastExit = sr.e.LastExitCode()
	return out
}

var positionalRE = regexp.MustCompile(`\$(\d|@|#|\?|\$)`)

// expandPositional substitutes $0 $1.. $9 $@ $# $? $$ textually; $VAR
// and ${VAR} expansion happens afterward via the executor's own
// expandOne (spec §4.4 "Positional parameters ... are maintained").
func (sr *scriptRunner) expandPositional(s string) string {
	return positionalRE.ReplaceAllStringFunc(s, func(m string) string {
		switch m[1] {
		case '@':
			return strings.Join(sr.args, " ")
		case '#':
			return strconv.Itoa(len(sr.args))
		case '?':
			return strconv.Itoa(sr.lastExit)
		case '$':
			return "1"
		default:
			n := int(m[1] - '0')
			if n == 0 {
				return sr.path
			}
			if n-1 < len(sr.args) {
				return sr.args[n-1]
			}
			return ""
		}
	})
}

func (sr *scriptRunner) expand(s string) string {
	return sr.e.expandOne(sr.expandPositional(s))
}

// evalCondition evaluates an `if`/`while` condition: a `[ ... ]`/`test`
// primary, or an ordinary command whose exit code decides (spec §4.4).
func (sr *scriptRunner) evalCondition(cond string) bool {
	cond = strings.TrimSpace(sr.expand(cond))
	switch {
	case strings.HasPrefix(cond, "[") && strings.HasSuffix(cond, "]"):
		inner := strings.TrimSpace(cond[1 : len(cond)-1])
		return evalTest(sr, strings.Fields(inner))
	case strings.HasPrefix(cond, "test "):
		return evalTest(sr, strings.Fields(strings.TrimPrefix(cond, "test ")))
	default:
		sr.e.Run(cond)
		sr.lastExit = sr.e.LastExitCode()
		return sr.lastExit == 0
	}
}

func evalTest(sr *scriptRunner, parts []string) bool {
	switch len(parts) {
	case 1:
		return parts[0] != ""
	case 2:
		arg := parts[1]
		switch parts[0] {
		case "-z":
			return arg == ""
		case "-n":
			return arg != ""
		case "-f":
			ino, err := sr.e.Ctx.VFS.Stat(arg, sr.e.Ctx.Cwd, true)
			return err == nil && ino.Type.String() == "file"
		case "-d":
			ino, err := sr.e.Ctx.VFS.Stat(arg, sr.e.Ctx.Cwd, true)
			return err == nil && ino.Type.String() == "directory"
		case "-e":
			_, err := sr.e.Ctx.VFS.Stat(arg, sr.e.Ctx.Cwd, true)
			return err == nil
		}
	case 3:
		a, op, b := parts[0], parts[1], parts[2]
		switch op {
		case "=", "==":
			return a == b
		case "!=":
			return a != b
		case "-eq", "-ne", "-gt", "-lt", "-ge", "-le":
			an, _ := strconv.Atoi(a)
			bn, _ := strconv.Atoi(b)
			switch op {
			case "-eq":
				return an == bn
			case "-ne":
				return an != bn
			case "-gt":
				return an > bn
			case "-lt":
				return an < bn
			case "-ge":
				return an >= bn
			case "-le":
				return an <= bn
			}
		}
	}
	return false
}

func extractClause(line, kw, endKw string) string {
	rest := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), kw))
	rest = strings.TrimSpace(strings.TrimSuffix(rest, endKw))
	return strings.TrimSpace(strings.TrimSuffix(rest, ";"))
}

type ifSegment struct {
	keyword string
	cond    string
	lines   []string
}

func splitIfSegments(header string, body []string) []ifSegment {
	var segs []ifSegment
	curKeyword, curCond := "if", extractClause(header, "if", "then")
	var curLines []string
	depth := 0

	flush := func() {
		segs = append(segs, ifSegment{keyword: curKeyword, cond: curCond, lines: curLines})
	}
	for _, l := range body {
		w := firstWord(l)
		if w == "if" {
			depth++
		}
		if w == "fi" && depth > 0 {
			depth--
		}
		if depth == 0 && (w == "elif" || w == "else") {
			flush()
			curLines = nil
			curKeyword = w
			if w == "elif" {
				curCond = extractClause(l, "elif", "then")
			} else {
				curCond = ""
			}
			continue
		}
		curLines = append(curLines, l)
	}
	flush()
	return segs
}

func (sr *scriptRunner) runIf(block []string) string {
	header := block[0]
	body := block[1 : len(block)-1]
	for _, seg := range splitIfSegments(header, body) {
		if seg.keyword == "else" || sr.evalCondition(seg.cond) {
			out, exit := sr.runSequence(seg.lines)
			sr.lastExit = exit
			return out
		}
	}
	sr.lastExit = 0
	return ""
}

func (sr *scriptRunner) runFor(block []string) string {
	header := block[0]
	body := block[1 : len(block)-1]

	clause := extractClause(header, "for", "do")
	parts := strings.SplitN(clause, " in ", 2)
	varName := strings.TrimSpace(parts[0])
	var itemsExpr string
	if len(parts) > 1 {
		itemsExpr = parts[1]
	}
	items := strings.Fields(sr.expand(itemsExpr))

	var out strings.Builder
	for _, item := range items {
		sr.e.Ctx.Env[varName] = item
		o, exit := sr.runSequence(body)
		out.WriteString(o)
		sr.lastExit = exit
	}
	return out.String()
}

// runWhile caps at 100 iterations to guarantee termination (spec §4.4).
func (sr *scriptRunner) runWhile(block []string) string {
	header := block[0]
	body := block[1 : len(block)-1]
	cond := extractClause(header, "while", "do")

	var out strings.Builder
	for iter := 0; iter < 100; iter++ {
		if !sr.evalCondition(cond) {
			break
		}
		o, exit := sr.runSequence(body)
		out.WriteString(o)
		sr.lastExit = exit
	}
	return out.String()
}

func (sr *scriptRunner) runCase(block []string) string {
	header := block[0]
	body := block[1 : len(block)-1]
	exprVal := sr.expand(extractClause(header, "case", "in"))

	for _, raw := range strings.Split(strings.Join(body, "\n"), ";;") {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		idx := strings.Index(raw, ")")
		if idx < 0 {
			continue
		}
		patterns := strings.Split(raw[:idx], "|")
		matched := false
		for _, p := range patterns {
			p = strings.TrimSpace(p)
			if ok, _ := filepath.Match(p, exprVal); ok {
				matched = true
				break
			}
		}
		if !matched {
			continue
		}
		lines := strings.Split(raw[idx+1:], "\n")
		out, exit := sr.runSequence(lines)
		sr.lastExit = exit
		return out
	}
	sr.lastExit = 0
	return ""
}

// evalArithmetic evaluates a flat `$(( ))` expression: +, -, *, /, %,
// parens, integer literals, and variable names resolved via lookup
// (spec §4.4 "arithmetic assignment").
func evalArithmetic(expr string, lookup func(string) string) int64 {
	expr = strings.TrimSpace(expr)
	parenRE := regexp.MustCompile(`\(([^()]+)\)`)
	for parenRE.MatchString(expr) {
		expr = parenRE.ReplaceAllStringFunc(expr, func(m string) string {
			return strconv.FormatInt(evalArithmetic(m[1:len(m)-1], lookup), 10)
		})
	}

	tokens := strings.Fields(spaceOperators(expr))
	if len(tokens) == 0 {
		return 0
	}
	nums := []int64{arithValue(tokens[0], lookup)}
	var ops []string
	for i := 1; i < len(tokens); i += 2 {
		ops = append(ops, tokens[i])
		nums = append(nums, arithValue(tokens[i+1], lookup))
	}

	nums, ops = reduceArith(nums, ops, map[string]bool{"*": true, "/": true, "%": true})
	nums, _ = reduceArith(nums, ops, map[string]bool{"+": true, "-": true})
	return nums[0]
}

func arithValue(tok string, lookup func(string) string) int64 {
	if n, err := strconv.ParseInt(tok, 10, 64); err == nil {
		return n
	}
	n, _ := strconv.ParseInt(lookup(tok), 10, 64)
	return n
}

func spaceOperators(s string) string {
	var b strings.Builder
	for _, r := range s {
		if strings.ContainsRune("+-*/%", r) {
			b.WriteByte(' ')
			b.WriteRune(r)
			b.WriteByte(' ')
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func reduceArith(nums []int64, ops []string, targets map[string]bool) ([]int64, []string) {
	outNums := []int64{nums[0]}
	var outOps []string
	for i, op := range ops {
		rhs := nums[i+1]
		if targets[op] {
			last := outNums[len(outNums)-1]
			switch op {
			case "+":
				outNums[len(outNums)-1] = last + rhs
			case "-":
				outNums[len(outNums)-1] = last - rhs
			case "*":
				outNums[len(outNums)-1] = last * rhs
			case "/":
				if rhs != 0 {
					outNums[len(outNums)-1] = last / rhs
				}
			case "%":
				if rhs != 0 {
					outNums[len(outNums)-1] = last % rhs
				}
			}
		} else {
			outNums = append(outNums, rhs)
			outOps = append(outOps, op)
		}
	}
	return outNums, outOps
}
