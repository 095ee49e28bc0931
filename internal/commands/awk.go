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
	"strconv"
	"strings"

	"github.com/mkokutoyori/netsim/internal/shell"
)

// awkRule is one pattern/action pair, e.g. "$2 > 30 { print $1 }" or a
// bare "{ print }".
type awkRule struct {
	pattern string // "", "BEGIN", "END", or a condition expression
	action  string // statements inside { }, semicolon-separated
}

var awkRuleRE = regexp.MustCompile(`(?s)^\s*([^{]*)\{(.*)\}\s*$`)

// Awk implements a useful subset of `awk`: BEGIN/END blocks, simple
// field comparisons ($2 > 30), assignments (sum += $2), and print
// (spec §4.3).
func Awk(ctx *shell.Context, args []string, stdin string) (string, int) {
	if len(args) == 0 {
		return "", 1
	}
	program := args[0]
	text, _, code := inputText(ctx, args[1:], stdin)
	if code != 0 {
		return "", code
	}

	rules := parseAwkProgram(program)
	vars := map[string]float64{}
	svars := map[string]string{}
	var out strings.Builder

	for _, r := range rules {
		if r.pattern == "BEGIN" {
			runAwkAction(r.action, nil, vars, svars, &out)
		}
	}

	for _, line := range splitLines(text) {
		fields := strings.Fields(line)
		for _, r := range rules {
			if r.pattern == "BEGIN" || r.pattern == "END" {
				continue
			}
			if r.pattern == "" || evalAwkCond(r.pattern, fields) {
				runAwkAction(r.action, fields, vars, svars, &out)
			}
		}
	}

	for _, r := range rules {
		if r.pattern == "END" {
			runAwkAction(r.action, nil, vars, svars, &out)
		}
	}

	return out.String(), 0
}

func parseAwkProgram(program string) []awkRule {
	var rules []awkRule
	depth := 0
	start := 0
	for i, c := range program {
		switch c {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				m := awkRuleRE.FindStringSubmatch(program[start : i+1])
				if m != nil {
					rules = append(rules, awkRule{
						pattern: strings.TrimSpace(m[1]),
						action:  strings.TrimSpace(m[2]),
					})
				}
				start = i + 1
			}
		}
	}
	return rules
}

var awkCondRE = regexp.MustCompile(`^\s*(\$\d+|\w+)\s*(==|!=|>=|<=|>|<)\s*(.+?)\s*$`)

func evalAwkCond(cond string, fields []string) bool {
	m := awkCondRE.FindStringSubmatch(cond)
	if m == nil {
		return true
	}
	lhs := awkFieldValue(m[1], fields)
	rhsStr := strings.Trim(m[3], `"`)
	op := m[2]

	lf, lerr := strconv.ParseFloat(lhs, 64)
	rf, rerr := strconv.ParseFloat(rhsStr, 64)
	if lerr == nil && rerr == nil {
		switch op {
		case "==":
			return lf == rf
		case "!=":
			return lf != rf
		case ">":
			return lf > rf
		case "<":
			return lf < rf
		case ">=":
			return lf >= rf
		case "<=":
			return lf <= rf
		}
	}
	switch op {
	case "==":
		return lhs == rhsStr
	case "!=":
		return lhs != rhsStr
	default:
		return lhs > rhsStr
	}
}

func awkFieldValue(token string, fields []string) string {
	if strings.HasPrefix(token, "$") {
		n, err := strconv.Atoi(token[1:])
		if err != nil || n == 0 {
			return strings.Join(fields, " ")
		}
		if n-1 < len(fields) {
			return fields[n-1]
		}
		return ""
	}
	return token
}

func runAwkAction(action string, fields []string, vars map[string]float64, svars map[string]string, out *strings.Builder) {
	for _, stmt := range splitAwkStatements(action) {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		switch {
		case stmt == "print" || strings.HasPrefix(stmt, "print "):
			runAwkPrint(stmt, fields, vars, svars, out)
		case strings.Contains(stmt, "+="):
			applyAwkAssign(stmt, "+=", fields, vars)
		case strings.Contains(stmt, "="):
			applyAwkAssign(stmt, "=", fields, vars)
		}
	}
}

func splitAwkStatements(action string) []string {
	return strings.Split(action, ";")
}

func runAwkPrint(stmt string, fields []string, vars map[string]float64, svars map[string]string, out *strings.Builder) {
	argStr := strings.TrimSpace(strings.TrimPrefix(stmt, "print"))
	if argStr == "" {
		fmt.Fprintln(out, strings.Join(fields, " "))
		return
	}
	parts := strings.Split(argStr, ",")
	var vals []string
	for _, p := range parts {
		vals = append(vals, awkExprValue(strings.TrimSpace(p), fields, vars, svars))
	}
	fmt.Fprintln(out, strings.Join(vals, " "))
}

func awkExprValue(expr string, fields []string, vars map[string]float64, svars map[string]string) string {
	if strings.HasPrefix(expr, `"`) && strings.HasSuffix(expr, `"`) {
		return strings.Trim(expr, `"`)
	}
	if strings.HasPrefix(expr, "$") {
		return awkFieldValue(expr, fields)
	}
	if v, ok := vars[expr]; ok {
		if v == float64(int64(v)) {
			return strconv.FormatInt(int64(v), 10)
		}
		return strconv.FormatFloat(v, 'g', -1, 64)
	}
	if v, ok := svars[expr]; ok {
		return v
	}
	return expr
}

func applyAwkAssign(stmt, op string, fields []string, vars map[string]float64) {
	idx := strings.Index(stmt, op)
	name := strings.TrimSpace(stmt[:idx])
	rhs := strings.TrimSpace(stmt[idx+len(op):])

	val := awkNumericValue(rhs, fields, vars)
	if op == "+=" {
		vars[name] += val
	} else {
		vars[name] = val
	}
}

func awkNumericValue(expr string, fields []string, vars map[string]float64) float64 {
	expr = strings.TrimSpace(expr)
	if strings.HasPrefix(expr, "$") {
		f, _ := strconv.ParseFloat(awkFieldValue(expr, fields), 64)
		return f
	}
	if v, ok := vars[expr]; ok {
		return v
	}
	f, _ := strconv.ParseFloat(expr, 64)
	return f
}
