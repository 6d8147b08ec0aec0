// MIT License
//
// Copyright (c) 2025 Mike Lane
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package heuristic

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/mikelane/deploysweep/internal/deployment"
)

var (
	// idPattern recognizes the deployment URL that platform CLIs print
	// as the row key
	idPattern = regexp.MustCompile(`https://[^\s]+`)
	// statePattern recognizes a state keyword, optionally preceded by
	// the status marker some CLI tables render
	statePattern = regexp.MustCompile(`(?i)●?\s*\b(queued|building|ready|error|canceled|cancelled)\b`)
	// agePattern recognizes relative age expressions like 45s, 3m, 2h,
	// 1d. It is applied to the text before the URL: the age column
	// precedes the row key, the build duration column follows it.
	agePattern = regexp.MustCompile(`\b(\d+)([smhd])\b`)
)

// positionStep spaces out records that carry no age expression, in
// listing order (platform CLIs print newest first).
const positionStep = time.Minute

// Parser recovers a best-effort deployment list from raw text output
// when structured data is unavailable. It is a last resort, gated
// behind aggressive cleanup mode.
type Parser struct {
	// ref anchors relative ages and positional ordering. The same ref
	// and input always yield the same output.
	ref time.Time
}

// NewParser returns a parser anchored at ref.
func NewParser(ref time.Time) *Parser {
	return &Parser{ref: ref}
}

// Parse extracts deployment records from raw, one per line that
// contains an id-shaped token (a deployment URL).
//
// Rules, applied in order per line:
//   - No URL: the line is skipped entirely
//   - A recognizable state keyword maps onto the shared state enum;
//     an ambiguous line keeps its record but is demoted to UNKNOWN,
//     which downstream policy never deletes
//   - A recognizable age expression before the URL orders the record;
//     otherwise line position does (earlier line = newer)
//
// Parse never fails: input with no recognizable lines yields an empty
// slice. All records are tagged SourceHeuristic.
func (p *Parser) Parse(projectID, raw string) []deployment.Deployment {
	var out []deployment.Deployment

	pos := 0
	for _, line := range strings.Split(raw, "\n") {
		loc := idPattern.FindStringIndex(line)
		if loc == nil {
			continue
		}
		id := line[loc[0]:loc[1]]
		before, after := line[:loc[0]], line[loc[1]:]

		state := deployment.StateUnknown
		if m := statePattern.FindStringSubmatch(after); m != nil {
			state = deployment.ParseState(m[1])
		}

		createdAt := p.ref.Add(-time.Duration(pos+1) * positionStep)
		if m := agePattern.FindStringSubmatch(before); m != nil {
			if age, ok := parseAge(m[1], m[2]); ok {
				createdAt = p.ref.Add(-age)
			}
		}

		out = append(out, deployment.Deployment{
			ID:        id,
			ProjectID: projectID,
			State:     state,
			CreatedAt: createdAt,
			Source:    deployment.SourceHeuristic,
		})
		pos++
	}

	return out
}

// parseAge converts an age expression into a duration.
func parseAge(num, unit string) (time.Duration, bool) {
	n, err := strconv.Atoi(num)
	if err != nil {
		return 0, false
	}
	switch unit {
	case "s":
		return time.Duration(n) * time.Second, true
	case "m":
		return time.Duration(n) * time.Minute, true
	case "h":
		return time.Duration(n) * time.Hour, true
	case "d":
		return time.Duration(n) * 24 * time.Hour, true
	default:
		return 0, false
	}
}
