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

package selection

import "github.com/mikelane/deploysweep/internal/deployment"

// Newest returns the newest deployment across the whole set, any
// state: maximum CreatedAt, ties broken by lexicographically greatest
// ID. ok is false for an empty set.
func Newest(deps []deployment.Deployment) (deployment.Deployment, bool) {
	if len(deps) == 0 {
		return deployment.Deployment{}, false
	}

	newest := deps[0]
	for _, d := range deps[1:] {
		if d.Newer(newest) {
			newest = d
		}
	}
	return newest, true
}

// Select computes the set of deployment ids to delete under the
// keep-newest policy.
//
// The following rules apply:
//   - Only QUEUED and BUILDING deployments are deletion candidates;
//     terminal and UNKNOWN records are never selected
//   - The newest deployment is determined over the ENTIRE input, not
//     just the stale subset
//   - A stale deployment that is also the overall newest is kept; if
//     the newest is terminal, every stale deployment is eligible
//   - An empty input or a set with no stale members yields an empty
//     selection
//
// Select is a pure function over plain data: same input, same output,
// no I/O and no hidden state.
func Select(deps []deployment.Deployment) map[string]bool {
	selected := make(map[string]bool)

	newest, ok := Newest(deps)
	if !ok {
		return selected
	}

	for _, d := range deps {
		if !d.State.Stale() {
			continue
		}
		if d.ID == newest.ID {
			// the current one to keep
			continue
		}
		selected[d.ID] = true
	}

	return selected
}
