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

package deployment

import (
	"strings"
	"time"
)

// State represents the lifecycle state of a deployment record
type State string

const (
	// StateQueued indicates the deployment is waiting for a build slot
	StateQueued State = "QUEUED"
	// StateBuilding indicates the deployment is currently building
	StateBuilding State = "BUILDING"
	// StateReady indicates the deployment completed successfully
	StateReady State = "READY"
	// StateError indicates the deployment failed
	StateError State = "ERROR"
	// StateCanceled indicates the deployment was canceled
	StateCanceled State = "CANCELED"
	// StateUnknown is assigned when the platform reports a state this
	// tool does not recognize; unknown records are never deleted
	StateUnknown State = "UNKNOWN"
)

// Stale reports whether the state is non-terminal and still consuming
// build or queue resources.
func (s State) Stale() bool {
	return s == StateQueued || s == StateBuilding
}

// Terminal reports whether the state will not transition further.
func (s State) Terminal() bool {
	return s == StateReady || s == StateError || s == StateCanceled
}

// ParseState maps a platform-reported state string onto the shared
// enum. Anything unrecognized maps to StateUnknown so it can never be
// selected for deletion.
func ParseState(raw string) State {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "QUEUED":
		return StateQueued
	case "BUILDING":
		return StateBuilding
	case "READY":
		return StateReady
	case "ERROR":
		return StateError
	case "CANCELED", "CANCELLED":
		return StateCanceled
	default:
		return StateUnknown
	}
}

// Source marks whether a record came from structured platform data or
// from heuristic text parsing
type Source string

const (
	// SourceStructured indicates the record was decoded from the
	// platform's structured API response
	SourceStructured Source = "structured"
	// SourceHeuristic indicates the record was recovered by pattern
	// matching over raw text output
	SourceHeuristic Source = "heuristic"
)

// Deployment represents one deployment record on the remote platform
type Deployment struct {
	// ID is the platform-assigned opaque identifier
	ID string
	// ProjectID identifies the owning project
	ProjectID string
	// State is the lifecycle state at listing time
	State State
	// CreatedAt is the platform-assigned creation timestamp, used only
	// for relative ordering
	CreatedAt time.Time
	// Source tags where the record came from
	Source Source
}

// Newer reports whether d orders strictly newer than other: CreatedAt
// descending, ties broken by lexicographically greatest ID so ordering
// is deterministic.
func (d Deployment) Newer(other Deployment) bool {
	if !d.CreatedAt.Equal(other.CreatedAt) {
		return d.CreatedAt.After(other.CreatedAt)
	}
	return d.ID > other.ID
}
