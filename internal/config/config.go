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

package config

import (
	"errors"
	"fmt"
	"strings"
)

// Recognized platforms
const (
	PlatformVercel = "vercel"
	PlatformGitHub = "github"
)

const (
	defaultConcurrency = 2
	maxConcurrency     = 4
)

// Config is the invocation configuration. It is resolved exactly once
// at startup and passed explicitly into the orchestrator; no package
// reads the environment after that.
type Config struct {
	// Token is the platform API credential. It is never logged; status
	// output may report its length only.
	Token string
	// Projects is the ordered list of project identifiers to process
	Projects []string
	// Verbose switches per-decision and per-attempt logging on
	Verbose bool
	// Aggressive permits heuristic text parsing when structured data
	// is unavailable
	Aggressive bool
	// Platform selects the adapter: vercel or github
	Platform string
	// GitHubOwner is the repository owner; required for the github
	// platform
	GitHubOwner string
	// Concurrency is the project worker pool size
	Concurrency int
}

// FromEnv builds a Config from the process environment. The project
// list prefers INPUT_PROJECTS (the per-invocation override a CI
// trigger supplies) and falls back to DEFAULT_PROJECTS. The token is
// read from DEPLOY_TOKEN, with VERCEL_CLI_TOKEN accepted for
// compatibility with existing workflow secrets.
func FromEnv(getenv func(string) string) Config {
	token := getenv("DEPLOY_TOKEN")
	if token == "" {
		token = getenv("VERCEL_CLI_TOKEN")
	}

	projects := SplitList(getenv("INPUT_PROJECTS"))
	if len(projects) == 0 {
		projects = SplitList(getenv("DEFAULT_PROJECTS"))
	}

	return Config{
		Token:       token,
		Projects:    projects,
		Verbose:     ParseBool(getenv("DEPLOY_CLEANUP_VERBOSE")),
		Aggressive:  ParseBool(getenv("AUTO_CONFIRM_AGGRESSIVE_CLEANUP")),
		Platform:    PlatformVercel,
		Concurrency: defaultConcurrency,
	}
}

// SplitList splits a comma-separated identifier list, trimming
// whitespace and dropping empty entries.
func SplitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// ParseBool recognizes the truthy spellings CI environments tend to
// use. Anything else, including empty, is false.
func ParseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes":
		return true
	default:
		return false
	}
}

// Validate reports the configuration errors that are fatal to the
// whole run before any network call is made.
func (c Config) Validate() error {
	if c.Token == "" {
		return errors.New("missing API token: set --token or DEPLOY_TOKEN")
	}
	if len(c.Projects) == 0 {
		return errors.New("no projects configured: set --projects, INPUT_PROJECTS or DEFAULT_PROJECTS")
	}
	switch c.Platform {
	case PlatformVercel:
	case PlatformGitHub:
		if c.GitHubOwner == "" {
			return errors.New("the github platform requires --github-owner")
		}
	default:
		return fmt.Errorf("unknown platform %q (expected %s or %s)", c.Platform, PlatformVercel, PlatformGitHub)
	}
	return nil
}

// Normalize clamps values into their supported ranges.
func (c *Config) Normalize() {
	if c.Concurrency < 1 {
		c.Concurrency = 1
	}
	if c.Concurrency > maxConcurrency {
		c.Concurrency = maxConcurrency
	}
}
