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

// Package github implements the platform adapter for the GitHub
// Deployments API.
//
// Projects are repositories under a configured owner. A deployment's
// lifecycle state is resolved from its most recent deployment status:
// queued/pending map to QUEUED, in_progress to BUILDING, success to
// READY, error/failure to ERROR and inactive to CANCELED. A deployment
// with no status yet counts as QUEUED.
//
// GitHub deployment identifiers are only unique per repository, so
// this adapter exposes the composite "repo/number" form and parses it
// back on deletion.
//
// Authentication requires a personal access token with the repo and
// repo_deployment scopes.
package github
