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

// Package platform defines the adapter contract between the cleanup
// orchestrator and any concrete deployment platform, along with the
// error taxonomy shared by all adapters.
//
// Error taxonomy:
//   - TransportError: the remote call never completed (network, auth,
//     timeout). Fails the project, never the run.
//   - MalformedResponseError: a response arrived but the structured
//     schema could not be decoded. Carries the raw payload so the
//     heuristic parser can take over when aggressive cleanup is on.
//   - DeleteError: a failed delete, classified as transient
//     (retryable), not-found (success-equivalent) or permission
//     (non-retryable).
//
// Adapters perform network calls only and keep no state between calls.
package platform
