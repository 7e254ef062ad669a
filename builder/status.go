/*
Copyright © 2026 Jayson Grace <jayson.e.grace@gmail.com>

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in
all copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
THE SOFTWARE.
*/

package builder

import "strings"

// Status is the state of a remote build. Values match the Cloud Build API.
type Status int

// Remote build states.
const (
	StatusUnknown       Status = 0
	StatusQueued        Status = 1
	StatusWorking       Status = 2
	StatusSuccess       Status = 3
	StatusFailure       Status = 4
	StatusInternalError Status = 5
	StatusTimeout       Status = 6
	StatusCancelled     Status = 7
	StatusExpired       Status = 9
	StatusPending       Status = 10
)

// ParseStatus maps an API status name such as "WORKING" to a Status.
// Unknown names map to StatusUnknown.
func ParseStatus(name string) Status {
	switch strings.ToUpper(name) {
	case "QUEUED":
		return StatusQueued
	case "WORKING":
		return StatusWorking
	case "SUCCESS":
		return StatusSuccess
	case "FAILURE":
		return StatusFailure
	case "INTERNAL_ERROR":
		return StatusInternalError
	case "TIMEOUT":
		return StatusTimeout
	case "CANCELLED":
		return StatusCancelled
	case "EXPIRED":
		return StatusExpired
	case "PENDING":
		return StatusPending
	default:
		return StatusUnknown
	}
}

// String returns the short name of the status.
func (s Status) String() string {
	switch s {
	case StatusQueued:
		return "queued"
	case StatusWorking:
		return "working"
	case StatusSuccess:
		return "success"
	case StatusFailure:
		return "failure"
	case StatusInternalError:
		return "internal-error"
	case StatusTimeout:
		return "timeout"
	case StatusCancelled:
		return "cancelled"
	case StatusExpired:
		return "expired"
	default:
		return "unknown"
	}
}

// Describe returns the progress line logged for the status.
func (s Status) Describe() string {
	switch s {
	case StatusQueued:
		return "Build is currently queued..."
	case StatusWorking:
		return "Build is currently working..."
	case StatusSuccess:
		return "Build was successful!"
	case StatusFailure:
		return "Build has failed!"
	case StatusInternalError:
		return "Build has failed with an internal error!"
	case StatusTimeout:
		return "Build has timed out!"
	case StatusCancelled:
		return "Build was cancelled!"
	case StatusExpired:
		return "Build has expired!"
	default:
		return "Build is currently in an unknown status..."
	}
}
