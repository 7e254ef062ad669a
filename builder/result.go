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

import "fmt"

// Fallback values used when the service omits a field.
const (
	NotFound     = "Not Found"
	UnknownValue = "Unknown"
	SystemError  = "System error!"
	UnknownCode  = -1
)

// ErrorKind tells a failed build apart from a failure to talk to the service.
type ErrorKind int

// Error kinds.
const (
	// BuildFailure means the remote build ran and did not succeed.
	BuildFailure ErrorKind = iota
	// TransportFailure means the build service could not be reached or
	// rejected a request.
	TransportFailure
)

// String returns the name of the kind.
func (k ErrorKind) String() string {
	if k == TransportFailure {
		return "transport"
	}
	return "build"
}

// MarshalText renders the kind by name in summary files.
func (k ErrorKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Image is a pushed image and its digest.
type Image struct {
	Name   string `yaml:"name" json:"name"`
	Digest string `yaml:"digest" json:"digest"`
}

// Outcome is what a Handle reports once the remote operation is done.
type Outcome struct {
	LogsURL string
	// Error is set when the operation finished with an error.
	Error  *OutcomeError
	Images []Image
}

// OutcomeError is the error status of a finished operation.
type OutcomeError struct {
	Code    int
	Message string
}

// BuildError describes why a build did not produce images.
type BuildError struct {
	Kind    ErrorKind `yaml:"kind" json:"kind"`
	Code    int       `yaml:"code" json:"code"`
	Message string    `yaml:"message" json:"message"`
}

// Error implements the error interface.
func (e *BuildError) Error() string {
	return fmt.Sprintf("%s error %d: %s", e.Kind, e.Code, e.Message)
}

// BuildOutput lists the images a successful build pushed.
type BuildOutput struct {
	Images []Image `yaml:"images" json:"images"`
}

// Result is the settled state of a build. Exactly one of Error and Output
// is set.
type Result struct {
	LogsURL string       `yaml:"logs_url" json:"logs_url"`
	Error   *BuildError  `yaml:"error,omitempty" json:"error,omitempty"`
	Output  *BuildOutput `yaml:"output,omitempty" json:"output,omitempty"`
}

// Succeeded reports whether the build produced output.
func (r *Result) Succeeded() bool {
	return r.Error == nil
}

// resultFromOutcome converts a finished operation into a Result.
func resultFromOutcome(o *Outcome) *Result {
	if o == nil {
		return transportResult(nil)
	}

	if o.Error != nil {
		code := o.Error.Code
		if code == 0 {
			code = UnknownCode
		}
		return &Result{
			LogsURL: o.LogsURL,
			Error: &BuildError{
				Kind:    BuildFailure,
				Code:    code,
				Message: o.Error.Message,
			},
		}
	}

	logsURL := o.LogsURL
	if logsURL == "" {
		logsURL = NotFound
	}

	images := make([]Image, 0, len(o.Images))
	for _, img := range o.Images {
		if img.Name == "" {
			img.Name = UnknownValue
		}
		if img.Digest == "" {
			img.Digest = UnknownValue
		}
		images = append(images, img)
	}

	return &Result{LogsURL: logsURL, Output: &BuildOutput{Images: images}}
}

// transportResult converts an error talking to the service into a Result.
func transportResult(err error) *Result {
	message := SystemError
	if err != nil && err.Error() != "" {
		message = err.Error()
	}
	return &Result{
		LogsURL: NotFound,
		Error: &BuildError{
			Kind:    TransportFailure,
			Code:    UnknownCode,
			Message: message,
		},
	}
}
