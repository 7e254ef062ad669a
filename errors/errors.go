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

// Package errors formats the user facing failures of file and storage
// operations as "failed to <action> (<detail>): <cause>".
package errors

import "fmt"

// Wrap describes a failed action. detail names the object acted on, such as
// the archive path or bucket/key, and is omitted when empty. The cause stays
// reachable through errors.Is and errors.As. A nil err yields nil.
//
//	return errors.Wrap("delete", bucket+"/"+key, err)
func Wrap(action, detail string, err error) error {
	if err == nil {
		return nil
	}
	if detail == "" {
		return fmt.Errorf("failed to %s: %w", action, err)
	}
	return fmt.Errorf("failed to %s (%s): %w", action, detail, err)
}
