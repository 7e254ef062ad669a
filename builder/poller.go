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

import (
	"context"
	"fmt"
	"time"

	"github.com/cowdogmoo/cloudbuild-action/logging"
)

// Default poller intervals.
const (
	DefaultPollInterval   = 100 * time.Millisecond
	DefaultReportInterval = 5 * time.Second
)

// Poller waits for a submitted build and logs its progress.
type Poller struct {
	// PollInterval is how often the handle status is read.
	PollInterval time.Duration
	// ReportInterval is the longest time between two progress lines while
	// the status does not change.
	ReportInterval time.Duration
}

// NewPoller returns a Poller with the given intervals. Zero values select
// the defaults.
func NewPoller(pollInterval, reportInterval time.Duration) *Poller {
	if pollInterval <= 0 {
		pollInterval = DefaultPollInterval
	}
	if reportInterval <= 0 {
		reportInterval = DefaultReportInterval
	}
	return &Poller{PollInterval: pollInterval, ReportInterval: reportInterval}
}

type waitResult struct {
	outcome *Outcome
	err     error
}

// Await blocks until the handle settles or ctx is done and returns the
// settled result. A progress line is logged whenever the status changes and
// at least once per ReportInterval.
func (p *Poller) Await(ctx context.Context, h Handle) *Result {
	done := make(chan waitResult, 1)
	go func() {
		outcome, err := h.Wait(ctx)
		done <- waitResult{outcome: outcome, err: err}
	}()

	ticker := time.NewTicker(p.PollInterval)
	defer ticker.Stop()

	var (
		lastStatus = Status(-1)
		lastReport time.Time
	)

	for {
		select {
		case r := <-done:
			return settle(r)
		case <-ctx.Done():
			// Prefer an outcome that arrived together with the cancellation.
			select {
			case r := <-done:
				return settle(r)
			default:
			}
			return transportResult(fmt.Errorf("stopped waiting for build: %w", ctx.Err()))
		case <-ticker.C:
			status := h.Status()
			if status != lastStatus || time.Since(lastReport) >= p.ReportInterval {
				logging.InfoContext(ctx, "%s", status.Describe())
				lastStatus = status
				lastReport = time.Now()
			}
		}
	}
}

func settle(r waitResult) *Result {
	if r.err != nil {
		return transportResult(r.err)
	}
	return resultFromOutcome(r.outcome)
}

// Submit starts a build and waits for it. A submission error yields a
// transport failure result without polling.
func Submit(ctx context.Context, s Submitter, req Request, p *Poller) *Result {
	h, err := s.Submit(ctx, req)
	if err != nil {
		return transportResult(err)
	}
	return p.Await(ctx, h)
}
