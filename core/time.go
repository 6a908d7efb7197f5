// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core

import (
	"time"
)

// NewTime creates a new time service
func NewTime(cfg TimeConfiguration) *Time {
	t := &Time{
		fps:    cfg.FramesPerSecond,
		report: time.Duration(cfg.ReportInterval) * time.Second,
	}
	if cfg.FramesPerSecond > 0 {
		t.fpsTicker = time.NewTicker(time.Second / time.Duration(cfg.FramesPerSecond))
	}
	return t
}

// Time contains all the time services and tickers
type Time struct {
	fps       int
	fpsTicker *time.Ticker
	report    time.Duration
}

// Fps gets the set frames per second
func (t *Time) Fps() int {
	return t.fps
}

// Limiter returns a channel that paces frames, or nil if
// the frame rate is unlimited
func (t *Time) Limiter() <-chan time.Time {
	if t.fpsTicker == nil {
		return nil
	}
	return t.fpsTicker.C
}

// ReportInterval is the time between frame rate reports,
// zero when reporting is disabled
func (t *Time) ReportInterval() time.Duration {
	return t.report
}

// Stop stops the tickers
func (t *Time) Stop() {
	if t.fpsTicker != nil {
		t.fpsTicker.Stop()
	}
}
