// (c) netherd contributors 2023
//
// SPDX-License-Identifier: MIT

// Yet another (braille) spinner.

package main

import (
	"sync/atomic"
	"time"
)

var spinnerPhases = func() (phases []string) {
	for _, r := range "⠉⠘⠰⠤⠆⠃" {
		phases = append(phases, string(r)+" ")
	}
	return
}()

// spinner is yet another blindingly simple spinner; just enough to get the
// job done, no bells, no frills. Start it to make it spin and Stop it to
// release its background ticker.
type spinner struct {
	phase atomic.Uint32
	done  chan struct{}
}

func newSpinner() *spinner {
	return &spinner{
		done: make(chan struct{}),
	}
}

// Spinner returns the spinner string for the current phase.
func (s *spinner) Spinner() string {
	return spinnerPhases[int(s.phase.Load())%len(spinnerPhases)]
}

// Start the spinner to spin in steps every specified interval.
func (s *spinner) Start(interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.phase.Add(1)
			case <-s.done:
				return
			}
		}
	}()
}

// Stop the spinner and release the background resources.
func (s *spinner) Stop() {
	close(s.done)
}
