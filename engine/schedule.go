// Copyright © 2025 Tabulon contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: engine/schedule.go
// Summary: Production Scheduler backed by timers and a host event loop.

package engine

import "time"

const defaultFrameInterval = 16 * time.Millisecond

// LoopScheduler implements Scheduler on top of a host event loop. Timer
// callbacks fire on their own goroutine, so every task is marshalled back
// through Post, which must hand the func to the loop (e.g. by posting a
// custom tcell event). The engine itself stays single-threaded.
type LoopScheduler struct {
	// Post hands a task to the host loop for execution. Required.
	Post func(func())
	// FrameInterval approximates one display frame; 0 means ~60Hz.
	FrameInterval time.Duration
}

func (s *LoopScheduler) Frame(fn func()) {
	d := s.FrameInterval
	if d <= 0 {
		d = defaultFrameInterval
	}
	time.AfterFunc(d, func() { s.Post(fn) })
}

func (s *LoopScheduler) After(d time.Duration, fn func()) (cancel func()) {
	t := time.AfterFunc(d, func() { s.Post(fn) })
	return func() { t.Stop() }
}
