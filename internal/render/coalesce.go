/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package render

import (
	"sync"
	"time"
)

// Scheduler runs fn once on a later frame tick. The returned cancel func
// prevents fn from running if it has not started.
type Scheduler interface {
	Schedule(fn func()) (cancel func())
}

// Coalescer collapses bursts of repaint requests into one paint per tick:
// a new request cancels the pending one instead of stacking another.
type Coalescer struct {
	sched Scheduler
	paint func()

	mu     sync.Mutex
	cancel func()
	gen    uint64
	done   uint64
	frames uint64
}

func NewCoalescer(s Scheduler, paint func()) *Coalescer {
	return &Coalescer{sched: s, paint: paint}
}

// Request asks for a frame.
func (c *Coalescer) Request() {
	c.mu.Lock()
	if c.cancel != nil {
		c.cancel()
	}
	c.gen++
	gen := c.gen
	c.mu.Unlock()

	cancel := c.sched.Schedule(func() { c.fire(gen) })

	c.mu.Lock()
	if c.gen == gen && c.done != gen {
		c.cancel = cancel
	}
	c.mu.Unlock()
}

func (c *Coalescer) fire(gen uint64) {
	c.mu.Lock()
	if gen != c.gen {
		// superseded by a later request
		c.mu.Unlock()
		return
	}
	c.cancel = nil
	c.done = gen
	c.frames++
	c.mu.Unlock()
	c.paint()
}

// Pending reports whether a frame is scheduled.
func (c *Coalescer) Pending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cancel != nil
}

// Frames counts paints so far.
func (c *Coalescer) Frames() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.frames
}

// ManualScheduler queues callbacks until Tick. Headless rendering and tests
// drive frames with it.
type ManualScheduler struct {
	mu    sync.Mutex
	queue []*manualTask
}

type manualTask struct {
	fn        func()
	cancelled bool
}

func (m *ManualScheduler) Schedule(fn func()) func() {
	t := &manualTask{fn: fn}
	m.mu.Lock()
	m.queue = append(m.queue, t)
	m.mu.Unlock()
	return func() {
		m.mu.Lock()
		t.cancelled = true
		m.mu.Unlock()
	}
}

// Tick runs every live queued callback and reports how many ran.
func (m *ManualScheduler) Tick() int {
	m.mu.Lock()
	q := m.queue
	m.queue = nil
	m.mu.Unlock()
	n := 0
	for _, t := range q {
		m.mu.Lock()
		dead := t.cancelled
		m.mu.Unlock()
		if dead {
			continue
		}
		t.fn()
		n++
	}
	return n
}

// TimerScheduler fires after a fixed frame interval on a timer goroutine.
// Hosts wrap the paint func to hop onto their UI thread.
type TimerScheduler struct {
	Interval time.Duration
}

// FrameInterval is the default tick, roughly 60 Hz.
const FrameInterval = 16 * time.Millisecond

func (s TimerScheduler) Schedule(fn func()) func() {
	d := s.Interval
	if d <= 0 {
		d = FrameInterval
	}
	t := time.AfterFunc(d, fn)
	return func() { t.Stop() }
}
