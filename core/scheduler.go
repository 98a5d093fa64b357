package core

import (
	"errors"
	"time"
)

// Timer represents a scheduled event
type Timer struct {
	WakeTime uint64
	Handler  func(*Timer) uint8
	Next     *Timer

	queued bool
}

const (
	SF_DONE       = 0
	SF_RESCHEDULE = 1
)

var (
	ErrTimerActive    = errors.New("timer already scheduled")
	ErrTimerQueueFull = errors.New("timer queue full")
	ErrTimerNoHandler = errors.New("timer has no handler")
)

// Scheduler keeps a list of timers sorted by wake time. Schedule may be
// called from interrupt context; Dispatch runs from the timer task and is the
// only place handlers execute.
type Scheduler struct {
	crit     Critical
	clock    Clock
	list     *Timer
	queued   int
	capacity int
}

// NewScheduler creates a scheduler reading time from clock. A capacity of
// zero or less means unbounded.
func NewScheduler(clock Clock, capacity int) *Scheduler {
	return &Scheduler{
		clock:    clock,
		capacity: capacity,
	}
}

// Clock returns the scheduler's time source
func (s *Scheduler) Clock() Clock {
	return s.clock
}

// ScheduleTimer adds a timer to the schedule
func (s *Scheduler) ScheduleTimer(t *Timer) error {
	state := s.crit.Enter()
	defer s.crit.Exit(state)

	return s.insertTimer(t)
}

// insertTimer inserts a timer in sorted order by WakeTime.
// Caller holds the critical section.
func (s *Scheduler) insertTimer(t *Timer) error {
	if t.Handler == nil {
		return ErrTimerNoHandler
	}
	if t.queued {
		return ErrTimerActive
	}
	if s.capacity > 0 && s.queued >= s.capacity {
		return ErrTimerQueueFull
	}

	t.queued = true
	s.queued++

	if s.list == nil || t.WakeTime < s.list.WakeTime {
		t.Next = s.list
		s.list = t
		return nil
	}

	current := s.list
	for current.Next != nil && current.Next.WakeTime <= t.WakeTime {
		current = current.Next
	}

	t.Next = current.Next
	current.Next = t
	return nil
}

// CancelTimer removes t from the schedule. It reports whether t was queued.
func (s *Scheduler) CancelTimer(t *Timer) bool {
	state := s.crit.Enter()
	defer s.crit.Exit(state)

	if !t.queued {
		return false
	}

	link := &s.list
	for *link != nil {
		if *link == t {
			*link = t.Next
			t.Next = nil
			t.queued = false
			s.queued--
			return true
		}
		link = &(*link).Next
	}
	return false
}

// Pending returns the number of queued timers
func (s *Scheduler) Pending() int {
	state := s.crit.Enter()
	defer s.crit.Exit(state)
	return s.queued
}

// Dispatch processes due timers and returns how many fired.
// Handlers run outside the critical section so they may take their own locks
// and re-arm themselves.
func (s *Scheduler) Dispatch() int {
	now := s.clock.Now()
	fired := 0

	for {
		state := s.crit.Enter()
		timer := s.list
		if timer == nil || timer.WakeTime > now {
			s.crit.Exit(state)
			return fired
		}
		s.list = timer.Next
		timer.Next = nil // Clear Next pointer to avoid circular references
		timer.queued = false
		s.queued--
		s.crit.Exit(state)

		fired++

		// Reschedule if requested
		if timer.Handler(timer) == SF_RESCHEDULE {
			_ = s.ScheduleTimer(timer)
		}
	}
}

// Run dispatches timers forever with a fixed delay between passes
func (s *Scheduler) Run(tick time.Duration) {
	for {
		s.Dispatch()
		time.Sleep(tick)
	}
}

// OneShot is a single-fire timer bound to a callback, the software
// equivalent of a hardware alarm channel.
type OneShot struct {
	sched *Scheduler
	timer Timer
	fn    func()
}

// NewOneShot creates a disarmed one-shot timer that calls fn when it fires
func (s *Scheduler) NewOneShot(fn func()) *OneShot {
	o := &OneShot{sched: s, fn: fn}
	o.timer.Handler = o.fire
	return o
}

func (o *OneShot) fire(t *Timer) uint8 {
	o.fn()
	return SF_DONE
}

// Start arms the timer to fire once, d from now. It fails with
// ErrTimerActive if the timer is already armed. Safe from interrupt context.
func (o *OneShot) Start(d time.Duration) error {
	if o == nil || o.sched == nil || o.fn == nil {
		return ErrTimerNoHandler
	}

	s := o.sched
	state := s.crit.Enter()
	defer s.crit.Exit(state)

	if o.timer.queued {
		return ErrTimerActive
	}
	o.timer.WakeTime = s.clock.Now() + TimerFromDuration(d)
	return s.insertTimer(&o.timer)
}

// Stop disarms the timer and reports whether it was armed
func (o *OneShot) Stop() bool {
	return o.sched.CancelTimer(&o.timer)
}

// Active reports whether the timer is armed
func (o *OneShot) Active() bool {
	s := o.sched
	state := s.crit.Enter()
	defer s.crit.Exit(state)
	return o.timer.queued
}
