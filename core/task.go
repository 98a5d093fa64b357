package core

import "time"

// Every runs cycle forever with a fixed delay of period between iterations.
// A panic inside cycle is logged and the loop keeps going, the same way the
// main loop survives a bad command.
func Every(name string, period time.Duration, console *Console, cycle func()) {
	for {
		runCycle(name, console, cycle)
		time.Sleep(period)
	}
}

// Go starts Every in its own goroutine
func Go(name string, period time.Duration, console *Console, cycle func()) {
	go Every(name, period, console, cycle)
}

func runCycle(name string, console *Console, cycle func()) {
	defer func() {
		if r := recover(); r != nil {
			console.Errorf("%s: panic: %v", name, r)
		}
	}()
	cycle()
}
