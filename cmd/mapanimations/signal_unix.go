//go:build !windows

package main

import (
	"os"
	"os/signal"
	"syscall"
)

// notifyPauseToggle calls toggle on every SIGUSR1 until the returned stop
// function is called.
func notifyPauseToggle(toggle func() bool) (stop func()) {
	ch := make(chan os.Signal, 1)
	done := make(chan struct{})
	signal.Notify(ch, syscall.SIGUSR1)

	go func() {
		for {
			select {
			case <-done:
				return
			case <-ch:
				toggle()
			}
		}
	}()

	return func() {
		signal.Stop(ch)
		close(done)
	}
}
