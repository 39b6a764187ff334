//go:build windows

package main

// notifyPauseToggle is a no-op: Windows has no SIGUSR1.
func notifyPauseToggle(func() bool) (stop func()) {
	return func() {}
}
