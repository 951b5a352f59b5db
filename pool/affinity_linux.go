//go:build linux

package pool

import "golang.org/x/sys/unix"

// setAffinity pins the calling OS thread to cpu. The caller must have
// already called runtime.LockOSThread.
func setAffinity(cpu int) error {
	var set unix.CPUSet
	set.Zero()
	set.Set(cpu)
	return unix.SchedSetaffinity(0, &set)
}
