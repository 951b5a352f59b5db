//go:build !linux

package pool

import "github.com/workassisting/scheduler/internal/werrors"

// setAffinity is unavailable off Linux; under RunOn each worker logs
// the failed pinning request as a warning and runs unpinned.
func setAffinity(cpu int) error {
	return werrors.ErrAffinityUnavailable
}
