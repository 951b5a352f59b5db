//go:build workassist_debug

package task

import "github.com/davecgh/go-spew/spew"

// String dumps the task's scheduling-relevant fields — kind, stripe
// layout, rotor position, live-worker count — the way the source's
// Debug impl for TaskObject does. Only compiled under
// workassist_debug, so release builds do not link go-spew.
func (t *Task) String() string {
	snapshot := struct {
		Kind          Kind
		WorkSize      uint32
		StripeEnds    []uint32
		Rotor         uint32
		ActiveThreads int32
	}{
		Kind:          t.kind,
		WorkSize:      t.workSize,
		StripeEnds:    t.stripeEnds,
		Rotor:         t.rotor.Load(),
		ActiveThreads: t.activeThreads.Load(),
	}
	return spew.Sdump(snapshot)
}
