package pool

import (
	"runtime"
	"time"
)

// backoff escalates a worker's response to finding no work: a short
// run of busy spins, then cooperative yields, then capped sleeps. Most
// empty checks resolve within the spin phase (another worker is
// mid-publish or mid-PushTask), so this avoids paying a sleep's wake
// latency in the common case.
type backoff struct {
	n int
}

func (b *backoff) reset() { b.n = 0 }

func (b *backoff) wait() {
	switch {
	case b.n < 8:
		// busy spin
	case b.n < 32:
		runtime.Gosched()
	default:
		d := time.Duration(b.n-32) * 10 * time.Microsecond
		if d > 2*time.Millisecond {
			d = 2 * time.Millisecond
		}
		time.Sleep(d)
	}
	b.n++
}
