package refresher

import (
	"context"
	"sync"
	"time"

	lanbeacon "github.com/lanbeacon/go-lanbeacon"
	"github.com/lanbeacon/go-lanbeacon/zeroconf"
)

// Refresher keeps exactly one service record registered with the local
// responder, re-asserting it on a fixed cadence so peer caches do not
// expire it.
//
// It exclusively owns the responder: no other component may call into it
// while the refresher is running. Stop closes the responder exactly once.
type Refresher struct {
	log       lanbeacon.Logger
	responder zeroconf.Responder
	desc      *lanbeacon.ServiceDescriptor
	interval  time.Duration

	stopCh   chan struct{}
	stopOnce sync.Once
}

func New(log lanbeacon.Logger, responder zeroconf.Responder, desc *lanbeacon.ServiceDescriptor, interval time.Duration) *Refresher {
	return &Refresher{
		log:       log,
		responder: responder,
		desc:      desc,
		interval:  interval,
		stopCh:    make(chan struct{}),
	}
}

// Register publishes the service record. A responder rejection (name
// conflict, closed handle) is returned to the caller, not swallowed.
func (r *Refresher) Register() error {
	return r.responder.Register(r.desc)
}

// Unregister withdraws the current registration. A no-op if nothing is
// registered.
func (r *Refresher) Unregister() error {
	return r.responder.Unregister()
}

// RefreshCycle withdraws and immediately re-publishes the record. This is
// the sole recurring action. Failures are logged and do not stop the
// loop, giving transient network issues a chance to self-heal.
func (r *Refresher) RefreshCycle() {
	r.log.Infof("refreshing registration of %s", r.desc.Instance())

	if err := r.Unregister(); err != nil {
		r.log.WithError(err).Errorf("failed unregistering %s", r.desc.Instance())
	}
	if err := r.Register(); err != nil {
		r.log.WithError(err).Errorf("failed registering %s", r.desc.Instance())
	}
}

// Run registers the record immediately, then drives refresh cycles until
// ctx is cancelled or Stop is called. The interval is measured from the
// end of one cycle to the next trigger; there is no catch-up for missed
// cycles and the same goroutine drives both the wait and the work, so
// cycles never overlap.
func (r *Refresher) Run(ctx context.Context) error {
	r.log.Infof("advertising %s on port %d (refresh every %s)", r.desc.Instance(), r.desc.Port, r.interval)

	if err := r.Register(); err != nil {
		r.log.WithError(err).Errorf("initial registration of %s failed", r.desc.Instance())
	}

	timer := time.NewTimer(r.interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-r.stopCh:
			return nil
		case <-timer.C:
			r.RefreshCycle()
			timer.Reset(r.interval)
		}
	}
}

// Stop cancels any pending refresh and closes the responder. Safe to call
// multiple times; only the first call releases the responder.
func (r *Refresher) Stop() {
	r.stopOnce.Do(func() {
		close(r.stopCh)
		r.responder.Close()
		r.log.Infof("stopped advertising %s", r.desc.Instance())
	})
}
