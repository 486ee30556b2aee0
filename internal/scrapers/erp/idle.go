package erp

import (
	"context"
	"sync"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
)

// idleWatcher tracks the requests a page has in flight so that one can wait
// for the network to go quiet.
type idleWatcher struct {
	mutex    sync.Mutex
	inflight map[network.RequestID]struct{}
	activity chan struct{}
}

func newIdleWatcher() *idleWatcher {
	return &idleWatcher{
		inflight: make(map[network.RequestID]struct{}),
		activity: make(chan struct{}, 1),
	}
}

// handle is called on the event loop of the target, it must not block.
func (w *idleWatcher) handle(ev any) {
	w.mutex.Lock()
	switch e := ev.(type) {
	case *network.EventRequestWillBeSent:
		w.inflight[e.RequestID] = struct{}{}
	case *network.EventLoadingFinished:
		delete(w.inflight, e.RequestID)
	case *network.EventLoadingFailed:
		delete(w.inflight, e.RequestID)
	default:
		w.mutex.Unlock()
		return
	}
	w.mutex.Unlock()

	select {
	case w.activity <- struct{}{}:
	default:
	}
}

func (w *idleWatcher) pending() int {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	return len(w.inflight)
}

// wait blocks until no request has been in flight for the duration of the
// quiet window.
func (w *idleWatcher) wait(quiet time.Duration) chromedp.ActionFunc {
	return func(ctx context.Context) error {
		timer := time.NewTimer(quiet)
		defer timer.Stop()

		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-w.activity:
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(quiet)
			case <-timer.C:
				if w.pending() == 0 {
					return nil
				}
				timer.Reset(quiet)
			}
		}
	}
}
