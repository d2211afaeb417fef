package feedback

import (
	"sync"
	"time"
)

// Presenter renders notices
type Presenter interface {
	Show(n Notice)
	Dismiss()
}

// Navigator moves the operator between routes
type Navigator interface {
	GoTo(route string)
}

// Timer is a pending scheduled call
type Timer interface {
	Stop() bool
}

// Scheduler runs f after d
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type clockScheduler struct{}

func (clockScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// WallClock schedules with time.AfterFunc
var WallClock Scheduler = clockScheduler{}

// Deliverer applies outcomes to a presenter and navigator, scheduling
// banner dismissal and delayed navigation. The HTTP handlers return the
// Outcome as data; Deliverer is what a front-end adapter plays it through
type Deliverer struct {
	presenter Presenter
	navigator Navigator
	scheduler Scheduler

	mu      sync.Mutex
	dismiss Timer
}

// NewDeliverer creates a deliverer; a nil scheduler uses the wall clock
func NewDeliverer(p Presenter, n Navigator, s Scheduler) *Deliverer {
	if s == nil {
		s = WallClock
	}
	return &Deliverer{presenter: p, navigator: n, scheduler: s}
}

// Deliver shows the outcome's notice and performs its navigation. A new
// notice replaces the previous one and cancels its pending dismissal.
func (d *Deliverer) Deliver(o Outcome) {
	if o.Notice != nil {
		d.show(*o.Notice)
	}
	if o.Navigation != nil {
		route := o.Navigation.Route
		if o.Navigation.Delay <= 0 {
			d.navigator.GoTo(route)
		} else {
			d.scheduler.AfterFunc(o.Navigation.Delay, func() { d.navigator.GoTo(route) })
		}
	}
}

// Dismiss closes the current notice, as the operator acknowledging a modal
func (d *Deliverer) Dismiss() {
	d.mu.Lock()
	if d.dismiss != nil {
		d.dismiss.Stop()
		d.dismiss = nil
	}
	d.mu.Unlock()
	d.presenter.Dismiss()
}

func (d *Deliverer) show(n Notice) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.dismiss != nil {
		d.dismiss.Stop()
		d.dismiss = nil
	}
	d.presenter.Show(n)

	if n.Style == StyleBanner && n.DismissAfter > 0 {
		var t Timer
		t = d.scheduler.AfterFunc(n.DismissAfter, func() {
			d.mu.Lock()
			current := d.dismiss == t
			if current {
				d.dismiss = nil
			}
			d.mu.Unlock()
			if current {
				d.presenter.Dismiss()
			}
		})
		d.dismiss = t
	}
}
