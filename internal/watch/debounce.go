package watch

import (
	"context"
	"time"
)

// Debounce groups events into batches. A batch is emitted once no event has
// arrived for delay. Pending events are flushed when in closes and dropped
// when ctx is done.
func Debounce(ctx context.Context, in <-chan Event, delay time.Duration) <-chan []Event {
	out := make(chan []Event)

	go func() {
		defer close(out)

		var pending []Event
		timer := time.NewTimer(delay)
		timer.Stop()

		emit := func() bool {
			select {
			case out <- pending:
				pending = nil
				return true
			case <-ctx.Done():
				return false
			}
		}

		for {
			select {
			case <-ctx.Done():
				return

			case event, ok := <-in:
				if !ok {
					if len(pending) > 0 {
						emit()
					}
					return
				}
				pending = append(pending, event)
				timer.Reset(delay)

			case <-timer.C:
				if len(pending) > 0 && !emit() {
					return
				}
			}
		}
	}()

	return out
}
