package device

// Event signals completion of one asynchronous device operation. Wait blocks
// until the operation finishes and returns its status.
type Event struct {
	done chan struct{}
	err  error
}

func newEvent() *Event {
	return &Event{done: make(chan struct{})}
}

// Wait blocks until the operation completes.
func (e *Event) Wait() error {
	<-e.done
	return e.err
}

// WaitAll blocks until every event has completed and returns the first
// failure. All events are waited on even after an error so no queue is left
// with in-flight work.
func WaitAll(events []*Event) error {
	var first error
	for _, e := range events {
		if e == nil {
			continue
		}
		if err := e.Wait(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

type task struct {
	fn func() error
	ev *Event
}

// Queue executes enqueued device operations in submission order, standing in
// for a compute-API command queue. Operations on different queues may
// interleave; completion is observed only through the returned events.
type Queue struct {
	id    int
	tasks chan task
}

func newQueue(id int) *Queue {
	q := &Queue{
		id:    id,
		tasks: make(chan task, 16),
	}
	go q.run()
	return q
}

func (q *Queue) run() {
	for t := range q.tasks {
		t.ev.err = t.fn()
		close(t.ev.done)
	}
}

func (q *Queue) ID() int { return q.id }

// Enqueue submits fn for in-order execution and returns its completion event.
func (q *Queue) Enqueue(fn func() error) *Event {
	ev := newEvent()
	q.tasks <- task{fn: fn, ev: ev}
	return ev
}

func (q *Queue) close() {
	close(q.tasks)
}
