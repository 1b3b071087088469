package hub

import (
	"sync"
)

type fanoutJob struct {
	conns   []*Client
	payload []byte
	exclude string // conn id to skip, "" for none
}

// Fanout delivers one payload to many connections off the caller's
// goroutine, so a broadcast never blocks the read loop that triggered it.
// With one worker the job channel keeps broadcasts in submission order,
// which together with the per-connection send queues preserves end-to-end
// ordering for events from the same sender.
type Fanout struct {
	jobs      chan fanoutJob
	closeOnce sync.Once
}

func NewFanout(workers, queue int) *Fanout {
	f := &Fanout{jobs: make(chan fanoutJob, queue)}
	for i := 0; i < workers; i++ {
		go func() {
			for job := range f.jobs {
				for _, c := range job.conns {
					if job.exclude != "" && c.ConnID == job.exclude {
						continue
					}
					c.Enqueue(job.payload)
				}
			}
		}()
	}
	return f
}

// Broadcast enqueues the payload for every given connection, optionally
// skipping one (the sender's own, for typing indicators).
func (f *Fanout) Broadcast(conns []*Client, payload []byte, excludeConnID string) {
	if len(conns) == 0 || len(payload) == 0 {
		return
	}
	f.jobs <- fanoutJob{conns: conns, payload: payload, exclude: excludeConnID}
}

// Close stops the workers once queued jobs drain. No Broadcast may follow.
func (f *Fanout) Close() {
	f.closeOnce.Do(func() { close(f.jobs) })
}
