// Package metrics measures aggregated output in bytes, lines and tokens.
package metrics

import (
	"sync"
)

// Kind groups measured items.
type Kind string

const (
	// KindFile is the raw text of one fetched file, keyed by its path.
	KindFile Kind = "file"
	// KindFrame is the headers and separators added around file text.
	KindFrame Kind = "frame"
)

// Key identifies one measured item.
type Key struct {
	Kind Kind
	Name string
}

func (k Key) String() string { return string(k.Kind) + ":" + k.Name }

// Stat is the size of one item.
type Stat struct {
	Bytes  int `json:"bytes"`
	Tokens int `json:"tokens"`
	Lines  int `json:"lines"`
}

func (s Stat) Plus(o Stat) Stat {
	return Stat{Bytes: s.Bytes + o.Bytes, Tokens: s.Tokens + o.Tokens, Lines: s.Lines + o.Lines}
}

type job struct {
	key  Key
	text string
}

// Tally counts items on a fixed pool of workers. Items added under the same
// key accumulate. Call Wait before reading results.
type Tally struct {
	counter Counter

	mu    sync.Mutex
	stats map[Key]Stat

	// gate guards jobs and closed; workers never take it.
	gate   sync.RWMutex
	jobs   chan job
	closed bool
	wg     sync.WaitGroup
}

// NewTally starts workers goroutines measuring with counter.
func NewTally(counter Counter, workers int) *Tally {
	if workers < 1 {
		workers = 1
	}
	t := &Tally{
		counter: counter,
		stats:   make(map[Key]Stat),
		jobs:    make(chan job, workers*2),
	}
	t.wg.Add(workers)
	for range workers {
		go t.work()
	}
	return t
}

func (t *Tally) work() {
	defer t.wg.Done()
	for j := range t.jobs {
		t.record(j.key, t.counter.Count(j.text))
	}
}

func (t *Tally) record(k Key, s Stat) {
	t.mu.Lock()
	t.stats[k] = t.stats[k].Plus(s)
	t.mu.Unlock()
}

// Add queues text for measurement. After Wait it is measured synchronously.
func (t *Tally) Add(kind Kind, name, text string) {
	k := Key{Kind: kind, Name: name}

	t.gate.RLock()
	defer t.gate.RUnlock()
	if t.closed {
		t.record(k, t.counter.Count(text))
		return
	}
	t.jobs <- job{key: k, text: text}
}

// Wait stops the workers once the queue drains. It is safe to call more than once.
func (t *Tally) Wait() {
	t.gate.Lock()
	if !t.closed {
		t.closed = true
		close(t.jobs)
	}
	t.gate.Unlock()
	t.wg.Wait()
}

// Get returns the stat recorded for key.
func (t *Tally) Get(k Key) Stat {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stats[k]
}

// Sum totals every item of kind.
func (t *Tally) Sum(kind Kind) Stat {
	t.mu.Lock()
	defer t.mu.Unlock()
	var sum Stat
	for k, s := range t.stats {
		if k.Kind == kind {
			sum = sum.Plus(s)
		}
	}
	return sum
}

// Total sums every item regardless of kind.
func (t *Tally) Total() Stat {
	t.mu.Lock()
	defer t.mu.Unlock()
	var sum Stat
	for _, s := range t.stats {
		sum = sum.Plus(s)
	}
	return sum
}

// Items returns a copy of every recorded stat.
func (t *Tally) Items() map[Key]Stat {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make(map[Key]Stat, len(t.stats))
	for k, s := range t.stats {
		out[k] = s
	}
	return out
}
