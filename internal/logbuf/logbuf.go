// © 2024 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

// Package logbuf implements an append-only buffer of timestamped log lines
// that browser-side code pushes messages into. Lines can be read back as a
// snapshot of the most recent entries or streamed as they arrive.
package logbuf

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"
)

// TimeLayout is the layout of the time-of-day stamp that prefixes every entry.
const TimeLayout = "15:04:05"

// streamBuffer is the capacity of a subscriber channel.
const streamBuffer = 64

// Options configure a [Buffer].
type Options struct {
	// Console receives every appended entry followed by a newline. If nil,
	// entries are not echoed anywhere.
	Console io.Writer
	// Capacity, if positive, limits the number of retained entries; older
	// entries are discarded. Zero means the buffer grows for the lifetime of
	// the process.
	Capacity int
	// Now returns the current time. If nil, time.Now is used.
	Now func() time.Time
}

// Buffer is an append-only sequence of log entries. Methods of Buffer can be
// safely called by multiple goroutines.
type Buffer struct {
	console  io.Writer
	capacity int
	now      func() time.Time

	mu      sync.RWMutex
	entries []string
	streams map[chan string]struct{}
}

// New returns a new empty Buffer.
func New(opts Options) *Buffer {
	b := &Buffer{
		console:  opts.Console,
		capacity: opts.Capacity,
		now:      opts.Now,
		streams:  make(map[chan string]struct{}),
	}
	if b.console == nil {
		b.console = io.Discard
	}
	if b.capacity < 0 {
		b.capacity = 0
	}
	if b.now == nil {
		b.now = time.Now
	}
	return b
}

// Append stores message as a new entry "[HH:MM:SS] message" stamped with the
// current local time and echoes it to the console before returning.
func (b *Buffer) Append(message string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	entry := "[" + b.now().Format(TimeLayout) + "] " + message
	b.entries = append(b.entries, entry)
	if b.capacity > 0 && len(b.entries) >= 2*b.capacity {
		// Compact once the backing array holds twice the capacity.
		b.entries = append([]string(nil), b.retained()...)
	}

	// Echo under the lock, so console order matches buffer order.
	io.WriteString(b.console, entry+"\n")

	for stream := range b.streams {
		select {
		case stream <- entry:
		default:
			// Slow subscriber, it misses this entry.
		}
	}
}

// retained returns entries that are visible to readers. b.mu must be held.
func (b *Buffer) retained() []string {
	if b.capacity > 0 && len(b.entries) > b.capacity {
		return b.entries[len(b.entries)-b.capacity:]
	}
	return b.entries
}

// Recent returns up to n most recent entries, oldest first. The returned
// slice is never nil and is owned by the caller.
func (b *Buffer) Recent(n int) []string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	entries := b.retained()
	n = max(0, min(n, len(entries)))
	out := make([]string, n)
	copy(out, entries[len(entries)-n:])
	return out
}

// Len returns the number of retained entries.
func (b *Buffer) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.retained())
}

// Stream returns a channel that receives every entry appended after the call.
// Deregister the stream by calling the returned function, which also closes
// the channel.
func (b *Buffer) Stream() (<-chan string, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	stream := make(chan string, streamBuffer)
	b.streams[stream] = struct{}{}

	var once sync.Once
	return stream, func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			delete(b.streams, stream)
			close(stream)
		})
	}
}

// ServeHTTP streams newly appended entries to the client until it goes away.
// Clients that accept text/event-stream receive server-sent events named
// "logline"; others receive one entry per line.
func (b *Buffer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	stream, closeFunc := b.Stream()
	defer closeFunc()

	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Cache-Control", "no-cache")

	evtStream := eventStreamRequested(r)
	if evtStream {
		w.Header().Set("Content-Type", "text/event-stream")
	} else {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	}
	w.WriteHeader(http.StatusOK)
	flush(w)

	for {
		select {
		case entry := <-stream:
			if evtStream {
				// See https://html.spec.whatwg.org/multipage/server-sent-events.html;
				// every line of a multi-line message needs its own data field.
				fmt.Fprintf(w, "event: logline\ndata: %s\n\n", strings.ReplaceAll(entry, "\n", "\ndata: "))
			} else {
				fmt.Fprintln(w, entry)
			}
			flush(w)
		case <-r.Context().Done():
			return
		}
	}
}

func flush(w http.ResponseWriter) {
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}

func eventStreamRequested(r *http.Request) bool {
	return strings.Contains(strings.ToLower(r.Header.Get("Accept")), "text/event-stream")
}

var _ http.Handler = (*Buffer)(nil)
