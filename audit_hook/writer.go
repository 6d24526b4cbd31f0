package audithook

import (
	"context"
	"io"
	"sync"

	"github.com/goccy/go-json"
)

// WriterRecorder writes each event as one JSON line.
type WriterRecorder struct {
	mu  sync.Mutex
	enc *json.Encoder
}

// NewWriterRecorder creates a Recorder appending JSON lines to w.
func NewWriterRecorder(w io.Writer) *WriterRecorder {
	return &WriterRecorder{enc: json.NewEncoder(w)}
}

// Record implements Recorder.
func (r *WriterRecorder) Record(_ context.Context, event *AuditEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.enc.Encode(event)
}
