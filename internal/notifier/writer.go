package notifier

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"
)

// WriterSender prints notifications to a writer, normally stdout.
type WriterSender struct {
	mu  sync.Mutex
	out io.Writer
	now func() time.Time
}

func NewWriterSender(out io.Writer) *WriterSender {
	return &WriterSender{out: out, now: time.Now}
}

func (s *WriterSender) Send(_ context.Context, content Content) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := fmt.Fprintf(s.out, "[%s] %s: %s\n", s.now().Format("15:04"), content.Title, content.Body)
	return err
}

func (s *WriterSender) Available(context.Context) error {
	return nil
}
