package weekly

import (
	"context"
	"fmt"
	"io"
	"sync"
)

// Notifier delivers a message to a user.
type Notifier interface {
	Notify(ctx context.Context, userID, message string) error
}

// WriterNotifier prints messages, for dry runs and the CLI.
type WriterNotifier struct {
	mu sync.Mutex
	w  io.Writer
}

func NewWriterNotifier(w io.Writer) *WriterNotifier {
	return &WriterNotifier{w: w}
}

func (n *WriterNotifier) Notify(_ context.Context, userID, message string) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	_, err := fmt.Fprintf(n.w, "To: %s\n%s\n\n", userID, message)
	return err
}
