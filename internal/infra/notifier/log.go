package notifier

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
)

// LogNotifier writes every message to an io.Writer instead of sending it.
// It backs dry runs: the operator sees exactly the texts that would be posted.
type LogNotifier struct {
	mu     sync.Mutex
	out    io.Writer
	logger *slog.Logger
	count  int
}

// NewLogNotifier returns a notifier printing to out. A nil logger uses slog.Default.
func NewLogNotifier(out io.Writer, logger *slog.Logger) *LogNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogNotifier{out: out, logger: logger}
}

// Post prints content followed by a separator line.
func (n *LogNotifier) Post(ctx context.Context, content string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if content == "" {
		return ErrEmptyContent
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	n.count++
	if _, err := fmt.Fprintf(n.out, "%s\n-----\n", content); err != nil {
		return fmt.Errorf("write dry-run message: %w", err)
	}
	n.logger.Debug("dry-run message written",
		slog.Int("index", n.count),
		slog.Int("content_length", len([]rune(content))))
	return nil
}

// Count returns how many messages were written.
func (n *LogNotifier) Count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.count
}
