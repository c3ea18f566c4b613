package logger

import (
	"context"
	"log/slog"
	"time"

	slogseq "github.com/sokkalf/slog-seq"
)

// multiHandler forwards log records to multiple handlers
type multiHandler struct {
	handlers []slog.Handler
}

func (m *multiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range m.handlers {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (m *multiHandler) Handle(ctx context.Context, r slog.Record) error {
	for _, h := range m.handlers {
		if !h.Enabled(ctx, r.Level) {
			continue
		}
		if err := h.Handle(ctx, r.Clone()); err != nil {
			return err
		}
	}
	return nil
}

func (m *multiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	handlers := make([]slog.Handler, len(m.handlers))
	for i, h := range m.handlers {
		handlers[i] = h.WithAttrs(attrs)
	}
	return &multiHandler{handlers: handlers}
}

func (m *multiHandler) WithGroup(name string) slog.Handler {
	handlers := make([]slog.Handler, len(m.handlers))
	for i, h := range m.handlers {
		handlers[i] = h.WithGroup(name)
	}
	return &multiHandler{handlers: handlers}
}

// NewLoggerWithSeq builds a logger that writes to the configured writer and, when
// config.SeqURL is set, also ships records to Seq. The returned function flushes
// and stops the Seq sink.
func NewLoggerWithSeq(config Config) (*slog.Logger, func()) {
	if config.SeqURL == "" {
		return NewLogger(config), func() {}
	}

	_, seqHandler := slogseq.NewLogger(
		config.SeqURL,
		slogseq.WithBatchSize(50),
		slogseq.WithFlushInterval(500*time.Millisecond),
		slogseq.WithHandlerOptions(&slog.HandlerOptions{
			Level:     config.Level,
			AddSource: config.AddSource,
		}),
	)
	if seqHandler == nil {
		return NewLogger(config), func() {}
	}

	contextEnabled = config.AddContext
	multi := &multiHandler{
		handlers: []slog.Handler{newHandler(config), seqHandler},
	}
	return slog.New(multi), func() {
		seqHandler.Close()
	}
}
