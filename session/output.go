package session

import (
	"io"
	"sync"

	"go.uber.org/zap"

	"github.com/chrisuehlinger/domports/ports"
)

// JSONLines writes each emission to w as one {"port", "payload"} JSON
// object per line.
type JSONLines struct {
	mu     sync.Mutex
	w      io.Writer
	logger *zap.Logger
}

// NewJSONLines creates a JSON lines emitter. Encoding and write failures
// are logged to logger.
func NewJSONLines(w io.Writer, logger *zap.Logger) *JSONLines {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &JSONLines{w: w, logger: logger.Named("output")}
}

// Emit implements ports.Emitter.
func (j *JSONLines) Emit(e ports.Emission) {
	line, err := json.Marshal(Emitted{Port: e.Port(), Payload: e.Payload()})
	if err != nil {
		j.logger.Error("Failed to encode emission", zap.String("port", e.Port()), zap.Error(err))
		return
	}

	j.mu.Lock()
	defer j.mu.Unlock()
	if _, err := j.w.Write(append(line, '\n')); err != nil {
		j.logger.Error("Failed to write emission", zap.String("port", e.Port()), zap.Error(err))
	}
}
