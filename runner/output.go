package runner

import "io"

// limitedWriter keeps at most max bytes and silently discards the rest so
// a runaway engine cannot exhaust the orchestrator's memory.
type limitedWriter struct {
	w         io.Writer
	max       int
	written   int
	truncated bool
}

func (l *limitedWriter) Write(p []byte) (int, error) {
	n := len(p)
	remaining := l.max - l.written
	if remaining <= 0 {
		l.truncated = true
		return n, nil
	}
	if len(p) > remaining {
		p = p[:remaining]
		l.truncated = true
	}
	written, err := l.w.Write(p)
	l.written += written
	if err != nil {
		return written, err
	}
	return n, nil
}
