package middleware

import (
	"bufio"
	"bytes"
	"errors"
	"net"
	"net/http"
)

// statusWriter passes writes through while recording the status and byte
// count. onHeader, when set, runs once just before the headers are sent.
type statusWriter struct {
	http.ResponseWriter
	status      int
	bytes       int
	wroteHeader bool
	onHeader    func(http.Header)
}

func (w *statusWriter) WriteHeader(code int) {
	if w.wroteHeader {
		return
	}
	w.wroteHeader = true
	w.status = code
	if w.onHeader != nil {
		w.onHeader(w.Header())
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	n, err := w.ResponseWriter.Write(b)
	w.bytes += n
	return n, err
}

// Status returns the status sent, or 200 if the handler wrote nothing.
func (w *statusWriter) Status() int {
	if w.status == 0 {
		return http.StatusOK
	}
	return w.status
}

func (w *statusWriter) Flush() {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (w *statusWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	if h, ok := w.ResponseWriter.(http.Hijacker); ok {
		return h.Hijack()
	}
	return nil, nil, errors.New("hijack not supported")
}

func (w *statusWriter) Unwrap() http.ResponseWriter { return w.ResponseWriter }

// bufferWriter holds the status and body back from the client. Headers go
// straight to the underlying header map. Nothing is sent until flush, so the
// owning middleware can inspect or replace the response first.
type bufferWriter struct {
	http.ResponseWriter
	status int
	buf    bytes.Buffer
}

func (w *bufferWriter) WriteHeader(code int) {
	if w.status == 0 {
		w.status = code
	}
}

func (w *bufferWriter) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	return w.buf.Write(b)
}

// Status returns the captured status, or 200 if the handler wrote nothing.
func (w *bufferWriter) Status() int {
	if w.status == 0 {
		return http.StatusOK
	}
	return w.status
}

// Body returns the captured payload.
func (w *bufferWriter) Body() []byte { return w.buf.Bytes() }

// flush sends the captured status and payload to the underlying writer.
func (w *bufferWriter) flush() {
	w.send(w.buf.Bytes())
}

// send writes status and body, replacing whatever the handler wrote.
func (w *bufferWriter) send(body []byte) {
	w.ResponseWriter.WriteHeader(w.Status())
	if len(body) > 0 {
		_, _ = w.ResponseWriter.Write(body)
	}
}

func (w *bufferWriter) Unwrap() http.ResponseWriter { return w.ResponseWriter }

func newBufferWriter(w http.ResponseWriter) *bufferWriter {
	return &bufferWriter{ResponseWriter: w}
}
