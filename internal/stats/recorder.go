package stats

import (
	"bufio"
	"errors"
	"net"
	"net/http"
)

// ResponseWriter augments http.ResponseWriter with enough introspection
// to record status and size after the handler ran.
type ResponseWriter interface {
	http.ResponseWriter
	http.Flusher
	http.Hijacker
	Status() int
	Written() bool
	Size() int
}

// responseRecorder tracks the HTTP status code and body size of the
// wrapped writer.
type responseRecorder struct {
	http.ResponseWriter
	status  int
	size    int
	written bool
}

func NewResponseRecorder(w http.ResponseWriter, statusCode int) ResponseWriter {
	return &responseRecorder{ResponseWriter: w, status: statusCode}
}

func (r *responseRecorder) WriteHeader(code int) {
	r.written = true
	r.ResponseWriter.WriteHeader(code)
	r.status = code
}

func (r *responseRecorder) Write(b []byte) (int, error) {
	if !r.Written() {
		r.WriteHeader(http.StatusOK)
	}

	size, err := r.ResponseWriter.Write(b)
	r.size += size
	return size, err
}

func (r *responseRecorder) Flush() {
	if flusher, ok := r.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

func (r *responseRecorder) Status() int {
	return r.status
}

func (r *responseRecorder) Written() bool {
	return r.status != 0
}

func (r *responseRecorder) Size() int {
	return r.size
}

// Hijack supports websockets and other upgrade protocols. A hijacked
// connection never reports a status, so it is excluded from the counts.
func (r *responseRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	if !r.written {
		r.status = 0
	}
	hijacker, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("the ResponseWriter doesn't support the Hijacker interface")
	}
	return hijacker.Hijack()
}
