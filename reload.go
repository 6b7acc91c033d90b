package stanza

import (
	"bytes"
	"net/http"
	"sync"

	"github.com/labstack/echo/v4"
)

// Reloader fans a rebuild signal out to every connected browser tab over
// server-sent events.
type Reloader struct {
	mu   sync.Mutex
	subs map[chan struct{}]struct{}
}

// NewReloader creates an empty Reloader.
func NewReloader() *Reloader {
	return &Reloader{subs: map[chan struct{}]struct{}{}}
}

func (r *Reloader) subscribe() chan struct{} {
	ch := make(chan struct{}, 1)
	r.mu.Lock()
	r.subs[ch] = struct{}{}
	r.mu.Unlock()
	return ch
}

func (r *Reloader) unsubscribe(ch chan struct{}) {
	r.mu.Lock()
	delete(r.subs, ch)
	r.mu.Unlock()
	close(ch)
}

// Notify wakes every subscriber. A tab that has not drained its previous
// signal is skipped, never blocked on.
func (r *Reloader) Notify() {
	r.mu.Lock()
	for ch := range r.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
	r.mu.Unlock()
}

// handleSSE streams reload events to one browser tab until it disconnects.
func (r *Reloader) handleSSE(c echo.Context) error {
	w := c.Response()
	flusher, ok := w.Writer.(http.Flusher)
	if !ok {
		return echo.NewHTTPError(http.StatusInternalServerError, "streaming unsupported")
	}
	w.Header().Set(echo.HeaderContentType, "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	if _, err := w.Write([]byte("event: ready\ndata: 1\n\n")); err != nil {
		return err
	}
	flusher.Flush()

	ch := r.subscribe()
	defer r.unsubscribe(ch)

	for {
		select {
		case <-c.Request().Context().Done():
			return nil
		case <-ch:
			if _, err := w.Write([]byte("event: reload\ndata: 1\n\n")); err != nil {
				return err
			}
			flusher.Flush()
		}
	}
}

// InjectReloadScript adds the live reload client just before </body>, or at
// the end when the page has no body close tag.
func InjectReloadScript(html []byte) []byte {
	script := []byte(`<script src="/_stanza/livereload.js" defer></script>`)
	if bytes.Contains(html, script) {
		return html
	}
	out := make([]byte, 0, len(html)+len(script))
	if i := bytes.LastIndex(html, []byte("</body>")); i >= 0 {
		out = append(out, html[:i]...)
		out = append(out, script...)
		out = append(out, html[i:]...)
		return out
	}
	out = append(out, html...)
	return append(out, script...)
}
