package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/JillVernus/screentimed/internal/notify"
	"github.com/gin-gonic/gin"
)

// deadConnWriter fails every write, like a client that hung up.
type deadConnWriter struct {
	header http.Header
}

func (w *deadConnWriter) Header() http.Header       { return w.header }
func (w *deadConnWriter) Write([]byte) (int, error) { return 0, errors.New("write: broken pipe") }
func (w *deadConnWriter) WriteHeader(int)           {}

func TestWriteEventFormatsSSEFrame(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	if err := writeEvent(c, notify.Refresh(42, true)); err != nil {
		t.Fatalf("writeEvent: %v", err)
	}

	body := w.Body.String()
	if !strings.Contains(body, "event: refresh_countdown\n") {
		t.Fatalf("missing event line: %q", body)
	}
	if !strings.Contains(body, `"remainingSeconds":42`) {
		t.Fatalf("missing payload: %q", body)
	}
	if !strings.HasSuffix(body, "\n\n") {
		t.Fatalf("frame not terminated: %q", body)
	}
}

func TestWriteEventReportsDeadConnection(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(&deadConnWriter{header: http.Header{}})

	if err := writeEvent(c, notify.Refresh(1, false)); err == nil {
		t.Fatalf("expected an error writing to a dead connection")
	}
}
