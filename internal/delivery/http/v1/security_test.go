package v1

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskdesk/internal/monitor"
)

func newSecurityTestHandler(recorder *monitor.Recorder) (*handlerImpl, *httptest.ResponseRecorder, *gin.Context) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/security/events", nil)

	h := &handlerImpl{
		logger:   zerolog.Nop(),
		recorder: recorder,
	}
	return h, w, c
}

func TestHandleGetSecurityEvents(t *testing.T) {
	recorder := monitor.NewRecorder(10)
	recorder.Record("security", "potential injection attempt detected", "pattern")

	h, w, c := newSecurityTestHandler(recorder)
	h.HandleGetSecurityEvents(c)

	require.Equal(t, http.StatusOK, w.Code)

	var events []monitor.Entry
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &events))
	require.Len(t, events, 1)
	assert.Equal(t, "security", events[0].Kind)
}

func TestHandleGetSecurityEventsWithoutRecorder(t *testing.T) {
	h, w, c := newSecurityTestHandler(nil)
	h.HandleGetSecurityEvents(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, "[]", w.Body.String())
}

func TestHandleClearSecurityEvents(t *testing.T) {
	recorder := monitor.NewRecorder(10)
	recorder.Record("error", "note write failed", "")

	h, w, c := newSecurityTestHandler(recorder)
	h.HandleClearSecurityEvents(c)
	c.Writer.WriteHeaderNow()

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, recorder.Snapshot())
}
