package loggingmw

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/sysuser/internal/logging"
)

func lastLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.NotEmpty(t, lines)
	var out map[string]any
	require.NoError(t, json.Unmarshal(lines[len(lines)-1], &out))
	return out
}

func TestRequestLogger(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		handler   echo.HandlerFunc
		wantLevel string
		wantCode  int
	}{
		{
			name:      "ok",
			handler:   func(c echo.Context) error { return c.String(http.StatusOK, "fine") },
			wantLevel: "INFO",
			wantCode:  http.StatusOK,
		},
		{
			name:      "client error",
			handler:   func(c echo.Context) error { return echo.NewHTTPError(http.StatusBadRequest, "nope") },
			wantLevel: "WARN",
			wantCode:  http.StatusBadRequest,
		},
		{
			name:      "server error",
			handler:   func(c echo.Context) error { return errors.New("boom") },
			wantLevel: "ERROR",
			wantCode:  http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			e := echo.New()
			e.Use(middleware.RequestID())
			e.Use(RequestLogger(logging.NewWithWriter(&buf, "debug")))
			e.GET("/thing", func(c echo.Context) error {
				logging.FromContext(c.Request().Context()).Debug("inside")
				return tt.handler(c)
			})

			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/thing", nil))
			assert.Equal(t, tt.wantCode, rec.Code)

			line := lastLine(t, &buf)
			assert.Equal(t, "request completed", line["msg"])
			assert.Equal(t, tt.wantLevel, line["level"])
			assert.Equal(t, float64(tt.wantCode), line["status"])
			assert.Equal(t, "/thing", line["path"])
			assert.Equal(t, rec.Header().Get(echo.HeaderXRequestID), line["request_id"])
			assert.Contains(t, buf.String(), `"msg":"inside"`)
		})
	}
}
