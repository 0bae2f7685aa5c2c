package middleware

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/simp-lee/touradmin/internal/domain"
)

func newTestLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func setupRecoveryRouter(logger *slog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(Recovery(logger))
	r.GET("/panic", func(c *gin.Context) {
		panic("test panic")
	})
	r.GET("/ok", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	r.GET("/partial", func(c *gin.Context) {
		c.String(http.StatusAccepted, "partial")
		panic("after write")
	})
	return r
}

func TestRecovery_NoPanic_PassesThrough(t *testing.T) {
	var logBuf bytes.Buffer
	r := setupRecoveryRouter(newTestLogger(&logBuf))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ok", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	if w.Body.String() != "ok" {
		t.Errorf("expected body 'ok', got %q", w.Body.String())
	}
	if logBuf.Len() != 0 {
		t.Errorf("expected no log output, got %q", logBuf.String())
	}
}

func TestRecovery_Panic_JSONResponse(t *testing.T) {
	for _, accept := range []string{"application/json", "text/html", ""} {
		t.Run("accept="+accept, func(t *testing.T) {
			var logBuf bytes.Buffer
			r := setupRecoveryRouter(newTestLogger(&logBuf))

			req := httptest.NewRequest(http.MethodGet, "/panic", nil)
			if accept != "" {
				req.Header.Set("Accept", accept)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != http.StatusInternalServerError {
				t.Fatalf("expected status 500, got %d", w.Code)
			}
			var body map[string]any
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
				t.Fatalf("expected JSON body, got %q", w.Body.String())
			}
			if code, ok := body["code"].(float64); !ok || int(code) != 500 {
				t.Errorf("expected code 500, got %v", body["code"])
			}
			if body["message"] != "internal server error" {
				t.Errorf("unexpected message %v", body["message"])
			}
			if _, ok := body["data"]; !ok {
				t.Error("expected data key in envelope")
			}
		})
	}
}

func TestRecovery_Panic_LogsDetails(t *testing.T) {
	var logBuf bytes.Buffer
	r := gin.New()
	r.Use(func(c *gin.Context) {
		ctx := domain.WithActor(c.Request.Context(), domain.Actor{ID: "42", Role: domain.RoleEditor})
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	})
	r.Use(Recovery(newTestLogger(&logBuf)))
	r.GET("/panic", func(c *gin.Context) { panic("test panic") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))

	logOutput := logBuf.String()
	for _, want := range []string{"panic recovered", "test panic", "path=/panic", "actor=42", "stack="} {
		if !strings.Contains(logOutput, want) {
			t.Errorf("expected log to contain %q, got:\n%s", want, logOutput)
		}
	}
}

func TestRecovery_Panic_AfterWriteKeepsResponse(t *testing.T) {
	var logBuf bytes.Buffer
	r := setupRecoveryRouter(newTestLogger(&logBuf))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/partial", nil))

	if w.Code != http.StatusAccepted {
		t.Fatalf("expected status 202, got %d", w.Code)
	}
	if w.Body.String() != "partial" {
		t.Errorf("body = %q", w.Body.String())
	}
	if !strings.Contains(logBuf.String(), "after write") {
		t.Error("expected the panic to be logged")
	}
}

func TestRecovery_Panic_AbortsFurtherHandlers(t *testing.T) {
	var logBuf bytes.Buffer

	after := false
	r := gin.New()
	r.Use(Recovery(newTestLogger(&logBuf)))
	r.GET("/panic", func(c *gin.Context) {
		panic("abort test")
	}, func(c *gin.Context) {
		after = true
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", w.Code)
	}
	if after {
		t.Error("expected subsequent handler NOT to be called after panic recovery")
	}
}

func TestRecovery_Panic_CarriesRequestID(t *testing.T) {
	var logBuf bytes.Buffer
	r := gin.New()
	r.Use(RequestID(), Recovery(newTestLogger(&logBuf)))
	r.GET("/panic", func(c *gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))

	var body struct {
		Data struct {
			RequestID string `json:"request_id"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body.Data.RequestID == "" || body.Data.RequestID != w.Header().Get(requestIDHeader) {
		t.Fatalf("data.request_id = %q, header = %q", body.Data.RequestID, w.Header().Get(requestIDHeader))
	}
}
