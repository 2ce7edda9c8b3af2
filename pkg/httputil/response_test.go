package httputil

import (
	"net/http/httptest"
	"testing"
)

func TestWriteJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteJSON(rec, 200, map[string]string{"status": "ok"})

	if got := rec.Header().Get("Content-Type"); got != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", got)
	}
	if got := rec.Body.String(); got != "{\"status\":\"ok\"}\n" {
		t.Errorf("body = %q", got)
	}
}

func TestWriteText_EmptyBodyOmitsContentType(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteText(rec, 418, "")

	if rec.Code != 418 {
		t.Errorf("status = %d, want 418", rec.Code)
	}
	if rec.Body.Len() != 0 {
		t.Errorf("body = %q, want empty", rec.Body.String())
	}
	if got := rec.Header().Get("Content-Type"); got != "" {
		t.Errorf("Content-Type = %q, want unset", got)
	}
}

func TestWriteText(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteText(rec, 400, "bad input")

	if got := rec.Header().Get("Content-Type"); got != "text/plain; charset=utf-8" {
		t.Errorf("Content-Type = %q", got)
	}
	if got := rec.Body.String(); got != "bad input" {
		t.Errorf("body = %q, want %q", got, "bad input")
	}
}

func TestWriteStatus(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteStatus(rec, 404)

	if rec.Code != 404 || rec.Body.Len() != 0 {
		t.Errorf("status = %d body = %q, want bare 404", rec.Code, rec.Body.String())
	}
}

func TestWriteError(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, 500, "internal", "something broke")

	if rec.Code != 500 {
		t.Errorf("status = %d, want 500", rec.Code)
	}
	want := "{\"error\":\"internal\",\"message\":\"something broke\"}\n"
	if got := rec.Body.String(); got != want {
		t.Errorf("body = %q, want %q", got, want)
	}
}
