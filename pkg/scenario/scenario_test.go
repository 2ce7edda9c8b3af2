package scenario

import (
	"net/http"
	"testing"
)

func TestFromHeaders_Zero(t *testing.T) {
	s := FromHeaders(http.Header{})
	if !s.IsZero() {
		t.Errorf("FromHeaders(empty) = %+v, want zero", s)
	}
}

func TestFromHeaders_ForcedStatus(t *testing.T) {
	h := http.Header{}
	h.Set(HeaderResponseCode, "503")
	h.Set(HeaderResponseText, "maintenance")

	s := FromHeaders(h)
	if s.ForcedStatus != 503 {
		t.Errorf("ForcedStatus = %d, want 503", s.ForcedStatus)
	}
	if s.ForcedText != "maintenance" {
		t.Errorf("ForcedText = %q, want %q", s.ForcedText, "maintenance")
	}
}

func TestFromHeaders_InvalidStatusIgnored(t *testing.T) {
	for _, v := range []string{"abc", "99", "600", "-1", ""} {
		h := http.Header{}
		if v != "" {
			h.Set(HeaderResponseCode, v)
		}
		if s := FromHeaders(h); s.ForcedStatus != 0 {
			t.Errorf("FromHeaders(code=%q).ForcedStatus = %d, want 0", v, s.ForcedStatus)
		}
	}
}

func TestFromHeaders_Flags(t *testing.T) {
	h := http.Header{}
	h.Set(HeaderEmptyResponse, "true")
	h.Set(HeaderTooManyReservations, "1")

	s := FromHeaders(h)
	if !s.EmptyResponse {
		t.Error("EmptyResponse = false, want true")
	}
	if !s.TooManyReservations {
		t.Error("TooManyReservations = false, want true")
	}
}

func TestFromHeaders_CaseInsensitive(t *testing.T) {
	h := http.Header{}
	// Set canonicalizes arbitrary-cased names the same way net/http does
	// for incoming requests.
	h.Set("x-test-empty-response", "yes")

	if s := FromHeaders(h); !s.EmptyResponse {
		t.Error("lowercase header name not recognized")
	}
}
