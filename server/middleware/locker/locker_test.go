package locker

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
}

func TestTryLock(t *testing.T) {
	l := New()
	if !l.TryLock() {
		t.Fatal("expected first TryLock to succeed")
	}
	if l.TryLock() {
		t.Error("expected second TryLock to fail")
	}
	l.Unlock()
	if l.Locked() {
		t.Error("expected unlocked after Unlock")
	}
}

func TestCheckProtectsRoutes(t *testing.T) {
	l := New("scan")
	h := l.Check(okHandler())
	cases := []struct {
		path   string
		locked bool
		want   int
	}{
		{"/mcl/axis/x/pos", false, http.StatusOK},
		{"/mcl/axis/x/pos", true, http.StatusLocked},
		{"/mcl/lock", true, http.StatusOK},
		{"/mcl/scan/state", true, http.StatusOK},
	}
	for _, c := range cases {
		if c.locked {
			l.Lock()
		} else {
			l.Unlock()
		}
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodPost, c.path, nil))
		if w.Code != c.want {
			t.Errorf("%s locked=%v: expected %d got %d", c.path, c.locked, c.want, w.Code)
		}
	}
}

func TestHTTPSetAndGet(t *testing.T) {
	l := New()
	w := httptest.NewRecorder()
	l.HTTPSet(w, httptest.NewRequest(http.MethodPost, "/lock", strings.NewReader(`{"bool": true}`)))
	if w.Code != http.StatusOK || !l.Locked() {
		t.Fatalf("expected 200 and locked, got %d and %v", w.Code, l.Locked())
	}
	w = httptest.NewRecorder()
	l.HTTPGet(w, httptest.NewRequest(http.MethodGet, "/lock", nil))
	if got := strings.TrimSpace(w.Body.String()); got != `{"bool":true}` {
		t.Errorf("expected {\"bool\":true}, got %s", got)
	}
	w = httptest.NewRecorder()
	l.HTTPSet(w, httptest.NewRequest(http.MethodPost, "/lock", strings.NewReader(`nope`)))
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}
