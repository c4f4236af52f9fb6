package motion

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi"
	"github.com/nasa-jpl/nanodrive/generichttp"
	"github.com/nasa-jpl/nanodrive/util"
)

var (
	errClamped = errors.New("requested position violates software limits, aborted")
)

// LimitMiddleware is a type that can impose axis-specific limits on motion.
// Limits are keyed by the canonical axis name of Mov, see CanonicalAxis.
type LimitMiddleware struct {
	// Limits contains the server imposed limits on the controller
	Limits map[string]util.Limiter

	// Mov is a reference to the mover, used to query axis positions
	Mov Mover
}

// Check verifies if a motion would violate the axis limit, if it exists,
// and if it does, responds with StatusBadRequest
// otherwise, flows control to the next handler.  A home is treated as a move to 0.
func (l *LimitMiddleware) Check(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path
		isPos := strings.HasSuffix(path, "/pos")
		isHome := strings.HasSuffix(path, "/home")
		if r.Method != http.MethodPost || !(isPos || isHome) {
			next.ServeHTTP(w, r)
			return
		}
		axis := axisFromPath(path)
		// bail as early as possible if we don't have a limit for this axis
		limiter, ok := l.Limits[CanonicalAxis(l.Mov, axis)]
		if !ok {
			next.ServeHTTP(w, r)
			return
		}
		if isHome {
			if !limiter.Check(0) {
				http.Error(w, errClamped.Error(), http.StatusBadRequest)
				return
			}
			next.ServeHTTP(w, r)
			return
		}
		_, relative, err := popAxisRelative(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		// get the command
		f := generichttp.FloatT{}
		// downstream functions might want the body...
		// read it all here, then "paste" it back
		bodyContent, _ := io.ReadAll(r.Body)
		r.Body.Close()
		r.Body = io.NopCloser(bytes.NewBuffer(bodyContent))
		err = json.NewDecoder(bytes.NewReader(bodyContent)).Decode(&f)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		cmd := f.F64
		if relative {
			// in the relative case, shift the command by currPos
			currPos, err := l.Mov.GetPos(axis)
			if err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
			cmd += currPos
		}
		if !limiter.Check(cmd) {
			http.Error(w, errClamped.Error(), http.StatusBadRequest)
			return
		}
		// at this point, all checks have passed and we can move on
		next.ServeHTTP(w, r)
	})
}

// axisFromPath pulls {axis} out of .../axis/{axis}/pos.  Middleware runs
// before chi has matched the route, so URLParam is not yet populated.
func axisFromPath(path string) string {
	chunks := strings.Split(strings.Trim(path, "/"), "/")
	for i := len(chunks) - 2; i >= 1; i-- {
		if chunks[i-1] == "axis" {
			return chunks[i]
		}
	}
	return ""
}

// Inject places a /axis/{axis}/limits route on the table of the HTTPer
func (l LimitMiddleware) Inject(h generichttp.HTTPer) {
	h.RT()[generichttp.MethodPath{Method: http.MethodGet, Path: "/axis/{axis}/limits"}] = Limits(l)
}

// Limits returns an HTTP handler func that returns the limits for an axis
func Limits(l LimitMiddleware) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		axis := chi.URLParam(r, "axis")
		lim, ok := l.Limits[CanonicalAxis(l.Mov, axis)]
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		var err error
		if !ok {
			err = json.NewEncoder(w).Encode(nil)
		} else {
			err = json.NewEncoder(w).Encode(lim)
		}
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	}
}
