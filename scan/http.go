package scan

import (
	"encoding/json"
	"go/types"
	"net/http"
	"sync"

	"go.uber.org/zap"

	"github.com/nasa-jpl/nanodrive/generichttp"
	"github.com/nasa-jpl/nanodrive/server/middleware/locker"
	"github.com/nasa-jpl/nanodrive/util"
)

// Request is the JSON body that starts a raster over HTTP
type Request struct {
	Grid Grid    `json:"grid"`
	Z    float64 `json:"z"`

	// Settle is the settle time in seconds, DefaultSettle if zero
	Settle float64 `json:"settle"`
}

// HTTPRaster is an HTTPer that runs rasters on a stage in the background
type HTTPRaster struct {
	stage   Stage
	measure Measurer
	log     *zap.Logger
	lock    *locker.Locker

	mu      sync.Mutex
	current *Raster
	z       float64
	running bool

	RouteTable generichttp.RouteTable
}

// NewHTTPRaster creates an HTTP wrapper which scans stage, calling measure at
// each point.  If lock is not nil it is held for the duration of each scan so
// that other routes protected by it return 423.
func NewHTTPRaster(stage Stage, measure Measurer, lock *locker.Locker, log *zap.Logger) *HTTPRaster {
	if log == nil {
		log = zap.NewNop()
	}
	h := &HTTPRaster{stage: stage, measure: measure, lock: lock, log: log}
	rt := generichttp.RouteTable{}
	rt[generichttp.MethodPath{Method: http.MethodPost, Path: "/scan"}] = h.Start
	rt[generichttp.MethodPath{Method: http.MethodGet, Path: "/scan/state"}] = h.State
	rt[generichttp.MethodPath{Method: http.MethodGet, Path: "/scan/cursor"}] = h.Cursor
	rt[generichttp.MethodPath{Method: http.MethodGet, Path: "/scan/results"}] = h.Results
	rt[generichttp.MethodPath{Method: http.MethodGet, Path: "/scan/fits"}] = h.FITS
	h.RouteTable = rt
	return h
}

// RT satisfies the generichttp.HTTPer interface
func (h *HTTPRaster) RT() generichttp.RouteTable {
	return h.RouteTable
}

// Running is true while a raster is in progress
func (h *HTTPRaster) Running() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.running
}

// Start decodes a Request and begins a raster in the background.
// It responds 409 if a raster is already running and 423 if the lock is held.
func (h *HTTPRaster) Start(w http.ResponseWriter, r *http.Request) {
	req := Request{}
	err := json.NewDecoder(r.Body).Decode(&req)
	defer r.Body.Close()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err = req.Grid.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	settle := DefaultSettle
	if req.Settle > 0 {
		settle = util.SecsToDuration(req.Settle)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.running {
		http.Error(w, ErrBusy.Error(), http.StatusConflict)
		return
	}
	if h.lock != nil && !h.lock.TryLock() {
		w.WriteHeader(http.StatusLocked)
		return
	}
	raster := &Raster{
		Stage:   h.stage,
		Grid:    req.Grid,
		Z:       req.Z,
		Settle:  settle,
		Measure: h.measure,
		Log:     h.log}
	h.current = raster
	h.z = req.Z
	h.running = true
	go func() {
		_, err := raster.Run()
		if err != nil {
			h.log.Error("raster failed", zap.Error(err))
		}
		if h.lock != nil {
			h.lock.Unlock()
		}
		h.mu.Lock()
		h.running = false
		h.mu.Unlock()
	}()
	w.WriteHeader(http.StatusAccepted)
}

func (h *HTTPRaster) snapshot() (*Raster, float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.current, h.z
}

// State responds with the state of the current raster as {"str": state}
func (h *HTTPRaster) State(w http.ResponseWriter, r *http.Request) {
	s := Idle
	if raster, _ := h.snapshot(); raster != nil {
		s = raster.State()
	}
	hp := generichttp.HumanPayload{T: types.String, String: s.String()}
	hp.EncodeAndRespond(w, r)
}

// Cursor responds with the flat index of the point being visited as {"int": cursor}
func (h *HTTPRaster) Cursor(w http.ResponseWriter, r *http.Request) {
	c := 0
	if raster, _ := h.snapshot(); raster != nil {
		c = raster.Cursor()
	}
	hp := generichttp.HumanPayload{T: types.Int, Int: c}
	hp.EncodeAndRespond(w, r)
}

// Results responds with the results gathered so far as JSON
func (h *HTTPRaster) Results(w http.ResponseWriter, r *http.Request) {
	results := []Result{}
	if raster, _ := h.snapshot(); raster != nil {
		results = raster.Results()
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	err := json.NewEncoder(w).Encode(results)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// FITS responds with the results of the last completed raster as a FITS file
func (h *HTTPRaster) FITS(w http.ResponseWriter, r *http.Request) {
	raster, z := h.snapshot()
	if raster == nil || raster.State() != Done {
		http.Error(w, "no completed scan", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "image/fits")
	w.Header().Set("Content-Disposition", "attachment; filename=scan.fits")
	err := WriteFITS(w, raster.Grid, z, raster.Results())
	if err != nil {
		h.log.Error("writing FITS", zap.Error(err))
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
