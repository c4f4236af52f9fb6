package mcl

import (
	"encoding/json"
	"net/http"

	"github.com/nasa-jpl/nanodrive/generichttp"
	"github.com/nasa-jpl/nanodrive/generichttp/motion"
)

// XY is the JSON body of a two-axis move
type XY struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// HTTPNanoDrive wraps a NanoDrive in an HTTP interface
type HTTPNanoDrive struct {
	nd *NanoDrive

	RouteTable generichttp.RouteTable
}

// NewHTTPNanoDrive returns a new HTTP wrapper with the route table
// pre-configured.  Per-axis routes come from the generic motion interface.
func NewHTTPNanoDrive(nd *NanoDrive) HTTPNanoDrive {
	w := HTTPNanoDrive{nd: nd}
	rt := generichttp.RouteTable{}
	motion.HTTPMove(nd, rt)
	rt[generichttp.MethodPath{Method: http.MethodGet, Path: "/position"}] = w.GetPosition
	rt[generichttp.MethodPath{Method: http.MethodPost, Path: "/xy"}] = w.MoveXY
	rt[generichttp.MethodPath{Method: http.MethodPost, Path: "/z"}] = generichttp.SetFloat(nd.MoveZ)
	w.RouteTable = rt
	return w
}

// RT satisfies the generichttp.HTTPer interface
func (h HTTPNanoDrive) RT() generichttp.RouteTable {
	return h.RouteTable
}

// GetPosition responds with the X, Y, Z position as JSON
func (h HTTPNanoDrive) GetPosition(w http.ResponseWriter, r *http.Request) {
	p, err := h.nd.GetPosition()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	err = json.NewEncoder(w).Encode(p)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// MoveXY moves X then Y to the JSON body {"x": ..., "y": ...}
func (h HTTPNanoDrive) MoveXY(w http.ResponseWriter, r *http.Request) {
	xy := XY{}
	err := json.NewDecoder(r.Body).Decode(&xy)
	defer r.Body.Close()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	err = h.nd.MoveXY(xy.X, xy.Y)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
}
