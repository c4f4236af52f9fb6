package main

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"go.uber.org/zap"

	"github.com/nasa-jpl/nanodrive/generichttp"
	"github.com/nasa-jpl/nanodrive/generichttp/motion"
	"github.com/nasa-jpl/nanodrive/mcl"
	"github.com/nasa-jpl/nanodrive/scan"
	"github.com/nasa-jpl/nanodrive/server/middleware/locker"
	"github.com/nasa-jpl/nanodrive/util"
)

// BuildMux binds the stage, its limits, lock, and raster scanner to a chi
// router under c.Endpoint.  The root serves /endpoints, a JSON listing of
// every route.
func BuildMux(c Config, nd *mcl.NanoDrive, log *zap.Logger) chi.Router {
	root := chi.NewRouter()
	root.Use(middleware.Logger)
	supergraph := map[string][]string{}

	// key limits by canonical axis name so aliases ("1", "X") cannot skip them
	limits := map[string]util.Limiter{}
	for axis, lim := range c.Limits {
		if a, err := mcl.ParseAxis(axis); err == nil {
			limits[a.String()] = lim
		} else {
			log.Warn("limit on unknown axis ignored", zap.String("axis", axis))
		}
	}
	httper := mcl.NewHTTPNanoDrive(nd)
	limiter := motion.LimitMiddleware{Limits: limits, Mov: nd}
	limiter.Inject(httper)

	// the raster takes the lock while it runs, but its own routes stay open
	lock := locker.New("scan")
	locker.Inject(httper, lock)
	raster := scan.NewHTTPRaster(nd, nil, lock, log)
	for mp, fcn := range raster.RT() {
		httper.RT()[mp] = fcn
	}

	// prepare the URL, "mcl" => "/mcl"
	hndlS := generichttp.SubMuxSanitize(c.Endpoint)
	supergraph[hndlS] = httper.RT().Endpoints()

	r := chi.NewRouter()
	r.Use(limiter.Check)
	r.Use(lock.Check)
	httper.RT().Bind(r)
	root.Mount(hndlS, r)

	root.Get("/endpoints", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		err := json.NewEncoder(w).Encode(supergraph)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	})
	return root
}
