package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/nasa-jpl/nanodrive/mcl"
	"github.com/nasa-jpl/nanodrive/util"
)

func TestBuildMux(t *testing.T) {
	c := DefaultConfig()
	c.Limits = map[string]util.Limiter{"X": {Min: 0, Max: 10}}
	nd, err := mcl.Open(mcl.NewMock(), c.Driver, zaptest.NewLogger(t))
	if err != nil {
		t.Fatal(err)
	}
	defer nd.Close()
	srv := httptest.NewServer(BuildMux(c, nd, zaptest.NewLogger(t)))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/endpoints")
	if err != nil {
		t.Fatal(err)
	}
	graph := map[string][]string{}
	err = json.NewDecoder(resp.Body).Decode(&graph)
	resp.Body.Close()
	if err != nil {
		t.Fatal(err)
	}
	routes := strings.Join(graph["/mcl"], "\n")
	for _, want := range []string{"GET /axis/{axis}/pos", "POST /xy", "POST /scan", "GET /lock", "GET /axis/{axis}/limits"} {
		if !strings.Contains(routes, want) {
			t.Errorf("expected route %q in %v", want, graph["/mcl"])
		}
	}

	// limits are matched case-insensitively
	resp, err = http.Post(srv.URL+"/mcl/axis/x/pos", "application/json", strings.NewReader(`{"f64": 20}`))
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for a move past the limit, got %d", resp.StatusCode)
	}
}

func TestBuildMuxLimitsApplyToAxisAliases(t *testing.T) {
	c := DefaultConfig()
	c.Limits = map[string]util.Limiter{"x": {Min: 0, Max: 10}, "3": {Min: 0, Max: 75}}
	nd, err := mcl.Open(mcl.NewMock(), c.Driver, zaptest.NewLogger(t))
	if err != nil {
		t.Fatal(err)
	}
	defer nd.Close()
	srv := httptest.NewServer(BuildMux(c, nd, zaptest.NewLogger(t)))
	defer srv.Close()

	for _, path := range []string{"/mcl/axis/x/pos", "/mcl/axis/X/pos", "/mcl/axis/1/pos", "/mcl/axis/z/pos", "/mcl/axis/3/pos"} {
		resp, err := http.Post(srv.URL+path, "application/json", strings.NewReader(`{"f64": 500}`))
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("%s: expected 400 for a move past the limit, got %d", path, resp.StatusCode)
		}
	}
	pos, err := nd.GetPosition()
	if err != nil {
		t.Fatal(err)
	}
	if pos.X != 0 || pos.Z != 0 {
		t.Errorf("expected the stage not to move, got %+v", pos)
	}
}
