package mapview_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/wallaby-market/wallaby/internal/mapview"
	"go.uber.org/zap"
)

// tileServer serves fake tiles and counts probe requests.
func tileServer(t *testing.T, status int) (*httptest.Server, *atomic.Int64) {
	t.Helper()
	var hits atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(status)
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func newTestViewer(t *testing.T, status int) (*mapview.Viewer, *atomic.Int64) {
	t.Helper()
	srv, hits := tileServer(t, status)
	tiles := mapview.TileSource{URLTemplate: srv.URL + "/{z}/{x}/{y}.png"}
	return mapview.NewViewer(tiles, mapview.Viewport{Width: 400, Height: 800}, zap.NewNop()), hits
}

func TestOpen_drawsFixedMarkerSet(t *testing.T) {
	v, _ := newTestViewer(t, http.StatusOK)

	if err := v.Open(context.Background()); err != nil {
		t.Fatalf("Open: %v", err)
	}
	if !v.IsOpen() {
		t.Fatal("viewer should be open")
	}

	markers := v.Markers()
	if len(markers) != 7 {
		t.Fatalf("expected 7 markers, got %d", len(markers))
	}

	kinds := v.CountsByKind()
	if kinds[mapview.KindShop] != 4 || kinds[mapview.KindFair] != 3 {
		t.Errorf("expected 4 shops and 3 fairs, got %v", kinds)
	}
	if cats := v.CountsByCategory(); cats["Arts & Crafts"] != 2 {
		t.Errorf("expected 2 Arts & Crafts entries, got %v", cats)
	}
}

func TestOpen_tileFailureLeavesClosed(t *testing.T) {
	v, _ := newTestViewer(t, http.StatusServiceUnavailable)

	if err := v.Open(context.Background()); err == nil {
		t.Fatal("expected an error from an unreachable tile source")
	}
	if v.IsOpen() {
		t.Error("a failed open must leave the viewer closed")
	}
	if len(v.Markers()) != 0 {
		t.Error("no markers may be drawn on a failed open")
	}
}

func TestOpen_idempotentWhileOpen(t *testing.T) {
	v, hits := newTestViewer(t, http.StatusOK)

	if err := v.Open(context.Background()); err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := v.Open(context.Background()); err != nil {
		t.Fatalf("second Open: %v", err)
	}
	if hits.Load() != 1 {
		t.Errorf("expected one tile probe, got %d", hits.Load())
	}
}

func TestClose_discardsStateAndReloads(t *testing.T) {
	v, hits := newTestViewer(t, http.StatusOK)

	if err := v.Open(context.Background()); err != nil {
		t.Fatalf("Open: %v", err)
	}
	v.Close()
	if v.IsOpen() || len(v.Markers()) != 0 {
		t.Error("close should discard the drawn state")
	}

	if err := v.Open(context.Background()); err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if hits.Load() != 2 {
		t.Errorf("reopen should probe the tile source again, got %d probes", hits.Load())
	}
	if len(v.Markers()) != 7 {
		t.Error("reopen should redraw the full marker set")
	}
}

func TestMarkerColorsByKind(t *testing.T) {
	v, _ := newTestViewer(t, http.StatusOK)
	if err := v.Open(context.Background()); err != nil {
		t.Fatalf("Open: %v", err)
	}

	for _, m := range v.Markers() {
		want := "#10b981"
		if m.POI.Kind == mapview.KindFair {
			want = "#f59e0b"
		}
		if m.Color != want {
			t.Errorf("%s: color %s, want %s", m.POI.Name, m.Color, want)
		}
	}
}

func TestPopupContent(t *testing.T) {
	v, _ := newTestViewer(t, http.StatusOK)
	if err := v.Open(context.Background()); err != nil {
		t.Fatalf("Open: %v", err)
	}

	var fashion, farmers mapview.Marker
	for _, m := range v.Markers() {
		switch m.POI.Name {
		case "Fashion Boutique":
			fashion = m
		case "Weekend Farmers Market":
			farmers = m
		}
	}

	if !strings.Contains(fashion.PopupHTML, "Closed") || !strings.Contains(fashion.PopupHTML, "#dc2626") {
		t.Errorf("closed shop popup missing closed badge: %s", fashion.PopupHTML)
	}
	if !strings.Contains(farmers.PopupHTML, "Open") || !strings.Contains(farmers.PopupHTML, "#16a34a") {
		t.Errorf("open fair popup missing open badge: %s", farmers.PopupHTML)
	}
	if !strings.Contains(farmers.PopupHTML, "Saturdays &amp; Sundays") {
		t.Errorf("fair popup missing schedule: %s", farmers.PopupHTML)
	}
	if !strings.Contains(fashion.PopupHTML, "🏪 Shop") || !strings.Contains(farmers.PopupHTML, "🎪 Fair") {
		t.Error("popups missing kind badges")
	}
}

func TestFullscreenToggleRecalculatesViewport(t *testing.T) {
	v, _ := newTestViewer(t, http.StatusOK)
	if err := v.Open(context.Background()); err != nil {
		t.Fatalf("Open: %v", err)
	}

	if vp := v.Viewport(); vp.Height != 640 {
		t.Errorf("windowed viewport should use 80%% of screen height, got %d", vp.Height)
	}

	if !v.ToggleFullscreen() {
		t.Fatal("first toggle should enter fullscreen")
	}
	if vp := v.Viewport(); vp.Height != 800 || vp.Width != 400 {
		t.Errorf("fullscreen viewport should match the screen, got %+v", vp)
	}

	if v.ToggleFullscreen() {
		t.Fatal("second toggle should leave fullscreen")
	}
	if vp := v.Viewport(); vp.Height != 640 {
		t.Errorf("windowed viewport not restored, got %+v", vp)
	}
}

func TestPointsOfInterest_returnsIsolatedCopy(t *testing.T) {
	pois := mapview.PointsOfInterest()
	if len(pois) != 7 {
		t.Fatalf("expected 7 points of interest, got %d", len(pois))
	}

	pois[0].Name = "mutated"
	if again := mapview.PointsOfInterest(); again[0].Name == "mutated" {
		t.Error("callers must not be able to mutate the fixed list")
	}
}

func TestTileSourceProbe(t *testing.T) {
	srv, hits := tileServer(t, http.StatusOK)
	tiles := mapview.TileSource{URLTemplate: srv.URL + "/{z}/{x}/{y}.png"}

	if err := tiles.Probe(context.Background(), nil); err != nil {
		t.Fatalf("Probe: %v", err)
	}
	if hits.Load() != 1 {
		t.Errorf("expected one tile request, got %d", hits.Load())
	}

	down, _ := tileServer(t, http.StatusBadGateway)
	tiles = mapview.TileSource{URLTemplate: down.URL + "/{z}/{x}/{y}.png"}
	if err := tiles.Probe(context.Background(), nil); err == nil {
		t.Error("probe against a failing provider must report an error")
	}
}
