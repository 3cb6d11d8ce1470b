// Package mapview renders the "Local Markets & Shops" map: a lazily loaded
// tile source and a fixed set of category-colored markers with popups. The
// viewer is stateless with respect to the session; nothing persists across
// openings.
package mapview

import (
	"context"
	"fmt"
	"html/template"
	"net/http"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// Marker colors and popup badge colors, by kind and open state.
const (
	shopColor   = "#10b981"
	fairColor   = "#f59e0b"
	openColor   = "#16a34a"
	closedColor = "#dc2626"
)

// TileSource describes the external tile provider.
type TileSource struct {
	// URLTemplate with {z}/{x}/{y} placeholders.
	URLTemplate string
	Attribution string
}

// OpenStreetMap is the default tile source.
var OpenStreetMap = TileSource{
	URLTemplate: "https://tile.openstreetmap.org/{z}/{x}/{y}.png",
	Attribution: "© OpenStreetMap contributors",
}

// Probe fetches one tile to confirm the provider is reachable. A nil client
// uses http.DefaultClient. The viewer runs it on open; the service's health
// checker runs it as the tile-source readiness probe.
func (t TileSource) Probe(ctx context.Context, client *http.Client) error {
	if client == nil {
		client = http.DefaultClient
	}
	url := t.URLTemplate
	for ph, val := range map[string]string{"{z}": "0", "{x}": "0", "{y}": "0"} {
		url = strings.ReplaceAll(url, ph, val)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return fmt.Errorf("tile probe: status %d", resp.StatusCode)
	}
	return nil
}

// Marker is a rendered point of interest.
type Marker struct {
	POI       PointOfInterest `json:"poi"`
	Color     string          `json:"color"`
	PopupHTML string          `json:"popup_html"`
}

// Viewport is the map's drawing area in CSS pixels.
type Viewport struct {
	Width  int
	Height int
}

// Viewer is the map viewer. Open lazily verifies the tile source and builds
// the markers; a tile-source failure leaves the viewer unopened without
// affecting anything else. The fullscreen toggle triggers a viewport
// recalculation, mirroring the resize invalidation a map widget needs.
type Viewer struct {
	tiles  TileSource
	client *http.Client
	logger *zap.Logger

	mu         sync.Mutex
	open       bool
	fullscreen bool
	screen     Viewport
	viewport   Viewport
	markers    []Marker
}

// NewViewer creates a Viewer over the given tile source. screen is the
// device's full drawing area.
func NewViewer(tiles TileSource, screen Viewport, logger *zap.Logger) *Viewer {
	return &Viewer{
		tiles:  tiles,
		client: &http.Client{},
		logger: logger,
		screen: screen,
	}
}

// Open loads the tile source and draws the fixed marker set. Failing to
// reach the tile provider returns an error and leaves the viewer closed.
func (v *Viewer) Open(ctx context.Context) error {
	v.mu.Lock()
	if v.open {
		v.mu.Unlock()
		return nil
	}
	v.mu.Unlock()

	if err := v.tiles.Probe(ctx, v.client); err != nil {
		v.logger.Warn("tile source unavailable", zap.Error(err))
		return fmt.Errorf("load tile source: %w", err)
	}

	pois := PointsOfInterest()
	markers := make([]Marker, 0, len(pois))
	for _, poi := range pois {
		markers = append(markers, newMarker(poi))
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	v.open = true
	v.markers = markers
	v.invalidateSize()
	return nil
}

// Close discards the drawn state. The next Open reloads and redraws.
func (v *Viewer) Close() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.open = false
	v.fullscreen = false
	v.markers = nil
	v.viewport = Viewport{}
}

// IsOpen reports whether the viewer is showing.
func (v *Viewer) IsOpen() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.open
}

// Markers returns the drawn markers.
func (v *Viewer) Markers() []Marker {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make([]Marker, len(v.markers))
	copy(out, v.markers)
	return out
}

// CountsByKind reports how many drawn markers each kind has.
func (v *Viewer) CountsByKind() map[Kind]int {
	v.mu.Lock()
	defer v.mu.Unlock()
	counts := make(map[Kind]int)
	for _, m := range v.markers {
		counts[m.POI.Kind]++
	}
	return counts
}

// CountsByCategory reports how many drawn markers each category has.
func (v *Viewer) CountsByCategory() map[string]int {
	v.mu.Lock()
	defer v.mu.Unlock()
	counts := make(map[string]int)
	for _, m := range v.markers {
		counts[m.POI.Category]++
	}
	return counts
}

// ToggleFullscreen flips fullscreen mode and recalculates the viewport.
// Returns the new fullscreen state.
func (v *Viewer) ToggleFullscreen() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.fullscreen = !v.fullscreen
	v.invalidateSize()
	return v.fullscreen
}

// Viewport returns the current drawing area.
func (v *Viewer) Viewport() Viewport {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.viewport
}

// invalidateSize recomputes the viewport from the screen and fullscreen
// state. Windowed mode uses 80% of the screen height, as the modal does.
func (v *Viewer) invalidateSize() {
	if v.fullscreen {
		v.viewport = v.screen
		return
	}
	v.viewport = Viewport{Width: v.screen.Width, Height: v.screen.Height * 80 / 100}
}

// newMarker renders one point of interest into its marker.
func newMarker(poi PointOfInterest) Marker {
	color := shopColor
	if poi.Kind == KindFair {
		color = fairColor
	}
	return Marker{POI: poi, Color: color, PopupHTML: popupHTML(poi)}
}

var popupTmpl = template.Must(template.New("popup").Parse(`<div class="poi-popup">
<h3>{{.Name}}</h3>
<span class="badge" style="background:{{.KindColor}}">{{.KindLabel}}</span>
<span class="badge" style="background:{{.OpenColor}}">{{.OpenLabel}}</span>
<p class="category">{{.Category}}</p>
<p class="description">{{.Description}}</p>
{{if .Schedule}}<p class="schedule"><strong>Schedule:</strong> {{.Schedule}}</p>{{end}}
<span class="rating">⭐ {{.Rating}}</span>
</div>`))

// popupHTML builds the popup body for a point of interest.
func popupHTML(poi PointOfInterest) string {
	data := struct {
		PointOfInterest
		KindColor, KindLabel string
		OpenColor, OpenLabel string
	}{PointOfInterest: poi}

	if poi.Kind == KindShop {
		data.KindColor, data.KindLabel = shopColor, "🏪 Shop"
	} else {
		data.KindColor, data.KindLabel = fairColor, "🎪 Fair"
	}
	if poi.IsOpen {
		data.OpenColor, data.OpenLabel = openColor, "Open"
	} else {
		data.OpenColor, data.OpenLabel = closedColor, "Closed"
	}

	var b strings.Builder
	if err := popupTmpl.Execute(&b, data); err != nil {
		return ""
	}
	return b.String()
}
