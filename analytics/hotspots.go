package analytics

import (
	"sort"

	"github.com/golang/geo/r1"
	"github.com/golang/geo/s1"
	"github.com/golang/geo/s2"

	"report-analytics/models"
)

const (
	expectedCells = 160
	minCellLevel  = 6
	maxCellLevel  = 16
	// defaultCellLevel is used when no viewport is supplied; roughly
	// neighbourhood-sized cells.
	defaultCellLevel = 12
)

type hotspotUnit struct {
	count    int64
	origCell s2.CellID
}

// hotspotCellLevel picks the S2 level whose cells tile the viewport into
// about expectedCells pieces.
func hotspotCellLevel(vp *models.ViewPort) int {
	if vp == nil {
		return defaultCellLevel
	}

	minLL := s2.LatLngFromDegrees(vp.LatMin, vp.LonMin)
	maxLL := s2.LatLngFromDegrees(vp.LatMax, vp.LonMax)
	rect := s2.Rect{
		Lat: r1.Interval{Lo: minLL.Lat.Radians(), Hi: maxLL.Lat.Radians()},
		Lng: s1.Interval{Lo: minLL.Lng.Radians(), Hi: maxLL.Lng.Radians()},
	}
	vpArea := rect.Area()

	centerLL := s2.CellIDFromLatLng(s2.LatLng{
		Lat: s1.Angle((rect.Lat.Lo + rect.Lat.Hi) / 2),
		Lng: s1.Angle((rect.Lng.Lo + rect.Lng.Hi) / 2),
	})
	for lv := maxCellLevel; lv >= minCellLevel; lv-- {
		cc := s2.CellFromCellID(centerLL.Parent(lv))
		if vpArea/cc.ApproxArea() < expectedCells {
			return lv
		}
	}
	return minCellLevel
}

// AggregateHotspots buckets geocoded incidents into S2 cells. Reports
// without coordinates are skipped; geocoding is best-effort upstream and
// its absence must not break aggregation. A cell holding a single report
// keeps that report's exact position instead of the cell center.
func AggregateHotspots(valid []models.Report, vp *models.ViewPort) []models.Hotspot {
	level := hotspotCellLevel(vp)
	cells := make(map[s2.CellID]*hotspotUnit)

	for _, r := range valid {
		if r.Latitude == nil || r.Longitude == nil {
			continue
		}
		pc := s2.CellIDFromLatLng(s2.LatLngFromDegrees(*r.Latitude, *r.Longitude))
		parent := pc.Parent(level)
		if _, ok := cells[parent]; !ok {
			cells[parent] = &hotspotUnit{}
		}
		cells[parent].count++
		cells[parent].origCell = pc
	}

	hotspots := make([]models.Hotspot, 0, len(cells))
	for c, unit := range cells {
		ll := c.LatLng()
		if unit.count == 1 {
			ll = unit.origCell.LatLng()
		}
		hotspots = append(hotspots, models.Hotspot{
			Latitude:  ll.Lat.Degrees(),
			Longitude: ll.Lng.Degrees(),
			Count:     unit.count,
		})
	}

	sort.Slice(hotspots, func(i, j int) bool {
		if hotspots[i].Count != hotspots[j].Count {
			return hotspots[i].Count > hotspots[j].Count
		}
		if hotspots[i].Latitude != hotspots[j].Latitude {
			return hotspots[i].Latitude < hotspots[j].Latitude
		}
		return hotspots[i].Longitude < hotspots[j].Longitude
	})

	return hotspots
}
