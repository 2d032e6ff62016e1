package analytics

import (
	"sort"
	"strings"

	"report-analytics/models"
)

// DefaultMaxCommonPaths bounds the common-path ranking so response sizes
// stay predictable regardless of how many distinct paths exist.
const DefaultMaxCommonPaths = 10

type edge struct {
	from string
	to   string
}

// AnalyzeTransitions folds each report's event log over adjacent pairs
// into a (from,to) count table and groups full status paths by structural
// equality. Reports with a single-event history contribute no edges but
// are still part of the filtered set upstream.
func AnalyzeTransitions(valid []models.Report, maxPaths int) models.TransitionAnalytics {
	if maxPaths <= 0 {
		maxPaths = DefaultMaxCommonPaths
	}

	edges := make(map[edge]int)
	pathCounts := make(map[string]int)
	total := 0

	for _, r := range valid {
		path := statusPath(r.StatusHistory)
		pathCounts[strings.Join(path, ">")]++

		for i := 1; i < len(r.StatusHistory); i++ {
			e := edge{
				from: r.StatusHistory[i-1].ToStatus,
				to:   r.StatusHistory[i].ToStatus,
			}
			edges[e]++
			total++
		}
	}

	stats := make([]models.TransitionStat, 0, len(edges))
	for e, count := range edges {
		stats = append(stats, models.TransitionStat{From: e.from, To: e.to, Count: count})
	}
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].Count != stats[j].Count {
			return stats[i].Count > stats[j].Count
		}
		if stats[i].From != stats[j].From {
			return stats[i].From < stats[j].From
		}
		return stats[i].To < stats[j].To
	})

	paths := make([]models.CommonPath, 0, len(pathCounts))
	for key, count := range pathCounts {
		paths = append(paths, models.CommonPath{Path: strings.Split(key, ">"), Count: count})
	}
	// Highest count first; shorter paths break ties so the simplest
	// workflows surface before the convoluted ones.
	sort.Slice(paths, func(i, j int) bool {
		if paths[i].Count != paths[j].Count {
			return paths[i].Count > paths[j].Count
		}
		if len(paths[i].Path) != len(paths[j].Path) {
			return len(paths[i].Path) < len(paths[j].Path)
		}
		return strings.Join(paths[i].Path, ">") < strings.Join(paths[j].Path, ">")
	})
	if len(paths) > maxPaths {
		paths = paths[:maxPaths]
	}

	return models.TransitionAnalytics{
		TransitionStats:  stats,
		CommonPaths:      paths,
		TotalTransitions: total,
	}
}

// statusPath is the ordered sequence of statuses a report moved through.
// Consecutive repeats are collapsed; the log invariant says they should
// not occur, but a duplicated event must not split a path group.
func statusPath(history []models.StatusEvent) []string {
	path := make([]string, 0, len(history))
	for _, ev := range history {
		if len(path) > 0 && path[len(path)-1] == ev.ToStatus {
			continue
		}
		path = append(path, ev.ToStatus)
	}
	return path
}
