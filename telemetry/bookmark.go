package telemetry

import (
	"fmt"
	"log/slog"

	"gonum.org/v1/gonum/stat"
)

// BookmarkType identifies the type of bookmark.
type BookmarkType string

const (
	BookmarkExtinction     BookmarkType = "extinction"
	BookmarkPopulationBoom BookmarkType = "population_boom"
	BookmarkCrash          BookmarkType = "population_crash"
	BookmarkStable         BookmarkType = "stable_population"
)

// Bookmark represents an automatically triggered bookmark.
type Bookmark struct {
	Type        BookmarkType `csv:"type"`
	Tick        int          `csv:"tick"`
	Description string       `csv:"description"`
}

// LogBookmark logs the bookmark using slog.
func (b Bookmark) LogBookmark() {
	slog.Info("bookmark",
		"type", string(b.Type),
		"tick", b.Tick,
		"description", b.Description,
	)
}

// Detection thresholds.
const (
	boomFactor     = 2.0  // population over this multiple of the rolling mean
	crashDrop      = 0.30 // fraction lost from the recent peak
	crashMinLoss   = 10
	stableMinPop   = 10
	stableMaxCV    = 0.2
	stableWindows  = 5
	rollingMinSize = 3
)

// BookmarkDetector detects interesting moments in the population.
type BookmarkDetector struct {
	// Rolling history (circular buffer)
	history     []WindowStats
	historySize int
	historyIdx  int
	historyFull bool

	recentPeak         int // peak population since the last crash
	stableWindowsCount int // consecutive windows with a stable population
}

// NewBookmarkDetector creates a detector with the given history size.
func NewBookmarkDetector(historySize int) *BookmarkDetector {
	if historySize < stableWindows {
		historySize = stableWindows
	}
	return &BookmarkDetector{
		history:     make([]WindowStats, historySize),
		historySize: historySize,
	}
}

// Check analyzes the latest stats and returns any triggered bookmarks.
func (bd *BookmarkDetector) Check(stats WindowStats) []Bookmark {
	var bookmarks []Bookmark

	if stats.Extinctions > 0 {
		bookmarks = append(bookmarks, Bookmark{
			Type:        BookmarkExtinction,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("%d extinction(s) in window", stats.Extinctions),
		})
		// A reset world starts a fresh record.
		bd.recentPeak = 0
		bd.stableWindowsCount = 0
	}

	if b := bd.checkBoom(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}
	if b := bd.checkCrash(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}
	if b := bd.checkStable(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}

	bd.addToHistory(stats)
	bd.recentPeak = max(bd.recentPeak, stats.Population)

	return bookmarks
}

func (bd *BookmarkDetector) addToHistory(stats WindowStats) {
	bd.history[bd.historyIdx] = stats
	bd.historyIdx = (bd.historyIdx + 1) % bd.historySize
	if bd.historyIdx == 0 {
		bd.historyFull = true
	}
}

// populations returns the recorded populations, oldest first.
func (bd *BookmarkDetector) populations() []float64 {
	n := bd.historyIdx
	start := 0
	if bd.historyFull {
		n = bd.historySize
		start = bd.historyIdx
	}
	out := make([]float64, n)
	for i := range out {
		out[i] = float64(bd.history[(start+i)%bd.historySize].Population)
	}
	return out
}

func (bd *BookmarkDetector) checkBoom(stats WindowStats) *Bookmark {
	pops := bd.populations()
	if len(pops) < rollingMinSize {
		return nil
	}
	avg := stat.Mean(pops, nil)
	if avg == 0 || float64(stats.Population) <= avg*boomFactor {
		return nil
	}
	return &Bookmark{
		Type:        BookmarkPopulationBoom,
		Tick:        stats.WindowEndTick,
		Description: fmt.Sprintf("Population %d is %.1fx average (%.1f)", stats.Population, float64(stats.Population)/avg, avg),
	}
}

func (bd *BookmarkDetector) checkCrash(stats WindowStats) *Bookmark {
	if bd.recentPeak == 0 {
		return nil
	}
	drop := 1.0 - float64(stats.Population)/float64(bd.recentPeak)
	if drop <= crashDrop || stats.Population >= bd.recentPeak-crashMinLoss {
		return nil
	}

	oldPeak := bd.recentPeak
	bd.recentPeak = stats.Population
	return &Bookmark{
		Type:        BookmarkCrash,
		Tick:        stats.WindowEndTick,
		Description: fmt.Sprintf("Population crashed %.0f%% from peak %d to %d", drop*100, oldPeak, stats.Population),
	}
}

func (bd *BookmarkDetector) checkStable(stats WindowStats) *Bookmark {
	if stats.Population < stableMinPop {
		bd.stableWindowsCount = 0
		return nil
	}

	pops := append(bd.populations(), float64(stats.Population))
	if len(pops) < stableWindows {
		return nil
	}
	recent := pops[len(pops)-stableWindows:]
	mean, std := stat.MeanStdDev(recent, nil)
	if mean > 0 && std/mean < stableMaxCV {
		bd.stableWindowsCount++
	} else {
		bd.stableWindowsCount = 0
	}

	// Trigger once per stable stretch.
	if bd.stableWindowsCount != 1 {
		return nil
	}
	return &Bookmark{
		Type:        BookmarkStable,
		Tick:        stats.WindowEndTick,
		Description: fmt.Sprintf("Population stable around %.0f over %d windows", mean, stableWindows),
	}
}
