package telemetry

import "testing"

func hasBookmark(bookmarks []Bookmark, typ BookmarkType) bool {
	for _, bm := range bookmarks {
		if bm.Type == typ {
			return true
		}
	}
	return false
}

func TestBookmarkDetector_Boom(t *testing.T) {
	bd := NewBookmarkDetector(10)

	for i := 0; i < 5; i++ {
		bd.Check(WindowStats{WindowEndTick: i * 100, Population: 20})
	}

	bookmarks := bd.Check(WindowStats{WindowEndTick: 500, Population: 60})
	if !hasBookmark(bookmarks, BookmarkPopulationBoom) {
		t.Error("expected population_boom bookmark")
	}
}

func TestBookmarkDetector_Crash(t *testing.T) {
	bd := NewBookmarkDetector(10)

	for i := 0; i < 5; i++ {
		bd.Check(WindowStats{WindowEndTick: i * 100, Population: 100})
	}

	bookmarks := bd.Check(WindowStats{WindowEndTick: 500, Population: 50})
	if !hasBookmark(bookmarks, BookmarkCrash) {
		t.Error("expected population_crash bookmark")
	}

	// The peak resets after a crash.
	bookmarks = bd.Check(WindowStats{WindowEndTick: 600, Population: 45})
	if hasBookmark(bookmarks, BookmarkCrash) {
		t.Error("crash reported twice for the same drop")
	}
}

func TestBookmarkDetector_SmallDropIsNotACrash(t *testing.T) {
	bd := NewBookmarkDetector(10)
	bd.Check(WindowStats{Population: 12})

	// 50% but only 6 agents
	if bookmarks := bd.Check(WindowStats{WindowEndTick: 100, Population: 6}); hasBookmark(bookmarks, BookmarkCrash) {
		t.Error("small absolute drop reported as crash")
	}
}

func TestBookmarkDetector_Extinction(t *testing.T) {
	bd := NewBookmarkDetector(10)
	bd.Check(WindowStats{Population: 100})

	bookmarks := bd.Check(WindowStats{WindowEndTick: 100, Population: 5, Extinctions: 1})
	if !hasBookmark(bookmarks, BookmarkExtinction) {
		t.Error("expected extinction bookmark")
	}
	if hasBookmark(bookmarks, BookmarkCrash) {
		t.Error("reset world reported as crash")
	}
}

func TestBookmarkDetector_StableOncePerStretch(t *testing.T) {
	bd := NewBookmarkDetector(10)

	var count int
	for i := 0; i < 10; i++ {
		bookmarks := bd.Check(WindowStats{WindowEndTick: i * 100, Population: 50 + i%2})
		if hasBookmark(bookmarks, BookmarkStable) {
			count++
			if i != stableWindows-1 {
				t.Errorf("stable bookmark at window %d, want %d", i, stableWindows-1)
			}
		}
	}
	if count != 1 {
		t.Errorf("stable bookmarks = %d, want 1", count)
	}
}
