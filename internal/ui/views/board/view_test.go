package board

import (
	"strings"
	"testing"

	heatdto "pursue/internal/modules/heat/dto"
)

func TestSparklineScalesToBlocks(t *testing.T) {
	out := Sparkline([]heatdto.HistoryPoint{
		{Score: 0, Tier: 0},
		{Score: 50, Tier: 4},
		{Score: 100, Tier: 7},
	})
	low, mid, high := strings.Index(out, "▁"), strings.Index(out, "▄"), strings.Index(out, "█")
	if low < 0 || mid < 0 || high < 0 || low >= mid || mid >= high {
		t.Fatalf("unexpected sparkline %q", out)
	}
}

func TestSparklineClampsOutOfRangeScores(t *testing.T) {
	out := Sparkline([]heatdto.HistoryPoint{{Score: -3}, {Score: 140, Tier: 9}})
	if !strings.Contains(out, "▁") || !strings.Contains(out, "█") {
		t.Fatalf("unexpected sparkline %q", out)
	}
}
