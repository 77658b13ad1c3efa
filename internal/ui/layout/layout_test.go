package layout

import (
	"strings"
	"testing"

	"charm.land/lipgloss/v2"
)

func TestContentHeight(t *testing.T) {
	tests := []struct {
		total, want int
	}{
		{40, 34},
		{6, 0},
		{3, 0},
	}
	for _, tt := range tests {
		if got := ContentHeight(tt.total); got != tt.want {
			t.Errorf("ContentHeight(%d) = %d, want %d", tt.total, got, tt.want)
		}
	}
}

func TestIsTooSmall(t *testing.T) {
	if !IsTooSmall(MinWidth-1, MinHeight) {
		t.Error("expected narrow terminal to be too small")
	}
	if IsTooSmall(MinWidth, MinHeight) {
		t.Error("minimum size should be accepted")
	}
}

func TestRenderHeader(t *testing.T) {
	h := RenderHeader("Verify & Draw", "Tries 1/3", 100)
	for _, want := range []string{"Reward Centre", "Verify & Draw", "Tries 1/3", Tagline} {
		if !strings.Contains(h, want) {
			t.Errorf("header missing %q", want)
		}
	}

	if strings.Contains(RenderHeader("Result", "", 100), "Tries") {
		t.Error("expected no badge when empty")
	}
}

func TestRenderHeaderStaysOneLine(t *testing.T) {
	badge := "Tries 0/3  RID-CKST-405689"
	tests := []struct {
		width       int
		wantTagline bool
		wantBadge   bool
	}{
		{120, true, true},
		{100, true, true},
		{80, false, true},
		{40, false, false},
	}
	for _, tt := range tests {
		h := RenderHeader("Enter Details", badge, tt.width)
		if got := lipgloss.Height(h); got != HeaderHeight {
			t.Errorf("width %d: header height = %d, want %d", tt.width, got, HeaderHeight)
		}
		if got := lipgloss.Width(h); got > tt.width+2 {
			t.Errorf("width %d: header rendered %d columns", tt.width, got)
		}
		if strings.Contains(h, Tagline) != tt.wantTagline {
			t.Errorf("width %d: tagline shown = %v, want %v", tt.width, !tt.wantTagline, tt.wantTagline)
		}
		if strings.Contains(h, badge) != tt.wantBadge {
			t.Errorf("width %d: badge shown = %v, want %v", tt.width, !tt.wantBadge, tt.wantBadge)
		}
	}
}

func TestRenderFooter(t *testing.T) {
	f := RenderFooter([]KeyHint{{Key: "Enter", Description: "Continue"}}, 80)
	if !strings.Contains(f, "Enter") || !strings.Contains(f, "Continue") {
		t.Errorf("footer missing hint: %q", f)
	}
}
