package tui

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
)

func TestGetBreakpoint(t *testing.T) {
	tests := []struct {
		width int
		want  Breakpoint
	}{
		{0, BreakpointNarrow},
		{59, BreakpointNarrow},
		{60, BreakpointMedium},
		{99, BreakpointMedium},
		{100, BreakpointWide},
		{250, BreakpointWide},
	}

	for _, tt := range tests {
		if got := GetBreakpoint(tt.width); got != tt.want {
			t.Errorf("GetBreakpoint(%d) = %d, want %d", tt.width, got, tt.want)
		}
	}
}

func TestCalculateColumnWidths(t *testing.T) {
	tests := []struct {
		name  string
		specs []ColumnSpec
		width int
		want  []int
	}{
		{
			name:  "fixed columns with room to spare",
			specs: []ColumnSpec{{Fixed: 10, Priority: 3}, {Fixed: 15, Priority: 2}, {Fixed: 20, Priority: 1}},
			width: 100,
			want:  []int{10, 15, 20},
		},
		{
			// 100 - 10 fixed - 2 gaps of 3 - 2 padding leaves 82 to share 1:2
			name:  "weighted share",
			specs: []ColumnSpec{{Fixed: 10, Priority: 3}, {Weight: 1, MinWidth: 5, Priority: 2}, {Weight: 2, MinWidth: 5, Priority: 1}},
			width: 100,
			want:  []int{10, 27, 54},
		},
		{
			name:  "min width wins over a small share",
			specs: []ColumnSpec{{Fixed: 40, Priority: 2}, {Weight: 1, MinWidth: 12, Priority: 1}},
			width: 50,
			want:  []int{40, 12},
		},
		{
			name:  "lowest priority dropped first",
			specs: []ColumnSpec{{Fixed: 30, Priority: 3}, {Fixed: 30, Priority: 1}, {Fixed: 30, Priority: 2}},
			width: 70,
			want:  []int{30, 0, 30},
		},
		{
			name:  "equal priorities drop the earlier column",
			specs: []ColumnSpec{{Fixed: 30, Priority: 1}, {Fixed: 30, Priority: 1}, {Fixed: 30, Priority: 5}},
			width: 70,
			want:  []int{0, 30, 30},
		},
		{
			name:  "last column survives",
			specs: []ColumnSpec{{Fixed: 10, Priority: 3}, {Fixed: 10, Priority: 2}, {Fixed: 10, Priority: 1}},
			width: 5,
			want:  []int{10, 0, 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculateColumnWidths(tt.specs, tt.width, 3)
			if len(got) != len(tt.want) {
				t.Fatalf("got %d widths, want %d", len(got), len(tt.want))
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("widths = %v, want %v", got, tt.want)
					break
				}
			}
		})
	}
}

func TestResourceColumnsNarrowing(t *testing.T) {
	wide := CalculateColumnWidths(resourceColumns, 120, 3)
	for i, w := range wide {
		if w == 0 {
			t.Errorf("column %d hidden at width 120", i)
		}
	}

	narrow := CalculateColumnWidths(resourceColumns, 50, 3)
	if narrow[3] != 0 {
		t.Errorf("fill column width = %d at width 50, want hidden", narrow[3])
	}
	if narrow[0] == 0 || narrow[2] == 0 {
		t.Errorf("code and level must stay visible: %v", narrow)
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in    string
		width int
		want  string
	}{
		{"Oxygen", 10, "Oxygen"},
		{"Oxygen", 6, "Oxygen"},
		{"Potable Water", 8, "Potable…"},
		{"Energy", 0, ""},
		{"Energy", 3, "Ene"},
		{"Ωmega reserve", 2, "Ωm"},
		{"Ωmega reserve", 6, "Ωmega…"},
	}

	for _, tt := range tests {
		if got := Truncate(tt.in, tt.width); got != tt.want {
			t.Errorf("Truncate(%q, %d) = %q, want %q", tt.in, tt.width, got, tt.want)
		}
	}
}

func TestPadRight(t *testing.T) {
	tests := []struct {
		in    string
		width int
		want  string
	}{
		{"kg", 5, "kg   "},
		{"WATER", 5, "WATER"},
		{"OXYGEN", 5, "OXYGEN"},
	}

	for _, tt := range tests {
		if got := PadRight(tt.in, tt.width); got != tt.want {
			t.Errorf("PadRight(%q, %d) = %q, want %q", tt.in, tt.width, got, tt.want)
		}
	}
}

func TestContentHeight(t *testing.T) {
	tests := []struct {
		term, chrome, want int
	}{
		{24, 6, 18},
		{40, 6, 34},
		{8, 6, 5},
		{3, 6, 5},
	}

	for _, tt := range tests {
		if got := ContentHeight(tt.term, tt.chrome); got != tt.want {
			t.Errorf("ContentHeight(%d, %d) = %d, want %d", tt.term, tt.chrome, got, tt.want)
		}
	}
}

func TestLevelBar(t *testing.T) {
	theme := NewTheme("")

	tests := []struct {
		name       string
		percentage float64
		wantFilled bool
		wantEmpty  bool
	}{
		{"half", 50, true, true},
		{"full", 100, true, false},
		{"overfull", 130, true, false},
		{"empty", 0, false, true},
		{"negative", -5, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bar := theme.LevelBar(tt.percentage, 20, 20)
			if got := strings.Contains(bar, "█"); got != tt.wantFilled {
				t.Errorf("filled = %v, want %v in %q", got, tt.wantFilled, bar)
			}
			if got := strings.Contains(bar, "░"); got != tt.wantEmpty {
				t.Errorf("empty = %v, want %v in %q", got, tt.wantEmpty, bar)
			}
			if w := lipgloss.Width(bar); w != 20 {
				t.Errorf("bar width = %d, want 20", w)
			}
		})
	}
}

func TestPanel(t *testing.T) {
	theme := NewTheme("")

	out := theme.Panel("COLONY", "Population: 12", 40)
	lines := strings.Split(out, "\n")
	if !strings.Contains(lines[0], "COLONY") {
		t.Errorf("title not in top edge: %q", lines[0])
	}
	if !strings.Contains(out, "Population: 12") {
		t.Errorf("content missing: %q", out)
	}
	for i, line := range lines {
		if w := lipgloss.Width(line); w != 40 {
			t.Errorf("line %d width = %d, want 40: %q", i, w, line)
		}
	}

	// No room for the title
	tiny := theme.Panel("A VERY LONG PANEL TITLE", "x", 10)
	if strings.Contains(tiny, "LONG") {
		t.Errorf("title should be dropped when it does not fit: %q", tiny)
	}
}
