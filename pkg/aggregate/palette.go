package aggregate

// Palette is an ordered list of color tokens assigned to categories.
type Palette []string

// DefaultPalette holds the chart colors used by the dashboard.
var DefaultPalette = Palette{
	"#10b981", "#3b82f6", "#8b5cf6", "#f59e0b", "#ef4444",
	"#f97316", "#84cc16", "#06b6d4", "#6d28d9", "#db2777",
	"#a855f7", "#ec4899", "#facc15", "#6b7280", "#14b8a6",
}

// Color returns the token for the k-th distinct category, cycling through the
// palette. An empty palette yields "".
func (p Palette) Color(k int) string {
	if len(p) == 0 || k < 0 {
		return ""
	}
	return p[k%len(p)]
}
