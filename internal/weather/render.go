package weather

import (
	"fmt"
	"strings"
)

// VoiceSummary renders a short spoken-style Arabic summary of the report.
func VoiceSummary(r *Report) string {
	return fmt.Sprintf("الطقس في %s الآن %d درجة مئوية. الحالة %s. يشعر بـ %d درجة",
		r.Location, r.Temperature, r.Condition, r.FeelsLike)
}

// Detailed renders the full markdown weather card in Arabic.
func Detailed(r *Report) string {
	var b strings.Builder
	fmt.Fprintf(&b, "**الطقس في %s**\n\n", r.Location)
	fmt.Fprintf(&b, "🌡️ **درجة الحرارة الحالية:** %d°C (يشعر بـ %d°C)\n", r.Temperature, r.FeelsLike)
	fmt.Fprintf(&b, "🌤️ **الحالة:** %s\n", r.Condition)
	fmt.Fprintf(&b, "💧 **الرطوبة:** %d%%\n", r.Humidity)
	fmt.Fprintf(&b, "💨 **سرعة الرياح:** %d كم/س\n\n", r.WindSpeed)
	b.WriteString("**توقعات الأيام القادمة:**\n")
	for _, day := range r.Forecast {
		fmt.Fprintf(&b, "- **%s**: %s (%d° / %d°)\n", day.Date, day.Condition, day.Max, day.Min)
	}
	return strings.TrimSpace(b.String())
}
