package stations

import "strings"

// Vibe музыкальное настроение для типа заведения и времени суток.
type Vibe struct {
	Tag         string `json:"tag"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Label       string `json:"label"`
}

type daypart int

const (
	morning daypart = iota // 5:00-11:00
	midday                 // 11:00-16:00
	evening                // 16:00-22:00
	lateNight
)

func daypartOf(hour int) daypart {
	switch {
	case hour >= 5 && hour < 11:
		return morning
	case hour >= 11 && hour < 16:
		return midday
	case hour >= 16 && hour < 22:
		return evening
	default:
		return lateNight
	}
}

var (
	cafeVibes = [4]Vibe{
		{"jazz", "Morning Brew", "Smooth jazz for the early rush.", "Breakfast Special"},
		{"acoustic", "Acoustic Perk", "Light, breezy tracks for the lunch crowd.", "Midday Special"},
		{"chillout", "Evening Unwind", "Relaxing grooves for the late shifts.", "Evening Special"},
		{"lofi", "Late Night Roast", "Deep beats for the closing crew.", "Late Night Special"},
	}
	diningVibes = [4]Vibe{
		{"classical", "Morning Elegance", "Sophisticated sounds for prep time.", "Morning Special"},
		{"piano", "Bistro Keys", "Gentle piano for a refined lunch.", "Lunch Special"},
		{"lounge", "The Supper Club", "Smooth, upscale atmosphere.", "Dinner Special"},
		{"ambient", "Midnight Muse", "Minimalist sounds for a quiet close.", "Late Night Special"},
	}
	barVibes = [4]Vibe{
		{"pop", "Opening Energy", "Upbeat tracks to get the day started.", "Morning Special"},
		{"rock", "Midday Pulse", "Classic energy for a busy floor.", "Lunch Special"},
		{"house", "The Golden Hour", "Deep house and grooves for the night.", "Cocktail Special"},
		{"techno", "After Hours", "High energy for the late crowd.", "After Hours"},
	}
	defaultVibe = Vibe{"lofi", "Daily Focus", "Chill beats to get you through the shift.", "Daily Special"}
)

// VibeFor подбирает настроение по типу заведения (подстрока без учёта регистра) и часу 0-23.
func VibeFor(cuisine string, hour int) Vibe {
	kind := strings.ToLower(cuisine)
	part := daypartOf(hour)

	switch {
	case strings.Contains(kind, "cafe") || strings.Contains(kind, "bakery"):
		return cafeVibes[part]
	case strings.Contains(kind, "dining") || strings.Contains(kind, "bistro"):
		return diningVibes[part]
	case strings.Contains(kind, "bar") || strings.Contains(kind, "casual") || strings.Contains(kind, "fast"):
		return barVibes[part]
	default:
		return defaultVibe
	}
}
