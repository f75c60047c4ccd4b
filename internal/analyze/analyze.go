// Package analyze scores a playlist's video titles against a keyword
// list to estimate how educational the playlist is.
package analyze

import "strings"

// educationalKeywords are matched case-insensitively as substrings of
// each video title. Every hit counts once per keyword per title.
var educationalKeywords = []string{
	"lecture", "tutorial", "course", "learn", "education",
	"study", "academic", "lesson", "university", "school",
	"teaching", "explanation", "guide", "programming", "development",
	"training", "introduction", "basics", "advanced", "workshop",
}

// Thresholds for the recommendation bands.
const (
	scorePositive    = 60
	scoreEducational = 40
)

// PlaylistInfo is the scraped input for scoring.
type PlaylistInfo struct {
	ID          string
	Title       string
	VideoTitles []string
}

// RecommendationType classifies the recommendation band.
type RecommendationType string

const (
	RecommendPositive RecommendationType = "positive"
	RecommendNeutral  RecommendationType = "neutral"
	RecommendWarning  RecommendationType = "warning"
)

type Recommendation struct {
	Message string
	Type    RecommendationType
}

// Analysis is the scoring result for one playlist.
type Analysis struct {
	PlaylistID       string
	Title            string
	VideoCount       int
	EducationalScore float64
	IsEducational    bool
	Recommendation   Recommendation
}

// Score computes the educational score for the playlist: average
// keyword hits per title scaled by 20, capped at 100.
func Score(info PlaylistInfo) Analysis {
	totalHits := 0
	for _, title := range info.VideoTitles {
		lower := strings.ToLower(title)
		for _, keyword := range educationalKeywords {
			if strings.Contains(lower, keyword) {
				totalHits++
			}
		}
	}

	score := 0.0
	if len(info.VideoTitles) > 0 {
		score = float64(totalHits) / float64(len(info.VideoTitles)) * 20
	}
	if score > 100 {
		score = 100
	}

	title := info.Title
	if title == "" {
		title = "Unknown Playlist"
	}

	return Analysis{
		PlaylistID:       info.ID,
		Title:            title,
		VideoCount:       len(info.VideoTitles),
		EducationalScore: score,
		IsEducational:    score >= scoreEducational,
		Recommendation:   recommend(score),
	}
}

func recommend(score float64) Recommendation {
	switch {
	case score >= scorePositive:
		return Recommendation{
			Message: "This playlist appears to be highly educational and suitable for studying.",
			Type:    RecommendPositive,
		}
	case score >= scoreEducational:
		return Recommendation{
			Message: "This playlist contains educational content. Stay focused on the learning material.",
			Type:    RecommendNeutral,
		}
	default:
		return Recommendation{
			Message: "This playlist may contain limited educational content. Consider if it aligns with your study goals.",
			Type:    RecommendWarning,
		}
	}
}
