package export

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/sadopc/studyfocus/internal/store"
)

type jsonExport struct {
	ExportedAt string        `json:"exported_at"`
	Count      int           `json:"count"`
	Sessions   []jsonSession `json:"sessions"`
}

type jsonSession struct {
	ID            int64  `json:"id"`
	PlaylistID    string `json:"playlist_id"`
	PlaylistTitle string `json:"playlist_title,omitempty"`
	StartedAt     string `json:"started_at"`
	EndedAt       string `json:"ended_at,omitempty"`
	DurationSec   int64  `json:"duration_seconds"`
	Duration      string `json:"duration"`
	BreaksTaken   int    `json:"breaks_taken"`
}

func ToJSON(sessions []store.StudySession, path string) error {
	export := jsonExport{
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Count:      len(sessions),
	}

	for _, s := range sessions {
		endStr := ""
		if s.EndedAt != nil {
			endStr = s.EndedAt.Local().Format(time.RFC3339)
		}

		export.Sessions = append(export.Sessions, jsonSession{
			ID:            s.ID,
			PlaylistID:    s.PlaylistID,
			PlaylistTitle: s.PlaylistTitle,
			StartedAt:     s.StartedAt.Local().Format(time.RFC3339),
			EndedAt:       endStr,
			DurationSec:   s.Duration,
			Duration:      formatDuration(s.Duration),
			BreaksTaken:   s.BreaksTaken,
		})
	}

	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write json file: %w", err)
	}
	return nil
}
