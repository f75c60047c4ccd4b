package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"time"

	"github.com/sadopc/studyfocus/internal/store"
)

func ToCSV(sessions []store.StudySession, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	// Header
	if err := w.Write([]string{"ID", "Playlist", "Title", "Start", "End", "Duration (s)", "Duration", "Breaks"}); err != nil {
		return err
	}

	for _, s := range sessions {
		endStr := ""
		if s.EndedAt != nil {
			endStr = s.EndedAt.Local().Format(time.RFC3339)
		}
		dur := formatDuration(s.Duration)

		row := []string{
			fmt.Sprintf("%d", s.ID),
			s.PlaylistID,
			s.PlaylistTitle,
			s.StartedAt.Local().Format(time.RFC3339),
			endStr,
			fmt.Sprintf("%d", s.Duration),
			dur,
			fmt.Sprintf("%d", s.BreaksTaken),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	return w.Error()
}

func formatDuration(secs int64) string {
	h := secs / 3600
	m := (secs % 3600) / 60
	s := secs % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}
