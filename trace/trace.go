// trace stores finished games as parquet files, one row per tick, for offline analysis
// of agent behavior.
package trace

import (
	"fmt"
	"os"
	"path/filepath"

	"applepicker/models"

	"github.com/parquet-go/parquet-go"
	"github.com/parquet-go/parquet-go/compress/zstd"
)

// TickRow is a single tick of a game. The reading columns are meaningful only when HasReading is set.
type TickRow struct {
	Seed            int64  `parquet:"seed"`
	Tick            int32  `parquet:"tick"`
	Section         int32  `parquet:"section"`
	HasReading      bool   `parquet:"has_reading"`
	ReadingColor    string `parquet:"reading_color,dict"`
	ReadingDistance int32  `parquet:"reading_distance"`
	Desired         int32  `parquet:"desired"`
	Accepted        bool   `parquet:"accepted"`
	Reward          int32  `parquet:"reward"`
	Score           int32  `parquet:"score"`
}

// Rows flattens an episode into parquet rows.
func Rows(seed int64, episode models.Episode) []TickRow {
	rows := make([]TickRow, 0, len(episode))
	for _, step := range episode {
		row := TickRow{
			Seed:     seed,
			Tick:     int32(step.Tick),
			Section:  int32(step.Section),
			Desired:  int32(step.Desired),
			Accepted: step.Accepted,
			Reward:   int32(step.Reward),
			Score:    int32(step.Score),
		}
		if step.Reading != nil {
			row.HasReading = true
			row.ReadingColor = step.Reading.Color.String()
			row.ReadingDistance = int32(step.Reading.Distance)
		}
		rows = append(rows, row)
	}
	return rows
}

// Episode rebuilds the steps from parquet rows.
func Episode(rows []TickRow) (models.Episode, error) {
	episode := make(models.Episode, 0, len(rows))
	for _, row := range rows {
		step := models.Step{
			Tick:     int(row.Tick),
			Section:  int(row.Section),
			Desired:  int(row.Desired),
			Accepted: row.Accepted,
			Reward:   int(row.Reward),
			Score:    int(row.Score),
		}
		if row.HasReading {
			color, err := parseColor(row.ReadingColor)
			if err != nil {
				return nil, fmt.Errorf("tick %d: %w", row.Tick, err)
			}
			step.Reading = &models.Occupancy{Color: color, Distance: int(row.ReadingDistance)}
		}
		episode = append(episode, step)
	}
	return episode, nil
}

func parseColor(s string) (models.Color, error) {
	switch s {
	case models.Good.String():
		return models.Good, nil
	case models.Bad.String():
		return models.Bad, nil
	}
	return 0, fmt.Errorf("unknown apple color %q", s)
}

// Path returns the file an episode with @seed is written to under @dir.
func Path(dir string, seed int64) string {
	return filepath.Join(dir, fmt.Sprintf("episode_%d.parquet", seed))
}

// WriteEpisode writes the episode to a temp file in @dir and renames it into place.
func WriteEpisode(dir string, seed int64, episode models.Episode) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create trace dir: %w", err)
	}

	outPath := Path(dir, seed)
	tmpPath := outPath + ".tmp"
	_ = os.Remove(tmpPath)

	if err := parquet.WriteFile(tmpPath, Rows(seed, episode),
		parquet.Compression(&zstd.Codec{Level: zstd.SpeedBetterCompression}),
		parquet.KeyValueMetadata("schema", "apple_picker_tick_v1"),
	); err != nil {
		return "", fmt.Errorf("write parquet: %w", err)
	}

	if err := os.Rename(tmpPath, outPath); err != nil {
		return "", fmt.Errorf("rename parquet: %w", err)
	}
	return outPath, nil
}

// ReadEpisode reads an episode written by WriteEpisode.
func ReadEpisode(path string) (models.Episode, error) {
	rows, err := parquet.ReadFile[TickRow](path)
	if err != nil {
		return nil, fmt.Errorf("read parquet: %w", err)
	}
	return Episode(rows)
}
