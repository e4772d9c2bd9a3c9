package simulator

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/lox/blackjack/internal/game"
)

// Report is the JSON form of a simulation result
type Report struct {
	Strategy      string               `json:"strategy"`
	Rounds        int                  `json:"rounds"`
	Bet           int                  `json:"bet"`
	DealerStandOn int                  `json:"dealer_stand_on"`
	Seed          int64                `json:"seed"`
	Mean          float64              `json:"mean_units"`
	Median        float64              `json:"median_units"`
	StdDev        float64              `json:"stddev_units"`
	CI95          [2]float64           `json:"ci95_units"`
	HouseEdge     float64              `json:"house_edge"`
	WinRate       float64              `json:"win_rate"`
	LossRate      float64              `json:"loss_rate"`
	NetWon        int                  `json:"net_won"`
	Wagered       int                  `json:"wagered"`
	Outcomes      map[game.Outcome]int `json:"outcomes"`
	DurationMS    int64                `json:"duration_ms"`
	GeneratedAt   time.Time            `json:"generated_at"`
}

// NewReport summarises a result for saving
func NewReport(result *Result, generatedAt time.Time) Report {
	stats := result.Stats
	low, high := stats.ConfidenceInterval95()

	outcomes := make(map[game.Outcome]int, len(game.Outcomes))
	for _, o := range game.Outcomes {
		outcomes[o] = stats.OutcomeCount(o)
	}

	return Report{
		Strategy:      result.Strategy,
		Rounds:        stats.Rounds,
		Bet:           result.Bet,
		DealerStandOn: result.StandOn,
		Seed:          result.Seed,
		Mean:          stats.Mean(),
		Median:        stats.Median(),
		StdDev:        stats.StdDev(),
		CI95:          [2]float64{low, high},
		HouseEdge:     stats.HouseEdge(),
		WinRate:       stats.WinRate(),
		LossRate:      stats.LossRate(),
		NetWon:        stats.NetWon,
		Wagered:       stats.Wagered,
		Outcomes:      outcomes,
		DurationMS:    result.Duration.Milliseconds(),
		GeneratedAt:   generatedAt.UTC(),
	}
}

// WriteReport saves the report as indented JSON. Readers of path see either
// the previous file or the complete new one, never a partial write.
func WriteReport(path string, report Report) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}
	return writeFileAtomic(path, append(data, '\n'), 0o644)
}

// writeFileAtomic writes to a temporary file in the target directory and
// renames it into place. The rename is atomic on POSIX filesystems as long as
// both paths share a filesystem.
func writeFileAtomic(filename string, data []byte, perm os.FileMode) error {
	tmpFile, err := os.CreateTemp(filepath.Dir(filename), filepath.Base(filename)+".tmp.*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	committed := false
	defer func() {
		if !committed {
			_ = tmpFile.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err := tmpFile.Write(data); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, perm); err != nil {
		return fmt.Errorf("failed to set permissions: %w", err)
	}
	if err := os.Rename(tmpPath, filename); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	committed = true
	return nil
}
