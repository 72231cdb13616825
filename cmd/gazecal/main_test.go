package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/LdDl/gaze-go/gaze"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var profilePath = filepath.Join("..", "..", "config", "devices", "ipad-mini-6.json")

// writeSamples writes 3x3 grid for two head positions with constant error (20, -10)
// plus one sample whose gaze has to be estimated from eye transform
func writeSamples(t *testing.T, dir string) string {
	t.Helper()
	var items []map[string]any
	for _, position := range []gaze.HeadPosition{gaze.HeadMiddle, gaze.HeadLeft} {
		for _, x := range []float64{100, 566.5, 1033} {
			for _, y := range []float64{100, 372, 644} {
				items = append(items, map[string]any{
					"target":   []float64{x, y},
					"gaze":     []float64{x + 20, y - 10},
					"position": string(position),
					"distance": "Regular",
				})
			}
		}
	}
	estimated := 0.03 / 0.0254 * 326 / 2
	items = append(items, map[string]any{
		"target":         []float64{estimated - 20, 382},
		"face_transform": []float64{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 0, 0, -0.3, 1},
		"eye_transform":  []float64{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 0.03, 0, 0, 1},
		"position":       "Top",
		"distance":       "arms_extended",
	})
	data, err := json.Marshal(items)
	require.NoError(t, err)
	path := filepath.Join(dir, "samples.json")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestRunImportAndReport(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "gaze.db")
	samplesPath := writeSamples(t, dir)

	var out bytes.Buffer
	err := run([]string{
		"-db", dbPath,
		"-profile", profilePath,
		"-import", samplesPath,
		"-user", "alice",
		"-strategy", "all",
		"-folds", "3",
		"-log-level", "error",
	}, &out)
	require.NoError(t, err)

	report := out.String()
	assert.Contains(t, report, "Imported session")
	assert.Contains(t, report, `user="alice"`)
	assert.Contains(t, report, `device="iPad mini (6th generation)"`)
	assert.Contains(t, report, "samples=19")
	assert.Contains(t, report, "1133x744")
	assert.Contains(t, report, "offset (20.00, -10.00)")
	for _, strategy := range gaze.Strategies {
		assert.Contains(t, report, strategy.String())
	}
	for _, position := range []string{"Middle", "Left", "Top"} {
		assert.Contains(t, report, position)
	}

	out.Reset()
	err = run([]string{"-db", dbPath, "-profile", profilePath, "-list", "-log-level", "error"}, &out)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "alice")
	assert.Contains(t, out.String(), "19")

	// Latest session of the user is picked when no session is given
	out.Reset()
	err = run([]string{"-db", dbPath, "-profile", profilePath, "-user", "alice", "-strategy", "mean", "-log-level", "error"}, &out)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "offset (20.00, -10.00)")
	assert.NotContains(t, out.String(), "linear")
}

func TestRunErrors(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "gaze.db")
	var out bytes.Buffer

	err := run([]string{"-db", dbPath, "-profile", profilePath, "-strategy", "median", "-log-level", "error"}, &out)
	assert.ErrorIs(t, err, gaze.ErrUnknownStrategy)

	err = run([]string{"-db", dbPath, "-profile", profilePath, "-user", "nobody", "-log-level", "error"}, &out)
	assert.Error(t, err)

	err = run([]string{"-db", dbPath, "-profile", filepath.Join(dir, "absent.json"), "-log-level", "error"}, &out)
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`[{"target": [1, 2]}]`), 0o644))
	err = run([]string{"-db", dbPath, "-profile", profilePath, "-import", bad, "-log-level", "error"}, &out)
	assert.ErrorContains(t, err, "eye_transform")
}
