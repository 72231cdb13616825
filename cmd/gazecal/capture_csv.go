package main

import (
	"encoding/csv"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// Column layout of capture app export:
// username, device, position, distance, timestamp (unix seconds), target x/y, gaze x/y,
// face, right eye and left eye transforms (16 values each, column-major), look-at point x/y/z
const (
	colUsername = iota
	colDevice
	colPosition
	colDistance
	colTimestamp
	colTargetX
	colTargetY
	colGazeX
	colGazeY
	colFaceTransform
)

const captureColumns = colFaceTransform + 3*16 + 3

// captureRecord is a parsed row of capture export
type captureRecord struct {
	username string
	device   string
	sample   importedSample
}

// readCaptureCSV parses capture app export. First row is header and is skipped
func readCaptureCSV(r io.Reader) ([]captureRecord, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	if _, err := reader.Read(); err != nil {
		return nil, errors.Wrap(err, "can't read header")
	}
	var records []captureRecord
	for line := 2; ; line++ {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrapf(err, "line %d", line)
		}
		if len(row) < captureColumns {
			return nil, errors.Errorf("line %d: expected %d columns, got %d", line, captureColumns, len(row))
		}
		record, err := parseCaptureRow(row)
		if err != nil {
			return nil, errors.Wrapf(err, "line %d", line)
		}
		records = append(records, record)
	}
	return records, nil
}

func parseCaptureRow(row []string) (captureRecord, error) {
	values := make([]float64, len(row))
	for i := colTimestamp; i < len(row); i++ {
		v, err := strconv.ParseFloat(strings.TrimSpace(row[i]), 64)
		if err != nil {
			return captureRecord{}, errors.Wrapf(err, "column %d", i+1)
		}
		values[i] = v
	}
	var face [16]float64
	copy(face[:], values[colFaceTransform:colFaceTransform+16])
	gazePoint := [2]float64{values[colGazeX], values[colGazeY]}
	seconds, fraction := math.Modf(values[colTimestamp])
	timestamp := time.Unix(int64(seconds), int64(fraction*1e9)).UTC()

	return captureRecord{
		username: strings.TrimSpace(row[colUsername]),
		device:   strings.TrimSpace(row[colDevice]),
		sample: importedSample{
			Target:        [2]float64{values[colTargetX], values[colTargetY]},
			Gaze:          &gazePoint,
			FaceTransform: &face,
			Position:      strings.TrimSpace(row[colPosition]),
			Distance:      strings.TrimSpace(row[colDistance]),
			Timestamp:     &timestamp,
		},
	}, nil
}
