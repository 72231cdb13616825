package gaze

import (
	"strings"

	"github.com/pkg/errors"
)

// HeadPosition is head orientation user is asked to hold during a calibration round
type HeadPosition string

const (
	HeadMiddle HeadPosition = "Middle"
	HeadTop    HeadPosition = "Top"
	HeadDown   HeadPosition = "Down"
	HeadLeft   HeadPosition = "Left"
	HeadRight  HeadPosition = "Right"
)

// HeadPositions lists positions in capture order
var HeadPositions = []HeadPosition{HeadMiddle, HeadTop, HeadDown, HeadLeft, HeadRight}

// ParseHeadPosition parses label (case-insensitive)
func ParseHeadPosition(label string) (HeadPosition, error) {
	for _, position := range HeadPositions {
		if strings.EqualFold(strings.TrimSpace(label), string(position)) {
			return position, nil
		}
	}
	return "", errors.Errorf("unknown head position '%s'", label)
}

// Next returns following position in capture order, wrapping around
func (position HeadPosition) Next() HeadPosition {
	return HeadPositions[(indexOf(HeadPositions, position)+1)%len(HeadPositions)]
}

// Instruction returns prompt shown to user
func (position HeadPosition) Instruction() string {
	switch position {
	case HeadMiddle:
		return "Face the middle of the screen while looking at the target."
	case HeadTop:
		return "Move your head up while looking at the target."
	case HeadDown:
		return "Move your head down while looking at the target."
	case HeadLeft:
		return "Move your head to the left while looking at the target."
	case HeadRight:
		return "Move your head to the right while looking at the target."
	default:
		return ""
	}
}

// ViewingDistance is how far from the face user holds the device
type ViewingDistance string

const (
	DistanceRegular      ViewingDistance = "Regular"
	DistanceArmsExtended ViewingDistance = "Arms Extended"
	DistanceClose        ViewingDistance = "Close"
)

// ViewingDistances lists distances in capture order
var ViewingDistances = []ViewingDistance{DistanceRegular, DistanceArmsExtended, DistanceClose}

// ParseViewingDistance parses label (case-insensitive). Underscores are accepted instead of spaces
func ParseViewingDistance(label string) (ViewingDistance, error) {
	normalized := strings.ReplaceAll(strings.TrimSpace(label), "_", " ")
	for _, distance := range ViewingDistances {
		if strings.EqualFold(normalized, string(distance)) {
			return distance, nil
		}
	}
	return "", errors.Errorf("unknown viewing distance '%s'", label)
}

// Next returns following distance in capture order, wrapping around
func (distance ViewingDistance) Next() ViewingDistance {
	return ViewingDistances[(indexOf(ViewingDistances, distance)+1)%len(ViewingDistances)]
}

// Instruction returns prompt shown to user
func (distance ViewingDistance) Instruction() string {
	switch distance {
	case DistanceRegular:
		return "Hold your device at a regular distance from your face."
	case DistanceArmsExtended:
		return "Hold your device at arms extended distance from your face."
	case DistanceClose:
		return "Hold your device close to your face."
	default:
		return ""
	}
}

// indexOf returns -1 when v is absent so that Next of unknown label starts from the first one
func indexOf[T comparable](values []T, v T) int {
	for i := range values {
		if values[i] == v {
			return i
		}
	}
	return -1
}
