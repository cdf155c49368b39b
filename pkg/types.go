package pkg

import (
	"fmt"
	"strings"
	"time"
)

// EmotionRecord represents a single observed emotional state for a subject
type EmotionRecord struct {
	ID        string    `json:"id"`
	SubjectID string    `json:"subject_id"`
	Label     string    `json:"label"`
	Intensity int       `json:"intensity"` // 1-5
	Timestamp time.Time `json:"timestamp"`
	Triggers  []string  `json:"triggers,omitempty"`
	Notes     string    `json:"notes,omitempty"`
}

// SensoryRecord represents a single observed sensory response for a subject
type SensoryRecord struct {
	ID        string    `json:"id"`
	SubjectID string    `json:"subject_id"`
	Modality  string    `json:"modality"` // auditory, visual, tactile, ...
	Response  string    `json:"response"` // seeking, avoiding, neutral, ...
	Intensity int       `json:"intensity"` // 1-5
	Timestamp time.Time `json:"timestamp"`
	Notes     string    `json:"notes,omitempty"`
}

// RoomConditions captures the physical environment during a session
type RoomConditions struct {
	NoiseLevel  int     `json:"noise_level"` // 1-5
	Lighting    string  `json:"lighting"`    // natural, bright, fluorescent, dim, harsh
	Temperature float64 `json:"temperature"` // degrees C
	Humidity    float64 `json:"humidity"`    // percent
}

// EnvironmentalSnapshot captures environmental context for a session
type EnvironmentalSnapshot struct {
	RoomConditions    RoomConditions `json:"room_conditions"`
	Weather           string         `json:"weather,omitempty"`
	ClassroomActivity string         `json:"classroom_activity,omitempty"`
}

// SessionRecord groups the observations made during one tracking session
type SessionRecord struct {
	ID            string                 `json:"id"`
	SubjectID     string                 `json:"subject_id"`
	Timestamp     time.Time              `json:"timestamp"`
	Emotions      []EmotionRecord        `json:"emotions"`
	SensoryInputs []SensoryRecord        `json:"sensory_inputs"`
	Environmental *EnvironmentalSnapshot `json:"environmental,omitempty"`
}

// ProgressPoint is a single measurement in a goal's progress history
type ProgressPoint struct {
	Value     float64   `json:"value"`
	Timestamp time.Time `json:"timestamp"`
}

// GoalRecord tracks progress toward a measurable target for a subject
type GoalRecord struct {
	ID        string          `json:"id"`
	SubjectID string          `json:"subject_id"`
	Metric    string          `json:"metric"`
	Target    float64         `json:"target"`
	CreatedAt time.Time       `json:"created_at"`
	Progress  []ProgressPoint `json:"progress"`
}

// Intensity bounds for emotion and sensory records. The 1-5 scale is
// canonical; older 1-10 data must be rescaled before it reaches this package.
const (
	MinIntensity = 1
	MaxIntensity = 5
)

// positiveEmotions and negativeEmotions are the canonical label classes used
// by the analysis engines. Unknown labels are treated as neutral.
var positiveEmotions = map[string]bool{
	"happy":    true,
	"calm":     true,
	"content":  true,
	"excited":  true,
	"focused":  true,
	"proud":    true,
	"relaxed":  true,
	"engaged":  true,
}

var negativeEmotions = map[string]bool{
	"anxious":     true,
	"angry":       true,
	"sad":         true,
	"frustrated":  true,
	"overwhelmed": true,
	"scared":      true,
	"upset":       true,
	"distressed":  true,
}

// IsPositiveEmotion reports whether the label names a positive emotional state
func IsPositiveEmotion(label string) bool {
	return positiveEmotions[strings.ToLower(label)]
}

// IsNegativeEmotion reports whether the label names a negative emotional state
func IsNegativeEmotion(label string) bool {
	return negativeEmotions[strings.ToLower(label)]
}

// IsSeekingResponse reports whether a sensory response is seeking-like
func IsSeekingResponse(response string) bool {
	return strings.Contains(strings.ToLower(response), "seek")
}

// IsAvoidingResponse reports whether a sensory response is avoiding-like
func IsAvoidingResponse(response string) bool {
	return strings.Contains(strings.ToLower(response), "avoid")
}

// ValidateEmotion checks an emotion record at the storage boundary so the
// analysis engines can assume well-formed input.
func ValidateEmotion(rec *EmotionRecord) error {
	if rec.ID == "" {
		return fmt.Errorf("emotion record missing id")
	}
	if rec.SubjectID == "" {
		return fmt.Errorf("emotion record %s missing subject_id", rec.ID)
	}
	if rec.Label == "" {
		return fmt.Errorf("emotion record %s missing label", rec.ID)
	}
	if rec.Intensity < MinIntensity || rec.Intensity > MaxIntensity {
		return fmt.Errorf("emotion record %s intensity %d out of range [%d,%d]",
			rec.ID, rec.Intensity, MinIntensity, MaxIntensity)
	}
	if rec.Timestamp.IsZero() {
		return fmt.Errorf("emotion record %s missing timestamp", rec.ID)
	}
	return nil
}

// ValidateSensory checks a sensory record at the storage boundary
func ValidateSensory(rec *SensoryRecord) error {
	if rec.ID == "" {
		return fmt.Errorf("sensory record missing id")
	}
	if rec.SubjectID == "" {
		return fmt.Errorf("sensory record %s missing subject_id", rec.ID)
	}
	if rec.Modality == "" {
		return fmt.Errorf("sensory record %s missing modality", rec.ID)
	}
	if rec.Response == "" {
		return fmt.Errorf("sensory record %s missing response", rec.ID)
	}
	if rec.Intensity < MinIntensity || rec.Intensity > MaxIntensity {
		return fmt.Errorf("sensory record %s intensity %d out of range [%d,%d]",
			rec.ID, rec.Intensity, MinIntensity, MaxIntensity)
	}
	if rec.Timestamp.IsZero() {
		return fmt.Errorf("sensory record %s missing timestamp", rec.ID)
	}
	return nil
}

// ValidateSession checks a session record and all nested observations
func ValidateSession(rec *SessionRecord) error {
	if rec.ID == "" {
		return fmt.Errorf("session record missing id")
	}
	if rec.SubjectID == "" {
		return fmt.Errorf("session record %s missing subject_id", rec.ID)
	}
	if rec.Timestamp.IsZero() {
		return fmt.Errorf("session record %s missing timestamp", rec.ID)
	}
	for i := range rec.Emotions {
		if err := ValidateEmotion(&rec.Emotions[i]); err != nil {
			return fmt.Errorf("session %s: %w", rec.ID, err)
		}
	}
	for i := range rec.SensoryInputs {
		if err := ValidateSensory(&rec.SensoryInputs[i]); err != nil {
			return fmt.Errorf("session %s: %w", rec.ID, err)
		}
	}
	if rec.Environmental != nil {
		noise := rec.Environmental.RoomConditions.NoiseLevel
		if noise < MinIntensity || noise > MaxIntensity {
			return fmt.Errorf("session %s noise level %d out of range [%d,%d]",
				rec.ID, noise, MinIntensity, MaxIntensity)
		}
	}
	return nil
}

// ValidateGoal checks a goal record at the storage boundary
func ValidateGoal(rec *GoalRecord) error {
	if rec.ID == "" {
		return fmt.Errorf("goal record missing id")
	}
	if rec.SubjectID == "" {
		return fmt.Errorf("goal record %s missing subject_id", rec.ID)
	}
	if rec.Metric == "" {
		return fmt.Errorf("goal record %s missing metric", rec.ID)
	}
	for _, p := range rec.Progress {
		if p.Timestamp.IsZero() {
			return fmt.Errorf("goal record %s has progress point without timestamp", rec.ID)
		}
	}
	return nil
}
