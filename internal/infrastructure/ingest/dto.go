// Package ingest decodes the exported snapshot files (gradebook and study
// history JSON) into the engine's input datasets. It is the anti-corruption
// layer between the export pipeline's loose JSON and the domain types.
package ingest

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/compita-hub/compita-metrics-hub/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// SNAPSHOT FILE DTOs
// ══════════════════════════════════════════════════════════════════════════════

// GradebookFile is the top-level shape of a classgradebook JSON export.
// Metadata blocks the engine does not consume are ignored on decode.
type GradebookFile struct {
	Students []GradebookStudentDTO `json:"students"`
}

// GradebookStudentDTO is one student row of the gradebook export. The export
// also carries lessons, fact sheets, and videos; only labs and assessments
// feed the metrics pipeline.
type GradebookStudentDTO struct {
	Name        string              `json:"name"`
	Email       string              `json:"email"`
	Labs        []CompletionItemDTO `json:"labs"`
	Assessments []CompletionItemDTO `json:"assessments"`
}

// CompletionItemDTO is one lab or assessment cell.
type CompletionItemDTO struct {
	Name       string       `json:"name"`
	Completion FlexFraction `json:"completion"`
}

// StudyHistoryFile is the top-level shape of a studyhistory JSON export.
type StudyHistoryFile struct {
	Students []StudyStudentDTO `json:"students"`
}

// StudyStudentDTO is one student row of the study-history export.
type StudyStudentDTO struct {
	Name       string          `json:"name"`
	Email      string          `json:"email"`
	DailyStudy []DailyEntryDTO `json:"daily_study"`
}

// DailyEntryDTO is one day cell of the study-history export.
type DailyEntryDTO struct {
	Date    string      `json:"date"`
	Seconds FlexSeconds `json:"study_time_seconds"`
}

// ══════════════════════════════════════════════════════════════════════════════
// FLEXIBLE SCALARS
// ══════════════════════════════════════════════════════════════════════════════

// FlexFraction decodes a completion fraction that older exports sometimes
// serialize as a string, with or without a percent sign ("85%" means 0.85).
// Unreadable values decode to 0 rather than failing the file.
type FlexFraction float64

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexFraction) UnmarshalJSON(data []byte) error {
	var num float64
	if err := json.Unmarshal(data, &num); err == nil {
		*f = FlexFraction(num)
		return nil
	}

	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		*f = 0
		return nil
	}

	str = strings.TrimSpace(str)
	percent := strings.HasSuffix(str, "%")
	str = strings.TrimSuffix(str, "%")

	val, err := strconv.ParseFloat(strings.TrimSpace(str), 64)
	if err != nil {
		*f = 0
		return nil
	}
	if percent {
		val /= 100
	}
	*f = FlexFraction(val)
	return nil
}

// FlexSeconds decodes a seconds value that older exports serialize as a
// duration string ("1h 20m 30s") instead of a number. Unreadable values
// decode to 0 rather than failing the file.
type FlexSeconds int

// UnmarshalJSON implements json.Unmarshaler.
func (s *FlexSeconds) UnmarshalJSON(data []byte) error {
	var num int
	if err := json.Unmarshal(data, &num); err == nil {
		*s = FlexSeconds(num)
		return nil
	}

	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		*s = 0
		return nil
	}

	*s = FlexSeconds(timeutil.ParseDurationLabel(str))
	return nil
}
