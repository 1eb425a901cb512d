package ingest

import (
	"strings"

	"github.com/compita-hub/compita-metrics-hub/internal/domain/metrics"
)

// ══════════════════════════════════════════════════════════════════════════════
// MAPPER - snapshot DTOs to domain datasets
// ══════════════════════════════════════════════════════════════════════════════

// Mapper converts snapshot file DTOs into the engine's input datasets.
type Mapper struct{}

// NewMapper creates a new Mapper instance.
func NewMapper() *Mapper {
	return &Mapper{}
}

// splitNameEmail peels a trailing "(email)" off a student name. The CSV
// parser upstream normally does this, but raw re-exports occasionally leave
// the combined form in place. An explicit email always wins over the
// embedded one.
func splitNameEmail(name, email string) (string, string) {
	open := strings.Index(name, "(")
	end := strings.Index(name, ")")
	if open >= 0 && end > open {
		if email == "" {
			email = strings.TrimSpace(name[open+1 : end])
		}
		name = strings.TrimSpace(name[:open])
	}
	return name, email
}

// CompletionDataset maps a gradebook file onto the completion dataset.
func (m *Mapper) CompletionDataset(file *GradebookFile) metrics.CompletionDataset {
	if file == nil {
		return metrics.CompletionDataset{}
	}

	students := make([]metrics.CompletionStudent, 0, len(file.Students))
	for _, dto := range file.Students {
		name, email := splitNameEmail(dto.Name, dto.Email)
		if name == "" {
			continue
		}
		students = append(students, metrics.CompletionStudent{
			Name:        name,
			Email:       email,
			Labs:        m.resources(dto.Labs),
			Assessments: m.resources(dto.Assessments),
		})
	}

	return metrics.CompletionDataset{Students: students}
}

// StudyDataset maps a study-history file onto the study dataset.
func (m *Mapper) StudyDataset(file *StudyHistoryFile) metrics.StudyDataset {
	if file == nil {
		return metrics.StudyDataset{}
	}

	students := make([]metrics.StudyStudent, 0, len(file.Students))
	for _, dto := range file.Students {
		name, email := splitNameEmail(dto.Name, dto.Email)
		if name == "" {
			continue
		}

		daily := make([]metrics.DailyStudyRecord, 0, len(dto.DailyStudy))
		for _, day := range dto.DailyStudy {
			daily = append(daily, metrics.DailyStudyRecord{
				DateLabel: day.Date,
				Seconds:   int(day.Seconds),
			})
		}

		students = append(students, metrics.StudyStudent{
			Name:       name,
			Email:      email,
			DailyStudy: daily,
		})
	}

	return metrics.StudyDataset{Students: students}
}

func (m *Mapper) resources(items []CompletionItemDTO) []metrics.ResourceRecord {
	records := make([]metrics.ResourceRecord, 0, len(items))
	for _, item := range items {
		records = append(records, metrics.ResourceRecord{
			Label:      item.Name,
			Completion: float64(item.Completion),
		})
	}
	return records
}
