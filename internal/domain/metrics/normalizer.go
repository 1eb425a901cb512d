package metrics

import (
	"sort"
	"strings"
)

// ══════════════════════════════════════════════════════════════════════════════
// RECORD NORMALIZER
// ══════════════════════════════════════════════════════════════════════════════

// NormalizeName cleans a student identity key. The exported snapshots carry
// stray surrounding whitespace on names, and the two sources disagree on
// it, so the trimmed name is the join key.
func NormalizeName(name string) string {
	return strings.TrimSpace(name)
}

// RecordNormalizer merges the two source datasets into one normalized
// per-student record list. The population is the union of identities: a
// student present in only one source still gets a record, with empty
// containers for the other source.
type RecordNormalizer struct{}

// NewRecordNormalizer creates a normalizer.
func NewRecordNormalizer() *RecordNormalizer {
	return &RecordNormalizer{}
}

// Normalize builds the population for one snapshot, sorted by normalized
// name so downstream output ordering is deterministic. The completion
// dataset is authoritative for the email; the study dataset only fills it
// in for students the completion dataset does not know.
func (n *RecordNormalizer) Normalize(snap Snapshot) []*StudentRecord {
	byName := make(map[string]*StudentRecord)

	seed := func(name, email string) *StudentRecord {
		rec, ok := byName[name]
		if !ok {
			rec = &StudentRecord{Name: name}
			byName[name] = rec
		}
		if rec.Email == "" {
			rec.Email = email
		}
		return rec
	}

	for _, s := range snap.Completion.Students {
		rec := seed(NormalizeName(s.Name), s.Email)
		rec.Labs = append(rec.Labs, s.Labs...)
		rec.Assessments = append(rec.Assessments, s.Assessments...)
	}

	for _, s := range snap.Study.Students {
		rec := seed(NormalizeName(s.Name), s.Email)
		rec.DailyStudy = append(rec.DailyStudy, s.DailyStudy...)
	}

	records := make([]*StudentRecord, 0, len(byName))
	for _, rec := range byName {
		records = append(records, rec)
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].Name < records[j].Name
	})

	return records
}
