package models

import "strings"

// ValidationStatus is the verdict of comparing an expected record with live state
type ValidationStatus string

const (
	StatusCorrect   ValidationStatus = "Correct"
	StatusIncorrect ValidationStatus = "Incorrect"
	StatusMissing   ValidationStatus = "Missing"
)

// AllStatuses lists every status in display order
func AllStatuses() []ValidationStatus {
	return []ValidationStatus{StatusCorrect, StatusIncorrect, StatusMissing}
}

// ParseValidationStatus accepts a status name case-insensitively
func ParseValidationStatus(s string) (ValidationStatus, error) {
	for _, status := range AllStatuses() {
		if strings.EqualFold(strings.TrimSpace(s), string(status)) {
			return status, nil
		}
	}
	return "", &InputValidationError{
		InputType: "status filter",
		Value:     s,
		Expected:  "Correct, Incorrect or Missing",
	}
}

// ParseValidationStatuses parses a filter list; an empty list selects every status
func ParseValidationStatuses(values []string) ([]ValidationStatus, error) {
	if len(values) == 0 {
		return AllStatuses(), nil
	}
	statuses := make([]ValidationStatus, 0, len(values))
	for _, v := range values {
		status, err := ParseValidationStatus(v)
		if err != nil {
			return nil, err
		}
		statuses = append(statuses, status)
	}
	return statuses, nil
}

// RegionSummary counts validation verdicts for one region. Accessible is
// false when the region could not be queried at all.
type RegionSummary struct {
	Correct    int  `json:"correct"`
	Incorrect  int  `json:"incorrect"`
	Missing    int  `json:"missing"`
	Accessible bool `json:"accessible"`
}

// Add counts one verdict
func (s *RegionSummary) Add(status ValidationStatus) {
	switch status {
	case StatusCorrect:
		s.Correct++
	case StatusIncorrect:
		s.Incorrect++
	case StatusMissing:
		s.Missing++
	}
}
