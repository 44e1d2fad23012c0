package records

import (
	"time"

	"github.com/envisage-infotech/hr-interview-desk/internal/domain/entities"
)

// fallbackRecords is the built-in sample set shown when the very first
// load fails, so the dashboard is never blank. Later failures keep the
// last good data instead.
func fallbackRecords() []entities.CallRecord {
	ended1 := time.Date(2024, 1, 15, 10, 34, 0, 0, time.UTC)
	ended2 := time.Date(2024, 1, 14, 14, 18, 0, 0, time.UTC)

	return []entities.CallRecord{
		{
			ID:            "sample-1",
			CallType:      entities.CallTypeInbound,
			CallStatus:    entities.CallStatusCompleted,
			StartedAt:     time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC),
			EndedAt:       &ended1,
			Duration:      "4:00",
			CandidateName: "John Smith",
			PhoneNumber:   "+1 (555) 987-6543",
			Position:      "Full Stack Developer",
			Experience:    "3 years",
		},
		{
			ID:            "sample-2",
			CallType:      entities.CallTypeInbound,
			CallStatus:    entities.CallStatusCompleted,
			StartedAt:     time.Date(2024, 1, 14, 14, 15, 0, 0, time.UTC),
			EndedAt:       &ended2,
			Duration:      "3:00",
			CandidateName: "Emily Davis",
			PhoneNumber:   "+1 (555) 456-7890",
			Position:      "UI/UX Designer",
			Experience:    "2 years",
		},
		{
			ID:            "sample-3",
			CallType:      entities.CallTypeOutbound,
			CallStatus:    entities.CallStatusPending,
			StartedAt:     time.Date(2024, 1, 13, 11, 0, 0, 0, time.UTC),
			Duration:      "Ongoing",
			CandidateName: "Michael Johnson",
			PhoneNumber:   "+1 (555) 321-0987",
			Position:      "Backend Developer",
			Experience:    "4 years",
		},
	}
}
