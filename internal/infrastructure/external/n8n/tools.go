package n8n

import (
	"github.com/envisage-infotech/hr-interview-desk/internal/infrastructure/external/vapi"
)

// Webhook paths from the calendar flow. The availability and booking
// endpoints are invoked by the voice platform's tool-calling mechanism,
// never by this application directly; we only declare their schemas.
const (
	availabilityPath   = "calendar_availability"
	setAppointmentPath = "calendar_set_appointment"
)

// CalendarTools declares the webhook tools handed to the assistant at
// call-start time.
func CalendarTools(baseURL string) []vapi.ToolDefinition {
	base := baseURL
	if base == "" {
		return nil
	}

	return []vapi.ToolDefinition{
		{
			Type:        "webhook",
			Name:        "calendar_availability",
			Description: "Check if a given date is available on the HR interview calendar.",
			URL:         base + "/" + availabilityPath,
			Method:      "POST",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"date": map[string]any{
						"type":        "string",
						"description": "Preferred interview date in dd-mm-yyyy format.",
					},
				},
				"required": []string{"date"},
			},
		},
		{
			Type:        "webhook",
			Name:        "calendar_set_appointment",
			Description: "Create a 1-hour interview event on the HR calendar with candidate details.",
			URL:         base + "/" + setAppointmentPath,
			Method:      "POST",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"name": map[string]any{
						"type":        "string",
						"description": "Full name of the candidate.",
					},
					"phone": map[string]any{
						"type":        "string",
						"description": "Candidate mobile number with country code if possible.",
					},
					"date": map[string]any{
						"type":        "string",
						"description": "Interview date in dd-mm-yyyy format.",
					},
					"time": map[string]any{
						"type":        "string",
						"description": "Interview start time in 12-hour format, e.g. 2:30 PM.",
					},
					"role": map[string]any{
						"type":        "string",
						"description": "Role the candidate is applying for.",
					},
					"experience": map[string]any{
						"type":        "string",
						"description": "Years of experience in the role.",
					},
					"email": map[string]any{
						"type":        "string",
						"description": "Candidate email address.",
					},
				},
				"required": []string{"name", "phone", "date", "time", "role", "experience", "email"},
			},
		},
	}
}
