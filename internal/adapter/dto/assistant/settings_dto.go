package assistant

// UpdateSettingsRequest replaces the operator-editable assistant
// settings. Blank fields fall back to the built-in defaults.
type UpdateSettingsRequest struct {
	FirstMessage string `json:"firstMessage,omitempty"`
	N8NBaseURL   string `json:"n8nBaseUrl,omitempty"`
}
