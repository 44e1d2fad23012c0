package entities

// SettingsKey is the storage key the settings blob lives under.
const SettingsKey = "assistantSettings"

// AssistantSettings is the operator-editable assistant configuration,
// persisted as a single JSON blob under SettingsKey.
type AssistantSettings struct {
	FirstMessage string `json:"firstMessage"`
	N8NBaseURL   string `json:"n8nBaseUrl"`
}

// DefaultAssistantSettings returns the settings used when nothing valid has
// been saved. Missing or invalid fields are substituted field-wise.
func DefaultAssistantSettings(defaultWebhookBase string) AssistantSettings {
	return AssistantSettings{
		FirstMessage: "Hi, this is HR from Envisage Infotech. How can I help you today?",
		N8NBaseURL:   defaultWebhookBase,
	}
}
