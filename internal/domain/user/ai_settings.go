package user

// AISettings is the per-user assistant configuration stored as a JSON blob on the user row.
type AISettings struct {
	AIProvider          string                 `json:"aiProvider"`
	AutoApprove         bool                   `json:"autoApprove"`
	SmartSuggestions    bool                   `json:"smartSuggestions"`
	ProactiveMode       bool                   `json:"proactiveMode"`
	Permissions         map[string]string      `json:"permissions"`
	SuggestionFrequency int                    `json:"suggestionFrequency"`
	ConfidenceThreshold int                    `json:"confidenceThreshold"`
	PersonalityMode     string                 `json:"personalityMode"`
	Notifications       AINotificationSettings `json:"notifications"`
}

type AINotificationSettings struct {
	Suggestions  bool `json:"suggestions"`
	Insights     bool `json:"insights"`
	Reminders    bool `json:"reminders"`
	Achievements bool `json:"achievements"`
}

const (
	PermissionAsk    = "ask"
	PermissionAlways = "always"
	PermissionNever  = "never"
)

func DefaultAISettings() AISettings {
	return AISettings{
		AIProvider:       "auto",
		AutoApprove:      false,
		SmartSuggestions: true,
		ProactiveMode:    true,
		Permissions: map[string]string{
			"tasks":    PermissionAsk,
			"goals":    PermissionAsk,
			"habits":   PermissionAsk,
			"routines": PermissionAsk,
			"journal":  PermissionAsk,
		},
		SuggestionFrequency: 5,
		ConfidenceThreshold: 70,
		PersonalityMode:     "friendly",
		Notifications: AINotificationSettings{
			Suggestions:  true,
			Insights:     true,
			Reminders:    true,
			Achievements: true,
		},
	}
}
