// Package profile ingests the remote clinical profile feed into the schedule
// store and the shared configuration slots.
package profile

// TimeValueRaw is one schedule breakpoint as carried by the remote profile.
type TimeValueRaw struct {
	TimeAsSeconds int     `json:"timeAsSeconds"`
	Value         float64 `json:"value"`
}

// OverrideRaw is one selectable override definition as carried by the remote
// profile. Every field except the name may be absent.
type OverrideRaw struct {
	Name       string   `json:"name"`
	Duration   *float64 `json:"duration,omitempty"`   // minutes
	Percentage *float64 `json:"percentage,omitempty"` // 1.0 == 100%
	Target     *float64 `json:"target,omitempty"`
}

// StoreData is one named profile inside the payload's store map.
type StoreData struct {
	Units     string         `json:"units"`
	Timezone  string         `json:"timezone"`
	Sens      []TimeValueRaw `json:"sens"`
	Basal     []TimeValueRaw `json:"basal"`
	CarbRatio []TimeValueRaw `json:"carbratio"`
	// The target schedules are optional; a missing array yields an empty
	// schedule, not an error.
	TargetLow  []TimeValueRaw `json:"target_low,omitempty"`
	TargetHigh []TimeValueRaw `json:"target_high,omitempty"`
	Overrides  []OverrideRaw  `json:"overrides,omitempty"`
}

// Payload is the remote profile feed as fetched from the site.
type Payload struct {
	Store          map[string]StoreData `json:"store"`
	DefaultProfile string               `json:"defaultProfile"`
	TrioOverrides  []OverrideRaw        `json:"trioOverrides,omitempty"`

	// Device/push configuration forwarded to the shared configuration slots.
	DeviceToken      *string `json:"deviceToken,omitempty"`
	BundleIdentifier *string `json:"bundleIdentifier,omitempty"`
	IsAPNSProduction *bool   `json:"isAPNSProduction,omitempty"`
	TeamID           *string `json:"teamID,omitempty"`
}
