// Package model contains domain models passed between layers.
package model

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Unit is the glucose measurement unit declared by the remote profile.
type Unit int

const (
	// UnitMmolL is millimoles per litre.
	UnitMmolL Unit = iota
	// UnitMgdL is milligrams per decilitre.
	UnitMgdL
)

// String returns the conventional Nightscout spelling of the unit.
func (u Unit) String() string {
	if u == UnitMgdL {
		return "mg/dL"
	}
	return "mmol/L"
}

// MarshalJSON renders the unit by its conventional spelling so API consumers
// never see the internal enum value.
func (u Unit) MarshalJSON() ([]byte, error) {
	return json.Marshal(u.String())
}

// UnmarshalJSON accepts the conventional spellings, case-insensitively.
// Anything else maps to mmol/L, matching the ingestion default.
func (u *Unit) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if strings.EqualFold(s, "mg/dl") {
		*u = UnitMgdL
	} else {
		*u = UnitMmolL
	}
	return nil
}

// mg/dL per mmol/L, the conventional conversion factor.
const mgdlPerMmoll = 18.0182

// Quantity is a glucose-typed value carrying its unit.
type Quantity struct {
	Value float64 `json:"value"`
	Unit  Unit    `json:"unit"`
}

// MgdL returns the quantity expressed in mg/dL.
func (q Quantity) MgdL() float64 {
	if q.Unit == UnitMgdL {
		return q.Value
	}
	return q.Value * mgdlPerMmoll
}

// MmolL returns the quantity expressed in mmol/L.
func (q Quantity) MmolL() float64 {
	if q.Unit == UnitMmolL {
		return q.Value
	}
	return q.Value / mgdlPerMmoll
}

// String renders the quantity with its unit, e.g. "5.6 mmol/L".
func (q Quantity) String() string {
	return fmt.Sprintf("%g %s", q.Value, q.Unit)
}

// TimeValue is a schedule breakpoint: from TimeAsSeconds (seconds since local
// midnight, [0, 86400)) onward the schedule's value is Value, until superseded
// by the next breakpoint. Within one schedule, breakpoints are sorted
// ascending and unique by TimeAsSeconds.
type TimeValue[T any] struct {
	TimeAsSeconds int
	Value         T
}

// RemoteOverride is a selectable override a caregiver can activate remotely.
// The Name is the unique matching key within one profile generation.
type RemoteOverride struct {
	Name            string    `json:"name"`
	DurationMinutes float64   `json:"durationMinutes"`
	Percentage      float64   `json:"percentage"`
	Target          *Quantity `json:"target"`
}
