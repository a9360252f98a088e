// Package directory turns raw consultant-directory payloads into typed records.
//
// Upstream shapes vary: a list may be wrapped under one of several keys or be
// the payload itself, and record fields go by several names. The Normalize
// functions are pure so each shape can be tested without the fetch chain.
package directory

import "errors"

// ErrDecode is returned when a payload holds no recognisable list.
var ErrDecode = errors.New("unrecognised payload shape")

// Speciality is a medical speciality. Code is unique within one fetch.
type Speciality struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// Hospital is an approved hospital. ID is the JSON text of the upstream id,
// so numeric and string ids join alike.
type Hospital struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	County string `json:"county"`
	Phone  string `json:"phone"`
}

// Consultant is one consultant returned for a speciality search.
type Consultant struct {
	ID                     string   `json:"id"`
	Name                   string   `json:"name"`
	Participating          string   `json:"participating"`
	SpecialityDescriptions string   `json:"speciality_descriptions"`
	HospitalIDs            []string `json:"hospitals"`
}
