// Package resolve matches user-typed speciality and plan filters against the
// values offered upstream.
package resolve

import (
	"fmt"
	"strings"

	"consultantpdf/internal/directory"
)

// UnknownSpecialityError is returned when input matches no speciality code or name.
type UnknownSpecialityError struct {
	Input string
	Known []directory.Speciality
}

func (e *UnknownSpecialityError) Error() string {
	return fmt.Sprintf("unknown speciality %q", e.Input)
}

// UnknownPlanError is returned when input matches no plan name.
type UnknownPlanError struct {
	Input string
	Known []string
}

func (e *UnknownPlanError) Error() string {
	return fmt.Sprintf("unknown plan %q", e.Input)
}

// SpecialityIndex looks specialities up by code or by name, case-insensitively.
type SpecialityIndex struct {
	specs  []directory.Speciality
	byCode map[string]directory.Speciality
	byName map[string]directory.Speciality
}

// NewSpecialityIndex indexes specs. When two records share a code or a name
// the first one wins.
func NewSpecialityIndex(specs []directory.Speciality) *SpecialityIndex {
	idx := &SpecialityIndex{
		specs:  specs,
		byCode: make(map[string]directory.Speciality, len(specs)),
		byName: make(map[string]directory.Speciality, len(specs)),
	}
	for _, s := range specs {
		code := strings.ToUpper(s.Code)
		if _, ok := idx.byCode[code]; !ok {
			idx.byCode[code] = s
		}
		name := strings.ToLower(s.Name)
		if _, ok := idx.byName[name]; !ok {
			idx.byName[name] = s
		}
	}
	return idx
}

// Lookup matches input against codes first, then names.
func (idx *SpecialityIndex) Lookup(input string) (directory.Speciality, error) {
	in := strings.TrimSpace(input)
	if s, ok := idx.byCode[strings.ToUpper(in)]; ok && in != "" {
		return s, nil
	}
	if s, ok := idx.byName[strings.ToLower(in)]; ok && in != "" {
		return s, nil
	}
	return directory.Speciality{}, &UnknownSpecialityError{Input: input, Known: idx.specs}
}

// ResolveSpeciality returns the speciality whose code equals input ignoring case,
// or failing that whose name does.
func ResolveSpeciality(input string, specs []directory.Speciality) (directory.Speciality, error) {
	return NewSpecialityIndex(specs).Lookup(input)
}

// ResolvePlan returns the upstream spelling of the plan equal to input ignoring
// case. Partial matches are not accepted.
func ResolvePlan(input string, plans []string) (string, error) {
	in := strings.TrimSpace(input)
	if in != "" {
		for _, p := range plans {
			if strings.EqualFold(p, in) {
				return p, nil
			}
		}
	}
	return "", &UnknownPlanError{Input: input, Known: plans}
}
