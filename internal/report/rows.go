// Package report joins consultants to hospitals and renders the result as a
// landscape PDF table.
package report

import (
	"regexp"
	"strings"

	"consultantpdf/internal/directory"
)

const unknown = "Unknown"

// Association is one hospital a consultant is attached to.
type Association struct {
	Name   string
	County string
	Phone  string
}

// String renders "name (county): phone", with N/A for a missing phone.
func (a Association) String() string {
	return a.Label() + " " + a.PhoneText()
}

// Label is the "name (county):" part of the association.
func (a Association) Label() string {
	return orUnknown(a.Name) + " (" + orUnknown(a.County) + "):"
}

// PhoneText is the phone number or N/A.
func (a Association) PhoneText() string {
	if p := strings.TrimSpace(a.Phone); p != "" {
		return p
	}
	return "N/A"
}

func orUnknown(s string) string {
	if s = strings.TrimSpace(s); s == "" {
		return unknown
	}
	return s
}

// Row is one table row.
type Row struct {
	ID                     string
	Name                   string
	Participating          string
	SpecialityDescriptions string
	Associations           []Association
}

// AssociationsText joins all associations one per line, or N/A when there are none.
func (r Row) AssociationsText() string {
	if len(r.Associations) == 0 {
		return "N/A"
	}
	parts := make([]string, len(r.Associations))
	for i, a := range r.Associations {
		parts[i] = a.String()
	}
	return strings.Join(parts, "\n")
}

// BuildRows joins each consultant to its hospitals. Hospital ids with no
// matching hospital are skipped. Row order follows consultants.
func BuildRows(consultants []directory.Consultant, hospitals []directory.Hospital) []Row {
	byID := make(map[string]directory.Hospital, len(hospitals))
	for _, h := range hospitals {
		if _, dup := byID[h.ID]; !dup {
			byID[h.ID] = h
		}
	}

	rows := make([]Row, 0, len(consultants))
	for _, c := range consultants {
		row := Row{
			ID:                     c.ID,
			Name:                   c.Name,
			Participating:          c.Participating,
			SpecialityDescriptions: c.SpecialityDescriptions,
		}
		for _, id := range c.HospitalIDs {
			h, ok := byID[id]
			if !ok {
				continue
			}
			row.Associations = append(row.Associations, Association{Name: h.Name, County: h.County, Phone: h.Phone})
		}
		rows = append(rows, row)
	}
	return rows
}

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lower-cases s and collapses every run of other characters to "_".
func Slugify(s string) string {
	slug := strings.Trim(nonSlug.ReplaceAllString(strings.ToLower(s), "_"), "_")
	if slug == "" {
		return "report"
	}
	return slug
}

// DefaultFilename is the output name used when no path is given.
func DefaultFilename(code, plan string) string {
	return "consultants_" + Slugify(code) + "_" + Slugify(plan) + ".pdf"
}
