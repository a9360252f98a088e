package directory

import (
	"fmt"
	"sort"
	"strings"

	"github.com/tidwall/gjson"
)

// extractList returns the arrays found under the first wrapper key holding an
// array, or the payload itself when it is an array.
func extractList(raw []byte, keys ...string) ([]gjson.Result, error) {
	if !gjson.ValidBytes(raw) {
		return nil, fmt.Errorf("%w: invalid JSON", ErrDecode)
	}
	doc := gjson.ParseBytes(raw)
	if doc.IsObject() {
		for _, key := range keys {
			if v := doc.Get(gjson.Escape(key)); v.IsArray() {
				return v.Array(), nil
			}
		}
	}
	if doc.IsArray() {
		return doc.Array(), nil
	}
	return nil, fmt.Errorf("%w: expected a list or one of %v", ErrDecode, keys)
}

// present reports whether v carries a usable value: not missing, null, false or blank.
func present(v gjson.Result) bool {
	if !v.Exists() || v.Type == gjson.Null || v.Type == gjson.False {
		return false
	}
	return strings.TrimSpace(v.String()) != ""
}

// firstPresent returns the trimmed text of the first present field of item.
func firstPresent(item gjson.Result, fields ...string) (string, bool) {
	for _, f := range fields {
		if v := item.Get(gjson.Escape(f)); present(v) {
			return strings.TrimSpace(v.String()), true
		}
	}
	return "", false
}

// text returns the trimmed text of field, or "" when absent.
func text(item gjson.Result, field string) string {
	v := item.Get(gjson.Escape(field))
	if !v.Exists() || v.Type == gjson.Null {
		return ""
	}
	return strings.TrimSpace(v.String())
}

// NormalizeSpecialities extracts specialities sorted by name, case-insensitively.
// Records without a derivable code are dropped, as are repeats of a code
// already seen (compared case-insensitively).
func NormalizeSpecialities(raw []byte) ([]Speciality, error) {
	items, err := extractList(raw, "specialities", "items")
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(items))
	out := make([]Speciality, 0, len(items))
	for _, it := range items {
		code, ok := firstPresent(it, "id", "code", "value", "key")
		if !ok {
			continue
		}
		key := strings.ToUpper(code)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		name, ok := firstPresent(it, "name", "description", "label")
		if !ok {
			name = code
		}
		out = append(out, Speciality{Code: code, Name: name})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	return out, nil
}

var planContainers = []string{"plans", "planSummaries", "items", "data"}

// NormalizePlans extracts plan display names. Lists under every known wrapper
// key are concatenated; names are de-duplicated case-insensitively, keeping
// first-seen order and spelling.
func NormalizePlans(raw []byte) ([]string, error) {
	if !gjson.ValidBytes(raw) {
		return nil, fmt.Errorf("%w: invalid JSON", ErrDecode)
	}
	doc := gjson.ParseBytes(raw)

	var items []gjson.Result
	found := false
	if doc.IsObject() {
		for _, key := range planContainers {
			if v := doc.Get(gjson.Escape(key)); v.IsArray() {
				items = append(items, v.Array()...)
				found = true
			}
		}
	}
	if !found {
		if !doc.IsArray() {
			return nil, fmt.Errorf("%w: expected a list or one of %v", ErrDecode, planContainers)
		}
		items = doc.Array()
	}

	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, it := range items {
		name, ok := firstPresent(it, "name", "planName", "productName", "displayName")
		if !ok {
			continue
		}
		key := strings.ToLower(name)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, name)
	}
	return out, nil
}

// NormalizeHospitals extracts hospitals in upstream order.
func NormalizeHospitals(raw []byte) ([]Hospital, error) {
	items, err := extractList(raw, "hospitals")
	if err != nil {
		return nil, err
	}

	out := make([]Hospital, 0, len(items))
	for _, it := range items {
		if !it.IsObject() {
			continue
		}
		phone, _ := firstPresent(it, "phone", "phoneNo")
		out = append(out, Hospital{
			ID:     text(it, "id"),
			Name:   text(it, "name"),
			County: text(it, "county"),
			Phone:  phone,
		})
	}
	return out, nil
}

// NormalizeConsultants extracts consultants in upstream order.
func NormalizeConsultants(raw []byte) ([]Consultant, error) {
	items, err := extractList(raw, "consultants")
	if err != nil {
		return nil, err
	}

	out := make([]Consultant, 0, len(items))
	for _, it := range items {
		if !it.IsObject() {
			continue
		}
		c := Consultant{
			ID:                     text(it, "id"),
			Name:                   text(it, "name"),
			Participating:          participating(it.Get("participating")),
			SpecialityDescriptions: text(it, "speciality_descriptions"),
		}
		for _, h := range it.Get("hospitals").Array() {
			if h.IsObject() {
				h = h.Get("id")
			}
			if id := strings.TrimSpace(h.String()); id != "" && h.Type != gjson.Null {
				c.HospitalIDs = append(c.HospitalIDs, id)
			}
		}
		out = append(out, c)
	}
	return out, nil
}

func participating(v gjson.Result) string {
	switch v.Type {
	case gjson.True:
		return "Yes"
	case gjson.False:
		return "No"
	case gjson.Null:
		return ""
	default:
		return strings.TrimSpace(v.String())
	}
}
