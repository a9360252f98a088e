package resource

import (
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"consultantpdf/config"
)

// Logical resource names, used as metric labels.
const (
	Specialities = "specialities"
	Hospitals    = "hospitals"
	Plans        = "plans"
	Consultants  = "consultants"
)

// SpecialitiesKey is the cache key of the speciality list.
func SpecialitiesKey() string { return "specialities.json" }

// HospitalsKey is the cache key of the approved-hospitals list.
func HospitalsKey() string { return "approved-hospitals.json" }

// PlansKey is the cache key of the plan summary for one cover-start date (YYYY-MM-DD).
func PlansKey(coverStart string) string {
	return "plansummary_" + coverStart + ".json"
}

// ConsultantsKey is the cache key of the consultants for one speciality.
// Codes are compared upper-cased, so "derm" and "DERM" share an entry.
func ConsultantsKey(code string) string {
	return "consultants_" + strings.ToUpper(code) + ".json"
}

// Descriptor describes where one resource lives remotely, in the cache and on disk.
type Descriptor struct {
	Name   string
	Key    string
	Path   string
	Params url.Values
	MaxAge time.Duration
	// Fallbacks are tried in order when neither remote nor cache can serve.
	Fallbacks []string
}

// Catalog builds the Descriptor of each resource from configuration.
type Catalog struct {
	api         config.APIConfig
	maxAge      time.Duration
	fallbackDir string
}

// NewCatalog creates a Catalog from the application config.
func NewCatalog(cfg *config.Config) *Catalog {
	return &Catalog{
		api:         cfg.API,
		maxAge:      cfg.CacheMaxAge(),
		fallbackDir: cfg.Fallback.Dir,
	}
}

func (c *Catalog) fallbacks(names ...string) []string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		if n == "" {
			continue
		}
		out = append(out, filepath.Join(c.fallbackDir, n))
	}
	return out
}

// Specialities describes the speciality list.
func (c *Catalog) Specialities() Descriptor {
	return Descriptor{
		Name:      Specialities,
		Key:       SpecialitiesKey(),
		Path:      c.api.SpecialitiesPath,
		MaxAge:    c.maxAge,
		Fallbacks: c.fallbacks("specialities.json"),
	}
}

// Hospitals describes the approved-hospitals list.
func (c *Catalog) Hospitals() Descriptor {
	return Descriptor{
		Name:      Hospitals,
		Key:       HospitalsKey(),
		Path:      c.api.HospitalsPath,
		MaxAge:    c.maxAge,
		Fallbacks: c.fallbacks("approved-hospitals.json"),
	}
}

// Plans describes the plan summary valid from coverStart.
func (c *Catalog) Plans(coverStart string) Descriptor {
	return Descriptor{
		Name:      Plans,
		Key:       PlansKey(coverStart),
		Path:      c.api.PlanSummaryPath,
		Params:    url.Values{"coverStart": {coverStart}},
		MaxAge:    c.maxAge,
		Fallbacks: c.fallbacks("plansummary.json"),
	}
}

// Consultants describes the consultant search for one speciality code.
// County and hospital filters are sent empty.
func (c *Catalog) Consultants(code string) Descriptor {
	upper := strings.ToUpper(code)
	var legacy string
	if upper == "DERM" {
		legacy = "dermatologists.json"
	}
	return Descriptor{
		Name: Consultants,
		Key:  ConsultantsKey(code),
		Path: c.api.ConsultantsPath,
		Params: url.Values{
			"countyId":     {""},
			"hospitalId":   {""},
			"specialityId": {code},
		},
		MaxAge: c.maxAge,
		Fallbacks: c.fallbacks(
			"consultants_"+strings.ToLower(code)+".json",
			"consultants_"+upper+".json",
			legacy,
		),
	}
}
