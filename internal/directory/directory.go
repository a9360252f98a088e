package directory

import (
	"context"
	"fmt"

	"consultantpdf/internal/resource"
)

// Directory fetches and normalizes the four upstream resources.
type Directory struct {
	fetcher *resource.Fetcher
	catalog *resource.Catalog
}

// New creates a Directory.
func New(fetcher *resource.Fetcher, catalog *resource.Catalog) *Directory {
	return &Directory{fetcher: fetcher, catalog: catalog}
}

// Specialities returns all specialities sorted by name.
func (d *Directory) Specialities(ctx context.Context) ([]Speciality, error) {
	res, err := d.fetcher.Fetch(ctx, d.catalog.Specialities())
	if err != nil {
		return nil, err
	}
	specs, err := NormalizeSpecialities(res.Payload)
	if err != nil {
		return nil, fmt.Errorf("specialities from %s: %w", res.Source, err)
	}
	return specs, nil
}

// Plans returns the plan names on offer from coverStart (YYYY-MM-DD).
func (d *Directory) Plans(ctx context.Context, coverStart string) ([]string, error) {
	res, err := d.fetcher.Fetch(ctx, d.catalog.Plans(coverStart))
	if err != nil {
		return nil, err
	}
	plans, err := NormalizePlans(res.Payload)
	if err != nil {
		return nil, fmt.Errorf("plans from %s: %w", res.Source, err)
	}
	return plans, nil
}

// Hospitals returns the approved hospitals.
func (d *Directory) Hospitals(ctx context.Context) ([]Hospital, error) {
	res, err := d.fetcher.Fetch(ctx, d.catalog.Hospitals())
	if err != nil {
		return nil, err
	}
	hospitals, err := NormalizeHospitals(res.Payload)
	if err != nil {
		return nil, fmt.Errorf("hospitals from %s: %w", res.Source, err)
	}
	return hospitals, nil
}

// Consultants returns the consultants upstream lists for a speciality code.
func (d *Directory) Consultants(ctx context.Context, code string) ([]Consultant, error) {
	res, err := d.fetcher.Fetch(ctx, d.catalog.Consultants(code))
	if err != nil {
		return nil, err
	}
	consultants, err := NormalizeConsultants(res.Payload)
	if err != nil {
		return nil, fmt.Errorf("consultants from %s: %w", res.Source, err)
	}
	return consultants, nil
}
