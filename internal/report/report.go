// Package report aggregates a user's stock entries into per-product summaries.
//
// Summaries are always computed from the current ledger and the current
// reference weights; nothing here is cached or persisted.
package report

import (
	"sort"

	"go-stock-ledger/internal/model"

	"github.com/google/uuid"
)

// Summary describes the units of one product bought from one manufacturer.
// MismatchCount is per product: every manufacturer group of the same product
// carries the same value.
type Summary struct {
	ProductID        uuid.UUID  `json:"product_id"`
	ProductTitle     string     `json:"product_title"`
	ProductSlug      string     `json:"product_slug"`
	Photo            string     `json:"photo,omitempty"`
	ManufacturerID   *uuid.UUID `json:"manufacturer_id"`
	ManufacturerName string     `json:"manufacturer_name,omitempty"`
	UnitCount        int        `json:"unit_count"`
	TotalWeight      float64    `json:"total_weight"`
	MismatchCount    int        `json:"mismatch_count"`
}

// Report is the ordered list of summaries. A nil *Report means the user
// has not tracked any stock yet.
type Report struct {
	Summaries []Summary `json:"summaries"`
}

// TotalUnits sums UnitCount over all groups
func (r *Report) TotalUnits() int {
	if r == nil {
		return 0
	}
	n := 0
	for _, s := range r.Summaries {
		n += s.UnitCount
	}
	return n
}

type groupKey struct {
	product      uuid.UUID
	manufacturer uuid.UUID // uuid.Nil when the entry has no manufacturer
}

// Build aggregates entries. products must contain every product referenced
// by entries; entries of unknown products are skipped. Companies are looked up
// for display names only.
//
// A unit is a mismatch when its weight differs from the product's reference
// weight under exact float comparison. No tolerance is applied, so weights
// that differ only by rounding are reported as mismatches.
func Build(entries []model.StockEntry, products map[uuid.UUID]model.Product, companies map[uuid.UUID]model.Company) *Report {
	if len(entries) == 0 {
		return nil
	}

	// one pass over the ungrouped set, shared by every manufacturer group
	mismatches := make(map[uuid.UUID]int)
	for _, e := range entries {
		p, ok := products[e.ProductID]
		if !ok {
			continue
		}
		if e.Weight != p.RefWeight {
			mismatches[e.ProductID]++
		}
	}

	groups := make(map[groupKey]*Summary)
	for _, e := range entries {
		p, ok := products[e.ProductID]
		if !ok {
			continue
		}
		key := groupKey{product: e.ProductID}
		if e.CompanyID != nil {
			key.manufacturer = *e.CompanyID
		}

		s, ok := groups[key]
		if !ok {
			s = &Summary{
				ProductID:     p.ID,
				ProductTitle:  p.Title,
				ProductSlug:   p.Slug,
				Photo:         p.Photo,
				MismatchCount: mismatches[e.ProductID],
			}
			if e.CompanyID != nil {
				id := *e.CompanyID
				s.ManufacturerID = &id
				if c, ok := companies[id]; ok {
					s.ManufacturerName = c.Name
				}
			}
			groups[key] = s
		}
		s.UnitCount++
		s.TotalWeight += e.Weight
	}

	summaries := make([]Summary, 0, len(groups))
	for _, s := range groups {
		summaries = append(summaries, *s)
	}
	sort.Slice(summaries, func(i, j int) bool {
		a, b := summaries[i], summaries[j]
		if a.ProductTitle != b.ProductTitle {
			return a.ProductTitle < b.ProductTitle
		}
		if a.ManufacturerName != b.ManufacturerName {
			return a.ManufacturerName < b.ManufacturerName
		}
		return manufacturerKey(a) < manufacturerKey(b)
	})

	return &Report{Summaries: summaries}
}

func manufacturerKey(s Summary) string {
	if s.ManufacturerID == nil {
		return ""
	}
	return s.ManufacturerID.String()
}
