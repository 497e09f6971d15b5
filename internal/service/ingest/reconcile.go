package ingest

import (
	"slices"

	"github.com/cmlabs-hris/attendance-normalizer/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-normalizer/internal/pkg/sheet"
)

// Reconcile folds a shared baseline into locally persisted employees. Local
// values win field by field; baseline months and detail fields only fill gaps.
// Any identifier in tombstones is dropped from both sides, so re-running the
// reconciliation can never bring a deleted employee back.
//
// Local employees keep their order; baseline-only employees follow in
// baseline order.
func Reconcile(local, baseline []employee.Employee, tombstones employee.Tombstones) []employee.Employee {
	base := make(map[string]employee.Employee, len(baseline))
	var baseOrder []string
	for _, b := range baseline {
		id := sheet.NormalizeIdentifier(b.ID)
		if id == "" || tombstones.Has(id) {
			continue
		}
		if _, dup := base[id]; !dup {
			baseOrder = append(baseOrder, id)
		}
		b = b.Clone()
		b.ID = id
		base[id] = b
	}

	seen := make(map[string]bool, len(local))
	out := make([]employee.Employee, 0, len(local)+len(baseOrder))
	for _, l := range local {
		id := sheet.NormalizeIdentifier(l.ID)
		if id == "" || tombstones.Has(id) || seen[id] {
			continue
		}
		seen[id] = true

		l = l.Clone()
		l.ID = id
		if b, ok := base[id]; ok {
			l = overlay(b, l)
		}
		out = append(out, l)
	}

	for _, id := range baseOrder {
		if !seen[id] {
			out = append(out, base[id])
		}
	}
	return out
}

// overlay puts local on top of baseline.
func overlay(baseline, local employee.Employee) employee.Employee {
	merged := local
	merged.Name = MergeField(baseline.Name, local.Name, sheet.IsBlankOrSentinel)
	merged.Department = MergeField(baseline.Department, local.Department, sheet.IsBlankOrSentinel)
	merged.Company = MergeField(baseline.Company, local.Company, sheet.IsBlankOrSentinel)

	merged.MonthlyData = make(map[string][]employee.DayRecord, len(baseline.MonthlyData)+len(local.MonthlyData))
	for ym, days := range baseline.MonthlyData {
		merged.MonthlyData[ym] = days
	}
	for ym, days := range local.MonthlyData {
		merged.MonthlyData[ym] = days
	}

	switch {
	case baseline.Details == nil:
	case local.Details == nil:
		merged.Details = baseline.Details
	default:
		d := *baseline.Details
		dst, src := d.Fields(), local.Details.Fields()
		for i := range dst {
			*dst[i] = MergeField(*dst[i], *src[i], sheet.IsBlankOrSentinel)
		}
		merged.Details = &d
	}

	if merged.Tags == nil {
		merged.Tags = baseline.Tags
	}
	merged.ReadNotificationKeys = slices.Clone(local.ReadNotificationKeys)
	for _, k := range baseline.ReadNotificationKeys {
		if !slices.Contains(merged.ReadNotificationKeys, k) {
			merged.ReadNotificationKeys = append(merged.ReadNotificationKeys, k)
		}
	}
	return merged
}
