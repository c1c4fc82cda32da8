package model

import (
	"encoding/json"
	"strconv"
)

// SoftwareRanking is one row of the per-PC install count ranking.
type SoftwareRanking struct {
	PCName  string `json:"pc_name"`
	Count   int    `json:"cnt"`
	Ranking int    `json:"ranking"`
}

// SoftwareCount is the scalar software count of one PC.
type SoftwareCount struct {
	PCName string `json:"pc_name"`
	Count  int    `json:"sw_count"`
}

// RollupKind distinguishes detail rows from rollup rows.
type RollupKind string

const (
	RollupDetail     RollupKind = "detail"
	RollupSubtotal   RollupKind = "subtotal"
	RollupGrandTotal RollupKind = "grand_total"
)

// LocationRollupRow is one row of the location PC count rollup. A nil Floor
// marks the grand total; a nil LocationName with a floor marks that floor's
// subtotal.
type LocationRollupRow struct {
	Floor        *int    `json:"floor"`
	LocationName *string `json:"location_name"`
	PCCount      int     `json:"pc_count"`
}

// Kind classifies the row by its null grouping columns.
func (r LocationRollupRow) Kind() RollupKind {
	switch {
	case r.Floor == nil:
		return RollupGrandTotal
	case r.LocationName == nil:
		return RollupSubtotal
	default:
		return RollupDetail
	}
}

// FloorLabel renders the floor column for display.
func (r LocationRollupRow) FloorLabel() string {
	if r.Floor == nil {
		return "Total"
	}
	return strconv.Itoa(*r.Floor)
}

// LocationLabel renders the location column for display.
func (r LocationRollupRow) LocationLabel() string {
	switch {
	case r.LocationName == nil:
		return "Sub Total"
	case *r.LocationName == "":
		return "General Area"
	default:
		return *r.LocationName
	}
}

// MarshalJSON adds the display labels and row kind next to the raw columns.
func (r LocationRollupRow) MarshalJSON() ([]byte, error) {
	type raw LocationRollupRow
	return json.Marshal(struct {
		raw
		Kind     RollupKind `json:"kind"`
		FloorGrp string     `json:"floor_grp"`
		LocGrp   string     `json:"loc_grp"`
	}{raw(r), r.Kind(), r.FloorLabel(), r.LocationLabel()})
}

// AnalyticsReport bundles the three analytics result sets.
type AnalyticsReport struct {
	Rankings       []SoftwareRanking   `json:"rankings"`
	Rollups        []LocationRollupRow `json:"rollups"`
	SoftwareCounts []SoftwareCount     `json:"sw_counts"`
}
