// Package model defines the domain types shared across the assignment pipeline.
package model

import "time"

// Policy selects which region reference point drives the nearest-station match.
type Policy string

const (
	// PolicyCentroid matches against the geometric centroid of the region.
	PolicyCentroid Policy = "centroid"
	// PolicyRepPoint matches against the guaranteed-interior representative point.
	PolicyRepPoint Policy = "rep"
)

// Policies lists both reference-point policies in their canonical order.
var Policies = []Policy{PolicyCentroid, PolicyRepPoint}

// Region is one administrative area (si/gun/gu) with its two planar reference
// points in UTM-K meters. Regions are loaded once and never mutated.
type Region struct {
	Code      string `json:"code"`       // zero-padded SIGUNGU_CD
	ResidArea string `json:"resid_area"` // display/merge key, e.g. 서울특별시/강동구
	CentroidX float64
	CentroidY float64
	RepX      float64
	RepY      float64
}

// RefPoint returns the reference point for the given policy.
func (r Region) RefPoint(p Policy) (x, y float64) {
	if p == PolicyRepPoint {
		return r.RepX, r.RepY
	}
	return r.CentroidX, r.CentroidY
}

// Segment is one resolved validity period of a station: the station existed at
// this location from Start through End inclusive. After resolution, segments of
// the same station never overlap and lie within the analysis window.
type Segment struct {
	StationID int
	Name      string
	Start     time.Time
	End       time.Time
	Lat       float64
	Lon       float64
}

// Contains reports whether the calendar day d falls inside the segment.
func (s Segment) Contains(d time.Time) bool {
	return !d.Before(s.Start) && !d.After(s.End)
}

// Observation is one station-day measurement. Value is nil when the source row
// had no measurement; a nil value is never treated as zero.
type Observation struct {
	StationID int
	Name      string
	Date      time.Time
	Value     *float64
}

// Candidate is an observation enriched with the planar location of the segment
// that was active on the observation date. Candidates form the per-day pool for
// nearest-neighbor assignment.
type Candidate struct {
	Observation
	X float64
	Y float64
}

// Assignment is the nearest-station result for one region on one day under one
// policy. Rows are created once during the day loop and never mutated.
type Assignment struct {
	RegionCode string
	ResidArea  string
	Date       time.Time
	Policy     Policy
	StationID  int
	DistanceM  float64
	Value      float64
}

// Interval is a maximal run of consecutive assignment rows for one region and
// policy sharing the same station. Days counts assignment records in the run,
// not the calendar span: days with no eligible station produce no row at all.
type Interval struct {
	RegionCode string
	ResidArea  string
	Policy     Policy
	StationID  int
	Start      time.Time
	End        time.Time
	MeanDistM  float64
	Days       int
}

// MonthlyAggregate sums the assigned measurement per region, month, and policy.
type MonthlyAggregate struct {
	RegionCode string
	ResidArea  string
	YearMonth  string // YYYY-MM
	Policy     Policy
	ValueSum   float64
	Days       int
}

// RunStatus represents the state of a pipeline run.
type RunStatus string

const (
	RunStatusRunning  RunStatus = "running"
	RunStatusComplete RunStatus = "complete"
	RunStatusFailed   RunStatus = "failed"
)

// Run records one execution of the assignment pipeline.
type Run struct {
	ID          string    `json:"id"`
	WindowStart time.Time `json:"window_start"`
	WindowEnd   time.Time `json:"window_end"`
	Status      RunStatus `json:"status"`
	Regions     int       `json:"regions"`
	Assignments int       `json:"assignments"`
	Intervals   int       `json:"intervals"`
	Error       string    `json:"error,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
