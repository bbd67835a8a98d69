package models

import "time"

// RunStatus is the lifecycle state of an uploaded run.
type RunStatus string

const (
	RunStatusPending   RunStatus = "PENDING"
	RunStatusFinalized RunStatus = "FINALIZED"
	RunStatusRejected  RunStatus = "REJECTED"
)

// Terminal reports whether the status can no longer change.
func (s RunStatus) Terminal() bool {
	return s == RunStatusFinalized || s == RunStatusRejected
}

// RejectReason is the validation failure recorded on a rejected run.
type RejectReason string

const (
	RejectNone                 RejectReason = ""
	RejectInsufficientDistance RejectReason = "INSUFFICIENT_DISTANCE"
	RejectInsufficientDuration RejectReason = "INSUFFICIENT_DURATION"
	RejectUnrealisticSpeed     RejectReason = "UNREALISTIC_SPEED"
)

// GPSPoint is a single raw sample from the client. Untrusted: points may
// arrive unordered or with duplicate timestamps.
type GPSPoint struct {
	Lat  float64   `json:"lat" binding:"gte=-90,lte=90"`
	Lng  float64   `json:"lng" binding:"gte=-180,lte=180"`
	Time time.Time `json:"time" binding:"required"`
}

// RunMetrics holds the authoritative movement metrics recomputed on the
// server. Client-claimed values are never trusted.
type RunMetrics struct {
	DistanceM     float64 `json:"distance_m" db:"distance_m"`
	DurationS     float64 `json:"duration_s" db:"duration_s"`
	AvgPaceSPerKm float64 `json:"avg_pace_s_per_km" db:"avg_pace_s_per_km"`
	MaxSpeedMS    float64 `json:"max_speed_m_s" db:"max_speed_m_s"`
}

// Run is one uploaded activity. Created PENDING with only the raw trace;
// the finalizer transitions it exactly once to FINALIZED or REJECTED.
type Run struct {
	ID           string       `json:"id" db:"id"`
	UserID       string       `json:"userId" db:"user_id"`
	Status       RunStatus    `json:"status" db:"status"`
	RejectReason RejectReason `json:"rejectReason,omitempty" db:"reject_reason"`
	Metrics      *RunMetrics  `json:"metrics,omitempty"`
	RawPoints    []GPSPoint   `json:"-"`
	CreatedAt    time.Time    `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time    `json:"updatedAt" db:"updated_at"`
}

// RunUploadRequest is the payload for creating a run.
type RunUploadRequest struct {
	Points []GPSPoint `json:"points" binding:"required,min=1,dive"`
}

// FinalizeResult is what the finalize operation returns to callers,
// whether it just ran or the run was already terminal.
type FinalizeResult struct {
	RunID        string       `json:"runId"`
	Status       RunStatus    `json:"status"`
	Metrics      *RunMetrics  `json:"metrics,omitempty"`
	RejectReason RejectReason `json:"rejectReason,omitempty"`
}
