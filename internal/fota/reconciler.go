package fota

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/DevangRnd/fota-backend/internal/models"
)

// Column names expected in an import sheet.
const (
	ColDeviceID  = "DeviceId"
	ColVendor    = "Vendor"
	ColDistrict  = "District"
	ColBlock     = "Block"
	ColPanchayat = "Panchayat"
)

// Rejection reasons.
const (
	ReasonMissingFields = "missing required fields"
	ReasonExists        = "device already exists"
	reasonAddFailed     = "failed to add device: "

	// UnknownDeviceID stands in for rows that carry no DeviceId.
	UnknownDeviceID = "unknown"

	// NoteVendorListStale is attached when devices were created but the
	// vendor's device list could not be extended.
	NoteVendorListStale = "vendor device list not updated"
)

// RawRow is one spreadsheet row keyed by header name.
type RawRow map[string]string

// Get returns the trimmed value for a column. Header matching falls back to
// case-insensitive comparison so "deviceid" and "DeviceId" both resolve.
func (r RawRow) Get(col string) string {
	if v, ok := r[col]; ok {
		return strings.TrimSpace(v)
	}
	for k, v := range r {
		if strings.EqualFold(strings.TrimSpace(k), col) {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

// Rejection is a row that was not imported.
type Rejection struct {
	DeviceID string `json:"deviceId"`
	Reason   string `json:"reason"`
}

func (r Rejection) String() string {
	return r.DeviceID + ": " + r.Reason
}

// Outcome classifies an import.
type Outcome int

const (
	OutcomeCreated Outcome = iota // nothing rejected
	OutcomePartial                // some accepted, some rejected
	OutcomeFailed                 // nothing accepted
)

// ImportResult is the per-row report of a Reconcile call.
type ImportResult struct {
	Accepted []string
	Rejected []Rejection
	Notes    []string
}

// Outcome derives the overall classification from the row lists.
func (r ImportResult) Outcome() Outcome {
	switch {
	case len(r.Rejected) == 0:
		return OutcomeCreated
	case len(r.Accepted) > 0:
		return OutcomePartial
	default:
		return OutcomeFailed
	}
}

// Message is the human readable summary for the outcome.
func (r ImportResult) Message() string {
	switch r.Outcome() {
	case OutcomePartial:
		return "Partial success"
	case OutcomeFailed:
		return "Failed to add devices"
	default:
		return "All devices added successfully"
	}
}

// Errors renders rejections as "<deviceId>: <reason>" lines.
func (r ImportResult) Errors() []string {
	out := make([]string, 0, len(r.Rejected))
	for _, rej := range r.Rejected {
		out = append(out, rej.String())
	}
	return out
}

// Reconciler merges imported rows into the device registry.
type Reconciler struct {
	store Store
	now   func() time.Time
}

// NewReconciler creates a Reconciler over store.
func NewReconciler(store Store) *Reconciler {
	return &Reconciler{store: store, now: time.Now}
}

type deviceFields struct {
	deviceID, vendor, district, block, panchayat string
}

// extract pulls the required columns. Vendor is only required without a scope.
func extract(row RawRow, scoped bool) (deviceFields, bool) {
	f := deviceFields{
		deviceID:  row.Get(ColDeviceID),
		district:  row.Get(ColDistrict),
		block:     row.Get(ColBlock),
		panchayat: row.Get(ColPanchayat),
	}
	ok := f.deviceID != "" && f.district != "" && f.block != "" && f.panchayat != ""
	if !scoped {
		f.vendor = row.Get(ColVendor)
		ok = ok && f.vendor != ""
	}
	return f, ok
}

// Reconcile processes rows in order. Each row is accepted or rejected on its
// own; no row aborts the batch. With a non-empty vendorID every created device
// is appended to that vendor's device list in one batch after the last row.
func (r *Reconciler) Reconcile(ctx context.Context, rows []RawRow, vendorID string) ImportResult {
	scoped := vendorID != ""
	result := ImportResult{
		Accepted: make([]string, 0, len(rows)),
		Rejected: []Rejection{},
		Notes:    []string{},
	}

	for _, row := range rows {
		f, ok := extract(row, scoped)
		if !ok {
			id := f.deviceID
			if id == "" {
				id = UnknownDeviceID
			}
			result.Rejected = append(result.Rejected, Rejection{DeviceID: id, Reason: ReasonMissingFields})
			continue
		}

		exists, err := r.store.DeviceExists(ctx, f.deviceID)
		if err != nil {
			result.Rejected = append(result.Rejected, Rejection{DeviceID: f.deviceID, Reason: reasonAddFailed + err.Error()})
			continue
		}
		if exists {
			result.Rejected = append(result.Rejected, Rejection{DeviceID: f.deviceID, Reason: ReasonExists})
			continue
		}

		vendor := f.vendor
		if scoped {
			vendor = vendorID
		}
		device := &models.Device{
			DeviceID:   f.deviceID,
			Vendor:     vendor,
			District:   f.district,
			Block:      f.block,
			Panchayat:  f.panchayat,
			UploadedOn: r.now(),
		}
		if err := r.store.CreateDevice(ctx, device); err != nil {
			result.Rejected = append(result.Rejected, Rejection{DeviceID: f.deviceID, Reason: reasonAddFailed + err.Error()})
			continue
		}
		result.Accepted = append(result.Accepted, f.deviceID)
	}

	if scoped && len(result.Accepted) > 0 {
		if err := r.store.AppendVendorDevices(ctx, vendorID, result.Accepted); err != nil {
			result.Notes = append(result.Notes, fmt.Sprintf("%s: %v", NoteVendorListStale, err))
		}
	}
	return result
}
