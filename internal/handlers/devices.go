package handlers

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/DevangRnd/fota-backend/internal/fota"
	"github.com/DevangRnd/fota-backend/internal/tabular"
	"github.com/DevangRnd/fota-backend/internal/websocket"
	"github.com/gorilla/mux"
)

// importStatus maps an import outcome onto the response status
func importStatus(o fota.Outcome) int {
	switch o {
	case fota.OutcomePartial:
		return http.StatusMultiStatus
	case fota.OutcomeFailed:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusCreated
	}
}

// addDevices imports devices whose rows name their own vendor
func (r *Router) addDevices(w http.ResponseWriter, req *http.Request) {
	r.importDevices(w, req, "")
}

// addDevicesForVendor imports devices into one vendor's device list
func (r *Router) addDevicesForVendor(w http.ResponseWriter, req *http.Request) {
	vendorID := mux.Vars(req)["vendorId"]
	if _, err := r.store.GetVendor(req.Context(), vendorID); err != nil {
		respondDomainError(w, err, "Failed to load vendor")
		return
	}
	r.importDevices(w, req, vendorID)
}

func (r *Router) importDevices(w http.ResponseWriter, req *http.Request, vendorID string) {
	maxBytes := r.cfg.Firmware.MaxUploadMB << 20
	req.Body = http.MaxBytesReader(w, req.Body, maxBytes)
	if err := req.ParseMultipartForm(maxBytes); err != nil {
		respondError(w, http.StatusBadRequest, "File is required")
		return
	}
	file, header, err := req.FormFile("file")
	if err != nil {
		respondError(w, http.StatusBadRequest, "File is required")
		return
	}
	defer file.Close()

	rows, err := tabular.ReadRows(header.Filename, file)
	if err != nil {
		log.Printf("⚠️  Import parse failed for %s: %v", header.Filename, err)
		respondError(w, http.StatusBadRequest, "Failed to parse the file. Please upload a valid Excel or CSV file.")
		return
	}

	result := r.reconciler.Reconcile(req.Context(), rows, vendorID)
	status := importStatus(result.Outcome())

	if _, err := r.store.SaveImportReport(req.Context(), header.Filename, vendorID, status, result); err != nil {
		log.Printf("⚠️  Failed to save import report: %v", err)
	}
	for _, note := range result.Notes {
		log.Printf("⚠️  Import %s: %s", header.Filename, note)
	}
	log.Printf("📥 Import %s: %d added, %d rejected", header.Filename, len(result.Accepted), len(result.Rejected))

	if len(result.Accepted) > 0 {
		r.publish(websocket.Event{Type: websocket.EventDevicesImported, DeviceIDs: result.Accepted, VendorID: vendorID})
	}

	respondJSON(w, status, map[string]interface{}{
		"addedDevices": result.Accepted,
		"errors":       result.Errors(),
		"notes":        result.Notes,
		"message":      result.Message(),
	})
}

// listDevices returns every registered device
func (r *Router) listDevices(w http.ResponseWriter, req *http.Request) {
	devices, err := r.store.ListDevices(req.Context())
	if err != nil {
		log.Printf("Error retrieving devices: %v", err)
		respondError(w, http.StatusInternalServerError, "Failed to retrieve devices")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"allDevices": devices})
}

// listVendorDevices returns the devices on a vendor's device list
func (r *Router) listVendorDevices(w http.ResponseWriter, req *http.Request) {
	vendorID := mux.Vars(req)["vendorId"]
	if _, err := r.store.GetVendor(req.Context(), vendorID); err != nil {
		respondDomainError(w, err, "Failed to load vendor")
		return
	}

	devices, err := r.store.DevicesByVendor(req.Context(), vendorID)
	if err != nil {
		respondDomainError(w, err, "Failed to retrieve devices")
		return
	}
	if len(devices) == 0 {
		respondJSON(w, http.StatusOK, map[string]interface{}{
			"devices": devices,
			"message": "No devices found for this vendor",
		})
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"devices": devices})
}

// InitiateUpdateRequest is the body of POST /initiate-update
type InitiateUpdateRequest struct {
	DeviceIDs    []string `json:"deviceIds"`
	FirmwareName string   `json:"firmwareName"`
}

// initiateUpdate marks a cohort of devices pending against a firmware
func (r *Router) initiateUpdate(w http.ResponseWriter, req *http.Request) {
	var body InitiateUpdateRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	n, err := r.dispatcher.InitiateUpdate(req.Context(), body.DeviceIDs, body.FirmwareName)
	if err != nil {
		respondDomainError(w, err, "Failed to initiate update")
		return
	}

	log.Printf("🚀 Update to %s initiated for %d device(s)", body.FirmwareName, n)
	r.publish(websocket.Event{Type: websocket.EventUpdateInitiated, DeviceIDs: body.DeviceIDs, FirmwareName: body.FirmwareName})
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"message":      "Update initiated for selected devices",
		"updatedCount": n,
	})
}

// signalStrengthParam reads the optional signalStrength query parameter
func signalStrengthParam(req *http.Request) (*int, error) {
	raw := req.URL.Query().Get("signalStrength")
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, &fota.ValidationError{Message: "signalStrength must be an integer"}
	}
	return &v, nil
}

// checkForUpdate is the device heartbeat and pending-update query
func (r *Router) checkForUpdate(w http.ResponseWriter, req *http.Request) {
	deviceID := mux.Vars(req)["deviceId"]
	signal, err := signalStrengthParam(req)
	if err != nil {
		respondDomainError(w, err, "")
		return
	}

	device, err := r.updates.CheckForUpdate(req.Context(), deviceID, signal)
	if err != nil {
		respondDomainError(w, err, "Failed to check for update")
		return
	}

	r.publish(websocket.Event{Type: websocket.EventDeviceHeartbeat, DeviceIDs: []string{deviceID}})
	respondJSON(w, http.StatusOK, map[string]bool{"updateAvailable": device.PendingUpdate})
}

// fetchUpdate streams the pending firmware to the device, or reports that
// no update is available
func (r *Router) fetchUpdate(w http.ResponseWriter, req *http.Request) {
	deviceID := mux.Vars(req)["deviceId"]
	signal, err := signalStrengthParam(req)
	if err != nil {
		respondDomainError(w, err, "")
		return
	}

	_, fw, err := r.updates.FetchUpdate(req.Context(), deviceID, signal)
	if err != nil {
		respondDomainError(w, err, "Failed to fetch update")
		return
	}

	r.publish(websocket.Event{Type: websocket.EventDeviceHeartbeat, DeviceIDs: []string{deviceID}})
	if fw == nil {
		respondJSON(w, http.StatusOK, map[string]bool{"updateAvailable": false})
		return
	}
	sendFirmware(w, fw.Name, fw.Payload)
}

// markUpdateCompleted confirms a device installed its pending firmware
func (r *Router) markUpdateCompleted(w http.ResponseWriter, req *http.Request) {
	deviceID := mux.Vars(req)["deviceId"]

	c, err := r.updates.MarkCompleted(req.Context(), deviceID)
	if err != nil {
		respondDomainError(w, err, "Failed to complete update")
		return
	}

	if c.Completed {
		log.Printf("✅ Device %s now runs %s", deviceID, c.Firmware)
		r.publish(websocket.Event{Type: websocket.EventUpdateCompleted, DeviceIDs: []string{deviceID}, FirmwareName: c.Firmware})
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"message":   c.Message(),
		"completed": c.Completed,
	})
}

// listImports returns recent import reports
func (r *Router) listImports(w http.ResponseWriter, req *http.Request) {
	limit, _ := strconv.Atoi(req.URL.Query().Get("limit"))
	reports, err := r.store.ListImportReports(req.Context(), limit)
	if err != nil {
		respondDomainError(w, err, "Failed to retrieve import reports")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"imports": reports})
}

func sendFirmware(w http.ResponseWriter, name string, payload []byte) {
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", name))
	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Length", strconv.Itoa(len(payload)))
	w.WriteHeader(http.StatusOK)
	w.Write(payload)
}
