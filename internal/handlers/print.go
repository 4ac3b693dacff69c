package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/DevangRnd/fota-backend/internal/services/printer"
	"github.com/gorilla/mux"
)

// vendorLabels renders a PDF sheet of QR labels for a vendor's devices
func (r *Router) vendorLabels(w http.ResponseWriter, req *http.Request) {
	vendorID := mux.Vars(req)["vendorId"]
	if _, err := r.store.GetVendor(req.Context(), vendorID); err != nil {
		respondDomainError(w, err, "Failed to load vendor")
		return
	}

	cfg := printer.DefaultLabelConfig()
	q := req.URL.Query()
	if v, err := strconv.Atoi(q.Get("cols")); err == nil && v > 0 {
		cfg.Cols = v
	}
	if v, err := strconv.Atoi(q.Get("rows")); err == nil && v > 0 {
		cfg.Rows = v
	}

	devices, err := r.store.DevicesByVendor(req.Context(), vendorID)
	if err != nil {
		respondDomainError(w, err, "Failed to retrieve devices")
		return
	}
	labels := make([]printer.Label, 0, len(devices))
	for _, d := range devices {
		labels = append(labels, printer.Label{DeviceID: d.DeviceID, Caption: d.Panchayat})
	}

	pdfBytes, err := printer.GenerateLabelsPDF(labels, cfg)
	if err != nil {
		respondError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to generate PDF: %v", err))
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"labels_%s.pdf\"", vendorID))
	w.Header().Set("Content-Length", strconv.Itoa(len(pdfBytes)))
	w.Write(pdfBytes)
}

// deviceQR returns the QR code PNG for one registered device
func (r *Router) deviceQR(w http.ResponseWriter, req *http.Request) {
	deviceID := mux.Vars(req)["deviceId"]
	if _, err := r.store.GetDevice(req.Context(), deviceID); err != nil {
		respondDomainError(w, err, "Failed to load device")
		return
	}

	png, err := printer.DeviceQR(deviceID, 256)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to generate QR")
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Write(png)
}
