package handlers

import (
	"io"
	"log"
	"net/http"

	"github.com/DevangRnd/fota-backend/internal/fota"
	"github.com/DevangRnd/fota-backend/internal/websocket"
)

// uploadFirmware stores a firmware binary from a multipart form
func (r *Router) uploadFirmware(w http.ResponseWriter, req *http.Request) {
	maxBytes := r.cfg.Firmware.MaxUploadMB << 20
	req.Body = http.MaxBytesReader(w, req.Body, maxBytes)
	if err := req.ParseMultipartForm(maxBytes); err != nil {
		respondError(w, http.StatusBadRequest, "Firmware file and name are required")
		return
	}

	name := req.FormValue("name")
	file, _, err := req.FormFile("firmware")
	if err != nil || name == "" {
		respondError(w, http.StatusBadRequest, "Firmware file and name are required")
		return
	}
	defer file.Close()

	payload, err := io.ReadAll(file)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Failed to read firmware file")
		return
	}

	fw, err := r.firmware.Upload(req.Context(), name, payload)
	if err != nil {
		respondDomainError(w, err, "Failed to upload firmware")
		return
	}

	log.Printf("📦 Firmware %s uploaded (%d bytes)", fw.Name, fw.Size)
	r.publish(websocket.Event{Type: websocket.EventFirmwareUploaded, FirmwareName: fw.Name})
	respondJSON(w, http.StatusOK, map[string]string{
		"message":    "Firmware uploaded successfully",
		"firmwareId": fw.ID,
		"name":       fw.Name,
	})
}

// listFirmwares returns id and name of stored firmwares
func (r *Router) listFirmwares(w http.ResponseWriter, req *http.Request) {
	firmwares, err := r.firmware.List(req.Context())
	if err != nil {
		log.Printf("Error retrieving firmwares: %v", err)
		respondError(w, http.StatusInternalServerError, "Failed to retrieve firmware list")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"allFirmwares": firmwares})
}

// downloadFirmware streams the most recent firmware
func (r *Router) downloadFirmware(w http.ResponseWriter, req *http.Request) {
	fw, err := r.firmware.Latest(req.Context())
	if err != nil {
		if fota.IsNotFound(err) {
			respondError(w, http.StatusNotFound, "No firmware available for download")
			return
		}
		respondDomainError(w, err, "Failed to download firmware")
		return
	}
	sendFirmware(w, fw.Name, fw.Payload)
}
