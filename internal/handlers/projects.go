package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
)

// createProject registers a project with a unique name
func (r *Router) createProject(w http.ResponseWriter, req *http.Request) {
	var body struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	project, err := r.store.CreateProject(req.Context(), body.Name)
	if err != nil {
		respondDomainError(w, err, "Error creating project")
		return
	}
	respondJSON(w, http.StatusCreated, map[string]interface{}{"newProject": project})
}

// getProjects lists projects with their vendors
func (r *Router) getProjects(w http.ResponseWriter, req *http.Request) {
	projects, err := r.store.ListProjects(req.Context())
	if err != nil {
		respondDomainError(w, err, "Error fetching projects")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"projects": projects})
}

// createVendor adds a vendor to a project
func (r *Router) createVendor(w http.ResponseWriter, req *http.Request) {
	var body struct {
		VendorName string `json:"vendorName"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	vendor, err := r.store.CreateVendor(req.Context(), mux.Vars(req)["projectId"], body.VendorName)
	if err != nil {
		respondDomainError(w, err, "Error while creating the vendor")
		return
	}
	respondJSON(w, http.StatusCreated, map[string]interface{}{"newVendor": vendor})
}

// getVendorsForProject lists a project's vendors
func (r *Router) getVendorsForProject(w http.ResponseWriter, req *http.Request) {
	project, err := r.store.GetProject(req.Context(), mux.Vars(req)["projectId"])
	if err != nil {
		respondDomainError(w, err, "Error while fetching vendors")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"vendors": project.Vendors})
}
