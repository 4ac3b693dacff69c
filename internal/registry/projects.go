package registry

import (
	"context"
	"errors"

	"github.com/DevangRnd/fota-backend/internal/fota"
	"github.com/DevangRnd/fota-backend/internal/models"
	"gorm.io/gorm"
)

// CreateProject registers a project. Names are unique.
func (s *Store) CreateProject(ctx context.Context, name string) (*models.Project, error) {
	if name == "" {
		return nil, &fota.ValidationError{Message: "Project name is required"}
	}
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Project{}).Where("name = ?", name).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, &fota.ConflictError{Entity: "project", ID: name}
	}

	project := &models.Project{Name: name, Vendors: []models.Vendor{}}
	if err := s.db.WithContext(ctx).Create(project).Error; err != nil {
		if isDuplicate(err) {
			return nil, &fota.ConflictError{Entity: "project", ID: name}
		}
		return nil, err
	}
	return project, nil
}

// ListProjects returns all projects with their vendors.
func (s *Store) ListProjects(ctx context.Context) ([]models.Project, error) {
	projects := []models.Project{}
	err := s.db.WithContext(ctx).Preload("Vendors").Order("created_at ASC").Find(&projects).Error
	return projects, err
}

// GetProject loads a project with its vendors.
func (s *Store) GetProject(ctx context.Context, id string) (*models.Project, error) {
	var project models.Project
	if err := s.db.WithContext(ctx).Preload("Vendors").First(&project, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &fota.NotFoundError{Entity: "project", ID: id}
		}
		return nil, err
	}
	return &project, nil
}

// CreateVendor adds a vendor to a project.
func (s *Store) CreateVendor(ctx context.Context, projectID, name string) (*models.Vendor, error) {
	if name == "" {
		return nil, &fota.ValidationError{Message: "Vendor name is required"}
	}
	if _, err := s.GetProject(ctx, projectID); err != nil {
		return nil, err
	}
	vendor := &models.Vendor{Name: name, ProjectID: &projectID}
	if err := s.db.WithContext(ctx).Create(vendor).Error; err != nil {
		return nil, err
	}
	return vendor, nil
}

// GetVendor loads a vendor by id.
func (s *Store) GetVendor(ctx context.Context, id string) (*models.Vendor, error) {
	var vendor models.Vendor
	if err := s.db.WithContext(ctx).First(&vendor, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &fota.NotFoundError{Entity: "vendor", ID: id}
		}
		return nil, err
	}
	return &vendor, nil
}
