package services

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/GEO-SCOPE/geoscope-backend/internal/apperr"
	"github.com/GEO-SCOPE/geoscope-backend/internal/logger"
	"github.com/GEO-SCOPE/geoscope-backend/internal/repos"
	"github.com/GEO-SCOPE/geoscope-backend/internal/types"
)

type CreateProjectInput struct {
	Name        string   `json:"name"`
	BrandName   string   `json:"brand_name"`
	Industry    string   `json:"industry"`
	Competitors []string `json:"competitors"`
}

type UpdateProjectInput struct {
	Name        *string   `json:"name,omitempty"`
	BrandName   *string   `json:"brand_name,omitempty"`
	Industry    *string   `json:"industry,omitempty"`
	Competitors *[]string `json:"competitors,omitempty"`
}

type ProjectService interface {
	Create(ctx context.Context, in CreateProjectInput) (*types.Project, error)
	Get(ctx context.Context, id uuid.UUID) (*types.Project, error)
	List(ctx context.Context) ([]*types.Project, int64, error)
	Update(ctx context.Context, id uuid.UUID, in UpdateProjectInput) (*types.Project, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type projectService struct {
	db          *gorm.DB
	log         *logger.Logger
	projectRepo repos.ProjectRepo
}

func NewProjectService(db *gorm.DB, baseLog *logger.Logger, projectRepo repos.ProjectRepo) ProjectService {
	return &projectService{
		db:          db,
		log:         baseLog.With("service", "ProjectService"),
		projectRepo: projectRepo,
	}
}

func (s *projectService) Create(ctx context.Context, in CreateProjectInput) (*types.Project, error) {
	if in.Name == "" {
		return nil, apperr.Validation("name is required")
	}
	if in.BrandName == "" {
		return nil, apperr.Validation("brand_name is required")
	}
	project := &types.Project{
		ID:          uuid.New(),
		Name:        in.Name,
		BrandName:   in.BrandName,
		Industry:    in.Industry,
		Competitors: types.StringList(in.Competitors),
	}
	if _, err := s.projectRepo.Create(ctx, nil, project); err != nil {
		return nil, err
	}
	s.log.Info("Project created", "project_id", project.ID, "brand", project.BrandName)
	return project, nil
}

func (s *projectService) Get(ctx context.Context, id uuid.UUID) (*types.Project, error) {
	project, err := s.projectRepo.GetByID(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, apperr.NotFound("project", id)
	}
	return project, nil
}

func (s *projectService) List(ctx context.Context) ([]*types.Project, int64, error) {
	return s.projectRepo.List(ctx, nil)
}

func (s *projectService) Update(ctx context.Context, id uuid.UUID, in UpdateProjectInput) (*types.Project, error) {
	project, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		if *in.Name == "" {
			return nil, apperr.Validation("name cannot be empty")
		}
		project.Name = *in.Name
	}
	if in.BrandName != nil {
		if *in.BrandName == "" {
			return nil, apperr.Validation("brand_name cannot be empty")
		}
		project.BrandName = *in.BrandName
	}
	if in.Industry != nil {
		project.Industry = *in.Industry
	}
	if in.Competitors != nil {
		project.Competitors = types.StringList(*in.Competitors)
	}
	if err := s.projectRepo.Update(ctx, nil, project); err != nil {
		return nil, err
	}
	return project, nil
}

func (s *projectService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	return s.projectRepo.Delete(ctx, nil, id)
}
