package project

import (
	"context"
	"database/sql"

	"gorm.io/gorm"
)

//go:generate mockgen -source=project_repo.go -destination=mock/project_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, proj *Project) error
	FindAll(ctx context.Context) ([]Project, error)
	FindByID(ctx context.Context, id string) (*Project, error)
	Exists(ctx context.Context, id string) (bool, error)
}

// CostRepository is the narrow surface the foreman ledger uses to keep its
// invoice lines mirrored as project cost entries.
type CostRepository interface {
	AppendCost(ctx context.Context, cost *ProjectCost) error
	FindCostBySourceRef(ctx context.Context, sourceRef string) (*ProjectCost, error)
	RemoveCostBySourceRef(ctx context.Context, sourceRef string) (int64, error)
	FindCostsByProject(ctx context.Context, projectID string) ([]ProjectCost, error)
}

type repository struct {
	db *gorm.DB
	tx *sql.Tx
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func NewCostRepository(db *gorm.DB) CostRepository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *sql.Tx) Repository {
	return &repository{
		db: r.db,
		tx: tx,
	}
}

func (r *repository) Create(ctx context.Context, proj *Project) error {
	return r.db.WithContext(ctx).Create(proj).Error
}

func (r *repository) FindAll(ctx context.Context) ([]Project, error) {
	var projects []Project
	err := r.db.WithContext(ctx).
		Order("name ASC").
		Find(&projects).Error
	return projects, err
}

func (r *repository) FindByID(ctx context.Context, id string) (*Project, error) {
	var proj Project
	err := r.db.WithContext(ctx).
		First(&proj, "id = ?", id).Error
	return &proj, err
}

func (r *repository) Exists(ctx context.Context, id string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&Project{}).
		Where("id = ?", id).
		Count(&count).Error
	return count > 0, err
}

func (r *repository) AppendCost(ctx context.Context, cost *ProjectCost) error {
	return r.db.WithContext(ctx).Create(cost).Error
}

func (r *repository) FindCostBySourceRef(ctx context.Context, sourceRef string) (*ProjectCost, error) {
	var cost ProjectCost
	err := r.db.WithContext(ctx).
		First(&cost, "source_ref = ?", sourceRef).Error
	return &cost, err
}

func (r *repository) RemoveCostBySourceRef(ctx context.Context, sourceRef string) (int64, error) {
	res := r.db.WithContext(ctx).
		Delete(&ProjectCost{}, "source_ref = ?", sourceRef)
	return res.RowsAffected, res.Error
}

func (r *repository) FindCostsByProject(ctx context.Context, projectID string) ([]ProjectCost, error) {
	var costs []ProjectCost
	err := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("date DESC, created_at DESC").
		Find(&costs).Error
	return costs, err
}
