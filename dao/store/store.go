// Package store is the GORM implementation of the workflow engine's
// persistence contracts.
package store

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/modelmagic/modelmagic/dao/model"
	"github.com/modelmagic/modelmagic/pkg/workflow"
)

// Store adapts a gorm.DB to the workflow store interfaces.
type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) GetProject(ctx context.Context, id uint) (*model.Project, error) {
	var p model.Project
	err := s.db.WithContext(ctx).Preload("AssignedEditor").First(&p, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, workflow.NotFound("project %d not found", id)
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// SaveProject writes the full row guarded by the version the caller read.
// Losing the compare-and-swap means another transition landed first.
func (s *Store) SaveProject(ctx context.Context, p *model.Project) error {
	readVersion := p.Version
	p.Version++
	res := s.db.WithContext(ctx).
		Model(&model.Project{}).
		Where("id = ? AND version = ?", p.ID, readVersion).
		Select("*").
		Omit("id", "created_at").
		Updates(p)
	if res.Error != nil {
		p.Version = readVersion
		return res.Error
	}
	if res.RowsAffected == 0 {
		p.Version = readVersion
		return workflow.Conflict("project %d was modified concurrently", p.ID)
	}
	return nil
}

func (s *Store) DeleteProject(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&model.Project{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return workflow.NotFound("project %d not found", id)
	}
	return nil
}

func (s *Store) GetAsset(ctx context.Context, id uint) (*model.Asset, error) {
	var a model.Asset
	err := s.db.WithContext(ctx).First(&a, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, workflow.NotFound("asset %d not found", id)
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *Store) ListAssets(ctx context.Context, projectID uint) ([]model.Asset, error) {
	var assets []model.Asset
	err := s.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("id").
		Find(&assets).Error
	return assets, err
}

func (s *Store) CreateAsset(ctx context.Context, a *model.Asset) error {
	return s.db.WithContext(ctx).Create(a).Error
}

func (s *Store) SaveAsset(ctx context.Context, a *model.Asset) error {
	return s.db.WithContext(ctx).Save(a).Error
}

func (s *Store) DeleteAsset(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&model.Asset{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return workflow.NotFound("asset %d not found", id)
	}
	return nil
}

func (s *Store) DeleteProjectAssets(ctx context.Context, projectID uint) error {
	return s.db.WithContext(ctx).Where("project_id = ?", projectID).Delete(&model.Asset{}).Error
}

func (s *Store) CreateMessage(ctx context.Context, m *model.Message) error {
	return s.db.WithContext(ctx).Create(m).Error
}
