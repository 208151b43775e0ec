package db

import (
	"context"

	"equiplend/models"
)

func (r *Repo) GetSettings(ctx context.Context) (*models.Settings, error) {
	var s models.Settings
	if err := r.DB.WithContext(ctx).
		FirstOrCreate(&s, models.Settings{ID: models.SettingsID}).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *Repo) UpdateSettings(ctx context.Context, s *models.Settings) error {
	s.ID = models.SettingsID
	return r.DB.WithContext(ctx).Save(s).Error
}
