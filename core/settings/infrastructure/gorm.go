package infrastructure

import (
	"context"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

type WidgetSettingModel struct {
	Key   string `gorm:"primaryKey;column:key"`
	Value string `gorm:"column:value"`
}

func (WidgetSettingModel) TableName() string {
	return "widget_settings"
}

// OpenDatabase opens the settings database from a URI. Postgres DSNs go to
// the postgres driver, everything else is treated as a sqlite file URI.
func OpenDatabase(uri string) (*gorm.DB, error) {
	cfg := &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)}
	if strings.HasPrefix(uri, "postgres://") || strings.HasPrefix(uri, "postgresql://") {
		return gorm.Open(postgres.Open(uri), cfg)
	}
	return gorm.Open(sqlite.Open(uri), cfg)
}

type WidgetSettingsGormRepository struct {
	db *gorm.DB
}

func NewWidgetSettingsGormRepository(db *gorm.DB) *WidgetSettingsGormRepository {
	return &WidgetSettingsGormRepository{db: db}
}

func (r *WidgetSettingsGormRepository) InitSchema(ctx context.Context) error {
	return r.db.WithContext(ctx).AutoMigrate(&WidgetSettingModel{})
}

func (r *WidgetSettingsGormRepository) Get(ctx context.Context, key string) (string, error) {
	var m WidgetSettingModel
	if err := r.db.WithContext(ctx).First(&m, "key = ?", key).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return "", nil
		}
		return "", err
	}
	return strings.TrimSpace(m.Value), nil
}

func (r *WidgetSettingsGormRepository) Set(ctx context.Context, key string, value string) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.Assignments(map[string]interface{}{"value": value}),
	}).Create(&WidgetSettingModel{
		Key:   key,
		Value: value,
	}).Error
}

func (r *WidgetSettingsGormRepository) Delete(ctx context.Context, key string) error {
	return r.db.WithContext(ctx).Delete(&WidgetSettingModel{}, "key = ?", key).Error
}
