package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/GoPolymarket/econgate/internal/model"
	"github.com/jmoiron/sqlx"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// NewGormDB opens gorm on the pool already held by db, so both share one set
// of connections.
func NewGormDB(db *sqlx.DB) (*gorm.DB, error) {
	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: db.DB}), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open gorm: %w", err)
	}
	return gdb, nil
}

// GormRejectionRepo stores contract rejections in contract_rejections.
type GormRejectionRepo struct {
	db *gorm.DB
}

func NewGormRejectionRepo(db *gorm.DB) (*GormRejectionRepo, error) {
	if err := db.AutoMigrate(&model.ContractRejection{}); err != nil {
		return nil, fmt.Errorf("failed to migrate contract_rejections: %w", err)
	}
	return &GormRejectionRepo{db: db}, nil
}

func (r *GormRejectionRepo) Insert(ctx context.Context, rec *model.ContractRejection) error {
	if rec == nil {
		return nil
	}
	return r.db.WithContext(ctx).Create(rec).Error
}

func (r *GormRejectionRepo) List(ctx context.Context, filter model.RejectionFilter) ([]*model.ContractRejection, error) {
	limit := filter.Limit
	if limit <= 0 || limit > 1000 {
		limit = 100
	}
	q := r.db.WithContext(ctx).Model(&model.ContractRejection{})
	if filter.ClientID != "" {
		q = q.Where("client_id = ?", filter.ClientID)
	}
	if filter.Contract != "" {
		q = q.Where("contract = ?", filter.Contract)
	}
	if filter.From != nil {
		q = q.Where("created_at >= ?", *filter.From)
	}
	if filter.To != nil {
		q = q.Where("created_at <= ?", *filter.To)
	}

	out := make([]*model.ContractRejection, 0, limit)
	if err := q.Order("created_at DESC").Limit(limit).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *GormRejectionRepo) Cleanup(ctx context.Context, olderThan time.Duration) error {
	if olderThan <= 0 {
		return nil
	}
	cutoff := time.Now().UTC().Add(-olderThan)
	return r.db.WithContext(ctx).Where("created_at < ?", cutoff).Delete(&model.ContractRejection{}).Error
}
