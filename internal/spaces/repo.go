package spaces

import (
	"context"
	"strings"

	"github.com/cargochainlabs/cargochain-backend/pkg/db/models"
	"github.com/cargochainlabs/cargochain-backend/pkg/enums"
	"gorm.io/gorm"
)

// Repository manages persistence for logistics space listings.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, space *models.LogisticsSpace) error
	GetByID(ctx context.Context, id int64) (*models.LogisticsSpace, error)
	GetByTokenID(ctx context.Context, tokenID string) (*models.LogisticsSpace, error)
	List(ctx context.Context) ([]models.LogisticsSpace, error)
	ListByUserID(ctx context.Context, userID int64) ([]models.LogisticsSpace, error)
	Search(ctx context.Context, source, destination string) ([]models.LogisticsSpace, error)
	UpdateStatus(ctx context.Context, id int64, status enums.SpaceStatus) error
	ClaimForBooking(ctx context.Context, id int64) (bool, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a space repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, space *models.LogisticsSpace) error {
	return r.db.WithContext(ctx).Create(space).Error
}

func (r *repository) GetByID(ctx context.Context, id int64) (*models.LogisticsSpace, error) {
	var space models.LogisticsSpace
	if err := r.db.WithContext(ctx).First(&space, id).Error; err != nil {
		return nil, err
	}
	return &space, nil
}

func (r *repository) GetByTokenID(ctx context.Context, tokenID string) (*models.LogisticsSpace, error) {
	var space models.LogisticsSpace
	if err := r.db.WithContext(ctx).
		Where("token_id = ?", tokenID).
		First(&space).Error; err != nil {
		return nil, err
	}
	return &space, nil
}

func (r *repository) List(ctx context.Context) ([]models.LogisticsSpace, error) {
	var rows []models.LogisticsSpace
	if err := r.db.WithContext(ctx).
		Order("id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) ListByUserID(ctx context.Context, userID int64) ([]models.LogisticsSpace, error) {
	var rows []models.LogisticsSpace
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Search matches source and destination by case-insensitive substring
// and never returns booked listings. Empty terms match everything.
func (r *repository) Search(ctx context.Context, source, destination string) ([]models.LogisticsSpace, error) {
	query := r.db.WithContext(ctx).
		Where("status <> ?", enums.SpaceStatusBooked)

	if trimmed := strings.TrimSpace(source); trimmed != "" {
		query = query.Where("LOWER(source) LIKE ?", "%"+strings.ToLower(trimmed)+"%")
	}
	if trimmed := strings.TrimSpace(destination); trimmed != "" {
		query = query.Where("LOWER(destination) LIKE ?", "%"+strings.ToLower(trimmed)+"%")
	}

	var rows []models.LogisticsSpace
	if err := query.Order("id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) UpdateStatus(ctx context.Context, id int64, status enums.SpaceStatus) error {
	return r.db.WithContext(ctx).
		Model(&models.LogisticsSpace{}).
		Where("id = ?", id).
		Update("status", status).Error
}

// ClaimForBooking flips the listing to booked only when it is still
// bookable. The conditional write is what guarantees a single winner
// under concurrent booking attempts.
func (r *repository) ClaimForBooking(ctx context.Context, id int64) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.LogisticsSpace{}).
		Where("id = ?", id).
		Where("status <> ?", enums.SpaceStatusBooked).
		Update("status", enums.SpaceStatusBooked)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}
