package repository

import (
	"context"
	"errors"

	"github.com/sifan077/SnipURL/internal/app/model"
	"gorm.io/gorm"
)

var (
	// ErrLinkNotFound signals that the requested link does not exist — or,
	// for owner-scoped lookups, that it belongs to somebody else. The two
	// cases are deliberately indistinguishable.
	ErrLinkNotFound = errors.New("link not found")
)

// LinkRepository defines the data access contract for short links.
//
// Every mutation scoped to an owner takes the id and owner together in a
// single filter so existence and authorization are checked atomically.
type LinkRepository interface {
	Create(ctx context.Context, link *model.Link) error
	GetByID(ctx context.Context, id string) (*model.Link, error)
	GetByIDAndOwner(ctx context.Context, id, userID string) (*model.Link, error)
	ListByOwner(ctx context.Context, userID string) ([]model.Link, error)
	ListCodes(ctx context.Context) ([]string, error)
	CodeExists(ctx context.Context, code string) (bool, error)
	DeleteByIDAndOwner(ctx context.Context, id, userID string) error
	UpdateByIDAndOwner(ctx context.Context, id, userID string, fields map[string]interface{}) (*model.Link, error)
	IncrementClicks(ctx context.Context, id string) (*model.Link, error)
}

type linkRepository struct {
	db *gorm.DB
}

// NewLinkRepository returns a GORM-backed LinkRepository.
func NewLinkRepository(db *gorm.DB) LinkRepository {
	return &linkRepository{db: db}
}

func (r *linkRepository) Create(ctx context.Context, link *model.Link) error {
	if err := r.db.WithContext(ctx).Create(link).Error; err != nil {
		return err
	}
	return nil
}

func (r *linkRepository) GetByID(ctx context.Context, id string) (*model.Link, error) {
	var link model.Link
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&link).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLinkNotFound
		}
		return nil, err
	}
	return &link, nil
}

func (r *linkRepository) GetByIDAndOwner(ctx context.Context, id, userID string) (*model.Link, error) {
	var link model.Link
	if err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&link).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLinkNotFound
		}
		return nil, err
	}
	return &link, nil
}

func (r *linkRepository) ListByOwner(ctx context.Context, userID string) ([]model.Link, error) {
	var result []model.Link
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Find(&result).Error; err != nil {
		return nil, err
	}
	return result, nil
}

// ListCodes returns every short code in the store. Used once at startup to
// seed the in-memory code filter.
func (r *linkRepository) ListCodes(ctx context.Context) ([]string, error) {
	var codes []string
	if err := r.db.WithContext(ctx).
		Model(&model.Link{}).
		Pluck("short_code", &codes).Error; err != nil {
		return nil, err
	}
	return codes, nil
}

func (r *linkRepository) CodeExists(ctx context.Context, code string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&model.Link{}).
		Where("short_code = ?", code).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *linkRepository) DeleteByIDAndOwner(ctx context.Context, id, userID string) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&model.Link{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrLinkNotFound
	}
	return nil
}

func (r *linkRepository) UpdateByIDAndOwner(ctx context.Context, id, userID string, fields map[string]interface{}) (*model.Link, error) {
	result := r.db.WithContext(ctx).
		Model(&model.Link{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(fields)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ErrLinkNotFound
	}

	var link model.Link
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&link).Error; err != nil {
		return nil, err
	}
	return &link, nil
}

// IncrementClicks bumps the counter store-side so concurrent clicks never
// lose updates, then reloads the row for the receipt.
func (r *linkRepository) IncrementClicks(ctx context.Context, id string) (*model.Link, error) {
	result := r.db.WithContext(ctx).
		Model(&model.Link{}).
		Where("id = ?", id).
		UpdateColumn("clicks", gorm.Expr("clicks + ?", 1))
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ErrLinkNotFound
	}

	var link model.Link
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&link).Error; err != nil {
		return nil, err
	}
	return &link, nil
}
