package repository

import (
	"errors"

	"github.com/dailywell/content-engine/internal/common"
	"github.com/dailywell/content-engine/internal/domain"
	"gorm.io/gorm"
)

// VersionRepository content version data access.
// Transition is the only write path for versions: it enforces the
// single-active invariant and the optimistic concurrency check inside
// one transaction.
type VersionRepository interface {
	FindByContentID(contentID string) ([]*domain.ContentVersion, error)
	FindByContentIDAndNumber(contentID string, number int) (*domain.ContentVersion, error)
	FindActive(contentID string) (*domain.ContentVersion, error)
	NextVersionNumber(contentID string) (int, error)
	Transition(version *domain.ContentVersion, entry *domain.ChangeLogEntry, expectedActive int) error
}

type versionRepository struct {
	db *gorm.DB
}

// NewVersionRepository creates a new VersionRepository
func NewVersionRepository(db *gorm.DB) VersionRepository {
	return &versionRepository{db: db}
}

func (r *versionRepository) FindByContentID(contentID string) ([]*domain.ContentVersion, error) {
	var versions []*domain.ContentVersion
	err := r.db.Where("content_id = ?", contentID).Order("version_number DESC").Find(&versions).Error
	return versions, err
}

func (r *versionRepository) FindByContentIDAndNumber(contentID string, number int) (*domain.ContentVersion, error) {
	var version domain.ContentVersion
	err := r.db.Where("content_id = ? AND version_number = ?", contentID, number).First(&version).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, common.ErrVersionNotFound
	}
	if err != nil {
		return nil, err
	}
	return &version, nil
}

func (r *versionRepository) FindActive(contentID string) (*domain.ContentVersion, error) {
	var version domain.ContentVersion
	err := r.db.Where("content_id = ? AND is_active = ?", contentID, true).First(&version).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, common.ErrVersionNotFound
	}
	if err != nil {
		return nil, err
	}
	return &version, nil
}

func (r *versionRepository) NextVersionNumber(contentID string) (int, error) {
	var maxVersion *int
	err := r.db.Model(&domain.ContentVersion{}).
		Where("content_id = ?", contentID).
		Select("MAX(version_number)").
		Scan(&maxVersion).Error
	if err != nil {
		return 1, err
	}
	if maxVersion == nil {
		return 1, nil
	}
	return *maxVersion + 1, nil
}

// Transition atomically deactivates the current active version (guarded
// by expectedActive) and inserts the new active version plus its change
// log entry. expectedActive == 0 means "first version": any existing
// version is then a conflict. A stale expectedActive returns
// common.ErrVersionConflict and writes nothing.
func (r *versionRepository) Transition(version *domain.ContentVersion, entry *domain.ChangeLogEntry, expectedActive int) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if expectedActive == 0 {
			var count int64
			if err := tx.Model(&domain.ContentVersion{}).
				Where("content_id = ?", version.ContentID).
				Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				return common.ErrVersionConflict
			}
		} else {
			res := tx.Model(&domain.ContentVersion{}).
				Where("content_id = ? AND is_active = ? AND version_number = ?",
					version.ContentID, true, expectedActive).
				Update("is_active", false)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return common.ErrVersionConflict
			}
		}

		version.IsActive = true
		if err := tx.Create(version).Error; err != nil {
			return err
		}
		if entry != nil {
			if err := tx.Create(entry).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
