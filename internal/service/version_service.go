package service

import (
	"context"
	"errors"
	"time"

	"github.com/dailywell/content-engine/internal/common"
	"github.com/dailywell/content-engine/internal/domain"
	"github.com/dailywell/content-engine/internal/repository"
	"github.com/dailywell/content-engine/pkg/logger"
)

// VersionService owns all mutations of content items. Every content
// change goes through CreateVersion or Rollback; nothing else writes
// item titles or summaries.
type VersionService interface {
	CreateVersion(ctx context.Context, contentID string, snapshot domain.VersionSnapshot,
		changeType domain.ChangeType, reason, author string, expectedVersion int) (*domain.ContentVersion, bool, error)
	Rollback(ctx context.Context, contentID string, targetVersion int, reason, author string) (*domain.ContentVersion, error)
	History(ctx context.Context, contentID string) ([]*domain.ContentVersion, []*domain.ChangeLogEntry, error)
	ActiveVersion(ctx context.Context, contentID string) (*domain.ContentVersion, error)
}

type versionService struct {
	contents repository.ContentRepository
	versions repository.VersionRepository
	logs     repository.ChangeLogRepository
}

// NewVersionService creates a new VersionService
func NewVersionService(
	contents repository.ContentRepository,
	versions repository.VersionRepository,
	logs repository.ChangeLogRepository,
) VersionService {
	return &versionService{contents: contents, versions: versions, logs: logs}
}

// CreateVersion appends a new version carrying snapshot and makes it
// active. The second return is false when the snapshot equals the active
// version and nothing was written. expectedVersion is the version number
// the caller believes is active (0 when creating the first version); a
// stale value returns ErrVersionConflict.
func (s *versionService) CreateVersion(ctx context.Context, contentID string, snapshot domain.VersionSnapshot,
	changeType domain.ChangeType, reason, author string, expectedVersion int) (*domain.ContentVersion, bool, error) {
	if !changeType.Valid() {
		return nil, false, common.ErrInvalidInput
	}

	item, err := s.contents.FindByID(contentID)
	if err != nil {
		return nil, false, err
	}

	var before *domain.VersionSnapshot
	nextNumber := 1
	active, err := s.versions.FindActive(contentID)
	switch {
	case err == nil:
		current := active.Snapshot()
		if current.Equal(snapshot) {
			return active, false, nil
		}
		before = &current
		nextNumber = active.VersionNumber + 1
	case errors.Is(err, common.ErrVersionNotFound):
		// first version for this item
	default:
		return nil, false, err
	}

	version := &domain.ContentVersion{
		ContentID:     contentID,
		VersionNumber: nextNumber,
		ChangeType:    changeType,
		ChangeReason:  reason,
		Author:        author,
		CreatedAt:     time.Now().UTC(),
	}
	version.SetSnapshot(snapshot)

	entry := &domain.ChangeLogEntry{
		ContentID:   contentID,
		FromVersion: nextNumber - 1,
		ToVersion:   nextNumber,
		ActionType:  string(changeType),
		Diff:        domain.BuildDiff(before, snapshot),
		Author:      author,
		CreatedAt:   version.CreatedAt,
	}

	if err := s.versions.Transition(version, entry, expectedVersion); err != nil {
		if errors.Is(err, common.ErrVersionConflict) {
			versionConflictsTotal.Inc()
			log := logger.WithContentID(contentID)
			log.Warn().
				Int("expected_version", expectedVersion).
				Msg("version transition rejected, concurrent writer won")
		}
		return nil, false, err
	}

	item.ApplySnapshot(snapshot)
	item.UpdatedAt = version.CreatedAt
	if err := s.contents.Update(item); err != nil {
		return nil, false, err
	}

	versionTransitionsTotal.WithLabelValues(string(changeType)).Inc()
	return version, true, nil
}

// Rollback restores targetVersion's content as a new version. History is
// never rewritten: rolling back from v5 to v2 yields v6 carrying v2's
// snapshot.
func (s *versionService) Rollback(ctx context.Context, contentID string, targetVersion int, reason, author string) (*domain.ContentVersion, error) {
	target, err := s.versions.FindByContentIDAndNumber(contentID, targetVersion)
	if err != nil {
		return nil, err
	}
	active, err := s.versions.FindActive(contentID)
	if err != nil {
		return nil, err
	}
	if active.VersionNumber == targetVersion {
		return nil, common.ErrNoChanges
	}

	version, _, err := s.CreateVersion(ctx, contentID, target.Snapshot(),
		domain.ChangeRollback, reason, author, active.VersionNumber)
	return version, err
}

func (s *versionService) History(ctx context.Context, contentID string) ([]*domain.ContentVersion, []*domain.ChangeLogEntry, error) {
	if _, err := s.contents.FindByID(contentID); err != nil {
		return nil, nil, err
	}
	versions, err := s.versions.FindByContentID(contentID)
	if err != nil {
		return nil, nil, err
	}
	entries, err := s.logs.FindByContentID(contentID)
	if err != nil {
		return nil, nil, err
	}
	return versions, entries, nil
}

func (s *versionService) ActiveVersion(ctx context.Context, contentID string) (*domain.ContentVersion, error) {
	return s.versions.FindActive(contentID)
}
