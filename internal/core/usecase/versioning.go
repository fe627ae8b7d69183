package usecase

import (
	"context"
	"fmt"

	"github.com/hmoralesr/document-intake/internal/core/domain"
	"github.com/hmoralesr/document-intake/internal/core/ports"
)

// VersioningService assigns version numbers within a document lineage and
// maintains the parent's version list.
type VersioningService struct {
	repo ports.DocumentRepository
}

func NewVersioningService(repo ports.DocumentRepository) *VersioningService {
	return &VersioningService{repo: repo}
}

// ResolveVersion decides the version number and parent for an upload whose
// derived id is baseID. A missing base record makes this upload the lineage
// root (version 1, no parent). Otherwise the next number is one past the
// highest stored version among the base's listed children.
//
// Two concurrent uploads against the same base can race on this computation;
// the store offers no per-lineage compare-and-set, so the race stands as a
// known concern.
func (s *VersioningService) ResolveVersion(ctx context.Context, baseID string) (int, string, error) {
	base, err := s.repo.GetByID(ctx, baseID)
	if err != nil {
		if domain.IsKind(err, domain.ErrDocumentNotFound) {
			return 1, "", nil
		}
		return 0, "", fmt.Errorf("load lineage root: %w", err)
	}

	highest := 1
	for _, versionID := range base.Versions {
		child, err := s.repo.GetByID(ctx, versionID)
		if err != nil {
			// A dangling entry in the version list should not block new
			// uploads.
			continue
		}
		if child.Version > highest {
			highest = child.Version
		}
	}

	return highest + 1, baseID, nil
}

// VersionedID derives the stored identity for a non-root version.
func VersionedID(baseID string, version int) string {
	return fmt.Sprintf("%s_v%d", baseID, version)
}

// LinkVersion appends childID to the parent's version list. The append is
// idempotent and touches the parent's update timestamp.
func (s *VersioningService) LinkVersion(ctx context.Context, parentID, childID string) error {
	if err := s.repo.AppendVersion(ctx, parentID, childID); err != nil {
		return fmt.Errorf("link version %s to %s: %w", childID, parentID, err)
	}
	return nil
}
