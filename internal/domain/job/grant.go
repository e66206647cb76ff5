package job

import (
	"context"
	"errors"
	"fmt"

	"github.com/rpggio/freightline/internal/domain/editgrant"
	"github.com/rpggio/freightline/internal/repository"
)

// EditTarget exposes jobs to the edit grant workflow.
func (s *Service) EditTarget() editgrant.Target {
	return grantTarget{s: s}
}

type grantTarget struct {
	s *Service
}

func (t grantTarget) LoadGrant(ctx context.Context, id string) (editgrant.Snapshot, error) {
	j, err := t.s.load(ctx, id)
	if err != nil {
		return editgrant.Snapshot{}, err
	}
	return editgrant.Snapshot{Grant: j.EditGrant, Version: j.Version}, nil
}

func (t grantTarget) SaveGrant(ctx context.Context, id string, grant *editgrant.Grant, expectedVersion int64) error {
	err := t.s.jobs.UpdateGrant(ctx, id, grant, expectedVersion)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrJobNotFound.WithDetails(map[string]string{"job_id": id})
	}
	return err
}

func (t grantTarget) ValidateChanges(changes editgrant.Changes) error {
	return editgrant.ValidateFields(changes, EditableFields)
}

func (t grantTarget) ApplyEdit(ctx context.Context, id string, grant *editgrant.Grant, changes editgrant.Changes, expectedVersion int64) (any, error) {
	current, err := t.s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.Version != expectedVersion {
		return nil, repository.ErrConflict
	}
	updated := current.Clone()
	updated.Fields.Apply(changes)
	updated.EditGrant = grant
	updated.Version = expectedVersion + 1
	updated.UpdatedAt = t.s.now().UTC()
	if err := t.s.jobs.Update(ctx, updated, expectedVersion); err != nil {
		switch {
		case errors.Is(err, repository.ErrConflict):
			return nil, err
		case errors.Is(err, repository.ErrNotFound):
			return nil, ErrJobNotFound.WithDetails(map[string]string{"job_id": id})
		}
		return nil, fmt.Errorf("applying edit to job %s: %w", id, err)
	}
	return updated, nil
}
