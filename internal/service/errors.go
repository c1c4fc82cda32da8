package service

import (
	"context"
	stderrors "errors"

	"netclass-console/internal/repository"
	"netclass-console/pkg/errors"
)

// storeError maps a store failure to an application error. Procedure
// rejections keep their message verbatim.
func storeError(err error, action string) error {
	if err == nil {
		return nil
	}

	var procErr *repository.ProcedureError
	switch {
	case stderrors.Is(err, repository.ErrPCNotFound):
		return errors.NotFoundError("PC")
	case stderrors.As(err, &procErr):
		return errors.ConflictError(procErr.Message, err)
	case stderrors.Is(err, repository.ErrSnapshotNotOwnedBy):
		return errors.ValidationError("Snapshot does not belong to this PC")
	case stderrors.Is(err, context.DeadlineExceeded):
		return errors.TimeoutError(action)
	case errors.IsAppError(err):
		return err
	default:
		return errors.DatabaseError("failed to "+action, err)
	}
}
