package notes

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/sync/errgroup"

	"github.com/kuitang/noteful/internal/errs"
	"github.com/kuitang/noteful/internal/store"
)

// checkReferences confirms that the folder (if set) and every tag a note
// wants to reference exist and belong to the owner. The lookups run
// concurrently and the first rejection to settle is the one reported, so
// which invalid reference surfaces when several are invalid is unspecified.
//
// The check is advisory, not transactional: a referenced folder or tag can be
// deleted between this check succeeding and the note write landing. That race
// is accepted: there is no foreign-key constraint in storage and no
// compensation for it here.
func (s *Service) checkReferences(ctx context.Context, ownerID, folderID primitive.ObjectID, tagIDs []primitive.ObjectID) error {
	g, ctx := errgroup.WithContext(ctx)

	if !folderID.IsZero() {
		g.Go(func() error {
			_, err := s.store.FindFolderByID(ctx, ownerID, folderID)
			if errors.Is(err, store.ErrNotFound) {
				return errs.New(errs.InvalidArgument, fmt.Sprintf("The folder %s is not valid", folderID.Hex()))
			}
			return err
		})
	}

	for _, tagID := range tagIDs {
		g.Go(func() error {
			_, err := s.store.FindTagByID(ctx, ownerID, tagID)
			if errors.Is(err, store.ErrNotFound) {
				return errs.New(errs.InvalidArgument, fmt.Sprintf("The tag %s is not valid", tagID.Hex()))
			}
			return err
		})
	}

	return g.Wait()
}
