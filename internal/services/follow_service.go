package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/Dias221467/Threads_Backend/internal/metrics"
	"github.com/Dias221467/Threads_Backend/internal/repository"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FollowService handles the follow graph between users.
type FollowService struct {
	userRepo UserStore
	graph    FollowGraph
}

// NewFollowService creates a new FollowService.
func NewFollowService(userRepo UserStore, graph FollowGraph) *FollowService {
	return &FollowService{userRepo: userRepo, graph: graph}
}

// FollowUnfollow toggles whether actor follows target and reports the new state.
func (s *FollowService) FollowUnfollow(ctx context.Context, actorID, targetID primitive.ObjectID) (following bool, err error) {
	defer func() { metrics.RecordAccountOp("follow_unfollow", outcome(err)) }()

	if actorID == targetID {
		return false, ErrSelfReference
	}

	actor, err := s.userRepo.GetUserByID(ctx, actorID)
	if err != nil {
		return false, s.lookupErr(err)
	}
	target, err := s.userRepo.GetUserByID(ctx, targetID)
	if err != nil {
		return false, s.lookupErr(err)
	}
	// Unverified accounts can still be replaced or purged, so they take no followers.
	if !target.IsVerified {
		return false, fmt.Errorf("%w: user not found", ErrNotFound)
	}

	if actor.IsFollowing(targetID) {
		if err := s.graph.Unfollow(ctx, actorID, targetID); err != nil {
			return true, fmt.Errorf("failed to unfollow: %w", err)
		}
		logrus.WithFields(logrus.Fields{"actor": actorID.Hex(), "target": targetID.Hex()}).Info("User unfollowed")
		return false, nil
	}

	if err := s.graph.Follow(ctx, actorID, targetID); err != nil {
		return false, fmt.Errorf("failed to follow: %w", err)
	}
	logrus.WithFields(logrus.Fields{"actor": actorID.Hex(), "target": targetID.Hex()}).Info("User followed")
	return true, nil
}

func (s *FollowService) lookupErr(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("%w: user not found", ErrNotFound)
	}
	return fmt.Errorf("failed to load user: %w", err)
}
