package services

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"ship-swift-backend/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const maxCommentLength = 1000

// ReviewService handles ratings left for drivers and clients
type ReviewService struct {
	store Store
	roles *RoleService
}

// NewReviewService creates a new review service
func NewReviewService(store Store, roles *RoleService) *ReviewService {
	return &ReviewService{
		store: store,
		roles: roles,
	}
}

// CreateReviewInput holds the fields of a new review
type CreateReviewInput struct {
	TargetID    string      `json:"target_id"`
	TargetRole  models.Role `json:"target_role"`
	ActiveJobID *string     `json:"active_job_id,omitempty"`
	Rating      int         `json:"rating"`
	Comment     string      `json:"comment"`
}

// ReviewSummary is the list of reviews of a user with their average rating
type ReviewSummary struct {
	Reviews []*models.Review `json:"reviews"`
	Count   int              `json:"count"`
	Average float64          `json:"average"`
}

// CreateReview stores a review written by authorID. A review tied to an
// active job must come from one of its parties about the other, once the
// parcel is delivered.
func (s *ReviewService) CreateReview(ctx context.Context, authorID string, in CreateReviewInput) (*models.Review, error) {
	in.TargetID = strings.TrimSpace(in.TargetID)
	in.Comment = strings.TrimSpace(in.Comment)

	switch {
	case in.TargetID == "":
		return nil, invalid("target_id", "is required")
	case in.TargetRole != models.RoleDriver && in.TargetRole != models.RoleClient:
		return nil, invalid("target_role", "must be driver or client")
	case in.Rating < 1 || in.Rating > 5:
		return nil, invalid("rating", "must be between 1 and 5")
	case utf8.RuneCountInString(in.Comment) > maxCommentLength:
		return nil, invalid("comment", fmt.Sprintf("must be at most %d characters", maxCommentLength))
	case in.TargetID == authorID:
		return nil, fmt.Errorf("%w: cannot review yourself", ErrForbidden)
	}

	if ok, err := s.roles.HasRole(ctx, in.TargetID, in.TargetRole); err != nil {
		return nil, err
	} else if !ok {
		return nil, invalid("target_id", fmt.Sprintf("is not a %s", in.TargetRole))
	}

	if in.ActiveJobID != nil {
		aj, err := s.store.GetActiveJob(ctx, *in.ActiveJobID)
		if err != nil {
			return nil, storeErr(err)
		}
		if !aj.HasParty(authorID) || !aj.HasParty(in.TargetID) {
			return nil, fmt.Errorf("%w: author and target must be the parties of the job", ErrForbidden)
		}
		if (in.TargetRole == models.RoleDriver && aj.DriverID != in.TargetID) ||
			(in.TargetRole == models.RoleClient && aj.ClientID != in.TargetID) {
			return nil, invalid("target_role", "does not match the target's side of the job")
		}
		if aj.JobStatus != models.ActiveJobDelivered {
			return nil, fmt.Errorf("%w: job is not delivered yet", ErrConflict)
		}
	}

	rv := &models.Review{
		ID:          uuid.New().String(),
		AuthorID:    authorID,
		TargetID:    in.TargetID,
		TargetRole:  in.TargetRole,
		ActiveJobID: in.ActiveJobID,
		Rating:      in.Rating,
		Comment:     in.Comment,
		CreatedAt:   time.Now(),
	}
	if err := s.store.CreateReview(ctx, rv); err != nil {
		return nil, storeErr(err)
	}

	log.Info().
		Str("review_id", rv.ID).
		Str("author_id", authorID).
		Str("target_id", rv.TargetID).
		Int("rating", rv.Rating).
		Msg("Review created")

	return rv, nil
}

// ListReviews lists the reviews of a user in the given role
func (s *ReviewService) ListReviews(ctx context.Context, targetID string, role models.Role) (*ReviewSummary, error) {
	if targetID == "" {
		return nil, invalid("target_id", "is required")
	}
	if role != models.RoleDriver && role != models.RoleClient {
		return nil, invalid("target_role", "must be driver or client")
	}

	reviews, err := s.store.ListReviewsByTarget(ctx, targetID, role)
	if err != nil {
		return nil, err
	}

	summary := &ReviewSummary{Reviews: reviews, Count: len(reviews)}
	if len(reviews) > 0 {
		total := 0
		for _, rv := range reviews {
			total += rv.Rating
		}
		summary.Average = float64(total) / float64(len(reviews))
	}
	return summary, nil
}

// DeleteReview deletes a review. Only its author or an admin may delete it.
func (s *ReviewService) DeleteReview(ctx context.Context, userID, id string) error {
	rv, err := s.store.GetReview(ctx, id)
	if err != nil {
		return storeErr(err)
	}
	if rv.AuthorID != userID && !s.roles.IsAdmin(userID) {
		return fmt.Errorf("%w: not the review author", ErrForbidden)
	}
	if err := s.store.DeleteReview(ctx, id); err != nil {
		return storeErr(err)
	}

	log.Info().Str("review_id", id).Str("user_id", userID).Msg("Review deleted")
	return nil
}
