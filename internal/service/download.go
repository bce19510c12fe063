package service

import (
	"context"
	"time"

	"github.com/pratijat22/LetsEarn/internal/domain"
	"github.com/pratijat22/LetsEarn/pkg/blob"
)

// CourseStore is the slice of the course repository the download and admin
// paths need.
type CourseStore interface {
	Get(ctx context.Context) (*domain.Course, error)
	Update(ctx context.Context, c *domain.Course) error
	SetObjectKey(ctx context.Context, key string) error
}

// SignedURLTTL is how long an issued file URL stays valid.
const SignedURLTTL = 15 * time.Minute

// DownloadService checks entitlements and hands out short-lived signed URLs
// for the deliverable.
type DownloadService struct {
	tokens       TokenStore
	entitlements EntitlementStore
	course       CourseStore
	store        blob.Store
}

// NewDownloadService creates a new DownloadService.
func NewDownloadService(tokens TokenStore, entitlements EntitlementStore, course CourseStore, store blob.Store) *DownloadService {
	return &DownloadService{
		tokens:       tokens,
		entitlements: entitlements,
		course:       course,
		store:        store,
	}
}

// ResolveToken redeems a one-time token and returns the signed file URL.
// Redemption is atomic at the store: of any number of concurrent attempts on
// the same token, at most one succeeds.
func (s *DownloadService) ResolveToken(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", domain.ErrBadRequest("token is required")
	}

	// Locate the deliverable before consuming the token so a missing upload
	// doesn't burn a valid one-time link.
	url, err := s.signedReadURL(ctx)
	if err != nil {
		return "", err
	}

	redeemed, err := s.tokens.Redeem(ctx, token)
	if err != nil {
		return "", domain.ErrInternal("failed to redeem token", err)
	}
	if redeemed == nil {
		// Classify the refusal: expired-but-unused reads differently to the
		// buyer than consumed or unknown.
		existing, err := s.tokens.Find(ctx, token)
		if err != nil {
			return "", domain.ErrInternal("failed to look up token", err)
		}
		if existing != nil && !existing.Used && existing.Expired(time.Now()) {
			return "", domain.ErrExpired("download link expired")
		}
		return "", domain.ErrForbidden("invalid download token")
	}

	return url, nil
}

// ResolveEmail returns the signed file URL for a buyer with a durable
// entitlement.
func (s *DownloadService) ResolveEmail(ctx context.Context, email string) (string, error) {
	if email == "" {
		return "", domain.ErrBadRequest("email is required")
	}

	ent, err := s.entitlements.FindByEmail(ctx, domain.NormalizeEmail(email))
	if err != nil {
		return "", domain.ErrInternal("failed to look up entitlement", err)
	}
	if ent == nil || !ent.Granted {
		return "", domain.ErrForbidden("no download entitlement for this email")
	}

	return s.signedReadURL(ctx)
}

func (s *DownloadService) signedReadURL(ctx context.Context) (string, error) {
	course, err := s.course.Get(ctx)
	if err != nil {
		return "", domain.ErrInternal("failed to load course", err)
	}
	if course == nil || course.ObjectKey == "" {
		return "", domain.ErrNotFound("no deliverable has been uploaded yet")
	}

	url, err := s.store.SignedReadURL(course.ObjectKey, SignedURLTTL)
	if err != nil {
		return "", domain.ErrInternal("failed to sign download URL", err)
	}
	return url, nil
}
