package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sifan077/SnipURL/internal/app/model"
	"github.com/sifan077/SnipURL/internal/app/repository"
	infraprom "github.com/sifan077/SnipURL/internal/infra/prometheus"
	"go.uber.org/zap"
)

var (
	// ErrMissingURL is returned when a create request has no original URL.
	ErrMissingURL = errors.New("originalLink is required")
	// ErrCodeTaken is returned when a caller-supplied short code is already in use.
	ErrCodeTaken = errors.New("short code already exists")
)

// LinkService defines behaviour-level operations on links.
type LinkService interface {
	CreateLink(ctx context.Context, input CreateLinkInput) (*model.Link, error)
	ListLinks(ctx context.Context, userID string) ([]model.Link, error)
	DeleteLink(ctx context.Context, userID, linkID string) error
	UpdateLink(ctx context.Context, userID, linkID string, input UpdateLinkInput) (*model.Link, error)
	RecordClick(ctx context.Context, linkID, userAgent, clientIP string) (*ClickReceipt, error)
	SeedCodes(ctx context.Context) error
}

// ClickSink receives click events for asynchronous attribution storage.
type ClickSink interface {
	Publish(event model.ClickEvent) error
}

// CreateLinkInput captures data required to create a link.
type CreateLinkInput struct {
	UserID      string
	OriginalURL string
	Remarks     string
	Code        string
	ExpiresAt   *time.Time
}

// UpdateLinkInput captures fields that can be changed on an existing link.
// Status overwrite is allowed here, which makes manual reactivation of an
// expired link possible; the sweeper will demote it again if the expiry
// date still lies in the past.
type UpdateLinkInput struct {
	OriginalURL *string
	Remarks     *string
	Status      *string
	ExpiresAt   *time.Time
}

// ClickReceipt is returned to the (unauthenticated) caller of a click.
type ClickReceipt struct {
	OriginalURL string    `json:"originalLink"`
	ShortCode   string    `json:"shortLink"`
	Clicks      int64     `json:"clicks"`
	Timestamp   time.Time `json:"timestamp"`
	IPAddress   string    `json:"ipAddress"`
	Device      string    `json:"userDevice"`
}

type linkService struct {
	logger *zap.Logger
	links  repository.LinkRepository
	codes  *codeAllocator
	clicks ClickSink
}

// NewLinkService returns a service implementation backed by the given
// repository. The click sink may be nil, in which case attribution events
// are dropped.
func NewLinkService(logger *zap.Logger, links repository.LinkRepository, clicks ClickSink) LinkService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &linkService{
		logger: logger,
		links:  links,
		codes:  newCodeAllocator(links),
		clicks: clicks,
	}
}

// SeedCodes primes the short-code filter from the store. Called once at startup.
func (s *linkService) SeedCodes(ctx context.Context) error {
	return s.codes.Seed(ctx)
}

// CreateLink persists a new Active link. Without a supplied code one is
// generated; either way the code must be unused.
func (s *linkService) CreateLink(ctx context.Context, input CreateLinkInput) (*model.Link, error) {
	if input.OriginalURL == "" {
		return nil, ErrMissingURL
	}

	code := input.Code
	if code == "" {
		generated, err := s.codes.Generate(ctx)
		if err != nil {
			return nil, fmt.Errorf("generate code: %w", err)
		}
		code = generated
	} else if err := s.codes.Claim(ctx, code); err != nil {
		return nil, err
	}

	link := &model.Link{
		ID:          uuid.New().String(),
		UserID:      input.UserID,
		OriginalURL: input.OriginalURL,
		ShortCode:   code,
		Remarks:     input.Remarks,
		Clicks:      0,
		Status:      model.LinkStatusActive,
		ExpiresAt:   input.ExpiresAt,
	}
	if err := s.links.Create(ctx, link); err != nil {
		return nil, fmt.Errorf("create link: %w", err)
	}

	infraprom.LinksCreated.Inc()
	return link, nil
}

func (s *linkService) ListLinks(ctx context.Context, userID string) ([]model.Link, error) {
	links, err := s.links.ListByOwner(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list links: %w", err)
	}
	return links, nil
}

// DeleteLink removes the link if and only if it exists and belongs to the
// caller. Both failure cases surface as ErrLinkNotFound so the response
// never reveals whether somebody else's link exists.
func (s *linkService) DeleteLink(ctx context.Context, userID, linkID string) error {
	if err := s.links.DeleteByIDAndOwner(ctx, linkID, userID); err != nil {
		if errors.Is(err, repository.ErrLinkNotFound) {
			return err
		}
		return fmt.Errorf("delete link: %w", err)
	}
	return nil
}

func (s *linkService) UpdateLink(ctx context.Context, userID, linkID string, input UpdateLinkInput) (*model.Link, error) {
	fields := map[string]interface{}{}
	if input.OriginalURL != nil {
		fields["original_url"] = *input.OriginalURL
	}
	if input.Remarks != nil {
		fields["remarks"] = *input.Remarks
	}
	if input.Status != nil {
		fields["status"] = *input.Status
	}
	if input.ExpiresAt != nil {
		fields["expires_at"] = *input.ExpiresAt
	}
	if len(fields) == 0 {
		return s.links.GetByIDAndOwner(ctx, linkID, userID)
	}

	link, err := s.links.UpdateByIDAndOwner(ctx, linkID, userID, fields)
	if err != nil {
		if errors.Is(err, repository.ErrLinkNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("update link: %w", err)
	}
	return link, nil
}

// RecordClick bumps the click counter by exactly one, classifies the device
// and hands an attribution event to the sink. The receipt never depends on
// the sink: a failed publish is logged and dropped.
func (s *linkService) RecordClick(ctx context.Context, linkID, userAgent, clientIP string) (*ClickReceipt, error) {
	link, err := s.links.IncrementClicks(ctx, linkID)
	if err != nil {
		if errors.Is(err, repository.ErrLinkNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("increment clicks: %w", err)
	}

	device := ClassifyDevice(userAgent)
	now := time.Now()

	if s.clicks != nil {
		event := model.ClickEvent{
			ID:        uuid.New().String(),
			LinkID:    link.ID,
			IP:        clientIP,
			UserAgent: userAgent,
			Device:    device,
			Timestamp: now,
		}
		go func() {
			if err := s.clicks.Publish(event); err != nil {
				s.logger.Error("failed to publish click event",
					zap.Error(err), zap.String("link_id", link.ID))
			}
		}()
	}

	infraprom.ClicksRecorded.Inc()
	return &ClickReceipt{
		OriginalURL: link.OriginalURL,
		ShortCode:   link.ShortCode,
		Clicks:      link.Clicks,
		Timestamp:   now,
		IPAddress:   clientIP,
		Device:      device,
	}, nil
}
