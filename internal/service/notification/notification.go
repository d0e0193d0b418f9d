package notification

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dentaldiamondhn-bit/diamond-link-sub001/internal/model"
	"github.com/dentaldiamondhn-bit/diamond-link-sub001/internal/store"
)

// Notification types.
const (
	TypeEventCreated   = "event_created"
	TypeConsentSigned  = "consent_signed"
	TypePatientCreated = "patient_created"
)

// ---------------------------------------------------------------------------
// DTOs
// ---------------------------------------------------------------------------

type CreateRequest struct {
	UserID uuid.UUID
	Type   string
	Title  string
	Body   string
	Data   map[string]any
}

// RoleNotice is fanned out to every active user of a role.
type RoleNotice struct {
	Type  string
	Title string
	Body  string
	Data  map[string]any
}

type ListResult struct {
	Data    []*model.Notification `json:"data"`
	Total   int                   `json:"total"`
	Page    int                   `json:"page"`
	PerPage int                   `json:"per_page"`
}

// ---------------------------------------------------------------------------
// Repositories
// ---------------------------------------------------------------------------

type Repository interface {
	Create(ctx context.Context, n *model.Notification) error
	ListByUser(ctx context.Context, userID uuid.UUID, unreadOnly bool, p store.Page) ([]*model.Notification, int, error)
	MarkRead(ctx context.Context, id, userID uuid.UUID) error
	MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error)
	CountUnread(ctx context.Context, userID uuid.UUID) (int, error)
}

type UserDirectory interface {
	ListByRole(ctx context.Context, role string) ([]*model.User, error)
}

// ---------------------------------------------------------------------------
// Interface
// ---------------------------------------------------------------------------

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*model.Notification, error)
	List(ctx context.Context, userID uuid.UUID, unreadOnly bool, page, perPage int) (*ListResult, error)
	MarkRead(ctx context.Context, notifID, userID uuid.UUID) error
	MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error)
	UnreadCount(ctx context.Context, userID uuid.UUID) (int, error)
	// NotifyRole stores one notification per active user of role and returns
	// how many were created.
	NotifyRole(ctx context.Context, role string, n RoleNotice) (int, error)
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type notificationService struct {
	repo  Repository
	users UserDirectory
	now   func() time.Time
}

func New(repo Repository, users UserDirectory) Service {
	return &notificationService{repo: repo, users: users, now: time.Now}
}

func (s *notificationService) Create(ctx context.Context, req CreateRequest) (*model.Notification, error) {
	title := strings.TrimSpace(req.Title)
	if req.UserID == uuid.Nil || title == "" {
		return nil, ErrInvalidInput
	}
	data := req.Data
	if data == nil {
		data = map[string]any{}
	}

	n := &model.Notification{
		ID:        uuid.New(),
		UserID:    req.UserID,
		Type:      req.Type,
		Title:     title,
		Body:      strings.TrimSpace(req.Body),
		Data:      data,
		CreatedAt: s.now().UTC(),
	}
	if err := s.repo.Create(ctx, n); err != nil {
		return nil, fmt.Errorf("create notification: %w", err)
	}
	return n, nil
}

func (s *notificationService) List(ctx context.Context, userID uuid.UUID, unreadOnly bool, page, perPage int) (*ListResult, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}
	offset := (page - 1) * perPage

	items, total, err := s.repo.ListByUser(ctx, userID, unreadOnly, store.Page{Limit: perPage, Offset: offset})
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	return &ListResult{Data: items, Total: total, Page: page, PerPage: perPage}, nil
}

func (s *notificationService) MarkRead(ctx context.Context, notifID, userID uuid.UUID) error {
	if err := s.repo.MarkRead(ctx, notifID, userID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("mark notification read: %w", err)
	}
	return nil
}

func (s *notificationService) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	n, err := s.repo.MarkAllRead(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("mark all read: %w", err)
	}
	return n, nil
}

func (s *notificationService) UnreadCount(ctx context.Context, userID uuid.UUID) (int, error) {
	n, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("count unread: %w", err)
	}
	return n, nil
}

func (s *notificationService) NotifyRole(ctx context.Context, role string, notice RoleNotice) (int, error) {
	users, err := s.users.ListByRole(ctx, role)
	if err != nil {
		return 0, fmt.Errorf("list %s users: %w", role, err)
	}

	created := 0
	var errs []error
	for _, u := range users {
		_, err := s.Create(ctx, CreateRequest{
			UserID: u.ID,
			Type:   notice.Type,
			Title:  notice.Title,
			Body:   notice.Body,
			Data:   notice.Data,
		})
		if err != nil {
			errs = append(errs, err)
			continue
		}
		created++
	}
	return created, errors.Join(errs...)
}
