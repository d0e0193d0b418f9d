package store

import (
	"context"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/dentaldiamondhn-bit/diamond-link-sub001/internal/model"
)

const notificationsTable = "notifications"

var notificationColumns = columnNames(NotificationsColumns)

type NotificationStore struct{ c *Client }

func scanNotification(r entsql.ColumnScanner) (*model.Notification, error) {
	var (
		n    model.Notification
		data []byte
	)
	if err := r.Scan(&n.ID, &n.UserID, &n.Type, &n.Title, &n.Body, &data, &n.IsRead, &n.CreatedAt); err != nil {
		return nil, err
	}
	if err := jsonScan(data, &n.Data); err != nil {
		return nil, err
	}
	return &n, nil
}

func (s *NotificationStore) Create(ctx context.Context, n *model.Notification) error {
	data, err := jsonArg(n.Data)
	if err != nil {
		return err
	}
	_, err = s.c.exec(ctx, pg.Insert(notificationsTable).Columns(notificationColumns...).Values(
		n.ID, n.UserID, n.Type, n.Title, n.Body, data, n.IsRead, n.CreatedAt,
	))
	return err
}

// ListByUser returns a page of the user's notifications, newest first, and
// the total number matching.
func (s *NotificationStore) ListByUser(ctx context.Context, userID uuid.UUID, unreadOnly bool, p Page) ([]*model.Notification, int, error) {
	where := entsql.EQ("user_id", userID)
	if unreadOnly {
		where = entsql.And(where, entsql.EQ("is_read", false))
	}
	total, err := s.c.count(ctx, notificationsTable, where)
	if err != nil {
		return nil, 0, err
	}
	sel := pg.Select(notificationColumns...).From(pg.Table(notificationsTable)).
		Where(where).
		OrderBy(entsql.Desc("created_at"))
	items, err := scanAll(ctx, s.c, p.apply(sel), scanNotification)
	return items, total, err
}

// MarkRead flags one notification owned by userID as read.
func (s *NotificationStore) MarkRead(ctx context.Context, id, userID uuid.UUID) error {
	return s.c.execOne(ctx, pg.Update(notificationsTable).
		Set("is_read", true).
		Where(entsql.And(entsql.EQ("id", id), entsql.EQ("user_id", userID))))
}

// MarkAllRead returns how many notifications changed.
func (s *NotificationStore) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.c.exec(ctx, pg.Update(notificationsTable).
		Set("is_read", true).
		Where(entsql.And(entsql.EQ("user_id", userID), entsql.EQ("is_read", false))))
}

func (s *NotificationStore) CountUnread(ctx context.Context, userID uuid.UUID) (int, error) {
	return s.c.count(ctx, notificationsTable, entsql.And(entsql.EQ("user_id", userID), entsql.EQ("is_read", false)))
}
