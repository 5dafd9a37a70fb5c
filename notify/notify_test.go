package notify

import (
	"context"
	"testing"

	"peer-delivery-api/config"
	"peer-delivery-api/dbtest"
	"peer-delivery-api/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
)

func note(userID uint, title string) models.Notification {
	return models.Notification{UserID: userID, Title: title, Message: title, Type: models.NotifyOrderCreated}
}

func TestDispatcher_DeliversAndDrains(t *testing.T) {
	db := dbtest.Open(t)
	d := NewDispatcher(db, zap.NewNop(), 16)

	for i := 0; i < 5; i++ {
		d.Notify(note(1, "hello"))
	}
	d.Close()
	goleak.VerifyNone(t, goleak.IgnoreTopFunction("database/sql.(*DB).connectionOpener"))

	assert.Equal(t, Stats{Delivered: 5}, d.Stats())
	assert.Equal(t, int64(5), dbtest.Count(t, db, &models.Notification{}, "user_id = ?", 1))
}

func TestDispatcher_NotifyAfterCloseDrops(t *testing.T) {
	db := dbtest.Open(t)
	d := NewDispatcher(db, zap.NewNop(), 4)
	d.Close()
	d.Close()

	d.Notify(note(1, "late"))

	assert.Equal(t, int64(1), d.Stats().Dropped)
	assert.Equal(t, int64(0), dbtest.Count(t, db, &models.Notification{}, ""))
}

func TestDispatcher_StorageFailureIsCounted(t *testing.T) {
	db := dbtest.Open(t)
	require.NoError(t, config.CloseDB(db))

	d := NewDispatcher(db, zap.NewNop(), 4)
	d.Notify(note(1, "lost"))
	d.Close()

	assert.Equal(t, int64(1), d.Stats().Failed)
	assert.Equal(t, int64(0), d.Stats().Delivered)
}

func TestDispatcher_SkipsNotificationsForDeletedOrders(t *testing.T) {
	db := dbtest.Open(t)
	order := &models.Order{CustomerID: 1, ProductName: "lamp", DeliveryLocation: "here", Status: models.StatusPending}
	require.NoError(t, db.Create(order).Error)

	live, gone := order.ID, order.ID+100
	d := NewDispatcher(db, zap.NewNop(), 4)
	n := note(1, "for a live order")
	n.OrderID = &live
	d.Notify(n)
	n = note(1, "for a deleted order")
	n.OrderID = &gone
	d.Notify(n)
	d.Close()

	assert.Equal(t, Stats{Delivered: 1, Dropped: 1}, d.Stats())
	assert.Equal(t, int64(0), dbtest.Count(t, db, &models.Notification{}, "order_id = ?", gone))
	assert.Equal(t, int64(1), dbtest.Count(t, db, &models.Notification{}, "order_id = ?", live))
}

func TestInbox(t *testing.T) {
	db := dbtest.Open(t)
	inbox := NewInbox(db)
	ctx := context.Background()

	for _, n := range []models.Notification{note(1, "a"), note(1, "b"), note(1, "c"), note(2, "other")} {
		n := n
		require.NoError(t, db.Create(&n).Error)
	}

	list, err := inbox.List(ctx, 1, false)
	require.NoError(t, err)
	require.Len(t, list, 3)

	unread, err := inbox.UnreadCount(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(3), unread)

	t.Run("mark read is scoped to the owner", func(t *testing.T) {
		ok, err := inbox.MarkRead(ctx, 2, list[0].ID)
		require.NoError(t, err)
		assert.False(t, ok)

		ok, err = inbox.MarkRead(ctx, 1, list[0].ID)
		require.NoError(t, err)
		assert.True(t, ok)

		only, err := inbox.List(ctx, 1, true)
		require.NoError(t, err)
		assert.Len(t, only, 2)
	})

	t.Run("mark all read", func(t *testing.T) {
		n, err := inbox.MarkAllRead(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)

		unread, err := inbox.UnreadCount(ctx, 1)
		require.NoError(t, err)
		assert.Zero(t, unread)
	})

	t.Run("delete", func(t *testing.T) {
		ok, err := inbox.Delete(ctx, 2, list[1].ID)
		require.NoError(t, err)
		assert.False(t, ok)

		ok, err = inbox.Delete(ctx, 1, list[1].ID)
		require.NoError(t, err)
		assert.True(t, ok)

		rest, err := inbox.List(ctx, 1, false)
		require.NoError(t, err)
		assert.Len(t, rest, 2)
	})
}
