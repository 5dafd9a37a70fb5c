package lifecycle

import (
	"context"
	"errors"
	"testing"

	"peer-delivery-api/config"
	"peer-delivery-api/dbtest"
	"peer-delivery-api/ledger"
	"peer-delivery-api/models"
	"peer-delivery-api/notify"
	"peer-delivery-api/session"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

type fixture struct {
	db         *gorm.DB
	svc        *Service
	dispatcher *notify.Dispatcher
	customer   session.Session
	partnerA   session.Session
	partnerB   session.Session
	admin      session.Session
}

func newFixture(t *testing.T, opts Options) *fixture {
	t.Helper()
	db := dbtest.Open(t)
	d := notify.NewDispatcher(db, zap.NewNop(), 64)
	t.Cleanup(d.Close)

	return &fixture{
		db:         db,
		svc:        NewService(db, d, zap.NewNop(), opts),
		dispatcher: d,
		customer:   session.FromUser(dbtest.User(t, db, "customer@example.com", false)),
		partnerA:   session.FromUser(dbtest.User(t, db, "a@example.com", false)),
		partnerB:   session.FromUser(dbtest.User(t, db, "b@example.com", false)),
		admin:      session.FromUser(dbtest.User(t, db, "admin@example.com", true)),
	}
}

func fee(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func (f *fixture) create(t *testing.T, amount string) *models.Order {
	t.Helper()
	order, err := f.svc.Create(context.Background(), f.customer, CreateOrderInput{
		ProductName:      "Groceries",
		DeliveryLocation: "12 Main St",
		TimeFrom:         "09:00",
		TimeTo:           "11:30",
		Fee:              fee(amount),
	})
	require.NoError(t, err)
	return order
}

func (f *fixture) status(t *testing.T, orderID uint) models.OrderStatus {
	t.Helper()
	order, err := f.svc.Get(context.Background(), orderID)
	require.NoError(t, err)
	return order.Status
}

// failOn makes every create or delete against table fail for the rest of the test.
func failOn(t *testing.T, db *gorm.DB, kind, table string) {
	t.Helper()
	name := "test:fail_" + kind + "_" + table
	hook := func(tx *gorm.DB) {
		if tx.Statement.Table == table {
			_ = tx.AddError(errors.New("disk I/O error"))
		}
	}
	switch kind {
	case "create":
		require.NoError(t, db.Callback().Create().Before("gorm:create").Register(name, hook))
		t.Cleanup(func() { _ = db.Callback().Create().Remove(name) })
	case "delete":
		require.NoError(t, db.Callback().Delete().Before("gorm:delete").Register(name, hook))
		t.Cleanup(func() { _ = db.Callback().Delete().Remove(name) })
	default:
		t.Fatalf("unknown callback kind %q", kind)
	}
}

// advance drives order to PICKED_UP via partner A.
func (f *fixture) advance(t *testing.T, orderID uint) {
	t.Helper()
	ctx := context.Background()
	ok, err := f.svc.Accept(ctx, f.partnerA, orderID)
	require.NoError(t, err)
	require.True(t, ok)
	ok, err = f.svc.MarkPickedUp(ctx, f.partnerA, orderID)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestCreate(t *testing.T) {
	f := newFixture(t, Options{})
	ctx := context.Background()

	t.Run("new order is pending", func(t *testing.T) {
		order := f.create(t, "12.50")
		assert.NotZero(t, order.ID)
		assert.Equal(t, models.StatusPending, order.Status)
		assert.Equal(t, f.customer.UserID, order.CustomerID)
		assert.True(t, fee("12.50").Equal(order.Fee))
	})

	tests := []struct {
		name string
		in   CreateOrderInput
	}{
		{"blank product", CreateOrderInput{DeliveryLocation: "x", Fee: fee("1")}},
		{"blank location", CreateOrderInput{ProductName: "x", Fee: fee("1")}},
		{"negative fee", CreateOrderInput{ProductName: "x", DeliveryLocation: "y", Fee: fee("-0.01")}},
		{"sub-cent fee", CreateOrderInput{ProductName: "x", DeliveryLocation: "y", Fee: fee("1.005")}},
		{"bad time", CreateOrderInput{ProductName: "x", DeliveryLocation: "y", TimeFrom: "25:99"}},
		{"inverted window", CreateOrderInput{ProductName: "x", DeliveryLocation: "y", TimeFrom: "12:00", TimeTo: "08:00"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Create(ctx, f.customer, tt.in)
			assert.ErrorIs(t, err, models.ErrValidation)
		})
	}

	t.Run("requires a session", func(t *testing.T) {
		_, err := f.svc.Create(ctx, session.Session{}, CreateOrderInput{ProductName: "x", DeliveryLocation: "y"})
		assert.ErrorIs(t, err, models.ErrUnauthenticated)
	})

	t.Run("emits a created notification", func(t *testing.T) {
		f.dispatcher.Close()
		assert.Equal(t, int64(1), dbtest.Count(t, f.db, &models.Notification{},
			"user_id = ? AND type = ?", f.customer.UserID, models.NotifyOrderCreated))
	})
}

func TestExampleScenario(t *testing.T) {
	f := newFixture(t, Options{})
	ctx := context.Background()

	order := f.create(t, "12.50")
	assert.Equal(t, models.StatusPending, f.status(t, order.ID))

	ok, err := f.svc.Accept(ctx, f.partnerA, order.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, models.StatusAccepted, f.status(t, order.ID))

	got, err := f.svc.Get(ctx, order.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Delivery)
	assert.Equal(t, f.partnerA.UserID, got.Delivery.PartnerID)
	assert.Equal(t, models.DeliveryAccepted, got.Delivery.Status)

	ok, err = f.svc.Accept(ctx, f.partnerB, order.ID)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, models.StatusAccepted, f.status(t, order.ID))
	assert.Equal(t, int64(1), dbtest.Count(t, f.db, &models.Delivery{}, "order_id = ?", order.ID))

	ok, err = f.svc.MarkPickedUp(ctx, f.partnerA, order.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, models.StatusPickedUp, f.status(t, order.ID))

	ok, err = f.svc.Complete(ctx, f.partnerA, order.ID, fee("12.50"))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, models.StatusDelivered, f.status(t, order.ID))

	earnings, err := ledger.New(f.db).ForOrder(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, earnings, 1)
	assert.Equal(t, f.partnerA.UserID, earnings[0].PartnerID)
	assert.True(t, fee("12.50").Equal(earnings[0].Amount))

	got, err = f.svc.Get(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.DeliveryDelivered, got.Delivery.Status)
	assert.NotNil(t, got.Delivery.PickupTime)
	assert.NotNil(t, got.Delivery.DeliveredTime)

	history, err := f.svc.History(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, history, 4)
	assert.Equal(t, models.StatusPickedUp, history[3].FromStatus)
	assert.Equal(t, models.StatusDelivered, history[3].ToStatus)

	f.dispatcher.Close()
	assert.Equal(t, int64(4), dbtest.Count(t, f.db, &models.Notification{}, "user_id = ?", f.customer.UserID))
	assert.Equal(t, int64(1), dbtest.Count(t, f.db, &models.Notification{},
		"user_id = ? AND type = ?", f.partnerA.UserID, models.NotifyEarningRecorded))
}

func TestAccept(t *testing.T) {
	t.Run("concurrent accepts have exactly one winner", func(t *testing.T) {
		f := newFixture(t, Options{})
		order := f.create(t, "5")

		results := make([]bool, 2)
		var g errgroup.Group
		for i, partner := range []session.Session{f.partnerA, f.partnerB} {
			i, partner := i, partner
			g.Go(func() error {
				ok, err := f.svc.Accept(context.Background(), partner, order.ID)
				results[i] = ok
				return err
			})
		}
		require.NoError(t, g.Wait())

		assert.True(t, results[0] != results[1], "exactly one accept must win: %v", results)
		assert.Equal(t, int64(1), dbtest.Count(t, f.db, &models.Delivery{}, "order_id = ?", order.ID))
		assert.Equal(t, models.StatusAccepted, f.status(t, order.ID))
	})

	t.Run("customer cannot accept own order", func(t *testing.T) {
		f := newFixture(t, Options{})
		order := f.create(t, "5")

		ok, err := f.svc.Accept(context.Background(), f.customer, order.ID)
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Equal(t, models.StatusPending, f.status(t, order.ID))
	})

	t.Run("unknown order", func(t *testing.T) {
		f := newFixture(t, Options{})
		ok, err := f.svc.Accept(context.Background(), f.partnerA, 999)
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestMarkPickedUp(t *testing.T) {
	f := newFixture(t, Options{})
	ctx := context.Background()
	order := f.create(t, "5")

	t.Run("requires accepted", func(t *testing.T) {
		ok, err := f.svc.MarkPickedUp(ctx, f.partnerA, order.ID)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	ok, err := f.svc.Accept(ctx, f.partnerA, order.ID)
	require.NoError(t, err)
	require.True(t, ok)

	t.Run("requires the assigned partner", func(t *testing.T) {
		ok, err := f.svc.MarkPickedUp(ctx, f.partnerB, order.ID)
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Equal(t, models.StatusAccepted, f.status(t, order.ID))
	})

	t.Run("assigned partner picks up", func(t *testing.T) {
		ok, err := f.svc.MarkPickedUp(ctx, f.partnerA, order.ID)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, models.StatusPickedUp, f.status(t, order.ID))
	})
}

func TestMarkOnTheWay(t *testing.T) {
	t.Run("lenient mode lets any partner move it", func(t *testing.T) {
		f := newFixture(t, Options{})
		order := f.create(t, "5")
		f.advance(t, order.ID)

		ok, err := f.svc.MarkOnTheWay(context.Background(), f.partnerB, order.ID)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, models.StatusOnTheWay, f.status(t, order.ID))
	})

	t.Run("strict mode requires the assigned partner", func(t *testing.T) {
		f := newFixture(t, Options{StrictOnTheWay: true})
		order := f.create(t, "5")
		f.advance(t, order.ID)

		ok, err := f.svc.MarkOnTheWay(context.Background(), f.partnerB, order.ID)
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Equal(t, models.StatusPickedUp, f.status(t, order.ID))

		ok, err = f.svc.MarkOnTheWay(context.Background(), f.partnerA, order.ID)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("requires picked up", func(t *testing.T) {
		f := newFixture(t, Options{})
		order := f.create(t, "5")

		ok, err := f.svc.MarkOnTheWay(context.Background(), f.partnerA, order.ID)
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestComplete(t *testing.T) {
	t.Run("second complete fails and adds no earning", func(t *testing.T) {
		f := newFixture(t, Options{})
		ctx := context.Background()
		order := f.create(t, "9.75")
		f.advance(t, order.ID)

		ok, err := f.svc.MarkOnTheWay(ctx, f.partnerA, order.ID)
		require.NoError(t, err)
		require.True(t, ok)

		ok, err = f.svc.Complete(ctx, f.partnerA, order.ID, fee("9.75"))
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = f.svc.Complete(ctx, f.partnerA, order.ID, fee("9.75"))
		require.NoError(t, err)
		assert.False(t, ok)

		assert.Equal(t, int64(1), dbtest.Count(t, f.db, &models.Earning{}, "order_id = ?", order.ID))
		assert.Equal(t, models.StatusDelivered, f.status(t, order.ID))
	})

	t.Run("only the assigned partner completes", func(t *testing.T) {
		f := newFixture(t, Options{})
		order := f.create(t, "3")
		f.advance(t, order.ID)

		ok, err := f.svc.Complete(context.Background(), f.partnerB, order.ID, fee("3"))
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Equal(t, int64(0), dbtest.Count(t, f.db, &models.Earning{}, ""))
	})

	t.Run("cannot complete from accepted", func(t *testing.T) {
		f := newFixture(t, Options{})
		order := f.create(t, "3")
		ok, err := f.svc.Accept(context.Background(), f.partnerA, order.ID)
		require.NoError(t, err)
		require.True(t, ok)

		ok, err = f.svc.Complete(context.Background(), f.partnerA, order.ID, fee("3"))
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("negative fee is a validation error", func(t *testing.T) {
		f := newFixture(t, Options{})
		_, err := f.svc.Complete(context.Background(), f.partnerA, 1, fee("-1"))
		assert.ErrorIs(t, err, models.ErrValidation)
	})

	t.Run("sub-cent fee is a validation error", func(t *testing.T) {
		f := newFixture(t, Options{})
		order := f.create(t, "1")
		f.advance(t, order.ID)

		ok, err := f.svc.Complete(context.Background(), f.partnerA, order.ID, fee("1.001"))
		assert.ErrorIs(t, err, models.ErrValidation)
		assert.False(t, ok)
		assert.Equal(t, models.StatusPickedUp, f.status(t, order.ID))
	})

	t.Run("failed earning insert rolls the delivery back", func(t *testing.T) {
		f := newFixture(t, Options{})
		ctx := context.Background()
		order := f.create(t, "6.40")
		f.advance(t, order.ID)
		failOn(t, f.db, "create", "earnings")

		ok, err := f.svc.Complete(ctx, f.partnerA, order.ID, fee("6.40"))
		assert.Error(t, err)
		assert.False(t, ok)

		got, err := f.svc.Get(ctx, order.ID)
		require.NoError(t, err)
		assert.Equal(t, models.StatusPickedUp, got.Status)
		require.NotNil(t, got.Delivery)
		assert.Equal(t, models.DeliveryPickedUp, got.Delivery.Status)
		assert.Nil(t, got.Delivery.DeliveredTime)
		assert.Equal(t, int64(0), dbtest.Count(t, f.db, &models.Earning{}, ""))
		assert.Equal(t, int64(0), dbtest.Count(t, f.db, &models.OrderStatusHistory{},
			"order_id = ? AND to_status = ?", order.ID, models.StatusDelivered))
	})

	t.Run("partner earnings equal the sum of completed fees", func(t *testing.T) {
		f := newFixture(t, Options{})
		ctx := context.Background()
		for _, amount := range []string{"4.50", "10", "0.25"} {
			order := f.create(t, amount)
			f.advance(t, order.ID)
			ok, err := f.svc.Complete(ctx, f.partnerA, order.ID, fee(amount))
			require.NoError(t, err)
			require.True(t, ok)
		}
		total, err := ledger.New(f.db).PartnerTotal(ctx, f.partnerA.UserID)
		require.NoError(t, err)
		assert.True(t, fee("14.75").Equal(total), total.String())
	})
}

func TestCancel(t *testing.T) {
	t.Run("lenient cancel even after delivery", func(t *testing.T) {
		f := newFixture(t, Options{})
		ctx := context.Background()
		order := f.create(t, "2")
		f.advance(t, order.ID)
		ok, err := f.svc.Complete(ctx, f.partnerA, order.ID, fee("2"))
		require.NoError(t, err)
		require.True(t, ok)

		ok, err = f.svc.Cancel(ctx, f.customer, order.ID)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, models.StatusCancelled, f.status(t, order.ID))

		// the ledger is append-only: cancelling does not remove the earning
		assert.Equal(t, int64(1), dbtest.Count(t, f.db, &models.Earning{}, "order_id = ?", order.ID))
	})

	t.Run("strict cancel refuses terminal orders", func(t *testing.T) {
		f := newFixture(t, Options{StrictCancel: true})
		ctx := context.Background()
		order := f.create(t, "2")
		f.advance(t, order.ID)
		ok, err := f.svc.Complete(ctx, f.partnerA, order.ID, fee("2"))
		require.NoError(t, err)
		require.True(t, ok)

		ok, err = f.svc.Cancel(ctx, f.customer, order.ID)
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Equal(t, models.StatusDelivered, f.status(t, order.ID))
	})

	t.Run("strict cancel allows pending", func(t *testing.T) {
		f := newFixture(t, Options{StrictCancel: true})
		order := f.create(t, "2")

		ok, err := f.svc.Cancel(context.Background(), f.customer, order.ID)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("cancelled orders cannot be accepted", func(t *testing.T) {
		f := newFixture(t, Options{})
		order := f.create(t, "2")
		ok, err := f.svc.Cancel(context.Background(), f.customer, order.ID)
		require.NoError(t, err)
		require.True(t, ok)

		ok, err = f.svc.Accept(context.Background(), f.partnerA, order.ID)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("strangers are forbidden, admins allowed", func(t *testing.T) {
		f := newFixture(t, Options{})
		order := f.create(t, "2")

		_, err := f.svc.Cancel(context.Background(), f.partnerB, order.ID)
		assert.ErrorIs(t, err, models.ErrForbidden)

		ok, err := f.svc.Cancel(context.Background(), f.admin, order.ID)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("partner cancel notifies the customer", func(t *testing.T) {
		f := newFixture(t, Options{})
		order := f.create(t, "2")
		ok, err := f.svc.Accept(context.Background(), f.partnerA, order.ID)
		require.NoError(t, err)
		require.True(t, ok)

		ok, err = f.svc.Cancel(context.Background(), f.partnerA, order.ID)
		require.NoError(t, err)
		require.True(t, ok)

		f.dispatcher.Close()
		assert.Equal(t, int64(1), dbtest.Count(t, f.db, &models.Notification{},
			"user_id = ? AND type = ?", f.customer.UserID, models.NotifyOrderCancelled))
	})

	t.Run("customer cancel notifies the assigned partner", func(t *testing.T) {
		f := newFixture(t, Options{})
		ctx := context.Background()
		order := f.create(t, "2")
		f.advance(t, order.ID)

		ok, err := f.svc.Cancel(ctx, f.customer, order.ID)
		require.NoError(t, err)
		require.True(t, ok)

		history, err := f.svc.History(ctx, order.ID)
		require.NoError(t, err)
		last := history[len(history)-1]
		assert.Equal(t, models.StatusCancelled, last.ToStatus)
		assert.Equal(t, "Order cancelled by customer", last.Note)

		f.dispatcher.Close()
		assert.Equal(t, int64(1), dbtest.Count(t, f.db, &models.Notification{},
			"user_id = ? AND type = ?", f.partnerA.UserID, models.NotifyOrderCancelled))
	})

	t.Run("role is resolved from the order at cancel time", func(t *testing.T) {
		f := newFixture(t, Options{StrictCancel: true})
		ctx := context.Background()
		order := f.create(t, "2")

		_, err := f.svc.Cancel(ctx, f.partnerA, order.ID)
		assert.ErrorIs(t, err, models.ErrForbidden)

		ok, err := f.svc.Accept(ctx, f.partnerA, order.ID)
		require.NoError(t, err)
		require.True(t, ok)

		ok, err = f.svc.Cancel(ctx, f.partnerA, order.ID)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, models.StatusCancelled, f.status(t, order.ID))
	})

	t.Run("unknown order", func(t *testing.T) {
		f := newFixture(t, Options{})
		ok, err := f.svc.Cancel(context.Background(), f.customer, 12345)
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestDeleteOrder(t *testing.T) {
	f := newFixture(t, Options{})
	ctx := context.Background()
	order := f.create(t, "12.50")
	keep := f.create(t, "1")
	f.advance(t, order.ID)
	ok, err := f.svc.Complete(ctx, f.partnerA, order.ID, fee("12.50"))
	require.NoError(t, err)
	require.True(t, ok)
	require.NoError(t, f.db.Create(&models.Rating{
		OrderID: order.ID, CustomerID: f.customer.UserID, PartnerID: f.partnerA.UserID, Score: 5,
	}).Error)
	f.dispatcher.Close()

	t.Run("non-admin is forbidden", func(t *testing.T) {
		_, err := f.svc.DeleteOrder(ctx, f.customer, order.ID)
		assert.ErrorIs(t, err, models.ErrForbidden)
	})

	t.Run("failed cascade leaves every row in place", func(t *testing.T) {
		failOn(t, f.db, "delete", "deliveries")

		ok, err := f.svc.DeleteOrder(ctx, f.admin, order.ID)
		assert.Error(t, err)
		assert.False(t, ok)

		for _, model := range []any{&models.Delivery{}, &models.Earning{}, &models.Notification{}, &models.Rating{}, &models.OrderStatusHistory{}, &models.Order{}} {
			assert.NotZero(t, dbtest.Count(t, f.db, model, "order_id = ?", order.ID), "%T", model)
		}
	})

	t.Run("cascade removes every dependent row", func(t *testing.T) {
		ok, err := f.svc.DeleteOrder(ctx, f.admin, order.ID)
		require.NoError(t, err)
		assert.True(t, ok)

		for _, model := range []any{&models.Delivery{}, &models.Earning{}, &models.Notification{}, &models.Rating{}, &models.OrderStatusHistory{}, &models.Order{}} {
			assert.Equal(t, int64(0), dbtest.Count(t, f.db, model, "order_id = ?", order.ID))
		}
		assert.Equal(t, int64(1), dbtest.Count(t, f.db, &models.Order{}, "order_id = ?", keep.ID))
	})

	t.Run("missing order", func(t *testing.T) {
		ok, err := f.svc.DeleteOrder(ctx, f.admin, order.ID)
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestQueries(t *testing.T) {
	f := newFixture(t, Options{})
	ctx := context.Background()
	first := f.create(t, "1")
	second := f.create(t, "2")
	f.advance(t, first.ID)

	available, err := f.svc.ListAvailable(ctx, f.partnerB.UserID)
	require.NoError(t, err)
	require.Len(t, available, 1)
	assert.Equal(t, second.ID, available[0].ID)

	own, err := f.svc.ListAvailable(ctx, f.customer.UserID)
	require.NoError(t, err)
	assert.Empty(t, own)

	mine, err := f.svc.ListByCustomer(ctx, f.customer.UserID)
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	deliveries, err := f.svc.ListByPartner(ctx, f.partnerA.UserID)
	require.NoError(t, err)
	require.Len(t, deliveries, 1)
	assert.Equal(t, first.ID, deliveries[0].ID)
	require.NotNil(t, deliveries[0].Delivery)

	picked, err := f.svc.ListAll(ctx, models.StatusPickedUp)
	require.NoError(t, err)
	assert.Len(t, picked, 1)

	_, err = f.svc.ListAll(ctx, "LOST")
	assert.ErrorIs(t, err, models.ErrValidation)

	summary, err := f.svc.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), summary[models.StatusPending])
	assert.Equal(t, int64(1), summary[models.StatusPickedUp])
	assert.Equal(t, int64(0), summary[models.StatusDelivered])
	assert.Len(t, summary, len(models.AllStatuses))

	_, err = f.svc.Get(ctx, 4242)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestStorageErrorsSurface(t *testing.T) {
	f := newFixture(t, Options{})
	order := f.create(t, "1")
	require.NoError(t, config.CloseDB(f.db))

	ok, err := f.svc.Accept(context.Background(), f.partnerA, order.ID)
	assert.Error(t, err)
	assert.False(t, ok)
}
