package jobs_test

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/royalton/portal/internal/jobs"
	"github.com/royalton/portal/internal/shipping"
	"github.com/royalton/portal/internal/store"
	"github.com/royalton/portal/pkg/logger"
	"github.com/royalton/portal/pkg/mailer"
	"github.com/royalton/portal/pkg/storage"
)

var now = time.Date(2026, 5, 4, 9, 30, 0, 0, time.UTC)

type outbox struct {
	mu   sync.Mutex
	sent []*mailer.Email
}

func (o *outbox) Send(_ context.Context, e *mailer.Email) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.sent = append(o.sent, e)
	return nil
}

type bucket struct {
	objects map[string][]byte
	types   map[string]string
}

func newBucket() *bucket {
	return &bucket{objects: map[string][]byte{}, types: map[string]string{}}
}

func (b *bucket) Put(_ context.Context, key string, body io.ReadSeeker, size int64, contentType string) (*storage.Object, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, err
	}
	if int64(len(data)) != size {
		return nil, errors.New("size mismatch")
	}
	b.objects[key] = data
	b.types[key] = contentType
	return &storage.Object{Key: key, Size: size, ContentType: contentType}, nil
}

func (b *bucket) Get(_ context.Context, key string) (io.ReadCloser, error) {
	data, ok := b.objects[key]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (b *bucket) Delete(_ context.Context, key string) error {
	delete(b.objects, key)
	return nil
}

func (b *bucket) DownloadURL(_ context.Context, key, filename string, _ time.Duration) (string, error) {
	return "https://files.example.com/" + key + "?filename=" + filename, nil
}

func newDeps(t *testing.T) (jobs.Deps, *store.Memory, *outbox) {
	t.Helper()
	st := store.NewMemory(store.WithClock(func() time.Time { return now }))
	box := &outbox{}
	renderer := mailer.NewRenderer(jobs.Emails(), mailer.Config{
		FallbackSubject: "Royalton Logistics",
		ProductName:     "Royalton Logistics",
		BaseURL:         "https://royalton.example",
	})
	return jobs.Deps{
		Store:   st,
		Mailer:  mailer.New(box, renderer),
		Logger:  logger.NewNope(),
		BaseURL: "https://royalton.example",
		Now:     func() time.Time { return now },
	}, st, box
}

func TestShipmentCreated(t *testing.T) {
	t.Parallel()

	t.Run("notifies and emails the recipient", func(t *testing.T) {
		t.Parallel()
		d, st, box := newDeps(t)
		ctx := context.Background()

		eta := now.AddDate(0, 0, 3)
		s := &shipping.Shipment{
			UserID:            "u1",
			TrackingNumber:    "TXP42",
			Status:            shipping.StatusPending,
			ServiceType:       shipping.ServiceDomestic,
			Origin:            shipping.Address{City: "Leeds", Country: "UK"},
			Destination:       shipping.Address{City: "Hull", Country: "UK"},
			Recipient:         shipping.Recipient{Name: "Ada", Email: "ada@example.com"},
			EstimatedDelivery: &eta,
		}
		require.NoError(t, st.CreateShipment(ctx, s))

		err := jobs.NewShipmentCreated(d).Handle(ctx, jobs.ShipmentCreated{
			ShipmentID: s.ID, UserID: "u1", TrackingNumber: s.TrackingNumber,
		})
		require.NoError(t, err)

		list, err := st.UserNotifications(ctx, "u1", 0)
		require.NoError(t, err)
		require.Len(t, list, 1)
		require.Equal(t, shipping.NotifyShipmentCreated, list[0].Type)
		require.Equal(t, "/track?number=TXP42", list[0].Link)
		require.False(t, list[0].IsRead)

		require.Len(t, box.sent, 1)
		require.Equal(t, "Shipment TXP42 is booked", box.sent[0].Subject)
		require.Equal(t, []string{`"Ada" <ada@example.com>`}, box.sent[0].To)
		require.Contains(t, box.sent[0].HTML, "https://royalton.example/track?number=TXP42")
		require.Contains(t, box.sent[0].Text, "May 7, 2026")
	})

	t.Run("missing shipment is dropped", func(t *testing.T) {
		t.Parallel()
		d, st, box := newDeps(t)

		err := jobs.NewShipmentCreated(d).Handle(context.Background(), jobs.ShipmentCreated{ShipmentID: "gone", UserID: "u1"})
		require.NoError(t, err)

		list, err := st.UserNotifications(context.Background(), "u1", 0)
		require.NoError(t, err)
		require.Empty(t, list)
		require.Empty(t, box.sent)
	})
}

func TestExpireQuotes(t *testing.T) {
	t.Parallel()
	d, st, _ := newDeps(t)
	ctx := context.Background()

	stale := &shipping.Quote{UserID: "u1", Status: shipping.QuoteQuoted, ValidUntil: now.Add(-time.Hour)}
	fresh := &shipping.Quote{UserID: "u1", Status: shipping.QuoteQuoted, ValidUntil: now.Add(time.Hour)}
	require.NoError(t, st.AddQuote(ctx, stale))
	require.NoError(t, st.AddQuote(ctx, fresh))

	task := jobs.NewExpireQuotes(d)
	require.Equal(t, "@hourly", task.Schedule())
	require.NoError(t, task.Handle(ctx))

	quotes, err := st.UserQuotes(ctx, "u1")
	require.NoError(t, err)
	status := map[string]shipping.QuoteStatus{}
	for _, q := range quotes {
		status[q.ID] = q.Status
	}
	require.Equal(t, shipping.QuoteExpired, status[stale.ID])
	require.Equal(t, shipping.QuoteQuoted, status[fresh.ID])
}

func TestExportShipments(t *testing.T) {
	t.Parallel()

	t.Run("requires storage", func(t *testing.T) {
		t.Parallel()
		d, _, _ := newDeps(t)

		err := jobs.NewExportShipments(d).Handle(context.Background(), jobs.ExportRequest{UserID: "admin"})
		require.ErrorIs(t, err, storage.ErrNotConfigured)
	})

	t.Run("uploads filtered csv and notifies", func(t *testing.T) {
		t.Parallel()
		d, st, box := newDeps(t)
		b := newBucket()
		d.Storage = b
		ctx := context.Background()

		admin := &shipping.User{Email: "ops@example.com", DisplayName: "Ops", Role: shipping.RoleAdmin}
		require.NoError(t, st.CreateUser(ctx, admin))
		for _, s := range []*shipping.Shipment{
			{TrackingNumber: "TXP1", Status: shipping.StatusInTransit},
			{TrackingNumber: "TXP2", Status: shipping.StatusDelivered},
			{TrackingNumber: "TXP3", Status: shipping.StatusInTransit},
		} {
			require.NoError(t, st.CreateShipment(ctx, s))
		}

		err := jobs.NewExportShipments(d).Handle(ctx, jobs.ExportRequest{UserID: admin.ID, Status: string(shipping.StatusInTransit)})
		require.NoError(t, err)

		require.Len(t, b.objects, 1)
		var key string
		for k := range b.objects {
			key = k
		}
		require.True(t, strings.HasPrefix(key, "exports/shipments-"))
		require.True(t, strings.HasSuffix(key, ".csv"))
		require.Equal(t, "text/csv", b.types[key])

		rows, err := csv.NewReader(bytes.NewReader(b.objects[key])).ReadAll()
		require.NoError(t, err)
		require.Len(t, rows, 3)

		list, err := st.UserNotifications(ctx, admin.ID, 0)
		require.NoError(t, err)
		require.Len(t, list, 1)
		require.Equal(t, shipping.NotifyExportReady, list[0].Type)
		require.Contains(t, list[0].Link, key)
		require.Contains(t, list[0].Message, "2 shipments exported")

		require.Len(t, box.sent, 1)
		require.Equal(t, "Your shipment export is ready", box.sent[0].Subject)
	})
}

func TestOptions(t *testing.T) {
	t.Parallel()
	d, _, _ := newDeps(t)
	require.Len(t, jobs.Options(d), 3)
}
