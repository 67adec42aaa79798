package order

import (
	"context"
	"testing"
	"time"

	"github.com/Tjay-cmd/apex-nutrition-sub001/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupTestDB(t *testing.T) *PostgresRepository {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container-backed test in short mode")
	}

	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)

	host, err := pgContainer.Host(ctx)
	require.NoError(t, err)

	port, err := pgContainer.MappedPort(ctx, "5432")
	require.NoError(t, err)

	creds := &Credentials{
		Host:              host,
		Port:              port.Int(),
		User:              "testuser",
		Password:          "testpass",
		DBName:            "testdb",
		MigrationsDirPath: "../../migrations",
	}

	repo, err := NewRepository(creds)
	require.NoError(t, err)

	err = repo.RunMigrations(creds)
	require.NoError(t, err)

	t.Cleanup(func() {
		repo.Close()
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	})

	return repo
}

func newTestOrder(userID string) *domain.Order {
	orderID := uuid.New()
	return &domain.Order{
		ID:        orderID,
		UserID:    userID,
		UserEmail: userID + "@example.com",
		Status:    domain.OrderStatusPending,
		Subtotal:  500,
		Shipping:  0,
		Tax:       75,
		Total:     575,
		ShippingAddress: domain.Address{
			FirstName: "Thabo", LastName: "Nkosi", Email: userID + "@example.com",
			Phone: "0821234567", AddressLine1: "12 Protea Road",
			City: "Cape Town", State: "Western Cape", PostalCode: "8001", Country: "ZA",
		},
		BillingAddress: domain.Address{
			FirstName: "Thabo", LastName: "Nkosi", Email: userID + "@example.com",
			Phone: "0821234567", AddressLine1: "12 Protea Road",
			City: "Cape Town", State: "Western Cape", PostalCode: "8001", Country: "ZA",
		},
		Payment: domain.PaymentDescriptor{Type: domain.PaymentTypeCard, Reference: "1111"},
		Lines: []domain.OrderLine{
			{
				ID: uuid.New(), OrderID: orderID, ProductID: "p1",
				ProductName: "Whey Protein", Quantity: 2, UnitPrice: 250, LineTotal: 500,
				Options: domain.SelectedOptions{Flavor: "chocolate", Size: "1kg"},
			},
		},
	}
}

func TestCreateAndGetOrder(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	ord := newTestOrder("user-123")
	require.NoError(t, repo.CreateOrder(ctx, ord))

	fetched, err := repo.GetOrderByID(ctx, ord.ID)
	require.NoError(t, err)

	assert.Equal(t, ord.ID, fetched.ID)
	assert.Equal(t, ord.UserID, fetched.UserID)
	assert.Equal(t, domain.OrderStatusPending, fetched.Status)
	assert.InDelta(t, 575, fetched.Total, 0.001)
	assert.Equal(t, ord.ShippingAddress, fetched.ShippingAddress)
	assert.Equal(t, "1111", fetched.Payment.Reference)

	require.Len(t, fetched.Lines, 1)
	assert.Equal(t, "p1", fetched.Lines[0].ProductID)
	assert.InDelta(t, 250, fetched.Lines[0].UnitPrice, 0.001)
	assert.Equal(t, "chocolate", fetched.Lines[0].Options.Flavor)
}

func TestGetOrderByID_NotFound(t *testing.T) {
	repo := setupTestDB(t)

	_, err := repo.GetOrderByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestListOrdersByUserID(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	first := newTestOrder("user-123")
	second := newTestOrder("user-123")
	other := newTestOrder("user-456")
	require.NoError(t, repo.CreateOrder(ctx, first))
	require.NoError(t, repo.CreateOrder(ctx, second))
	require.NoError(t, repo.CreateOrder(ctx, other))

	orders, err := repo.ListOrdersByUserID(ctx, "user-123")
	require.NoError(t, err)
	assert.Len(t, orders, 2)
	for _, o := range orders {
		assert.Equal(t, "user-123", o.UserID)
		assert.Len(t, o.Lines, 1)
	}
}

func TestOutboxEventWrittenWithOrder(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	ord := newTestOrder("user-123")
	require.NoError(t, repo.CreateOrder(ctx, ord))

	events, err := repo.GetUnpublishedEvents(ctx, 10)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, ord.ID, events[0].OrderID)
	assert.Equal(t, "order.created", events[0].EventType)
	assert.NotEmpty(t, events[0].Payload)

	require.NoError(t, repo.MarkEventPublished(ctx, events[0].ID))

	events, err = repo.GetUnpublishedEvents(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, events)
}
