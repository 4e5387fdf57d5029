//go:build integration

package router_test

// Runs the HTTP surface against real Postgres and Redis containers.
// go test -tags integration ./internal/router/...

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/ajitseee/sweetshop/internal/config"
	"github.com/ajitseee/sweetshop/internal/dto"
	"github.com/ajitseee/sweetshop/internal/infra"
	"github.com/ajitseee/sweetshop/internal/router"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	tcRedis "github.com/testcontainers/testcontainers-go/modules/redis"
	"github.com/testcontainers/testcontainers-go/wait"
	"golang.org/x/crypto/bcrypt"
)

func newContainerServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	pgC, err := tcPostgres.Run(ctx, "postgres:16-alpine",
		tcPostgres.WithDatabase("sweetshop_test"),
		tcPostgres.WithUsername("sweetshop"),
		tcPostgres.WithPassword("sweetshop"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pgC.Terminate(context.Background()) })

	pgURL, err := pgC.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	rdC, err := tcRedis.Run(ctx, "redis:7-alpine")
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdC.Terminate(context.Background()) })

	rdURL, err := rdC.ConnectionString(ctx)
	require.NoError(t, err)

	cfg := &config.Config{
		Port:               8000,
		Env:                "test",
		DatabaseURL:        pgURL,
		RedisURL:           rdURL,
		CacheTTLSeconds:    60,
		JWTSecret:          "test-secret-key",
		JWTExpirationHours: 1,
		BcryptCost:         bcrypt.MinCost,
	}

	// NewDatabase applies the embedded migrations.
	db, err := infra.NewDatabase(cfg.DatabaseURL)
	require.NoError(t, err)
	rdb, err := infra.NewRedis(cfg.RedisURL)
	require.NoError(t, err)
	require.NotNil(t, rdb)
	t.Cleanup(func() { _ = rdb.Close() })

	return &testServer{t: t, h: router.New(ctx, cfg, db, rdb)}
}

func TestIntegration_HealthReportsBothBackends(t *testing.T) {
	s := newContainerServer(t)
	w := s.do(http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := decode[map[string]string](t, w)
	assert.Equal(t, "connected", body["db"])
	assert.Equal(t, "connected", body["redis"])
}

func TestIntegration_CachedListSeesWrites(t *testing.T) {
	s := newContainerServer(t)
	admin := s.register("boss", "boss@example.com", "admin").Token

	w := s.do(http.MethodPost, "/api/sweets", admin, gin.H{"name": "Candy", "category": "Hard", "price": 1.5, "quantity": 10})
	require.Equal(t, http.StatusCreated, w.Code)
	id := decode[dto.SweetResponse](t, w).ID

	// Prime the cache, then mutate and read again.
	require.Len(t, decode[[]dto.SweetResponse](t, s.do(http.MethodGet, "/api/sweets", admin, nil)), 1)
	require.Equal(t, http.StatusOK, s.do(http.MethodPost, "/api/sweets/"+id+"/purchase", admin, gin.H{"quantity": 4}).Code)

	list := decode[[]dto.SweetResponse](t, s.do(http.MethodGet, "/api/sweets", admin, nil))
	require.Len(t, list, 1)
	assert.Equal(t, 6, list[0].Quantity)

	found := decode[[]dto.SweetResponse](t, s.do(http.MethodGet, "/api/sweets/search?name=CAN", admin, nil))
	require.Len(t, found, 1)
	assert.Equal(t, 6, found[0].Quantity)
}

func TestIntegration_ConcurrentPurchasesNeverOversell(t *testing.T) {
	s := newContainerServer(t)
	admin := s.register("boss", "boss@example.com", "admin").Token
	user := s.register("jane", "jane@example.com", "").Token

	w := s.do(http.MethodPost, "/api/sweets", admin, gin.H{"name": "Truffle", "category": "Chocolate", "price": 3, "quantity": 10})
	require.Equal(t, http.StatusCreated, w.Code)
	id := decode[dto.SweetResponse](t, w).ID

	const buyers = 25
	codes := make([]int, buyers)
	var wg sync.WaitGroup
	for i := 0; i < buyers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			codes[i] = s.do(http.MethodPost, "/api/sweets/"+id+"/purchase", user, gin.H{"quantity": 1}).Code
		}(i)
	}
	wg.Wait()

	ok := 0
	for _, code := range codes {
		if code == http.StatusOK {
			ok++
		} else {
			assert.Equal(t, http.StatusBadRequest, code)
		}
	}
	assert.Equal(t, 10, ok)

	got := decode[dto.SweetResponse](t, s.do(http.MethodGet, "/api/sweets/"+id, user, nil))
	assert.Equal(t, 0, got.Quantity)
}
