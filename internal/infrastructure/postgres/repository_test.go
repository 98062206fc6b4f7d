package postgres

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmc/certificados-api/internal/domain"
	"github.com/cmc/certificados-api/internal/domain/entity"
	"github.com/cmc/certificados-api/pkg/config"
)

// Pruebas contra PostgreSQL real. Requieren TEST_DATABASE_URL y no corren con -short.
// Todo se ejecuta dentro de una transacción que se revierte al terminar.

const testDatabaseURLEnv = "TEST_DATABASE_URL"

func testTx(t *testing.T) pgx.Tx {
	t.Helper()
	if testing.Short() {
		t.Skip("prueba de integración con PostgreSQL omitida en modo -short")
	}
	url := os.Getenv(testDatabaseURLEnv)
	if url == "" {
		t.Skipf("%s no definido", testDatabaseURLEnv)
	}
	ctx := context.Background()
	pool, err := NewPool(ctx, config.DBConfig{DatabaseURL: url, MaxConns: 2})
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	_, err = Migrate(ctx, pool)
	require.NoError(t, err)

	tx, err := pool.Begin(ctx)
	require.NoError(t, err)
	t.Cleanup(func() { _ = tx.Rollback(context.Background()) })
	return tx
}

// savepoint aísla una sentencia que debe fallar para no abortar la transacción de la prueba.
func savepoint(t *testing.T, tx pgx.Tx, fn func(q Querier)) {
	t.Helper()
	ctx := context.Background()
	sp, err := tx.Begin(ctx)
	require.NoError(t, err)
	fn(sp)
	require.NoError(t, sp.Rollback(ctx))
}

type chainFixture struct {
	user   *entity.User
	order  *entity.ServiceOrder
	detail *entity.ServiceDetail
}

func seedChain(t *testing.T, q Querier) chainFixture {
	t.Helper()
	ctx := context.Background()
	role := &entity.Role{Name: "Cliente-prueba"}
	require.NoError(t, NewRoleRepository(q).Create(ctx, role))
	user := &entity.User{Name: "cliente-prueba", Address: "Calle 1", Phone: "300", PasswordHash: "x", RoleID: role.ID}
	require.NoError(t, NewUserRepository(q).Create(ctx, user))

	orders := NewServiceOrderRepository(q)
	st := &entity.ServiceType{RodentControl: "Si", Description: "Control de roedores"}
	require.NoError(t, orders.CreateServiceType(ctx, st))
	order := &entity.ServiceOrder{
		Date: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), Time: "10:00", Precaution: "Ninguna",
		UserID: user.ID, ServiceTypeID: st.ID,
	}
	require.NoError(t, orders.Create(ctx, order))
	detail := &entity.ServiceDetail{
		ServiceOrderID: order.ID, Price: decimal.RequireFromString("150000.50"), OperatorName: "Luis",
	}
	require.NoError(t, orders.CreateDetail(ctx, detail))
	return chainFixture{user: user, order: order, detail: detail}
}

func TestRepositorios_CadenaReferencial(t *testing.T) {
	tx := testTx(t)
	ctx := context.Background()
	fx := seedChain(t, tx)
	certs := NewCertificateRepository(tx)

	cert := &entity.Certificate{Date: fx.order.Date, Status: entity.CertificateStatusPending, UserID: fx.user.ID, ServiceOrderID: fx.order.ID}
	require.NoError(t, certs.Create(ctx, cert))
	for _, product := range []string{"Raticida X", "Gel Y"} {
		sheet := &entity.TechnicalSheet{CertificateID: cert.ID, ServiceDetailID: &fx.detail.ID, AppliedProduct: product}
		require.NoError(t, certs.CreateSheet(ctx, sheet))
	}

	got, err := certs.GetByID(ctx, cert.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, fx.order.ID, got.ServiceOrderID)
	require.Len(t, got.Sheets, 2)
	assert.Equal(t, "Raticida X", got.Sheets[0].AppliedProduct, "fichas en orden de inserción")
	assert.Equal(t, fx.detail.ID, *got.Sheets[1].ServiceDetailID)

	order, err := NewServiceOrderRepository(tx).GetByID(ctx, got.ServiceOrderID)
	require.NoError(t, err)
	require.NotNil(t, order.ServiceType)
	assert.Equal(t, "Control de roedores", order.ServiceType.Description)
	require.Len(t, order.Details, 1)
	assert.True(t, decimal.RequireFromString("150000.50").Equal(order.Details[0].Price))
}

func TestCertificateRepo_ListPaginaYCargaFichas(t *testing.T) {
	tx := testTx(t)
	ctx := context.Background()
	fx := seedChain(t, tx)
	certs := NewCertificateRepository(tx)

	var ids []int64
	for i := 0; i < 3; i++ {
		cert := &entity.Certificate{Date: fx.order.Date, Status: "Pendiente", UserID: fx.user.ID, ServiceOrderID: fx.order.ID}
		require.NoError(t, certs.Create(ctx, cert))
		require.NoError(t, certs.CreateSheet(ctx, &entity.TechnicalSheet{CertificateID: cert.ID, AppliedProduct: "P"}))
		ids = append(ids, cert.ID)
	}

	page, err := certs.List(ctx, 2, 0)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, ids[2], page[0].ID, "más reciente primero")
	assert.Equal(t, ids[1], page[1].ID)
	for _, c := range page {
		assert.Len(t, c.Sheets, 1)
	}

	next, err := certs.List(ctx, 1, 2)
	require.NoError(t, err)
	require.Len(t, next, 1)
	assert.Equal(t, ids[0], next[0].ID)
}

func TestCertificateRepo_BorradoYReferencias(t *testing.T) {
	tx := testTx(t)
	ctx := context.Background()
	fx := seedChain(t, tx)
	certs := NewCertificateRepository(tx)

	cert := &entity.Certificate{Date: fx.order.Date, Status: "Pendiente", UserID: fx.user.ID, ServiceOrderID: fx.order.ID}
	require.NoError(t, certs.Create(ctx, cert))
	require.NoError(t, certs.CreateSheet(ctx, &entity.TechnicalSheet{CertificateID: cert.ID, AppliedProduct: "P"}))

	savepoint(t, tx, func(q Querier) {
		err := NewCertificateRepository(q).Delete(ctx, cert.ID)
		assert.True(t, errors.Is(err, domain.ErrConflict), "no se borra con fichas pendientes")
	})
	savepoint(t, tx, func(q Querier) {
		err := NewUserRepository(q).Delete(ctx, fx.user.ID)
		assert.True(t, errors.Is(err, domain.ErrConflict), "usuario con certificados")
	})
	savepoint(t, tx, func(q Querier) {
		bad := &entity.Certificate{Date: fx.order.Date, UserID: 9_000_000_000, ServiceOrderID: fx.order.ID}
		err := NewCertificateRepository(q).Create(ctx, bad)
		assert.True(t, errors.Is(err, domain.ErrReference))
	})

	n, err := certs.DeleteSheets(ctx, cert.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	require.NoError(t, certs.Delete(ctx, cert.ID))
	assert.True(t, errors.Is(certs.Delete(ctx, cert.ID), domain.ErrNotFound))

	got, err := certs.GetByID(ctx, cert.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestUserRepo_BuscarPorNombreYRolInexistente(t *testing.T) {
	tx := testTx(t)
	ctx := context.Background()
	fx := seedChain(t, tx)
	users := NewUserRepository(tx)

	other := &entity.User{Name: "otro-prueba", PasswordHash: "y", RoleID: fx.user.RoleID}
	require.NoError(t, users.Create(ctx, other))

	byName, err := users.GetByName(ctx, "otro-prueba")
	require.NoError(t, err)
	require.NotNil(t, byName)
	assert.Equal(t, other.ID, byName.ID)
	assert.Equal(t, "Cliente-prueba", byName.RoleName)

	savepoint(t, tx, func(q Querier) {
		other.RoleID = 9_000_000_000
		err := NewUserRepository(q).Update(ctx, other)
		assert.True(t, errors.Is(err, domain.ErrReference))
	})
}
