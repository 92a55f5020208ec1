package vessels

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"

	"github.com/harborline/shipline-backend/pkg/db"
	"github.com/harborline/shipline-backend/pkg/enums"
	pkgerrors "github.com/harborline/shipline-backend/pkg/errors"
	"github.com/harborline/shipline-backend/pkg/migrate"
	"github.com/harborline/shipline-backend/pkg/types"
)

var fixedNow = time.Date(2030, time.January, 1, 0, 0, 0, 0, time.UTC)

func newTestService(t *testing.T) (Service, *Repository) {
	t.Helper()
	conn, err := db.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())))
	require.NoError(t, err)
	sqlDB, err := conn.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, migrate.AutoMigrateModels(conn))

	repo := NewRepository(conn)
	svc, err := NewService(ServiceParams{Repo: repo, Now: func() time.Time { return fixedNow }})
	require.NoError(t, err)
	return svc, repo
}

func ts(offset time.Duration) string {
	return fixedNow.Add(offset).Format(time.RFC3339)
}

func day(n float64) time.Duration {
	return time.Duration(n * float64(24*time.Hour))
}

func createVessel(t *testing.T, svc Service, name, voyage, country, port string, eta, etd time.Duration) *VesselDTO {
	t.Helper()
	v, err := svc.Create(context.Background(), CreateVesselRequest{
		VesselName: name,
		VoyageNo:   voyage,
		Country:    country,
		PortName:   port,
		ETA:        ts(eta),
		ETD:        ts(etd),
	})
	require.NoError(t, err)
	return v
}

func listQuery(page, limit int, sort string) ListQuery {
	return ListQuery{Page: page, Limit: limit, Sort: sort}
}

func strPtr(s string) *string { return &s }

func requireCode(t *testing.T, err error, code pkgerrors.Code) *pkgerrors.Error {
	t.Helper()
	typed := pkgerrors.As(err)
	require.NotNil(t, typed, "expected typed error, got %v", err)
	require.Equal(t, code, typed.Code(), typed.Error())
	return typed
}

func TestCreateAndGet(t *testing.T) {
	svc, _ := newTestService(t)
	created := createVessel(t, svc, "MSC X", "V1", "Panama", "Balboa", day(1), day(2))

	assert.NotEqual(t, uuid.Nil, created.ID)
	assert.Equal(t, enums.VesselStatusUpcoming, created.Status)

	got, err := svc.Get(context.Background(), created.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "MSC X", got.VesselName)
	assert.True(t, got.ETA.Equal(fixedNow.Add(day(1))))

	_, err = svc.Get(context.Background(), "not-an-id")
	requireCode(t, err, pkgerrors.CodeInvalidIDFormat)

	_, err = svc.Get(context.Background(), uuid.NewString())
	requireCode(t, err, pkgerrors.CodeVesselNotFound)
}

func TestCreateRejectsDuplicatePair(t *testing.T) {
	svc, _ := newTestService(t)
	createVessel(t, svc, "MSC X", "V1", "Panama", "Balboa", day(1), day(2))

	_, err := svc.Create(context.Background(), CreateVesselRequest{
		VesselName: "MSC X", VoyageNo: "V1", Country: "Chile", PortName: "Valparaiso", ETA: ts(day(3)), ETD: ts(day(4)),
	})
	requireCode(t, err, pkgerrors.CodeDuplicateVessel)

	// same name on another voyage is fine
	createVessel(t, svc, "MSC X", "V2", "Panama", "Balboa", day(1), day(2))
}

func TestCreateEnforcesWindowAtStorage(t *testing.T) {
	svc, _ := newTestService(t)
	for _, etd := range []time.Duration{day(1), 0} {
		_, err := svc.Create(context.Background(), CreateVesselRequest{
			VesselName: "Ever Given", VoyageNo: "EG-01", Country: "Egypt", PortName: "Suez", ETA: ts(day(1)), ETD: ts(etd),
		})
		typed := requireCode(t, err, pkgerrors.CodeValidation)
		details, ok := typed.Details().([]types.FieldError)
		require.True(t, ok)
		require.Len(t, details, 1)
		assert.Equal(t, "ETD", details[0].Field)
	}
}

func TestUpdatePartial(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	created := createVessel(t, svc, "MSC X", "V1", "Panama", "Balboa", day(1), day(2))

	updated, err := svc.Update(ctx, created.ID.String(), UpdateVesselRequest{PortName: strPtr("Colon")})
	require.NoError(t, err)
	assert.Equal(t, "Colon", updated.PortName)
	assert.Equal(t, "MSC X", updated.VesselName)
	assert.True(t, updated.ETD.Equal(fixedNow.Add(day(2))))

	// only ETA supplied: checked against the stored ETD
	_, err = svc.Update(ctx, created.ID.String(), UpdateVesselRequest{ETA: strPtr(ts(day(3)))})
	typed := requireCode(t, err, pkgerrors.CodeValidation)
	details := typed.Details().([]types.FieldError)
	assert.Equal(t, "ETD", details[0].Field)

	moved, err := svc.Update(ctx, created.ID.String(), UpdateVesselRequest{ETA: strPtr(ts(day(3))), ETD: strPtr(ts(day(4)))})
	require.NoError(t, err)
	assert.True(t, moved.ETA.Equal(fixedNow.Add(day(3))))

	_, err = svc.Update(ctx, uuid.NewString(), UpdateVesselRequest{PortName: strPtr("Colon")})
	requireCode(t, err, pkgerrors.CodeVesselNotFound)

	_, err = svc.Update(ctx, "123", UpdateVesselRequest{})
	requireCode(t, err, pkgerrors.CodeInvalidIDFormat)
}

func TestUpdateDuplicate(t *testing.T) {
	svc, _ := newTestService(t)
	createVessel(t, svc, "MSC X", "V1", "Panama", "Balboa", day(1), day(2))
	second := createVessel(t, svc, "MSC X", "V2", "Panama", "Balboa", day(1), day(2))

	_, err := svc.Update(context.Background(), second.ID.String(), UpdateVesselRequest{VoyageNo: strPtr("V1")})
	requireCode(t, err, pkgerrors.CodeDuplicateVessel)
}

func TestDeleteTwice(t *testing.T) {
	svc, _ := newTestService(t)
	created := createVessel(t, svc, "MSC X", "V1", "Panama", "Balboa", day(1), day(2))

	removed, err := svc.Delete(context.Background(), created.ID.String())
	require.NoError(t, err)
	assert.Equal(t, created.ID, removed.ID)

	_, err = svc.Delete(context.Background(), created.ID.String())
	requireCode(t, err, pkgerrors.CodeVesselNotFound)
}

func TestBulkDeleteIsAllOrNothing(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()
	a := createVessel(t, svc, "Alpha", "A1", "Panama", "Balboa", day(1), day(2))
	b := createVessel(t, svc, "Bravo", "B1", "Panama", "Balboa", day(1), day(2))

	_, err := svc.BulkDelete(ctx, []string{a.ID.String(), "not-an-id"})
	requireCode(t, err, pkgerrors.CodeInvalidIDFormat)
	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)

	_, err = svc.BulkDelete(ctx, nil)
	requireCode(t, err, pkgerrors.CodeValidation)

	deleted, err := svc.BulkDelete(ctx, []string{a.ID.String(), b.ID.String(), uuid.NewString()})
	require.NoError(t, err)
	assert.EqualValues(t, 2, deleted)
}

func TestListFiltersAndPagination(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	createVessel(t, svc, "MSC X", "V1", "Panama", "Balboa", day(-30), day(-29))
	createVessel(t, svc, "Maersk Alabama", "MA-7", "Kenya", "Mombasa", day(1), day(3))
	createVessel(t, svc, "Ever Given", "EG_1", "Egypt", "Port Said", day(5), day(6))
	createVessel(t, svc, "msc oscar", "OS-2", "Germany", "Hamburg", day(10), day(12))

	q := listQuery(1, 10, "")
	q.VesselName = strPtr("MSC")
	res, err := svc.List(ctx, q)
	require.NoError(t, err)
	require.Len(t, res.Data, 2)
	assert.Equal(t, "-ETA", res.Sort)
	assert.Equal(t, "msc oscar", res.Data[0].VesselName)
	assert.Equal(t, enums.VesselStatusDeparted, res.Data[1].Status)
	require.NotNil(t, res.Filters.VesselName)

	q.VesselName = strPtr("QQQ")
	res, err = svc.List(ctx, q)
	require.NoError(t, err)
	assert.Empty(t, res.Data)
	assert.NotNil(t, res.Data)
	assert.EqualValues(t, 0, res.Pagination.Total)
	assert.False(t, res.Pagination.HasNextPage)

	q = listQuery(1, 10, "vesselName")
	q.FromETA = strPtr(ts(0))
	q.ToETA = strPtr(ts(day(7)))
	res, err = svc.List(ctx, q)
	require.NoError(t, err)
	require.Len(t, res.Data, 2)
	assert.Equal(t, "Ever Given", res.Data[0].VesselName)
	assert.Equal(t, "Maersk Alabama", res.Data[1].VesselName)

	q = listQuery(1, 10, "")
	q.Country = strPtr("ERMAN")
	res, err = svc.List(ctx, q)
	require.NoError(t, err)
	require.Len(t, res.Data, 1)
	assert.Equal(t, "Hamburg", res.Data[0].PortName)

	q = listQuery(1, 10, "")
	q.Q = strPtr("mombasa hamburg")
	res, err = svc.List(ctx, q)
	require.NoError(t, err)
	assert.Len(t, res.Data, 2)

	for page := 1; page <= 3; page++ {
		res, err = svc.List(ctx, listQuery(page, 3, "ETA"))
		require.NoError(t, err)
		assert.LessOrEqual(t, len(res.Data), 3)
		assert.EqualValues(t, 4, res.Pagination.Total)
		assert.Equal(t, 2, res.Pagination.TotalPages)
		assert.Equal(t, page < res.Pagination.TotalPages, res.Pagination.HasNextPage)
		assert.Equal(t, page > 1, res.Pagination.HasPreviousPage)
	}
	res, err = svc.List(ctx, listQuery(2, 3, "ETA"))
	require.NoError(t, err)
	require.Len(t, res.Data, 1)
	assert.Equal(t, "msc oscar", res.Data[0].VesselName)
}

func TestListWildcardsAreLiteral(t *testing.T) {
	svc, _ := newTestService(t)
	createVessel(t, svc, "Alpha", "A1", "Panama", "Balboa", day(1), day(2))

	q := listQuery(1, 10, "")
	q.PortName = strPtr("%")
	res, err := svc.List(context.Background(), q)
	require.NoError(t, err)
	assert.Empty(t, res.Data)
}

func TestStatsEmpty(t *testing.T) {
	svc, _ := newTestService(t)
	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Statistics{}, stats.Statistics)
	assert.NotNil(t, stats.UpcomingArrivals)
	assert.Empty(t, stats.UpcomingArrivals)
	assert.NotNil(t, stats.UpcomingDepartures)
	assert.Empty(t, stats.UpcomingDepartures)
}

func TestStatsAggregates(t *testing.T) {
	svc, _ := newTestService(t)
	createVessel(t, svc, "Alpha", "A1", "Panama", "Balboa", day(1), day(2))
	createVessel(t, svc, "Bravo", "B1", "Singapore", "Singapore", day(3), day(5))
	createVessel(t, svc, "Charlie", "C1", "Panama", "Colon", day(10), day(12))
	createVessel(t, svc, "Delta", "D1", "Germany", "Hamburg", day(-1), day(1))

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Statistics{
		TotalVessels:   4,
		TotalCountries: 3,
		TotalPorts:     4,
		AvgETADays:     3.3,
		AvgETDDays:     5,
	}, stats.Statistics)

	require.Len(t, stats.UpcomingArrivals, 2)
	assert.Equal(t, "Alpha", stats.UpcomingArrivals[0].VesselName)
	assert.Equal(t, "Bravo", stats.UpcomingArrivals[1].VesselName)

	require.Len(t, stats.UpcomingDepartures, 3)
	assert.Equal(t, []string{"Delta", "Alpha", "Bravo"}, []string{
		stats.UpcomingDepartures[0].VesselName,
		stats.UpcomingDepartures[1].VesselName,
		stats.UpcomingDepartures[2].VesselName,
	})
}

func TestStatsUpcomingLimit(t *testing.T) {
	svc, _ := newTestService(t)
	for i := 0; i < 7; i++ {
		createVessel(t, svc, fmt.Sprintf("Vessel %d", i), fmt.Sprintf("V%d", i), "Panama", "Balboa", day(float64(i)*0.5+0.1), day(float64(i)*0.5+0.2))
	}
	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Len(t, stats.UpcomingArrivals, 5)
	assert.Equal(t, "Vessel 0", stats.UpcomingArrivals[0].VesselName)
	assert.Len(t, stats.UpcomingDepartures, 5)
}
