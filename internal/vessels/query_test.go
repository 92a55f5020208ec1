package vessels

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harborline/shipline-backend/pkg/enums"
)

func TestSortClause(t *testing.T) {
	column, dir, err := sortClause("-ETA")
	require.NoError(t, err)
	assert.Equal(t, "eta", column)
	assert.Equal(t, "DESC", dir)

	column, dir, err = sortClause("portName")
	require.NoError(t, err)
	assert.Equal(t, "port_name", column)
	assert.Equal(t, "ASC", dir)

	_, _, err = sortClause("password_hash")
	assert.Error(t, err)
}

func TestSearchTerms(t *testing.T) {
	assert.Equal(t, []string{"msc", "x"}, searchTerms("  MSC-X  msc "))
	assert.Empty(t, searchTerms("&|!:*"))
}

func TestListQueryOptions(t *testing.T) {
	from := "2024-01-01"
	q := ListQuery{Page: 0, Limit: 500, FromETA: &from, Q: strPtr("  maersk ")}
	opts, err := q.Options()
	require.NoError(t, err)
	assert.Equal(t, DefaultSort, opts.Sort)
	assert.Equal(t, 1, opts.Page.Page)
	assert.Equal(t, 100, opts.Page.Limit)
	assert.Equal(t, "maersk", opts.Search)
	require.NotNil(t, opts.FromETA)
	assert.True(t, opts.FromETA.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)))

	_, err = ListQuery{Sort: "nope"}.Options()
	assert.Error(t, err)
}

func TestDeriveStatus(t *testing.T) {
	eta := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	etd := eta.Add(24 * time.Hour)

	assert.Equal(t, enums.VesselStatusUpcoming, DeriveStatus(eta.Add(-time.Second), eta, etd))
	assert.Equal(t, enums.VesselStatusAtPort, DeriveStatus(eta, eta, etd))
	assert.Equal(t, enums.VesselStatusAtPort, DeriveStatus(etd, eta, etd))
	assert.Equal(t, enums.VesselStatusDeparted, DeriveStatus(etd.Add(time.Second), eta, etd))
}
