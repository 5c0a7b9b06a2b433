package repositories

import (
	"testing"
	"trace-emissions-service/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSeed(t *testing.T) {
	data := []byte(`[
		{"id":"s1","name":"Liberty Coca-Cola","address":"725 E Erie Ave, Philadelphia, PA 19134","type":"sales"},
		{"id":"p1","name":"Bottling Plant","address":"100 Bottling Way","type":"Production","coordinates":{"lat":40.2,"lng":-75.1}}
	]`)

	got, err := ParseSeed(data)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, domain.CategorySales, got[0].Category)
	assert.Nil(t, got[0].Coordinates)
	assert.Equal(t, domain.CategoryProduction, got[1].Category)
	assert.Equal(t, &domain.Coordinates{Lat: 40.2, Lng: -75.1}, got[1].Coordinates)
}

func TestParseSeedRejectsBadRows(t *testing.T) {
	tests := map[string]string{
		"missing id":       `[{"name":"a","address":"b","type":"sales"}]`,
		"duplicate id":     `[{"id":"x","name":"a","address":"b","type":"sales"},{"id":"x","name":"c","address":"d","type":"sales"}]`,
		"unknown category": `[{"id":"x","name":"a","address":"b","type":"warehouse"}]`,
		"no address":       `[{"id":"x","name":"a","type":"sales"}]`,
		"bad coordinates":  `[{"id":"x","name":"a","address":"b","type":"sales","coordinates":{"lat":91,"lng":0}}]`,
		"not json":         `{`,
	}

	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParseSeed([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestMigrationsAreEmbedded(t *testing.T) {
	entries, err := migrations.ReadDir("migrations")
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestParseSeedNamesZeroBasedIndex(t *testing.T) {
	doc := `[{"id":"a","name":"a","address":"b","type":"sales"},{"name":"c","address":"d","type":"sales"}]`

	_, err := ParseSeed([]byte(doc))
	assert.ErrorContains(t, err, "item at index 1:")
}
