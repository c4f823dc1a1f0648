package query

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doodlesbykumbi/jobtracker/pkg/server/store"
)

func TestParsePage(t *testing.T) {
	tests := []struct {
		query   string
		want    store.Page
		wantErr bool
	}{
		{"", store.Page{Number: 1, Size: 10}, false},
		{"page=3", store.Page{Number: 3, Size: 10}, false},
		{"page_size=25", store.Page{Number: 1, Size: 25}, false},
		{"page_size=1000", store.Page{Number: 1, Size: 100}, false},
		{"page_size=-4", store.Page{Number: 1, Size: 10}, false},
		{"page_size=abc", store.Page{Number: 1, Size: 10}, false},
		{"page=0", store.Page{}, true},
		{"page=last", store.Page{}, true},
		{"page=9223372036854775807", store.Page{}, true},
		{"page=922337203685477581&page_size=10", store.Page{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			got, err := ParsePage(mustQuery(t, tt.query), 10, 100)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidPage)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCheckPage(t *testing.T) {
	assert.NoError(t, CheckPage(store.Page{Number: 1, Size: 10}, 0))
	assert.NoError(t, CheckPage(store.Page{Number: 2, Size: 10}, 11))
	assert.ErrorIs(t, CheckPage(store.Page{Number: 2, Size: 10}, 10), ErrInvalidPage)
}

func TestParsePage_LargestPageKeepsOffsetPositive(t *testing.T) {
	page, err := ParsePage(mustQuery(t, "page=922337203685477580"), 10, 100)
	require.NoError(t, err)
	assert.Positive(t, page.Offset())
	assert.ErrorIs(t, CheckPage(page, 5), ErrInvalidPage)

	base, err := url.Parse("http://api.example.com/applications/")
	require.NoError(t, err)
	next, previous := Links(base, page, 5)
	assert.Nil(t, next)
	require.NotNil(t, previous)
}

func TestLinks(t *testing.T) {
	base, err := url.Parse("http://api.example.com/applications/?status=applied&page=2")
	require.NoError(t, err)

	next, previous := Links(base, store.Page{Number: 2, Size: 10}, 25)
	require.NotNil(t, next)
	require.NotNil(t, previous)
	assert.Equal(t, "http://api.example.com/applications/?page=3&status=applied", *next)
	assert.Equal(t, "http://api.example.com/applications/?status=applied", *previous)

	next, previous = Links(base, store.Page{Number: 3, Size: 10}, 25)
	assert.Nil(t, next)
	require.NotNil(t, previous)

	next, previous = Links(base, store.Page{Number: 1, Size: 10}, 5)
	assert.Nil(t, next)
	assert.Nil(t, previous)
}
