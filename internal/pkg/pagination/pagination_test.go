package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeClampsBounds(t *testing.T) {
	tests := []struct {
		name          string
		page, perPage int
		wantPage      int
		wantPerPage   int
	}{
		{"defaults", 0, 0, 1, DefaultPerPage},
		{"negative page", -3, 10, 1, 10},
		{"per_page over max", 2, 500, 2, MaxPerPage},
		{"valid", 3, 50, 3, 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Normalize(tt.page, tt.perPage)
			assert.Equal(t, tt.wantPage, p.Page)
			assert.Equal(t, tt.wantPerPage, p.PerPage)
		})
	}
}

func TestOffset(t *testing.T) {
	assert.Equal(t, 0, Normalize(1, 20).Offset())
	assert.Equal(t, 40, Normalize(3, 20).Offset())
}

func TestMetaMath(t *testing.T) {
	// 45 rows at 20 per page: 3 pages
	m := NewMeta(Normalize(1, 20), 45)
	assert.Equal(t, 3, m.TotalPages)
	assert.True(t, m.HasNext)
	assert.False(t, m.HasPrev)

	m = NewMeta(Normalize(2, 20), 45)
	assert.True(t, m.HasNext)
	assert.True(t, m.HasPrev)

	m = NewMeta(Normalize(3, 20), 45)
	assert.False(t, m.HasNext)
	assert.True(t, m.HasPrev)
}

func TestMetaExactMultiple(t *testing.T) {
	m := NewMeta(Normalize(2, 20), 40)
	assert.Equal(t, 2, m.TotalPages)
	assert.False(t, m.HasNext)
}

func TestMetaEmptyResult(t *testing.T) {
	m := NewMeta(Normalize(1, 20), 0)
	assert.Equal(t, 0, m.TotalPages)
	assert.False(t, m.HasNext)
	assert.False(t, m.HasPrev)

	// has_prev only depends on the requested page number.
	m = NewMeta(Normalize(2, 20), 0)
	assert.False(t, m.HasNext)
	assert.True(t, m.HasPrev)
}

func TestMetaPageBeyondLast(t *testing.T) {
	m := NewMeta(Normalize(9, 20), 45)
	assert.Equal(t, 3, m.TotalPages)
	assert.False(t, m.HasNext)
	assert.True(t, m.HasPrev)
}
