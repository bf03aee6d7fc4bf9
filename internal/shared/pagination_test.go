package shared

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPageFromQuery(t *testing.T) {
	cases := map[string]int{
		"":                    DefaultPage,
		"abc":                 DefaultPage,
		"0":                   DefaultPage,
		"-4":                  DefaultPage,
		"3":                   3,
		"922337203685477581":  MaxPage,
		"9223372036854775808": DefaultPage,
	}
	for raw, want := range cases {
		assert.Equal(t, want, PageFromQuery(url.Values{"page": {raw}}), raw)
	}
}

func TestNewPagination(t *testing.T) {
	p := NewPagination(0, 10, 25)
	assert.Equal(t, DefaultPage, p.Page)
	assert.Equal(t, 3, p.TotalPages)
	assert.False(t, p.HasPrev())
	assert.True(t, p.HasNext())
	assert.True(t, p.IsPaginated())

	p = NewPagination(MaxPage, 10, 25)
	assert.Equal(t, (MaxPage-1)*10, p.Offset())
	assert.False(t, p.HasNext())
}
