package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestListFilter_Normalize(t *testing.T) {
	tests := []struct {
		name string
		in   ListFilter
		want ListFilter
	}{
		{"defaults", ListFilter{}, ListFilter{Limit: 50, OrderBy: "-created_at"}},
		{"caps limit", ListFilter{Limit: 5000, OrderBy: "code"}, ListFilter{Limit: MaxListLimit, OrderBy: "code"}},
		{"negative offset", ListFilter{Limit: 10, Offset: -3, OrderBy: "code"}, ListFilter{Limit: 10, OrderBy: "code"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.in.Normalize())
		})
	}
}
