package wsmtxca_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezonia/wsmtxca-client/internal/model"
	"github.com/rezonia/wsmtxca-client/internal/wsmtxca"
)

func TestFormatDate(t *testing.T) {
	got, err := wsmtxca.FormatDate("20230115")
	require.NoError(t, err)
	assert.Equal(t, "2023-01-15", got)
}

func TestFormatDate_Malformed(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"short", "2023-1"},
		{"empty", ""},
		{"too long", "202301150"},
		{"non numeric", "2023O115"},
		{"already formatted", "2023-01-15"},
		{"month out of range", "20231315"},
		{"day out of range", "20230230"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := wsmtxca.FormatDate(tt.input)
			require.Error(t, err)

			var verr *model.ValidationError
			assert.ErrorAs(t, err, &verr)
		})
	}
}
