package extract

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUint_UnmarshalJSON(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    Uint
		wantErr bool
	}{
		{in: `5`, want: 5},
		{in: `"5"`, want: 5},
		{in: `" 12 "`, want: 12},
		{in: `null`, want: 7},
		{in: `"abc"`, wantErr: true},
		{in: `-1`, wantErr: true},
		{in: `1.5`, wantErr: true},
		{in: `""`, wantErr: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			u := Uint(7)
			err := json.Unmarshal([]byte(tt.in), &u)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, u)
		})
	}
}

func TestUint_UnmarshalParam(t *testing.T) {
	t.Parallel()

	var u Uint
	require.NoError(t, u.UnmarshalParam("2"))
	assert.Equal(t, 2, u.Int())
	assert.Error(t, u.UnmarshalParam("abc"))
}
