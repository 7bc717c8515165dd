package dates

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	cases := []struct {
		in   string
		want string
		err  error
	}{
		{"2020-03-30", "2020-03-30", nil},
		{"2020/3/30", "2020-03-30", nil},
		{"03/30/2020", "2020-03-30", nil},
		{"30/03/2020", "2020-03-30", nil},
		{"3/30/20", "2020-03-30", nil},
		{"3/30/69", "1969-03-30", nil},
		{"Mar. 30, 2020", "2020-03-30", nil},
		{"02/30/2020", "", ErrInvalid},
		{"13/13/2020", "", ErrInvalid},
		{"next tuesday", "", ErrUnrecognized},
		{"", "", ErrUnrecognized},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := Parse(tc.in)
			if tc.err != nil {
				require.ErrorIs(t, err, tc.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got.Format(time.DateOnly))
		})
	}
}
