package queue

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/docparse/constants"
	"github.com/joseph-ayodele/docparse/internal/async"
	"github.com/joseph-ayodele/docparse/internal/common"
)

func TestEncodeDecode(t *testing.T) {
	s, err := Encode(async.Job{Path: "/in/a.pdf", Class: constants.ClassConsent, TraceID: "0b6f0d2e-8a55-4bb5-9a6e-3c1f3f2a9d10"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"path":"/in/a.pdf","class":"consent","trace_id":"0b6f0d2e-8a55-4bb5-9a6e-3c1f3f2a9d10"}`, s)

	job, err := Decode(s)
	require.NoError(t, err)
	assert.Equal(t, async.Job{Path: "/in/a.pdf", Class: constants.ClassConsent, TraceID: "0b6f0d2e-8a55-4bb5-9a6e-3c1f3f2a9d10"}, job)
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    async.Job
		wantErr bool
	}{
		{name: "bare path", in: " /in/b.pdf\n", want: async.Job{Path: "/in/b.pdf", Class: constants.ClassAuto}},
		{name: "class synonym", in: `{"path":"x.pdf","class":"hipaa"}`, want: async.Job{Path: "x.pdf", Class: constants.ClassConsent}},
		{name: "no class", in: `{"path":"x.pdf"}`, want: async.Job{Path: "x.pdf", Class: constants.ClassAuto}},
		{name: "empty", in: "  ", wantErr: true},
		{name: "no path", in: `{"class":"invoice"}`, wantErr: true},
		{name: "bad class", in: `{"path":"x.pdf","class":"receipt"}`, wantErr: true},
		{name: "bad json", in: `{"path":`, wantErr: true},
		{name: "bad trace id", in: `{"path":"x.pdf","trace_id":"abc"}`, wantErr: true},
		{name: "unsupported extension", in: `{"path":"scan.tiff"}`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecodeReportsEveryBadField(t *testing.T) {
	_, err := Decode(`{"path":"scan.tiff","class":"receipt","trace_id":"abc"}`)
	require.Error(t, err)
	var fe common.FieldError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "path", fe.Field)
	assert.Contains(t, err.Error(), `class "receipt" is not a document class`)
	assert.Contains(t, err.Error(), `trace_id "abc" is not a UUID`)
}

func TestNewRejectsBadURL(t *testing.T) {
	_, err := New("not a url", "")
	require.Error(t, err)
}
