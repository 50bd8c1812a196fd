package domain

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTutorRequest_MetaInt(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		meta    map[string]any
		want    int
		wantOK  bool
		wantErr bool
	}{
		{name: "nil metadata", meta: nil},
		{name: "absent", meta: map[string]any{"other": 1}},
		{name: "explicit null", meta: map[string]any{"n": nil}},
		{name: "int", meta: map[string]any{"n": 3}, want: 3, wantOK: true},
		{name: "int64", meta: map[string]any{"n": int64(4)}, want: 4, wantOK: true},
		{name: "json number", meta: map[string]any{"n": float64(2)}, want: 2, wantOK: true},
		{name: "numeric string", meta: map[string]any{"n": "1"}, want: 1, wantOK: true},
		{name: "padded string", meta: map[string]any{"n": " 5 "}, want: 5, wantOK: true},
		{name: "fractional number", meta: map[string]any{"n": 1.7}, wantErr: true},
		{name: "infinite number", meta: map[string]any{"n": math.Inf(1)}, wantErr: true},
		{name: "NaN", meta: map[string]any{"n": math.NaN()}, wantErr: true},
		{name: "word", meta: map[string]any{"n": "one"}, wantErr: true},
		{name: "fractional string", meta: map[string]any{"n": "1.5"}, wantErr: true},
		{name: "bool", meta: map[string]any{"n": true}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, ok, err := TutorRequest{Metadata: tt.meta}.MetaInt("n")
			if tt.wantErr {
				assert.True(t, errors.Is(err, ErrValidation), "got %v", err)
				var ve *ValidationError
				if assert.ErrorAs(t, err, &ve) {
					assert.Equal(t, "must be an integer", ve.Fields()["n"])
				}
				assert.False(t, ok)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
