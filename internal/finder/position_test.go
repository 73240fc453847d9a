package finder

import (
	"context"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pfrederiksen/nearby-events/internal/geo"
)

func TestStaticPosition(t *testing.T) {
	pt, err := StaticPosition{Lat: 52.52, Lon: 13.40}.Position(context.Background())
	require.NoError(t, err)
	assert.Equal(t, geo.Point{Lat: 52.52, Lon: 13.40}, pt)

	_, err = StaticPosition{Lat: math.NaN(), Lon: 13.40}.Position(context.Background())
	assert.ErrorIs(t, err, ErrLocationUnavailable)
	assert.ErrorIs(t, err, geo.ErrInvalidCoordinate)
}

func TestIPPosition(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		want    geo.Point
		wantErr error
	}{
		{
			name:   "success",
			status: http.StatusOK,
			body:   `{"status":"success","lat":52.52,"lon":13.40}`,
			want:   geo.Point{Lat: 52.52, Lon: 13.40},
		},
		{
			name:    "service reports failure",
			status:  http.StatusOK,
			body:    `{"status":"fail","message":"private range"}`,
			wantErr: ErrLocationUnavailable,
		},
		{
			name:    "missing coordinates",
			status:  http.StatusOK,
			body:    `{"status":"success"}`,
			wantErr: ErrLocationUnavailable,
		},
		{
			name:    "malformed body",
			status:  http.StatusOK,
			body:    `<html>`,
			wantErr: ErrLocationUnavailable,
		},
		{
			name:    "forbidden",
			status:  http.StatusForbidden,
			wantErr: ErrLocationDenied,
		},
		{
			name:    "rate limited",
			status:  http.StatusTooManyRequests,
			wantErr: ErrLocationUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "nearby-events-test", r.Header.Get("User-Agent"))
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			p := NewIPPosition(server.URL, time.Second, "nearby-events-test")
			pt, err := p.Position(context.Background())

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, pt)
		})
	}
}

func TestIPPosition_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	_, err := NewIPPosition(url, time.Second, "").Position(context.Background())
	assert.ErrorIs(t, err, ErrLocationUnavailable)
}
