package geo

import (
	"errors"
	"math"
	"testing"
)

var (
	berlin = Point{Lat: 52.52, Lon: 13.40}
	paris  = Point{Lat: 48.85, Lon: 2.35}
	munich = Point{Lat: 48.137, Lon: 11.575}
)

func TestDistance(t *testing.T) {
	tests := []struct {
		name      string
		a, b      Point
		want      float64
		tolerance float64
	}{
		{name: "same point", a: berlin, b: berlin, want: 0, tolerance: 0},
		{name: "Berlin to Paris", a: berlin, b: paris, want: 878, tolerance: 5},
		{name: "Berlin to Munich", a: berlin, b: munich, want: 504, tolerance: 5},
		{name: "pole to pole", a: Point{Lat: 90, Lon: 0}, b: Point{Lat: -90, Lon: 0}, want: math.Pi * EarthRadiusKm, tolerance: 0.001},
		{name: "antipodal on equator", a: Point{Lat: 0, Lon: 0}, b: Point{Lat: 0, Lon: 180}, want: math.Pi * EarthRadiusKm, tolerance: 0.001},
		{name: "across antimeridian", a: Point{Lat: 0, Lon: 179.5}, b: Point{Lat: 0, Lon: -179.5}, want: 111.19, tolerance: 0.1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Distance(tt.a, tt.b)
			if math.Abs(got-tt.want) > tt.tolerance {
				t.Errorf("Distance(%v, %v) = %.3f, want %.3f ± %.3f", tt.a, tt.b, got, tt.want, tt.tolerance)
			}
		})
	}
}

func TestDistance_Properties(t *testing.T) {
	points := []Point{
		berlin, paris, munich,
		{Lat: 90, Lon: 0},
		{Lat: -90, Lon: 45},
		{Lat: -33.87, Lon: 151.21},
		{Lat: 0, Lon: 180},
		{Lat: 40.71, Lon: -74.01},
	}

	for _, a := range points {
		if d := Distance(a, a); d != 0 {
			t.Errorf("Distance(%v, %v) = %v, want exactly 0", a, a, d)
		}
		for _, b := range points {
			ab := Distance(a, b)
			ba := Distance(b, a)
			if ab != ba {
				t.Errorf("Distance not symmetric for %v and %v: %v vs %v", a, b, ab, ba)
			}
			if ab < 0 || math.IsNaN(ab) {
				t.Errorf("Distance(%v, %v) = %v, want finite and >= 0", a, b, ab)
			}
		}
	}
}

func TestPoint_Validate(t *testing.T) {
	tests := []struct {
		name    string
		point   Point
		wantErr bool
	}{
		{name: "valid", point: berlin},
		{name: "out of range is not checked", point: Point{Lat: 123, Lon: 456}},
		{name: "NaN latitude", point: Point{Lat: math.NaN(), Lon: 1}, wantErr: true},
		{name: "infinite longitude", point: Point{Lat: 1, Lon: math.Inf(-1)}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.point.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidCoordinate) {
				t.Errorf("Validate() error = %v, want ErrInvalidCoordinate", err)
			}
		})
	}
}
