package Fleet

import (
	"testing"

	"Kestrel/Inspections"
)

func TestConfigForVehicleType(t *testing.T) {
	cases := []struct {
		vehicleType string
		want        Inspections.TireConfiguration
	}{
		{"Camión liviano", Inspections.ConfigSix},
		{"camion", Inspections.ConfigSix},
		{"Articulado", Inspections.ConfigTen},
		{"pickup", Inspections.ConfigFour},
		{"", Inspections.ConfigFour},
	}
	for _, tc := range cases {
		if got := configForVehicleType(tc.vehicleType); got != tc.want {
			t.Errorf("configForVehicleType(%q) = %d, want %d", tc.vehicleType, got, tc.want)
		}
	}
}

func TestParseTireCount(t *testing.T) {
	cases := []struct {
		raw  string
		want int
	}{
		{"4", 4},
		{" 10 ", 10},
		{"6", 6},
		{"5", 0},
		{"diez", 0},
		{"", 0},
	}
	for _, tc := range cases {
		if got := parseTireCount(tc.raw); got != tc.want {
			t.Errorf("parseTireCount(%q) = %d, want %d", tc.raw, got, tc.want)
		}
	}
}
