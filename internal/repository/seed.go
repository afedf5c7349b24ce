package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/mr1hm/go-maritime-dashboard/internal/models"
)

// Seed is the initial content of an empty database.
type Seed struct {
	Ports  []models.Port  `json:"ports"`
	ETA    []models.ETA   `json:"eta"`
	Storms []models.Storm `json:"storms"`
}

// LoadSeed reads a seed file, or returns DefaultSeed when path is empty.
func LoadSeed(path string, now time.Time) (*Seed, error) {
	if path == "" {
		return DefaultSeed(now), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading seed file: %w", err)
	}
	var seed Seed
	if err := json.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("error decoding seed file %s: %w", path, err)
	}
	return &seed, nil
}

// SeedIfEmpty inserts seed when the database holds no ports. It reports
// whether anything was written.
func (s *SQLiteDB) SeedIfEmpty(ctx context.Context, seed *Seed) (bool, error) {
	n, err := s.CountPorts(ctx)
	if err != nil {
		return false, fmt.Errorf("error counting ports: %w", err)
	}
	if n > 0 {
		return false, nil
	}

	for i := range seed.Ports {
		if _, err := s.AddPort(ctx, &seed.Ports[i]); err != nil {
			return false, err
		}
	}
	for i := range seed.ETA {
		if err := s.AddETA(ctx, &seed.ETA[i]); err != nil {
			return false, err
		}
	}
	for i := range seed.Storms {
		if _, err := s.AddStorm(ctx, &seed.Storms[i]); err != nil {
			return false, err
		}
	}

	slog.Info("database seeded",
		"ports", len(seed.Ports),
		"eta", len(seed.ETA),
		"storms", len(seed.Storms),
	)
	return true, nil
}

func port(name, region string, lat, lng float64, status string) models.Port {
	return models.Port{
		Name:    name,
		Region:  region,
		Country: "Việt Nam",
		Location: models.Location{
			Latitude:  models.NewNumber(lat),
			Longitude: models.NewNumber(lng),
		},
		Status: status,
	}
}

// DefaultSeed is a small Vietnamese coastal scenario with arrivals relative
// to now.
func DefaultSeed(now time.Time) *Seed {
	at := func(h time.Duration) string { return now.Add(h * time.Hour).Format(etaLayout) }
	eta := func(ship, from, to string, hours time.Duration, delay float64, reason string, lat, lng, hazard float64) models.ETA {
		return models.ETA{
			ShipName:         ship,
			PortFrom:         from,
			PortTo:           to,
			ETAExpected:      at(hours),
			DelayHours:       models.Number(delay),
			Reason:           reason,
			DistanceToHazard: models.NewNumber(hazard),
			Latitude:         models.NewNumber(lat),
			Longitude:        models.NewNumber(lng),
		}
	}

	return &Seed{
		Ports: []models.Port{
			port("Hải Phòng", "Bắc Bộ", 20.8449, 106.6881, models.PortStatusBusy),
			port("Đà Nẵng", "Trung Bộ", 16.0678, 108.2208, models.PortStatusStable),
			port("Quy Nhơn", "Trung Bộ", 13.7656, 109.2340, models.PortStatusStable),
			port("Cam Ranh", "Nam Trung Bộ", 11.9214, 109.1591, models.PortStatusStable),
			port("Cát Lái", "Nam Bộ", 10.7626, 106.7893, models.PortStatusOverloaded),
			port("Cái Mép", "Nam Bộ", 10.5417, 107.0236, models.PortStatusBusy),
		},
		ETA: []models.ETA{
			eta("Biển Đông 01", "Hải Phòng", "Đà Nẵng", 18, 0, "", 18.2, 107.4, 420),
			eta("Sao Mai", "Đà Nẵng", "Cát Lái", 30, 2.5, "Sóng lớn", 14.1, 110.2, 160),
			eta("Hòa Bình", "Cát Lái", "Hải Phòng", 52, 6, "Bão", 16.9, 111.8, 35),
			eta("Trường Sa Star", "Cái Mép", "Quy Nhơn", 12, 0, "", 11.5, 109.9, 510),
			eta("Mekong Pride", "Quy Nhơn", "Cái Mép", 20, 4, "Tắc nghẽn cảng", 12.2, 109.6, 280),
		},
		Storms: []models.Storm{
			{Name: "Yagi", Latitude: 17.5, Longitude: 113.2, WindKmh: 165, Level: "Super Typhoon", RadiusKm: 120, WarningRadiusKm: 300},
			{Name: "Trà Mi", Latitude: 12.8, Longitude: 116.4, WindKmh: 95, Level: "Category 1", RadiusKm: 60, WarningRadiusKm: 150},
			{Name: "ATNĐ 03", Latitude: 9.4, Longitude: 111.0, WindKmh: 55, Level: "Tropical Storm", RadiusKm: 40, WarningRadiusKm: 90},
		},
	}
}
