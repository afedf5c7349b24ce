package repository

import (
	"context"
	"time"

	"github.com/mr1hm/go-maritime-dashboard/internal/models"
)

// Lookups that find no row return a nil record and a nil error.

type PortRepository interface {
	AddPort(ctx context.Context, p *models.Port) (int, error)
	GetPort(ctx context.Context, id int) (*models.Port, error)
	ListPorts(ctx context.Context) ([]models.Port, error)
	CountPorts(ctx context.Context) (int, error)
}

type ETARepository interface {
	AddETA(ctx context.Context, e *models.ETA) error
	// ListETA returns records that carry a position, ordered by ship name.
	ListETA(ctx context.Context) ([]models.ETA, error)
	LatestETA(ctx context.Context, shipName string) (*models.ETA, error)
	// ListShips returns ships whose expected arrival is after since,
	// earliest first, positioned at their destination port.
	ListShips(ctx context.Context, since time.Time) ([]models.Ship, error)
}

type StormRepository interface {
	AddStorm(ctx context.Context, s *models.Storm) (int, error)
	// ListStorms orders by wind speed, strongest first.
	ListStorms(ctx context.Context) ([]models.Storm, error)
	// ListStormAlerts orders by category rank, then wind speed.
	ListStormAlerts(ctx context.Context) ([]models.StormAlert, error)
}

type Repository interface {
	PortRepository
	ETARepository
	StormRepository
}
