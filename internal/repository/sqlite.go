package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"time"

	_ "modernc.org/sqlite"

	"github.com/mr1hm/go-maritime-dashboard/internal/models"
)

// Stored timestamp layouts. Both sort lexically.
const (
	etaLayout     = "2006-01-02T15:04:05"
	createdLayout = "2006-01-02T15:04:05.000000Z07:00"
)

type SQLiteDB struct {
	db  *sql.DB
	now func() time.Time
}

func NewSQLiteDB(path string) (*SQLiteDB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	// :memory: databases are per connection.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("error while pinging database: %w", err)
	}

	s := &SQLiteDB{
		db:  db,
		now: time.Now,
	}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("error while migrating to database: %w", err)
	}

	return s, nil
}

func (s *SQLiteDB) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS sea_ports (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			port_name TEXT NOT NULL UNIQUE,
			region TEXT,
			country TEXT,
			latitude REAL,
			longitude REAL,
			status TEXT,
			created_at TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS eta_results (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			ship_name TEXT NOT NULL,
			port_from TEXT NOT NULL,
			port_to TEXT NOT NULL,
			eta_expected TEXT,
			delay_hours REAL,
			reason TEXT,
			distance_to_hazard REAL,
			latitude REAL,
			longitude REAL,
			created_at TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS storm_info (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			latitude REAL NOT NULL,
			longitude REAL NOT NULL,
			wind_kmh REAL NOT NULL,
			level TEXT,
			radius_km REAL NOT NULL,
			warning_radius_km REAL NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_eta_ship_name ON eta_results(ship_name);
		CREATE INDEX IF NOT EXISTS idx_eta_expected ON eta_results(eta_expected);
	`

	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteDB) Close() error {
	return s.db.Close()
}

func (s *SQLiteDB) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLiteDB) AddPort(ctx context.Context, p *models.Port) (int, error) {
	lat, lng := nullNumber(p.Location.Latitude), nullNumber(p.Location.Longitude)
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO sea_ports (port_name, region, country, latitude, longitude, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		p.Name, p.Region, p.Country, lat, lng, nullString(p.Status), s.now().UTC().Format(createdLayout),
	)
	if err != nil {
		return 0, fmt.Errorf("error inserting port %s: %w", p.Name, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return int(id), nil
}

const portColumns = `id, port_name, COALESCE(region, ''), COALESCE(country, ''), latitude, longitude, COALESCE(status, ''), created_at`

func (s *SQLiteDB) GetPort(ctx context.Context, id int) (*models.Port, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+portColumns+` FROM sea_ports WHERE id = ?`, id)
	p, err := scanPort(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error fetching port %d: %w", id, err)
	}
	return p, nil
}

func (s *SQLiteDB) ListPorts(ctx context.Context) ([]models.Port, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+portColumns+` FROM sea_ports ORDER BY port_name`)
	if err != nil {
		return nil, fmt.Errorf("error listing ports: %w", err)
	}
	defer rows.Close()

	ports := []models.Port{}
	for rows.Next() {
		p, err := scanPort(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning port: %w", err)
		}
		ports = append(ports, *p)
	}
	return ports, rows.Err()
}

func (s *SQLiteDB) CountPorts(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sea_ports`).Scan(&n)
	return n, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPort(sc scanner) (*models.Port, error) {
	var (
		p        models.Port
		lat, lng sql.NullFloat64
	)
	if err := sc.Scan(&p.ID, &p.Name, &p.Region, &p.Country, &lat, &lng, &p.Status, &p.LastUpdated); err != nil {
		return nil, err
	}
	p.Location.Latitude = coordinate(lat, 90)
	p.Location.Longitude = coordinate(lng, 180)
	p.Status = models.NormalizePortStatus(p.Status)
	return &p, nil
}

// coordinate drops values outside ±limit and rounds to six decimals.
func coordinate(v sql.NullFloat64, limit float64) *models.Number {
	if !v.Valid || math.Abs(v.Float64) > limit {
		return nil
	}
	return models.NewNumber(math.Round(v.Float64*1e6) / 1e6)
}

func (s *SQLiteDB) AddETA(ctx context.Context, e *models.ETA) error {
	var expected sql.NullString
	if t, ok := e.Expected(); ok {
		expected = sql.NullString{String: t.Format(etaLayout), Valid: true}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO eta_results (ship_name, port_from, port_to, eta_expected, delay_hours, reason,
			distance_to_hazard, latitude, longitude, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ShipName, e.PortFrom, e.PortTo, expected, e.Delay(), nullString(e.Reason),
		nullNumber(e.DistanceToHazard), nullNumber(e.Latitude), nullNumber(e.Longitude),
		s.now().UTC().Format(createdLayout),
	)
	if err != nil {
		return fmt.Errorf("error inserting eta for %s: %w", e.ShipName, err)
	}
	return nil
}

const etaColumns = `ship_name, port_from, port_to, eta_expected, COALESCE(delay_hours, 0), reason,
	distance_to_hazard, latitude, longitude`

func (s *SQLiteDB) ListETA(ctx context.Context) ([]models.ETA, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+etaColumns+`
		FROM eta_results
		WHERE latitude IS NOT NULL AND longitude IS NOT NULL
		ORDER BY ship_name ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("error listing eta: %w", err)
	}
	defer rows.Close()

	records := []models.ETA{}
	for rows.Next() {
		e, err := scanETA(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning eta: %w", err)
		}
		records = append(records, *e)
	}
	return records, rows.Err()
}

func (s *SQLiteDB) LatestETA(ctx context.Context, shipName string) (*models.ETA, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+etaColumns+`
		FROM eta_results
		WHERE ship_name = ?
		ORDER BY created_at DESC, id DESC
		LIMIT 1`, shipName)
	e, err := scanETA(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error fetching eta for %s: %w", shipName, err)
	}
	return e, nil
}

func scanETA(sc scanner) (*models.ETA, error) {
	var (
		e                models.ETA
		expected, reason sql.NullString
		delay            float64
		hazard, lat, lng sql.NullFloat64
	)
	if err := sc.Scan(&e.ShipName, &e.PortFrom, &e.PortTo, &expected, &delay, &reason, &hazard, &lat, &lng); err != nil {
		return nil, err
	}
	e.ETAExpected = expected.String
	e.DelayHours = models.Number(delay)
	e.Status = models.APIStatus(delay)
	e.Reason = reason.String
	e.DistanceToHazard = models.NewNumber(hazard.Float64)
	if lat.Valid {
		e.Latitude = models.NewNumber(lat.Float64)
	}
	if lng.Valid {
		e.Longitude = models.NewNumber(lng.Float64)
	}
	return &e, nil
}

func (s *SQLiteDB) ListShips(ctx context.Context, since time.Time) ([]models.Ship, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT e.ship_name, e.port_from, e.port_to, e.eta_expected, COALESCE(e.delay_hours, 0),
			e.reason, p.latitude, p.longitude
		FROM eta_results e
		LEFT JOIN sea_ports p ON e.port_to = p.port_name
		WHERE e.eta_expected > ?
		ORDER BY e.eta_expected ASC`, since.Format(etaLayout))
	if err != nil {
		return nil, fmt.Errorf("error listing ships: %w", err)
	}
	defer rows.Close()

	ships := []models.Ship{}
	for rows.Next() {
		var (
			sh            models.Ship
			from, to, eta string
			reason        sql.NullString
			lat, lng      sql.NullFloat64
		)
		if err := rows.Scan(&sh.Name, &from, &to, &eta, &sh.DelayHours, &reason, &lat, &lng); err != nil {
			return nil, fmt.Errorf("error scanning ship: %w", err)
		}
		sh.ID = sh.Name
		sh.Route = from + " → " + to
		sh.ETA = eta
		sh.Status = models.APIStatus(sh.DelayHours)
		sh.Reason = reason.String
		if lat.Valid {
			sh.Lat = &lat.Float64
		}
		if lng.Valid {
			sh.Lng = &lng.Float64
		}
		ships = append(ships, sh)
	}
	return ships, rows.Err()
}

func (s *SQLiteDB) AddStorm(ctx context.Context, st *models.Storm) (int, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO storm_info (name, latitude, longitude, wind_kmh, level, radius_km, warning_radius_km)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		st.Name, st.Latitude, st.Longitude, st.WindKmh, nullString(st.Level), st.RadiusKm, st.WarningRadiusKm,
	)
	if err != nil {
		return 0, fmt.Errorf("error inserting storm %s: %w", st.Name, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return int(id), nil
}

const stormColumns = `id, name, latitude, longitude, wind_kmh, COALESCE(level, ''), radius_km, warning_radius_km`

func (s *SQLiteDB) ListStorms(ctx context.Context) ([]models.Storm, error) {
	return s.queryStorms(ctx, `SELECT `+stormColumns+` FROM storm_info ORDER BY wind_kmh DESC`)
}

func (s *SQLiteDB) ListStormAlerts(ctx context.Context) ([]models.StormAlert, error) {
	storms, err := s.queryStorms(ctx, `
		SELECT `+stormColumns+`
		FROM storm_info
		ORDER BY
			CASE level
				WHEN 'Super Typhoon' THEN 1
				WHEN 'Category 5' THEN 2
				WHEN 'Category 4' THEN 3
				WHEN 'Category 3' THEN 4
				WHEN 'Category 2' THEN 5
				WHEN 'Category 1' THEN 6
				WHEN 'Tropical Storm' THEN 7
				ELSE 8
			END,
			wind_kmh DESC`)
	if err != nil {
		return nil, err
	}

	alerts := make([]models.StormAlert, 0, len(storms))
	for _, st := range storms {
		alerts = append(alerts, st.Alert())
	}
	return alerts, nil
}

func (s *SQLiteDB) queryStorms(ctx context.Context, query string) ([]models.Storm, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error listing storms: %w", err)
	}
	defer rows.Close()

	storms := []models.Storm{}
	for rows.Next() {
		var st models.Storm
		if err := rows.Scan(&st.ID, &st.Name, &st.Latitude, &st.Longitude, &st.WindKmh, &st.Level, &st.RadiusKm, &st.WarningRadiusKm); err != nil {
			return nil, fmt.Errorf("error scanning storm: %w", err)
		}
		storms = append(storms, st)
	}
	return storms, rows.Err()
}

func nullNumber(n *models.Number) sql.NullFloat64 {
	if n == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: n.Float(), Valid: true}
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
