package repositories

import (
	"database/sql"
	"encoding/json"
	"strings"

	intconfig "github.com/KennyKvn001/BusB/internal/config"
	"github.com/KennyKvn001/BusB/internal/domain/models"
	"github.com/KennyKvn001/BusB/internal/utils"
)

type RouteRepo struct {
	DB *sql.DB
}

func (r RouteRepo) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

const routeColumns = `id, bus_id, start_name, start_lng, start_lat, end_name, end_lng, end_lat,
	stops, distance, duration, price, schedule_days, departure_time, arrival_time,
	is_popular, status, created_at, updated_at`

type routeScanner interface {
	Scan(dest ...any) error
}

func scanRoute(row routeScanner) (models.Route, error) {
	var (
		rt    models.Route
		stops sql.NullString
		days  string
	)
	err := row.Scan(
		&rt.ID, &rt.BusID,
		&rt.StartLocation.Name, &rt.StartLocation.Coordinates.Longitude, &rt.StartLocation.Coordinates.Latitude,
		&rt.EndLocation.Name, &rt.EndLocation.Coordinates.Longitude, &rt.EndLocation.Coordinates.Latitude,
		&stops, &rt.Distance, &rt.Duration, &rt.Price, &days,
		&rt.DepartureTime, &rt.ArrivalTime, &rt.IsPopular, &rt.Status,
		&rt.CreatedAt, &rt.UpdatedAt,
	)
	if err != nil {
		return rt, err
	}
	rt.ScheduleDays = utils.SplitCSV(days)
	rt.Stops = []models.RouteStop{}
	if s := strings.TrimSpace(stops.String); s != "" {
		_ = json.Unmarshal([]byte(s), &rt.Stops)
	}
	return rt, nil
}

func (r RouteRepo) GetByID(id int64) (models.Route, error) {
	return scanRoute(r.db().QueryRow(`SELECT `+routeColumns+` FROM routes WHERE id=? LIMIT 1`, id))
}

type RouteFilter struct {
	Status        models.RouteStatus
	BusID         int64
	OperatorID    int64
	StartLocation string
	EndLocation   string
	Page          int
	PageSize      int
}

// List returns routes matching the filter plus the unpaged total. Operator
// filtering joins through buses since routes carry no operator column.
func (r RouteRepo) List(f RouteFilter) ([]models.Route, int, error) {
	where := []string{"1=1"}
	args := []any{}
	join := ""
	prefix := ""
	if f.OperatorID > 0 {
		join = " JOIN buses b ON b.id = routes.bus_id"
		prefix = "routes."
		where = append(where, "b.operator_id=?")
		args = append(args, f.OperatorID)
	}
	if f.Status != "" {
		where = append(where, prefix+"status=?")
		args = append(args, f.Status)
	}
	if f.BusID > 0 {
		where = append(where, prefix+"bus_id=?")
		args = append(args, f.BusID)
	}
	if s := strings.TrimSpace(f.StartLocation); s != "" {
		where = append(where, prefix+"start_name LIKE ?")
		args = append(args, "%"+s+"%")
	}
	if s := strings.TrimSpace(f.EndLocation); s != "" {
		where = append(where, prefix+"end_name LIKE ?")
		args = append(args, "%"+s+"%")
	}
	cond := strings.Join(where, " AND ")

	var total int
	if err := r.db().QueryRow(`SELECT COUNT(*) FROM routes`+join+` WHERE `+cond, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	page, size := normalizePage(f.Page, f.PageSize)
	args = append(args, size, (page-1)*size)
	sel := `SELECT ` + prefixColumns(routeColumns, prefix) + ` FROM routes` + join + ` WHERE ` + cond +
		` ORDER BY ` + prefix + `created_at DESC, ` + prefix + `id DESC LIMIT ? OFFSET ?`
	rows, err := r.db().Query(sel, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := []models.Route{}
	for rows.Next() {
		rt, err := scanRoute(rows)
		if err != nil {
			return out, total, err
		}
		out = append(out, rt)
	}
	return out, total, rows.Err()
}

// SearchActive returns active routes whose endpoints match the given names.
// Schedule-day filtering happens in the service, where the travel date's
// weekday is known.
func (r RouteRepo) SearchActive(startLocation, endLocation string) ([]models.Route, error) {
	rows, err := r.db().Query(`
		SELECT `+routeColumns+` FROM routes
		WHERE status=? AND start_name LIKE ? AND end_name LIKE ?
		ORDER BY departure_time ASC, id ASC LIMIT 100
	`, models.RouteActive, "%"+strings.TrimSpace(startLocation)+"%", "%"+strings.TrimSpace(endLocation)+"%")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Route{}
	for rows.Next() {
		rt, err := scanRoute(rows)
		if err != nil {
			return out, err
		}
		out = append(out, rt)
	}
	return out, rows.Err()
}

// ListPopular prefers routes flagged popular, falling back to recent actives.
func (r RouteRepo) ListPopular(limit int) ([]models.Route, error) {
	if limit < 1 {
		limit = 10
	}
	run := func(query string, args ...any) ([]models.Route, error) {
		rows, err := r.db().Query(query, args...)
		if err != nil {
			return nil, err
		}
		defer rows.Close()
		out := []models.Route{}
		for rows.Next() {
			rt, err := scanRoute(rows)
			if err != nil {
				return out, err
			}
			out = append(out, rt)
		}
		return out, rows.Err()
	}

	routes, err := run(`SELECT `+routeColumns+` FROM routes WHERE status=? AND is_popular=1 ORDER BY id ASC LIMIT ?`, models.RouteActive, limit)
	if err != nil || len(routes) > 0 {
		return routes, err
	}
	return run(`SELECT `+routeColumns+` FROM routes WHERE status=? ORDER BY created_at DESC LIMIT ?`, models.RouteActive, limit)
}

// ListIDsByOperator resolves the route-id subset an operator owns through
// the bus chain.
func (r RouteRepo) ListIDsByOperator(operatorID int64) ([]int64, error) {
	rows, err := r.db().Query(`
		SELECT r.id FROM routes r
		JOIN buses b ON b.id = r.bus_id
		WHERE b.operator_id=?
	`, operatorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return out, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

func prefixColumns(cols, prefix string) string {
	if prefix == "" {
		return cols
	}
	parts := utils.SplitCSV(cols)
	for i, p := range parts {
		parts[i] = prefix + p
	}
	return strings.Join(parts, ", ")
}
