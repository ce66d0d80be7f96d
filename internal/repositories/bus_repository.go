package repositories

import (
	"database/sql"
	"encoding/json"
	"strings"

	intconfig "github.com/KennyKvn001/BusB/internal/config"
	"github.com/KennyKvn001/BusB/internal/domain/models"
)

type BusRepo struct {
	DB *sql.DB
}

func (r BusRepo) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

const busColumns = `id, operator_id, plate_number, model, year, capacity, features, status, created_at, updated_at`

type busScanner interface {
	Scan(dest ...any) error
}

func scanBus(row busScanner) (models.Bus, error) {
	var (
		b        models.Bus
		year     sql.NullInt64
		features sql.NullString
	)
	err := row.Scan(&b.ID, &b.OperatorID, &b.PlateNumber, &b.Model, &year, &b.Capacity, &features, &b.Status, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return b, err
	}
	b.Year = int(year.Int64)
	b.Features = []string{}
	if s := strings.TrimSpace(features.String); s != "" {
		_ = json.Unmarshal([]byte(s), &b.Features)
	}
	return b, nil
}

func (r BusRepo) GetByID(id int64) (models.Bus, error) {
	return scanBus(r.db().QueryRow(`SELECT `+busColumns+` FROM buses WHERE id=? LIMIT 1`, id))
}

type BusFilter struct {
	Status     models.BusStatus
	OperatorID int64
	Page       int
	PageSize   int
}

// List returns buses matching the filter plus the unpaged total.
func (r BusRepo) List(f BusFilter) ([]models.Bus, int, error) {
	where := []string{"1=1"}
	args := []any{}
	if f.Status != "" {
		where = append(where, "status=?")
		args = append(args, f.Status)
	}
	if f.OperatorID > 0 {
		where = append(where, "operator_id=?")
		args = append(args, f.OperatorID)
	}
	cond := strings.Join(where, " AND ")

	var total int
	if err := r.db().QueryRow(`SELECT COUNT(*) FROM buses WHERE `+cond, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	page, size := normalizePage(f.Page, f.PageSize)
	args = append(args, size, (page-1)*size)
	rows, err := r.db().Query(`SELECT `+busColumns+` FROM buses WHERE `+cond+` ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := []models.Bus{}
	for rows.Next() {
		b, err := scanBus(rows)
		if err != nil {
			return out, total, err
		}
		out = append(out, b)
	}
	return out, total, rows.Err()
}

func normalizePage(page, size int) (int, int) {
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = 10
	}
	if size > 100 {
		size = 100
	}
	return page, size
}
