package repositories

import (
	"database/sql"

	intconfig "github.com/KennyKvn001/BusB/internal/config"
	"github.com/KennyKvn001/BusB/internal/domain/models"
)

type OperatorRepo struct {
	DB *sql.DB
}

func (r OperatorRepo) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

const operatorColumns = `id, user_id, company_name, contact_phone, license_number, status, created_at, updated_at`

func scanOperator(row *sql.Row) (models.Operator, error) {
	var o models.Operator
	err := row.Scan(&o.ID, &o.UserID, &o.CompanyName, &o.ContactPhone, &o.LicenseNumber, &o.Status, &o.CreatedAt, &o.UpdatedAt)
	return o, err
}

func (r OperatorRepo) GetByID(id int64) (models.Operator, error) {
	return scanOperator(r.db().QueryRow(`SELECT `+operatorColumns+` FROM operators WHERE id=? LIMIT 1`, id))
}

// GetByUserID looks up the operator profile attached to a user account.
func (r OperatorRepo) GetByUserID(userID int64) (models.Operator, error) {
	return scanOperator(r.db().QueryRow(`SELECT `+operatorColumns+` FROM operators WHERE user_id=? LIMIT 1`, userID))
}
