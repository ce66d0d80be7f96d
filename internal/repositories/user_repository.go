package repositories

import (
	"database/sql"

	intconfig "github.com/KennyKvn001/BusB/internal/config"
	"github.com/KennyKvn001/BusB/internal/domain/models"
)

type UserRepo struct {
	DB *sql.DB
}

func (r UserRepo) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

const userColumns = `id, name, email, phone, password_hash, role, status, created_at, updated_at`

func scanUser(row *sql.Row) (models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Phone, &u.PasswordHash, &u.Role, &u.Status, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

func (r UserRepo) GetByID(id int64) (models.User, error) {
	return scanUser(r.db().QueryRow(`SELECT `+userColumns+` FROM users WHERE id=? LIMIT 1`, id))
}

func (r UserRepo) GetByEmail(email string) (models.User, error) {
	return scanUser(r.db().QueryRow(`SELECT `+userColumns+` FROM users WHERE email=? LIMIT 1`, email))
}

func (r UserRepo) EmailExists(email string) (bool, error) {
	var n int
	err := r.db().QueryRow(`SELECT COUNT(*) FROM users WHERE email=?`, email).Scan(&n)
	return n > 0, err
}

func (r UserRepo) Create(u *models.User) error {
	res, err := r.db().Exec(`
		INSERT INTO users (name, email, phone, password_hash, role, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, NOW(), NOW())
	`, u.Name, u.Email, u.Phone, u.PasswordHash, u.Role, u.Status)
	if err != nil {
		return err
	}
	u.ID, _ = res.LastInsertId()
	return nil
}
