package db

import (
	"database/sql"
	"fmt"
)

// Migrate creates the schema when missing. The two unique keys on tickets are
// load-bearing: uniq_active_seat is the authoritative guard against two booked
// tickets claiming the same route/date/seat (seat_hold collapses to NULL for
// cancelled and completed rows, and NULLs never collide in a MySQL unique
// index), and uniq_booking_reference keeps references unique for the lifetime
// of the table. Application-level pre-checks are a courtesy on top of these.
func Migrate(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			email VARCHAR(255) NOT NULL,
			phone VARCHAR(100) NOT NULL DEFAULT '',
			password_hash VARCHAR(255) NOT NULL,
			role VARCHAR(20) NOT NULL DEFAULT 'user',
			status VARCHAR(20) NOT NULL DEFAULT 'active',
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
			UNIQUE KEY uniq_users_email (email)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`,

		`CREATE TABLE IF NOT EXISTS operators (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			user_id BIGINT NOT NULL,
			company_name VARCHAR(255) NOT NULL,
			contact_phone VARCHAR(100) NOT NULL DEFAULT '',
			license_number VARCHAR(100) NOT NULL DEFAULT '',
			status VARCHAR(20) NOT NULL DEFAULT 'pending',
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
			UNIQUE KEY uniq_operators_user (user_id)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`,

		`CREATE TABLE IF NOT EXISTS buses (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			operator_id BIGINT NOT NULL,
			plate_number VARCHAR(20) NOT NULL,
			model VARCHAR(100) NOT NULL DEFAULT '',
			year INT NULL,
			capacity INT NOT NULL,
			features TEXT NULL,
			status VARCHAR(20) NOT NULL DEFAULT 'active',
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
			UNIQUE KEY uniq_buses_plate (plate_number),
			KEY idx_buses_operator (operator_id)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`,

		`CREATE TABLE IF NOT EXISTS routes (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			bus_id BIGINT NOT NULL,
			start_name VARCHAR(255) NOT NULL,
			start_lng DOUBLE NOT NULL DEFAULT 0,
			start_lat DOUBLE NOT NULL DEFAULT 0,
			end_name VARCHAR(255) NOT NULL,
			end_lng DOUBLE NOT NULL DEFAULT 0,
			end_lat DOUBLE NOT NULL DEFAULT 0,
			stops TEXT NULL,
			distance DOUBLE NOT NULL DEFAULT 0,
			duration INT NOT NULL DEFAULT 0,
			price DECIMAL(12,2) NOT NULL DEFAULT 0,
			schedule_days VARCHAR(100) NOT NULL DEFAULT '',
			departure_time VARCHAR(5) NOT NULL DEFAULT '',
			arrival_time VARCHAR(5) NOT NULL DEFAULT '',
			is_popular TINYINT(1) NOT NULL DEFAULT 0,
			status VARCHAR(20) NOT NULL DEFAULT 'active',
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
			KEY idx_routes_bus (bus_id),
			KEY idx_routes_status (status)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`,

		`CREATE TABLE IF NOT EXISTS tickets (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			route_id BIGINT NOT NULL,
			travel_date CHAR(10) NOT NULL,
			seat_number INT NOT NULL,
			price DECIMAL(12,2) NOT NULL,
			booking_reference VARCHAR(16) NOT NULL,
			user_id BIGINT NULL,
			guest_name VARCHAR(255) NULL,
			guest_email VARCHAR(255) NULL,
			guest_phone VARCHAR(100) NULL,
			status VARCHAR(20) NOT NULL DEFAULT 'booked',
			payment_status VARCHAR(20) NOT NULL DEFAULT 'pending',
			payment_method VARCHAR(50) NULL,
			payment_transaction_id VARCHAR(100) NULL,
			payment_paid_at TIMESTAMP NULL,
			bp_qr_code VARCHAR(255) NULL,
			bp_scanned TINYINT(1) NOT NULL DEFAULT 0,
			bp_scanned_at TIMESTAMP NULL,
			seat_hold TINYINT AS (IF(status = 'booked', 1, NULL)) STORED,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
			UNIQUE KEY uniq_booking_reference (booking_reference),
			UNIQUE KEY uniq_active_seat (route_id, travel_date, seat_number, seat_hold),
			KEY idx_tickets_route_date (route_id, travel_date),
			KEY idx_tickets_user (user_id)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`,
	}

	for _, ddl := range stmts {
		if _, err := db.Exec(ddl); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
