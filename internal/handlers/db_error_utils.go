package handlers

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

// isDuplicateEntryError checks for a MySQL/MariaDB unique constraint
// failure, so it can surface as a validation response instead of a
// generic 500.
func isDuplicateEntryError(err error) bool {
	var mysqlErr *mysql.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == 1062
}

// isForeignKeyConstraintError checks if the error corresponds to a
// MySQL/MariaDB foreign key constraint failure.
func isForeignKeyConstraintError(err error) bool {
	var mysqlErr *mysql.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == 1452
}
