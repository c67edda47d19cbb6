package mysql

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

// MySQL server error numbers relevant to the foreign keys in the schema.
// Checked structurally so the discrimination never depends on message text.
const errRowIsReferenced = 1451

// isRowReferenced reports whether err is the driver error raised when a
// DELETE would orphan rows that reference the target via a foreign key.
func isRowReferenced(err error) bool {
	var mysqlErr *mysql.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == errRowIsReferenced
}
