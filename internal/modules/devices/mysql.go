package devices

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

func isDupKey(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == 1062
}
