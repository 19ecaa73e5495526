package repository

import (
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// ErrDuplicate is returned when a write violates a unique index.
var ErrDuplicate = errors.New("duplicate key")

// translateWriteError maps driver specific unique violations to ErrDuplicate.
func translateWriteError(err error) error {
	if err == nil {
		return nil
	}
	if isDuplicate(err) {
		return ErrDuplicate
	}
	return err
}

func isDuplicate(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == 1062
	}
	// sqlite drivers only expose the message.
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// deleteOwned deletes the row with id owned by userID. A missing or foreign
// row yields gorm.ErrRecordNotFound.
func deleteOwned(db *gorm.DB, value interface{}, userID, id uint) error {
	res := db.Where("id = ? AND user_id = ?", id, userID).Delete(value)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
