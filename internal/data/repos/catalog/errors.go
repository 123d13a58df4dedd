package catalog

import (
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const pgUniqueViolation = "23505"

// IsUniqueViolation recognizes unique-key failures from postgres and sqlite,
// translated by gorm or not.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// versionedUpdate applies updates only when the stored version still equals
// expected, and advances it by one.
func versionedUpdate(tx *gorm.DB, model any, id, expected int64, updates map[string]interface{}) (bool, error) {
	updates["version"] = expected + 1
	updates["updated_at"] = time.Now().UTC()
	res := tx.Model(model).
		Where("id = ? AND version = ?", id, expected).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func storedVersion(tx *gorm.DB, model any, id int64) (int64, bool, error) {
	var out []int64
	if err := tx.Model(model).Where("id = ?", id).Limit(1).Pluck("version", &out).Error; err != nil {
		return 0, false, err
	}
	if len(out) == 0 {
		return 0, false, nil
	}
	return out[0], true, nil
}
