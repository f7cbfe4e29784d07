package repository

import (
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// existsBy reports whether a row with column = value exists, optionally ignoring one id
func existsBy(db *gorm.DB, m interface{}, column, value string, excludeID *uuid.UUID) (bool, error) {
	var count int64
	q := db.Model(m).Where(column+" = ?", value)
	if excludeID != nil {
		q = q.Where("id <> ?", *excludeID)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// deleteByID hard-deletes m and reports gorm.ErrRecordNotFound when nothing matched
func deleteByID(tx *gorm.DB, m interface{}, id uuid.UUID) error {
	res := tx.Delete(m, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

// escapeLike makes value match literally inside a LIKE ... ESCAPE '!' pattern.
// '!' is used instead of backslash, which MySQL treats as an escape inside string literals.
func escapeLike(value string) string {
	return likeEscaper.Replace(value)
}
