package listings

import (
	"encoding/json"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	errStarsNotNumber  = errors.New("stars must be a number between 1 and 5")
	errStarsOutOfRange = errors.New("stars must be between 1 and 5")
)

// ParseStars accepts a JSON number or numeric string in [1, 5].
func ParseStars(raw json.RawMessage) (float64, error) {
	var n Number
	if err := n.UnmarshalJSON(raw); err != nil || !n.Valid {
		return 0, errStarsNotNumber
	}
	if !(n.Value >= 1 && n.Value <= 5) {
		return 0, errStarsOutOfRange
	}
	return n.Value, nil
}

// upsertReview inserts the review or overwrites the caller's earlier review
// of the same property.
func upsertReview(tx *gorm.DB, review *Review) *gorm.DB {
	if review.UpdatedAt.IsZero() {
		review.UpdatedAt = time.Now().UTC()
	}
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "property_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"stars", "comments", "updated_at"}),
	}).Create(review)
}

type ReviewView struct {
	UserID    uint      `json:"userId"`
	Username  string    `json:"username"`
	Stars     float64   `json:"stars"`
	Comments  *string   `json:"comments"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func reviewsQuery(tx *gorm.DB, propertyID uint) *gorm.DB {
	return tx.Table("housing.reviews AS r").
		Select("r.user_id, u.username, r.stars, r.comments, r.updated_at").
		Joins("JOIN app_auth.users AS u ON u.id = r.user_id").
		Where("r.property_id = ?", propertyID).
		Order("r.updated_at DESC")
}
