package auth

import (
	"context"
	"fmt"

	"github.com/MainePadFinder/padfinder/internal/db"
	"github.com/MainePadFinder/padfinder/internal/utils"
)

// RoleMembership answers whether a user has a row in each role table.
type RoleMembership interface {
	IsLandlord(ctx context.Context, userID uint) (bool, error)
	IsRenter(ctx context.Context, userID uint) (bool, error)
}

// ResolveRole checks the landlord table first, then the renter table, and
// falls back to Unknown. A user present in both tables is a Landlord.
func ResolveRole(ctx context.Context, m RoleMembership, userID uint) (utils.Role, error) {
	landlord, err := m.IsLandlord(ctx, userID)
	if err != nil {
		return utils.RoleUnknown, fmt.Errorf("landlord lookup: %w", err)
	}
	if landlord {
		return utils.RoleLandlord, nil
	}

	renter, err := m.IsRenter(ctx, userID)
	if err != nil {
		return utils.RoleUnknown, fmt.Errorf("renter lookup: %w", err)
	}
	if renter {
		return utils.RoleRenter, nil
	}

	return utils.RoleUnknown, nil
}

// RoleInfo is the database-backed RoleMembership and middleware.RoleResolver.
type RoleInfo struct{}

func (RoleInfo) IsLandlord(ctx context.Context, userID uint) (bool, error) {
	var n int64
	err := db.DB.WithContext(ctx).Model(&Landlord{}).Where("user_id = ?", userID).Count(&n).Error
	return n > 0, err
}

func (RoleInfo) IsRenter(ctx context.Context, userID uint) (bool, error) {
	var n int64
	err := db.DB.WithContext(ctx).Model(&Renter{}).Where("user_id = ?", userID).Count(&n).Error
	return n > 0, err
}

func (ri RoleInfo) ResolveRole(ctx context.Context, userID uint) (utils.Role, error) {
	return ResolveRole(ctx, ri, userID)
}
