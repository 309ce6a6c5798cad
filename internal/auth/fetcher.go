package auth

import (
	"context"

	"github.com/MainePadFinder/padfinder/internal/db"
	"github.com/MainePadFinder/padfinder/internal/utils"
)

type SessionInfo struct{}

func (si SessionInfo) FindSessionByToken(ctx context.Context, token string) (utils.SessionData, error) {
	var session Session

	err := db.DB.WithContext(ctx).First(&session, "token = ?", token).Error
	if err != nil {
		return utils.SessionData{}, err
	}

	return utils.SessionData{
		UserID:    session.UserID,
		ExpiresAt: session.ExpiresAt,
	}, nil
}
