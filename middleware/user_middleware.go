package middleware

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/andrewpaige1/roadmap-api/models"
	"github.com/andrewpaige1/roadmap-api/utils"
)

type contextKey string

const userKey contextKey = "user"

func WithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

func UserFromContext(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(userKey).(*models.User)
	return user, ok && user != nil
}

// SyncUserMiddleware ensures the Auth0 user exists in the DB and attaches it to context.
func SyncUserMiddleware(db *gorm.DB, logger *zap.Logger) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			auth0ID, ok := utils.GetAuth0ID(r)
			if !ok {
				utils.WriteJSON(w, http.StatusUnauthorized, map[string]string{"message": "No Auth0 subject found"})
				return
			}

			user, err := syncUser(r.Context(), db, auth0ID, utils.GetNickname(r))
			if err != nil {
				logger.Error("failed to sync user", zap.String("auth0_id", auth0ID), zap.Error(err))
				utils.WriteJSON(w, http.StatusInternalServerError, map[string]string{"message": "Failed to sync user"})
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		}
	}
}

func syncUser(ctx context.Context, db *gorm.DB, auth0ID, nickname string) (*models.User, error) {
	db = db.WithContext(ctx)

	var user models.User
	err := db.Where("auth0_id = ?", auth0ID).First(&user).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		user = models.User{Auth0ID: auth0ID, Nickname: nickname}
		if err := db.Create(&user).Error; err != nil {
			// a concurrent request may have created the row first
			if lookupErr := db.Where("auth0_id = ?", auth0ID).First(&user).Error; lookupErr != nil {
				return nil, err
			}
		}
		return &user, nil
	case err != nil:
		return nil, err
	}

	// update nickname only if non-empty and changed
	if nickname != "" && user.Nickname != nickname {
		if err := db.Model(&user).Update("nickname", nickname).Error; err != nil {
			return nil, err
		}
		user.Nickname = nickname
	}
	return &user, nil
}
