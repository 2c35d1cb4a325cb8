package util

import (
	"github.com/gin-gonic/gin"

	"github.com/modelmagic/modelmagic/dao/model"
	"github.com/modelmagic/modelmagic/pkg/workflow"
)

const (
	UserIDKey    = "x-user-id"
	UserEmailKey = "x-user-email"
	UsernameKey  = "x-user-name"
	RoleKey      = "x-user-role"
	ViewModeKey  = "x-view-mode"
)

func SetJWTContext(c *gin.Context, msg JWTMessage) {
	c.Set(UserIDKey, msg.UserID)
	c.Set(UserEmailKey, msg.Email)
	c.Set(UsernameKey, msg.Username)
	c.Set(RoleKey, msg.Role)
	c.Set(ViewModeKey, msg.ViewMode)
}

func GetToken(ctx *gin.Context) JWTMessage {
	var msg JWTMessage
	msg.UserID = ctx.GetUint(UserIDKey)
	msg.Email = ctx.GetString(UserEmailKey)
	msg.Username = ctx.GetString(UsernameKey)

	role, _ := ctx.Get(RoleKey)
	msg.Role, _ = role.(model.Role)

	viewMode, _ := ctx.Get(ViewModeKey)
	msg.ViewMode, _ = viewMode.(model.ViewMode)
	return msg
}

// GetActor builds the workflow actor for the current request.
func GetActor(ctx *gin.Context) workflow.Actor {
	msg := GetToken(ctx)
	return workflow.Actor{UserID: msg.UserID, Email: msg.Email, Role: msg.Role}
}
