package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"k8s.io/klog/v2"

	"github.com/modelmagic/modelmagic/dao/model"
	"github.com/modelmagic/modelmagic/internal/resputil"
	"github.com/modelmagic/modelmagic/internal/util"
	"github.com/modelmagic/modelmagic/pkg/config"
	"github.com/modelmagic/modelmagic/pkg/mailer"
	"github.com/modelmagic/modelmagic/pkg/workflow"
)

//nolint:gochecknoinits // This is the standard way to register a gin handler.
func init() {
	Registers = append(Registers, NewAuthMgr)
}

type AuthMgr struct {
	name   string
	db     *gorm.DB
	mailer *mailer.Mailer
}

func NewAuthMgr(conf *RegisterConfig) Manager {
	return &AuthMgr{
		name:   "auth",
		db:     conf.DB,
		mailer: conf.Mailer,
	}
}

func (mgr *AuthMgr) GetName() string { return mgr.name }

func (mgr *AuthMgr) RegisterPublic(g *gin.RouterGroup) {
	g.POST("/login", mgr.Login)
	g.GET("/verify-token", mgr.VerifyToken)
	g.POST("/refresh", mgr.RefreshToken)
}

func (mgr *AuthMgr) RegisterProtected(_ *gin.RouterGroup) {}

func (mgr *AuthMgr) RegisterAdmin(_ *gin.RouterGroup) {}

type LoginReq struct {
	Email string `json:"email" binding:"required,email"`
}

// Login godoc
//
//	@Summary		Request a magic sign-in link
//	@Description	Issues a single-use token and mails it to the address
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			data	body		LoginReq	true	"login email"
//	@Success		200		{object}	resputil.Response[string]	"magic link sent"
//	@Failure		400		{object}	resputil.Response[any]	"request parameter error"
//	@Router			/v1/auth/login [post]
func (mgr *AuthMgr) Login(c *gin.Context) {
	var req LoginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}

	ttl := time.Duration(config.GetConfig().Auth.MagicLinkExpiryMinute) * time.Minute
	token := model.MagicToken{
		Token:     uuid.NewString(),
		Email:     req.Email,
		ExpiresAt: time.Now().Add(ttl),
	}
	if err := mgr.db.WithContext(c).Create(&token).Error; err != nil {
		resputil.Error(c, "failed to issue login token", resputil.NotSpecified)
		return
	}

	if err := mgr.mailer.SendMagicLink(req.Email, token.Token); err != nil {
		klog.Errorf("magic link delivery to %s: %v", req.Email, err)
		resputil.Error(c, "failed to send magic link", resputil.NotSpecified)
		return
	}
	resputil.Success(c, "Magic link sent")
}

type VerifyResp struct {
	User         UserResp `json:"user"`
	AccessToken  string   `json:"accessToken"`
	RefreshToken string   `json:"refreshToken"`
}

// VerifyToken godoc
//
//	@Summary		Exchange a magic-link token for a session
//	@Description	Consumes the single-use token and returns JWTs; first-time
//	@Description	visitors get a client account created on the fly
//	@Tags			Auth
//	@Produce		json
//	@Param			token	query		string	true	"magic link token"
//	@Success		200		{object}	resputil.Response[VerifyResp]	"session tokens"
//	@Failure		401		{object}	resputil.Response[any]	"invalid or expired token"
//	@Router			/v1/auth/verify-token [get]
func (mgr *AuthMgr) VerifyToken(c *gin.Context) {
	tokenStr := c.Query("token")
	if tokenStr == "" {
		resputil.BadRequestError(c, "token is required")
		return
	}

	var magic model.MagicToken
	err := mgr.db.WithContext(c).Where("token = ?", tokenStr).First(&magic).Error
	if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && magic.ExpiresAt.Before(time.Now())) {
		resputil.HTTPError(c, http.StatusUnauthorized, "Invalid or expired token", resputil.MagicLinkExpired)
		return
	}
	if err != nil {
		resputil.Error(c, err.Error(), resputil.NotSpecified)
		return
	}
	// Single use.
	mgr.db.WithContext(c).Unscoped().Delete(&magic)

	user, err := mgr.findOrCreateUser(c, magic.Email)
	if err != nil {
		resputil.Error(c, err.Error(), resputil.NotSpecified)
		return
	}

	now := time.Now()
	user.LastLogin = &now
	if err := mgr.db.WithContext(c).Save(user).Error; err != nil {
		resputil.Error(c, err.Error(), resputil.NotSpecified)
		return
	}

	msg := sessionMessage(user)
	access, refresh, err := util.GetTokenMgr().CreateTokens(&msg)
	if err != nil {
		resputil.Error(c, "failed to issue session tokens", resputil.NotSpecified)
		return
	}
	resputil.Success(c, VerifyResp{
		User:         toUserResp(user),
		AccessToken:  access,
		RefreshToken: refresh,
	})
}

type RefreshReq struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// RefreshToken godoc
//
//	@Summary		Refresh the session
//	@Description	Issues a new token pair from a valid refresh token
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			data	body		RefreshReq	true	"refresh token"
//	@Success		200		{object}	resputil.Response[VerifyResp]	"session tokens"
//	@Failure		401		{object}	resputil.Response[any]	"invalid token"
//	@Router			/v1/auth/refresh [post]
func (mgr *AuthMgr) RefreshToken(c *gin.Context) {
	var req RefreshReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}

	claims, err := util.GetTokenMgr().CheckToken(req.RefreshToken)
	if err != nil {
		resputil.HTTPError(c, http.StatusUnauthorized, err.Error(), resputil.TokenExpired)
		return
	}

	// Re-read the user: role or view mode may have changed since issuance.
	var user model.User
	if err := mgr.db.WithContext(c).First(&user, claims.UserID).Error; err != nil {
		resputil.HTTPError(c, http.StatusUnauthorized, "user no longer exists", resputil.TokenInvalid)
		return
	}

	msg := sessionMessage(&user)
	access, refresh, err := util.GetTokenMgr().CreateTokens(&msg)
	if err != nil {
		resputil.Error(c, "failed to issue session tokens", resputil.NotSpecified)
		return
	}
	resputil.Success(c, VerifyResp{
		User:         toUserResp(&user),
		AccessToken:  access,
		RefreshToken: refresh,
	})
}

func (mgr *AuthMgr) findOrCreateUser(c *gin.Context, email string) (*model.User, error) {
	var user model.User
	err := mgr.db.WithContext(c).Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		user = model.User{
			Email:    email,
			Role:     model.RoleClient,
			Status:   model.UserStatusActive,
			ViewMode: model.ViewModeClient,
			Plan:     "Starter",
		}
		if createErr := mgr.db.WithContext(c).Create(&user).Error; createErr != nil {
			return nil, createErr
		}
		return &user, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// sessionMessage resolves the surface the session starts on; stored
// preferences never leak an admin surface to non-admins.
func sessionMessage(user *model.User) util.JWTMessage {
	return util.JWTMessage{
		UserID:   user.ID,
		Email:    user.Email,
		Username: user.Name,
		Role:     user.Role,
		ViewMode: workflow.ResolveViewMode(user.Role, user.ViewMode),
	}
}
