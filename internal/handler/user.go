package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"k8s.io/klog/v2"

	"github.com/modelmagic/modelmagic/dao/model"
	"github.com/modelmagic/modelmagic/internal/payload"
	"github.com/modelmagic/modelmagic/internal/resputil"
	"github.com/modelmagic/modelmagic/internal/util"
	"github.com/modelmagic/modelmagic/pkg/workflow"
)

//nolint:gochecknoinits // This is the standard way to register a gin handler.
func init() {
	Registers = append(Registers, NewUserMgr)
}

type UserMgr struct {
	name string
	db   *gorm.DB
}

func NewUserMgr(conf *RegisterConfig) Manager {
	return &UserMgr{
		name: "users",
		db:   conf.DB,
	}
}

func (mgr *UserMgr) GetName() string { return mgr.name }

func (mgr *UserMgr) RegisterPublic(_ *gin.RouterGroup) {}

func (mgr *UserMgr) RegisterProtected(g *gin.RouterGroup) {
	g.GET("/me", mgr.GetCurrentUser)
	g.PUT("/me/viewmode", mgr.SetViewMode)
}

func (mgr *UserMgr) RegisterAdmin(g *gin.RouterGroup) {
	g.GET("", mgr.ListUsers)
	g.POST("", mgr.CreateUser)
	g.PUT("/:id", mgr.UpdateUser)
	g.DELETE("/:id", mgr.DeleteUser)
}

type UserResp struct {
	ID        uint             `json:"id"`
	Name      string           `json:"name"`
	Email     string           `json:"email"`
	Company   string           `json:"company"`
	Avatar    string           `json:"avatar"`
	Plan      string           `json:"plan"`
	Role      model.Role       `json:"role"`
	Status    model.UserStatus `json:"status"`
	ViewMode  model.ViewMode   `json:"viewMode"`
	LastLogin *time.Time       `json:"lastLogin"`
}

func toUserResp(u *model.User) UserResp {
	return UserResp{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Company:   u.Company,
		Avatar:    u.Avatar,
		Plan:      u.Plan,
		Role:      u.Role,
		Status:    u.Status,
		ViewMode:  workflow.ResolveViewMode(u.Role, u.ViewMode),
		LastLogin: u.LastLogin,
	}
}

// GetCurrentUser godoc
//
//	@Summary		Get the current session user
//	@Tags			User
//	@Produce		json
//	@Security		Bearer
//	@Success		200	{object}	resputil.Response[UserResp]	"user with resolved view mode"
//	@Router			/v1/users/me [get]
func (mgr *UserMgr) GetCurrentUser(c *gin.Context) {
	token := util.GetToken(c)
	var user model.User
	if err := mgr.db.WithContext(c).First(&user, token.UserID).Error; err != nil {
		resputil.HTTPError(c, http.StatusNotFound, "User not found", resputil.NotFound)
		return
	}
	resputil.Success(c, toUserResp(&user))
}

type SetViewModeReq struct {
	ViewMode model.ViewMode `json:"viewMode" binding:"required"`
}

type SetViewModeResp struct {
	User         UserResp `json:"user"`
	AccessToken  string   `json:"accessToken"`
	RefreshToken string   `json:"refreshToken"`
}

// SetViewMode godoc
//
//	@Summary		Persist the view mode preference
//	@Description	Only admins may choose the admin surface; the preference is
//	@Description	a pure UI switch and changes no project state. Fresh tokens
//	@Description	are returned because the session carries the mode.
//	@Tags			User
//	@Accept			json
//	@Produce		json
//	@Security		Bearer
//	@Param			data	body		SetViewModeReq	true	"view mode"
//	@Success		200		{object}	resputil.Response[SetViewModeResp]	"updated session"
//	@Failure		403		{object}	resputil.Response[any]	"role may not use that surface"
//	@Router			/v1/users/me/viewmode [put]
func (mgr *UserMgr) SetViewMode(c *gin.Context) {
	token := util.GetToken(c)

	var req SetViewModeReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}

	var user model.User
	if err := mgr.db.WithContext(c).First(&user, token.UserID).Error; err != nil {
		resputil.HTTPError(c, http.StatusNotFound, "User not found", resputil.NotFound)
		return
	}

	if !workflow.CanSetViewMode(user.Role, req.ViewMode) {
		resputil.HTTPError(c, http.StatusForbidden, "role may not use that surface", resputil.UserNotAllowed)
		return
	}

	user.ViewMode = req.ViewMode
	if err := mgr.db.WithContext(c).Save(&user).Error; err != nil {
		resputil.Error(c, err.Error(), resputil.NotSpecified)
		return
	}

	msg := sessionMessage(&user)
	access, refresh, err := util.GetTokenMgr().CreateTokens(&msg)
	if err != nil {
		resputil.Error(c, "failed to issue session tokens", resputil.NotSpecified)
		return
	}
	resputil.Success(c, SetViewModeResp{
		User:         toUserResp(&user),
		AccessToken:  access,
		RefreshToken: refresh,
	})
}

type (
	ListUsersReq struct {
		PageIndex *int              `form:"page_index" binding:"required"`
		PageSize  *int              `form:"page_size" binding:"required"`
		Role      *model.Role       `form:"role"`
		Status    *model.UserStatus `form:"status"`
		NameLike  *string           `form:"name_like"`
	}
	ListUsersResp payload.ListResp[UserResp]
)

// ListUsers godoc
//
//	@Summary		List portal accounts
//	@Tags			User
//	@Produce		json
//	@Security		Bearer
//	@Param			page	query		ListUsersReq	true	"pagination and filters"
//	@Success		200		{object}	resputil.Response[ListUsersResp]	"accounts"
//	@Router			/v1/admin/users [get]
func (mgr *UserMgr) ListUsers(c *gin.Context) {
	var req ListUsersReq
	if err := c.ShouldBindQuery(&req); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}

	tx := mgr.db.WithContext(c).Model(&model.User{})
	if req.Role != nil {
		tx = tx.Where("role = ?", *req.Role)
	}
	if req.Status != nil {
		tx = tx.Where("status = ?", *req.Status)
	}
	if req.NameLike != nil {
		tx = tx.Where("name LIKE ?", "%"+*req.NameLike+"%")
	}

	var count int64
	if err := tx.Count(&count).Error; err != nil {
		resputil.Error(c, err.Error(), resputil.NotSpecified)
		return
	}

	var users []model.User
	err := tx.Order("id DESC").
		Offset((*req.PageIndex) * (*req.PageSize)).
		Limit(*req.PageSize).
		Find(&users).Error
	if err != nil {
		resputil.Error(c, err.Error(), resputil.NotSpecified)
		return
	}

	rows := make([]UserResp, 0, len(users))
	for i := range users {
		rows = append(rows, toUserResp(&users[i]))
	}
	resputil.Success(c, ListUsersResp{Rows: rows, Count: count})
}

type CreateUserReq struct {
	Name    string     `json:"name" binding:"required"`
	Email   string     `json:"email" binding:"required,email"`
	Company string     `json:"company"`
	Plan    string     `json:"plan"`
	Role    model.Role `json:"role" binding:"required"`
}

// CreateUser godoc
//
//	@Summary		Create an account
//	@Description	Role is fixed at creation; there is no later promotion path
//	@Tags			User
//	@Accept			json
//	@Produce		json
//	@Security		Bearer
//	@Param			data	body		CreateUserReq	true	"account"
//	@Success		200		{object}	resputil.Response[UserResp]	"created account"
//	@Router			/v1/admin/users [post]
func (mgr *UserMgr) CreateUser(c *gin.Context) {
	var req CreateUserReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}

	user := model.User{
		Name:     req.Name,
		Email:    req.Email,
		Company:  req.Company,
		Plan:     req.Plan,
		Role:     req.Role,
		Status:   model.UserStatusActive,
		ViewMode: model.ViewModeClient,
	}
	if err := mgr.db.WithContext(c).Create(&user).Error; err != nil {
		resputil.Error(c, err.Error(), resputil.NotSpecified)
		return
	}
	resputil.Success(c, toUserResp(&user))
}

type UpdateUserReq struct {
	Name    *string           `json:"name"`
	Company *string           `json:"company"`
	Plan    *string           `json:"plan"`
	Status  *model.UserStatus `json:"status"`
}

// UpdateUser godoc
//
//	@Summary		Update an account
//	@Description	Role is immutable and absent from the request on purpose
//	@Tags			User
//	@Accept			json
//	@Produce		json
//	@Security		Bearer
//	@Param			id		path		int				true	"user id"
//	@Param			data	body		UpdateUserReq	true	"fields to update"
//	@Success		200		{object}	resputil.Response[UserResp]	"updated account"
//	@Router			/v1/admin/users/{id} [put]
func (mgr *UserMgr) UpdateUser(c *gin.Context) {
	id, ok := uriID(c)
	if !ok {
		return
	}
	var req UpdateUserReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}

	var user model.User
	if err := mgr.db.WithContext(c).First(&user, id).Error; err != nil {
		resputil.HTTPError(c, http.StatusNotFound, "User not found", resputil.NotFound)
		return
	}
	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Company != nil {
		user.Company = *req.Company
	}
	if req.Plan != nil {
		user.Plan = *req.Plan
	}
	if req.Status != nil {
		user.Status = *req.Status
	}
	if err := mgr.db.WithContext(c).Save(&user).Error; err != nil {
		resputil.Error(c, err.Error(), resputil.NotSpecified)
		return
	}
	resputil.Success(c, toUserResp(&user))
}

// DeleteUser godoc
//
//	@Summary		Delete an account
//	@Tags			User
//	@Produce		json
//	@Security		Bearer
//	@Param			id	path		int	true	"user id"
//	@Success		200	{object}	resputil.Response[string]	"deleted"
//	@Router			/v1/admin/users/{id} [delete]
func (mgr *UserMgr) DeleteUser(c *gin.Context) {
	id, ok := uriID(c)
	if !ok {
		return
	}
	res := mgr.db.WithContext(c).Delete(&model.User{}, id)
	if res.Error != nil {
		resputil.Error(c, res.Error.Error(), resputil.NotSpecified)
		return
	}
	if res.RowsAffected == 0 {
		resputil.HTTPError(c, http.StatusNotFound, "User not found", resputil.NotFound)
		return
	}
	klog.Infof("deleted user %d", id)
	resputil.Success(c, "")
}
