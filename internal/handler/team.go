package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
	"gorm.io/gorm"

	"github.com/modelmagic/modelmagic/dao/model"
	"github.com/modelmagic/modelmagic/internal/resputil"
)

//nolint:gochecknoinits // This is the standard way to register a gin handler.
func init() {
	Registers = append(Registers, NewTeamMgr)
}

type TeamMgr struct {
	name string
	db   *gorm.DB
}

func NewTeamMgr(conf *RegisterConfig) Manager {
	return &TeamMgr{
		name: "team",
		db:   conf.DB,
	}
}

func (mgr *TeamMgr) GetName() string { return mgr.name }

func (mgr *TeamMgr) RegisterPublic(_ *gin.RouterGroup) {}

func (mgr *TeamMgr) RegisterProtected(g *gin.RouterGroup) {
	g.GET("", mgr.List)
}

func (mgr *TeamMgr) RegisterAdmin(g *gin.RouterGroup) {
	g.POST("", mgr.Create)
	g.PUT("/:id", mgr.Update)
	g.PUT("/:id/presence", mgr.SetPresence)
	g.DELETE("/:id", mgr.Delete)
}

// List godoc
//
//	@Summary		List the studio team
//	@Description	Shown on the client surface next to assigned projects
//	@Tags			Team
//	@Produce		json
//	@Security		Bearer
//	@Success		200	{object}	resputil.Response[[]TeamMemberResp]	"team members"
//	@Router			/v1/team [get]
func (mgr *TeamMgr) List(c *gin.Context) {
	var members []model.TeamMember
	if err := mgr.db.WithContext(c).Order("id ASC").Find(&members).Error; err != nil {
		resputil.Error(c, err.Error(), resputil.NotSpecified)
		return
	}
	resputil.Success(c, lo.Map(members, func(m model.TeamMember, _ int) TeamMemberResp {
		return toTeamMemberResp(&m)
	}))
}

type CreateTeamMemberReq struct {
	Name   string           `json:"name" binding:"required"`
	Role   model.MemberRole `json:"role" binding:"required"`
	Email  string           `json:"email" binding:"required,email"`
	Avatar string           `json:"avatar"`
}

// Create godoc
//
//	@Summary		Add a team member
//	@Tags			Team
//	@Accept			json
//	@Produce		json
//	@Security		Bearer
//	@Param			data	body		CreateTeamMemberReq	true	"member"
//	@Success		200		{object}	resputil.Response[TeamMemberResp]	"created member"
//	@Router			/v1/admin/team [post]
func (mgr *TeamMgr) Create(c *gin.Context) {
	var req CreateTeamMemberReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}
	member := model.TeamMember{
		Name:   req.Name,
		Role:   req.Role,
		Email:  req.Email,
		Avatar: req.Avatar,
	}
	if err := mgr.db.WithContext(c).Create(&member).Error; err != nil {
		resputil.Error(c, err.Error(), resputil.NotSpecified)
		return
	}
	resputil.Success(c, toTeamMemberResp(&member))
}

type UpdateTeamMemberReq struct {
	Name   *string           `json:"name"`
	Role   *model.MemberRole `json:"role"`
	Avatar *string           `json:"avatar"`
}

// Update godoc
//
//	@Summary		Update a team member
//	@Tags			Team
//	@Accept			json
//	@Produce		json
//	@Security		Bearer
//	@Param			id		path		int					true	"member id"
//	@Param			data	body		UpdateTeamMemberReq	true	"fields to update"
//	@Success		200		{object}	resputil.Response[TeamMemberResp]	"updated member"
//	@Router			/v1/admin/team/{id} [put]
func (mgr *TeamMgr) Update(c *gin.Context) {
	id, ok := uriID(c)
	if !ok {
		return
	}
	var req UpdateTeamMemberReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}
	var member model.TeamMember
	if err := mgr.db.WithContext(c).First(&member, id).Error; err != nil {
		resputil.HTTPError(c, http.StatusNotFound, "Team member not found", resputil.NotFound)
		return
	}
	if req.Name != nil {
		member.Name = *req.Name
	}
	if req.Role != nil {
		member.Role = *req.Role
	}
	if req.Avatar != nil {
		member.Avatar = *req.Avatar
	}
	if err := mgr.db.WithContext(c).Save(&member).Error; err != nil {
		resputil.Error(c, err.Error(), resputil.NotSpecified)
		return
	}
	resputil.Success(c, toTeamMemberResp(&member))
}

type SetPresenceReq struct {
	IsOnline *bool `json:"isOnline" binding:"required"`
}

// SetPresence godoc
//
//	@Summary		Toggle a member's online flag
//	@Tags			Team
//	@Accept			json
//	@Produce		json
//	@Security		Bearer
//	@Param			id		path		int				true	"member id"
//	@Param			data	body		SetPresenceReq	true	"presence"
//	@Success		200		{object}	resputil.Response[TeamMemberResp]	"updated member"
//	@Router			/v1/admin/team/{id}/presence [put]
func (mgr *TeamMgr) SetPresence(c *gin.Context) {
	id, ok := uriID(c)
	if !ok {
		return
	}
	var req SetPresenceReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}
	var member model.TeamMember
	if err := mgr.db.WithContext(c).First(&member, id).Error; err != nil {
		resputil.HTTPError(c, http.StatusNotFound, "Team member not found", resputil.NotFound)
		return
	}
	member.IsOnline = *req.IsOnline
	if err := mgr.db.WithContext(c).Save(&member).Error; err != nil {
		resputil.Error(c, err.Error(), resputil.NotSpecified)
		return
	}
	resputil.Success(c, toTeamMemberResp(&member))
}

// Delete godoc
//
//	@Summary		Remove a team member
//	@Description	Projects keep their editor reference until reassigned
//	@Tags			Team
//	@Produce		json
//	@Security		Bearer
//	@Param			id	path		int	true	"member id"
//	@Success		200	{object}	resputil.Response[string]	"deleted"
//	@Router			/v1/admin/team/{id} [delete]
func (mgr *TeamMgr) Delete(c *gin.Context) {
	id, ok := uriID(c)
	if !ok {
		return
	}
	res := mgr.db.WithContext(c).Delete(&model.TeamMember{}, id)
	if res.Error != nil {
		resputil.Error(c, res.Error.Error(), resputil.NotSpecified)
		return
	}
	if res.RowsAffected == 0 {
		resputil.HTTPError(c, http.StatusNotFound, "Team member not found", resputil.NotFound)
		return
	}
	resputil.Success(c, "Team member removed")
}
