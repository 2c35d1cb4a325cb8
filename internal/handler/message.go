package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
	"gorm.io/gorm"

	"github.com/modelmagic/modelmagic/dao/model"
	"github.com/modelmagic/modelmagic/internal/resputil"
	"github.com/modelmagic/modelmagic/internal/util"
)

//nolint:gochecknoinits // This is the standard way to register a gin handler.
func init() {
	Registers = append(Registers, NewMessageMgr)
}

type MessageMgr struct {
	name string
	db   *gorm.DB
}

func NewMessageMgr(conf *RegisterConfig) Manager {
	return &MessageMgr{
		name: "messages",
		db:   conf.DB,
	}
}

func (mgr *MessageMgr) GetName() string { return mgr.name }

func (mgr *MessageMgr) RegisterPublic(_ *gin.RouterGroup) {}

func (mgr *MessageMgr) RegisterProtected(g *gin.RouterGroup) {
	g.GET("", mgr.List)
	g.POST("", mgr.Post)
}

func (mgr *MessageMgr) RegisterAdmin(_ *gin.RouterGroup) {}

type MessageResp struct {
	ID             uint      `json:"id"`
	SenderUserID   *uint     `json:"senderUserID"`
	SenderMemberID *uint     `json:"senderMemberID"`
	ProjectID      *uint     `json:"projectID"`
	Content        string    `json:"content"`
	SentAt         time.Time `json:"sentAt"`
}

func toMessageResp(m *model.Message) MessageResp {
	return MessageResp{
		ID:             m.ID,
		SenderUserID:   m.SenderUserID,
		SenderMemberID: m.SenderMemberID,
		ProjectID:      m.ProjectID,
		Content:        m.Content,
		SentAt:         m.CreatedAt,
	}
}

type ListMessagesReq struct {
	ProjectID uint `form:"project_id" binding:"required"`
}

// List godoc
//
//	@Summary		List a project's message thread
//	@Description	Includes revision feedback recorded by the review flow
//	@Tags			Message
//	@Produce		json
//	@Security		Bearer
//	@Param			project_id	query		int	true	"project id"
//	@Success		200			{object}	resputil.Response[[]MessageResp]	"messages, oldest first"
//	@Router			/v1/messages [get]
func (mgr *MessageMgr) List(c *gin.Context) {
	var req ListMessagesReq
	if err := c.ShouldBindQuery(&req); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}
	p, ok := mgr.visibleProject(c, req.ProjectID)
	if !ok {
		return
	}

	var messages []model.Message
	err := mgr.db.WithContext(c).
		Where("project_id = ?", p.ID).
		Order("id ASC").
		Find(&messages).Error
	if err != nil {
		resputil.Error(c, err.Error(), resputil.NotSpecified)
		return
	}
	resputil.Success(c, lo.Map(messages, func(m model.Message, _ int) MessageResp {
		return toMessageResp(&m)
	}))
}

type PostMessageReq struct {
	ProjectID uint   `json:"projectID" binding:"required"`
	Content   string `json:"content" binding:"required"`
}

// Post godoc
//
//	@Summary		Post a message on a project thread
//	@Tags			Message
//	@Accept			json
//	@Produce		json
//	@Security		Bearer
//	@Param			data	body		PostMessageReq	true	"message"
//	@Success		200		{object}	resputil.Response[MessageResp]	"posted message"
//	@Router			/v1/messages [post]
func (mgr *MessageMgr) Post(c *gin.Context) {
	var req PostMessageReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}
	p, ok := mgr.visibleProject(c, req.ProjectID)
	if !ok {
		return
	}

	token := util.GetToken(c)
	m := model.Message{
		SenderUserID: &token.UserID,
		ProjectID:    &p.ID,
		Content:      req.Content,
	}
	if err := mgr.db.WithContext(c).Create(&m).Error; err != nil {
		resputil.Error(c, err.Error(), resputil.NotSpecified)
		return
	}
	resputil.Success(c, toMessageResp(&m))
}

// visibleProject loads the project and hides its existence from callers who
// are neither staff nor the owner.
func (mgr *MessageMgr) visibleProject(c *gin.Context, id uint) (*model.Project, bool) {
	var p model.Project
	if err := mgr.db.WithContext(c).First(&p, id).Error; err != nil {
		resputil.HTTPError(c, http.StatusNotFound, "Project not found", resputil.NotFound)
		return nil, false
	}
	actor := util.GetActor(c)
	if !actor.IsStaff() && !actor.Owns(&p) {
		resputil.HTTPError(c, http.StatusNotFound, "Project not found", resputil.NotFound)
		return nil, false
	}
	return &p, true
}
