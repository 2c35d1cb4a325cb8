package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
	"gorm.io/gorm"

	"github.com/modelmagic/modelmagic/dao/model"
	"github.com/modelmagic/modelmagic/internal/payload"
	"github.com/modelmagic/modelmagic/internal/resputil"
	"github.com/modelmagic/modelmagic/internal/util"
	"github.com/modelmagic/modelmagic/pkg/workflow"
)

//nolint:gochecknoinits // This is the standard way to register a gin handler.
func init() {
	Registers = append(Registers, NewProjectMgr)
}

type ProjectMgr struct {
	name     string
	db       *gorm.DB
	workflow *workflow.Service
}

func NewProjectMgr(conf *RegisterConfig) Manager {
	return &ProjectMgr{
		name:     "projects",
		db:       conf.DB,
		workflow: conf.Workflow,
	}
}

func (mgr *ProjectMgr) GetName() string { return mgr.name }

func (mgr *ProjectMgr) RegisterPublic(_ *gin.RouterGroup) {}

func (mgr *ProjectMgr) RegisterProtected(g *gin.RouterGroup) {
	g.GET("", mgr.ListOwn)
	g.POST("", mgr.Create)
	g.GET("/:id", mgr.Get)
	g.POST("/:id/submit", mgr.Submit)
}

func (mgr *ProjectMgr) RegisterAdmin(g *gin.RouterGroup) {
	g.GET("", mgr.ListAll)
	g.GET("/:id", mgr.GetAdmin)
	g.PUT("/:id/assign", mgr.AssignEditor)
	g.POST("/:id/start", mgr.StartEditing)
	g.POST("/:id/qa", mgr.SubmitForQA)
	g.PUT("/:id/qa", mgr.UpdateQAChecklist)
	g.POST("/:id/ready", mgr.CompleteQA)
	g.PUT("/:id/meta", mgr.UpdateMeta)
	g.DELETE("/:id", mgr.Delete)
}

type TeamMemberResp struct {
	ID       uint             `json:"id"`
	Name     string           `json:"name"`
	Role     model.MemberRole `json:"role"`
	Avatar   string           `json:"avatar"`
	Email    string           `json:"email"`
	IsOnline bool             `json:"isOnline"`
}

func toTeamMemberResp(m *model.TeamMember) TeamMemberResp {
	return TeamMemberResp{
		ID:       m.ID,
		Name:     m.Name,
		Role:     m.Role,
		Avatar:   m.Avatar,
		Email:    m.Email,
		IsOnline: m.IsOnline,
	}
}

// ProjectResp is the client-surface view of a project. Internal fields live
// only on AdminProjectResp so they can never leak through this path.
type ProjectResp struct {
	ID             uint                `json:"id"`
	Name           string              `json:"name"`
	Category       string              `json:"category"`
	Platforms      []model.Platform    `json:"platforms"`
	Status         model.ProjectStatus `json:"status"`
	CreatedAt      time.Time           `json:"createdAt"`
	DeliveryDate   *time.Time          `json:"deliveryDate"`
	Thumbnail      string              `json:"thumbnail"`
	CreativeBrief  string              `json:"creativeBrief"`
	PackageType    model.PackageType   `json:"packageType"`
	ItemQuantity   int                 `json:"itemQuantity"`
	TotalCost      float64             `json:"totalCost"`
	ProgressDay    int                 `json:"progressDay"`
	TotalDays      int                 `json:"totalDays"`
	AssignedEditor *TeamMemberResp     `json:"assignedEditor"`
}

type AdminProjectResp struct {
	ProjectResp
	Priority      model.Priority     `json:"priority"`
	InternalNotes string             `json:"internalNotes"`
	ClientName    string             `json:"clientName"`
	ClientEmail   string             `json:"clientEmail"`
	QAChecklist   *model.QAChecklist `json:"qaChecklist"`
}

func toProjectResp(p *model.Project) ProjectResp {
	resp := ProjectResp{
		ID:            p.ID,
		Name:          p.Name,
		Category:      p.Category,
		Platforms:     p.Platforms,
		Status:        p.Status,
		CreatedAt:     p.CreatedAt,
		DeliveryDate:  p.DeliveryDate,
		Thumbnail:     p.Thumbnail,
		CreativeBrief: p.CreativeBrief,
		PackageType:   p.PackageType,
		ItemQuantity:  p.ItemQuantity,
		TotalCost:     p.TotalCost,
		ProgressDay:   p.ProgressDay,
		TotalDays:     p.TotalDays,
	}
	if p.AssignedEditor != nil {
		resp.AssignedEditor = lo.ToPtr(toTeamMemberResp(p.AssignedEditor))
	}
	return resp
}

func toAdminProjectResp(p *model.Project) AdminProjectResp {
	return AdminProjectResp{
		ProjectResp:   toProjectResp(p),
		Priority:      p.Priority,
		InternalNotes: p.InternalNotes,
		ClientName:    p.ClientName,
		ClientEmail:   p.ClientEmail,
		QAChecklist:   p.QAChecklist.Data(),
	}
}

// ListOwn godoc
//
//	@Summary		List the caller's projects
//	@Description	The client surface only ever sees projects owned by the
//	@Description	session email, whatever the caller's actual role is
//	@Tags			Project
//	@Produce		json
//	@Security		Bearer
//	@Success		200	{object}	resputil.Response[[]ProjectResp]	"owned projects"
//	@Router			/v1/projects [get]
func (mgr *ProjectMgr) ListOwn(c *gin.Context) {
	token := util.GetToken(c)

	var projects []model.Project
	err := mgr.db.WithContext(c).
		Preload("AssignedEditor").
		Where("client_email = ?", token.Email).
		Order("id DESC").
		Find(&projects).Error
	if err != nil {
		resputil.Error(c, err.Error(), resputil.NotSpecified)
		return
	}

	resputil.Success(c, lo.Map(projects, func(p model.Project, _ int) ProjectResp {
		return toProjectResp(&p)
	}))
}

type CreateProjectReq struct {
	Name          string            `json:"name" binding:"required"`
	Category      string            `json:"category"`
	Platforms     []model.Platform  `json:"platforms"`
	CreativeBrief string            `json:"creativeBrief" binding:"required"`
	PackageType   model.PackageType `json:"packageType" binding:"required"`
	ItemQuantity  int               `json:"itemQuantity" binding:"required,min=1"`
	Thumbnail     string            `json:"thumbnail"`
	// Submit immediately instead of keeping a draft, the common path in the
	// new-project wizard.
	Submit bool `json:"submit"`
}

// Create godoc
//
//	@Summary		Create a project
//	@Description	Creates a draft owned by the caller; with submit=true the
//	@Description	draft is submitted in the same request and the total cost
//	@Description	is frozen
//	@Tags			Project
//	@Accept			json
//	@Produce		json
//	@Security		Bearer
//	@Param			data	body		CreateProjectReq	true	"project brief"
//	@Success		200		{object}	resputil.Response[ProjectResp]	"created project"
//	@Failure		400		{object}	resputil.Response[any]	"request parameter error"
//	@Router			/v1/projects [post]
func (mgr *ProjectMgr) Create(c *gin.Context) {
	token := util.GetToken(c)

	var req CreateProjectReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}

	p := model.Project{
		Name:          req.Name,
		Category:      req.Category,
		Platforms:     req.Platforms,
		CreativeBrief: req.CreativeBrief,
		PackageType:   req.PackageType,
		ItemQuantity:  req.ItemQuantity,
		Thumbnail:     req.Thumbnail,
		Status:        model.ProjectDraft,
		Priority:      model.PriorityStandard,
		ClientName:    token.Username,
		ClientEmail:   token.Email,
	}
	if err := mgr.db.WithContext(c).Create(&p).Error; err != nil {
		resputil.Error(c, err.Error(), resputil.NotSpecified)
		return
	}

	if req.Submit {
		submitted, err := mgr.workflow.SubmitProject(c, util.GetActor(c), p.ID)
		if err != nil {
			resputil.WorkflowError(c, err)
			return
		}
		p = *submitted
	}
	resputil.Success(c, toProjectResp(&p))
}

// Get godoc
//
//	@Summary		Get one project (client surface)
//	@Tags			Project
//	@Produce		json
//	@Security		Bearer
//	@Param			id	path		int	true	"project id"
//	@Success		200	{object}	resputil.Response[ProjectResp]	"project"
//	@Failure		404	{object}	resputil.Response[any]	"not found"
//	@Router			/v1/projects/{id} [get]
func (mgr *ProjectMgr) Get(c *gin.Context) {
	id, ok := uriID(c)
	if !ok {
		return
	}
	p, err := mgr.loadProject(c, id)
	if err != nil {
		return
	}

	actor := util.GetActor(c)
	if !actor.IsStaff() && !actor.Owns(p) {
		resputil.HTTPError(c, http.StatusNotFound, "Project not found", resputil.NotFound)
		return
	}
	resputil.Success(c, toProjectResp(p))
}

// Submit godoc
//
//	@Summary		Submit a draft
//	@Description	Draft -> Submitted; computes and freezes the total cost
//	@Tags			Project
//	@Produce		json
//	@Security		Bearer
//	@Param			id	path		int	true	"project id"
//	@Success		200	{object}	resputil.Response[ProjectResp]	"submitted project"
//	@Failure		409	{object}	resputil.Response[any]	"illegal transition"
//	@Router			/v1/projects/{id}/submit [post]
func (mgr *ProjectMgr) Submit(c *gin.Context) {
	id, ok := uriID(c)
	if !ok {
		return
	}
	p, err := mgr.workflow.SubmitProject(c, util.GetActor(c), id)
	if err != nil {
		resputil.WorkflowError(c, err)
		return
	}
	resputil.Success(c, toProjectResp(p))
}

type (
	ListProjectsReq struct {
		PageIndex *int                 `form:"page_index" binding:"required"`
		PageSize  *int                 `form:"page_size" binding:"required"`
		Status    *model.ProjectStatus `form:"status"`
		Priority  *model.Priority      `form:"priority"`
		NameLike  *string              `form:"name_like"`
		Order     *payload.Order       `form:"order"`
	}
	ListProjectsResp payload.ListResp[AdminProjectResp]
)

// ListAll godoc
//
//	@Summary		List all projects
//	@Description	Admin-surface listing with filters, pagination and sorting
//	@Tags			Project
//	@Produce		json
//	@Security		Bearer
//	@Param			page	query		ListProjectsReq	true	"pagination and filters"
//	@Success		200		{object}	resputil.Response[ListProjectsResp]	"projects"
//	@Router			/v1/admin/projects [get]
func (mgr *ProjectMgr) ListAll(c *gin.Context) {
	var req ListProjectsReq
	if err := c.ShouldBindQuery(&req); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}

	tx := mgr.db.WithContext(c).Model(&model.Project{})
	if req.Status != nil {
		tx = tx.Where("status = ?", *req.Status)
	}
	if req.Priority != nil {
		tx = tx.Where("priority = ?", *req.Priority)
	}
	if req.NameLike != nil {
		tx = tx.Where("name LIKE ?", "%"+*req.NameLike+"%")
	}

	var count int64
	if err := tx.Count(&count).Error; err != nil {
		resputil.Error(c, err.Error(), resputil.NotSpecified)
		return
	}

	order := "id DESC"
	if req.Order != nil && *req.Order == payload.Asc {
		order = "id ASC"
	}

	var projects []model.Project
	err := tx.Preload("AssignedEditor").
		Order(order).
		Offset((*req.PageIndex) * (*req.PageSize)).
		Limit(*req.PageSize).
		Find(&projects).Error
	if err != nil {
		resputil.Error(c, err.Error(), resputil.NotSpecified)
		return
	}

	rows := lo.Map(projects, func(p model.Project, _ int) AdminProjectResp {
		return toAdminProjectResp(&p)
	})
	resputil.Success(c, ListProjectsResp{Rows: rows, Count: count})
}

// GetAdmin godoc
//
//	@Summary		Get one project (admin surface)
//	@Tags			Project
//	@Produce		json
//	@Security		Bearer
//	@Param			id	path		int	true	"project id"
//	@Success		200	{object}	resputil.Response[AdminProjectResp]	"project with internal fields"
//	@Router			/v1/admin/projects/{id} [get]
func (mgr *ProjectMgr) GetAdmin(c *gin.Context) {
	id, ok := uriID(c)
	if !ok {
		return
	}
	p, err := mgr.loadProject(c, id)
	if err != nil {
		return
	}
	resputil.Success(c, toAdminProjectResp(p))
}

type AssignEditorReq struct {
	EditorID uint `json:"editorID" binding:"required"`
}

// AssignEditor godoc
//
//	@Summary		Assign or reassign the editor
//	@Description	Assigning to a submitted project advances it to Team
//	@Description	Assigned in the same write
//	@Tags			Project
//	@Accept			json
//	@Produce		json
//	@Security		Bearer
//	@Param			id		path		int				true	"project id"
//	@Param			data	body		AssignEditorReq	true	"editor"
//	@Success		200		{object}	resputil.Response[AdminProjectResp]	"updated project"
//	@Failure		409		{object}	resputil.Response[any]	"illegal transition"
//	@Router			/v1/admin/projects/{id}/assign [put]
func (mgr *ProjectMgr) AssignEditor(c *gin.Context) {
	id, ok := uriID(c)
	if !ok {
		return
	}
	var req AssignEditorReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}

	var editor model.TeamMember
	if err := mgr.db.WithContext(c).First(&editor, req.EditorID).Error; err != nil {
		resputil.HTTPError(c, http.StatusNotFound, "Team member not found", resputil.NotFound)
		return
	}

	p, err := mgr.workflow.AssignEditor(c, util.GetActor(c), id, req.EditorID)
	if err != nil {
		resputil.WorkflowError(c, err)
		return
	}
	p.AssignedEditor = &editor
	resputil.Success(c, toAdminProjectResp(p))
}

// StartEditing godoc
//
//	@Summary		Start production
//	@Description	Team Assigned -> Being Edited
//	@Tags			Project
//	@Produce		json
//	@Security		Bearer
//	@Param			id	path		int	true	"project id"
//	@Success		200	{object}	resputil.Response[AdminProjectResp]	"updated project"
//	@Router			/v1/admin/projects/{id}/start [post]
func (mgr *ProjectMgr) StartEditing(c *gin.Context) {
	mgr.transition(c, mgr.workflow.StartEditing)
}

// SubmitForQA godoc
//
//	@Summary		Send the project to QA
//	@Description	Being Edited -> QA Review; opens the checklist
//	@Tags			Project
//	@Produce		json
//	@Security		Bearer
//	@Param			id	path		int	true	"project id"
//	@Success		200	{object}	resputil.Response[AdminProjectResp]	"updated project"
//	@Router			/v1/admin/projects/{id}/qa [post]
func (mgr *ProjectMgr) SubmitForQA(c *gin.Context) {
	mgr.transition(c, mgr.workflow.SubmitForQA)
}

// UpdateQAChecklist godoc
//
//	@Summary		Toggle QA gates
//	@Tags			Project
//	@Accept			json
//	@Produce		json
//	@Security		Bearer
//	@Param			id		path		int					true	"project id"
//	@Param			data	body		model.QAChecklist	true	"gates"
//	@Success		200		{object}	resputil.Response[AdminProjectResp]	"updated project"
//	@Router			/v1/admin/projects/{id}/qa [put]
func (mgr *ProjectMgr) UpdateQAChecklist(c *gin.Context) {
	id, ok := uriID(c)
	if !ok {
		return
	}
	var gates model.QAChecklist
	if err := c.ShouldBindJSON(&gates); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}
	p, err := mgr.workflow.UpdateQAChecklist(c, util.GetActor(c), id, gates)
	if err != nil {
		resputil.WorkflowError(c, err)
		return
	}
	resputil.Success(c, toAdminProjectResp(p))
}

// CompleteQA godoc
//
//	@Summary		Release the project for client review
//	@Description	QA Review -> Ready for Review; rejected unless all three
//	@Description	gates pass
//	@Tags			Project
//	@Produce		json
//	@Security		Bearer
//	@Param			id	path		int	true	"project id"
//	@Success		200	{object}	resputil.Response[AdminProjectResp]	"updated project"
//	@Failure		409	{object}	resputil.Response[any]	"gates not passed"
//	@Router			/v1/admin/projects/{id}/ready [post]
func (mgr *ProjectMgr) CompleteQA(c *gin.Context) {
	mgr.transition(c, mgr.workflow.CompleteQA)
}

type UpdateMetaReq struct {
	InternalNotes    *string         `json:"internalNotes"`
	Priority         *model.Priority `json:"priority"`
	AssignedEditorID *uint           `json:"assignedEditorID"`
	DeliveryDate     *time.Time      `json:"deliveryDate"`
}

// UpdateMeta godoc
//
//	@Summary		Edit internal notes, priority or editor
//	@Description	Allowed in any non-completed state; never changes status
//	@Tags			Project
//	@Accept			json
//	@Produce		json
//	@Security		Bearer
//	@Param			id		path		int				true	"project id"
//	@Param			data	body		UpdateMetaReq	true	"fields to update"
//	@Success		200		{object}	resputil.Response[AdminProjectResp]	"updated project"
//	@Router			/v1/admin/projects/{id}/meta [put]
func (mgr *ProjectMgr) UpdateMeta(c *gin.Context) {
	id, ok := uriID(c)
	if !ok {
		return
	}
	var req UpdateMetaReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}
	p, err := mgr.workflow.UpdateMeta(c, util.GetActor(c), id, workflow.MetaUpdate{
		InternalNotes:    req.InternalNotes,
		Priority:         req.Priority,
		AssignedEditorID: req.AssignedEditorID,
		DeliveryDate:     req.DeliveryDate,
	})
	if err != nil {
		resputil.WorkflowError(c, err)
		return
	}
	resputil.Success(c, toAdminProjectResp(p))
}

// Delete godoc
//
//	@Summary		Delete a project
//	@Description	Admin-only destructive override; cascades to all assets.
//	@Description	The engine, not the router, rejects non-admin callers.
//	@Tags			Project
//	@Produce		json
//	@Security		Bearer
//	@Param			id	path		int	true	"project id"
//	@Success		200	{object}	resputil.Response[string]	"deleted"
//	@Failure		403	{object}	resputil.Response[any]	"not an admin"
//	@Router			/v1/admin/projects/{id} [delete]
func (mgr *ProjectMgr) Delete(c *gin.Context) {
	id, ok := uriID(c)
	if !ok {
		return
	}
	if err := mgr.workflow.DeleteProject(c, util.GetActor(c), id); err != nil {
		resputil.WorkflowError(c, err)
		return
	}
	resputil.Success(c, "Project deleted")
}

func (mgr *ProjectMgr) transition(c *gin.Context,
	op func(ctx context.Context, actor workflow.Actor, id uint) (*model.Project, error)) {
	id, ok := uriID(c)
	if !ok {
		return
	}
	p, err := op(c, util.GetActor(c), id)
	if err != nil {
		resputil.WorkflowError(c, err)
		return
	}
	resputil.Success(c, toAdminProjectResp(p))
}

func (mgr *ProjectMgr) loadProject(c *gin.Context, id uint) (*model.Project, error) {
	var p model.Project
	err := mgr.db.WithContext(c).Preload("AssignedEditor").First(&p, id).Error
	if err != nil {
		resputil.HTTPError(c, http.StatusNotFound, "Project not found", resputil.NotFound)
		return nil, err
	}
	return &p, nil
}
