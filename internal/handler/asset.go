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
	"github.com/modelmagic/modelmagic/pkg/objectstore"
	"github.com/modelmagic/modelmagic/pkg/workflow"
)

//nolint:gochecknoinits // This is the standard way to register a gin handler.
func init() {
	Registers = append(Registers, NewAssetMgr)
}

type AssetMgr struct {
	name     string
	db       *gorm.DB
	workflow *workflow.Service
	store    *objectstore.Client
}

func NewAssetMgr(conf *RegisterConfig) Manager {
	return &AssetMgr{
		name:     "assets",
		db:       conf.DB,
		workflow: conf.Workflow,
		store:    conf.ObjectStore,
	}
}

func (mgr *AssetMgr) GetName() string { return mgr.name }

func (mgr *AssetMgr) RegisterPublic(_ *gin.RouterGroup) {}

func (mgr *AssetMgr) RegisterProtected(g *gin.RouterGroup) {
	g.GET("", mgr.List)
	g.POST("/:id/approve", mgr.Approve)
	g.POST("/:id/revision", mgr.RequestRevision)
	g.GET("/:id/download", mgr.PresignDownload)
}

func (mgr *AssetMgr) RegisterAdmin(g *gin.RouterGroup) {
	g.POST("", mgr.Add)
	g.POST("/presign", mgr.PresignUpload)
	g.POST("/:id/resubmit", mgr.Resubmit)
	g.DELETE("/:id", mgr.Delete)
}

type AssetResp struct {
	ID         uint              `json:"id"`
	ProjectID  uint              `json:"projectID"`
	URL        string            `json:"url"`
	Name       string            `json:"name"`
	Size       string            `json:"size"`
	Dimensions string            `json:"dimensions"`
	Status     model.AssetStatus `json:"status"`
	UploadedAt time.Time         `json:"uploadedAt"`
}

func toAssetResp(a *model.Asset) AssetResp {
	return AssetResp{
		ID:         a.ID,
		ProjectID:  a.ProjectID,
		URL:        a.URL,
		Name:       a.Name,
		Size:       a.Size,
		Dimensions: a.Dimensions,
		Status:     a.Status,
		UploadedAt: a.CreatedAt,
	}
}

type ListAssetsReq struct {
	ProjectID uint `form:"project_id" binding:"required"`
}

// List godoc
//
//	@Summary		List a project's deliverables
//	@Description	Clients only see assets of projects they own
//	@Tags			Asset
//	@Produce		json
//	@Security		Bearer
//	@Param			project_id	query		int	true	"project id"
//	@Success		200			{object}	resputil.Response[[]AssetResp]	"assets in upload order"
//	@Failure		404			{object}	resputil.Response[any]	"project not found"
//	@Router			/v1/assets [get]
func (mgr *AssetMgr) List(c *gin.Context) {
	var req ListAssetsReq
	if err := c.ShouldBindQuery(&req); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}

	var p model.Project
	if err := mgr.db.WithContext(c).First(&p, req.ProjectID).Error; err != nil {
		resputil.HTTPError(c, http.StatusNotFound, "Project not found", resputil.NotFound)
		return
	}
	actor := util.GetActor(c)
	if !actor.IsStaff() && !actor.Owns(&p) {
		resputil.HTTPError(c, http.StatusNotFound, "Project not found", resputil.NotFound)
		return
	}

	var assets []model.Asset
	err := mgr.db.WithContext(c).
		Where("project_id = ?", req.ProjectID).
		Order("id ASC").
		Find(&assets).Error
	if err != nil {
		resputil.Error(c, err.Error(), resputil.NotSpecified)
		return
	}
	resputil.Success(c, lo.Map(assets, func(a model.Asset, _ int) AssetResp {
		return toAssetResp(&a)
	}))
}

// Approve godoc
//
//	@Summary		Approve a deliverable
//	@Description	Idempotent; approving the last pending asset of a project in
//	@Description	client review completes the project
//	@Tags			Asset
//	@Produce		json
//	@Security		Bearer
//	@Param			id	path		int	true	"asset id"
//	@Success		200	{object}	resputil.Response[AssetResp]	"approved asset"
//	@Router			/v1/assets/{id}/approve [post]
func (mgr *AssetMgr) Approve(c *gin.Context) {
	id, ok := uriID(c)
	if !ok {
		return
	}
	a, err := mgr.workflow.ApproveAsset(c, util.GetActor(c), id)
	if err != nil {
		resputil.WorkflowError(c, err)
		return
	}
	resputil.Success(c, toAssetResp(a))
}

type RevisionReq struct {
	Tags  []string `json:"tags"`
	Notes string   `json:"notes"`
}

// RequestRevision godoc
//
//	@Summary		Request a revision
//	@Description	Flags the asset for rework, records the feedback as a project
//	@Description	message and pulls the project back into production when it was
//	@Description	awaiting client review
//	@Tags			Asset
//	@Accept			json
//	@Produce		json
//	@Security		Bearer
//	@Param			id		path		int			true	"asset id"
//	@Param			data	body		RevisionReq	true	"feedback"
//	@Success		200		{object}	resputil.Response[AssetResp]	"asset flagged for revision"
//	@Failure		409		{object}	resputil.Response[any]	"project already completed"
//	@Router			/v1/assets/{id}/revision [post]
func (mgr *AssetMgr) RequestRevision(c *gin.Context) {
	id, ok := uriID(c)
	if !ok {
		return
	}
	var req RevisionReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}
	a, err := mgr.workflow.RequestRevision(c, util.GetActor(c), id, workflow.Feedback{
		Tags:  req.Tags,
		Notes: req.Notes,
	})
	if err != nil {
		resputil.WorkflowError(c, err)
		return
	}
	resputil.Success(c, toAssetResp(a))
}

// PresignDownload godoc
//
//	@Summary		Get a short-lived download URL for a deliverable
//	@Tags			Asset
//	@Produce		json
//	@Security		Bearer
//	@Param			id	path		int	true	"asset id"
//	@Success		200	{object}	resputil.Response[string]	"presigned URL"
//	@Router			/v1/assets/{id}/download [get]
func (mgr *AssetMgr) PresignDownload(c *gin.Context) {
	id, ok := uriID(c)
	if !ok {
		return
	}
	var a model.Asset
	if err := mgr.db.WithContext(c).First(&a, id).Error; err != nil {
		resputil.HTTPError(c, http.StatusNotFound, "Asset not found", resputil.NotFound)
		return
	}
	var p model.Project
	if err := mgr.db.WithContext(c).First(&p, a.ProjectID).Error; err != nil {
		resputil.HTTPError(c, http.StatusNotFound, "Project not found", resputil.NotFound)
		return
	}
	actor := util.GetActor(c)
	if !actor.IsStaff() && !actor.Owns(&p) {
		resputil.HTTPError(c, http.StatusNotFound, "Asset not found", resputil.NotFound)
		return
	}

	url, err := mgr.store.PresignDownload(a.URL)
	if err != nil {
		resputil.Error(c, err.Error(), resputil.NotSpecified)
		return
	}
	resputil.Success(c, url)
}

type PresignUploadReq struct {
	ProjectID   uint   `json:"projectID" binding:"required"`
	Filename    string `json:"filename" binding:"required"`
	ContentType string `json:"contentType" binding:"required"`
}

type PresignUploadResp struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

// PresignUpload godoc
//
//	@Summary		Get a short-lived upload URL
//	@Description	The editor uploads directly to object storage, then registers
//	@Description	the returned key with POST /v1/admin/assets
//	@Tags			Asset
//	@Accept			json
//	@Produce		json
//	@Security		Bearer
//	@Param			data	body		PresignUploadReq	true	"upload target"
//	@Success		200		{object}	resputil.Response[PresignUploadResp]	"key and presigned URL"
//	@Router			/v1/admin/assets/presign [post]
func (mgr *AssetMgr) PresignUpload(c *gin.Context) {
	var req PresignUploadReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}
	key := objectstore.BuildObjectKey(req.ProjectID, req.Filename)
	url, err := mgr.store.PresignUpload(key, req.ContentType)
	if err != nil {
		resputil.Error(c, err.Error(), resputil.NotSpecified)
		return
	}
	resputil.Success(c, PresignUploadResp{Key: key, URL: url})
}

type AddAssetReq struct {
	ProjectID  uint   `json:"projectID" binding:"required"`
	URL        string `json:"url" binding:"required"`
	Name       string `json:"name" binding:"required"`
	Size       string `json:"size"`
	Dimensions string `json:"dimensions"`
}

// Add godoc
//
//	@Summary		Register an uploaded deliverable
//	@Description	New deliverables always enter review as pending
//	@Tags			Asset
//	@Accept			json
//	@Produce		json
//	@Security		Bearer
//	@Param			data	body		AddAssetReq	true	"deliverable"
//	@Success		200		{object}	resputil.Response[AssetResp]	"registered asset"
//	@Failure		409		{object}	resputil.Response[any]	"project already completed"
//	@Router			/v1/admin/assets [post]
func (mgr *AssetMgr) Add(c *gin.Context) {
	var req AddAssetReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}
	actor := util.GetActor(c)
	a := model.Asset{
		ProjectID:  req.ProjectID,
		URL:        req.URL,
		Name:       req.Name,
		Size:       req.Size,
		Dimensions: req.Dimensions,
		EditedByID: &actor.UserID,
	}
	if err := mgr.workflow.AddAsset(c, actor, &a); err != nil {
		resputil.WorkflowError(c, err)
		return
	}
	resputil.Success(c, toAssetResp(&a))
}

type ResubmitReq struct {
	URL string `json:"url"`
}

// Resubmit godoc
//
//	@Summary		Resubmit a revised deliverable
//	@Description	Moves a revision-flagged asset back to pending, optionally
//	@Description	swapping in the reworked file
//	@Tags			Asset
//	@Accept			json
//	@Produce		json
//	@Security		Bearer
//	@Param			id		path		int			true	"asset id"
//	@Param			data	body		ResubmitReq	false	"replacement file"
//	@Success		200		{object}	resputil.Response[AssetResp]	"asset back in review"
//	@Router			/v1/admin/assets/{id}/resubmit [post]
func (mgr *AssetMgr) Resubmit(c *gin.Context) {
	id, ok := uriID(c)
	if !ok {
		return
	}
	var req ResubmitReq
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		resputil.BadRequestError(c, err.Error())
		return
	}
	a, err := mgr.workflow.ResubmitAsset(c, util.GetActor(c), id, req.URL)
	if err != nil {
		resputil.WorkflowError(c, err)
		return
	}
	resputil.Success(c, toAssetResp(a))
}

// Delete godoc
//
//	@Summary		Delete a deliverable
//	@Tags			Asset
//	@Produce		json
//	@Security		Bearer
//	@Param			id	path		int	true	"asset id"
//	@Success		200	{object}	resputil.Response[string]	"deleted"
//	@Failure		403	{object}	resputil.Response[any]	"not an admin"
//	@Router			/v1/admin/assets/{id} [delete]
func (mgr *AssetMgr) Delete(c *gin.Context) {
	id, ok := uriID(c)
	if !ok {
		return
	}
	if err := mgr.workflow.DeleteAsset(c, util.GetActor(c), id); err != nil {
		resputil.WorkflowError(c, err)
		return
	}
	resputil.Success(c, "Asset deleted")
}
