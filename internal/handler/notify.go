package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"k8s.io/klog/v2"

	"github.com/modelmagic/modelmagic/pkg/events"
)

//nolint:gochecknoinits // This is the standard way to register a gin handler.
func init() {
	Registers = append(Registers, NewNotifyMgr)
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The portal frontend is served from a different origin in development.
	CheckOrigin: func(_ *http.Request) bool { return true },
}

type NotifyMgr struct {
	name string
	hub  *events.Hub
}

func NewNotifyMgr(conf *RegisterConfig) Manager {
	return &NotifyMgr{
		name: "notify",
		hub:  conf.Hub,
	}
}

func (mgr *NotifyMgr) GetName() string { return mgr.name }

func (mgr *NotifyMgr) RegisterPublic(_ *gin.RouterGroup) {}

func (mgr *NotifyMgr) RegisterProtected(g *gin.RouterGroup) {
	g.GET("/ws", mgr.Subscribe)
}

func (mgr *NotifyMgr) RegisterAdmin(_ *gin.RouterGroup) {}

// Subscribe godoc
//
//	@Summary		Stream workflow events over a websocket
//	@Description	Every project and asset status change is pushed as a JSON
//	@Description	envelope; delivery is best effort
//	@Tags			Notify
//	@Security		Bearer
//	@Success		101	{string}	string	"switching protocols"
//	@Router			/v1/notify/ws [get]
func (mgr *NotifyMgr) Subscribe(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		klog.Warningf("websocket upgrade: %v", err)
		return
	}
	go mgr.hub.ServeConn(conn)
}
