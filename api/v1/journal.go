package v1

import (
	"net/http"
	"sort"
	"strconv"
	"time"

	"robotconsole/internal/journal"
	"robotconsole/pkg/api"
	"robotconsole/pkg/logger"
	"robotconsole/pkg/middleware"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// JournalHandler 操作日志查询与实时推送
type JournalHandler struct {
	reader *journal.Reader
	hub    *journal.Hub
}

// NewJournalHandler 创建日志处理器实例
func NewJournalHandler(reader *journal.Reader, hub *journal.Hub) *JournalHandler {
	return &JournalHandler{reader: reader, hub: hub}
}

// Register 注册路由
func (h *JournalHandler) Register(r *gin.RouterGroup, authMiddleware *middleware.AuthMiddleware) {
	group := r.Group("/journal", authMiddleware.HandleAuth())
	{
		group.GET("", h.List)
		group.GET("/ws", h.HandleWebSocket)
	}
}

// List 某一天的日志（默认今天），附带哈希链校验结果
func (h *JournalHandler) List(c *gin.Context) {
	day := time.Now()
	if s := c.Query("day"); s != "" {
		t, err := time.ParseInLocation("2006-01-02", s, time.Local)
		if err != nil {
			api.Error(c, http.StatusBadRequest, "日期格式应为 YYYY-MM-DD", err)
			return
		}
		day = t
	}
	robotID, _ := strconv.ParseInt(c.Query("robot_id"), 10, 64)

	entries, err := h.reader.ReadDay(day)
	if err != nil {
		api.Error(c, http.StatusInternalServerError, "读取操作日志失败", err)
		return
	}
	brokenAt := journal.VerifyChain(entries)

	items := journal.Filter(entries, robotID)
	if items == nil {
		items = []*journal.Entry{}
	}
	// 最新的在前
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Timestamp.After(items[j].Timestamp)
	})

	api.Success(c, gin.H{
		"day":       day.Format("2006-01-02"),
		"total":     len(items),
		"items":     items,
		"valid":     brokenAt < 0,
		"broken_at": brokenAt,
	})
}

// HandleWebSocket 订阅操作日志与提示；robot_id 为空时接收全部机器人
func (h *JournalHandler) HandleWebSocket(c *gin.Context) {
	robotID, _ := strconv.ParseInt(c.Query("robot_id"), 10, 64)

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Warn("websocket upgrade failed: %v", err)
		return
	}
	h.hub.Serve(conn, robotID)
}
