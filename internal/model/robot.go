package model

// RobotStatus 机器人状态
type RobotStatus string

const (
	RobotStatusOnline  RobotStatus = "online"
	RobotStatusOffline RobotStatus = "offline"
	RobotStatusError   RobotStatus = "error"
)

// Robot 后端返回的机器人记录，控制台只读
type Robot struct {
	ID            int64       `json:"id"`
	RobotCode     string      `json:"robot_code"`
	Owner         string      `json:"owner"`
	DeviceID      string      `json:"device_id"`
	DeviceName    string      `json:"device_name"`
	WeChatID      string      `json:"wechat_id"`
	Nickname      string      `json:"nickname"`
	Avatar        string      `json:"avatar"`
	Status        RobotStatus `json:"status"`
	RedisDB       int         `json:"redis_db"`
	ErrorMessage  string      `json:"error_message"`
	ProxyEnabled  bool        `json:"proxy_enabled"`
	ProxyIP       string      `json:"proxy_ip"`
	ProxyUser     string      `json:"proxy_user"`
	ProxyPassword string      `json:"proxy_password"`
	LastLoginAt   int64       `json:"last_login_at"`
	CreatedAt     int64       `json:"created_at"`
	UpdatedAt     int64       `json:"updated_at"`
}

// Proxy 返回机器人当前的代理设置
func (r *Robot) Proxy() ProxySettings {
	return ProxySettings{
		ID:            r.ID,
		ProxyEnabled:  r.ProxyEnabled,
		ProxyIP:       r.ProxyIP,
		ProxyUser:     r.ProxyUser,
		ProxyPassword: r.ProxyPassword,
	}
}

// RobotCreateRequest 创建机器人请求
type RobotCreateRequest struct {
	RobotCode     string `json:"robot_code" validate:"required,min=5,max=64,robotcode"`
	ProxyEnabled  bool   `json:"proxy_enabled"`
	ProxyIP       string `json:"proxy_ip"`
	ProxyUser     string `json:"proxy_user"`
	ProxyPassword string `json:"proxy_password"`
}

// ProxySettings 代理设置表单，同时也是更新接口的请求体
type ProxySettings struct {
	ID            int64  `json:"id" validate:"required"`
	ProxyEnabled  bool   `json:"proxy_enabled"`
	ProxyIP       string `json:"proxy_ip"`
	ProxyUser     string `json:"proxy_user"`
	ProxyPassword string `json:"proxy_password"`
}

// RobotListQuery 机器人列表查询参数
type RobotListQuery struct {
	Keyword   string `form:"keyword" json:"keyword"`
	Status    string `form:"status" json:"status"`
	PageIndex int    `form:"page_index,default=1" json:"page_index" binding:"min=1"`
	PageSize  int    `form:"page_size,default=20" json:"page_size" binding:"min=1,max=100"`
}

// RobotList 机器人列表
type RobotList struct {
	Items []Robot `json:"items"`
	Total int64   `json:"total"`
}
