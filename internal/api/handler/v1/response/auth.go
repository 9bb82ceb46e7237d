package response

import "github.com/yizeng/gab/gin/gorm/event-registration/internal/domain"

type LoginResponse struct {
	Success bool        `json:"success" example:"true"`
	Token   string      `json:"token"`
	User    domain.User `json:"user"`
}

type UserResponse struct {
	Success bool        `json:"success" example:"true"`
	Data    domain.User `json:"data"`
}

type EmailExistsResponse struct {
	Success bool `json:"success" example:"true"`
	Exists  bool `json:"exists"`
}
