package response

import "github.com/yizeng/gab/gin/gorm/event-registration/internal/domain"

// Body is the success envelope shared by every JSON endpoint.
type Body struct {
	Success bool   `json:"success" example:"true"`
	Count   *int   `json:"count,omitempty"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

func WithData(data any) Body {
	return Body{
		Success: true,
		Data:    data,
	}
}

func WithList[T any](items []T) Body {
	count := len(items)

	return Body{
		Success: true,
		Count:   &count,
		Data:    items,
	}
}

func WithMessage(message string) Body {
	return Body{
		Success: true,
		Message: message,
	}
}

// The typed envelopes below only document payloads for swag.

type EventBody struct {
	Success bool         `json:"success" example:"true"`
	Data    domain.Event `json:"data"`
}

type EventListBody struct {
	Success bool           `json:"success" example:"true"`
	Count   int            `json:"count" example:"1"`
	Data    []domain.Event `json:"data"`
}

type RegistrationBody struct {
	Success bool                `json:"success" example:"true"`
	Data    domain.Registration `json:"data"`
}

type RegistrationListBody struct {
	Success bool                  `json:"success" example:"true"`
	Count   int                   `json:"count" example:"1"`
	Data    []domain.Registration `json:"data"`
}

type MessageBody struct {
	Success bool   `json:"success" example:"true"`
	Message string `json:"message" example:"Event deleted"`
}
