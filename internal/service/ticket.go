package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/skip2/go-qrcode"

	"github.com/yizeng/gab/gin/gorm/event-registration/internal/domain"
)

// QREncoder renders content as a PNG of size×size pixels. qrcode.Encode
// satisfies it.
type QREncoder func(content string, level qrcode.RecoveryLevel, size int) ([]byte, error)

type RegistrationFinder interface {
	MyRegistration(ctx context.Context, eventID string, caller *domain.Identity) (domain.Registration, error)
}

type TicketService struct {
	regs    RegistrationFinder
	baseURL string
	size    int
	encode  QREncoder
}

func NewTicketService(regs RegistrationFinder, baseURL string, size int, encode QREncoder) *TicketService {
	if encode == nil {
		encode = qrcode.Encode
	}

	return &TicketService{
		regs:    regs,
		baseURL: strings.TrimRight(baseURL, "/"),
		size:    size,
		encode:  encode,
	}
}

// Ticket returns a PNG QR code pointing at caller's registration for the event.
func (s *TicketService) Ticket(ctx context.Context, eventID string, caller *domain.Identity) ([]byte, error) {
	reg, err := s.regs.MyRegistration(ctx, eventID, caller)
	if err != nil {
		return nil, fmt.Errorf("s.regs.MyRegistration -> %w", err)
	}

	png, err := s.encode(s.TicketURL(reg), qrcode.Medium, s.size)
	if err != nil {
		return nil, fmt.Errorf("s.encode -> %w", err)
	}

	return png, nil
}

func (s *TicketService) TicketURL(reg domain.Registration) string {
	return fmt.Sprintf("%s/api/events/%s/registrations/%s", s.baseURL, reg.EventID, reg.ID)
}
