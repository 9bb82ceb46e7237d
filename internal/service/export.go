package service

import (
	"context"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/yizeng/gab/gin/gorm/event-registration/internal/domain"
)

const registrationsSheet = "Registrations"

var registrationsHeader = []interface{}{"Team", "Name", "Email", "Registered At"}

type RegistrationLister interface {
	ListRegistrations(ctx context.Context, eventID string, caller *domain.Identity) ([]domain.Registration, error)
}

type ExportService struct {
	regs RegistrationLister
}

func NewExportService(regs RegistrationLister) *ExportService {
	return &ExportService{
		regs: regs,
	}
}

// Registrations renders the event's registrations as an XLSX workbook. The
// same owner-or-admin rule as listing registrations applies.
func (s *ExportService) Registrations(ctx context.Context, eventID string, caller *domain.Identity) ([]byte, error) {
	regs, err := s.regs.ListRegistrations(ctx, eventID, caller)
	if err != nil {
		return nil, fmt.Errorf("s.regs.ListRegistrations -> %w", err)
	}

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			zap.L().Warn("failed to close workbook", zap.Error(err))
		}
	}()

	if err = f.SetSheetName("Sheet1", registrationsSheet); err != nil {
		return nil, fmt.Errorf("f.SetSheetName -> %w", err)
	}

	if err = f.SetSheetRow(registrationsSheet, "A1", &registrationsHeader); err != nil {
		return nil, fmt.Errorf("f.SetSheetRow -> %w", err)
	}

	for i, reg := range regs {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, fmt.Errorf("excelize.CoordinatesToCellName -> %w", err)
		}

		var name, email string
		if reg.User != nil {
			name, email = reg.User.Name, reg.User.Email
		}
		row := []interface{}{reg.TeamName, name, email, reg.CreatedAt.UTC().Format(time.RFC3339)}
		if err = f.SetSheetRow(registrationsSheet, cell, &row); err != nil {
			return nil, fmt.Errorf("f.SetSheetRow -> %w", err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("f.WriteToBuffer -> %w", err)
	}

	return buf.Bytes(), nil
}
