package services

import (
	"github.com/mssola/user_agent"
	"github.com/sirupsen/logrus"

	"github.com/insiderbookings/backoffice/internal/database"
	"github.com/insiderbookings/backoffice/internal/models"
)

// AuditService records sign-in attempts with parsed device information.
// Recording is best effort so a failure never blocks a login.
type AuditService struct {
	audits  *database.LoginAuditRepository
	enabled bool
	logger  *logrus.Logger
}

// NewAuditService creates a new audit service
func NewAuditService(audits *database.LoginAuditRepository, enabled bool, logger *logrus.Logger) *AuditService {
	return &AuditService{audits: audits, enabled: enabled, logger: logger}
}

// RecordLogin stores one attempt
func (s *AuditService) RecordLogin(actorType string, actorID *int64, email string, success bool, ip, userAgent string) {
	if !s.enabled {
		return
	}

	ua := user_agent.New(userAgent)
	browser, _ := ua.Browser()

	audit := &models.LoginAudit{
		ActorType: actorType,
		ActorID:   actorID,
		Email:     email,
		Success:   success,
		IPAddress: ip,
		Browser:   browser,
		OS:        ua.OS(),
		Mobile:    ua.Mobile(),
	}

	if err := s.audits.Record(audit); err != nil {
		s.logger.WithError(err).Warn("failed to record login audit")
	}
}
