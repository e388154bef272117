package usecase

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/vandien284/scenta-sub000/internal/domain"
	"github.com/vandien284/scenta-sub000/internal/mailer"
)

var _ domain.VerificationUseCase = (*verificationUseCase)(nil)

type verificationUseCase struct {
	verifications domain.VerificationRepository
	mailer        mailer.Mailer
	log           *logrus.Logger
}

func NewVerificationUseCase(verifications domain.VerificationRepository, m mailer.Mailer, logger *logrus.Logger) domain.VerificationUseCase {
	return &verificationUseCase{verifications: verifications, mailer: m, log: logger}
}

func (uc *verificationUseCase) SendCode(ctx context.Context, email string) (*domain.VerificationRecord, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if !emailPattern.MatchString(email) {
		return nil, &domain.ValidationError{Violations: []string{"email is missing or invalid"}}
	}

	record, code, err := uc.verifications.CreateRecord(ctx, email)
	if err != nil {
		return nil, err
	}

	if err := uc.mailer.SendVerificationCode(ctx, email, code); err != nil {
		// The record stays usable; the customer can request a new code.
		uc.log.Errorf("Verification: failed to deliver code for %s: %v", email, err)
		return nil, err
	}
	return record, nil
}

func (uc *verificationUseCase) CheckCode(ctx context.Context, id, code string) (*domain.VerificationRecord, error) {
	id = strings.TrimSpace(id)
	code = strings.TrimSpace(code)
	if id == "" || code == "" {
		return nil, &domain.ValidationError{Violations: []string{"verification id and code are required"}}
	}
	return uc.verifications.Verify(ctx, id, code)
}
