package services

import (
	"context"
	"strings"

	"articledesk/internal/domain"
	"articledesk/internal/domain/models"
	"articledesk/internal/utils"
)

type BindingService struct {
	Bindings  BindingStore
	RequestID string
}

func (s BindingService) Get(ctx context.Context, by domain.Identity) (models.Binding, error) {
	if by.Anonymous() {
		return models.Binding{}, domain.UnauthorizedError{Msg: "sign in required"}
	}
	return s.Bindings.Get(ctx, by.ID)
}

func (s BindingService) Create(ctx context.Context, by domain.Identity, email string) (models.Binding, error) {
	b, err := s.binding(by, email)
	if err != nil {
		return models.Binding{}, err
	}
	if err := s.Bindings.Create(ctx, b); err != nil {
		return models.Binding{}, err
	}
	utils.LogEvent(s.RequestID, "bindings", "create", "identity_id", by.ID)
	return b, nil
}

func (s BindingService) Update(ctx context.Context, by domain.Identity, email string) (models.Binding, error) {
	b, err := s.binding(by, email)
	if err != nil {
		return models.Binding{}, err
	}
	if err := s.Bindings.Update(ctx, b); err != nil {
		return models.Binding{}, err
	}
	utils.LogEvent(s.RequestID, "bindings", "update", "identity_id", by.ID)
	return b, nil
}

func (s BindingService) Delete(ctx context.Context, by domain.Identity) error {
	if by.Anonymous() {
		return domain.UnauthorizedError{Msg: "sign in required"}
	}
	if err := s.Bindings.Delete(ctx, by.ID); err != nil {
		return err
	}
	utils.LogEvent(s.RequestID, "bindings", "delete", "identity_id", by.ID)
	return nil
}

func (s BindingService) binding(by domain.Identity, email string) (models.Binding, error) {
	if by.Anonymous() {
		return models.Binding{}, domain.UnauthorizedError{Msg: "sign in required"}
	}
	if err := domain.ValidateEmail(email); err != nil {
		return models.Binding{}, err
	}
	return models.Binding{IdentityID: by.ID, Email: strings.TrimSpace(email)}, nil
}
