package settings

import (
	"context"
	"encoding/json"
	"fmt"

	domain "github.com/example/footwear-pos/domain/settings"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"github.com/go-monolith/mono/pkg/types"
	"gorm.io/gorm"
)

// GetSettingsRequest is the request for reading settings.
type GetSettingsRequest struct{}

// Module serves the settings singleton.
type Module struct {
	service *Service
	logger  types.Logger
}

// Compile-time interface checks
var (
	_ mono.Module                = (*Module)(nil)
	_ mono.ServiceProviderModule = (*Module)(nil)
)

// NewModule creates a new settings module. cache may be nil.
func NewModule(db *gorm.DB, cache Cache, logger types.Logger) *Module {
	return &Module{
		service: NewService(domain.NewRepository(db), cache, logger),
		logger:  logger,
	}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "settings"
}

// RegisterServices registers request-reply services in the service container.
func (m *Module) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(
		container, "get", json.Unmarshal, json.Marshal, m.getSettings,
	); err != nil {
		return fmt.Errorf("failed to register get service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "set", json.Unmarshal, json.Marshal, m.setSettings,
	); err != nil {
		return fmt.Errorf("failed to register set service: %w", err)
	}

	m.logger.Info("Registered services", "services", "services.settings.{get,set}")
	return nil
}

// Start seeds the default record if the table is empty.
func (m *Module) Start(ctx context.Context) error {
	if err := m.service.EnsureDefaults(ctx); err != nil {
		return fmt.Errorf("failed to seed settings: %w", err)
	}
	m.logger.Info("Settings module started")
	return nil
}

// Stop gracefully shuts down the module.
func (m *Module) Stop(_ context.Context) error {
	m.logger.Info("Settings module stopped")
	return nil
}

// Service returns the settings service instance.
func (m *Module) Service() *Service {
	return m.service
}

func (m *Module) getSettings(ctx context.Context, _ GetSettingsRequest, _ *mono.Msg) (domain.Settings, error) {
	st, err := m.service.Get(ctx)
	if err != nil {
		return domain.Settings{}, err
	}
	return *st, nil
}

func (m *Module) setSettings(ctx context.Context, req domain.Settings, _ *mono.Msg) (domain.Settings, error) {
	st, err := m.service.Set(ctx, req)
	if err != nil {
		return domain.Settings{}, err
	}
	return *st, nil
}
