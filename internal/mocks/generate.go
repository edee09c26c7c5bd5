// Package mocks provides gomock implementations of the core repository and collaborator interfaces.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	repo := mocks.NewMockOrganizationRepository(ctrl)
//	repo.EXPECT().HasMember(gomock.Any(), "user-1").Return(true, nil)
package mocks

//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=organization_repository_mock.go github.com/equihire/equihire-core/internal/core OrganizationRepository

//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=invitation_repository_mock.go github.com/equihire/equihire-core/internal/core InvitationRepository

//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=mailer_mock.go github.com/equihire/equihire-core/internal/core Mailer

//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=cache_repository_mock.go github.com/equihire/equihire-core/internal/core CacheRepository

//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=integration_probe_mock.go github.com/equihire/equihire-core/internal/core IntegrationProbe
