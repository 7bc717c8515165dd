package profiles

import (
	"context"
	"log/slog"
	"strings"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/joseph-ayodele/docparse/internal/common"
	"github.com/joseph-ayodele/docparse/internal/fingerprint"
	"github.com/joseph-ayodele/docparse/internal/layout"
)

// Repository persists profile stores.
type Repository interface {
	ReplaceAll(ctx context.Context, store *Store) error
	Load(ctx context.Context, schema fingerprint.Schema) (*Store, error)
}

// Service handles profile business logic.
type Service struct {
	builder *Builder
	repo    Repository
	logger  *slog.Logger
}

// NewService creates a profile service. repo may be nil when profiles only
// live in the JSON artifact.
func NewService(builder *Builder, repo Repository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{builder: builder, repo: repo, logger: logger}
}

// BuildProfile builds the profile of one template from its exemplars. An
// empty exemplar set yields (nil, nil).
func (s *Service) BuildProfile(ctx context.Context, templateID string, docs []*layout.Document) (*Profile, error) {
	id := strings.TrimSpace(templateID)
	validator := common.NewValidator()
	validator.Field("template_id", id, common.Required, common.TemplateID)
	if err := common.ValidateAndReturnError(validator); err != nil {
		return nil, err
	}
	p, ok := s.builder.BuildFromDocuments(ctx, id, docs)
	if !ok {
		s.logger.Warn("profiles.build.skip", "template_id", id, "reason", "no exemplars")
		return nil, nil
	}
	s.logger.Info("profile built successfully", "template_id", id, "exemplars", len(docs))
	return &p, nil
}

// Rebuild builds a fresh store from an exemplar tree.
func (s *Service) Rebuild(ctx context.Context, root string) (*Store, error) {
	if strings.TrimSpace(root) == "" {
		return nil, status.Error(codes.InvalidArgument, "exemplar root is required")
	}
	store, _, err := s.builder.BuildFromDirectory(ctx, root)
	if err != nil {
		return nil, status.Errorf(codes.NotFound, "build profiles: %v", err)
	}
	return store, nil
}

// Publish persists the store through the repository.
func (s *Service) Publish(ctx context.Context, store *Store) error {
	if s.repo == nil {
		return status.Error(codes.FailedPrecondition, "no profile repository configured")
	}
	if err := s.repo.ReplaceAll(ctx, store); err != nil {
		// DB error already logged in repository layer
		return status.Errorf(codes.Internal, "publish profiles: %v", err)
	}
	s.logger.Info("profiles published successfully", "count", store.Len())
	return nil
}

// ListProfiles loads the persisted store.
func (s *Service) ListProfiles(ctx context.Context) (*Store, error) {
	if s.repo == nil {
		return nil, status.Error(codes.FailedPrecondition, "no profile repository configured")
	}
	store, err := s.repo.Load(ctx, s.builder.Schema())
	if err != nil {
		return nil, status.Errorf(codes.Internal, "list profiles: %v", err)
	}
	s.logger.Info("profiles listed successfully", "count", store.Len())
	return store, nil
}
