package project

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/fkhayef/ensamble/internal/apperr"
	"github.com/fkhayef/ensamble/internal/identity"
	"github.com/fkhayef/ensamble/internal/metrics"
	"github.com/fkhayef/ensamble/internal/objectstore"
	"github.com/fkhayef/ensamble/internal/upload"
)

// Store persists the rows written when a project is launched
type Store interface {
	CreateProject(ctx context.Context, p *Project) (*Project, error)
	SetScriptURL(ctx context.Context, projectID, scriptURL string) error
	CreateCharacters(ctx context.Context, characters []Character) error
}

// Service launches projects
type Service struct {
	store   Store
	objects objectstore.Store
	log     *zap.SugaredLogger
	metrics *metrics.Recorder
	now     func() time.Time
}

// NewService creates a new project service
func NewService(store Store, objects objectstore.Store, log *zap.SugaredLogger, m *metrics.Recorder) *Service {
	return &Service{
		store:   store,
		objects: objects,
		log:     log,
		metrics: m,
		now:     time.Now,
	}
}

// Launch commits a draft: the project row, then its script, then all
// characters in a single insert.
//
// The commit is sequential and best effort. A failure stops the sequence
// where it happened and nothing already written is rolled back. Unlike a
// company image, a failed script upload aborts the launch.
func (s *Service) Launch(ctx context.Context, d *Draft) (*Project, error) {
	p, err := s.launch(ctx, d)
	if err != nil {
		s.metrics.Commit("project", string(apperr.CategoryOf(err)))
		return nil, err
	}
	s.metrics.Commit("project", "ok")
	return p, nil
}

func (s *Service) launch(ctx context.Context, d *Draft) (*Project, error) {
	founder, err := identity.Current(ctx)
	if err != nil {
		return nil, err
	}

	// Checked again here so an oversized script is refused before any write
	if d.Script != nil {
		if err := upload.CheckScriptSize(d.Script); err != nil {
			return nil, err
		}
	}

	project, err := s.store.CreateProject(ctx, &Project{
		Title:       strings.ToUpper(d.Title),
		Description: d.Description,
		FounderID:   founder.ID,
		StartDate:   d.StartDate,
		ThemeColor:  d.ThemeColor,
	})
	if err != nil {
		s.log.Errorw("project insert failed", "founder_id", founder.ID, "error", err)
		return nil, unexpected(err)
	}

	if d.Script != nil {
		if err := s.attachScript(ctx, project, d.Script); err != nil {
			return nil, err
		}
	}

	if len(d.Characters) > 0 {
		characters := make([]Character, len(d.Characters))
		for i, c := range d.Characters {
			characters[i] = Character{
				ProjectID:   project.ID,
				Name:        c.Name,
				Description: c.Description,
				ImageRefURL: c.PhotoRefURL,
				VideoRefURL: c.VideoRefURL,
			}
			if c.Profile != nil {
				id := c.Profile.ID
				characters[i].AssignedProfileID = &id
			}
		}

		if err := s.store.CreateCharacters(ctx, characters); err != nil {
			s.log.Errorw("character insert failed", "project_id", project.ID, "count", len(characters), "error", err)
			return nil, unexpected(err)
		}
	}

	s.log.Infow("project launched", "project_id", project.ID, "founder_id", founder.ID, "characters", len(d.Characters))
	return project, nil
}

// attachScript uploads the script under a fresh timestamped path and links it
func (s *Service) attachScript(ctx context.Context, project *Project, script *upload.File) error {
	path := fmt.Sprintf("%s/script_%d.%s", project.ID, s.now().UnixMilli(), script.ScriptExtension())

	err := s.objects.Upload(ctx, objectstore.BucketProjectScripts, path, script.Reader(), script.Size, objectstore.Options{
		Overwrite:   false,
		ContentType: script.ContentType,
	})
	if err != nil {
		s.log.Errorw("script upload failed", "project_id", project.ID, "path", path, "error", err)
		return apperr.Wrap(apperr.UploadFailed, "Upload failed", apperr.BackendMessage(err), err)
	}

	scriptURL := s.objects.PublicURL(objectstore.BucketProjectScripts, path)
	if err := s.store.SetScriptURL(ctx, project.ID, scriptURL); err != nil {
		s.log.Errorw("script link failed", "project_id", project.ID, "error", err)
		return unexpected(err)
	}
	project.ScriptURL = &scriptURL
	return nil
}

func unexpected(err error) error {
	return apperr.Wrap(apperr.Unexpected, "Unexpected error", apperr.BackendMessage(err), err)
}
