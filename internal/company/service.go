package company

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/fkhayef/ensamble/internal/apperr"
	"github.com/fkhayef/ensamble/internal/identity"
	"github.com/fkhayef/ensamble/internal/metrics"
	"github.com/fkhayef/ensamble/internal/objectstore"
	"github.com/fkhayef/ensamble/internal/upload"
)

// Store persists the rows written when a company is founded
type Store interface {
	CreateCompany(ctx context.Context, name, founderID string) (*Company, error)
	SetImageURL(ctx context.Context, companyID, imageURL string) error
	AddMember(ctx context.Context, m *Member) (*Member, error)
	CreateInvitation(ctx context.Context, inv *Invitation) (*Invitation, error)
}

// InvitationLink is a shareable confirmation link for one invitation. It is
// returned to the caller; sending it is someone else's job.
type InvitationLink struct {
	Email string `json:"email"`
	Role  Role   `json:"role"`
	Token string `json:"token"`
	URL   string `json:"url"`
}

// Result is what a successful Found produced
type Result struct {
	Company     *Company         `json:"company"`
	Director    *Member          `json:"director"`
	Invitations []InvitationLink `json:"invitations"`
}

// Service founds companies
type Service struct {
	store   Store
	objects objectstore.Store
	origin  string
	log     *zap.SugaredLogger
	metrics *metrics.Recorder
	now     func() time.Time
}

// NewService creates a new company service. origin prefixes invitation links.
func NewService(store Store, objects objectstore.Store, origin string, log *zap.SugaredLogger, m *metrics.Recorder) *Service {
	return &Service{
		store:   store,
		objects: objects,
		origin:  strings.TrimRight(origin, "/"),
		log:     log,
		metrics: m,
		now:     time.Now,
	}
}

// Found commits a draft: the company row, its optional image, the founder
// as Director and one invitation per staged invitee, in that order.
//
// The commit is sequential and best effort. A failure stops the sequence
// where it happened and nothing already written is rolled back, except that
// an image upload failure is logged and the commit carries on.
func (s *Service) Found(ctx context.Context, d *Draft) (*Result, error) {
	res, err := s.found(ctx, d)
	if err != nil {
		s.metrics.Commit("company", string(apperr.CategoryOf(err)))
		return nil, err
	}
	s.metrics.Commit("company", "ok")
	return res, nil
}

func (s *Service) found(ctx context.Context, d *Draft) (*Result, error) {
	name, err := ValidateName(d.Name)
	if err != nil {
		return nil, err
	}

	founder, err := identity.Current(ctx)
	if err != nil {
		return nil, err
	}

	company, err := s.store.CreateCompany(ctx, name, founder.ID)
	if err != nil {
		s.log.Errorw("company insert failed", "name", name, "founder_id", founder.ID, "error", err)
		if apperr.IsUniqueViolation(err) {
			return nil, apperr.Wrap(apperr.DuplicateEntity, "Duplicate company",
				"You already founded a company with that name. Try another stage name.", err)
		}
		return nil, unexpected(err)
	}

	if d.Image != nil {
		s.attachImage(ctx, company, d.Image)
	}

	director, err := s.store.AddMember(ctx, &Member{
		CompanyID: company.ID,
		ProfileID: founder.ID,
		Role:      RoleDirector,
		IsActive:  true,
		JoinedAt:  s.now().UTC(),
	})
	if err != nil {
		s.log.Errorw("director membership insert failed", "company_id", company.ID, "error", err)
		return nil, unexpected(err)
	}

	links := make([]InvitationLink, 0, len(d.Invitees))
	for _, inv := range d.Invitees {
		created, err := s.store.CreateInvitation(ctx, &Invitation{
			CompanyID: company.ID,
			InviterID: founder.ID,
			Email:     inv.Email,
			Role:      inv.Role,
		})
		if err != nil {
			s.log.Errorw("invitation insert failed", "company_id", company.ID, "email", inv.Email, "error", err)
			if apperr.IsUniqueViolation(err) {
				return nil, apperr.Wrap(apperr.DuplicateEntity, "Duplicate invitation",
					fmt.Sprintf("%s has already been invited.", inv.Email), err)
			}
			return nil, unexpected(err)
		}

		link := InvitationLink{
			Email: created.Email,
			Role:  created.Role,
			Token: created.Token,
			URL:   s.ConfirmationURL(created.Token),
		}
		s.log.Infow("invitation link", "company_id", company.ID, "email", link.Email, "url", link.URL)
		links = append(links, link)
	}

	return &Result{Company: company, Director: director, Invitations: links}, nil
}

// ConfirmationURL builds the link an invitee follows to accept
func (s *Service) ConfirmationURL(token string) string {
	return s.origin + "/invitacion/confirmar?token=" + url.QueryEscape(token)
}

// attachImage uploads the logo and links it to the company. Failures are
// logged and swallowed; the company stays without an image.
func (s *Service) attachImage(ctx context.Context, company *Company, img *upload.File) {
	path := fmt.Sprintf("%s/logo.%s", company.ID, img.TypeExtension())

	err := s.objects.Upload(ctx, objectstore.BucketCompanyImages, path, img.Reader(), img.Size, objectstore.Options{
		Overwrite:   true,
		ContentType: img.ContentType,
	})
	if err != nil {
		s.log.Warnw("company image upload failed", "company_id", company.ID, "path", path, "error", err)
		s.metrics.SwallowedUpload(objectstore.BucketCompanyImages)
		return
	}

	imageURL := s.objects.PublicURL(objectstore.BucketCompanyImages, path)
	if err := s.store.SetImageURL(ctx, company.ID, imageURL); err != nil {
		s.log.Warnw("company image link failed", "company_id", company.ID, "error", err)
		s.metrics.SwallowedUpload(objectstore.BucketCompanyImages)
		return
	}
	company.ImageURL = &imageURL
}

func unexpected(err error) error {
	return apperr.Wrap(apperr.Unexpected, "Unexpected error", apperr.BackendMessage(err), err)
}
