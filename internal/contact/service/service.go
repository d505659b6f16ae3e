package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/devfolio/portfolio/backend/internal/apierror"
	"github.com/devfolio/portfolio/backend/internal/contact"
	"github.com/devfolio/portfolio/backend/internal/contact/export"
	"github.com/devfolio/portfolio/backend/internal/contact/repository"
	"github.com/devfolio/portfolio/backend/pkg/logger"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
	statsWindow     = 7 * 24 * time.Hour
)

// Service defines the contact operations used by the handler layer.
type Service interface {
	Submit(ctx context.Context, in SubmitInput) (*contact.Contact, error)
	List(ctx context.Context, q ListQuery) (*Page, error)
	UpdateStatus(ctx context.Context, id, status string) (*contact.Contact, error)
	Delete(ctx context.Context, id string) error
	Stats(ctx context.Context) (contact.Stats, error)
	ExportCSV(ctx context.Context) ([]byte, error)
	// ExportFilename is the download name for an export taken now.
	ExportFilename() string
}

// SubmitInput is a raw contact-form submission plus request metadata.
type SubmitInput struct {
	Name      string
	Email     string
	Company   string
	Message   string
	SourceIP  string
	UserAgent string
}

// ListQuery selects one page of contacts. Status "" or "todos" disables the filter.
type ListQuery struct {
	Status string
	Page   int64
	Limit  int64
}

// Page is one page of a listing.
type Page struct {
	Items       []*contact.Contact `json:"items"`
	Total       int64              `json:"total"`
	TotalPages  int64              `json:"totalPages"`
	CurrentPage int64              `json:"currentPage"`
}

// Option configures the service.
type Option func(*contactService)

// WithClock replaces time.Now; tests use it to pin createdAt and the stats window.
func WithClock(now func() time.Time) Option {
	return func(s *contactService) { s.now = now }
}

// WithLocation sets the time zone used for export dates.
func WithLocation(loc *time.Location) Option {
	return func(s *contactService) { s.loc = loc }
}

type contactService struct {
	repo     repository.Repository
	now      func() time.Time
	loc      *time.Location
	validate *validator.Validate
}

// New returns a Service backed by repo.
func New(repo repository.Repository, opts ...Option) Service {
	s := &contactService{
		repo:     repo,
		now:      time.Now,
		loc:      time.UTC,
		validate: newValidator(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

var emailPattern = regexp.MustCompile(`^\w+([.-]?\w+)*@\w+([.-]?\w+)*(\.\w{2,3})+$`)

// submission is the normalised form validated before a write.
type submission struct {
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,contactemail"`
	Company  string `json:"company" validate:"max=100"`
	Message  string `json:"message" validate:"required,max=1000"`
	SourceIP string `json:"sourceIp" validate:"required"`
}

var fieldMessages = map[string]string{
	"name.required":      "Nome é obrigatório",
	"name.max":           "Nome deve ter no máximo 100 caracteres",
	"email.required":     "Email é obrigatório",
	"email.contactemail": "Email inválido",
	"company.max":        "Nome da empresa deve ter no máximo 100 caracteres",
	"message.required":   "Mensagem é obrigatória",
	"message.max":        "Mensagem deve ter no máximo 1000 caracteres",
	"sourceIp.required":  "IP de origem é obrigatório",
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		return strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
	})
	_ = v.RegisterValidation("contactemail", func(fl validator.FieldLevel) bool {
		return emailPattern.MatchString(fl.Field().String())
	})
	return v
}

func (s *contactService) check(sub *submission) error {
	err := s.validate.Struct(sub)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate submission: %w", err)
	}
	ve := &apierror.ValidationError{Message: "Dados inválidos"}
	missing := false
	for _, fe := range verrs {
		msg, ok := fieldMessages[fe.Field()+"."+fe.Tag()]
		if !ok {
			msg = fe.Field() + " inválido"
		}
		if fe.Tag() == "required" {
			missing = true
		}
		ve.Fields = append(ve.Fields, apierror.FieldError{Field: fe.Field(), Message: msg})
	}
	if missing {
		ve.Message = "Nome, email e mensagem são obrigatórios"
	}
	return ve
}

func (s *contactService) Submit(ctx context.Context, in SubmitInput) (*contact.Contact, error) {
	sub := submission{
		Name:     strings.TrimSpace(in.Name),
		Email:    strings.ToLower(strings.TrimSpace(in.Email)),
		Company:  strings.TrimSpace(in.Company),
		Message:  strings.TrimSpace(in.Message),
		SourceIP: strings.TrimSpace(in.SourceIP),
	}
	if err := s.check(&sub); err != nil {
		return nil, err
	}

	c := &contact.Contact{
		Name:      sub.Name,
		Email:     sub.Email,
		Company:   sub.Company,
		Message:   sub.Message,
		SourceIP:  sub.SourceIP,
		UserAgent: in.UserAgent,
		Status:    contact.StatusNew,
		CreatedAt: s.now().UTC(),
	}
	if _, err := s.repo.Insert(ctx, c); err != nil {
		return nil, fmt.Errorf("save contact: %w", err)
	}
	logger.Infof("new contact received: id=%s email=%s", c.ID, c.Email)
	return c, nil
}

func (s *contactService) List(ctx context.Context, q ListQuery) (*Page, error) {
	page, limit := q.Page, q.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	var f contact.Filter
	if st := strings.TrimSpace(q.Status); st != "" && st != contact.StatusAll {
		f.Status = contact.Status(st)
	}

	total, err := s.repo.Count(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("count contacts: %w", err)
	}
	p := &Page{
		Items:       []*contact.Contact{},
		Total:       total,
		TotalPages:  (total + limit - 1) / limit,
		CurrentPage: page,
	}
	// Past the last page; also keeps (page-1)*limit from overflowing.
	if page > p.TotalPages {
		return p, nil
	}
	items, err := s.repo.List(ctx, f, (page-1)*limit, limit)
	if err != nil {
		return nil, fmt.Errorf("list contacts: %w", err)
	}
	if items != nil {
		p.Items = items
	}
	return p, nil
}

func (s *contactService) UpdateStatus(ctx context.Context, id, status string) (*contact.Contact, error) {
	st := contact.Status(strings.TrimSpace(status))
	if !st.Valid() {
		return nil, apierror.Invalid("Status inválido")
	}
	c, err := s.repo.UpdateStatus(ctx, id, st)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("update contact %s: %w", id, err)
	}
	return c, nil
}

func (s *contactService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return err
		}
		return fmt.Errorf("delete contact %s: %w", id, err)
	}
	return nil
}

func (s *contactService) Stats(ctx context.Context) (contact.Stats, error) {
	st, err := s.repo.Stats(ctx, s.now().UTC().Add(-statsWindow))
	if err != nil {
		return contact.Stats{}, fmt.Errorf("contact stats: %w", err)
	}
	return st, nil
}

func (s *contactService) ExportCSV(ctx context.Context) ([]byte, error) {
	all, err := s.repo.List(ctx, contact.Filter{}, 0, 0)
	if err != nil {
		return nil, fmt.Errorf("load contacts for export: %w", err)
	}
	var buf bytes.Buffer
	if err := export.WriteCSV(&buf, all, s.loc); err != nil {
		return nil, fmt.Errorf("write csv: %w", err)
	}
	return buf.Bytes(), nil
}

func (s *contactService) ExportFilename() string {
	return export.Filename(s.now())
}
