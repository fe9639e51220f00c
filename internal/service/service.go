// Package service implements the volunteer, NGO, matching and interview
// operations behind the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/smartserve-ai/smartserve/internal/events"
	"github.com/smartserve-ai/smartserve/internal/interview"
	"github.com/smartserve-ai/smartserve/internal/store"
	"github.com/smartserve-ai/smartserve/internal/tags"
	"go.uber.org/zap"
)

var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
)

// Options wires the service collaborators. Store and Extractor are required.
type Options struct {
	Store store.Store
	// Extractor tags profiles, posts and match queries.
	Extractor tags.Extractor
	// Analyzer answers the analyze operation. Defaults to Extractor.
	Analyzer tags.Extractor
	Events   events.Publisher
	Logger   *zap.Logger
	// MinimumScore drops weaker candidates from match listings. Zero keeps all.
	MinimumScore int
}

type Service struct {
	store        store.Store
	extractor    tags.Extractor
	analyzer     tags.Extractor
	events       events.Publisher
	logger       *zap.Logger
	validate     *validator.Validate
	minimumScore int

	now   func() time.Time
	newID func() string
}

func New(opts Options) (*Service, error) {
	if opts.Store == nil {
		return nil, errors.New("store is required")
	}
	if opts.Extractor == nil {
		return nil, errors.New("tag extractor is required")
	}
	if opts.MinimumScore < 0 || opts.MinimumScore > 100 {
		return nil, fmt.Errorf("minimum score must be between 0 and 100, got %d", opts.MinimumScore)
	}

	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	analyzer := opts.Analyzer
	if analyzer == nil {
		analyzer = opts.Extractor
	}

	publisher := opts.Events
	if publisher == nil {
		publisher = events.Nop{}
	}

	return &Service{
		store:        opts.Store,
		extractor:    opts.Extractor,
		analyzer:     analyzer,
		events:       events.Logged(publisher, log),
		logger:       log.Named("service"),
		validate:     newValidator(),
		minimumScore: opts.MinimumScore,
		now:          func() time.Time { return time.Now().UTC() },
		newID:        uuid.NewString,
	}, nil
}

// newValidator reports field errors by their JSON names.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// check validates in and turns validator output into an ErrValidation.
func (s *Service) check(in any) error {
	err := s.validate.Struct(in)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, describeField(fe))
	}
	return fmt.Errorf("%w: %s", ErrValidation, strings.Join(msgs, "; "))
}

func describeField(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "len", "numeric":
		return field + " must be exactly 10 digits"
	case "email":
		return field + " must be a valid e-mail address"
	case "url":
		return field + " must be a valid URL"
	}
	return fmt.Sprintf("%s is invalid (%s)", field, fe.Tag())
}

func validationError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// translate maps store and state machine errors onto the service sentinels.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrNotFound):
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	case errors.Is(err, store.ErrDuplicate), errors.Is(err, interview.ErrInvalidTransition):
		return fmt.Errorf("%w: %w", ErrConflict, err)
	case errors.Is(err, interview.ErrInvalidSlot):
		return fmt.Errorf("%w: %w", ErrValidation, err)
	}
	return err
}

func isNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

func (s *Service) publish(ctx context.Context, e events.Event) {
	_ = s.events.Publish(ctx, e)
}

func trimAll(values ...*string) {
	for _, v := range values {
		*v = strings.TrimSpace(*v)
	}
}
