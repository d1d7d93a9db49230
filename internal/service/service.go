// Package service implements Pokrok's operations over a storage provider.
// Both the REST server and the local CLI commands go through it.
package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	apperrors "github.com/julianstephens/pokrok/internal/errors"
	"github.com/julianstephens/pokrok/internal/scheduler"
	"github.com/julianstephens/pokrok/internal/storage"
	"github.com/julianstephens/pokrok/internal/utils"
)

type Service struct {
	store    storage.Provider
	sched    *scheduler.Scheduler
	validate *validator.Validate
	now      func() time.Time
	// timezone overrides the stored setting when non-empty.
	timezone string
}

type Option func(*Service)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithTimezone pins the zone used to decide what "today" is.
func WithTimezone(tz string) Option {
	return func(s *Service) { s.timezone = tz }
}

func New(store storage.Provider, sched *scheduler.Scheduler, opts ...Option) *Service {
	s := &Service{
		store:    store,
		sched:    sched,
		validate: validator.New(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Store() storage.Provider { return s.store }

func (s *Service) Scheduler() *scheduler.Scheduler { return s.sched }

// Today is the current civil date in the configured timezone.
func (s *Service) Today() (time.Time, error) {
	now, err := s.localNow()
	if err != nil {
		return time.Time{}, err
	}
	return utils.DateOf(now), nil
}

// localNow is the current instant in the configured timezone.
func (s *Service) localNow() (time.Time, error) {
	tz := s.timezone
	if tz == "" {
		settings, err := s.store.GetSettings()
		if err != nil {
			return time.Time{}, fmt.Errorf("failed to load settings: %w", err)
		}
		tz = settings.Timezone
	}
	loc, err := utils.LoadLocation(tz)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timezone %q: %w", tz, err)
	}
	return s.now().In(loc), nil
}

// dateOrToday normalizes raw, defaulting to today when empty.
func (s *Service) dateOrToday(field, raw string) (time.Time, error) {
	if strings.TrimSpace(raw) == "" {
		return s.Today()
	}
	day, err := utils.ParseDate(raw)
	if err != nil {
		return time.Time{}, apperrors.Invalid(field, "invalid date %q", raw)
	}
	return day, nil
}

func normalizeField(field string, value *string) error {
	normalized, err := utils.NormalizeOptionalDate(*value)
	if err != nil {
		return apperrors.Invalid(field, "invalid date %q", *value)
	}
	*value = normalized
	return nil
}

// check runs the struct tags and then the model's own rules.
func (s *Service) check(v interface{ Validate() error }) error {
	if err := s.validate.Struct(v); err != nil {
		return validationError(err)
	}
	return v.Validate()
}

func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return apperrors.Invalid("", "%v", err)
	}
	fe := verrs[0]
	field := fe.Field()
	if field != "" {
		field = strings.ToLower(field[:1]) + field[1:]
	}
	switch fe.Tag() {
	case "required":
		return apperrors.Invalid(field, "is required")
	case "max":
		return apperrors.Invalid(field, "must be at most %s characters", fe.Param())
	case "gte":
		return apperrors.Invalid(field, "must be at least %s", fe.Param())
	default:
		return apperrors.Invalid(field, "failed %q validation", fe.Tag())
	}
}
