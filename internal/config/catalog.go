package config

import (
	"errors"
	"fmt"
)

const (
	ModeOnline  = "online"
	ModeOffline = "offline"

	defaultDurationDays = 365
)

// ErrUnknownMode is returned when a purchase mode is neither online nor offline.
var ErrUnknownMode = errors.New("unknown purchase mode")

// Pricing is the one-year price of a course in major currency units.
type Pricing struct {
	Online  int `mapstructure:"online" yaml:"online"`
	Offline int `mapstructure:"offline" yaml:"offline"`
}

type Course struct {
	Title string `mapstructure:"title" yaml:"title"`
	// Page is the gated course page a successful purchase lands on.
	Page         string `mapstructure:"page" yaml:"page"`
	DurationDays int    `mapstructure:"duration_days" yaml:"duration_days"`
	Pricing      `mapstructure:",squash" yaml:",inline"`
}

// Catalog is the course price table. Both the buy page and subscription
// initiation read prices from here.
type Catalog struct {
	Default Pricing           `mapstructure:"default" yaml:"default"`
	Items   map[string]Course `mapstructure:"items" yaml:"items"`
}

func DefaultCatalog() Catalog {
	return Catalog{
		Default: Pricing{Online: 2000, Offline: 2000},
		Items: map[string]Course{
			"agri_quota": {
				Title:        "Agriculture Quota Practical Exam",
				Page:         "/agriculturequota/",
				DurationDays: defaultDurationDays,
				Pricing:      Pricing{Online: 2000, Offline: 2500},
			},
			"cuet_ug_icar": {
				Title:        "CUET UG Agriculture – ICAR",
				Page:         "/cuet/",
				DurationDays: defaultDurationDays,
				Pricing:      Pricing{Online: 2000, Offline: 2000},
			},
		},
	}
}

// Lookup returns the course for slug. Slugs missing from the table get the
// default pricing and no landing page.
func (c Catalog) Lookup(slug string) Course {
	if course, ok := c.Items[slug]; ok {
		if course.DurationDays <= 0 {
			course.DurationDays = defaultDurationDays
		}
		if course.Title == "" {
			course.Title = slug
		}
		return course
	}
	return Course{
		Title:        slug,
		DurationDays: defaultDurationDays,
		Pricing:      c.Default,
	}
}

// Price returns the amount charged for slug in the given mode.
func (c Catalog) Price(slug, mode string) (int, error) {
	course := c.Lookup(slug)
	switch mode {
	case ModeOnline:
		return course.Online, nil
	case ModeOffline:
		return course.Offline, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownMode, mode)
}

func (c Catalog) Validate() error {
	if c.Default.Online <= 0 || c.Default.Offline <= 0 {
		return errors.New("courses.default prices must be positive")
	}
	for slug, course := range c.Items {
		if course.Online <= 0 || course.Offline <= 0 {
			return fmt.Errorf("courses.items.%s prices must be positive", slug)
		}
	}
	return nil
}
