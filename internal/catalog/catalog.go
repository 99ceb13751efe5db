// Package catalog manages the earn and penalty activity lists. Functions
// here never mutate their input; they return the updated catalog so the
// caller can persist before committing.
package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/tomwugdgz/qqtime/internal/model"
)

//go:embed seed.yaml
var seedYAML []byte

const (
	customPrefix      = "custom_"
	customDescription = "自定义项目"
	customDuration    = 30
	customEarnRatio   = 0.5
)

var (
	ErrUnknownKind     = errors.New("catalog kind must be EARN or PENALTY")
	ErrNameRequired    = errors.New("option name is required")
	ErrInvalidCategory = errors.New("invalid category")
	ErrDuplicateID     = errors.New("option id already exists")
	ErrInvalidRatio    = errors.New("earn option exchange ratio must not be negative")
)

// Seed returns a fresh copy of the built-in catalog.
func Seed() model.Catalog {
	c, err := Parse(seedYAML)
	if err != nil {
		panic(fmt.Sprintf("catalog: embedded seed: %v", err))
	}
	return c
}

// Parse decodes a YAML catalog document with earn and penalty lists.
func Parse(data []byte) (model.Catalog, error) {
	var doc struct {
		Earn    []model.ActivityOption `yaml:"earn"`
		Penalty []model.ActivityOption `yaml:"penalty"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return model.Catalog{}, fmt.Errorf("parse catalog: %w", err)
	}
	for _, o := range append(doc.Earn, doc.Penalty...) {
		if !o.Category.Valid() {
			return model.Catalog{}, fmt.Errorf("%w: %q on option %q", ErrInvalidCategory, o.Category, o.ID)
		}
	}
	return model.Catalog{Earn: doc.Earn, Penalty: doc.Penalty}, nil
}

// Merge overlays stored lists on the seed. An empty stored list keeps the
// seed for that kind.
func Merge(seed, stored model.Catalog) model.Catalog {
	out := seed.Clone()
	if len(stored.Earn) > 0 {
		out.Earn = append([]model.ActivityOption(nil), stored.Earn...)
	}
	if len(stored.Penalty) > 0 {
		out.Penalty = append([]model.ActivityOption(nil), stored.Penalty...)
	}
	return out
}

func list(c model.Catalog, kind model.TransactionType) ([]model.ActivityOption, error) {
	switch kind {
	case model.TransactionEarn:
		return c.Earn, nil
	case model.TransactionPenalty:
		return c.Penalty, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
}

func with(c model.Catalog, kind model.TransactionType, opts []model.ActivityOption) model.Catalog {
	out := c.Clone()
	if kind == model.TransactionEarn {
		out.Earn = opts
	} else {
		out.Penalty = opts
	}
	return out
}

// Options returns a copy of the list for kind.
func Options(c model.Catalog, kind model.TransactionType) ([]model.ActivityOption, error) {
	opts, err := list(c, kind)
	if err != nil {
		return nil, err
	}
	return append([]model.ActivityOption(nil), opts...), nil
}

// Find looks up id in the kind-specific list.
func Find(c model.Catalog, kind model.TransactionType, id string) (model.ActivityOption, bool) {
	opts, err := list(c, kind)
	if err != nil {
		return model.ActivityOption{}, false
	}
	for _, o := range opts {
		if o.ID == id {
			return o, true
		}
	}
	return model.ActivityOption{}, false
}

// NewOption builds a custom option for kind with the defaults the option
// editor uses: ratio 0.5 for earn, direct deduction for penalties.
func NewOption(kind model.TransactionType, name string, category model.Category, durationMinutes int) model.ActivityOption {
	if durationMinutes <= 0 {
		durationMinutes = customDuration
	}
	o := model.ActivityOption{
		ID:                     customPrefix + uuid.NewString(),
		Name:                   strings.TrimSpace(name),
		Category:               category,
		DefaultDurationMinutes: durationMinutes,
		Description:            customDescription,
	}
	if kind == model.TransactionPenalty {
		o.ExchangeRatio = model.DirectDeduction
		o.IsPenalty = true
	} else {
		o.ExchangeRatio = customEarnRatio
	}
	return o
}

// Add appends opt to the kind-specific list. A blank id gets a generated
// one. Ids are trusted beyond an exact-duplicate check.
func Add(c model.Catalog, kind model.TransactionType, opt model.ActivityOption) (model.Catalog, model.ActivityOption, error) {
	opts, err := list(c, kind)
	if err != nil {
		return c, opt, err
	}
	opt.Name = strings.TrimSpace(opt.Name)
	if opt.Name == "" {
		return c, opt, ErrNameRequired
	}
	if !opt.Category.Valid() {
		return c, opt, fmt.Errorf("%w: %q", ErrInvalidCategory, opt.Category)
	}
	if kind == model.TransactionEarn && opt.ExchangeRatio < 0 {
		return c, opt, fmt.Errorf("%w: %v", ErrInvalidRatio, opt.ExchangeRatio)
	}
	if opt.ID == "" {
		opt.ID = customPrefix + uuid.NewString()
	}
	if _, ok := Find(c, kind, opt.ID); ok {
		return c, opt, fmt.Errorf("%w: %q", ErrDuplicateID, opt.ID)
	}
	if kind == model.TransactionPenalty {
		opt.IsPenalty = true
	}

	next := make([]model.ActivityOption, 0, len(opts)+1)
	next = append(next, opts...)
	next = append(next, opt)
	return with(c, kind, next), opt, nil
}

// Delete removes id from the kind-specific list. It reports whether an
// entry was removed.
func Delete(c model.Catalog, kind model.TransactionType, id string) (model.Catalog, bool, error) {
	opts, err := list(c, kind)
	if err != nil {
		return c, false, err
	}
	next := make([]model.ActivityOption, 0, len(opts))
	removed := false
	for _, o := range opts {
		if o.ID == id {
			removed = true
			continue
		}
		next = append(next, o)
	}
	if !removed {
		return c, false, nil
	}
	return with(c, kind, next), true, nil
}
