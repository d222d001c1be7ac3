package loader

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/go-playground/validator/v10"

	"github.com/papapumpkin/lineup/internal/ident"
	"github.com/papapumpkin/lineup/internal/model"
)

// Validator checks a loaded configuration for problems that decoding cannot
// catch: malformed URLs and colors, duplicate stable IDs, references to
// undeclared stages, and times out of order.
type Validator struct {
	v *validator.Validate
}

// NewValidator returns a Validator.
func NewValidator() *Validator {
	return &Validator{v: validator.New(validator.WithRequiredStructEnabled())}
}

// Validate checks cfg and returns every problem found. A nil result means
// the configuration can be synced.
func (val *Validator) Validate(cfg model.OrganizerConfiguration) []ValidationError {
	var errs []ValidationError

	errs = append(errs, val.structErrs(cfg.Info, "", "organizer-info.yml")...)

	seenEvents := make(map[string]string)
	for _, ec := range cfg.Events {
		key := ident.Key(ec.Info.Name)
		if prev, ok := seenEvents[key]; ok {
			errs = append(errs, ValidationError{
				Category:   ValCatDuplicateID,
				Event:      ec.Info.Name,
				SourceFile: filepath.Join(ec.Dir, "event-info.yml"),
				Field:      "name",
				Err:        fmt.Errorf("%w: event %q already defined in %s", ErrDuplicateID, ec.Info.Name, prev),
			})
		} else {
			seenEvents[key] = ec.Dir
		}
		errs = append(errs, val.validateEvent(ec)...)
	}
	sort.SliceStable(errs, func(i, j int) bool {
		if errs[i].SourceFile != errs[j].SourceFile {
			return errs[i].SourceFile < errs[j].SourceFile
		}
		return errs[i].Field < errs[j].Field
	})
	return errs
}

// Validate checks cfg with a fresh Validator.
func Validate(cfg model.OrganizerConfiguration) []ValidationError {
	return NewValidator().Validate(cfg)
}

func (val *Validator) validateEvent(ec model.EventConfiguration) []ValidationError {
	var errs []ValidationError
	event := ec.Info.Name
	infoFile := filepath.Join(ec.Dir, "event-info.yml")

	add := func(cat ValidationCategory, file, field string, err error) {
		errs = append(errs, ValidationError{Category: cat, Event: event, SourceFile: file, Field: field, Err: err})
	}

	errs = append(errs, val.structErrs(ec.Info, event, infoFile)...)
	if !ec.Info.StartTime.IsZero() && !ec.Info.EndTime.IsZero() && !ec.Info.EndTime.After(ec.Info.StartTime) {
		add(ValCatTimeOrder, infoFile, "endDate", fmt.Errorf("%w: event ends %s, starts %s",
			ErrTimeOrder, ec.Info.EndTime.Format(DateLayout), ec.Info.StartTime.Format(DateLayout)))
	}

	stages := make(map[string]bool, len(ec.Stages))
	for _, s := range ec.Stages {
		key := ident.Key(s.Name)
		if stages[key] {
			add(ValCatDuplicateID, infoFile, "stages", fmt.Errorf("%w: stage %q", ErrDuplicateID, s.Name))
		}
		stages[key] = true
		errs = append(errs, val.structErrs(s, event, infoFile)...)
	}

	artists := make(map[string]bool, len(ec.Artists))
	for _, a := range ec.Artists {
		file := filepath.Join(ec.Dir, "artists", a.Name+".md")
		key := ident.Key(a.Name)
		if artists[key] {
			add(ValCatDuplicateID, file, "name", fmt.Errorf("%w: artist %q", ErrDuplicateID, a.Name))
		}
		artists[key] = true
		errs = append(errs, val.structErrs(a, event, file)...)
	}

	lineupFile := filepath.Join(ec.Dir, "stage-lineups.yml")
	for stage, l := range ec.StageLineups {
		if !stages[ident.Key(stage)] {
			add(ValCatInvalidValue, lineupFile, stage, fmt.Errorf("%w: %q", ErrUnknownStage, stage))
		}
		errs = append(errs, val.structErrs(l, event, lineupFile)...)
	}

	schedules := make(map[string]string, len(ec.Schedule))
	for _, s := range ec.Schedule {
		file := filepath.Join(ec.Dir, "schedules", s.Source+".yml")
		key := ident.Key(s.Metadata.Date) + "/" + ident.Key(s.Metadata.CustomTitle)
		if prev, ok := schedules[key]; ok {
			add(ValCatDuplicateID, file, "date", fmt.Errorf("%w: schedule %s already defined in %s", ErrDuplicateID, s.Metadata.Date, prev))
		}
		schedules[key] = s.Source
		for stage, perfs := range s.StageSchedules {
			if !stages[ident.Key(stage)] {
				add(ValCatInvalidValue, file, "stages", fmt.Errorf("%w: %q", ErrUnknownStage, stage))
			}
			for _, p := range perfs {
				if !p.EndTime.After(p.StartTime) {
					add(ValCatTimeOrder, file, stage, fmt.Errorf("%w: %q", ErrTimeOrder, p.Title))
				}
			}
		}
	}

	channels := make(map[string]bool, len(ec.Channels))
	for _, cc := range ec.Channels {
		file := filepath.Join(ec.Dir, "communications", cc.Info.Name, "channel-info.yaml")
		key := ident.Key(cc.Info.Name)
		if channels[key] {
			add(ValCatDuplicateID, file, "name", fmt.Errorf("%w: channel %q", ErrDuplicateID, cc.Info.Name))
		}
		channels[key] = true
		errs = append(errs, val.structErrs(cc.Info, event, file)...)

		posts := make(map[string]bool, len(cc.Posts))
		for _, p := range cc.Posts {
			postFile := filepath.Join(filepath.Dir(file), p.Title+".md")
			pk := ident.Key(p.Title)
			if posts[pk] {
				add(ValCatDuplicateID, postFile, "title", fmt.Errorf("%w: post %q", ErrDuplicateID, p.Title))
			}
			posts[pk] = true
			errs = append(errs, val.structErrs(p, event, postFile)...)
		}
	}
	return errs
}

// structErrs runs the struct tag rules on v and converts failures.
func (val *Validator) structErrs(v any, event, file string) []ValidationError {
	err := val.v.Struct(v)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return []ValidationError{{Category: ValCatInvalidValue, Event: event, SourceFile: file, Err: err}}
	}
	out := make([]ValidationError, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		ve := ValidationError{Event: event, SourceFile: file, Field: fe.Namespace()}
		if fe.Tag() == "required" {
			ve.Category = ValCatMissingField
			ve.Err = fmt.Errorf("%w: %s", ErrMissingField, fe.Namespace())
		} else {
			ve.Category = ValCatInvalidValue
			ve.Err = fmt.Errorf("%w: %s=%v fails %q", ErrInvalidValue, fe.Namespace(), fe.Value(), fe.Tag())
		}
		out = append(out, ve)
	}
	return out
}
