package config

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/mlieberg/eventledger/internal/config/dto"
	"github.com/mlieberg/eventledger/pkg/definitions"
)

// LoadRegistry reads a definitions document from path and materializes the
// immutable registry. Any structural violation in the document fails the
// whole load; no partial registry is ever returned.
func LoadRegistry(path string) (*definitions.Registry, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read definitions file: %w", err)
	}

	var doc dto.DefinitionsDocument
	if err := v.Unmarshal(&doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal definitions: %w", err)
	}

	return BuildRegistry(&doc)
}

// BuildRegistry drives the definitions builder over a parsed document.
// Document order becomes declaration order, and a retired_at field on any
// node is applied immediately after the node is declared.
func BuildRegistry(doc *dto.DefinitionsDocument) (*definitions.Registry, error) {
	b := definitions.NewBuilder().Prefix(doc.Prefix)

	for _, version := range doc.Versions {
		if err := b.Version(version.Number, version.IntroducedAt); err != nil {
			return nil, err
		}
		if version.RetiredAt != "" {
			if err := b.Retire(version.RetiredAt); err != nil {
				return nil, err
			}
		}
		for _, category := range version.Categories {
			if err := b.Category(category.Name); err != nil {
				return nil, err
			}
			if category.RetiredAt != "" {
				if err := b.Retire(category.RetiredAt); err != nil {
					return nil, err
				}
			}
			for _, ev := range category.Events {
				if err := b.Event(ev.Name, ev.IntroducedAt, ev.Description); err != nil {
					return nil, err
				}
				for _, note := range ev.Notes {
					if err := b.Note(note.At, note.Author, note.Body); err != nil {
						return nil, err
					}
				}
				if ev.RetiredAt != "" {
					if err := b.Retire(ev.RetiredAt); err != nil {
						return nil, err
					}
				}
			}
		}
	}

	return b.Build()
}
