package config

import (
	goerrors "errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/mlieberg/eventledger/internal/config/dto"
	"github.com/mlieberg/eventledger/pkg/errors"
)

func TestBuildRegistry(t *testing.T) {
	doc := &dto.DefinitionsDocument{
		Prefix: "ab",
		Versions: []dto.VersionDoc{
			{
				Number:       1,
				IntroducedAt: "2024-01-01",
				Categories: []dto.CategoryDoc{
					{
						Name: "user",
						Events: []dto.EventDoc{
							{
								Name:         "signed_up",
								IntroducedAt: "2024-01-01",
								Description:  "A user created an account.",
								Notes: []dto.NoteDoc{
									{At: "2024-02-01", Author: "ada", Body: "Added age property."},
								},
							},
							{
								Name:         "deleted",
								IntroducedAt: "2024-02-01",
								Description:  "A user deleted their account.",
								RetiredAt:    "2025-01-01",
							},
						},
					},
					{
						Name:      "legacy",
						RetiredAt: "2024-06-01",
						Events: []dto.EventDoc{
							{
								Name:         "pinged",
								IntroducedAt: "2024-01-01",
								Description:  "A legacy ping fired.",
							},
						},
					},
				},
			},
		},
	}

	r, err := BuildRegistry(doc)
	if err != nil {
		t.Fatalf("BuildRegistry() error = %v", err)
	}

	_, qualified, err := r.Resolve(1, "user", "signed_up")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if qualified != "ab1_user_signed_up" {
		t.Errorf("qualified name = %q", qualified)
	}

	if _, _, err := r.Resolve(1, "user", "deleted"); !errors.IsRetired(err) {
		t.Errorf("retired event resolve error = %v, want retired", err)
	}

	_, _, err = r.Resolve(1, "legacy", "pinged")
	var retired *errors.RetiredEventError
	if !goerrors.As(err, &retired) || retired.Scope != "category" {
		t.Errorf("legacy category resolve error = %v, want category-scoped retirement", err)
	}
}

func TestBuildRegistryPropagatesBuildErrors(t *testing.T) {
	doc := &dto.DefinitionsDocument{
		Versions: []dto.VersionDoc{
			{
				Number:       1,
				IntroducedAt: "2024-01-01",
				Categories: []dto.CategoryDoc{
					{
						Name: "user",
						Events: []dto.EventDoc{
							{Name: "signed_up", IntroducedAt: "2024-01-01"},
						},
					},
				},
			},
		},
	}

	_, err := BuildRegistry(doc)
	var missing *errors.MissingDescriptionError
	if !goerrors.As(err, &missing) {
		t.Fatalf("BuildRegistry() error = %v, want MissingDescriptionError", err)
	}
}

func TestLoadRegistry(t *testing.T) {
	path := filepath.Join(t.TempDir(), "definitions.yaml")
	content := `
prefix: ab
versions:
  - version: 1
    introduced_at: "2024-01-01"
    categories:
      - name: user
        events:
          - name: signed_up
            introduced_at: "2024-01-01"
            description: A user created an account.
            notes:
              - at: "2024-02-01"
                author: ada
                body: Added age property.
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write definitions file: %v", err)
	}

	r, err := LoadRegistry(path)
	if err != nil {
		t.Fatalf("LoadRegistry() error = %v", err)
	}

	event, qualified, err := r.Resolve(1, "user", "signed_up")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if qualified != "ab1_user_signed_up" {
		t.Errorf("qualified name = %q", qualified)
	}
	if notes := event.Notes(); len(notes) != 1 || notes[0].Author != "ada" {
		t.Errorf("Notes() = %v", notes)
	}
}

func TestLoadRegistryMissingFile(t *testing.T) {
	if _, err := LoadRegistry(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("LoadRegistry() = nil error for missing file")
	}
}
