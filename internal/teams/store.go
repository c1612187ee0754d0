// Package teams stores team profiles as YAML files.
package teams

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	apperrors "github.com/thomas-vilte/ticketmate/internal/errors"
	"github.com/thomas-vilte/ticketmate/internal/logger"
	"github.com/thomas-vilte/ticketmate/internal/models"
	"github.com/thomas-vilte/ticketmate/internal/storage"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"
)

const DefaultIssueType = "Story"

var (
	projectKeyPattern = regexp.MustCompile(`^[A-Z][A-Z0-9_]*$`)
	unsafeChars       = regexp.MustCompile(`[^a-z0-9]+`)
)

type Store struct {
	dir string
}

func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// LoadAll returns every readable team sorted by name. Files that fail to
// parse or validate are skipped.
func (s *Store) LoadAll(ctx context.Context) ([]models.TeamProfile, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.Debug(ctx, "teams directory does not exist, returning empty list", "path", s.dir)
			return []models.TeamProfile{}, nil
		}
		return nil, apperrors.ErrStorageRead.WithError(err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if !strings.HasSuffix(entry.Name(), ".yaml") && !strings.HasSuffix(entry.Name(), ".yml") {
			continue
		}
		paths = append(paths, filepath.Join(s.dir, entry.Name()))
	}

	loaded := make([]*models.TeamProfile, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			team, err := s.load(ctx, path)
			if err != nil {
				logger.Warn(ctx, "skipping invalid team", "path", path, "error", err)
				return nil
			}
			loaded[i] = &team
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, apperrors.ErrStorageRead.WithError(err)
	}

	teams := make([]models.TeamProfile, 0, len(loaded))
	for _, team := range loaded {
		if team != nil {
			teams = append(teams, *team)
		}
	}
	sort.Slice(teams, func(i, j int) bool {
		return strings.ToLower(teams[i].Name) < strings.ToLower(teams[j].Name)
	})

	logger.Debug(ctx, "listed teams", "count", len(teams))
	return teams, nil
}

// Get finds a team by name, ignoring case.
func (s *Store) Get(ctx context.Context, name string) (models.TeamProfile, error) {
	teams, err := s.LoadAll(ctx)
	if err != nil {
		return models.TeamProfile{}, err
	}
	for _, team := range teams {
		if strings.EqualFold(team.Name, strings.TrimSpace(name)) {
			return team, nil
		}
	}

	logger.Warn(ctx, "team not found by name", "name", name)
	return models.TeamProfile{}, apperrors.ErrTeamNotFound.WithContext("detail", fmt.Sprintf("no team named %q", name))
}

// Save validates and normalizes the team, then writes it, replacing a team
// with the same name.
func (s *Store) Save(ctx context.Context, team models.TeamProfile) (models.TeamProfile, error) {
	team, err := Normalize(team)
	if err != nil {
		return models.TeamProfile{}, err
	}

	content, err := yaml.Marshal(team)
	if err != nil {
		return models.TeamProfile{}, apperrors.ErrInternal.WithError(err)
	}
	path := s.path(team.Name)
	if err := storage.WriteFileAtomic(path, content, 0644); err != nil {
		logger.Error(ctx, "failed to write team file", err, "path", path)
		return models.TeamProfile{}, apperrors.ErrStorageWrite.WithError(err)
	}

	logger.Info(ctx, "team saved", "name", team.Name, "project", team.JiraProject)
	return team, nil
}

// Delete removes the team. A missing team is not an error.
func (s *Store) Delete(ctx context.Context, name string) error {
	if strings.TrimSpace(name) == "" {
		return apperrors.ErrInvalidTeam.WithContext("detail", "name is required")
	}
	if err := os.Remove(s.path(name)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return apperrors.ErrStorageWrite.WithError(err)
	}
	logger.Debug(ctx, "team removed", "name", name)
	return nil
}

// Normalize trims the profile, upper-cases the project key and fills the
// default issue type.
func Normalize(team models.TeamProfile) (models.TeamProfile, error) {
	team.Name = strings.TrimSpace(team.Name)
	team.JiraProject = strings.ToUpper(strings.TrimSpace(team.JiraProject))
	team.DefaultIssueType = strings.TrimSpace(team.DefaultIssueType)
	team.TeamLead = strings.TrimSpace(team.TeamLead)
	team.Rules = strings.TrimSpace(team.Rules)

	if team.Name == "" || fileName(team.Name) == "" {
		return team, apperrors.ErrInvalidTeam.WithContext("detail", "name must contain letters or digits")
	}
	if !projectKeyPattern.MatchString(team.JiraProject) {
		return team, apperrors.ErrInvalidTeam.WithContext("detail",
			fmt.Sprintf("jira project key %q must start with a letter and contain only letters, digits or _", team.JiraProject))
	}
	if team.DefaultIssueType == "" {
		team.DefaultIssueType = DefaultIssueType
	}
	return team, nil
}

func (s *Store) load(ctx context.Context, path string) (models.TeamProfile, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return models.TeamProfile{}, err
	}
	var team models.TeamProfile
	if err := yaml.Unmarshal(content, &team); err != nil {
		return models.TeamProfile{}, fmt.Errorf("failed to parse YAML team: %w", err)
	}
	team, err = Normalize(team)
	if err != nil {
		return models.TeamProfile{}, err
	}
	logger.Debug(ctx, "loaded team", "name", team.Name, "path", path)
	return team, nil
}

func (s *Store) path(name string) string {
	return filepath.Join(s.dir, fileName(name)+".yaml")
}

func fileName(name string) string {
	return strings.Trim(unsafeChars.ReplaceAllString(strings.ToLower(strings.TrimSpace(name)), "-"), "-")
}
