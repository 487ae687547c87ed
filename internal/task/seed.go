package task

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"sync"

	"github.com/phrazzld/profile-api/internal/domain"
	"github.com/phrazzld/profile-api/internal/events"
	"github.com/phrazzld/profile-api/internal/service"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"
)

// BootstrapSource marks events caused by startup seeding.
const BootstrapSource = "bootstrap"

// ProfileCreator is the part of service.ProfileService the seeder uses.
type ProfileCreator interface {
	CreateProfile(ctx context.Context, profile domain.Profile) (domain.Profile, error)
}

// profilesFile is the on-disk shape of the bootstrap file.
type profilesFile struct {
	Profiles map[string]map[string]string `yaml:"profiles"`
}

// LoadProfilesFile reads bootstrap profiles from a YAML file, sorted by name.
// An empty path yields no profiles.
func LoadProfilesFile(path string) ([]domain.Profile, error) {
	if path == "" {
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read profiles file: %w", err)
	}
	return ParseProfiles(data)
}

// ParseProfiles decodes the bootstrap YAML document, sorted by name.
func ParseProfiles(data []byte) ([]domain.Profile, error) {
	var file profilesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse profiles file: %w", err)
	}

	profiles := make([]domain.Profile, 0, len(file.Profiles))
	for name, params := range file.Profiles {
		if params == nil {
			params = map[string]string{}
		}
		profiles = append(profiles, domain.NewProfile(name, params))
	}
	sort.Slice(profiles, func(i, j int) bool {
		return profiles[i].Name < profiles[j].Name
	})
	return profiles, nil
}

// MaxSeedConcurrency bounds how many profiles SeedProfiles creates at once.
const MaxSeedConcurrency = 8

// SeedProfiles creates every profile concurrently, at most
// MaxSeedConcurrency at a time. A failing profile is logged and does not
// stop the others; all failures are joined in the returned error. It
// returns the number of profiles created.
func SeedProfiles(
	ctx context.Context,
	creator ProfileCreator,
	profiles []domain.Profile,
	logger *slog.Logger,
) (int, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "bootstrap")
	ctx = events.WithSource(ctx, BootstrapSource)

	var (
		g        errgroup.Group
		mu       sync.Mutex
		created  int
		failures []error
	)

	g.SetLimit(MaxSeedConcurrency)
	for _, profile := range profiles {
		g.Go(func() error {
			_, err := creator.CreateProfile(ctx, profile)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				logger.Error("failed to seed profile",
					slog.String("profile_name", profile.Name),
					slog.String("kind", string(service.KindOf(err))),
					slog.String("error", err.Error()))
				err = fmt.Errorf("seeding profile '%s': %w", profile.Name, err)
				failures = append(failures, err)
				return err
			}
			created++
			return nil
		})
	}

	// A plain errgroup.Group does not cancel siblings, so every profile is
	// attempted; Wait only reports the first failure.
	if err := g.Wait(); err != nil {
		logger.Warn("bootstrap seeding finished with failures",
			slog.Int("requested", len(profiles)),
			slog.Int("created", created),
			slog.Int("failed", len(failures)),
			slog.String("first_error", err.Error()))
		return created, errors.Join(failures...)
	}

	logger.Info("bootstrap seeding finished",
		slog.Int("requested", len(profiles)),
		slog.Int("created", created))
	return created, nil
}
