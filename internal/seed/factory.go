// Package seed creates development data. It is intended for local
// environments and tests only.
package seed

import (
	"fmt"
	"strings"

	"sonance/internal/models"
	"sonance/internal/service"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DefaultPassword is the password every seeded account receives.
const DefaultPassword = "password123"

var artists = []string{
	"The Midnight", "Khruangbin", "Phoebe Bridgers", "Tame Impala", "Little Simz",
	"Bon Iver", "Japanese Breakfast", "Men I Trust", "Kaytranada", "Alvvays",
	"Mitski", "Parcels", "Fontaines D.C.", "Arlo Parks", "Floating Points",
}

// Options controls the size and shape of a seed run.
type Options struct {
	NumUsers int
	NumPosts int
	// SkipBcrypt stores the plain password, which keeps large local seeds fast.
	SkipBcrypt bool
	// Seed makes a run reproducible. Zero picks a random seed.
	Seed int64
}

// Factory builds domain entities with fake data.
type Factory struct {
	db    *gorm.DB
	opts  Options
	faker *gofakeit.Faker
	next  int
}

// NewFactory creates a Factory bound to db.
func NewFactory(db *gorm.DB, opts Options) *Factory {
	return &Factory{db: db, opts: opts, faker: gofakeit.New(opts.Seed)}
}

// CreateUser persists a fake account. Overrides run before the insert.
func (f *Factory) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	f.next++
	username := strings.ToLower(fmt.Sprintf("%s%d", f.faker.Username(), f.next))
	user := &models.User{
		Username:      username,
		Email:         username + "@sonance.test",
		DisplayName:   f.faker.Name(),
		Bio:           f.faker.Sentence(8),
		AvatarURL:     fmt.Sprintf("https://i.pravatar.cc/150?u=%s", f.faker.UUID()),
		ProfilePublic: f.faker.Bool(),
	}

	if f.opts.SkipBcrypt {
		user.Password = DefaultPassword
	} else {
		hashed, err := bcrypt.GenerateFromPassword([]byte(DefaultPassword), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		user.Password = string(hashed)
	}

	for _, override := range overrides {
		override(user)
	}
	if err := f.db.Create(user).Error; err != nil {
		return nil, fmt.Errorf("create user %s: %w", user.Username, err)
	}
	return user, nil
}

// PostInput returns a fake post about a track.
func (f *Factory) PostInput() service.PostInput {
	in := service.PostInput{
		Caption:     f.faker.Sentence(f.faker.Number(4, 12)),
		SongTitle:   f.songTitle(),
		SongArtist:  f.Artist(),
		AlbumArtURL: fmt.Sprintf("https://picsum.photos/seed/%s/600/600", f.faker.UUID()),
	}
	if f.faker.Number(0, 4) == 0 {
		in.CustomImageURL = fmt.Sprintf("https://picsum.photos/seed/custom-%s/800/800", f.faker.UUID())
	}
	return in
}

// BranchInput returns a fake track for a trunk.
func (f *Factory) BranchInput() service.BranchInput {
	return service.BranchInput{
		SongTitle:   f.songTitle(),
		SongArtist:  f.Artist(),
		AlbumArtURL: fmt.Sprintf("https://picsum.photos/seed/%s/300/300", f.faker.UUID()),
	}
}

// Artist picks an artist name.
func (f *Factory) Artist() string {
	return artists[f.faker.Number(0, len(artists)-1)]
}

// Comment returns a short fake comment.
func (f *Factory) Comment() string {
	return f.faker.Sentence(f.faker.Number(3, 10))
}

// Pick returns n distinct indexes in [0, size), excluding skip.
func (f *Factory) Pick(size, n, skip int) []int {
	candidates := make([]int, 0, size)
	for i := 0; i < size; i++ {
		if i != skip {
			candidates = append(candidates, i)
		}
	}
	f.faker.ShuffleInts(candidates)
	if n > len(candidates) {
		n = len(candidates)
	}
	return candidates[:n]
}

func (f *Factory) songTitle() string {
	return strings.TrimSuffix(f.faker.Sentence(f.faker.Number(1, 4)), ".")
}
