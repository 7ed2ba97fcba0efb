// Package directory generates the URL-safe Artist.Slug identity used by
// GET /api/artist/by-slug/:slug. It never writes to the library filesystem —
// the slug is a database identity, not a directory name.
package directory

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"gorm.io/gorm"

	"crate/internal/models"
)

// SlugConfig controls slug shape.
type SlugConfig struct {
	MaxLength     int
	MinLength     int
	SuffixPattern string // e.g. "-%d" for collision suffixes
}

// DefaultSlugConfig mirrors the defaults used across the catalog for
// artist-directory-derived codes.
func DefaultSlugConfig() *SlugConfig {
	return &SlugConfig{
		MaxLength:     8,
		MinLength:     2,
		SuffixPattern: "-%d",
	}
}

// SlugGenerator produces a unique Artist.Slug for an artist name, derived
// from a word-initial scheme over the artist's on-disk directory
// name.
type SlugGenerator struct {
	config *SlugConfig
	db     *gorm.DB
}

func NewSlugGenerator(config *SlugConfig, db *gorm.DB) *SlugGenerator {
	if config == nil {
		config = DefaultSlugConfig()
	}
	return &SlugGenerator{config: config, db: db}
}

var spaceRegex = regexp.MustCompile(`\s+`)

var articles = map[string]bool{
	"the": true, "a": true, "an": true,
	"le": true, "la": true, "les": true,
	"el": true, "los": true, "las": true,
}

// Generate derives a collision-free slug for artistName.
func (g *SlugGenerator) Generate(artistName string) (string, error) {
	normalized := g.normalizeName(artistName)
	primary := g.primaryCode(normalized)

	if len(primary) < g.config.MinLength {
		for len(primary) < g.config.MinLength && len(artistName) > len(primary) {
			primary += strings.ToLower(string(rune(artistName[len(primary)])))
		}
	}
	if len(primary) > g.config.MaxLength {
		primary = primary[:g.config.MaxLength]
	}

	return g.uniqueSlug(artistName, primary)
}

func (g *SlugGenerator) primaryCode(normalizedName string) string {
	words := strings.Fields(normalizedName)
	var code strings.Builder

	for _, word := range words {
		if len(words) > 1 && articles[word] {
			continue
		}
		for _, r := range word {
			if unicode.IsLetter(r) {
				code.WriteRune(unicode.ToLower(r))
				break
			}
		}
		if code.Len() >= g.config.MaxLength {
			break
		}
	}
	return code.String()
}

func (g *SlugGenerator) normalizeName(artistName string) string {
	name := strings.ReplaceAll(artistName, "&", " and ")
	name = strings.ReplaceAll(name, "/", " ")
	name = strings.ReplaceAll(name, ".", " ")
	name = spaceRegex.ReplaceAllString(name, " ")
	name = strings.ToLower(name)

	words := strings.Fields(name)
	if len(words) > 0 && articles[words[0]] {
		name = strings.Join(words[1:], " ")
	}
	return strings.TrimSpace(name)
}

func (g *SlugGenerator) uniqueSlug(artistName, candidate string) (string, error) {
	var collisionCount int64
	if err := g.db.Model(&models.Artist{}).
		Where("slug = ? AND name != ?", candidate, artistName).
		Count(&collisionCount).Error; err != nil {
		return "", fmt.Errorf("check existing slugs: %w", err)
	}
	if collisionCount == 0 {
		return candidate, nil
	}

	for suffix := 2; suffix <= 10000; suffix++ {
		suffixStr := fmt.Sprintf(g.config.SuffixPattern, suffix)
		next := candidate
		if len(next)+len(suffixStr) > g.config.MaxLength {
			trim := g.config.MaxLength - len(suffixStr)
			if trim <= 0 {
				return "", fmt.Errorf("cannot fit unique slug within max length for artist: %s", artistName)
			}
			next = next[:trim]
		}
		next += suffixStr

		var count int64
		if err := g.db.Model(&models.Artist{}).Where("slug = ?", next).Count(&count).Error; err != nil {
			return "", fmt.Errorf("check slug collision: %w", err)
		}
		if count == 0 {
			return next, nil
		}
	}
	return "", fmt.Errorf("too many slug collisions for artist: %s", artistName)
}

// SlugForArtist returns the existing artist's slug if one is already
// persisted, generating a fresh one otherwise.
func (g *SlugGenerator) SlugForArtist(artistName string) (string, error) {
	var existing models.Artist
	err := g.db.Where("name = ?", artistName).First(&existing).Error
	if err == nil {
		return existing.Slug, nil
	}
	if err != gorm.ErrRecordNotFound {
		return "", fmt.Errorf("look up existing artist: %w", err)
	}
	return g.Generate(artistName)
}
