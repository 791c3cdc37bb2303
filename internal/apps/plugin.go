package apps

import (
	"github.com/ahmetcoskunkizilkaya/speakup-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/speakup-backend/internal/curriculum"
	"github.com/ahmetcoskunkizilkaya/speakup-backend/internal/practicesync"
	"github.com/ahmetcoskunkizilkaya/speakup-backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// Deps are the shared services a plugin may use when mounting routes.
type Deps struct {
	DB            *gorm.DB
	Config        *config.Config
	Registry      *curriculum.Registry
	Notifications *services.NotificationService
	Progress      *services.ProgressService
	Syncer        *practicesync.Syncer
}

// Plugin defines the interface every learning surface must implement.
type Plugin interface {
	// ID returns the unique plugin identifier, which is also its route prefix.
	ID() string

	// Models returns the list of GORM model pointers for AutoMigrate.
	Models() []interface{}

	// RegisterRoutes mounts plugin routes on the given Fiber group.
	// The group is already prefixed with /api/<id> and has JWT middleware applied.
	RegisterRoutes(router fiber.Router, deps *Deps)
}

// AdminPlugin extends Plugin with admin-only routes, mounted under /api/admin/<id>.
type AdminPlugin interface {
	Plugin
	RegisterAdminRoutes(router fiber.Router, deps *Deps)
}

// ProgressPlugin is a tier whose tables feed category progress.
type ProgressPlugin interface {
	Plugin
	ProgressSource() services.ProgressSource
}

// PracticePlugin is a tier whose activity tables are mirrored into practice_sessions.
type PracticePlugin interface {
	Plugin
	PracticeSources() []practicesync.Source
}

// ProgressSources collects the progress sources of every plugin that has one.
func ProgressSources(plugins []Plugin) []services.ProgressSource {
	var out []services.ProgressSource
	for _, p := range plugins {
		if pp, ok := p.(ProgressPlugin); ok {
			out = append(out, pp.ProgressSource())
		}
	}
	return out
}

// PracticeSources collects the mirrored practice tables of every plugin, in plugin order.
func PracticeSources(plugins []Plugin) []practicesync.Source {
	var out []practicesync.Source
	for _, p := range plugins {
		if pp, ok := p.(PracticePlugin); ok {
			out = append(out, pp.PracticeSources()...)
		}
	}
	return out
}

// AllModels lists every plugin table for migration.
func AllModels(plugins []Plugin) []interface{} {
	var out []interface{}
	for _, p := range plugins {
		out = append(out, p.Models()...)
	}
	return out
}
