// Package installed lists the plugins the server and tools run with.
package installed

import (
	"github.com/ahmetcoskunkizilkaya/speakup-backend/internal/apps"
	"github.com/ahmetcoskunkizilkaya/speakup-backend/internal/apps/adults"
	"github.com/ahmetcoskunkizilkaya/speakup-backend/internal/apps/dictionary"
	"github.com/ahmetcoskunkizilkaya/speakup-backend/internal/apps/kids"
	"github.com/ahmetcoskunkizilkaya/speakup-backend/internal/apps/teens"
)

// Plugins returns every plugin in mount order. Practice sources are backfilled in this
// order too.
func Plugins() []apps.Plugin {
	return []apps.Plugin{
		kids.New(),
		teens.New(),
		adults.New(),
		dictionary.New(),
	}
}
