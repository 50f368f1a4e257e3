//go:build mobile

// Package mobile is the ebitenmobile binding entry point.
//
// It is only compiled with -tags mobile:
//
//	cp -r data mobile/ && ebitenmobile bind -target android -tags mobile -javapkg com.decker.scrollscene -o build/android/scrollscene.aar ./mobile
//	cp -r data mobile/ && ebitenmobile bind -target ios -tags mobile -o build/ios/Scrollscene.xcframework ./mobile
package mobile

import (
	"log"

	"github.com/hajimehoshi/ebiten/v2/mobile"

	"github.com/decker502/scrollscene/pkg/app"
	"github.com/decker502/scrollscene/pkg/embedded"
)

// DefaultPage is the bundled page shown on start.
const DefaultPage = "semiconductor"

func init() {
	embedded.Init(dataFS)

	page, err := embedded.LoadPage(DefaultPage)
	if err != nil {
		log.Fatalf("failed to load page: %v", err)
	}
	a, err := app.NewApp(app.Config{Verbose: true, Page: page})
	if err != nil {
		log.Fatalf("failed to start: %v", err)
	}
	mobile.SetGame(a)
}

// Dummy is exported so that ebitenmobile recognizes the package.
func Dummy() {}
