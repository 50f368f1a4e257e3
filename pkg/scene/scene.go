package scene

import (
	"errors"

	"github.com/decker502/scrollscene/pkg/ecs"
	"github.com/decker502/scrollscene/pkg/frame"
	"github.com/decker502/scrollscene/pkg/scroll"
	"github.com/decker502/scrollscene/pkg/trigger"
)

// ErrLifecycleMisuse reports an operation on a disposed handle or a mount
// with missing dependencies. It is never fatal.
var ErrLifecycleMisuse = errors.New("scene lifecycle misuse")

// Policy decides what targets look like after disposal.
type Policy int

const (
	// PolicyRevert restores every target to its state before the scene
	// mounted.
	PolicyRevert Policy = iota
	// PolicyKeep leaves targets as last evaluated.
	PolicyKeep
)

// Collaborator is an external resource owned by a scene, such as a 3D
// renderer. Init runs once at mount; the returned func runs at disposal.
type Collaborator interface {
	Init() (dispose func())
}

// CollaboratorFunc adapts a function to Collaborator.
type CollaboratorFunc func() (dispose func())

// Init implements Collaborator.
func (f CollaboratorFunc) Init() func() {
	return f()
}

// Layout is the page a scene resolves its triggers against.
type Layout interface {
	trigger.Layout
	// SectionOf returns the section entity that carries the pin of the
	// named element.
	SectionOf(name string) (ecs.EntityID, bool)
	// Query selects elements by "#name" or ".class" within a section
	// ("" = whole page).
	Query(section, selector string) []ecs.EntityID
}

// Deps are the shared collaborators threaded into every scene at mount.
type Deps struct {
	Tracker  *scroll.Tracker
	Loop     *frame.Loop
	Smoother *scroll.Smoother // optional
	Entities *ecs.EntityManager
	Layout   Layout
}

func (d Deps) velocitySource() scroll.VelocitySource {
	if d.Smoother == nil {
		return nil
	}
	return d.Smoother
}

func (d Deps) validate() error {
	switch {
	case d.Tracker == nil:
		return errors.New("missing tracker")
	case d.Loop == nil:
		return errors.New("missing frame loop")
	case d.Entities == nil:
		return errors.New("missing entity manager")
	case d.Layout == nil:
		return errors.New("missing layout")
	}
	return nil
}
