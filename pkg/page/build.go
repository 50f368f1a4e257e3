package page

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/decker502/scrollscene/pkg/components"
	"github.com/decker502/scrollscene/pkg/config"
	"github.com/decker502/scrollscene/pkg/ecs"
)

// Build creates the document described by cfg. Element rows get seeded
// jitter; without a seed the layout differs on every build.
func Build(cfg *config.PageConfig, em *ecs.EntityManager) (*Document, error) {
	seed := time.Now().UnixNano()
	if cfg.Seed != nil {
		seed = *cfg.Seed
	}
	rng := rand.New(rand.NewSource(seed))

	doc := NewDocument(em, cfg.Viewport.Width, cfg.Viewport.Height)
	for _, sc := range cfg.Sections {
		height := sc.Height
		if _, err := doc.AddSection(sc.Name, height.Resolve(cfg.Viewport.Height)); err != nil {
			return nil, fmt.Errorf("section %q: %w", sc.Name, err)
		}
		doc.SetSectionHeightFunc(sc.Name, height.Resolve)

		if sc.Background != "" {
			bg, err := config.ParseColor(sc.Background)
			if err != nil {
				return nil, fmt.Errorf("section %q background: %w", sc.Name, err)
			}
			id, _ := doc.Lookup(sc.Name)
			if vis, ok := ecs.GetComponent[*components.VisualComponent](em, id); ok {
				vis.SetColor(components.ColorFill, bg)
			}
		}

		for _, ec := range sc.Elements {
			if err := addElementRow(doc, sc.Name, ec, rng); err != nil {
				return nil, err
			}
		}
	}

	log.Printf("[Page] built %s: %d sections, height %.0fpx (seed %d)", cfg.Name, len(cfg.Sections), doc.Height(), seed)
	return doc, nil
}

func addElementRow(doc *Document, section string, ec config.ElementConfig, rng *rand.Rand) error {
	names := ec.ElementNames()
	classes := append([]string(nil), ec.Classes...)
	if ec.Count > 1 && ec.Name != "" {
		classes = append(classes, ec.Name)
	}

	for i := 0; i < ec.Count; i++ {
		name := ""
		if len(names) > 0 {
			name = names[i]
		}
		jx := jitter(rng, ec.Jitter.X)
		jy := jitter(rng, ec.Jitter.Y)

		initial := components.PropertySet{}
		for k, v := range ec.Props {
			initial[k] = v
		}
		id, err := doc.AddElement(section, name, classes, ec.Kind, components.Rect{}, initial)
		if err != nil {
			return fmt.Errorf("section %q: %w", section, err)
		}
		doc.SetLabel(id, ec.Label)

		idx := float64(i)
		e := ec
		doc.SetSizer(id, func(vw, sh float64) components.Rect {
			return components.Rect{
				X:      e.X.Resolve(vw) + idx*e.StepX.Resolve(vw) + jx,
				Y:      e.Y.Resolve(sh) + idx*e.StepY.Resolve(sh) + jy,
				Width:  e.Width.Resolve(vw),
				Height: e.Height.Resolve(sh),
			}
		})

		if ec.Fill != "" {
			c, err := config.ParseColor(ec.Fill)
			if err != nil {
				return fmt.Errorf("element %q fill: %w", name, err)
			}
			if vis, ok := ecs.GetComponent[*components.VisualComponent](doc.Entities(), id); ok {
				vis.SetColor(components.ColorFill, c)
			}
		}
	}
	return nil
}

func jitter(rng *rand.Rand, amount float64) float64 {
	if amount == 0 {
		return 0
	}
	return (rng.Float64()*2 - 1) * amount
}
