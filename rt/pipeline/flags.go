package pipeline

import (
	"github.com/gekko3d/shadows"
	"github.com/gekko3d/shadows/rt/core"
)

// applyFlags leaves exactly the configured technique keyword set. Every other
// technique keyword is cleared first so no two are ever set together.
func (p *Pipeline) applyFlags(cfg shadows.Config) {
	want := cfg.Technique.Keyword()
	for _, k := range core.TechniqueKeywords {
		if k != want {
			p.flags.Clear(k)
		}
	}
	if want != "" {
		p.setFlag(want)
	}

	if cfg.DrawTransparent {
		p.setFlag(core.KeywordDrawTransparent)
	} else {
		p.flags.Clear(core.KeywordDrawTransparent)
	}
}

func (p *Pipeline) clearTechniqueFlags() {
	for _, k := range core.TechniqueKeywords {
		p.flags.Clear(k)
	}
}

func (p *Pipeline) setFlag(name string) {
	p.flags.Set(name)
	p.touched[name] = true
}
