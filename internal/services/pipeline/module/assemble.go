package module

import (
	"reviewpipe/internal/modkit"
	"reviewpipe/internal/services/pipeline/domain"

	analyzemod "reviewpipe/internal/services/analyze/module"
	cleanmod "reviewpipe/internal/services/clean/module"
	extractmod "reviewpipe/internal/services/extract/module"
	trainmod "reviewpipe/internal/services/train/module"

	analyzesvc "reviewpipe/internal/services/analyze/service"
)

// Stack is every stage module plus the pipeline built on top of them
type Stack struct {
	Extract  *extractmod.Module
	Clean    *cleanmod.Module
	Analyze  *analyzemod.Module
	Train    *trainmod.Module
	Pipeline *Module
}

// Modules lists the stack in stage order
func (s Stack) Modules() []modkit.Module {
	return []modkit.Module{s.Extract, s.Clean, s.Analyze, s.Train, s.Pipeline}
}

// Assemble builds the stage modules from deps and wires them into a pipeline module
func Assemble(deps modkit.Deps) Stack {
	ex := extractmod.New(deps, extractmod.Options{})
	cl := cleanmod.New(deps)
	an := analyzemod.New(deps, analyzesvc.Config{})
	tr := trainmod.New(deps)

	p := New(deps, modkit.WithPorts(domain.Ports{
		Extractor:          modkit.MustPortsOf[extractmod.Ports](ex).Extractor,
		Preprocessor:       modkit.MustPortsOf[cleanmod.Ports](cl).Preprocessor,
		Analyzer:           modkit.MustPortsOf[analyzemod.Ports](an).Analyzer,
		Trainer:            modkit.MustPortsOf[trainmod.Ports](tr).Trainer,
		TransformerEnabled: tr.TransformerConfigured(),
	}))
	return Stack{Extract: ex, Clean: cl, Analyze: an, Train: tr, Pipeline: p}
}
