package pipeline

// PipelineBuilderOption is a functional option for configuring a Pipeline via NewPipeline.
type PipelineBuilderOption func(*pipelineImpl)

// WithStage is an option builder that appends a named stage.
//
// Parameters:
//   - name: the stage name
//   - pipe: the stage function
//
// Returns:
//   - PipelineBuilderOption: a function that appends the stage to a pipeline
func WithStage(name string, pipe Pipe) PipelineBuilderOption {
	return func(p *pipelineImpl) {
		p.stages = append(p.stages, stage{name: name, pipe: pipe})
	}
}
