// Package orchestration brings together the other components into a single interface
// for rendering task definitions and registering them with ECS
package orchestration

import (
	"context"

	"github.com/YaleSpinup/ecs-taskdef-render/ecs"
	"github.com/YaleSpinup/ecs-taskdef-render/registry"
	"github.com/YaleSpinup/ecs-taskdef-render/taskdef"
	"github.com/spf13/afero"
)

// DefaultTempFilePattern is the name pattern of rendered task definition files
const DefaultTempFilePattern = "task-definition-*.json"

// Renderer holds the filesystem, directories and clients used to render task definitions
type Renderer struct {
	Fs afero.Fs
	// Workspace is the root that relative task definition paths are resolved against
	Workspace string
	// TempDir is where rendered task definitions are written
	TempDir string
	// ECS is used to register rendered task definitions, it's only set in service mode
	// https://docs.aws.amazon.com/sdk-for-go/api/service/ecs/#ECS
	ECS *ecs.ECS
	// VerifyImage checks that an image exists in its registry
	VerifyImage func(ctx context.Context, image string) (bool, error)
}

// RenderInput is a single request to render a task definition
type RenderInput struct {
	// Path is the task definition file, absolute or relative to the workspace
	Path      string
	Overrides taskdef.Overrides
	// Validate checks the rendered task definition against the ECS API parameter validation
	Validate bool
	// VerifyImage checks that the image exists in its registry before rendering
	VerifyImage bool
}

// NewRenderer creates a renderer on the given filesystem
func NewRenderer(fs afero.Fs, workspace, tempDir string) *Renderer {
	return &Renderer{
		Fs:          fs,
		Workspace:   workspace,
		TempDir:     tempDir,
		VerifyImage: verifyImage,
	}
}

func verifyImage(ctx context.Context, image string) (bool, error) {
	verifier, err := registry.NewVerifier(image, false)
	if err != nil {
		return false, err
	}
	return verifier.Verify(ctx)
}
