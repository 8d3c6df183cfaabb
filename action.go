package main

import (
	"context"

	"github.com/YaleSpinup/ecs-taskdef-render/actions"
	"github.com/YaleSpinup/ecs-taskdef-render/orchestration"

	log "github.com/sirupsen/logrus"
)

// runAction renders the task definition named by the step inputs and sets the path of
// the rendered file as the task-definition output
func runAction(ctx context.Context, runner *actions.Runner) error {
	input, err := actionInput(runner)
	if err != nil {
		return err
	}

	renderer := orchestration.NewRenderer(runner.Fs, runner.Workspace(), runner.TempDir())
	path, err := renderer.RenderFile(ctx, input)
	if err != nil {
		return err
	}

	log.Debugf("rendered task definition for container %s", input.Overrides.ContainerName)

	return runner.SetOutput("task-definition", path)
}

func actionInput(runner *actions.Runner) (*orchestration.RenderInput, error) {
	input := orchestration.RenderInput{}

	required := []struct {
		name  string
		value *string
	}{
		{"task-definition", &input.Path},
		{"container-name", &input.Overrides.ContainerName},
		{"image", &input.Overrides.Image},
	}

	for _, r := range required {
		v, err := runner.Input(r.name, true)
		if err != nil {
			return nil, err
		}
		*r.value = v
	}

	optional := map[string]*string{
		"task-role-arn":         &input.Overrides.TaskRoleArn,
		"execution-role-arn":    &input.Overrides.ExecutionRoleArn,
		"volume-name":           &input.Overrides.VolumeName,
		"file-system-id":        &input.Overrides.FileSystemID,
		"access-point-id":       &input.Overrides.AccessPointID,
		"environment-variables": &input.Overrides.Environment,
	}

	for name, value := range optional {
		v, err := runner.Input(name, false)
		if err != nil {
			return nil, err
		}
		*value = v
	}

	var err error
	if input.Validate, err = runner.BoolInput("validate"); err != nil {
		return nil, err
	}

	if input.VerifyImage, err = runner.BoolInput("verify-image"); err != nil {
		return nil, err
	}

	return &input, nil
}
