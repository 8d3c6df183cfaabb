package ecs

import (
	"context"
	"encoding/json"

	"github.com/YaleSpinup/apierror"
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/ecs"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// DecodeTaskDefinition decodes a rendered task definition into the input for registering
// it with ECS.  Fields which are only part of a described task definition (revision, status,
// taskDefinitionArn, etc) are dropped.
func DecodeTaskDefinition(data []byte) (*ecs.RegisterTaskDefinitionInput, error) {
	input := ecs.RegisterTaskDefinitionInput{}
	if err := json.Unmarshal(data, &input); err != nil {
		return nil, errors.Wrap(err, "unable to decode task definition")
	}
	return &input, nil
}

// ValidateTaskDefinition checks that a rendered task definition can be decoded and passes
// the SDK parameter validation for registering a task definition
func ValidateTaskDefinition(data []byte) error {
	input, err := DecodeTaskDefinition(data)
	if err != nil {
		return err
	}

	if err := input.Validate(); err != nil {
		return errors.Wrap(err, "task definition is not valid")
	}

	log.Debugf("task definition for family '%s' with %d containers is valid", aws.StringValue(input.Family), len(input.ContainerDefinitions))

	return nil
}

// RegisterTaskDefinition registers a new task definition revision.  If the task definition doesn't
// have an execution role, the account default is used.
func (e *ECS) RegisterTaskDefinition(ctx context.Context, input *ecs.RegisterTaskDefinitionInput) (*ecs.TaskDefinition, error) {
	if input == nil {
		return nil, apierror.New(apierror.ErrBadRequest, "invalid input", nil)
	}

	if input.ExecutionRoleArn == nil && e.DefaultExecutionRoleArn != "" {
		log.Debugf("using default execution role %s", e.DefaultExecutionRoleArn)
		input.ExecutionRoleArn = aws.String(e.DefaultExecutionRoleArn)
	}

	log.Infof("registering task definition revision for family %s", aws.StringValue(input.Family))

	output, err := e.Service.RegisterTaskDefinitionWithContext(ctx, input)
	if err != nil {
		return nil, ErrCode("failed to register task definition", err)
	}

	log.Debugf("registered task definition %s", aws.StringValue(output.TaskDefinition.TaskDefinitionArn))

	return output.TaskDefinition, nil
}
