package taskdef

import (
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/goccy/go-yaml"
	log "github.com/sirupsen/logrus"
)

// Overrides are the values injected into a task definition by Render
type Overrides struct {
	// ContainerName is the name of the container definition to update
	ContainerName string `json:"containerName"`
	// Image is the image URI written to the container definition
	Image string `json:"image"`
	// TaskRoleArn replaces the task role when set
	TaskRoleArn string `json:"taskRoleArn,omitempty"`
	// ExecutionRoleArn replaces the execution role when set
	ExecutionRoleArn string `json:"executionRoleArn,omitempty"`
	// VolumeName selects an EFS volume to update with FileSystemID and AccessPointID
	VolumeName    string `json:"volumeName,omitempty"`
	FileSystemID  string `json:"fileSystemId,omitempty"`
	AccessPointID string `json:"accessPointId,omitempty"`
	// Environment is a block of newline separated NAME=value pairs merged into the
	// container's environment
	Environment string `json:"environment,omitempty"`
}

// Render applies the overrides to the task definition.  The document is modified in
// place and returned.  On error the document may be partially updated and should be
// discarded; nothing rendered from it may be written out.
func Render(doc *Document, o *Overrides) (*Document, error) {
	root, ok := doc.Object()
	if !ok {
		return nil, InvalidFormat("containerDefinitions section is not present or is not an array")
	}

	v, _ := field(root, "containerDefinitions")
	containers, ok := v.([]interface{})
	if !ok {
		return nil, InvalidFormat("containerDefinitions section is not present or is not an array")
	}

	ci, container := findByName(containers, o.ContainerName)
	if ci < 0 {
		return nil, NotFound("Could not find container definition with matching name")
	}

	log.Debugf("setting image for container '%s' to '%s'", o.ContainerName, o.Image)
	container = setField(container, "image", o.Image)
	containers[ci] = container

	if o.TaskRoleArn != "" {
		log.Debugf("setting task role arn to '%s'", o.TaskRoleArn)
		root = setField(root, "taskRoleArn", o.TaskRoleArn)
	}

	if o.ExecutionRoleArn != "" {
		log.Debugf("setting execution role arn to '%s'", o.ExecutionRoleArn)
		root = setField(root, "executionRoleArn", o.ExecutionRoleArn)
	}

	if o.VolumeName != "" {
		if err := renderVolume(root, o); err != nil {
			return nil, err
		}
	}

	if strings.TrimSpace(o.Environment) != "" {
		container, err := renderEnvironment(container, o.Environment)
		if err != nil {
			return nil, err
		}
		containers[ci] = container
	}

	doc.root = root
	return doc, nil
}

// renderVolume updates the EFS configuration of the named volume
func renderVolume(root yaml.MapSlice, o *Overrides) error {
	v, _ := field(root, "volumes")
	volumes, ok := v.([]interface{})
	if !ok {
		return InvalidFormat("volumes section is not present or is not an array")
	}

	vi, volume := findByName(volumes, o.VolumeName)
	if vi < 0 {
		return NotFound("Could not find volume definition with matching name")
	}

	e, _ := field(volume, "efsVolumeConfiguration")
	efs, ok := e.(yaml.MapSlice)
	if !ok {
		return NotFound("Could not find efsVolumeConfiguration definition")
	}

	log.Debugf("setting file system id for volume '%s' to '%s'", o.VolumeName, o.FileSystemID)
	efs = setField(efs, "fileSystemId", o.FileSystemID)

	if o.AccessPointID != "" {
		a, _ := field(efs, "authorizationConfig")
		auth, ok := a.(yaml.MapSlice)
		if !ok {
			return NotFound("Could not find authorizationConfig definition")
		}

		log.Debugf("setting access point id for volume '%s' to '%s'", o.VolumeName, o.AccessPointID)
		auth = setField(auth, "accessPointId", o.AccessPointID)
		efs = setField(efs, "authorizationConfig", auth)
	}

	volumes[vi] = setField(volume, "efsVolumeConfiguration", efs)
	return nil
}

// renderEnvironment merges the environment block into the container's environment,
// updating existing variables in place and appending new ones
func renderEnvironment(container yaml.MapSlice, block string) (yaml.MapSlice, error) {
	pairs, err := ParseEnvironment(block)
	if err != nil {
		return nil, err
	}

	if len(pairs) == 0 {
		return container, nil
	}

	v, _ := field(container, "environment")
	env, ok := v.([]interface{})
	if !ok {
		env = []interface{}{}
	}

	for _, p := range pairs {
		name, value := aws.StringValue(p.Name), aws.StringValue(p.Value)
		if i, variable := findByName(env, name); i >= 0 {
			log.Debugf("updating environment variable '%s'", name)
			env[i] = setField(variable, "value", value)
			continue
		}

		log.Debugf("adding environment variable '%s'", name)
		env = append(env, yaml.MapSlice{
			{Key: "name", Value: name},
			{Key: "value", Value: value},
		})
	}

	return setField(container, "environment", env), nil
}
