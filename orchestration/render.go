package orchestration

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/YaleSpinup/ecs-taskdef-render/ecs"
	"github.com/YaleSpinup/ecs-taskdef-render/registry"
	"github.com/YaleSpinup/ecs-taskdef-render/taskdef"
	"github.com/aws/aws-sdk-go/aws"
	awsecs "github.com/aws/aws-sdk-go/service/ecs"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
	log "github.com/sirupsen/logrus"
)

// RenderFile renders the task definition file and writes the result to a new file in the
// temp directory.  The path of the new file is returned.
func (r *Renderer) RenderFile(ctx context.Context, input *RenderInput) (string, error) {
	if input == nil || input.Path == "" {
		return "", errors.New("task definition path is required")
	}

	path := input.Path
	if !filepath.IsAbs(path) {
		path = filepath.Join(r.Workspace, path)
	}

	log.Debugf("rendering task definition file %s", path)

	exists, err := afero.Exists(r.Fs, path)
	if err != nil {
		return "", errors.Wrap(err, "unable to check task definition file "+path)
	}

	if !exists {
		return "", taskdef.FileNotFound(input.Path)
	}

	data, err := afero.ReadFile(r.Fs, path)
	if err != nil {
		return "", errors.Wrap(err, "unable to read task definition file "+path)
	}

	doc, err := taskdef.Parse(data)
	if err != nil {
		return "", err
	}

	if _, err := r.Render(ctx, doc, input); err != nil {
		return "", err
	}

	out, err := doc.MarshalIndent()
	if err != nil {
		return "", errors.Wrap(err, "unable to encode rendered task definition")
	}

	f, err := afero.TempFile(r.Fs, r.TempDir, DefaultTempFilePattern)
	if err != nil {
		return "", errors.Wrap(err, "unable to create rendered task definition file")
	}
	name := f.Name()

	_, werr := f.Write(out)
	cerr := f.Close()
	if werr != nil || cerr != nil {
		if err := r.Fs.Remove(name); err != nil {
			log.Warnf("unable to remove incomplete task definition file %s: %s", name, err)
		}

		if werr != nil {
			return "", errors.Wrap(werr, "unable to write rendered task definition file "+name)
		}
		return "", errors.Wrap(cerr, "unable to close rendered task definition file "+name)
	}

	log.Infof("wrote rendered task definition to %s", name)

	return name, nil
}

// Render applies the overrides to the task definition in memory.  The image is checked
// and verified first when requested and the result is validated when requested.
func (r *Renderer) Render(ctx context.Context, doc *taskdef.Document, input *RenderInput) (*taskdef.Document, error) {
	if doc == nil || input == nil {
		return nil, taskdef.InvalidFormat("task definition is required")
	}

	if input.Validate || input.VerifyImage {
		image, err := registry.ParseImage(input.Overrides.Image)
		if err != nil {
			return nil, taskdef.InvalidFormat(err.Error())
		}
		log.Debugf("image reference %s is valid", image.Reference())
	}

	if input.VerifyImage {
		if err := r.verify(ctx, input.Overrides.Image); err != nil {
			return nil, err
		}
	}

	var before []byte
	if log.IsLevelEnabled(log.DebugLevel) {
		var err error
		if before, err = doc.MarshalIndent(); err != nil {
			return nil, errors.Wrap(err, "unable to encode task definition")
		}
	}

	if _, err := taskdef.Render(doc, &input.Overrides); err != nil {
		return nil, err
	}

	if input.Validate {
		out, err := doc.MarshalJSON()
		if err != nil {
			return nil, errors.Wrap(err, "unable to encode rendered task definition")
		}

		if err := ecs.ValidateTaskDefinition(out); err != nil {
			return nil, taskdef.InvalidFormat(err.Error())
		}
	}

	if before != nil {
		after, err := doc.MarshalIndent()
		if err != nil {
			return nil, errors.Wrap(err, "unable to encode rendered task definition")
		}
		log.Debugf("rendered task definition changes:\n%s", taskdef.Diff(before, after))
	}

	return doc, nil
}

// Register registers the rendered task definition with ECS and returns the new revision
func (r *Renderer) Register(ctx context.Context, doc *taskdef.Document) (*awsecs.TaskDefinition, error) {
	if r.ECS == nil {
		return nil, errors.New("no ECS client configured for registration")
	}

	out, err := doc.MarshalJSON()
	if err != nil {
		return nil, errors.Wrap(err, "unable to encode rendered task definition")
	}

	input, err := ecs.DecodeTaskDefinition(out)
	if err != nil {
		return nil, taskdef.InvalidFormat(err.Error())
	}

	td, err := r.ECS.RegisterTaskDefinition(ctx, input)
	if err != nil {
		return nil, err
	}

	log.Infof("registered task definition %s:%d", aws.StringValue(td.Family), aws.Int64Value(td.Revision))

	return td, nil
}

func (r *Renderer) verify(ctx context.Context, image string) error {
	if r.VerifyImage == nil {
		return errors.New("no image verifier configured")
	}

	exists, err := r.VerifyImage(ctx, image)
	if err != nil {
		return errors.Wrap(err, "unable to verify image "+image)
	}

	if !exists {
		return taskdef.NotFound(fmt.Sprintf("Could not find image %s in its registry", image))
	}

	log.Debugf("verified image %s exists", image)

	return nil
}
