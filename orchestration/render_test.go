package orchestration

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/YaleSpinup/ecs-taskdef-render/taskdef"
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	awsecs "github.com/aws/aws-sdk-go/service/ecs"
	"github.com/google/go-cmp/cmp"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"
)

var testTaskDefinition = `{
  "family": "task-def-family",
  "containerDefinitions": [
    {
      "name": "web",
      "image": "some-other-image"
    },
    {
      "name": "sidecar",
      "image": "hello"
    }
  ]
}`

func TestRenderFile(t *testing.T) {
	type renderFileTest struct {
		path     string
		file     string
		input    string
		expected string
	}

	expected := `{
  "family": "task-def-family",
  "containerDefinitions": [
    {
      "name": "web",
      "image": "nginx:latest"
    },
    {
      "name": "sidecar",
      "image": "hello"
    }
  ]
}`

	tests := []renderFileTest{
		{
			path:     "task-definition.json",
			file:     "/github/workspace/task-definition.json",
			input:    testTaskDefinition,
			expected: expected,
		},
		{
			path:     "/hello/task-definition.json",
			file:     "/hello/task-definition.json",
			input:    testTaskDefinition,
			expected: expected,
		},
		{
			path:     "deploy/task-definition.yaml",
			file:     "/github/workspace/deploy/task-definition.yaml",
			input:    "family: task-def-family\ncontainerDefinitions:\n  - name: web\n    image: some-other-image\n  - name: sidecar\n    image: hello\n",
			expected: expected,
		},
	}

	for _, test := range tests {
		t.Logf("testing render of file %s", test.path)

		r := newMockRenderer(t, nil, true, nil)
		if err := afero.WriteFile(r.Fs, test.file, []byte(test.input), 0644); err != nil {
			t.Fatalf("unable to write test file: %s", err)
		}

		out, err := r.RenderFile(context.TODO(), &RenderInput{
			Path: test.path,
			Overrides: taskdef.Overrides{
				ContainerName: "web",
				Image:         "nginx:latest",
			},
		})
		if err != nil {
			t.Errorf("expected nil error, got %s", err)
			continue
		}

		if dir := filepath.Dir(out); dir != "/runner/_temp" {
			t.Errorf("expected rendered file in /runner/_temp, got %s", dir)
		}

		if base := filepath.Base(out); !strings.HasPrefix(base, "task-definition-") || !strings.HasSuffix(base, ".json") {
			t.Errorf("unexpected rendered file name %s", base)
		}

		b, err := afero.ReadFile(r.Fs, out)
		if err != nil {
			t.Errorf("expected nil error reading rendered file, got %s", err)
			continue
		}

		if diff := cmp.Diff(test.expected, string(b)); diff != "" {
			t.Errorf("rendered file mismatch (-want +got):\n%s", diff)
		}

		// the input file is never modified
		in, _ := afero.ReadFile(r.Fs, test.file)
		if string(in) != test.input {
			t.Errorf("expected input file to be unchanged, got %s", in)
		}
	}
}

func TestRenderFileErrors(t *testing.T) {
	type renderFileErrorTest struct {
		input *RenderInput
		file  string
		kind  string
		err   string
	}

	tests := []renderFileErrorTest{
		{
			input: &RenderInput{
				Path:      "does-not-exist-task-definition.json",
				Overrides: taskdef.Overrides{ContainerName: "web", Image: "nginx:latest"},
			},
			kind: taskdef.ErrFileNotFound,
			err:  "Task definition file does not exist: does-not-exist-task-definition.json",
		},
		{
			input: &RenderInput{
				Path:      "task-definition.json",
				Overrides: taskdef.Overrides{ContainerName: "web", Image: "nginx:latest"},
			},
			file: `{"family": "task-def-family"}`,
			kind: taskdef.ErrInvalidFormat,
			err:  "Invalid task definition format: containerDefinitions section is not present or is not an array",
		},
		{
			input: &RenderInput{
				Path:      "task-definition.json",
				Overrides: taskdef.Overrides{ContainerName: "api", Image: "nginx:latest"},
			},
			file: testTaskDefinition,
			kind: taskdef.ErrNotFound,
			err:  "Invalid task definition: Could not find container definition with matching name",
		},
		{
			input: &RenderInput{
				Path: "task-definition.json",
				Overrides: taskdef.Overrides{
					ContainerName: "web",
					Image:         "nginx:latest",
					Environment:   "EXAMPLE",
				},
			},
			file: testTaskDefinition,
			kind: taskdef.ErrParse,
			err:  "Cannot parse the environment variable 'EXAMPLE'. Environment variable pairs must be of the form NAME=value.",
		},
		{
			input: &RenderInput{
				Path:      "task-definition.json",
				Overrides: taskdef.Overrides{ContainerName: "web", Image: "nginx:latest"},
			},
			file: `{"containerDefinitions": [`,
			kind: taskdef.ErrInvalidFormat,
		},
	}

	for _, test := range tests {
		t.Logf("testing render file error %s", test.err)

		r := newMockRenderer(t, nil, true, nil)
		if test.file != "" {
			if err := afero.WriteFile(r.Fs, "/github/workspace/task-definition.json", []byte(test.file), 0644); err != nil {
				t.Fatalf("unable to write test file: %s", err)
			}
		}

		out, err := r.RenderFile(context.TODO(), test.input)
		if err == nil {
			t.Errorf("expected error, got nil and output %s", out)
			continue
		}

		if k := taskdef.KindOf(err); k != test.kind {
			t.Errorf("expected error kind %s, got %s (%s)", test.kind, k, err)
		}

		if test.err != "" && err.Error() != test.err {
			t.Errorf("expected error %s, got %s", test.err, err)
		}

		files, _ := afero.ReadDir(r.Fs, "/runner/_temp")
		if len(files) != 0 {
			t.Errorf("expected no rendered files, got %d", len(files))
		}
	}

	r := newMockRenderer(t, nil, true, nil)
	if _, err := r.RenderFile(context.TODO(), &RenderInput{}); err == nil {
		t.Error("expected error for empty path, got nil")
	}
}

func TestRenderValidate(t *testing.T) {
	r := newMockRenderer(t, nil, true, nil)

	doc, err := taskdef.Parse([]byte(testTaskDefinition))
	if err != nil {
		t.Fatalf("expected nil error, got %s", err)
	}

	input := &RenderInput{
		Overrides: taskdef.Overrides{ContainerName: "web", Image: "nginx:latest"},
		Validate:  true,
	}

	if _, err := r.Render(context.TODO(), doc, input); err != nil {
		t.Errorf("expected nil error, got %s", err)
	}

	// exponent numbers are written in a form the ECS types decode
	doc, err = taskdef.Parse([]byte(`{"family":"f","containerDefinitions":[{"name":"web","image":"old","cpu":1e3,"memoryReservation":5.12E2}]}`))
	if err != nil {
		t.Fatalf("expected nil error, got %s", err)
	}

	if _, err := r.Render(context.TODO(), doc, input); err != nil {
		t.Errorf("expected nil error validating exponent numbers, got %s", err)
	}

	// family is required to register a task definition
	doc, err = taskdef.Parse([]byte(`{"containerDefinitions": [{"name": "web", "image": "hello"}]}`))
	if err != nil {
		t.Fatalf("expected nil error, got %s", err)
	}

	_, err = r.Render(context.TODO(), doc, input)
	if err == nil {
		t.Fatal("expected validation error, got nil")
	}

	if k := taskdef.KindOf(err); k != taskdef.ErrInvalidFormat {
		t.Errorf("expected error kind %s, got %s", taskdef.ErrInvalidFormat, k)
	}

	if !strings.Contains(err.Error(), "Family") {
		t.Errorf("expected error to name the missing field, got %s", err)
	}

	// the image reference is checked when validating
	doc, _ = taskdef.Parse([]byte(testTaskDefinition))
	_, err = r.Render(context.TODO(), doc, &RenderInput{
		Overrides: taskdef.Overrides{ContainerName: "web", Image: "Not A Valid Image"},
		Validate:  true,
	})
	if k := taskdef.KindOf(err); k != taskdef.ErrInvalidFormat {
		t.Errorf("expected error kind %s for invalid image, got %s (%v)", taskdef.ErrInvalidFormat, k, err)
	}

	// and not otherwise
	doc, _ = taskdef.Parse([]byte(testTaskDefinition))
	if _, err := r.Render(context.TODO(), doc, &RenderInput{
		Overrides: taskdef.Overrides{ContainerName: "web", Image: "Not A Valid Image"},
	}); err != nil {
		t.Errorf("expected nil error without validation, got %s", err)
	}
}

func TestRenderVerifyImage(t *testing.T) {
	type verifyTest struct {
		exists bool
		verr   error
		kind   string
		err    bool
	}

	tests := []verifyTest{
		{exists: true},
		{exists: false, kind: taskdef.ErrNotFound, err: true},
		{verr: errors.New("boom"), err: true},
	}

	for _, test := range tests {
		r := newMockRenderer(t, nil, test.exists, test.verr)

		doc, err := taskdef.Parse([]byte(testTaskDefinition))
		if err != nil {
			t.Fatalf("expected nil error, got %s", err)
		}

		_, err = r.Render(context.TODO(), doc, &RenderInput{
			Overrides:   taskdef.Overrides{ContainerName: "web", Image: "nginx:latest"},
			VerifyImage: true,
		})

		if test.err {
			if err == nil {
				t.Errorf("expected error, got nil")
				continue
			}

			if k := taskdef.KindOf(err); k != test.kind {
				t.Errorf("expected error kind %q, got %q", test.kind, k)
			}
			continue
		}

		if err != nil {
			t.Errorf("expected nil error, got %s", err)
		}
	}

	r := newMockRenderer(t, nil, true, nil)
	r.VerifyImage = nil

	doc, _ := taskdef.Parse([]byte(testTaskDefinition))
	if _, err := r.Render(context.TODO(), doc, &RenderInput{
		Overrides:   taskdef.Overrides{ContainerName: "web", Image: "nginx:latest"},
		VerifyImage: true,
	}); err == nil {
		t.Error("expected error without a verifier, got nil")
	}
}

func TestRenderDebugDiff(t *testing.T) {
	level := log.GetLevel()
	log.SetLevel(log.DebugLevel)
	defer log.SetLevel(level)

	r := newMockRenderer(t, nil, true, nil)

	doc, err := taskdef.Parse([]byte(testTaskDefinition))
	if err != nil {
		t.Fatalf("expected nil error, got %s", err)
	}

	out, err := r.Render(context.TODO(), doc, &RenderInput{
		Overrides: taskdef.Overrides{ContainerName: "web", Image: "nginx:latest"},
	})
	if err != nil {
		t.Fatalf("expected nil error, got %s", err)
	}

	b, _ := out.MarshalJSON()
	expected := `{"family":"task-def-family","containerDefinitions":[{"name":"web","image":"nginx:latest"},{"name":"sidecar","image":"hello"}]}`
	if string(b) != expected {
		t.Errorf("expected %s, got %s", expected, b)
	}
}

func TestRegister(t *testing.T) {
	r := newMockRenderer(t, nil, true, nil)

	doc, err := taskdef.Parse([]byte(testTaskDefinition))
	if err != nil {
		t.Fatalf("expected nil error, got %s", err)
	}

	td, err := r.Register(context.TODO(), doc)
	if err != nil {
		t.Fatalf("expected nil error, got %s", err)
	}

	if f := aws.StringValue(td.Family); f != "task-def-family" {
		t.Errorf("expected family task-def-family, got %s", f)
	}

	if a := aws.StringValue(td.ExecutionRoleArn); a != "arn:aws:iam::0123456789:role/ecsTaskExecutionRole" {
		t.Errorf("expected default execution role, got %s", a)
	}

	if n := len(td.ContainerDefinitions); n != 2 {
		t.Errorf("expected 2 container definitions, got %d", n)
	}

	r = newMockRenderer(t, awserr.New(awsecs.ErrCodeClientException, "bad request", nil), true, nil)
	if _, err := r.Register(context.TODO(), doc); err == nil {
		t.Error("expected error from ecs, got nil")
	}

	r.ECS = nil
	if _, err := r.Register(context.TODO(), doc); err == nil {
		t.Error("expected error without ecs client, got nil")
	}
}

// failingFs returns files whose Write or Close fail, like a full disk
type failingFs struct {
	afero.Fs
	failWrite bool
}

func (fs failingFs) OpenFile(name string, flag int, perm os.FileMode) (afero.File, error) {
	f, err := fs.Fs.OpenFile(name, flag, perm)
	if err != nil {
		return nil, err
	}
	return failingFile{File: f, failWrite: fs.failWrite}, nil
}

type failingFile struct {
	afero.File
	failWrite bool
}

func (f failingFile) Write(p []byte) (int, error) {
	if f.failWrite {
		return 0, errors.New("no space left on device")
	}
	return f.File.Write(p)
}

func (f failingFile) Close() error {
	if err := f.File.Close(); err != nil {
		return err
	}
	return errors.New("no space left on device")
}

func TestRenderFileWriteFailure(t *testing.T) {
	for _, failWrite := range []bool{true, false} {
		t.Logf("testing failed write (write error: %t)", failWrite)

		r := newMockRenderer(t, nil, true, nil)
		if err := afero.WriteFile(r.Fs, "/github/workspace/task-definition.json", []byte(testTaskDefinition), 0644); err != nil {
			t.Fatalf("unable to write test file: %s", err)
		}
		r.Fs = failingFs{Fs: r.Fs, failWrite: failWrite}

		out, err := r.RenderFile(context.TODO(), &RenderInput{
			Path:      "task-definition.json",
			Overrides: taskdef.Overrides{ContainerName: "web", Image: "nginx:latest"},
		})
		if err == nil {
			t.Errorf("expected error, got nil and output %s", out)
			continue
		}

		if !strings.Contains(err.Error(), "no space left on device") {
			t.Errorf("expected underlying write error, got %s", err)
		}

		files, _ := afero.ReadDir(r.Fs, "/runner/_temp")
		if len(files) != 0 {
			t.Errorf("expected incomplete file to be removed, got %d files", len(files))
		}
	}
}
