package api

import (
	"encoding/json"
	"net/http"

	"github.com/YaleSpinup/apierror"
	"github.com/YaleSpinup/ecs-taskdef-render/orchestration"
	"github.com/YaleSpinup/ecs-taskdef-render/taskdef"
	"github.com/gorilla/mux"
	"github.com/spf13/afero"

	log "github.com/sirupsen/logrus"
)

// TaskDefRenderRequest is the body of a task definition render request
type TaskDefRenderRequest struct {
	TaskDefinition *taskdef.Document `json:"taskDefinition"`
	Overrides      taskdef.Overrides `json:"overrides"`
	Validate       bool              `json:"validate,omitempty"`
	VerifyImage    bool              `json:"verifyImage,omitempty"`
}

// TaskDefRenderHandler renders a task definition and returns the result
func (s *server) TaskDefRenderHandler(w http.ResponseWriter, r *http.Request) {
	w = LogWriter{w}

	renderer, err := s.newRenderer("")
	if err != nil {
		handleError(w, err)
		return
	}

	doc, err := s.render(r, renderer)
	if err != nil {
		handleError(w, err)
		return
	}

	out, err := doc.MarshalIndent()
	if err != nil {
		handleError(w, apierror.New(apierror.ErrInternalError, "failed to marshal rendered task definition", err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(out)
}

// TaskDefRegisterHandler renders a task definition and registers it with ECS in the account
func (s *server) TaskDefRegisterHandler(w http.ResponseWriter, r *http.Request) {
	w = LogWriter{w}
	vars := mux.Vars(r)
	account := vars["account"]

	renderer, err := s.newRenderer(account)
	if err != nil {
		handleError(w, err)
		return
	}

	doc, err := s.render(r, renderer)
	if err != nil {
		handleError(w, err)
		return
	}

	output, err := renderer.Register(r.Context(), doc)
	if err != nil {
		handleError(w, err)
		return
	}

	j, err := json.Marshal(output)
	if err != nil {
		log.Errorf("cannot marshal response (%v) into JSON: %s", output, err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(j)
}

// render decodes the request body and renders the task definition, counting the result
func (s *server) render(r *http.Request, renderer *orchestration.Renderer) (*taskdef.Document, error) {
	var req TaskDefRenderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		rendersTotal.WithLabelValues(renderResult(err)).Inc()
		if taskdef.KindOf(err) != "" {
			return nil, err
		}
		return nil, apierror.New(apierror.ErrBadRequest, "failed to decode render request: "+err.Error(), err)
	}

	log.Debugf("decoded request into render request for container %s", req.Overrides.ContainerName)

	doc, err := renderer.Render(r.Context(), req.TaskDefinition, &orchestration.RenderInput{
		Overrides:   req.Overrides,
		Validate:    req.Validate,
		VerifyImage: req.VerifyImage,
	})
	rendersTotal.WithLabelValues(renderResult(err)).Inc()

	return doc, err
}

// newRenderer returns a renderer for the account.  Renderers for an empty account have
// no ECS client and can't register task definitions.
func (s *server) newRenderer(account string) (*orchestration.Renderer, error) {
	renderer := orchestration.NewRenderer(afero.NewMemMapFs(), "", "")
	if account == "" {
		return renderer, nil
	}

	e, ok := s.ecsServices[account]
	if !ok {
		msg := "ecs service not found for account: " + account
		return nil, apierror.New(apierror.ErrNotFound, msg, nil)
	}
	renderer.ECS = &e

	return renderer, nil
}
