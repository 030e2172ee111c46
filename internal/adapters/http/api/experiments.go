// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	app "github.com/snielsen221b/evotext/internal/app"
	"github.com/snielsen221b/evotext/internal/domain/genome"
	"github.com/snielsen221b/evotext/internal/domain/model"
)

// Submission bounds enforced before an experiment reaches the service.
const (
	maxTrialsPerExperiment = 1000
)

// experimentRequest mirrors the OpenAPI schema for POST /experiments.
type experimentRequest struct {
	ExperimentID   string  `json:"experiment_id"`
	Goal           string  `json:"goal"`
	Generations    int     `json:"generations"`
	PopulationSize int     `json:"population_size"`
	InitMode       string  `json:"init_mode"`
	Trials         int     `json:"trials"`
	Seed           int64   `json:"seed"`
	CrossoverProb  float64 `json:"crossover_prob"`
	MutationProb   float64 `json:"mutation_prob"`
}

func (e experimentRequest) validate() error {
	switch {
	case strings.TrimSpace(e.ExperimentID) == "":
		return errors.New("missing experiment_id")
	case e.Generations < 0:
		return errors.New("generations must not be negative")
	case e.PopulationSize < 0:
		return errors.New("population_size must not be negative")
	case e.Trials < 0:
		return errors.New("trials must not be negative")
	case e.Trials > maxTrialsPerExperiment:
		return fmt.Errorf("trials must not exceed %d", maxTrialsPerExperiment)
	case e.CrossoverProb < 0 || e.CrossoverProb > 1:
		return errors.New("crossover_prob must be in [0, 1]")
	case e.MutationProb < 0 || e.MutationProb > 1:
		return errors.New("mutation_prob must be in [0, 1]")
	}
	if e.InitMode != "" && !model.InitMode(e.InitMode).Valid() {
		return fmt.Errorf("init_mode must be %q or %q", model.InitRandomized, model.InitUniform)
	}
	if e.Goal != "" {
		if err := genome.ValidateGoal(e.Goal); err != nil {
			return err
		}
	}
	return nil
}

// toModel converts the request to a domain experiment. Zero-valued
// fields stay zero; the service fills defaults.
func (e experimentRequest) toModel() model.Experiment {
	return model.Experiment{
		ID:             e.ExperimentID,
		Goal:           e.Goal,
		Generations:    e.Generations,
		PopulationSize: e.PopulationSize,
		Mode:           model.InitMode(e.InitMode),
		Trials:         e.Trials,
		Seed:           e.Seed,
		CrossoverProb:  e.CrossoverProb,
		MutationProb:   e.MutationProb,
	}
}

// ExperimentsHandler handles experiment submission and queries.
type ExperimentsHandler struct {
	deps Dependencies
}

// NewExperimentsHandler creates a new experiments handler.
func NewExperimentsHandler(deps Dependencies) *ExperimentsHandler {
	return &ExperimentsHandler{deps: deps}
}

// HandlePostExperiment handles POST /experiments requests.
func (h *ExperimentsHandler) HandlePostExperiment(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_experiment"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req experimentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	// Idempotency check - mark as seen first
	if h.deps.SeenAndRecord(r.Context(), req.ExperimentID) {
		writeJSON(w, http.StatusOK, ackResponse{Status: "duplicate", Duplicate: true, ExperimentID: req.ExperimentID})
		return
	}

	exp, err := h.deps.Submit(r.Context(), req.toModel())
	if err != nil {
		// Roll back the "seen" status so the client can retry.
		h.deps.Unrecord(r.Context(), req.ExperimentID)
		if errors.Is(err, app.ErrBackpressure) {
			writeError(w, http.StatusTooManyRequests, "backpressure", NewKind(op, ErrBackpressure))
			return
		}
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	writeJSON(w, http.StatusAccepted, ackResponse{Status: "accepted", Duplicate: false, ExperimentID: exp.ID})
}

// HandleGetExperiment handles GET /experiments/{experiment_id} requests.
func (h *ExperimentsHandler) HandleGetExperiment(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_experiment"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/experiments/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	summary, err := h.deps.Experiment(r.Context(), id)
	if err != nil {
		if isNotFound(err) {
			writeError(w, http.StatusNotFound, "not_found", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, experimentResponse{
		Summary:  summary,
		Status:   experimentStatus(summary),
		Complete: summary.Complete(),
	})
}

// experimentResponse decorates a summary with a coarse status string.
type experimentResponse struct {
	model.Summary
	Status   string `json:"status"`
	Complete bool   `json:"complete"`
}

func experimentStatus(s model.Summary) string {
	switch {
	case s.Complete():
		return "complete"
	case s.Completed > 0:
		return "running"
	default:
		return "pending"
	}
}
