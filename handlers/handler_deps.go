package handlers

import (
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/columnfella/Transcripting-webapp/artifacts"
	"github.com/columnfella/Transcripting-webapp/deletion"
	"github.com/columnfella/Transcripting-webapp/pipeline"
	"github.com/columnfella/Transcripting-webapp/report"
	"github.com/columnfella/Transcripting-webapp/store"
)

// ApplicationHandler holds the shared dependencies for all HTTP handlers.
type ApplicationHandler struct {
	Store     *store.Store
	Artifacts *artifacts.Manager
	Pipeline  *pipeline.Pipeline
	Reports   *report.Generator
	Deleter   *deletion.Coordinator
	Log       *logrus.Logger
}

var validate = validator.New()

// NewApplicationHandler creates an ApplicationHandler with the given
// dependencies.
func NewApplicationHandler(
	st *store.Store,
	mgr *artifacts.Manager,
	pl *pipeline.Pipeline,
	rg *report.Generator,
	del *deletion.Coordinator,
	log *logrus.Logger,
) *ApplicationHandler {
	return &ApplicationHandler{
		Store:     st,
		Artifacts: mgr,
		Pipeline:  pl,
		Reports:   rg,
		Deleter:   del,
		Log:       log,
	}
}
