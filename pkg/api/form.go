package api

import (
	"embed"
	"html/template"
	"net/http"
	"strconv"

	"github.com/mimir-aip/carprice/pkg/collector"
	"github.com/mimir-aip/carprice/pkg/logging"
	"github.com/mimir-aip/carprice/pkg/models"
	"github.com/mimir-aip/carprice/pkg/presenter"
)

//go:embed templates/*.html
var templateFS embed.FS

var formTemplate = template.Must(template.ParseFS(templateFS, "templates/form.html"))

// fieldView is one form widget
type fieldView struct {
	models.FieldSpec
	Value string
	Min   string
	Max   string
	Step  string
}

// IsEnum reports whether the field renders as a dropdown
func (f fieldView) IsEnum() bool {
	return f.Kind == models.FieldKindEnum
}

// pageData is everything the form template renders
type pageData struct {
	Fields      []fieldView
	Unit        string
	Unavailable *models.Failure
	UnavailTip  string
	Result      *models.PredictionResult
	Headline    string
	Failure     *models.Failure
	FailureTip  string
	DebugTitle  string
	DebugRows   [][2]string
}

func newFieldViews(specs []models.FieldSpec, values map[string]string) []fieldView {
	views := make([]fieldView, 0, len(specs))
	for _, spec := range specs {
		v := fieldView{FieldSpec: spec, Value: spec.Default}
		if entered, ok := values[spec.Name]; ok && entered != "" {
			v.Value = entered
		}
		if spec.Kind != models.FieldKindEnum {
			v.Min = strconv.FormatFloat(spec.Min, 'f', -1, 64)
			v.Max = strconv.FormatFloat(spec.Max, 'f', -1, 64)
			v.Step = strconv.FormatFloat(spec.Step, 'f', -1, 64)
		}
		views = append(views, v)
	}
	return views
}

func (s *Server) renderPage(w http.ResponseWriter, r *http.Request, status int, data *pageData) {
	data.Unit = s.service.Unit()
	data.DebugTitle = presenter.DebugTitle
	if ok, failure := s.service.Available(); !ok {
		data.Unavailable = failure
		data.UnavailTip = presenter.Tip(failure.Kind)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := formTemplate.Execute(w, data); err != nil {
		s.logger.Error("Failed to render form", err,
			logging.RequestID(RequestIDFrom(r.Context())),
			logging.Component("http"))
	}
}

// handleIndex renders the empty form
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.renderPage(w, r, http.StatusOK, &pageData{
		Fields: newFieldViews(s.service.Fields(), nil),
	})
}

// handlePredict runs an estimate from the posted form and renders the page
// again with the result or the failure.
func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeBadRequestResponse(w, "Invalid form data")
		return
	}

	specs := s.service.Fields()
	input := make(map[string]string, len(specs))
	for _, spec := range specs {
		if _, ok := r.PostForm[spec.Name]; ok {
			input[spec.Name] = r.PostForm.Get(spec.Name)
		}
	}
	data := &pageData{Fields: newFieldViews(specs, input)}

	raw, err := collector.NewValues(specs, input).Collect()
	if err != nil {
		data.Failure = models.NewFailure(models.FailureInvalidInput, "Some fields are out of range.", err)
		s.renderPage(w, r, failureStatus(data.Failure.Kind), data)
		return
	}

	result, err := s.service.Estimate(raw)
	if err != nil {
		failure, ok := models.AsFailure(err)
		if !ok {
			failure = models.NewFailure(models.FailurePrediction, "The estimate failed.", err)
		}
		data.Failure = failure
		data.FailureTip = presenter.Tip(failure.Kind)
		s.renderPage(w, r, failureStatus(failure.Kind), data)
		return
	}

	data.Result = result
	data.Headline = presenter.Headline(result)
	data.DebugRows = presenter.DebugRows(result.Row)
	s.renderPage(w, r, http.StatusOK, data)
}
