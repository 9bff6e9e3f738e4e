package sandbox

import (
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"net/url"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/conneroisu/showcase/internal/errors"
	"github.com/conneroisu/showcase/internal/logging"
	"github.com/conneroisu/showcase/internal/scaffolding"
)

// DefaultEndpoint is StackBlitz's POST API for creating projects.
const DefaultEndpoint = "https://stackblitz.com/run"

// DefaultTemplate is the StackBlitz project template for Angular CLI apps.
const DefaultTemplate = "angular-cli"

// FormConfig configures a FormLauncher.
type FormConfig struct {
	Endpoint     string
	Template     string
	Description  string
	Dependencies map[string]string
	// TempDir receives hand-off pages. Empty uses os.TempDir.
	TempDir string
	// Open is called with the file:// URL of the hand-off page. Nil uses
	// OpenBrowser.
	Open   func(target string) error
	Logger logging.Logger
}

// FormLauncher opens a project by rendering a self-submitting HTML form that
// posts the file map to the sandbox endpoint, then opening that page in the
// user's browser.
type FormLauncher struct {
	config FormConfig
	logger logging.Logger
}

// NewFormLauncher applies defaults to cfg.
func NewFormLauncher(cfg FormConfig) *FormLauncher {
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	if cfg.Template == "" {
		cfg.Template = DefaultTemplate
	}
	if cfg.TempDir == "" {
		cfg.TempDir = os.TempDir()
	}
	if cfg.Open == nil {
		cfg.Open = OpenBrowser
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &FormLauncher{config: cfg, logger: logger.WithComponent("sandbox")}
}

type formField struct {
	Name  string
	Value string
}

type handoffPage struct {
	Title  string
	Action string
	Target string
	Fields []formField
}

var handoffTemplate = template.Must(template.New("handoff").Parse(`<!doctype html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Opening {{.Title}}</title>
</head>
<body>
<form id="sandbox" method="post" action="{{.Action}}" target="{{.Target}}">
{{- range .Fields}}
<input type="hidden" name="{{.Name}}" value="{{.Value}}">
{{- end}}
<noscript><button type="submit">Open {{.Title}}</button></noscript>
</form>
<script>document.getElementById("sandbox").submit();</script>
</body>
</html>
`))

// RenderHandoff writes the self-submitting form for project to w.
func (f *FormLauncher) RenderHandoff(w io.Writer, project *scaffolding.Project, opts Options) error {
	if _, ok := project.Files[opts.OpenFile]; opts.OpenFile != "" && !ok {
		return errors.NewInternalError(errors.ErrCodeLaunchFailed,
			fmt.Sprintf("open file %s is not part of the project", opts.OpenFile), nil)
	}

	action, err := url.Parse(f.config.Endpoint)
	if err != nil {
		return errors.NewConfigError(errors.ErrCodeConfigInvalid, "invalid sandbox endpoint", err)
	}
	if opts.OpenFile != "" {
		query := action.Query()
		query.Set("file", opts.OpenFile)
		action.RawQuery = query.Encode()
	}

	fields := []formField{
		{Name: "project[title]", Value: project.Title},
		{Name: "project[description]", Value: f.config.Description},
		{Name: "project[template]", Value: f.config.Template},
	}
	if len(f.config.Dependencies) > 0 {
		deps, err := json.Marshal(f.config.Dependencies)
		if err != nil {
			return err
		}
		fields = append(fields, formField{Name: "project[dependencies]", Value: string(deps)})
	}
	for _, p := range project.Paths() {
		fields = append(fields, formField{
			Name:  fmt.Sprintf("project[files][%s]", p),
			Value: project.Files[p],
		})
	}

	target := "_self"
	if opts.NewWindow {
		target = "_blank"
	}

	return handoffTemplate.Execute(w, handoffPage{
		Title:  project.Title,
		Action: action.String(),
		Target: target,
		Fields: fields,
	})
}

// Launch writes the hand-off page to a temporary file and opens it.
func (f *FormLauncher) Launch(ctx context.Context, project *scaffolding.Project, opts Options) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	launchID := uuid.NewString()
	logger := f.logger.With("launch_id", launchID, "title", project.Title)

	page := filepath.Join(f.config.TempDir, "showcase-"+launchID+".html")
	file, err := os.Create(page)
	if err != nil {
		return errors.NewIOError(errors.ErrCodeLaunchFailed, "cannot create hand-off page", err)
	}
	renderErr := f.RenderHandoff(file, project, opts)
	closeErr := file.Close()
	if renderErr != nil {
		return renderErr
	}
	if closeErr != nil {
		return errors.NewIOError(errors.ErrCodeLaunchFailed, "cannot write hand-off page", closeErr)
	}

	pageURL := (&url.URL{Scheme: "file", Path: filepath.ToSlash(page)}).String()
	logger.Debug(ctx, "Opening sandbox hand-off page", "page", page, "open_file", opts.OpenFile)
	if err := f.config.Open(pageURL); err != nil {
		logger.Warn(ctx, err, "Sandbox launch failed")
		return errors.NewCollaboratorError(errors.ErrCodeLaunchFailed, "sandbox launch failed", err)
	}

	logger.Info(ctx, "Sandbox launched", "files", len(project.Files))
	return nil
}
