// Package output renders run results, diffs and rule listings for the
// terminal.
//
// Rendering has two phases. Go templates from templates/ turn the data into
// text marked up with style tags such as <Path>...</Path>; ExpandTags then
// applies the lipgloss styles from pkg/output/styles, or StripTags removes
// the tags for plain output.
package output

import (
	"bytes"
	"embed"
	"fmt"
	"io"
	"strings"
	"text/template"

	"github.com/arthur-debert/repatch/pkg/logging"
	"github.com/arthur-debert/repatch/pkg/textcodec"
	"github.com/arthur-debert/repatch/pkg/types"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	diffpatch "github.com/sergi/go-diff/diffmatchpatch"
)

//go:embed templates/*.tmpl
var templatesFS embed.FS

// DryRunNotice closes the summary of a dry run
const DryRunNotice = "DRY RUN - no files were written"

// Renderer writes styled output to a writer
type Renderer struct {
	templates *template.Template
	writer    io.Writer
	noColor   bool
}

// NewRenderer creates a new Renderer instance.
//
// Color is disabled when noColor is set or the NO_COLOR environment variable
// asks for it.
func NewRenderer(w io.Writer, noColor bool) (*Renderer, error) {
	log := logging.GetLogger("output.Renderer")

	envNoColor := termenv.EnvNoColor()
	noColor = noColor || envNoColor
	if !noColor {
		profile := lipgloss.NewRenderer(w).ColorProfile()
		log.Debug().
			Str("colorProfile", fmt.Sprintf("%v", profile)).
			Msg("Lipgloss renderer created")
	}
	log.Debug().
		Bool("noColor", noColor).
		Bool("NO_COLOR_env", envNoColor).
		Msg("Creating renderer with color settings")

	tmpl, err := template.ParseFS(templatesFS, "templates/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	return &Renderer{
		templates: tmpl,
		writer:    w,
		noColor:   noColor,
	}, nil
}

func (r *Renderer) execute(name string, data interface{}) error {
	var buf bytes.Buffer
	if err := r.templates.ExecuteTemplate(&buf, name, data); err != nil {
		return fmt.Errorf("failed to execute template %s: %w", name, err)
	}
	return r.write(buf.String())
}

func (r *Renderer) write(marked string) error {
	var out string
	if r.noColor {
		out = StripTags(marked)
	} else {
		out = ExpandTags(marked)
	}
	_, err := io.WriteString(r.writer, out)
	return err
}

type ruleView struct {
	Name   string
	Icon   string
	Style  string
	Detail string
}

type targetView struct {
	Path  string
	State string
	Rules []ruleView
}

type runView struct {
	Targets []targetView
	DryRun  bool
	Notice  string
	Message string
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ses", n, word)
}

func newRuleView(rr types.RuleResult) ruleView {
	switch rr.Status {
	case types.RuleApplied:
		return ruleView{Name: rr.Rule, Icon: "✓", Style: "Success", Detail: plural(rr.Matches, "match")}
	case types.RuleAlreadyApplied:
		return ruleView{Name: rr.Rule, Icon: "=", Style: "Muted", Detail: "already applied"}
	default:
		return ruleView{Name: rr.Rule, Icon: "✗", Style: "Warning", Detail: "no match"}
	}
}

func targetState(tr types.TargetResult, dryRun bool) string {
	switch {
	case tr.Written:
		return "patched"
	case tr.Changed && dryRun:
		return "would change"
	case tr.Changed:
		return "not written"
	default:
		return "unchanged"
	}
}

// RenderRun writes the per-target, per-rule summary of a run followed by
// message, or the dry run notice
func (r *Renderer) RenderRun(res *types.RunResult, message string) error {
	view := runView{DryRun: res.DryRun, Notice: DryRunNotice, Message: message}
	for _, tr := range res.Targets {
		tv := targetView{Path: tr.Path, State: targetState(tr, res.DryRun)}
		for _, rr := range tr.Rules {
			tv.Rules = append(tv.Rules, newRuleView(rr))
		}
		view.Targets = append(view.Targets, tv)
	}
	return r.execute("run.tmpl", view)
}

type lineView struct {
	Style  string
	Prefix string
	Text   string
}

type hunkView struct {
	Header string
	Lines  []lineView
}

type diffView struct {
	Path  string
	Hunks []hunkView
}

func newDiffView(path, before, after string, context int) diffView {
	dv := diffView{Path: path}
	for _, h := range Hunks(LineDiff(before, after), context) {
		hv := hunkView{Header: h.Header()}
		for _, l := range h.Lines {
			switch l.Op {
			case diffpatch.DiffInsert:
				hv.Lines = append(hv.Lines, lineView{Style: "Added", Prefix: "+", Text: l.Text})
			case diffpatch.DiffDelete:
				hv.Lines = append(hv.Lines, lineView{Style: "Removed", Prefix: "-", Text: l.Text})
			default:
				hv.Lines = append(hv.Lines, lineView{Style: "Context", Prefix: " ", Text: l.Text})
			}
		}
		dv.Hunks = append(dv.Hunks, hv)
	}
	return dv
}

// RenderDiff writes a unified line diff for every changed target
func (r *Renderer) RenderDiff(res *types.RunResult) error {
	var views []diffView
	for _, tr := range res.Targets {
		if !tr.Changed {
			continue
		}
		views = append(views, newDiffView(tr.Path, tr.Original, tr.Patched, DefaultContext))
	}
	if len(views) == 0 {
		return nil
	}
	return r.execute("diff.tmpl", views)
}

type ruleInfoView struct {
	Index int
	Name  string
	Flags string
}

type targetInfoView struct {
	Path     string
	Encoding string
	Rules    []ruleInfoView
}

func ruleFlags(rule types.Rule) string {
	flags := []string{"engine=" + string(rule.EngineOrDefault())}
	if rule.FlexWhitespace {
		flags = append(flags, "flex-whitespace")
	}
	if rule.IgnoreCase {
		flags = append(flags, "ignore-case")
	}
	if rule.DotAll {
		flags = append(flags, "dot-all")
	}
	if rule.Guard != "" {
		flags = append(flags, "guard")
	}
	if rule.Timeout > 0 {
		flags = append(flags, "timeout="+rule.Timeout.String())
	}
	return strings.Join(flags, " ")
}

// RenderRules lists the targets and their rules in application order
func (r *Renderer) RenderRules(targets []types.Target) error {
	views := make([]targetInfoView, 0, len(targets))
	for _, t := range targets {
		tv := targetInfoView{Path: t.Path, Encoding: textcodec.Normalize(t.Encoding)}
		for i, rule := range t.Rules {
			tv.Rules = append(tv.Rules, ruleInfoView{
				Index: i + 1,
				Name:  types.RuleLabel(rule, i),
				Flags: ruleFlags(rule),
			})
		}
		views = append(views, tv)
	}
	return r.execute("rules.tmpl", views)
}

// RenderMessage renders a single line in the given style
func (r *Renderer) RenderMessage(style, message string) error {
	return r.write(fmt.Sprintf("<%s>%s</%s>\n", style, message, style))
}

// RenderError renders an error message with appropriate styling
func (r *Renderer) RenderError(err error) error {
	return r.write(fmt.Sprintf("<Error>Error:</Error> %s\n", err.Error()))
}
