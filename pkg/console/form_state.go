package console

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/marcus/bastion/internal/form"
)

// FormState is an open wizard: the controller that owns the values and
// submission, plus the huh form rendering its active section.
type FormState struct {
	ID       int
	Title    string
	Action   string // create, create-le, update
	Entity   string // org, assessment
	EntityID string // set for updates

	Controller *form.Controller
	Form       *huh.Form
	closer     *formCloser
	Width      int
	Spinner    spinner.Model

	// values backs the huh fields; synced into the store on section change
	// and before submit.
	values map[string]*string
}

// formCloser runs a controller's completion callback on the update loop:
// the controller schedules it here and it fires when the FormCloseMsg for
// the same schedule arrives.
type formCloser struct {
	seq   int
	delay time.Duration
	fn    func()
	done  bool
}

func (fc *formCloser) options() []form.Option {
	return []form.Option{
		form.WithScheduler(func(d time.Duration, fn func()) {
			fc.seq++
			fc.delay, fc.fn, fc.done = d, fn, false
		}),
		form.WithOnDone(func(any) { fc.done = true }),
	}
}

// tick returns the command delivering the close for the latest schedule.
func (fc *formCloser) tick(formID int) tea.Cmd {
	if fc.fn == nil {
		return nil
	}
	seq := fc.seq
	return tea.Tick(fc.delay, func(time.Time) tea.Msg {
		return FormCloseMsg{FormID: formID, Seq: seq}
	})
}

// cancel drops a scheduled callback, e.g. when the user submits again.
func (fc *formCloser) cancel() { fc.fn = nil }

// fire runs the callback scheduled as seq and reports whether the
// controller completed.
func (fc *formCloser) fire(seq int) bool {
	if fc.fn == nil || seq != fc.seq {
		return false
	}
	fn := fc.fn
	fc.fn = nil
	fn()
	return fc.done
}

// NewFormState builds the controller through build and the form for its
// first section.
func NewFormState(id int, title string, build func(opts ...form.Option) *form.Controller) *FormState {
	closer := &formCloser{}
	fs := &FormState{
		ID:         id,
		Title:      title,
		Controller: build(closer.options()...),
		closer:     closer,
		Spinner:    spinner.New(spinner.WithSpinner(spinner.Dot)),
		values:     make(map[string]*string),
	}
	fs.loadValues()
	fs.buildForm()
	return fs
}

// loadValues copies the store into the field bindings.
func (fs *FormState) loadValues() {
	s := fs.Controller.Store()
	for _, name := range s.Keys() {
		v := s.String(name)
		if meta, ok := fs.Controller.Catalog().Meta(name); ok && meta.Kind == form.KindNumber && v == "0" {
			v = ""
		}
		fs.values[name] = &v
	}
}

// Value returns the current binding for name.
func (fs *FormState) Value(name string) string {
	if p, ok := fs.values[name]; ok {
		return *p
	}
	return ""
}

// SetValue writes a binding directly, as typing into the field would.
func (fs *FormState) SetValue(name, v string) {
	if p, ok := fs.values[name]; ok {
		*p = v
		return
	}
	fs.values[name] = &v
}

// sync writes every binding into the store. Numbers are parsed; lists stay
// as comma-separated text for the strategy to split.
func (fs *FormState) sync() {
	for name, p := range fs.values {
		meta, _ := fs.Controller.Catalog().Meta(name)
		if meta.Kind == form.KindNumber {
			fs.Controller.Set(name, form.ParseNumber(*p))
			continue
		}
		fs.Controller.Set(name, *p)
	}
}

func (fs *FormState) binding(name string) *string {
	if p, ok := fs.values[name]; ok {
		return p
	}
	v := ""
	fs.values[name] = &v
	return &v
}

// buildForm creates the huh form for the active section.
func (fs *FormState) buildForm() {
	c := fs.Controller
	var fields []huh.Field
	for _, name := range c.Fields() {
		meta, _ := c.Catalog().Meta(name)
		title := meta.Label
		if meta.Required {
			title += " *"
		}
		v := fs.binding(name)

		switch meta.Kind {
		case form.KindSelect:
			fields = append(fields, huh.NewSelect[string]().
				Key(name).
				Title(title).
				Options(huh.NewOptions(meta.Options...)...).
				Value(v))
		case form.KindTextarea:
			fields = append(fields, huh.NewText().
				Key(name).
				Title(title).
				Placeholder(meta.Placeholder).
				Lines(4).
				Value(v))
		default:
			fields = append(fields, huh.NewInput().
				Key(name).
				Title(title).
				Placeholder(meta.Placeholder).
				Value(v))
		}
	}

	fs.Form = huh.NewForm(huh.NewGroup(fields...)).
		WithShowHelp(false).
		WithShowErrors(false)
	if fs.Width > 0 {
		fs.Form = fs.Form.WithWidth(fs.Width)
	}
}

// SetWidth sets the wrap width of the form.
func (fs *FormState) SetWidth(w int) {
	fs.Width = w
	fs.Form = fs.Form.WithWidth(w)
}

// move syncs the bindings and switches to section i via step. It returns the
// new form's init command, or nil when the section did not change.
func (fs *FormState) move(step func() bool) tea.Cmd {
	fs.sync()
	if !step() {
		return nil
	}
	fs.buildForm()
	return fs.Form.Init()
}

// NextSection moves forward one section.
func (fs *FormState) NextSection() tea.Cmd {
	return fs.move(fs.Controller.Next)
}

// PrevSection moves back one section.
func (fs *FormState) PrevSection() tea.Cmd {
	return fs.move(fs.Controller.Previous)
}

// JumpSection moves to section i.
func (fs *FormState) JumpSection(i int) tea.Cmd {
	return fs.move(func() bool { return fs.Controller.Jump(i) })
}

// Reset reloads the bindings from the store, e.g. after a successful submit
// cleared it.
func (fs *FormState) Reset() {
	fs.values = make(map[string]*string)
	fs.loadValues()
	fs.buildForm()
	if fs.Width > 0 {
		fs.Form = fs.Form.WithWidth(fs.Width)
	}
}

func (fs *FormState) hints() string {
	if fs.Controller.Pending() {
		return "esc close"
	}
	nav := fs.Controller.Navigator()
	hints := "tab field · ctrl+s submit · esc close"
	if nav.Count() > 1 {
		hints = "ctrl+n/ctrl+p section · alt+1-9 jump · " + hints
	}
	return hints
}
