package template

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path"
	"slices"
	"strings"

	"github.com/ghaggin/hospitalcms/internal/model"
	"github.com/ghaggin/hospitalcms/internal/router"
)

const (
	templateDir string = "tmpl"
	baseFile    string = "base.html"
)

//go:embed tmpl/*.html
var files embed.FS

// Data is everything a page can show. Handlers fill only what their page uses.
type Data struct {
	PageTitle   string
	Role        model.Role
	DisplayName string
	Actions     []router.Action
	Notice      string
	Error       string

	LandingActions []router.Action
	CardActions    []router.Action
	RowActions     []router.Action

	Doctors      []model.Doctor
	Filter       model.DoctorFilter
	Appointments []model.Appointment
	Date         string
	Today        string
	PatientName  string
	Condition    string
	Prescription *model.Prescription
	EditDoctor   *model.Doctor
	Booking      *Booking
}

// Booking backs the slot picker used to book or reschedule an appointment.
// A non-zero AppointmentID means rescheduling.
type Booking struct {
	AppointmentID int64
	DoctorID      int64
	DoctorName    string
	Date          string
	Action        string
	Slots         []Slot
}

// Slot is one free time: Value is "15:04", Label is what the backend sent.
type Slot struct {
	Value string
	Label string
}

func (b *Booking) Has(value string) bool {
	return slices.ContainsFunc(b.Slots, func(s Slot) bool { return s.Value == value })
}

type Renderer struct {
	pages map[string]*template.Template
}

// slotOptions are the availability slots an admin can give a doctor.
var slotOptions = []string{"09:00-10:00", "10:00-11:00", "11:00-12:00", "14:00-15:00", "15:00-16:00"}

var funcs = template.FuncMap{
	"slotOptions": func() []string { return slotOptions },
	"actionPath": func(a router.Action, id int64) string {
		return a.For(id)
	},
	"contains": func(list []string, v string) bool {
		return slices.Contains(list, v)
	},
	// date part of a "2006-01-02T15:04:05" appointment time
	"appointmentDate": func(at string) string {
		date, _, _ := strings.Cut(at, "T")
		return date
	},
}

func NewRenderer() (*Renderer, error) {
	names, err := fs.Glob(files, templateDir+"/*.html")
	if err != nil {
		return nil, err
	}

	r := &Renderer{pages: map[string]*template.Template{}}
	for _, name := range names {
		page := path.Base(name)
		if page == baseFile {
			continue
		}

		t, err := template.New(page).Funcs(funcs).ParseFS(files,
			templateDir+"/"+page,
			templateDir+"/"+baseFile,
		)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", page, err)
		}
		r.pages[page] = t
	}

	return r, nil
}

func (r *Renderer) Render(w http.ResponseWriter, status int, tmpl string, td *Data) error {
	t, ok := r.pages[tmpl]
	if !ok {
		return fmt.Errorf("template %s not found", tmpl)
	}

	buf := &bytes.Buffer{}

	err := t.Execute(buf, td)
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err = buf.WriteTo(w)
	return err
}
