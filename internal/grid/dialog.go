package grid

import (
	"fmt"
	"strings"
	"sync"

	"github.com/okian/medalgrid/internal/domain/model"
)

// Input kinds of the creation form.
const (
	InputText   = "text"
	InputNumber = "number"
)

// FormField describes one input of the creation form.
type FormField struct {
	Name  string
	Label string
	Kind  string
}

var formFields = []FormField{
	{Name: model.FieldAthlete, Label: "Athlete", Kind: InputText},
	{Name: model.FieldAge, Label: "Age", Kind: InputNumber},
	{Name: model.FieldCountry, Label: "Country", Kind: InputText},
	{Name: model.FieldSport, Label: "Sport", Kind: InputText},
	{Name: model.FieldGold, Label: "Gold", Kind: InputNumber},
	{Name: model.FieldSilver, Label: "Silver", Kind: InputNumber},
	{Name: model.FieldBronze, Label: "Bronze", Kind: InputNumber},
}

// CreateForm collects the seven required fields of a new record as raw text.
type CreateForm struct {
	mu     sync.Mutex
	values map[string]string
}

// NewCreateForm returns an empty form.
func NewCreateForm() *CreateForm {
	return &CreateForm{values: make(map[string]string, len(formFields))}
}

// Fields lists the inputs in display order.
func (f *CreateForm) Fields() []FormField {
	out := make([]FormField, len(formFields))
	copy(out, formFields)
	return out
}

// Set stores the raw input for name.
func (f *CreateForm) Set(name, value string) error {
	if _, ok := lookupField(name); !ok {
		return fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	f.mu.Lock()
	f.values[name] = value
	f.mu.Unlock()
	return nil
}

// Value returns the raw input for name.
func (f *CreateForm) Value(name string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.values[name]
}

// Errors maps each invalid field to the reason. It is empty for a valid form.
func (f *CreateForm) Errors() map[string]error {
	f.mu.Lock()
	defer f.mu.Unlock()
	errs, _ := f.parseLocked()
	return errs
}

// parseLocked validates the inputs and returns the parsed numeric ones.
// Numbers are parsed like numeric columns but may not be negative.
func (f *CreateForm) parseLocked() (map[string]error, map[string]int) {
	errs := make(map[string]error)
	nums := make(map[string]int)
	for _, field := range formFields {
		v := strings.TrimSpace(f.values[field.Name])
		if v == "" {
			errs[field.Name] = fmt.Errorf("%s is required", field.Label)
			continue
		}
		if field.Kind != InputNumber {
			continue
		}
		n, err := ParseNumber(v)
		switch {
		case err != nil:
			errs[field.Name] = err
		case n < 0:
			errs[field.Name] = fmt.Errorf("%w: %q", ErrNegative, v)
		default:
			nums[field.Name] = n
		}
	}
	return errs, nums
}

// Valid reports whether every field is present and numbers are whole and
// non-negative.
func (f *CreateForm) Valid() bool {
	return len(f.Errors()) == 0
}

// Record converts the form, parsing numeric inputs the same way numeric
// grid columns do. The record has no id.
func (f *CreateForm) Record() (model.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	errs, nums := f.parseLocked()
	for _, field := range formFields {
		if err, ok := errs[field.Name]; ok {
			return model.Record{}, fmt.Errorf("%w: %s: %v", ErrFormInvalid, field.Name, err)
		}
	}
	return model.Record{
		Athlete: strings.TrimSpace(f.values[model.FieldAthlete]),
		Age:     nums[model.FieldAge],
		Country: strings.TrimSpace(f.values[model.FieldCountry]),
		Sport:   strings.TrimSpace(f.values[model.FieldSport]),
		Gold:    nums[model.FieldGold],
		Silver:  nums[model.FieldSilver],
		Bronze:  nums[model.FieldBronze],
	}, nil
}

func lookupField(name string) (FormField, bool) {
	for _, f := range formFields {
		if f.Name == name {
			return f, true
		}
	}
	return FormField{}, false
}

// DialogRef is an open creation dialog. It closes once, either with the
// submitted record or with nil on cancel.
type DialogRef struct {
	form   *CreateForm
	closed chan *model.Record
	once   sync.Once
}

// NewDialogRef opens a dialog over form.
func NewDialogRef(form *CreateForm) *DialogRef {
	if form == nil {
		form = NewCreateForm()
	}
	return &DialogRef{form: form, closed: make(chan *model.Record, 1)}
}

// Form returns the dialog's form.
func (d *DialogRef) Form() *CreateForm {
	return d.form
}

// Submit closes the dialog with the form's record. An invalid form keeps
// the dialog open.
func (d *DialogRef) Submit() error {
	rec, err := d.form.Record()
	if err != nil {
		return err
	}
	if !d.close(&rec) {
		return ErrDialogClosed
	}
	return nil
}

// Cancel closes the dialog without a record.
func (d *DialogRef) Cancel() {
	d.close(nil)
}

func (d *DialogRef) close(rec *model.Record) bool {
	closed := false
	d.once.Do(func() {
		d.closed <- rec
		close(d.closed)
		closed = true
	})
	return closed
}

// AfterClosed yields the dialog's result once and is then closed.
func (d *DialogRef) AfterClosed() <-chan *model.Record {
	return d.closed
}

// DialogOpener shows a creation dialog over form.
type DialogOpener interface {
	Open(form *CreateForm) *DialogRef
}

// DialogOpenerFunc adapts a function to DialogOpener.
type DialogOpenerFunc func(form *CreateForm) *DialogRef

// Open implements DialogOpener.
func (f DialogOpenerFunc) Open(form *CreateForm) *DialogRef {
	return f(form)
}
