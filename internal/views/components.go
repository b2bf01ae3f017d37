package views

import (
	"net/url"
	"strconv"
	"time"

	"github.com/a-h/templ"

	"github.com/royalton/portal/pkg/money"
	"github.com/royalton/portal/pkg/validator"
)

// Form carries submitted values and validation errors back into a page so
// the visitor does not retype anything.
type Form struct {
	Values url.Values
	Errors validator.ValidationErrors
}

// NewForm keeps the values and extracts field errors from err, if any.
func NewForm(values url.Values, err error) Form {
	return Form{Values: values, Errors: validator.ExtractValidationErrors(err)}
}

func (f Form) Get(name string) string { return f.Values.Get(name) }

func (f Form) Error(name string) string {
	if msgs := f.Errors.Get(name); len(msgs) > 0 {
		return msgs[0]
	}
	return ""
}

// Field is one labelled form control.
type Field struct {
	Name        string
	Label       string
	Type        string
	Placeholder string
	Step        string
	Options     []Option
	Required    bool
	Rows        int
}

// Option is a select choice.
type Option struct{ Value, Label string }

func (f Form) Field(fd Field) templ.Component {
	msg := f.Error(fd.Name)
	var required Flag
	if fd.Required {
		required = "required"
	}
	value := f.Get(fd.Name)

	var control templ.Component
	switch {
	case len(fd.Options) > 0:
		control = E("select", Name(fd.Name), required,
			Map(fd.Options, func(o Option) templ.Component {
				var selected Flag
				if o.Value == value {
					selected = "selected"
				}
				return E("option", Value(o.Value), selected, o.Label)
			}),
		)
	case fd.Type == "textarea":
		rows := fd.Rows
		if rows == 0 {
			rows = 4
		}
		control = E("textarea", Name(fd.Name), A{"rows", strconv.Itoa(rows)},
			A{"placeholder", fd.Placeholder}, required, value)
	default:
		typ := fd.Type
		if typ == "" {
			typ = "text"
		}
		var step any
		if fd.Step != "" {
			step = A{"step", fd.Step}
		}
		control = E("input", Type(typ), Name(fd.Name), Value(value), A{"placeholder", fd.Placeholder}, step, required)
	}

	class := "field"
	if msg != "" {
		class += " invalid"
	}
	return E("label", Class(class),
		E("span", fd.Label),
		control,
		If(msg != "", E("span", Class("field-error"), msg)),
	)
}

// Badge renders a coloured pill; tone is one of green, blue, red, orange,
// yellow or gray.
func Badge(label, tone string) templ.Component {
	if tone == "" {
		tone = "gray"
	}
	return E("span", Class("badge badge-"+tone), label)
}

func Empty(message string) templ.Component {
	return E("p", Class("card muted"), message)
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("Jan 2, 2006")
}

func formatDatePtr(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return formatDate(*t)
}

func formatDateTime(t time.Time) string {
	return t.Format("Jan 2, 2006 15:04")
}

func formatMoney(v float64, currency string) string {
	return money.Format(v, currency)
}

func formatWeight(w *float64) string {
	if w == nil {
		return "-"
	}
	return strconv.FormatFloat(*w, 'f', -1, 64) + " kg"
}
