// Package leads validates the owner and visit forms and turns accepted
// submissions into notifications.
package leads

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"unicode"
)

// Field defaults, also the values a form resets to.
const (
	DefaultOwnerOperation = "vender"
	DefaultOwnerType      = "cualquiera"
	DefaultContactTime    = "cualquier-hora"
	DefaultPropertyTitle  = "Propiedad"
)

const (
	originOwner = "Formulario: Publica tu propiedad"
	originVisit = "Formulario: Agenda una visita"

	minPhoneDigits = 10
	emptyValue     = "—"
)

// ValidationError blocks a submission. Message is the text shown to the
// visitor.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"error"`
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NormalizePhone keeps the digits of v and drops a leading 52 country code.
func NormalizePhone(v string) string {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, v)
	return strings.TrimPrefix(digits, "52")
}

// Checked reads an HTML checkbox value.
func Checked(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "on", "true", "1", "yes", "si", "sí":
		return true
	}
	return false
}

// OwnerForm is the "publica tu propiedad" form.
type OwnerForm struct {
	Operation   string `json:"operation"`
	Type        string `json:"type"`
	Name        string `json:"name"`
	Phone       string `json:"phone"`
	ContactTime string `json:"contact_time"`
	Zone        string `json:"zone"`
	Notes       string `json:"notes"`
	Consent     bool   `json:"consent"`
}

func DefaultOwnerForm() OwnerForm {
	return OwnerForm{
		Operation:   DefaultOwnerOperation,
		Type:        DefaultOwnerType,
		ContactTime: DefaultContactTime,
	}
}

// Normalize trims text fields, normalizes the phone and fills the select
// defaults.
func (f OwnerForm) Normalize() OwnerForm {
	f.Operation = orDefault(strings.TrimSpace(f.Operation), DefaultOwnerOperation)
	f.Type = orDefault(strings.TrimSpace(f.Type), DefaultOwnerType)
	f.Name = strings.TrimSpace(f.Name)
	f.Phone = NormalizePhone(f.Phone)
	f.ContactTime = orDefault(strings.TrimSpace(f.ContactTime), DefaultContactTime)
	f.Zone = strings.TrimSpace(f.Zone)
	f.Notes = strings.TrimSpace(f.Notes)
	return f
}

// Validate checks name, phone and consent in that order. The form must be
// normalized.
func (f OwnerForm) Validate() error {
	return validate(f.Name, f.Phone, f.Consent, ownerMessages)
}

func (f OwnerForm) Subject() string {
	return fmt.Sprintf("Lead propietario — %s/%s", f.Operation, f.Type)
}

// Preview is the summary shown to the owner after submitting.
func (f OwnerForm) Preview() string {
	lines := []string{
		"✅ Datos recibidos",
		"• Operación: " + f.Operation,
		"• Tipo: " + f.Type,
		"• Nombre: " + f.Name,
		"• Teléfono: +52 " + f.Phone,
		"• Horario: " + f.ContactTime,
		"• Zona: " + orDefault(f.Zone, emptyValue),
		"• Comentarios: " + orDefault(f.Notes, emptyValue),
	}
	return strings.Join(lines, "\n")
}

// Payload is the webhook body without the shared secret. The phone is sent
// without the country code.
func (f OwnerForm) Payload() map[string]any {
	return map[string]any{
		"_subject":     f.Subject(),
		"_origin":      originOwner,
		"operation":    f.Operation,
		"type":         f.Type,
		"name":         f.Name,
		"phone":        f.Phone,
		"contact_time": f.ContactTime,
		"zone":         f.Zone,
		"notes":        f.Notes,
	}
}

// VisitForm is the "agenda una visita" form of the detail page.
type VisitForm struct {
	PropertyID    string `json:"property_id"`
	PropertyTitle string `json:"property_title"`
	Name          string `json:"name"`
	Phone         string `json:"phone"`
	ContactTime   string `json:"contact_time"`
	Notes         string `json:"notes"`
	Consent       bool   `json:"consent"`
}

// DefaultVisitForm keeps the property the form belongs to.
func DefaultVisitForm(propertyID, propertyTitle string) VisitForm {
	return VisitForm{
		PropertyID:    propertyID,
		PropertyTitle: propertyTitle,
		ContactTime:   DefaultContactTime,
	}
}

func (f VisitForm) Normalize() VisitForm {
	f.PropertyID = strings.TrimSpace(f.PropertyID)
	f.PropertyTitle = orDefault(strings.TrimSpace(f.PropertyTitle), DefaultPropertyTitle)
	f.Name = strings.TrimSpace(f.Name)
	f.Phone = NormalizePhone(f.Phone)
	f.ContactTime = orDefault(strings.TrimSpace(f.ContactTime), DefaultContactTime)
	f.Notes = strings.TrimSpace(f.Notes)
	return f
}

func (f VisitForm) Validate() error {
	return validate(f.Name, f.Phone, f.Consent, visitMessages)
}

func (f VisitForm) Subject() string {
	return "Visita — " + f.PropertyTitle
}

type visitPreview struct {
	PropertyTitle string `json:"property_title"`
	Name          string `json:"name"`
	Phone         string `json:"phone"`
	ContactTime   string `json:"contact_time"`
	Notes         string `json:"notes"`
}

// Preview renders the submitted fields as indented JSON.
func (f VisitForm) Preview() string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	// encoding a struct of strings cannot fail
	_ = enc.Encode(visitPreview{
		PropertyTitle: f.PropertyTitle,
		Name:          f.Name,
		Phone:         f.Phone,
		ContactTime:   f.ContactTime,
		Notes:         f.Notes,
	})
	return strings.TrimRightFunc(buf.String(), unicode.IsSpace)
}

func (f VisitForm) Payload() map[string]any {
	payload := map[string]any{
		"_subject":       f.Subject(),
		"_origin":        originVisit,
		"property_title": f.PropertyTitle,
		"name":           f.Name,
		"phone":          f.Phone,
		"contact_time":   f.ContactTime,
		"notes":          f.Notes,
	}
	if f.PropertyID != "" {
		payload["property_id"] = f.PropertyID
	}
	return payload
}

type messages struct {
	name, phone, consent string
}

var (
	ownerMessages = messages{
		name:    "Por favor, escribe tu nombre.",
		phone:   "Escribe un teléfono válido (10 dígitos).",
		consent: "Debes aceptar que te contactemos por teléfono o WhatsApp.",
	}
	visitMessages = messages{
		name:    "Por favor, escribe tu nombre.",
		phone:   "Teléfono inválido.",
		consent: "Debes aceptar el contacto.",
	}
)

func validate(name, phone string, consent bool, msg messages) error {
	if name == "" {
		return &ValidationError{Field: "name", Message: msg.name}
	}
	if len(phone) < minPhoneDigits {
		return &ValidationError{Field: "phone", Message: msg.phone}
	}
	if !consent {
		return &ValidationError{Field: "consent", Message: msg.consent}
	}
	return nil
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
