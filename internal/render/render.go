// Package render turns booking data into self-contained HTML email bodies.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"math"
	"time"

	"github.com/Domenick1991/ticketmail/internal/domain"
)

//go:embed templates
var templateFS embed.FS

type Template string

const (
	TemplateTickets Template = "tickets"
	TemplateInvoice Template = "invoice"
)

const (
	dateLayout = "1/2/2006"
	timeLayout = "3:04:05 PM"
)

// Rendered is a template's markup together with its stylesheet.
type Rendered struct {
	HTML string
	CSS  string
}

type Event struct {
	Name     string
	Date     string
	Time     string
	Location string
	Map      string
}

type TicketsData struct {
	Name    string
	Event   Event
	Tickets []domain.Ticket
}

type InvoiceLine struct {
	Tier      string
	Quantity  int
	UnitPrice string
	Amount    string
}

type InvoiceData struct {
	Name               string
	EventName          string
	Show               string
	Tickets            []domain.Ticket
	PriceTiers         []domain.PriceTier
	PriceConfiguration domain.PriceConfiguration
	Discount           *domain.Discount

	Lines          []InvoiceLine
	Subtotal       string
	DiscountAmount string
	Total          string
}

type Renderer struct {
	templates map[Template]*template.Template
	styles    map[Template]string
	location  *time.Location
	currency  string
}

// NewRenderer parses the embedded templates. A nil location means time.Local.
func NewRenderer(location *time.Location, currency string) (*Renderer, error) {
	if location == nil {
		location = time.Local
	}
	r := &Renderer{
		templates: make(map[Template]*template.Template),
		styles:    make(map[Template]string),
		location:  location,
		currency:  currency,
	}
	for _, name := range []Template{TemplateTickets, TemplateInvoice} {
		tmpl, err := template.ParseFS(templateFS, fmt.Sprintf("templates/%s.html.tmpl", name))
		if err != nil {
			return nil, fmt.Errorf("parse %s template: %w", name, err)
		}
		css, err := templateFS.ReadFile(fmt.Sprintf("templates/%s.css", name))
		if err != nil {
			return nil, fmt.Errorf("read %s stylesheet: %w", name, err)
		}
		r.templates[name] = tmpl
		r.styles[name] = string(css)
	}
	return r, nil
}

func (r *Renderer) Render(name Template, data any) (Rendered, error) {
	tmpl, ok := r.templates[name]
	if !ok {
		return Rendered{}, fmt.Errorf("unknown template %q", name)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return Rendered{}, fmt.Errorf("render %s: %w", name, err)
	}
	return Rendered{HTML: buf.String(), CSS: r.styles[name]}, nil
}

// RenderEmail renders a template and returns it with its stylesheet inlined.
func (r *Renderer) RenderEmail(name Template, data any) (string, error) {
	rendered, err := r.Render(name, data)
	if err != nil {
		return "", err
	}
	return Inline(rendered), nil
}

// Inline prepends the stylesheet as a <style> block. Element attributes are left untouched.
func Inline(r Rendered) string {
	return "<style>" + r.CSS + "</style>" + r.HTML
}

func (r *Renderer) TicketsData(name string, cfg domain.Configuration, details domain.BookingDetails, tickets []domain.Ticket) TicketsData {
	date := details.Date.In(r.location)
	return TicketsData{
		Name: name,
		Event: Event{
			Name:     cfg.ShowName,
			Date:     date.Format(dateLayout),
			Time:     date.Format(timeLayout),
			Location: cfg.ShowLocation,
			Map:      cfg.MapURL,
		},
		Tickets: tickets,
	}
}

func (r *Renderer) InvoiceData(name string, cfg domain.Configuration, details domain.BookingDetails, tickets []domain.Ticket) InvoiceData {
	data := InvoiceData{
		Name:               name,
		EventName:          cfg.ShowName,
		Show:               details.Show,
		Tickets:            tickets,
		PriceTiers:         cfg.PriceTiers,
		PriceConfiguration: cfg.PriceConfiguration,
		Discount:           details.Discount,
	}

	type group struct {
		name     string
		price    float64
		quantity int
	}
	var order []string
	groups := make(map[string]*group)
	for _, t := range tickets {
		tier, ok := cfg.TierFor(t)
		if !ok {
			tier = domain.PriceTier{Name: "Ticket"}
		}
		g, seen := groups[tier.Key]
		if !seen {
			g = &group{name: tier.Name, price: tier.Price}
			groups[tier.Key] = g
			order = append(order, tier.Key)
		}
		g.quantity++
	}

	var subtotal float64
	for _, key := range order {
		g := groups[key]
		amount := g.price * float64(g.quantity)
		subtotal += amount
		data.Lines = append(data.Lines, InvoiceLine{
			Tier:      g.name,
			Quantity:  g.quantity,
			UnitPrice: r.money(g.price),
			Amount:    r.money(amount),
		})
	}

	var discount float64
	if details.Discount != nil && details.Discount.Percentage > 0 {
		discount = roundCents(subtotal * details.Discount.Percentage / 100)
	}
	data.Subtotal = r.money(subtotal)
	data.DiscountAmount = r.money(discount)
	data.Total = r.money(subtotal - discount)
	return data
}

var currencySymbols = map[string]string{
	"EUR": "€",
	"USD": "$",
	"GBP": "£",
}

func (r *Renderer) money(v float64) string {
	if sym, ok := currencySymbols[r.currency]; ok {
		return fmt.Sprintf("%s%.2f", sym, v)
	}
	return fmt.Sprintf("%s %.2f", r.currency, v)
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
