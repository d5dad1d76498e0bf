// Package format renders dates, money and numbers for notification text.
package format

import (
	"fmt"
	"strconv"
	"time"
	_ "time/tzdata"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/colonyops/classbell/internal/core/notify"
)

// Formatter turns raw values into user-facing text.
type Formatter interface {
	Date(t time.Time) string
	Money(m notify.Money) string
	Number(v float64) string
}

// Options configures a Locale formatter.
type Options struct {
	Locale     string // BCP 47 tag, e.g. "es-CO"
	Currency   string // ISO 4217 code used when an amount carries none
	DateLayout string // time.Format layout
	Timezone   string // IANA zone name; empty means UTC
}

// DefaultOptions match the marketplace's primary audience.
func DefaultOptions() Options {
	return Options{
		Locale:     "es-CO",
		Currency:   "COP",
		DateLayout: "02/01/2006 15:04",
		Timezone:   "America/Bogota",
	}
}

// Locale formats values using CLDR data from golang.org/x/text.
type Locale struct {
	printer  *message.Printer
	currency currency.Unit
	layout   string
	loc      *time.Location
}

var _ Formatter = (*Locale)(nil)

// NewLocale builds a Locale from opts.
func NewLocale(opts Options) (*Locale, error) {
	tag, err := language.Parse(opts.Locale)
	if err != nil {
		return nil, fmt.Errorf("parse locale %q: %w", opts.Locale, err)
	}

	unit, err := currency.ParseISO(opts.Currency)
	if err != nil {
		return nil, fmt.Errorf("parse currency %q: %w", opts.Currency, err)
	}

	loc := time.UTC
	if opts.Timezone != "" {
		loc, err = time.LoadLocation(opts.Timezone)
		if err != nil {
			return nil, fmt.Errorf("load timezone %q: %w", opts.Timezone, err)
		}
	}

	layout := opts.DateLayout
	if layout == "" {
		layout = DefaultOptions().DateLayout
	}

	return &Locale{
		printer:  message.NewPrinter(tag),
		currency: unit,
		layout:   layout,
		loc:      loc,
	}, nil
}

func (l *Locale) Date(t time.Time) string {
	return t.In(l.loc).Format(l.layout)
}

// Money formats m with its ISO code, rounded per the currency's rules.
// Unknown codes fall back to the configured default currency.
func (l *Locale) Money(m notify.Money) string {
	unit := l.currency
	if m.Currency != "" {
		if u, err := currency.ParseISO(m.Currency); err == nil {
			unit = u
		}
	}
	return l.printer.Sprint(currency.ISO(unit.Amount(m.Amount)))
}

func (l *Locale) Number(v float64) string {
	return l.printer.Sprint(number.Decimal(v))
}

// Plain is a locale-free formatter with stable output, used as a fallback
// and wherever exact text matters.
type Plain struct {
	Layout string
}

var _ Formatter = Plain{}

func (p Plain) Date(t time.Time) string {
	layout := p.Layout
	if layout == "" {
		layout = "2006-01-02 15:04"
	}
	return t.UTC().Format(layout)
}

func (Plain) Money(m notify.Money) string {
	s := strconv.FormatFloat(m.Amount, 'f', 2, 64)
	if m.Currency == "" {
		return s
	}
	return m.Currency + " " + s
}

func (Plain) Number(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
