package core

import (
	"errors"
	"strings"
	"time"
	"unicode"
)

const (
	// Payment modes. A "unico" payment owns exactly one rata equal to the
	// total; a "rate" payment owns at least two.
	Unico ModalitaPagamento = "unico"
	Rate  ModalitaPagamento = "rate"
)

const (
	StatoPagata       StatoRata = "pagata"
	StatoScadenzaOggi StatoRata = "scadenza_oggi"
	StatoScaduta      StatoRata = "scaduta"
	StatoFutura       StatoRata = "futura"
)

type (
	ModalitaPagamento string
	StatoRata         string

	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	Paziente struct {
		ID            int64
		Nome          string
		Cognome       string
		DataCreazione Date
	}

	Pagamento struct {
		ID            int64
		PazienteID    int64
		NomeLavoro    string // optional work/job label
		Modalita      ModalitaPagamento
		Totale        Money
		DataCreazione Date
		PazienteNome  string // joined for display, not a column
	}

	Rata struct {
		ID            int64
		PagamentoID   int64
		NumeroRata    int // 1-based position in the plan
		TotaleRate    int
		Ammontare     Money
		DataScadenza  Date
		DataPagamento Date // zero when unpaid
		Stato         StatoRata
		PazienteNome  string
		NomeLavoro    string
	}
)

var (
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrEmptyNome       = errors.New("empty nome")
	ErrEmptyCognome    = errors.New("empty cognome")
	ErrInvalidModalita = errors.New("invalid payment mode")
	ErrInvalidStato    = errors.New("invalid installment status")
	ErrInvalidDate     = errors.New("invalid date")
	ErrRateCount       = errors.New("installment plan requires at least 2 installments")
	ErrRateSum         = errors.New("installment amounts do not sum to the total")
)

func (m ModalitaPagamento) Valid() bool {
	return m == Unico || m == Rate
}

func (s StatoRata) Valid() bool {
	switch s {
	case StatoPagata, StatoScadenzaOggi, StatoScaduta, StatoFutura:
		return true
	default:
		return false
	}
}

// NewDate creates a Date at day granularity (UTC midnight).
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// Today returns the current date truncated to day granularity.
func Today() Date {
	return DateOf(time.Now())
}

// DateOf truncates an arbitrary timestamp to day granularity.
func DateOf(t time.Time) Date {
	y, m, d := t.UTC().Date()
	return NewDate(y, int(m), d)
}

// String renders the wire format used everywhere: YYYY-MM-DD.
func (d Date) String() string {
	return d.Time.Format("2006-01-02")
}

// ParseDate parses the YYYY-MM-DD wire format.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return DateOf(t), nil
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// Day returns the day of the month
func (d Date) Day() int {
	return d.Time.Day()
}

// Month returns the month
func (d Date) Month() int {
	return int(d.Time.Month())
}

// Year returns the year
func (d Date) Year() int {
	return d.Time.Year()
}

// IsEmpty returns true for the zero date (optional dates such as DataPagamento).
func (d Date) IsEmpty() bool {
	return d.IsZero()
}

// AddMonths advances the date by n calendar months. Month-end overflow is
// delegated to time.AddDate (Jan 31 + 1 month normalizes to Mar 2/3).
func (d Date) AddMonths(n int) Date {
	return DateOf(d.Time.AddDate(0, n, 0))
}

// SameDay reports whether two dates fall on the same calendar day.
func (d Date) SameDay(o Date) bool {
	return d.Year() == o.Year() && d.Month() == o.Month() && d.Day() == o.Day()
}

// BeforeDay reports whether d falls on an earlier calendar day than o.
func (d Date) BeforeDay(o Date) bool {
	return !d.SameDay(o) && d.Time.Before(o.Time)
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// NormalizeNome trims a name and title-cases each word, so "mario  rossi"
// becomes "Mario Rossi". Applied when creating or renaming patients.
func NormalizeNome(s string) string {
	fields := strings.Fields(s)
	for i, f := range fields {
		runes := []rune(strings.ToLower(f))
		runes[0] = unicode.ToUpper(runes[0])
		fields[i] = string(runes)
	}
	return strings.Join(fields, " ")
}

func (p Paziente) Validate() error {
	if strings.TrimSpace(p.Nome) == "" {
		return ErrEmptyNome
	}
	if len(p.Nome) > 80 {
		return errors.New("nome too long (max 80 characters)")
	}
	if strings.TrimSpace(p.Cognome) == "" {
		return ErrEmptyCognome
	}
	if len(p.Cognome) > 80 {
		return errors.New("cognome too long (max 80 characters)")
	}
	return nil
}

// NomeCompleto returns the display name used across lists and the register.
func (p Paziente) NomeCompleto() string {
	return p.Nome + " " + p.Cognome
}

func (p Pagamento) Validate() error {
	if !p.Modalita.Valid() {
		return ErrInvalidModalita
	}
	if err := p.Totale.Validate(); err != nil {
		return err
	}
	if len(p.NomeLavoro) > 120 {
		return errors.New("nome lavoro too long (max 120 characters)")
	}
	return nil
}

func (r Rata) Validate() error {
	if r.NumeroRata < 1 {
		return errors.New("numero rata must be at least 1")
	}
	if r.TotaleRate < r.NumeroRata {
		return errors.New("totale rate must be at least numero rata")
	}
	if err := r.Ammontare.Validate(); err != nil {
		return err
	}
	if err := r.DataScadenza.Validate(); err != nil {
		return err
	}
	if r.Stato != "" && !r.Stato.Valid() {
		return ErrInvalidStato
	}
	return nil
}
