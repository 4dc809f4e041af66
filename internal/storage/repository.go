// Package storage persists patients, payment plans and installments on
// SQLite. Dates are stored as YYYY-MM-DD text, amounts as integer cents.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"odonto/internal/core"

	_ "modernc.org/sqlite"
)

const dateCol = "2006-01-02"

type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	// Cascade deletes depend on foreign keys being enforced per connection.
	db, err := sql.Open("sqlite", "file:"+dbPath+"?_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func colToDate(v string) core.Date {
	t, err := time.Parse(dateCol, v)
	if err != nil {
		return core.Date{}
	}
	return core.DateOf(t)
}

// ListPazienti returns patients newest first.
func (s *SQLiteStore) ListPazienti(ctx context.Context) ([]core.Paziente, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, nome, cognome, data_creazione FROM pazienti ORDER BY data_creazione DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list pazienti: %w", err)
	}
	defer rows.Close()

	var out []core.Paziente
	for rows.Next() {
		var p core.Paziente
		var creazione string
		if err := rows.Scan(&p.ID, &p.Nome, &p.Cognome, &creazione); err != nil {
			return nil, fmt.Errorf("scan paziente: %w", err)
		}
		p.DataCreazione = colToDate(creazione)
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) GetPaziente(ctx context.Context, id int64) (core.Paziente, error) {
	var p core.Paziente
	var creazione string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, nome, cognome, data_creazione FROM pazienti WHERE id = ?`, id).
		Scan(&p.ID, &p.Nome, &p.Cognome, &creazione)
	if err == sql.ErrNoRows {
		return core.Paziente{}, ErrNotFound
	}
	if err != nil {
		return core.Paziente{}, fmt.Errorf("get paziente %d: %w", id, err)
	}
	p.DataCreazione = colToDate(creazione)
	return p, nil
}

func (s *SQLiteStore) CreatePaziente(ctx context.Context, p core.Paziente) (core.Paziente, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO pazienti (nome, cognome, data_creazione) VALUES (?, ?, ?)`,
		p.Nome, p.Cognome, p.DataCreazione.Format(dateCol))
	if err != nil {
		return core.Paziente{}, fmt.Errorf("create paziente: %w", err)
	}
	p.ID, err = res.LastInsertId()
	if err != nil {
		return core.Paziente{}, fmt.Errorf("paziente id: %w", err)
	}

	slog.InfoContext(ctx, "Paziente saved", "paziente_id", p.ID, "nome", p.Nome, "cognome", p.Cognome)
	return p, nil
}

func (s *SQLiteStore) UpdatePaziente(ctx context.Context, p core.Paziente) (core.Paziente, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE pazienti SET nome = ?, cognome = ? WHERE id = ?`, p.Nome, p.Cognome, p.ID)
	if err != nil {
		return core.Paziente{}, fmt.Errorf("update paziente %d: %w", p.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.Paziente{}, ErrNotFound
	}
	return s.GetPaziente(ctx, p.ID)
}

func (s *SQLiteStore) DeletePaziente(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM pazienti WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete paziente %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	slog.InfoContext(ctx, "Paziente deleted", "paziente_id", id)
	return nil
}

const pagamentoSelect = `
SELECT pg.id, pg.paziente_id, pg.nome_lavoro, pg.modalita, pg.totale_cents,
       pg.data_creazione, pz.nome || ' ' || pz.cognome
FROM pagamenti pg
JOIN pazienti pz ON pz.id = pg.paziente_id`

func scanPagamento(sc interface{ Scan(...any) error }) (core.Pagamento, error) {
	var p core.Pagamento
	var modalita, creazione string
	if err := sc.Scan(&p.ID, &p.PazienteID, &p.NomeLavoro, &modalita,
		&p.Totale.Cents, &creazione, &p.PazienteNome); err != nil {
		return core.Pagamento{}, err
	}
	p.Modalita = core.ModalitaPagamento(modalita)
	p.DataCreazione = colToDate(creazione)
	return p, nil
}

// ListPagamenti returns payment plans newest first, patient name embedded.
func (s *SQLiteStore) ListPagamenti(ctx context.Context) ([]core.Pagamento, error) {
	return s.queryPagamenti(ctx, pagamentoSelect+` ORDER BY pg.data_creazione DESC, pg.id DESC`)
}

func (s *SQLiteStore) ListPagamentiByPaziente(ctx context.Context, pazienteID int64) ([]core.Pagamento, error) {
	return s.queryPagamenti(ctx,
		pagamentoSelect+` WHERE pg.paziente_id = ? ORDER BY pg.data_creazione DESC, pg.id DESC`, pazienteID)
}

func (s *SQLiteStore) queryPagamenti(ctx context.Context, query string, args ...any) ([]core.Pagamento, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list pagamenti: %w", err)
	}
	defer rows.Close()

	var out []core.Pagamento
	for rows.Next() {
		p, err := scanPagamento(rows)
		if err != nil {
			return nil, fmt.Errorf("scan pagamento: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) GetPagamento(ctx context.Context, id int64) (core.Pagamento, error) {
	row := s.db.QueryRowContext(ctx, pagamentoSelect+` WHERE pg.id = ?`, id)
	p, err := scanPagamento(row)
	if err == sql.ErrNoRows {
		return core.Pagamento{}, ErrNotFound
	}
	if err != nil {
		return core.Pagamento{}, fmt.Errorf("get pagamento %d: %w", id, err)
	}
	return p, nil
}

// CreatePagamento inserts the plan and all its installments in one
// transaction; a failed installment insert rolls back the plan.
func (s *SQLiteStore) CreatePagamento(ctx context.Context, p core.Pagamento, rate []core.RataBozza) (core.Pagamento, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return core.Pagamento{}, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO pagamenti (paziente_id, nome_lavoro, modalita, totale_cents, data_creazione)
		 VALUES (?, ?, ?, ?, ?)`,
		p.PazienteID, p.NomeLavoro, string(p.Modalita), p.Totale.Cents, p.DataCreazione.Format(dateCol))
	if err != nil {
		return core.Pagamento{}, fmt.Errorf("create pagamento: %w", err)
	}
	pagamentoID, err := res.LastInsertId()
	if err != nil {
		return core.Pagamento{}, fmt.Errorf("pagamento id: %w", err)
	}

	for i, r := range rate {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO rate (pagamento_id, numero_rata, totale_rate, ammontare_cents, data_scadenza, stato)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			pagamentoID, i+1, len(rate), r.Ammontare.Cents, r.DataScadenza.Format(dateCol), string(core.StatoFutura))
		if err != nil {
			return core.Pagamento{}, fmt.Errorf("create rata %d/%d: %w", i+1, len(rate), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return core.Pagamento{}, fmt.Errorf("commit: %w", err)
	}

	slog.InfoContext(ctx, "Pagamento saved",
		"pagamento_id", pagamentoID,
		"paziente_id", p.PazienteID,
		"modalita", string(p.Modalita),
		"amount_cents", p.Totale.Cents,
		"rate", len(rate))

	return s.GetPagamento(ctx, pagamentoID)
}

func (s *SQLiteStore) UpdatePagamento(ctx context.Context, id int64, nomeLavoro string) (core.Pagamento, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE pagamenti SET nome_lavoro = ? WHERE id = ?`, nomeLavoro, id)
	if err != nil {
		return core.Pagamento{}, fmt.Errorf("update pagamento %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.Pagamento{}, ErrNotFound
	}
	return s.GetPagamento(ctx, id)
}

func (s *SQLiteStore) DeletePagamento(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM pagamenti WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete pagamento %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	slog.InfoContext(ctx, "Pagamento deleted", "pagamento_id", id)
	return nil
}

const rataSelect = `
SELECT r.id, r.pagamento_id, r.numero_rata, r.totale_rate, r.ammontare_cents,
       r.data_scadenza, r.data_pagamento, r.stato,
       pz.nome || ' ' || pz.cognome, pg.nome_lavoro
FROM rate r
JOIN pagamenti pg ON pg.id = r.pagamento_id
JOIN pazienti pz ON pz.id = pg.paziente_id`

func scanRata(sc interface{ Scan(...any) error }) (core.Rata, error) {
	var r core.Rata
	var scadenza, stato string
	var pagamento sql.NullString
	if err := sc.Scan(&r.ID, &r.PagamentoID, &r.NumeroRata, &r.TotaleRate,
		&r.Ammontare.Cents, &scadenza, &pagamento, &stato,
		&r.PazienteNome, &r.NomeLavoro); err != nil {
		return core.Rata{}, err
	}
	r.DataScadenza = colToDate(scadenza)
	if pagamento.Valid {
		r.DataPagamento = colToDate(pagamento.String)
	}
	r.Stato = core.StatoRata(stato)
	return r, nil
}

// ListRate returns every installment ordered by due date.
func (s *SQLiteStore) ListRate(ctx context.Context) ([]core.Rata, error) {
	return s.queryRate(ctx, rataSelect+` ORDER BY r.data_scadenza ASC, r.id ASC`)
}

func (s *SQLiteStore) ListRateByPagamento(ctx context.Context, pagamentoID int64) ([]core.Rata, error) {
	return s.queryRate(ctx,
		rataSelect+` WHERE r.pagamento_id = ? ORDER BY r.numero_rata ASC`, pagamentoID)
}

// ListRateScadute returns unpaid installments due strictly before oggi.
func (s *SQLiteStore) ListRateScadute(ctx context.Context, oggi core.Date) ([]core.Rata, error) {
	return s.queryRate(ctx,
		rataSelect+` WHERE r.stato != 'pagata' AND r.data_pagamento IS NULL AND r.data_scadenza < ?
		ORDER BY r.data_scadenza ASC`, oggi.Format(dateCol))
}

func (s *SQLiteStore) ListRateScaduteByPaziente(ctx context.Context, pazienteID int64, oggi core.Date) ([]core.Rata, error) {
	return s.queryRate(ctx,
		rataSelect+` WHERE pg.paziente_id = ? AND r.stato != 'pagata' AND r.data_pagamento IS NULL
		AND r.data_scadenza < ? ORDER BY r.data_scadenza ASC`, pazienteID, oggi.Format(dateCol))
}

func (s *SQLiteStore) queryRate(ctx context.Context, query string, args ...any) ([]core.Rata, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list rate: %w", err)
	}
	defer rows.Close()

	var out []core.Rata
	for rows.Next() {
		r, err := scanRata(rows)
		if err != nil {
			return nil, fmt.Errorf("scan rata: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) GetRata(ctx context.Context, id int64) (core.Rata, error) {
	row := s.db.QueryRowContext(ctx, rataSelect+` WHERE r.id = ?`, id)
	r, err := scanRata(row)
	if err == sql.ErrNoRows {
		return core.Rata{}, ErrNotFound
	}
	if err != nil {
		return core.Rata{}, fmt.Errorf("get rata %d: %w", id, err)
	}
	return r, nil
}

func (s *SQLiteStore) UpdateRata(ctx context.Context, r core.Rata) (core.Rata, error) {
	var pagamento any
	if !r.DataPagamento.IsEmpty() {
		pagamento = r.DataPagamento.Format(dateCol)
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE rate SET ammontare_cents = ?, data_scadenza = ?, data_pagamento = ?, stato = ? WHERE id = ?`,
		r.Ammontare.Cents, r.DataScadenza.Format(dateCol), pagamento, string(r.Stato), r.ID)
	if err != nil {
		return core.Rata{}, fmt.Errorf("update rata %d: %w", r.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.Rata{}, ErrNotFound
	}
	return s.GetRata(ctx, r.ID)
}

// PagaRata marks the installment paid; the payment date is always set by the
// server, never taken from the request.
func (s *SQLiteStore) PagaRata(ctx context.Context, id int64, pagata core.Date) (core.Rata, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE rate SET stato = 'pagata', data_pagamento = ? WHERE id = ?`,
		pagata.Format(dateCol), id)
	if err != nil {
		return core.Rata{}, fmt.Errorf("paga rata %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.Rata{}, ErrNotFound
	}

	slog.InfoContext(ctx, "Rata paid", "rata_id", id, "data_pagamento", pagata.Format(dateCol))
	return s.GetRata(ctx, id)
}
