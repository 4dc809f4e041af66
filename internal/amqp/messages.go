package amqp

import (
	"time"

	"github.com/goccy/go-json"
)

// RataPagataMessage notifies the register worker that an installment was
// marked paid. It carries only identifiers; the worker re-reads the full
// row so the register never sees stale amounts.
type RataPagataMessage struct {
	RataID      int64     `json:"rataId"`
	PagamentoID int64     `json:"pagamentoId"`
	Timestamp   time.Time `json:"timestamp"`
}

func NewRataPagataMessage(rataID, pagamentoID int64) *RataPagataMessage {
	return &RataPagataMessage{
		RataID:      rataID,
		PagamentoID: pagamentoID,
		Timestamp:   time.Now(),
	}
}

func (m *RataPagataMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func RataPagataMessageFromJSON(data []byte) (*RataPagataMessage, error) {
	var msg RataPagataMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
