package history

import (
	"github.com/doeshing/cmdgate/internal/domain"
	"github.com/doeshing/cmdgate/internal/ports"
)

// NopLedger discards records. Used when the ledger database cannot be
// opened so a broken audit trail never blocks the pipeline, and by the
// regression harness, whose throwaway runs are not worth auditing.
type NopLedger struct{}

func (NopLedger) Save(domain.RunRecord) error { return nil }

func (NopLedger) Records(int, string) ([]domain.RunRecord, error) { return nil, nil }

func (NopLedger) Close() error { return nil }

var _ ports.RunLedger = NopLedger{}
