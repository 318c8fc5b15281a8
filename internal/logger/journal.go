package logger

import (
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// JournalHeader is the first row of a new action journal.
var JournalHeader = []string{"timestamp", "id", "account", "action", "contract", "amount", "outcome"}

// ActionJournal appends one CSV row per mutating ledger call.
type ActionJournal struct {
	csv    *SafeCSVWriter
	logger *zap.Logger
	now    func() time.Time
}

// NewActionJournal opens (or creates) the journal at path.
func NewActionJournal(path string, logger *zap.Logger) (*ActionJournal, error) {
	w, err := NewSafeCSVWriter(path, JournalHeader, 5*time.Second, logger)
	if err != nil {
		return nil, err
	}
	return &ActionJournal{csv: w, logger: logger, now: time.Now}, nil
}

// Record writes a row. Write failures are logged, never returned.
func (j *ActionJournal) Record(account, action, contract, amount, outcome string) {
	row := []string{
		j.now().UTC().Format(time.RFC3339),
		uuid.NewString(),
		account,
		action,
		contract,
		amount,
		outcome,
	}
	if err := j.csv.WriteRecord(row); err != nil {
		j.logger.Warn("Failed to write action journal", zap.Error(err))
	}
}

func (j *ActionJournal) Close() error {
	if err := j.csv.Close(); err != nil {
		return err
	}
	records, _ := j.csv.GetStats()
	j.logger.Info("Action journal closed", zap.Uint64("records", records))
	return nil
}
