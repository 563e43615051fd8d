package consumer

import (
	"context"
	"encoding/json"

	"go-crewpay/internal/events"
	"go-crewpay/internal/foreman"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// ConsumeInvoiceMirror replays recorded invoice events and repairs any line
// whose mirrored project cost entry is missing. This is the reconciliation
// sweep for the uncoordinated two-write sequence in the foreman ledger: the
// line and its outbox event commit together, the cost mirror does not.
func ConsumeInvoiceMirror(
	ctx context.Context,
	reader *kafkago.Reader,
	foremanService foreman.Service,
	logger *zap.Logger,
) {
	log := logger.Named("kafka.consumer.invoice_mirror")
	log.Info("invoice mirror consumer started")

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("invoice mirror consumer stopped")
				return
			}
			log.Error("fetch invoice mirror message failed", zap.Error(err))
			continue
		}

		var event events.ForemanInvoiceRecordedEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			log.Error("decode invoice recorded event failed", zap.Error(err))
			_ = reader.CommitMessages(ctx, msg)
			continue
		}

		repaired, err := foremanService.EnsureInvoiceMirror(ctx, event.LedgerID, event.LineID)
		if err != nil {
			log.Error("ensure invoice mirror failed",
				zap.String("ledger_id", event.LedgerID),
				zap.String("line_id", event.LineID),
				zap.Error(err),
			)
			continue
		}

		if err := reader.CommitMessages(ctx, msg); err != nil {
			log.Error("commit invoice mirror message failed", zap.Error(err))
			continue
		}

		if repaired {
			log.Warn("invoice mirror repaired from recorded event",
				zap.String("ledger_id", event.LedgerID),
				zap.String("line_id", event.LineID),
			)
		}
	}
}
