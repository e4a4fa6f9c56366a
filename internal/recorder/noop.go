package recorder

import "TripBroker/internal/model"

// NoopRecorder is a no-op implementation used when SQLite is not configured.
type NoopRecorder struct{}

// NewNoopRecorder creates a recorder that discards everything.
func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordBid(_ *BidEvent) error                 { return nil }
func (n *NoopRecorder) RecordTransaction(_ *TransactionEvent) error { return nil }
func (n *NoopRecorder) RecordGame(_ *model.GameReport) error        { return nil }
func (n *NoopRecorder) Close() error                                { return nil }
